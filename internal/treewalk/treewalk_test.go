package treewalk

import (
	"bytes"
	"strings"
	"testing"

	"github.com/havrix/glox/internal/parser"
)

func run(t *testing.T, src string) string {
	t.Helper()
	stmts, err := parser.New(src).Parse()
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	var out, errOut bytes.Buffer
	interp := New(&out, &errOut)
	if err := interp.Interpret(stmts); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	return out.String()
}

func runExpectError(t *testing.T, src string) string {
	t.Helper()
	stmts, err := parser.New(src).Parse()
	if err != nil {
		return err.Error()
	}
	var out, errOut bytes.Buffer
	interp := New(&out, &errOut)
	err = interp.Interpret(stmts)
	if err == nil {
		t.Fatalf("expected an error, got none (stdout: %s)", out.String())
	}
	return err.Error()
}

func TestLiteralScenarios(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"arithmetic precedence", "print 1 + 2 * 3;", "7\n"},
		{"fibonacci", "fun fib(n){ if (n<2) return n; return fib(n-1)+fib(n-2);} print fib(10);", "55\n"},
		{"method call", "class Dog { bark() { return \"woof\"; } } print Dog().bark();", "woof\n"},
		{"superclass dispatch", `class A{m(){return "A";}} class B<A{m(){return super.m()+"B";}} print B().m();`, "AB\n"},
		{
			"resolver binds to declaration scope",
			"var a = \"global\"; { fun f(){ print a; } f(); var a = \"local\"; f(); }",
			"global\nglobal\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := run(t, tt.src); got != tt.want {
				t.Errorf("output = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClosureCapturesEscapedLocal(t *testing.T) {
	src := `
	fun makeCounter() {
		var i = 0;
		fun count() {
			i = i + 1;
			return i;
		}
		return count;
	}
	var counter = makeCounter();
	print counter();
	print counter();
	print counter();
	`
	if got := run(t, src); got != "1\n2\n3\n" {
		t.Errorf("closure counter output = %q, want 1\\n2\\n3\\n", got)
	}
}

func TestMethodBindingCapturesReceiverAtAccessTime(t *testing.T) {
	src := `
	class Box { get() { return this; } }
	var b = Box();
	var bound1 = b.get;
	var bound2 = b.get;
	print bound1() == bound2();
	`
	if got := run(t, src); got != "true\n" {
		t.Errorf("output = %q, want \"true\"", got)
	}
}

func TestInitializerAlwaysReturnsInstance(t *testing.T) {
	src := `
	class Box {
		init(v) { this.v = v; return; }
	}
	print Box(7).v;
	`
	if got := run(t, src); got != "7\n" {
		t.Errorf("output = %q, want \"7\"", got)
	}
}

func TestArithmeticVsConcatenation(t *testing.T) {
	if got := run(t, `print 1 + 2;`); got != "3\n" {
		t.Errorf("1 + 2 = %q, want \"3\"", got)
	}
	if got := run(t, `print "a" + "b";`); got != "ab\n" {
		t.Errorf(`"a" + "b" = %q, want "ab"`, got)
	}
	msg := runExpectError(t, `print 1 + "b";`)
	if !strings.Contains(msg, "Operands must be two numbers or two strings.") {
		t.Errorf("error = %q, want operand type mismatch", msg)
	}
}

func TestShortCircuit(t *testing.T) {
	src := `
	fun f() { print "f"; return true; }
	fun g() { print "g"; return true; }
	f() or g();
	`
	if got := run(t, src); got != "f\n" {
		t.Errorf("short-circuit or evaluated g unexpectedly: %q", got)
	}
}

func TestForLoopDesugaringEquivalence(t *testing.T) {
	forSrc := `for (var i = 0; i < 3; i = i + 1) print i;`
	whileSrc := `{ var i = 0; while (i < 3) { print i; i = i + 1; } }`
	if got := run(t, forSrc); got != run(t, whileSrc) {
		t.Errorf("for-loop output %q does not match its while-loop desugaring", got)
	}
}

func TestUndefinedVariableIsARuntimeError(t *testing.T) {
	msg := runExpectError(t, `print nope;`)
	if !strings.Contains(msg, "Undefined variable 'nope'.") {
		t.Errorf("error = %q, want undefined variable message", msg)
	}
}

func TestCallingNonCallableIsARuntimeError(t *testing.T) {
	msg := runExpectError(t, `var x = 1; x();`)
	if !strings.Contains(msg, "Can only call functions and classes.") {
		t.Errorf("error = %q, want non-callable message", msg)
	}
}

func TestWrongArityIsARuntimeError(t *testing.T) {
	msg := runExpectError(t, `fun f(a, b) { return a + b; } f(1);`)
	if !strings.Contains(msg, "Expected 2 arguments but got 1.") {
		t.Errorf("error = %q, want arity mismatch message", msg)
	}
}

func TestClockIsCallableWithArityZero(t *testing.T) {
	if got := run(t, `print clock() >= 0;`); got != "true\n" {
		t.Errorf("output = %q, want \"true\"", got)
	}
}
