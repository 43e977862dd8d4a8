package vm

import (
	"bytes"
	"strings"
	"testing"

	"github.com/havrix/glox/internal/config"
)

// run compiles and executes src against a fresh VM, returning whatever
// `print` wrote to stdout.
func run(t *testing.T, src string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	machine := New(config.DefaultConfig(), &out, &errOut)
	if err := machine.Interpret(src); err != nil {
		t.Fatalf("unexpected error: %s (stderr: %s)", err, errOut.String())
	}
	return out.String()
}

func runExpectError(t *testing.T, src string) string {
	t.Helper()
	var out, errOut bytes.Buffer
	machine := New(config.DefaultConfig(), &out, &errOut)
	err := machine.Interpret(src)
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

func TestForLoopDesugaring(t *testing.T) {
	forSrc := `for (var i = 0; i < 3; i = i + 1) print i;`
	whileSrc := `{ var i = 0; while (i < 3) { print i; i = i + 1; } }`
	if got := run(t, forSrc); got != run(t, whileSrc) {
		t.Errorf("for-loop output %q does not match its while-loop desugaring", got)
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

func TestStringInterning(t *testing.T) {
	var out, errOut bytes.Buffer
	machine := New(config.DefaultConfig(), &out, &errOut)
	if err := machine.Interpret(`var a = "hi"; var b = "h" + "i";`); err != nil {
		t.Fatalf("unexpected error: %s", err)
	}
	a, _ := machine.globals.Get(machine.internBytes([]byte("a")))
	b, _ := machine.globals.Get(machine.internBytes([]byte("b")))
	if a.AsObject() != b.AsObject() {
		t.Errorf("equal-content strings were not interned to the same object")
	}
}

// TestGlobalSurvivesGCAcrossStatements reproduces the REPL shape: each
// statement compiles and runs as its own one-shot top-level closure,
// which becomes unreachable the moment it returns. A collection
// between statements must not tombstone a global's name out of the
// interner, or a later statement referring to it by the same name
// would intern a fresh, differently-identified *ObjString and miss
// the binding in vm.globals (§4.7 phase 1: the globals table's keys,
// not just its values, are roots).
func TestGlobalSurvivesGCAcrossStatements(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Debug.StressGC = true
	var out, errOut bytes.Buffer
	machine := New(cfg, &out, &errOut)

	if err := machine.Interpret(`var a = 1;`); err != nil {
		t.Fatalf("unexpected error defining a: %s", err)
	}
	if err := machine.Interpret(`fun clockIsZero() { return clock() >= 0; }`); err != nil {
		t.Fatalf("unexpected error defining clockIsZero: %s", err)
	}
	if err := machine.Interpret(`print a; print clockIsZero();`); err != nil {
		t.Fatalf("unexpected error reading a/clockIsZero after GC: %s (stderr: %s)", err, errOut.String())
	}
	if got := out.String(); got != "1\ntrue\n" {
		t.Errorf("output = %q, want \"1\\ntrue\\n\"", got)
	}
}

func TestGCSoundnessUnderStress(t *testing.T) {
	src := `
	class Node {
		init(v) { this.v = v; }
	}
	fun build(n) {
		var head = nil;
		for (var i = 0; i < n; i = i + 1) {
			var node = Node(i);
			node.next = head;
			head = node;
		}
		return head;
	}
	var list = build(50);
	var sum = 0;
	while (list != nil) {
		sum = sum + list.v;
		list = list.next;
	}
	print sum;
	`
	cfg := config.DefaultConfig()
	cfg.Debug.StressGC = true
	var out, errOut bytes.Buffer
	machine := New(cfg, &out, &errOut)
	if err := machine.Interpret(src); err != nil {
		t.Fatalf("unexpected error under StressGC: %s (stderr: %s)", err, errOut.String())
	}
	if got := out.String(); got != "1225\n" {
		t.Errorf("output under StressGC = %q, want \"1225\"", got)
	}
}

func TestRuntimeErrorUnwindsStack(t *testing.T) {
	msg := runExpectError(t, `
	fun a() { b(); }
	fun b() { c(); }
	fun c() { return 1 + nil; }
	a();
	`)
	for _, want := range []string{"a()", "b()", "c()"} {
		if !strings.Contains(msg, want) {
			t.Errorf("backtrace %q missing frame %q", msg, want)
		}
	}
}
