package resolver

import (
	"strings"
	"testing"

	"github.com/havrix/glox/internal/parser"
)

func TestResolveValidProgram(t *testing.T) {
	p := parser.New(`
	var a = "global";
	{
		fun show() { print a; }
		show();
		var a = "local";
		show();
	}
	`)
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	r := New()
	if err := r.Resolve(stmts); err != nil {
		t.Fatalf("unexpected resolution error: %s", err)
	}
}

func TestSelfReadInInitializerIsAnError(t *testing.T) {
	p := parser.New(`var x = "hi"; { var x = x; print x; }`)
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	r := New()
	err = r.Resolve(stmts)
	if err == nil {
		t.Fatal("expected a resolution error, got none")
	}
	if !strings.Contains(err.Error(), "Can't read local variable in its own initializer.") {
		t.Errorf("error = %q, want self-read-in-initializer message", err)
	}
}

func TestDuplicateDeclarationInScopeIsAnError(t *testing.T) {
	p := parser.New(`{ var a = 1; var a = 2; }`)
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if err := New().Resolve(stmts); err == nil {
		t.Fatal("expected a resolution error for duplicate declaration, got none")
	}
}

func TestTopLevelReturnIsAnError(t *testing.T) {
	p := parser.New(`return 1;`)
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if err := New().Resolve(stmts); err == nil {
		t.Fatal("expected a resolution error for top-level return, got none")
	}
}

func TestReturnValueFromInitializerIsAnError(t *testing.T) {
	p := parser.New(`class A { init() { return 1; } }`)
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if err := New().Resolve(stmts); err == nil {
		t.Fatal("expected a resolution error for value-returning initializer, got none")
	}
}

func TestThisOutsideClassIsAnError(t *testing.T) {
	p := parser.New(`print this;`)
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if err := New().Resolve(stmts); err == nil {
		t.Fatal("expected a resolution error for this outside a class, got none")
	}
}

func TestSelfInheritanceIsAnError(t *testing.T) {
	p := parser.New(`class Oops < Oops {}`)
	stmts, err := p.Parse()
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if err := New().Resolve(stmts); err == nil {
		t.Fatal("expected a resolution error for self-inheritance, got none")
	}
}
