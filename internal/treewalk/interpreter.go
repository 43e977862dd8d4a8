// Package treewalk implements the resolver-assisted tree-walking
// evaluator: the second of the spec's two evaluator architectures,
// run directly over the internal/ast tree internal/parser produces
// rather than compiling to bytecode.
package treewalk

import (
	"fmt"
	"io"
	"time"

	"github.com/havrix/glox/internal/ast"
	"github.com/havrix/glox/internal/diagnostics"
	"github.com/havrix/glox/internal/resolver"
)

// returnSignal is how a ReturnStmt escapes the statement-execution
// recursion: it satisfies error so every exec method's existing error
// return threads it upward unchanged, and Function.Call unwraps it
// rather than treating it as a real failure.
type returnSignal struct{ value any }

func (r *returnSignal) Error() string { return "return outside a function" }

// Interpreter is one independently constructible tree-walking Lox
// runtime: its own global Environment, its own output stream, no
// package-level state, so a test (or an embedder) can run many of
// these in one process concurrently as long as each is only ever
// driven by one goroutine at a time.
type Interpreter struct {
	globals *Environment
	env     *Environment
	locals  map[ast.Expr]int

	Out    io.Writer
	ErrOut io.Writer
}

func New(out, errOut io.Writer) *Interpreter {
	globals := NewEnvironment(nil)
	globals.Define("clock", &NativeFunction{
		Name: "clock", arity: 0,
		Fn: func(args []any) (any, error) {
			return float64(time.Now().UnixNano()) / 1e9, nil
		},
	})
	return &Interpreter{globals: globals, env: globals, Out: out, ErrOut: errOut}
}

// Interpret resolves and runs a parsed program. A resolution error
// aborts before any statement runs; a runtime error aborts the
// statement in progress, leaving side effects from earlier statements
// intact (matching the bytecode VM's one-runtime-error-ends-the-run
// behavior, applied per top-level statement here since the REPL runs
// one statement list per line).
func (interp *Interpreter) Interpret(stmts []ast.Stmt) error {
	r := resolver.New()
	if err := r.Resolve(stmts); err != nil {
		return err
	}
	interp.locals = r.Locals

	for _, stmt := range stmts {
		if err := interp.execute(stmt); err != nil {
			return interp.wrapRuntimeError(err)
		}
	}
	return nil
}

func (interp *Interpreter) wrapRuntimeError(err error) error {
	if _, ok := err.(*diagnostics.RuntimeError); ok {
		return err
	}
	return &diagnostics.RuntimeError{Message: err.Error()}
}

func (interp *Interpreter) lookUpVariable(name string, expr ast.Expr) (any, error) {
	if distance, ok := interp.locals[expr]; ok {
		return interp.env.GetAt(distance, name), nil
	}
	return interp.globals.Get(name)
}

func (interp *Interpreter) assignVariable(name string, expr ast.Expr, value any) error {
	if distance, ok := interp.locals[expr]; ok {
		interp.env.AssignAt(distance, name, value)
		return nil
	}
	return interp.globals.Assign(name, value)
}

func isTruthy(v any) bool {
	if v == nil {
		return false
	}
	if b, ok := v.(bool); ok {
		return b
	}
	return true
}

func isEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return a == b
}

func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return "nil"
	case bool:
		if val {
			return "true"
		}
		return "false"
	case float64:
		return formatNumber(val)
	case string:
		return val
	case fmt.Stringer:
		return val.String()
	default:
		return fmt.Sprintf("%v", val)
	}
}
