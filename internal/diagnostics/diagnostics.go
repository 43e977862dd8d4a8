// Package diagnostics formats the three disjoint error categories of
// §7 — compile, resolution, and runtime errors — the same way across
// both evaluators, and stamps each interpreter run with a correlation
// id so that multiple REPL lines' error output can be told apart in
// captured logs.
package diagnostics

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CompileError is a scanner or compiler error, reported with source
// line and formatted "[line N] Error at '<lexeme>': <message>" (or
// "Error at end" once the scanner has hit EOF).
type CompileError struct {
	Line    int
	Where   string // the lexeme, or "" for EOF/no-lexeme errors
	AtEnd   bool
	Message string
}

func (e *CompileError) Error() string {
	var where string
	switch {
	case e.AtEnd:
		where = " at end"
	case e.Where != "":
		where = fmt.Sprintf(" at '%s'", e.Where)
	}
	return fmt.Sprintf("[line %d] Error%s: %s", e.Line, where, e.Message)
}

// ResolutionError is a tree-walker resolver-pass error (§4.5, §7.2):
// uninitialized self-read, duplicate declaration, return misuse,
// this/super misuse, self-inheritance.
type ResolutionError struct {
	Line    int
	Message string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("[line %d] Error: %s", e.Line, e.Message)
}

// Frame is one level of a runtime-error backtrace, innermost first.
type Frame struct {
	FuncName string
	Line     int
}

// RuntimeError is a §7.3 runtime error: a type mismatch, undefined
// variable, bad arity, non-callable callee, non-instance property
// access, or stack overflow. It carries the call-frame backtrace the
// VM had unwound at the moment of the error.
type RuntimeError struct {
	Message string
	Frames  []Frame
}

func (e *RuntimeError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Message)
	for _, f := range e.Frames {
		sb.WriteString("\n[line ")
		fmt.Fprintf(&sb, "%d", f.Line)
		sb.WriteString("] in ")
		if f.FuncName == "" {
			sb.WriteString("script")
		} else {
			sb.WriteString(f.FuncName + "()")
		}
	}
	return sb.String()
}

// Batch accumulates compile or resolution errors across a run,
// matching the pipeline's "continue on errors, report them all"
// contract (see internal/pipeline) rather than aborting at the first
// one. RunID correlates one batch's Report output across multiple
// log lines, e.g. several REPL lines each producing their own batch.
type Batch struct {
	RunID string
	Errs  []error
}

// NewBatch stamps a fresh correlation id for one compile-and-run
// attempt (one REPL line, or one whole file).
func NewBatch() *Batch {
	return &Batch{RunID: uuid.NewString()}
}

func (b *Batch) Add(err error) {
	b.Errs = append(b.Errs, err)
}

func (b *Batch) HasErrors() bool {
	return len(b.Errs) > 0
}

// Report writes every accumulated error to w, one per line, each
// tagged with the batch's RunID so that interleaved REPL-line output
// in a captured log can be split back out by run.
func (b *Batch) Report(w interface{ Write([]byte) (int, error) }) {
	for _, err := range b.Errs {
		fmt.Fprintf(w, "[%s] %s\n", b.RunID, err.Error())
	}
}
