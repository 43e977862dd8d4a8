package vm

import (
	"fmt"

	"github.com/havrix/glox/internal/diagnostics"
	"github.com/havrix/glox/internal/lexer"
	"github.com/havrix/glox/internal/token"
)

// FunctionType distinguishes the implicit top-level script from a
// declared function, a method, and an initializer — the distinction
// that drives the compiler's return-statement checks.
type FunctionType int

const (
	TypeScript FunctionType = iota
	TypeFunction
	TypeMethod
	TypeInitializer
)

// Local is one entry of a function's flat locals array. Depth is -1
// between declare and define, which is what makes reading a local
// from its own initializer a compile error.
type Local struct {
	Name       string
	Depth      int
	IsCaptured bool
}

// Upvalue describes one upvalue slot a function captures, resolved at
// compile time by resolveUpvalue.
type Upvalue struct {
	Index   byte
	IsLocal bool
}

const maxLocals = 256

// classState tracks whether the compiler is currently inside a class
// body (and whether that class has a superclass), for `this`/`super`
// validity checks.
type classState struct {
	enclosing     *classState
	hasSuperclass bool
}

// Compiler is a single-pass Pratt parser that emits bytecode directly
// into the Chunk of the Function it is currently compiling. Nested
// function/method declarations push a new Compiler sharing the same
// lexer and linked via enclosing; resolveUpvalue walks that chain.
type Compiler struct {
	vm *VM

	lex       *lexer.Lexer
	current   token.Token
	previous  token.Token
	hadError  bool
	panicMode bool
	errs      []error

	function *ObjFunction
	funcType FunctionType

	locals     [maxLocals]Local
	localCount int
	scopeDepth int

	upvalues []Upvalue

	enclosing *Compiler
	class     *classState
}

// Compile compiles source as the top-level script and returns its
// Function, ready to be wrapped in a Closure and run. A non-nil error
// means one or more compile errors occurred; the returned Function
// (if any) must not be executed.
func (vm *VM) Compile(source string) (*ObjFunction, error) {
	c := &Compiler{
		vm:       vm,
		lex:      lexer.New(source),
		funcType: TypeScript,
		function: newObjFunction(),
	}
	c.locals[0] = Local{Name: "", Depth: 0}
	c.localCount = 1

	savedCompiler := vm.currentCompiler
	vm.currentCompiler = c
	defer func() { vm.currentCompiler = savedCompiler }()

	c.advance()
	for !c.match(token.EOF) {
		c.declaration()
	}
	fn := c.endCompiler()

	if c.hadError {
		return nil, joinErrors(c.errs)
	}
	return fn, nil
}

func joinErrors(errs []error) error {
	if len(errs) == 1 {
		return errs[0]
	}
	msg := ""
	for i, e := range errs {
		if i > 0 {
			msg += "\n"
		}
		msg += e.Error()
	}
	return fmt.Errorf("%s", msg)
}

func newFunctionCompiler(parent *Compiler, name string, funcType FunctionType) *Compiler {
	c := &Compiler{
		vm:        parent.vm,
		lex:       parent.lex,
		current:   parent.current,
		previous:  parent.previous,
		funcType:  funcType,
		function:  newObjFunction(),
		enclosing: parent,
		class:     parent.class,
	}
	c.function.Name = parent.vm.internBytes([]byte(name))
	// Slot 0 holds the callee for functions, or `this` for methods.
	slotName := ""
	if funcType == TypeMethod || funcType == TypeInitializer {
		slotName = "this"
	}
	c.locals[0] = Local{Name: slotName, Depth: 0}
	c.localCount = 1
	return c
}

// endCompiler finishes the Function being compiled and restores
// the parser's two-token lookahead into the enclosing Compiler (if
// any) so it can keep consuming from the same lexer.
func (c *Compiler) endCompiler() *ObjFunction {
	c.emitReturn()
	fn := c.function
	fn.UpvalueCount = len(c.upvalues)

	if c.vm.debug.PrintCode && !c.hadError {
		name := "<script>"
		if fn.Name != nil {
			name = fn.Name.String()
		}
		fmt.Fprint(c.vm.ErrOut, Disassemble(fn.Chunk, name))
	}

	if c.enclosing != nil {
		c.enclosing.current = c.current
		c.enclosing.previous = c.previous
		c.enclosing.hadError = c.enclosing.hadError || c.hadError
		c.enclosing.panicMode = c.panicMode
		c.enclosing.errs = append(c.enclosing.errs, c.errs...)
	}
	return fn
}

// ---- parser plumbing ----

func (c *Compiler) advance() {
	c.previous = c.current
	for {
		c.current = c.lex.Next()
		if c.current.Kind != token.Error {
			break
		}
		c.errorAtCurrent(c.current.Lexeme)
	}
}

func (c *Compiler) check(k token.Kind) bool {
	return c.current.Kind == k
}

func (c *Compiler) match(k token.Kind) bool {
	if !c.check(k) {
		return false
	}
	c.advance()
	return true
}

func (c *Compiler) consume(k token.Kind, msg string) {
	if c.current.Kind == k {
		c.advance()
		return
	}
	c.errorAtCurrent(msg)
}

func (c *Compiler) errorAtCurrent(msg string) {
	c.errorAt(c.current, msg)
}

func (c *Compiler) error(msg string) {
	c.errorAt(c.previous, msg)
}

func (c *Compiler) errorAt(tok token.Token, msg string) {
	if c.panicMode {
		return
	}
	c.panicMode = true
	c.hadError = true
	c.errs = append(c.errs, &diagnostics.CompileError{
		Line:    tok.Line,
		Where:   tok.Lexeme,
		AtEnd:   tok.Kind == token.EOF,
		Message: msg,
	})
}

// synchronize exits panic mode at the next statement boundary: a
// semicolon, or a statement-starting keyword.
func (c *Compiler) synchronize() {
	c.panicMode = false
	for c.current.Kind != token.EOF {
		if c.previous.Kind == token.Semicolon {
			return
		}
		switch c.current.Kind {
		case token.Class, token.Fun, token.Var, token.For,
			token.If, token.While, token.Print, token.Return:
			return
		}
		c.advance()
	}
}
