// Package parser implements the tree-walker's recursive-descent parser:
// the same grammar as the bytecode compiler's Pratt parser (internal/vm),
// but producing an internal/ast tree instead of emitting bytecode
// directly, since the tree-walker needs a structure the resolver can
// annotate before evaluation.
package parser

import (
	"fmt"

	"github.com/havrix/glox/internal/ast"
	"github.com/havrix/glox/internal/diagnostics"
	"github.com/havrix/glox/internal/lexer"
	"github.com/havrix/glox/internal/token"
)

// Parser holds the two-token lookahead window over a lexer's output.
type Parser struct {
	lex       *lexer.Lexer
	current   token.Token
	previous  token.Token
	errs      []error
	panicMode bool
}

// New returns a Parser positioned before the first token of source.
func New(source string) *Parser {
	p := &Parser{lex: lexer.New(source)}
	p.advance()
	return p
}

// Parse consumes the whole token stream and returns the program as a
// list of top-level statements. A non-nil error means one or more
// parse errors occurred; the returned statements (whichever parsed
// cleanly) should not be resolved or evaluated.
func (p *Parser) Parse() ([]ast.Stmt, error) {
	var stmts []ast.Stmt
	for p.current.Kind != token.EOF {
		stmts = append(stmts, p.declaration())
	}
	if len(p.errs) > 0 {
		return stmts, joinErrors(p.errs)
	}
	return stmts, nil
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

// ---- token plumbing ----

func (p *Parser) advance() {
	p.previous = p.current
	for {
		p.current = p.lex.Next()
		if p.current.Kind != token.Error {
			break
		}
		p.errorAtCurrent(p.current.Lexeme)
	}
}

func (p *Parser) check(k token.Kind) bool { return p.current.Kind == k }

func (p *Parser) match(kinds ...token.Kind) bool {
	for _, k := range kinds {
		if p.check(k) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(k token.Kind, msg string) token.Token {
	if p.current.Kind == k {
		tok := p.current
		p.advance()
		return tok
	}
	p.errorAtCurrent(msg)
	return p.current
}

func (p *Parser) errorAtCurrent(msg string) { p.errorAt(p.current, msg) }
func (p *Parser) error(msg string)          { p.errorAt(p.previous, msg) }

func (p *Parser) errorAt(tok token.Token, msg string) {
	if p.panicMode {
		return
	}
	p.panicMode = true
	p.errs = append(p.errs, &diagnostics.CompileError{
		Line:    tok.Line,
		Where:   tok.Lexeme,
		AtEnd:   tok.Kind == token.EOF,
		Message: msg,
	})
}

// synchronize recovers from a parse error at the next statement
// boundary, matching the compiler's panic-mode recovery exactly.
func (p *Parser) synchronize() {
	p.panicMode = false
	for p.current.Kind != token.EOF {
		if p.previous.Kind == token.Semicolon {
			return
		}
		switch p.current.Kind {
		case token.Class, token.Fun, token.Var, token.For,
			token.If, token.While, token.Print, token.Return:
			return
		}
		p.advance()
	}
}
