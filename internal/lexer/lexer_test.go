package lexer

import (
	"testing"

	"github.com/havrix/glox/internal/token"
)

func scanAll(src string) []token.Token {
	l := New(src)
	var toks []token.Token
	for {
		tok := l.Next()
		toks = append(toks, tok)
		if tok.Kind == token.EOF {
			return toks
		}
	}
}

func kinds(toks []token.Token) []token.Kind {
	ks := make([]token.Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

func TestScanPunctuationAndOperators(t *testing.T) {
	toks := scanAll("(){},.-+;*/ ! != = == < <= > >=")
	want := []token.Kind{
		token.LeftParen, token.RightParen, token.LeftBrace, token.RightBrace,
		token.Comma, token.Dot, token.Minus, token.Plus, token.Semicolon,
		token.Star, token.Slash,
		token.Bang, token.BangEqual, token.Equal, token.EqualEqual,
		token.Less, token.LessEqual, token.Greater, token.GreaterEqual,
		token.EOF,
	}
	got := kinds(toks)
	if len(got) != len(want) {
		t.Fatalf("got %d tokens, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("token %d kind = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestScanKeywordsVsIdentifiers(t *testing.T) {
	toks := scanAll("and class orange")
	if toks[0].Kind != token.And {
		t.Errorf("\"and\" scanned as %s, want And", toks[0].Kind)
	}
	if toks[1].Kind != token.Class {
		t.Errorf("\"class\" scanned as %s, want Class", toks[1].Kind)
	}
	if toks[2].Kind != token.Identifier {
		t.Errorf("\"orange\" scanned as %s, want Identifier (keyword must match whole lexeme)", toks[2].Kind)
	}
}

func TestScanNumberLiteral(t *testing.T) {
	toks := scanAll("123 4.5")
	if toks[0].Kind != token.Number || toks[0].Literal.(float64) != 123 {
		t.Errorf("\"123\" = %+v, want Number literal 123", toks[0])
	}
	if toks[1].Kind != token.Number || toks[1].Literal.(float64) != 4.5 {
		t.Errorf("\"4.5\" = %+v, want Number literal 4.5", toks[1])
	}
}

func TestScanStringLiteral(t *testing.T) {
	toks := scanAll(`"hello world"`)
	if toks[0].Kind != token.String {
		t.Fatalf("kind = %s, want String", toks[0].Kind)
	}
	if toks[0].Literal.(string) != "hello world" {
		t.Errorf("literal = %q, want \"hello world\"", toks[0].Literal)
	}
}

func TestUnterminatedStringIsAnErrorToken(t *testing.T) {
	toks := scanAll(`"unterminated`)
	if toks[0].Kind != token.Error {
		t.Fatalf("kind = %s, want Error", toks[0].Kind)
	}
}

func TestLineCounting(t *testing.T) {
	toks := scanAll("1\n2\n\n3")
	wantLines := []int{1, 2, 4}
	for i, want := range wantLines {
		if toks[i].Line != want {
			t.Errorf("token %d line = %d, want %d", i, toks[i].Line, want)
		}
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	toks := scanAll("1 // this is a comment\n2")
	if len(toks) != 3 { // 1, 2, EOF
		t.Fatalf("got %d tokens, want 3: %v", len(toks), kinds(toks))
	}
	if toks[0].Literal.(float64) != 1 || toks[1].Literal.(float64) != 2 {
		t.Errorf("comment was not fully skipped: %+v", toks)
	}
}
