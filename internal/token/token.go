// Package token defines the lexeme kinds shared by the bytecode
// compiler's scanner and the tree-walker's scanner.
package token

// Kind identifies the syntactic category of a Token.
type Kind int

const (
	// Single-character tokens.
	LeftParen Kind = iota
	RightParen
	LeftBrace
	RightBrace
	Comma
	Dot
	Minus
	Plus
	Semicolon
	Slash
	Star

	// One or two character tokens.
	Bang
	BangEqual
	Equal
	EqualEqual
	Greater
	GreaterEqual
	Less
	LessEqual

	// Literals.
	Identifier
	String
	Number

	// Keywords.
	And
	Class
	Else
	False
	Fun
	For
	If
	Nil
	Or
	Print
	Return
	Super
	This
	True
	Var
	While

	Error
	EOF
)

// Keywords maps reserved identifiers to their Kind.
var Keywords = map[string]Kind{
	"and":    And,
	"class":  Class,
	"else":   Else,
	"false":  False,
	"for":    For,
	"fun":    Fun,
	"if":     If,
	"nil":    Nil,
	"or":     Or,
	"print":  Print,
	"return": Return,
	"super":  Super,
	"this":   This,
	"true":   True,
	"var":    Var,
	"while":  While,
}

// Token is a single lexeme produced by a scanner.
//
// Lexeme is a slice of the original source; it must not be retained
// past the lifetime of the source string it was scanned from becoming
// invalid (Go strings are immutable, so in practice it is always safe).
type Token struct {
	Kind    Kind
	Lexeme  string
	Line    int
	Literal any // float64 for Number, string for String; nil otherwise
}

func (t Token) String() string {
	return t.Lexeme
}

// names gives a human-readable label for diagnostics and disassembly.
var names = map[Kind]string{
	LeftParen: "(", RightParen: ")", LeftBrace: "{", RightBrace: "}",
	Comma: ",", Dot: ".", Minus: "-", Plus: "+", Semicolon: ";",
	Slash: "/", Star: "*",
	Bang: "!", BangEqual: "!=", Equal: "=", EqualEqual: "==",
	Greater: ">", GreaterEqual: ">=", Less: "<", LessEqual: "<=",
	Identifier: "identifier", String: "string", Number: "number",
	And: "and", Class: "class", Else: "else", False: "false",
	Fun: "fun", For: "for", If: "if", Nil: "nil", Or: "or",
	Print: "print", Return: "return", Super: "super", This: "this",
	True: "true", Var: "var", While: "while",
	Error: "error", EOF: "EOF",
}

func (k Kind) String() string {
	if s, ok := names[k]; ok {
		return s
	}
	return "unknown"
}
