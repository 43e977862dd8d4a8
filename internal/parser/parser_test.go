package parser

import (
	"testing"

	"github.com/havrix/glox/internal/ast"
)

func TestParseExpressionStatementPrecedence(t *testing.T) {
	stmts, err := New(`1 + 2 * 3;`).Parse()
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	if len(stmts) != 1 {
		t.Fatalf("got %d statements, want 1", len(stmts))
	}
	exprStmt, ok := stmts[0].(*ast.ExpressionStmt)
	if !ok {
		t.Fatalf("statement is %T, want *ast.ExpressionStmt", stmts[0])
	}
	bin, ok := exprStmt.Expression.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("expression is %T, want *ast.BinaryExpr", exprStmt.Expression)
	}
	if bin.Operator.Lexeme != "+" {
		t.Fatalf("top-level operator = %q, want \"+\" (multiplication should bind tighter)", bin.Operator.Lexeme)
	}
	if _, ok := bin.Right.(*ast.BinaryExpr); !ok {
		t.Fatalf("right operand is %T, want *ast.BinaryExpr (the 2 * 3 subexpression)", bin.Right)
	}
}

func TestParseForLoopDesugarsToWhile(t *testing.T) {
	stmts, err := New(`for (var i = 0; i < 3; i = i + 1) print i;`).Parse()
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	block, ok := stmts[0].(*ast.BlockStmt)
	if !ok {
		t.Fatalf("top-level statement is %T, want *ast.BlockStmt wrapping the desugared initializer+while", stmts[0])
	}
	if len(block.Statements) != 2 {
		t.Fatalf("desugared block has %d statements, want 2 (init + while)", len(block.Statements))
	}
	if _, ok := block.Statements[0].(*ast.VarStmt); !ok {
		t.Errorf("first statement is %T, want *ast.VarStmt", block.Statements[0])
	}
	if _, ok := block.Statements[1].(*ast.WhileStmt); !ok {
		t.Errorf("second statement is %T, want *ast.WhileStmt", block.Statements[1])
	}
}

func TestParseClassWithSuperclass(t *testing.T) {
	stmts, err := New(`class B < A { m() { return 1; } }`).Parse()
	if err != nil {
		t.Fatalf("parse error: %s", err)
	}
	class, ok := stmts[0].(*ast.ClassStmt)
	if !ok {
		t.Fatalf("statement is %T, want *ast.ClassStmt", stmts[0])
	}
	if class.Superclass == nil || class.Superclass.Name.Lexeme != "A" {
		t.Fatalf("superclass = %+v, want VariableExpr(A)", class.Superclass)
	}
	if len(class.Methods) != 1 || class.Methods[0].Name.Lexeme != "m" {
		t.Fatalf("methods = %+v, want one method named m", class.Methods)
	}
}

func TestInvalidAssignmentTargetIsAnError(t *testing.T) {
	_, err := New(`1 + 2 = 3;`).Parse()
	if err == nil {
		t.Fatal("expected a parse error for an invalid assignment target, got none")
	}
}

func TestUnterminatedStatementSynchronizes(t *testing.T) {
	// Missing semicolon after the first statement should report exactly
	// one error and still recover enough to parse the second.
	stmts, err := New("var a = 1\nvar b = 2;").Parse()
	if err == nil {
		t.Fatal("expected a parse error for the missing semicolon, got none")
	}
	found := false
	for _, s := range stmts {
		if v, ok := s.(*ast.VarStmt); ok && v.Name.Lexeme == "b" {
			found = true
		}
	}
	if !found {
		t.Errorf("synchronize did not recover far enough to parse 'var b'; got %#v", stmts)
	}
}
