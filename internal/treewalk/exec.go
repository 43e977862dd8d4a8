package treewalk

import (
	"fmt"

	"github.com/havrix/glox/internal/ast"
)

// execute runs one statement in the interpreter's current environment.
// A *returnSignal returned here is not a failure: it is propagated
// unchanged up through block/if/while recursion until Function.Call
// catches it.
func (interp *Interpreter) execute(stmt ast.Stmt) error {
	switch s := stmt.(type) {
	case *ast.BlockStmt:
		return interp.executeBlock(s.Statements, NewEnvironment(interp.env))

	case *ast.VarStmt:
		var value any
		if s.Initializer != nil {
			v, err := interp.evaluate(s.Initializer)
			if err != nil {
				return err
			}
			value = v
		}
		interp.env.Define(s.Name.Lexeme, value)
		return nil

	case *ast.FunctionStmt:
		fn := &Function{Declaration: s, Closure: interp.env}
		interp.env.Define(s.Name.Lexeme, fn)
		return nil

	case *ast.ExpressionStmt:
		_, err := interp.evaluate(s.Expression)
		return err

	case *ast.PrintStmt:
		v, err := interp.evaluate(s.Expression)
		if err != nil {
			return err
		}
		fmt.Fprintln(interp.Out, stringify(v))
		return nil

	case *ast.IfStmt:
		cond, err := interp.evaluate(s.Condition)
		if err != nil {
			return err
		}
		if isTruthy(cond) {
			return interp.execute(s.ThenBranch)
		}
		if s.ElseBranch != nil {
			return interp.execute(s.ElseBranch)
		}
		return nil

	case *ast.WhileStmt:
		for {
			cond, err := interp.evaluate(s.Condition)
			if err != nil {
				return err
			}
			if !isTruthy(cond) {
				return nil
			}
			if err := interp.execute(s.Body); err != nil {
				return err
			}
		}

	case *ast.ReturnStmt:
		var value any
		if s.Value != nil {
			v, err := interp.evaluate(s.Value)
			if err != nil {
				return err
			}
			value = v
		}
		return &returnSignal{value: value}

	case *ast.ClassStmt:
		return interp.executeClass(s)
	}
	return fmt.Errorf("unreachable: unknown statement type %T", stmt)
}

// executeBlock runs stmts in env, restoring the interpreter's previous
// environment before returning (including on error or *returnSignal),
// the same way the bytecode compiler's beginScope/endScope bracket a
// block at compile time instead.
func (interp *Interpreter) executeBlock(stmts []ast.Stmt, env *Environment) error {
	previous := interp.env
	interp.env = env
	defer func() { interp.env = previous }()

	for _, stmt := range stmts {
		if err := interp.execute(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (interp *Interpreter) executeClass(s *ast.ClassStmt) error {
	var superclass *Class
	if s.Superclass != nil {
		v, err := interp.evaluate(s.Superclass)
		if err != nil {
			return err
		}
		sc, ok := v.(*Class)
		if !ok {
			return fmt.Errorf("Superclass must be a class.")
		}
		superclass = sc
	}

	interp.env.Define(s.Name.Lexeme, nil)

	if s.Superclass != nil {
		interp.env = NewEnvironment(interp.env)
		interp.env.Define("super", superclass)
	}

	methods := make(map[string]*Function, len(s.Methods))
	for _, m := range s.Methods {
		methods[m.Name.Lexeme] = &Function{
			Declaration:   m,
			Closure:       interp.env,
			IsInitializer: m.Name.Lexeme == "init",
		}
	}

	class := &Class{Name: s.Name.Lexeme, Superclass: superclass, Methods: methods}

	if s.Superclass != nil {
		interp.env = interp.env.parent
	}

	return interp.env.Assign(s.Name.Lexeme, class)
}
