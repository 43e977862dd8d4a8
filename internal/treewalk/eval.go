package treewalk

import (
	"fmt"

	"github.com/havrix/glox/internal/ast"
	"github.com/havrix/glox/internal/token"
)

// evaluate computes the value of expr in the interpreter's current
// environment. Runtime type errors use the same wording as the
// bytecode VM's vm_ops.go so both evaluators report identical
// messages for identical programs.
func (interp *Interpreter) evaluate(expr ast.Expr) (any, error) {
	switch e := expr.(type) {
	case *ast.LiteralExpr:
		return e.Value, nil

	case *ast.GroupingExpr:
		return interp.evaluate(e.Expression)

	case *ast.UnaryExpr:
		right, err := interp.evaluate(e.Right)
		if err != nil {
			return nil, err
		}
		switch e.Operator.Kind {
		case token.Minus:
			n, ok := right.(float64)
			if !ok {
				return nil, fmt.Errorf("Operand must be a number.")
			}
			return -n, nil
		case token.Bang:
			return !isTruthy(right), nil
		}

	case *ast.BinaryExpr:
		return interp.evalBinary(e)

	case *ast.LogicalExpr:
		left, err := interp.evaluate(e.Left)
		if err != nil {
			return nil, err
		}
		if e.Operator.Kind == token.Or {
			if isTruthy(left) {
				return left, nil
			}
		} else if !isTruthy(left) {
			return left, nil
		}
		return interp.evaluate(e.Right)

	case *ast.VariableExpr:
		return interp.lookUpVariable(e.Name.Lexeme, e)

	case *ast.AssignExpr:
		value, err := interp.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		if err := interp.assignVariable(e.Name.Lexeme, e, value); err != nil {
			return nil, err
		}
		return value, nil

	case *ast.CallExpr:
		return interp.evalCall(e)

	case *ast.GetExpr:
		obj, err := interp.evaluate(e.Object)
		if err != nil {
			return nil, err
		}
		instance, ok := obj.(*Instance)
		if !ok {
			return nil, fmt.Errorf("Only instances have properties.")
		}
		return instance.Get(e.Name.Lexeme)

	case *ast.SetExpr:
		obj, err := interp.evaluate(e.Object)
		if err != nil {
			return nil, err
		}
		instance, ok := obj.(*Instance)
		if !ok {
			return nil, fmt.Errorf("Only instances have fields.")
		}
		value, err := interp.evaluate(e.Value)
		if err != nil {
			return nil, err
		}
		instance.Set(e.Name.Lexeme, value)
		return value, nil

	case *ast.ThisExpr:
		return interp.lookUpVariable("this", e)

	case *ast.SuperExpr:
		return interp.evalSuper(e)
	}
	return nil, fmt.Errorf("unreachable: unknown expression type %T", expr)
}

func (interp *Interpreter) evalBinary(e *ast.BinaryExpr) (any, error) {
	left, err := interp.evaluate(e.Left)
	if err != nil {
		return nil, err
	}
	right, err := interp.evaluate(e.Right)
	if err != nil {
		return nil, err
	}

	switch e.Operator.Kind {
	case token.EqualEqual:
		return isEqual(left, right), nil
	case token.BangEqual:
		return !isEqual(left, right), nil
	case token.Plus:
		if ln, ok := left.(float64); ok {
			if rn, ok := right.(float64); ok {
				return ln + rn, nil
			}
		}
		if ls, ok := left.(string); ok {
			if rs, ok := right.(string); ok {
				return ls + rs, nil
			}
		}
		return nil, fmt.Errorf("Operands must be two numbers or two strings.")
	}

	ln, lok := left.(float64)
	rn, rok := right.(float64)
	if !lok || !rok {
		return nil, fmt.Errorf("Operands must be numbers.")
	}
	switch e.Operator.Kind {
	case token.Minus:
		return ln - rn, nil
	case token.Star:
		return ln * rn, nil
	case token.Slash:
		return ln / rn, nil
	case token.Greater:
		return ln > rn, nil
	case token.GreaterEqual:
		return ln >= rn, nil
	case token.Less:
		return ln < rn, nil
	case token.LessEqual:
		return ln <= rn, nil
	}
	return nil, fmt.Errorf("unreachable: unknown binary operator %s", e.Operator.Lexeme)
}

func (interp *Interpreter) evalCall(e *ast.CallExpr) (any, error) {
	callee, err := interp.evaluate(e.Callee)
	if err != nil {
		return nil, err
	}

	args := make([]any, len(e.Arguments))
	for i, a := range e.Arguments {
		v, err := interp.evaluate(a)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}

	callable, ok := callee.(Callable)
	if !ok {
		return nil, fmt.Errorf("Can only call functions and classes.")
	}
	if len(args) != callable.Arity() {
		return nil, fmt.Errorf("Expected %d arguments but got %d.", callable.Arity(), len(args))
	}
	return callable.Call(interp, args)
}

func (interp *Interpreter) evalSuper(e *ast.SuperExpr) (any, error) {
	distance := interp.locals[e]
	superclass := interp.env.ancestor(distance).values["super"].(*Class)
	instance := interp.env.ancestor(distance - 1).values["this"].(*Instance)

	method := superclass.FindMethod(e.Method.Lexeme)
	if method == nil {
		return nil, fmt.Errorf("Undefined property '%s'.", e.Method.Lexeme)
	}
	return method.Bind(instance), nil
}
