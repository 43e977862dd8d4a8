package treewalk

import (
	"fmt"

	"github.com/havrix/glox/internal/ast"
)

// Callable is any Lox value that OP_CALL's tree-walking equivalent
// (evalCall) can invoke: a user-defined Function, a NativeFunction, or
// a Class acting as its own constructor.
type Callable interface {
	Arity() int
	Call(interp *Interpreter, args []any) (any, error)
	String() string
}

// Function is a user-defined function or method, closed over the
// environment active where it was declared — the tree-walker's
// analogue of a bytecode Closure, except the "upvalues" are simply
// whatever the closed-over Environment chain already holds.
type Function struct {
	Declaration   *ast.FunctionStmt
	Closure       *Environment
	IsInitializer bool
}

func (f *Function) Arity() int { return len(f.Declaration.Params) }

func (f *Function) String() string { return fmt.Sprintf("<fn %s>", f.Declaration.Name.Lexeme) }

// Bind returns a copy of f whose closure has a fresh scope defining
// "this" as instance, used by GetExpr when the resolved name is a
// method rather than a field.
func (f *Function) Bind(instance *Instance) *Function {
	env := NewEnvironment(f.Closure)
	env.Define("this", instance)
	return &Function{Declaration: f.Declaration, Closure: env, IsInitializer: f.IsInitializer}
}

// Call runs the function body in a fresh scope over its closure,
// binding each parameter, and catches the sentinel *returnSignal a
// nested ReturnStmt raises to escape the block-statement recursion.
func (f *Function) Call(interp *Interpreter, args []any) (result any, err error) {
	env := NewEnvironment(f.Closure)
	for i, param := range f.Declaration.Params {
		env.Define(param.Lexeme, args[i])
	}

	err = interp.executeBlock(f.Declaration.Body, env)
	if ret, ok := err.(*returnSignal); ok {
		if f.IsInitializer {
			return f.Closure.GetAt(0, "this"), nil
		}
		return ret.value, nil
	}
	if err != nil {
		return nil, err
	}
	if f.IsInitializer {
		return f.Closure.GetAt(0, "this"), nil
	}
	return nil, nil
}

// NativeFunction wraps a host Go function, matching §6's single
// builtin `clock`.
type NativeFunction struct {
	Name  string
	arity int
	Fn    func(args []any) (any, error)
}

func (n *NativeFunction) Arity() int { return n.arity }
func (n *NativeFunction) String() string { return fmt.Sprintf("<native fn %s>", n.Name) }
func (n *NativeFunction) Call(interp *Interpreter, args []any) (any, error) {
	return n.Fn(args)
}

// Class is a Lox class: a name, an optional superclass, and its own
// method table. Method lookup walks the superclass chain directly
// (the resolver/bytecode path instead copies a superclass's methods
// into the subclass's own table at OP_INHERIT time; the tree-walker
// keeps the chain instead of copying, since it pays no GC cost either
// way and a live chain is simpler to read here).
type Class struct {
	Name       string
	Superclass *Class
	Methods    map[string]*Function
}

func (c *Class) String() string { return c.Name }

func (c *Class) FindMethod(name string) *Function {
	if m, ok := c.Methods[name]; ok {
		return m
	}
	if c.Superclass != nil {
		return c.Superclass.FindMethod(name)
	}
	return nil
}

func (c *Class) Arity() int {
	if init := c.FindMethod("init"); init != nil {
		return init.Arity()
	}
	return 0
}

// Call constructs a fresh Instance and, if the class defines "init",
// runs it bound to that instance before returning it.
func (c *Class) Call(interp *Interpreter, args []any) (any, error) {
	instance := &Instance{Class: c, Fields: make(map[string]any)}
	if init := c.FindMethod("init"); init != nil {
		if _, err := init.Bind(instance).Call(interp, args); err != nil {
			return nil, err
		}
	}
	return instance, nil
}

// Instance is a live object of some Class. Fields shadow methods of
// the same name, matching the bytecode VM's getProperty.
type Instance struct {
	Class  *Class
	Fields map[string]any
}

func (i *Instance) String() string { return i.Class.Name + " instance" }

func (i *Instance) Get(name string) (any, error) {
	if v, ok := i.Fields[name]; ok {
		return v, nil
	}
	if method := i.Class.FindMethod(name); method != nil {
		return method.Bind(i), nil
	}
	return nil, fmt.Errorf("Undefined property '%s'.", name)
}

func (i *Instance) Set(name string, value any) {
	i.Fields[name] = value
}
