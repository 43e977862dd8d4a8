package vm

// add implements `+` for number+number and string+string (concatenation
// is the one case of `+` overloaded by operand type — §4.2).
func (vm *VM) add() error {
	b, a := vm.peek(0), vm.peek(1)
	switch {
	case a.IsNumber() && b.IsNumber():
		vm.pop()
		vm.pop()
		vm.push(Number(a.AsNumber() + b.AsNumber()))
		return nil
	case a.IsString() && b.IsString():
		vm.pop()
		vm.pop()
		concat := append(append([]byte{}, a.AsString().Chars()...), b.AsString().Chars()...)
		vm.push(FromObject(vm.internBytes(concat)))
		return nil
	default:
		return vm.runtimeError("Operands must be two numbers or two strings.")
	}
}

func (vm *VM) numericBinary(op func(a, b float64) Value) error {
	b, a := vm.peek(0), vm.peek(1)
	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeError("Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	vm.push(op(a.AsNumber(), b.AsNumber()))
	return nil
}

func (vm *VM) negate() error {
	if !vm.peek(0).IsNumber() {
		return vm.runtimeError("Operand must be a number.")
	}
	v := vm.pop()
	vm.push(Number(-v.AsNumber()))
	return nil
}

// getProperty implements OP_GET_PROPERTY: a field wins over a method
// of the same name (fields shadow methods, matching the reference
// interpreter), and a method not found as a field is bound into a
// BoundMethod rather than called immediately.
func (vm *VM) getProperty(name *ObjString) error {
	receiver := vm.peek(0)
	if !receiver.IsObject() {
		return vm.runtimeError("Only instances have properties.")
	}
	instance, ok := receiver.AsObject().(*ObjInstance)
	if !ok {
		return vm.runtimeError("Only instances have properties.")
	}

	if value, ok := instance.Fields.Get(name); ok {
		vm.pop()
		vm.push(value)
		return nil
	}
	return vm.bindMethod(instance.Class, name)
}

func (vm *VM) setProperty(name *ObjString) error {
	receiver := vm.peek(1)
	if !receiver.IsObject() {
		return vm.runtimeError("Only instances have fields.")
	}
	instance, ok := receiver.AsObject().(*ObjInstance)
	if !ok {
		return vm.runtimeError("Only instances have fields.")
	}

	value := vm.peek(0)
	instance.Fields.Put(name, value)

	vm.pop()
	vm.pop()
	vm.push(value)
	return nil
}
