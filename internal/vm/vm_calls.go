package vm

// callValue dispatches OP_CALL's callee by its runtime kind: a
// Closure pushes a new CallFrame, a NativeFunction runs immediately
// and pushes its result, a Class constructs an Instance (and chains
// into its "init" if it has one), and a BoundMethod unwraps to its
// underlying Closure with the receiver already in slot 0.
func (vm *VM) callValue(callee Value, argCount int) error {
	if !callee.IsObject() {
		return vm.runtimeError("Can only call functions and classes.")
	}

	switch o := callee.AsObject().(type) {
	case *ObjClosure:
		return vm.callClosure(o, argCount)
	case *ObjNative:
		return vm.callNative(o, argCount)
	case *ObjClass:
		return vm.callClass(o, argCount)
	case *ObjBoundMethod:
		vm.stack[vm.stackTop-argCount-1] = o.Receiver
		return vm.callClosure(o.Method, argCount)
	default:
		return vm.runtimeError("Can only call functions and classes.")
	}
}

func (vm *VM) callClosure(closure *ObjClosure, argCount int) error {
	if argCount != closure.Function.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", closure.Function.Arity, argCount)
	}
	if vm.frameCount == framesMax {
		return vm.runtimeError("Stack overflow.")
	}
	f := &vm.frames[vm.frameCount]
	vm.frameCount++
	f.closure = closure
	f.ip = 0
	f.base = vm.stackTop - argCount - 1
	return nil
}

func (vm *VM) callNative(native *ObjNative, argCount int) error {
	if argCount != native.Arity {
		return vm.runtimeError("Expected %d arguments but got %d.", native.Arity, argCount)
	}
	args := vm.stack[vm.stackTop-argCount : vm.stackTop]
	result, err := native.Fn(args)
	if err != nil {
		return vm.runtimeError("%s", err.Error())
	}
	vm.stackTop -= argCount + 1
	vm.push(result)
	return nil
}

func (vm *VM) callClass(class *ObjClass, argCount int) error {
	instance := newObjInstance(class)
	vm.registerObject(instance)
	vm.stack[vm.stackTop-argCount-1] = FromObject(instance)

	if init, ok := class.Methods.Get(vm.initString); ok {
		return vm.callClosure(init, argCount)
	}
	if argCount != 0 {
		return vm.runtimeError("Expected 0 arguments but got %d.", argCount)
	}
	return nil
}

// invoke fuses GET_PROPERTY+CALL into one dispatch: a field holding a
// callable still goes through the plain call path, but a method name
// is resolved and called directly off the class's method table without
// materializing an intermediate BoundMethod.
func (vm *VM) invoke(name *ObjString, argCount int) error {
	receiver := vm.peek(argCount)
	if !receiver.IsObject() {
		return vm.runtimeError("Only instances have properties.")
	}
	instance, ok := receiver.AsObject().(*ObjInstance)
	if !ok {
		return vm.runtimeError("Only instances have properties.")
	}

	if field, ok := instance.Fields.Get(name); ok {
		vm.stack[vm.stackTop-argCount-1] = field
		return vm.callValue(field, argCount)
	}

	return vm.invokeFromClass(instance.Class, name, argCount)
}

func (vm *VM) invokeFromClass(class *ObjClass, name *ObjString, argCount int) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.String())
	}
	return vm.callClosure(method, argCount)
}

func (vm *VM) bindMethod(class *ObjClass, name *ObjString) error {
	method, ok := class.Methods.Get(name)
	if !ok {
		return vm.runtimeError("Undefined property '%s'.", name.String())
	}
	bound := newObjBoundMethod(vm.peek(0), method)
	vm.registerObject(bound)
	vm.pop()
	vm.push(FromObject(bound))
	return nil
}

// captureUpvalue returns the open upvalue for stack slot idx (creating
// one if needed), reusing an existing open upvalue for that exact slot
// so two closures capturing the same variable share it. The intrusive
// list stays sorted by descending slot so closeUpvalues can stop early.
func (vm *VM) captureUpvalue(idx int) *ObjUpvalue {
	var prev *ObjUpvalue
	cur := vm.openUpvalues
	for cur != nil && cur.slot > idx {
		prev = cur
		cur = cur.Next
	}
	if cur != nil && cur.slot == idx {
		return cur
	}

	created := newObjUpvalue(idx, &vm.stack[idx])
	vm.registerObject(created)
	created.Next = cur
	if prev == nil {
		vm.openUpvalues = created
	} else {
		prev.Next = created
	}
	return created
}

// closeUpvalues closes every open upvalue at stack slot lastIdx or
// higher, copying each one's value out of the stack into its own
// Closed field before the stack slot is reused or popped.
func (vm *VM) closeUpvalues(lastIdx int) {
	for vm.openUpvalues != nil && vm.openUpvalues.slot >= lastIdx {
		up := vm.openUpvalues
		up.close()
		vm.openUpvalues = up.Next
	}
}
