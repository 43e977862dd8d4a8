package vm

import (
	"fmt"
	"strings"
)

// run drives the fetch-decode-execute loop over the current call
// frame until the outermost frame returns (OP_RETURN with frameCount
// reaching zero) or a runtime error unwinds the whole run.
func (vm *VM) run() error {
	f := vm.frame()

	for {
		vm.maybeGC()

		if vm.debug.TraceExecution {
			vm.traceInstruction(f)
		}

		op := Opcode(vm.readByte(f))
		switch op {
		case OpConstant:
			vm.push(vm.readConstant(f))

		case OpNil:
			vm.push(Nil())
		case OpTrue:
			vm.push(Bool(true))
		case OpFalse:
			vm.push(Bool(false))
		case OpPop:
			vm.pop()

		case OpGetLocal:
			slot := vm.readByte(f)
			vm.push(vm.stack[f.base+int(slot)])
		case OpSetLocal:
			slot := vm.readByte(f)
			vm.stack[f.base+int(slot)] = vm.peek(0)

		case OpGetGlobal:
			name := vm.readString(f)
			value, ok := vm.globals.Get(name)
			if !ok {
				return vm.runtimeError("Undefined variable '%s'.", name.String())
			}
			vm.push(value)
		case OpDefineGlobal:
			name := vm.readString(f)
			vm.globals.Put(name, vm.peek(0))
			vm.pop()
		case OpSetGlobal:
			name := vm.readString(f)
			if vm.globals.Put(name, vm.peek(0)) {
				vm.globals.Delete(name)
				return vm.runtimeError("Undefined variable '%s'.", name.String())
			}

		case OpGetUpvalue:
			slot := vm.readByte(f)
			vm.push(*f.closure.Upvalues[slot].Location)
		case OpSetUpvalue:
			slot := vm.readByte(f)
			*f.closure.Upvalues[slot].Location = vm.peek(0)

		case OpGetProperty:
			name := vm.readString(f)
			if err := vm.getProperty(name); err != nil {
				return err
			}
		case OpSetProperty:
			name := vm.readString(f)
			if err := vm.setProperty(name); err != nil {
				return err
			}
		case OpGetSuper:
			name := vm.readString(f)
			superclass := vm.pop().AsObject().(*ObjClass)
			if err := vm.bindMethod(superclass, name); err != nil {
				return err
			}

		case OpEqual:
			b, a := vm.pop(), vm.pop()
			vm.push(Bool(a.Equal(b)))
		case OpGreater:
			if err := vm.numericBinary(func(a, b float64) Value { return Bool(a > b) }); err != nil {
				return err
			}
		case OpLess:
			if err := vm.numericBinary(func(a, b float64) Value { return Bool(a < b) }); err != nil {
				return err
			}

		case OpAdd:
			if err := vm.add(); err != nil {
				return err
			}
		case OpSubtract:
			if err := vm.numericBinary(func(a, b float64) Value { return Number(a - b) }); err != nil {
				return err
			}
		case OpMultiply:
			if err := vm.numericBinary(func(a, b float64) Value { return Number(a * b) }); err != nil {
				return err
			}
		case OpDivide:
			if err := vm.numericBinary(func(a, b float64) Value { return Number(a / b) }); err != nil {
				return err
			}

		case OpNot:
			vm.push(Bool(!vm.pop().Truthy()))
		case OpNegate:
			if err := vm.negate(); err != nil {
				return err
			}

		case OpPrint:
			fmt.Fprintln(vm.Out, vm.pop().String())

		case OpJump:
			offset := vm.readUint16(f)
			f.ip += int(offset)
		case OpJumpIfFalse:
			offset := vm.readUint16(f)
			if !vm.peek(0).Truthy() {
				f.ip += int(offset)
			}
		case OpLoop:
			offset := vm.readUint16(f)
			f.ip -= int(offset)

		case OpCall:
			argCount := int(vm.readByte(f))
			if err := vm.callValue(vm.peek(argCount), argCount); err != nil {
				return err
			}
			f = vm.frame()

		case OpInvoke:
			name := vm.readString(f)
			argCount := int(vm.readByte(f))
			if err := vm.invoke(name, argCount); err != nil {
				return err
			}
			f = vm.frame()

		case OpSuperInvoke:
			name := vm.readString(f)
			argCount := int(vm.readByte(f))
			superclass := vm.pop().AsObject().(*ObjClass)
			if err := vm.invokeFromClass(superclass, name, argCount); err != nil {
				return err
			}
			f = vm.frame()

		case OpClosure:
			fn := vm.readConstant(f).AsObject().(*ObjFunction)
			closure := newObjClosure(fn)
			vm.registerObject(closure)
			vm.push(FromObject(closure))
			for i := 0; i < fn.UpvalueCount; i++ {
				isLocal := vm.readByte(f)
				index := int(vm.readByte(f))
				if isLocal != 0 {
					closure.Upvalues[i] = vm.captureUpvalue(f.base + index)
				} else {
					closure.Upvalues[i] = f.closure.Upvalues[index]
				}
			}

		case OpCloseUpvalue:
			vm.closeUpvalues(vm.stackTop - 1)
			vm.pop()

		case OpReturn:
			result := vm.pop()
			vm.closeUpvalues(f.base)
			vm.frameCount--
			if vm.frameCount == 0 {
				vm.pop()
				return nil
			}
			vm.stackTop = f.base
			vm.push(result)
			f = vm.frame()

		case OpClass:
			name := vm.readString(f)
			class := newObjClass(name)
			vm.registerObject(class)
			vm.push(FromObject(class))

		case OpInherit:
			superValue := vm.peek(1)
			if !superValue.IsObject() {
				return vm.runtimeError("Superclass must be a class.")
			}
			superclass, ok := superValue.AsObject().(*ObjClass)
			if !ok {
				return vm.runtimeError("Superclass must be a class.")
			}
			subclass := vm.peek(0).AsObject().(*ObjClass)
			superclass.Methods.CopyTo(subclass.Methods)
			vm.pop() // the subclass; the superclass stays below it as the "super" local

		case OpMethod:
			name := vm.readString(f)
			method := vm.pop().AsObject().(*ObjClosure)
			class := vm.peek(0).AsObject().(*ObjClass)
			class.Methods.Put(name, method)

		default:
			return vm.runtimeError("Unknown opcode %d.", byte(op))
		}
	}
}

func (vm *VM) traceInstruction(f *CallFrame) {
	fmt.Fprint(vm.ErrOut, "          ")
	for i := 0; i < vm.stackTop; i++ {
		fmt.Fprintf(vm.ErrOut, "[ %s ]", vm.stack[i].String())
	}
	fmt.Fprintln(vm.ErrOut)
	var sb strings.Builder
	disassembleInstruction(&sb, f.closure.Function.Chunk, f.ip)
	fmt.Fprint(vm.ErrOut, sb.String())
}
