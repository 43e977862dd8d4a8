package vm

import "fmt"

// collectGarbage runs one full mark-sweep cycle (§4.7): mark every
// root, trace the mark graph to a fixed point, drop the interner's
// weak references to anything left unmarked, sweep the heap list, and
// recompute the next collection threshold from what's left.
func (vm *VM) collectGarbage() {
	if vm.debug.LogGC {
		fmt.Fprintln(vm.ErrOut, "-- gc begin")
	}
	before := vm.bytesAllocated

	vm.markRoots()
	vm.traceReferences()
	vm.strings.removeUnmarked()
	vm.sweep()

	vm.nextGC = int(float64(vm.bytesAllocated) * vm.thresholdGrowth())
	if vm.nextGC < vm.gcCfg.InitialThresholdBytes {
		vm.nextGC = vm.gcCfg.InitialThresholdBytes
	}

	if vm.debug.LogGC {
		fmt.Fprintf(vm.ErrOut, "-- gc end   collected %d bytes (from %d to %d) next at %d\n",
			before-vm.bytesAllocated, before, vm.bytesAllocated, vm.nextGC)
	}
}

func (vm *VM) thresholdGrowth() float64 {
	if vm.gcCfg.GrowthFactor <= 0 {
		return 2.0
	}
	return vm.gcCfg.GrowthFactor
}

// markRoots marks every object directly reachable without tracing:
// the value stack, each call frame's closure, every open upvalue, the
// interned "init" string, the globals table, and (mid-compile) the
// Function chain of every Compiler currently in scope.
func (vm *VM) markRoots() {
	for i := 0; i < vm.stackTop; i++ {
		vm.markValue(vm.stack[i])
	}
	for i := 0; i < vm.frameCount; i++ {
		vm.markObject(vm.frames[i].closure)
	}
	for up := vm.openUpvalues; up != nil; up = up.Next {
		vm.markObject(up)
	}
	vm.globals.Each(func(k *ObjString, v Value) {
		vm.markObject(k)
		vm.markValue(v)
	})
	if vm.initString != nil {
		vm.markObject(vm.initString)
	}
	for c := vm.currentCompiler; c != nil; c = c.enclosing {
		vm.markObject(c.function)
	}
}

func (vm *VM) markValue(v Value) {
	if v.IsObject() {
		vm.markObject(v.AsObject())
	}
}

func (vm *VM) markObject(obj Object) {
	if obj == nil {
		return
	}
	h := obj.head()
	if h.marked {
		return
	}
	h.marked = true
	if vm.debug.LogGC {
		fmt.Fprintf(vm.ErrOut, "%p mark %s\n", obj, obj.String())
	}
	vm.grayStack = append(vm.grayStack, obj)
}

// traceReferences processes the gray stack until empty, graying each
// object's own references in turn (blackenObject).
func (vm *VM) traceReferences() {
	for len(vm.grayStack) > 0 {
		obj := vm.grayStack[len(vm.grayStack)-1]
		vm.grayStack = vm.grayStack[:len(vm.grayStack)-1]
		vm.blackenObject(obj)
	}
}

func (vm *VM) blackenObject(obj Object) {
	switch o := obj.(type) {
	case *ObjFunction:
		if o.Name != nil { // nil for the top-level script
			vm.markObject(o.Name)
		}
		for _, c := range o.Chunk.Constants {
			vm.markValue(c)
		}
	case *ObjClosure:
		vm.markObject(o.Function)
		for _, up := range o.Upvalues {
			vm.markObject(up)
		}
	case *ObjUpvalue:
		vm.markValue(*o.Location)
	case *ObjClass:
		vm.markObject(o.Name)
		o.Methods.Each(func(k *ObjString, method *ObjClosure) {
			vm.markObject(k)
			vm.markObject(method)
		})
	case *ObjInstance:
		vm.markObject(o.Class)
		o.Fields.Each(func(k *ObjString, v Value) {
			vm.markObject(k)
			vm.markValue(v)
		})
	case *ObjBoundMethod:
		vm.markValue(o.Receiver)
		vm.markObject(o.Method)
	case *ObjNative, *ObjString:
		// no outgoing references
	}
}

// sweep walks the intrusive heap list, freeing (unlinking) every
// unmarked object and clearing the mark bit on every survivor for the
// next cycle.
func (vm *VM) sweep() {
	var prev Object
	obj := vm.heap
	for obj != nil {
		h := obj.head()
		if h.marked {
			h.marked = false
			prev = obj
			obj = h.next
			continue
		}
		unreached := obj
		obj = h.next
		if prev != nil {
			prev.head().next = obj
		} else {
			vm.heap = obj
		}
		vm.bytesAllocated -= objectSize(unreached)
		if vm.debug.LogGC {
			fmt.Fprintf(vm.ErrOut, "%p free %s\n", unreached, unreached.String())
		}
	}
}
