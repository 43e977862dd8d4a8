package vm

import (
	"fmt"
	"io"

	"github.com/havrix/glox/internal/config"
	"github.com/havrix/glox/internal/diagnostics"
	"github.com/havrix/glox/internal/table"
)

const (
	framesMax = 64
	stackMax  = framesMax * 256
)

// CallFrame is one ongoing call: the closure being executed, its
// instruction pointer, and the base of its locals within the VM's
// value stack.
type CallFrame struct {
	closure *ObjClosure
	ip      int
	base    int
}

// VM is the bytecode interpreter: the value stack, the call-frame
// stack, global bindings, the interned-string set, the open-upvalue
// list, and the GC's heap/threshold bookkeeping — one VM instance per
// running script, matching the reference implementation's process-wide
// singleton collapsed into a value so tests can run many in parallel.
type VM struct {
	stack    [stackMax]Value
	stackTop int

	frames     [framesMax]CallFrame
	frameCount int

	globals *table.Table[*ObjString, Value]
	strings *interner

	openUpvalues *ObjUpvalue

	// heap is the intrusive singly-linked list of every live Object,
	// threaded through each header.next, walked by the sweep phase.
	heap           Object
	bytesAllocated int
	nextGC         int
	grayStack      []Object

	initString *ObjString

	// currentCompiler roots the in-progress Compiler's Function (and,
	// transitively via enclosing, every enclosing one) during
	// compilation, before any of them are reachable from a closure the
	// stack or globals hold.
	currentCompiler *Compiler

	Out    io.Writer
	ErrOut io.Writer

	debug config.Debug
	gcCfg config.GC
}

// New constructs a VM ready to compile and run scripts. out/errOut
// receive `print` output and diagnostic/trace text respectively.
func New(cfg config.Config, out, errOut io.Writer) *VM {
	vm := &VM{
		globals: table.New[*ObjString, Value](),
		strings: newInterner(),
		Out:     out,
		ErrOut:  errOut,
		debug:   cfg.Debug,
		gcCfg:   cfg.GC,
		nextGC:  cfg.GC.InitialThresholdBytes,
	}
	vm.initString = vm.internBytes([]byte("init"))
	vm.defineNative("clock", 0, nativeClock)
	return vm
}

// internBytes returns the canonical ObjString for b, allocating and
// heap-registering a new one only if no byte-equal string is already
// live. Used by both the compiler (string literals, identifiers) and
// the VM (string concatenation results).
func (vm *VM) internBytes(b []byte) *ObjString {
	return vm.strings.intern(b, func(key *table.StrKey) *ObjString {
		s := newObjString(key)
		vm.registerObject(s)
		return s
	})
}

// registerObject links obj onto the heap list and charges its
// estimated size against the allocation counter that drives
// collection (§4.7).
//
// It does not itself decide to collect: a freshly linked object isn't
// rooted anywhere yet (not on the stack, not in a table, not in a
// chunk's constant pool), so collecting here could sweep it right back
// up. maybeGC runs instead at instruction boundaries in run(), where
// everything live is already reachable from the stack/frames/globals.
func (vm *VM) registerObject(obj Object) {
	h := obj.head()
	h.next = vm.heap
	vm.heap = obj
	vm.bytesAllocated += objectSize(obj)
	if vm.debug.LogGC {
		fmt.Fprintf(vm.ErrOut, "%p allocate object %d\n", obj, obj.Kind())
	}
}

// maybeGC collects if stress mode is on or the byte threshold has been
// crossed. Call only from a point where every live value is reachable
// through a VM root (an instruction boundary during run(), never
// mid-allocation).
func (vm *VM) maybeGC() {
	if vm.debug.StressGC || vm.bytesAllocated > vm.nextGC {
		vm.collectGarbage()
	}
}

// objectSize is a rough per-kind accounting unit; exact byte counts
// don't matter, only that larger objects push the threshold sooner.
func objectSize(obj Object) int {
	switch o := obj.(type) {
	case *ObjString:
		return 32 + len(o.Chars())
	case *ObjFunction:
		return 64
	case *ObjNative:
		return 32
	case *ObjClosure:
		return 32 + 8*len(o.Upvalues)
	case *ObjUpvalue:
		return 24
	case *ObjClass:
		return 32
	case *ObjInstance:
		return 32
	case *ObjBoundMethod:
		return 32
	default:
		return 16
	}
}

func (vm *VM) defineNative(name string, arity int, fn NativeFn) {
	nameStr := vm.internBytes([]byte(name))
	native := newObjNative(name, arity, fn)
	vm.registerObject(native)
	vm.globals.Put(nameStr, FromObject(native))
}

// ---- value stack ----

func (vm *VM) push(v Value) {
	vm.stack[vm.stackTop] = v
	vm.stackTop++
}

func (vm *VM) pop() Value {
	vm.stackTop--
	return vm.stack[vm.stackTop]
}

func (vm *VM) peek(distance int) Value {
	return vm.stack[vm.stackTop-1-distance]
}

func (vm *VM) resetStack() {
	vm.stackTop = 0
	vm.frameCount = 0
	vm.openUpvalues = nil
}

// Interpret compiles and runs source, writing `print` output to
// vm.Out. A non-nil error is either a *diagnostics.CompileError batch
// (joined) or a *diagnostics.RuntimeError.
func (vm *VM) Interpret(source string) error {
	fn, err := vm.Compile(source)
	if err != nil {
		return err
	}

	vm.resetStack()
	closure := newObjClosure(fn)
	vm.registerObject(closure)
	vm.push(FromObject(closure))
	if err := vm.callClosure(closure, 0); err != nil {
		return err
	}

	return vm.run()
}

func (vm *VM) frame() *CallFrame {
	return &vm.frames[vm.frameCount-1]
}

func (vm *VM) readByte(f *CallFrame) byte {
	b := f.closure.Function.Chunk.Code[f.ip]
	f.ip++
	return b
}

func (vm *VM) readUint16(f *CallFrame) uint16 {
	v := f.closure.Function.Chunk.ReadUint16(f.ip)
	f.ip += 2
	return v
}

func (vm *VM) readConstant(f *CallFrame) Value {
	return f.closure.Function.Chunk.Constants[vm.readByte(f)]
}

func (vm *VM) readString(f *CallFrame) *ObjString {
	return vm.readConstant(f).AsString()
}

// runtimeError builds a *diagnostics.RuntimeError with the current
// call-frame backtrace (innermost first) and resets the stack, as
// §7.3 requires: one runtime error ends the run.
func (vm *VM) runtimeError(format string, args ...any) error {
	msg := fmt.Sprintf(format, args...)
	frames := make([]diagnostics.Frame, 0, vm.frameCount)
	for i := vm.frameCount - 1; i >= 0; i-- {
		f := &vm.frames[i]
		fn := f.closure.Function
		line := 0
		if f.ip-1 >= 0 && f.ip-1 < len(fn.Chunk.Lines) {
			line = fn.Chunk.Lines[f.ip-1]
		}
		name := ""
		if fn.Name != nil {
			name = fn.Name.String()
		}
		frames = append(frames, diagnostics.Frame{FuncName: name, Line: line})
	}
	vm.resetStack()
	return &diagnostics.RuntimeError{Message: msg, Frames: frames}
}
