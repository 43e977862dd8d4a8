package vm

import (
	"fmt"

	"github.com/havrix/glox/internal/table"
)

// ObjKind tags the concrete type of a heap Object, used by the GC's
// sweep and by disassembly/printing.
type ObjKind uint8

const (
	KindString ObjKind = iota
	KindFunction
	KindNative
	KindClosure
	KindUpvalue
	KindClass
	KindInstance
	KindBoundMethod
)

// header is the common heap-object prefix: kind, GC mark bit, and the
// intrusive next-in-heap-list link the sweeper walks.
type header struct {
	kind   ObjKind
	marked bool
	next   Object
}

// Object is any heap-allocated Lox value. All Objects are owned by
// the VM's heap list and reachable only through the mark graph from
// §4.7; there is no separate reference-counting or ownership scheme.
type Object interface {
	Kind() ObjKind
	String() string
	head() *header
}

func (h *header) Kind() ObjKind  { return h.kind }
func (h *header) head() *header { return h }

// ObjString is an immutable byte sequence plus its cached FNV-1a
// hash, carried in Key. ObjString itself (not Key) is what every
// table.Table in this package is keyed on, so the GC can mark a
// table's keys exactly like any other reachable object and a
// collection can never leave a table holding an identity the
// interner has since evicted. Byte-equal strings are always the same
// *ObjString once interned (see interner.go), so string equality
// elsewhere in the VM reduces to pointer equality.
type ObjString struct {
	header
	Key *table.StrKey
}

func newObjString(key *table.StrKey) *ObjString {
	return &ObjString{header: header{kind: KindString}, Key: key}
}

func (s *ObjString) Chars() []byte  { return s.Key.Bytes }
func (s *ObjString) Hash() uint32   { return s.Key.Hash() }
func (s *ObjString) String() string { return string(s.Key.Bytes) }

// Function is a compiled function body: its arity, the number of
// upvalues it captures, its bytecode chunk, and an optional name (nil
// for the implicit top-level script).
type ObjFunction struct {
	header
	Arity        int
	UpvalueCount int
	Chunk        *Chunk
	Name         *ObjString
}

func newObjFunction() *ObjFunction {
	return &ObjFunction{header: header{kind: KindFunction}, Chunk: NewChunk()}
}

func (f *ObjFunction) String() string {
	if f.Name == nil {
		return "<script>"
	}
	return fmt.Sprintf("<fn %s>", f.Name.String())
}

// NativeFn is a host-provided computation backing a NativeFunction.
// args are already-evaluated argument Values; the return is the
// Value to push, or an error to raise as a runtime error.
type NativeFn func(args []Value) (Value, error)

// ObjNative wraps a host function with a fixed arity so the VM's call
// dispatch can arity-check it like any other callable.
type ObjNative struct {
	header
	Name  string
	Arity int
	Fn    NativeFn
}

func newObjNative(name string, arity int, fn NativeFn) *ObjNative {
	return &ObjNative{header: header{kind: KindNative}, Name: name, Arity: arity, Fn: fn}
}

func (n *ObjNative) String() string { return fmt.Sprintf("<native fn %s>", n.Name) }

// Upvalue is a closure's reference to a variable declared in an
// enclosing function. While Open it points at a slot of the runtime
// value stack; once Closed, Location points at its own Closed field.
type ObjUpvalue struct {
	header
	Location *Value
	Closed   Value
	Next     *ObjUpvalue // intrusive open-upvalue list, descending by stack slot

	// slot is the stack index Location aliases while open; it exists
	// purely so the VM can order and compare open upvalues without
	// doing pointer arithmetic on *Value. Meaningless once closed.
	slot int
}

func newObjUpvalue(slot int, location *Value) *ObjUpvalue {
	return &ObjUpvalue{header: header{kind: KindUpvalue}, Location: location, slot: slot}
}

func (u *ObjUpvalue) String() string { return "<upvalue>" }

func (u *ObjUpvalue) close() {
	u.Closed = *u.Location
	u.Location = &u.Closed
}

// Closure pairs a Function with the array of Upvalues it captured at
// the CLOSURE instruction that created it. Its length always equals
// Function.UpvalueCount once construction completes.
type ObjClosure struct {
	header
	Function *ObjFunction
	Upvalues []*ObjUpvalue
}

func newObjClosure(fn *ObjFunction) *ObjClosure {
	return &ObjClosure{
		header:   header{kind: KindClosure},
		Function: fn,
		Upvalues: make([]*ObjUpvalue, fn.UpvalueCount),
	}
}

func (c *ObjClosure) String() string { return c.Function.String() }

// Class is a name plus its own method table (name -> Closure), backed
// by the same open-addressing table.Table used for globals. A
// subclass's table already contains copies of its superclass's
// methods, installed by OP_INHERIT's copy-all at class-declaration
// time.
type ObjClass struct {
	header
	Name    *ObjString
	Methods *table.Table[*ObjString, *ObjClosure]
}

func newObjClass(name *ObjString) *ObjClass {
	return &ObjClass{header: header{kind: KindClass}, Name: name, Methods: table.New[*ObjString, *ObjClosure]()}
}

func (c *ObjClass) String() string { return c.Name.String() }

// Instance is a live object of some Class with its own field table,
// checked before the class's method table on property access.
type ObjInstance struct {
	header
	Class  *ObjClass
	Fields *table.Table[*ObjString, Value]
}

func newObjInstance(class *ObjClass) *ObjInstance {
	return &ObjInstance{header: header{kind: KindInstance}, Class: class, Fields: table.New[*ObjString, Value]()}
}

func (i *ObjInstance) String() string { return fmt.Sprintf("%s instance", i.Class.Name.String()) }

// BoundMethod pairs a receiver Value (always an Instance) with a
// method Closure, produced by GET_PROPERTY when the name resolves to
// a method rather than a field.
type ObjBoundMethod struct {
	header
	Receiver Value
	Method   *ObjClosure
}

func newObjBoundMethod(receiver Value, method *ObjClosure) *ObjBoundMethod {
	return &ObjBoundMethod{header: header{kind: KindBoundMethod}, Receiver: receiver, Method: method}
}

func (b *ObjBoundMethod) String() string { return b.Method.String() }
