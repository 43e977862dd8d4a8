package vm

import (
	"math"
	"strconv"
	"strings"
)

// ValueKind tags which of nil, boolean, number, or heap-object a
// Value currently holds.
type ValueKind uint8

const (
	ValNil ValueKind = iota
	ValBool
	ValNumber
	ValObject
)

// Value is a stack-allocated tagged union: nil, boolean, 64-bit float,
// or a reference to a heap Object. This is the tagged-sum
// representation the spec allows as an alternative to NaN-boxing; it
// trades a few bytes of padding for not having to steal bit patterns
// out of float64, which keeps arithmetic and disassembly code
// straightforward to read.
type Value struct {
	Kind ValueKind
	num  float64
	obj  Object
}

func Nil() Value                { return Value{Kind: ValNil} }
func Bool(b bool) Value         { return boolValues[b] }
func Number(f float64) Value    { return Value{Kind: ValNumber, num: f} }
func FromObject(o Object) Value { return Value{Kind: ValObject, obj: o} }

var boolValues = map[bool]Value{
	true:  {Kind: ValBool, num: 1},
	false: {Kind: ValBool, num: 0},
}

func (v Value) IsNil() bool    { return v.Kind == ValNil }
func (v Value) IsBool() bool   { return v.Kind == ValBool }
func (v Value) IsNumber() bool { return v.Kind == ValNumber }
func (v Value) IsObject() bool { return v.Kind == ValObject }

func (v Value) AsBool() bool      { return v.num != 0 }
func (v Value) AsNumber() float64 { return v.num }
func (v Value) AsObject() Object  { return v.obj }

func (v Value) ObjectKind() ObjKind { return v.obj.Kind() }

func (v Value) IsString() bool      { return v.Kind == ValObject && v.obj.Kind() == KindString }
func (v Value) AsString() *ObjString { return v.obj.(*ObjString) }

// Truthy implements "nil is false; boolean false is false; every
// other value is truthy."
func (v Value) Truthy() bool {
	switch v.Kind {
	case ValNil:
		return false
	case ValBool:
		return v.AsBool()
	default:
		return true
	}
}

// Equal implements the value-equality rules of §4.2: nil==nil, direct
// boolean/number comparison (IEEE-754, so NaN != NaN — see the open
// question in DESIGN.md), string equality by interned identity, and
// reference identity for every other object kind.
func (v Value) Equal(other Value) bool {
	if v.Kind != other.Kind {
		return false
	}
	switch v.Kind {
	case ValNil:
		return true
	case ValBool:
		return v.AsBool() == other.AsBool()
	case ValNumber:
		return v.num == other.num
	case ValObject:
		if v.IsString() && other.IsString() {
			return v.obj == other.obj // interning makes this byte equality
		}
		return v.obj == other.obj
	}
	return false
}

// String renders v the way `print` does: compact floats with no
// trailing ".0" when integral, bare nil/true/false, and each object
// kind's own String().
func (v Value) String() string {
	switch v.Kind {
	case ValNil:
		return "nil"
	case ValBool:
		if v.AsBool() {
			return "true"
		}
		return "false"
	case ValNumber:
		return formatNumber(v.num)
	case ValObject:
		return v.obj.String()
	}
	return "<invalid value>"
}

func formatNumber(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// strconv may emit exponent form (e.g. "1e+20"); for the common
	// case of an integral value that fits without one, prefer the
	// plain "7" over "7" with a trailing ".0" the spec forbids.
	if f == math.Trunc(f) && !strings.ContainsAny(s, "eE") {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	return s
}

func typeName(v Value) string {
	switch v.Kind {
	case ValNil:
		return "nil"
	case ValBool:
		return "boolean"
	case ValNumber:
		return "number"
	case ValObject:
		switch v.obj.Kind() {
		case KindString:
			return "string"
		case KindFunction, KindClosure, KindNative, KindBoundMethod:
			return "function"
		case KindClass:
			return "class"
		case KindInstance:
			return "instance"
		default:
			return "object"
		}
	}
	return "value"
}
