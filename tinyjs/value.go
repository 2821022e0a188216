package tinyjs

import "math"

// Type is the tag of a Value.
type Type uint8

// Object, Prop and String must stay 0, 1 and 2: the arena stores them in the
// two low bits of an entity header.
const (
	TypeObject Type = iota
	TypeProp
	TypeString
	TypeUndefined
	TypeNull
	TypeNumber
	TypeBoolean
	TypeFunction
	TypeCodeRef
	TypeNative
	TypeError
)

func (t Type) String() string {
	switch t {
	case TypeObject:
		return "object"
	case TypeProp:
		return "prop"
	case TypeString:
		return "string"
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeNumber:
		return "number"
	case TypeBoolean:
		return "boolean"
	case TypeFunction:
		return "function"
	case TypeCodeRef:
		return "coderef"
	case TypeNative:
		return "cfunc"
	case TypeError:
		return "err"
	default:
		return "??"
	}
}

// Value is a NaN-boxed 64 bit value. Plain doubles are stored as is, every
// other type lives in the quiet-NaN space:
//
//	0111 1111 1111 tttt | 48 bit payload
//
// The tag nibble holds type+1, so that +Inf (nibble 0, payload 0) stays a
// number. NaNs produced by arithmetic are stored with the sign bit set, which
// the boxing never does. Their payload bits are not preserved.
type Value uint64

const (
	nanMarker  = uint64(0x7ff) << 52
	dataMask   = uint64(0xffffffffffff)
	canonicNaN = uint64(0xfff8000000000000)
)

func mkval(t Type, data uint64) Value {
	return Value(nanMarker | uint64(t+1)<<48 | data&dataMask)
}

func (v Value) boxed() bool {
	return uint64(v)>>52 == 0x7ff && (uint64(v)>>48)&15 != 0
}

// Type returns the tag of v.
func (v Value) Type() Type {
	if !v.boxed() {
		return TypeNumber
	}
	return Type((uint64(v)>>48)&15) - 1
}

func (v Value) data() uint64 { return uint64(v) & dataMask }

// off is the payload of an arena-backed value.
func (v Value) off() uint32 { return uint32(v.data()) }

// IsErr reports whether v is an error value.
func (v Value) IsErr() bool { return v.Type() == TypeError }

// Num returns the number held by v. It is only meaningful for numbers.
func (v Value) Num() float64 { return math.Float64frombits(uint64(v)) }

// Bool returns the boolean held by v.
func (v Value) Bool() bool { return v.data()&1 != 0 }

// Number makes a number value.
func Number(f float64) Value {
	if f != f {
		return Value(canonicNaN)
	}
	return Value(math.Float64bits(f))
}

// Undefined makes the undefined value.
func Undefined() Value { return mkval(TypeUndefined, 0) }

// Null makes the null value.
func Null() Value { return mkval(TypeNull, 0) }

// True makes the boolean true.
func True() Value { return mkval(TypeBoolean, 1) }

// False makes the boolean false.
func False() Value { return mkval(TypeBoolean, 0) }

// Bool makes a boolean value.
func Bool(b bool) Value {
	if b {
		return True()
	}
	return False()
}

// mkcoderef packs an identifier span of the current source text.
func mkcoderef(off, n uint32) Value {
	return mkval(TypeCodeRef, uint64(off&0xffffff)|uint64(n&0xffffff)<<24)
}

func (v Value) coderefOff() uint32 { return uint32(v.data() & 0xffffff) }
func (v Value) coderefLen() uint32 { return uint32(v.data()>>24) & 0xffffff }

// isMemEntity reports whether values of type t point into the arena.
func isMemEntity(t Type) bool {
	return t == TypeObject || t == TypeProp || t == TypeString || t == TypeFunction
}
