package object

import (
	"fmt"
	"math"
	"strconv"
)

// Value is an immutable typed scalar. Integers are stored in their two's
// complement form and floats as IEEE 754 bits, so equality of two values of
// the same type is equality of their bits.
type Value struct {
	typ  *Type
	bits uint64
}

// NewI32 returns an i32 value.
func NewI32(v int32) Value {
	return Value{typ: I32, bits: uint64(uint32(v))}
}

// NewI64 returns an i64 value.
func NewI64(v int64) Value {
	return Value{typ: I64, bits: uint64(v)}
}

// NewF32 returns an f32 value.
func NewF32(v float32) Value {
	return Value{typ: F32, bits: uint64(math.Float32bits(v))}
}

// NewF64 returns an f64 value.
func NewF64(v float64) Value {
	return Value{typ: F64, bits: math.Float64bits(v)}
}

// Zero returns the zero value of the given numeric type. Locals are
// initialized with it.
func Zero(t *Type) Value {
	if !t.IsNumeric() {
		panic(fmt.Sprintf("no zero value for type %s", t))
	}
	return Value{typ: t}
}

// Type returns the type of the value. The zero Value has a nil type.
func (v Value) Type() *Type {
	return v.typ
}

func (v Value) I32() int32 {
	return int32(uint32(v.bits))
}

func (v Value) I64() int64 {
	return int64(v.bits)
}

func (v Value) F32() float32 {
	return math.Float32frombits(uint32(v.bits))
}

func (v Value) F64() float64 {
	return math.Float64frombits(v.bits)
}

// IsZero returns true if the value is numerically zero. Used for branch
// conditions.
func (v Value) IsZero() bool {
	switch v.typ {
	case I32:
		return v.I32() == 0
	case F32:
		return v.F32() == 0
	case F64:
		return v.F64() == 0
	default:
		return v.bits == 0
	}
}

// Equals returns true if both values have the same type and bits.
func (v Value) Equals(other Value) bool {
	return v.typ == other.typ && v.bits == other.bits
}

// Interface converts the value to a native Go value.
func (v Value) Interface() interface{} {
	switch v.typ {
	case I32:
		return v.I32()
	case I64:
		return v.I64()
	case F32:
		return v.F32()
	case F64:
		return v.F64()
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.typ {
	case I32:
		return "i32:" + strconv.FormatInt(int64(v.I32()), 10)
	case I64:
		return "i64:" + strconv.FormatInt(v.I64(), 10)
	case F32:
		return "f32:" + strconv.FormatFloat(float64(v.F32()), 'g', -1, 32)
	case F64:
		return "f64:" + strconv.FormatFloat(v.F64(), 'g', -1, 64)
	default:
		return "void"
	}
}

// ParseValue parses text as a value of the given numeric type.
func ParseValue(t *Type, text string) (Value, error) {
	switch t {
	case I32:
		n, err := strconv.ParseInt(text, 0, 32)
		if err != nil {
			return Value{}, fmt.Errorf("invalid i32 %q: %w", text, err)
		}
		return NewI32(int32(n)), nil
	case I64:
		n, err := strconv.ParseInt(text, 0, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid i64 %q: %w", text, err)
		}
		return NewI64(n), nil
	case F32:
		f, err := strconv.ParseFloat(text, 32)
		if err != nil {
			return Value{}, fmt.Errorf("invalid f32 %q: %w", text, err)
		}
		return NewF32(float32(f)), nil
	case F64:
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return Value{}, fmt.Errorf("invalid f64 %q: %w", text, err)
		}
		return NewF64(f), nil
	default:
		return Value{}, fmt.Errorf("cannot parse a value of type %s", t)
	}
}
