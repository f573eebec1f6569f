package vm

import (
	"math"

	"github.com/wasmint/wasmint/errz"
	"github.com/wasmint/wasmint/object"
	"github.com/wasmint/wasmint/op"
)

// binary applies an integer operation. Addition, subtraction and
// multiplication wrap around.
func binary(name string, bop op.BinaryOpType, left, right object.Value) (object.Value, error) {
	switch left.Type().Kind() {
	case object.KindI32:
		a, b := left.I32(), right.I32()
		switch bop {
		case op.Add:
			return object.NewI32(a + b), nil
		case op.Sub:
			return object.NewI32(a - b), nil
		case op.Mul:
			return object.NewI32(a * b), nil
		case op.DivS:
			if b == 0 {
				return object.Value{}, divideByZero(name)
			}
			if a == math.MinInt32 && b == -1 {
				return object.Value{}, errz.NewTrapf(errz.ErrIntegerOverflow, name, "integer overflow")
			}
			return object.NewI32(a / b), nil
		case op.RemS:
			if b == 0 {
				return object.Value{}, divideByZero(name)
			}
			if b == -1 {
				return object.NewI32(0), nil
			}
			return object.NewI32(a % b), nil
		case op.And:
			return object.NewI32(a & b), nil
		case op.Or:
			return object.NewI32(a | b), nil
		case op.Xor:
			return object.NewI32(a ^ b), nil
		}
	case object.KindI64:
		a, b := left.I64(), right.I64()
		switch bop {
		case op.Add:
			return object.NewI64(a + b), nil
		case op.Sub:
			return object.NewI64(a - b), nil
		case op.Mul:
			return object.NewI64(a * b), nil
		case op.DivS:
			if b == 0 {
				return object.Value{}, divideByZero(name)
			}
			if a == math.MinInt64 && b == -1 {
				return object.Value{}, errz.NewTrapf(errz.ErrIntegerOverflow, name, "integer overflow")
			}
			return object.NewI64(a / b), nil
		case op.RemS:
			if b == 0 {
				return object.Value{}, divideByZero(name)
			}
			if b == -1 {
				return object.NewI64(0), nil
			}
			return object.NewI64(a % b), nil
		case op.And:
			return object.NewI64(a & b), nil
		case op.Or:
			return object.NewI64(a | b), nil
		case op.Xor:
			return object.NewI64(a ^ b), nil
		}
	}
	return object.Value{}, errz.NewInterpreterErrorf(name, "unsupported operands %s and %s", left.Type(), right.Type())
}

func divideByZero(name string) error {
	return errz.NewTrapf(errz.ErrDivideByZero, name, "integer divide by zero")
}

// compare applies a signed comparison and returns 1 or 0 as an i32.
func compare(name string, cop op.CompareOpType, left, right object.Value) (object.Value, error) {
	var a, b int64
	switch left.Type().Kind() {
	case object.KindI32:
		a, b = int64(left.I32()), int64(right.I32())
	case object.KindI64:
		a, b = left.I64(), right.I64()
	default:
		return object.Value{}, errz.NewInterpreterErrorf(name, "unsupported operands %s and %s", left.Type(), right.Type())
	}
	var result bool
	switch cop {
	case op.Eq:
		result = a == b
	case op.Ne:
		result = a != b
	case op.LtS:
		result = a < b
	case op.GtS:
		result = a > b
	case op.LeS:
		result = a <= b
	case op.GeS:
		result = a >= b
	default:
		return object.Value{}, errz.NewInterpreterErrorf(name, "unknown comparison %d", cop)
	}
	return boolValue(result), nil
}

func eqz(v object.Value) object.Value {
	return boolValue(v.IsZero())
}

func boolValue(b bool) object.Value {
	if b {
		return object.NewI32(1)
	}
	return object.NewI32(0)
}
