// Package object provides the value kinds understood by the interpreter.
//
// Each kind has exactly one *Type instance, so types are compared by
// identity:
//
//	if instr.ReturnType() == object.Void {
//		// statement, produces no value
//	}
package object

import "fmt"

// Kind identifies a value kind.
type Kind uint8

const (
	KindVoid Kind = iota
	KindI32
	KindI64
	KindF32
	KindF64

	// KindAny marks a child slot that accepts an instruction of any type.
	KindAny
)

// Type describes a value kind. There is one Type instance per Kind.
type Type struct {
	kind Kind
	name string
}

// Type singletons
var (
	Void = &Type{kind: KindVoid, name: "void"}
	I32  = &Type{kind: KindI32, name: "i32"}
	I64  = &Type{kind: KindI64, name: "i64"}
	F32  = &Type{kind: KindF32, name: "f32"}
	F64  = &Type{kind: KindF64, name: "f64"}
	Any  = &Type{kind: KindAny, name: "any"}
)

var types = [...]*Type{
	KindVoid: Void,
	KindI32:  I32,
	KindI64:  I64,
	KindF32:  F32,
	KindF64:  F64,
	KindAny:  Any,
}

// Kind returns the kind described by this type.
func (t *Type) Kind() Kind {
	return t.kind
}

// Name returns the name of the type as used in the text format, e.g. "i32".
func (t *Type) Name() string {
	return t.name
}

func (t *Type) String() string {
	return t.name
}

// IsNumeric returns true for the integer and float kinds.
func (t *Type) IsNumeric() bool {
	switch t.kind {
	case KindI32, KindI64, KindF32, KindF64:
		return true
	default:
		return false
	}
}

// IsInteger returns true for i32 and i64.
func (t *Type) IsInteger() bool {
	return t.kind == KindI32 || t.kind == KindI64
}

// Accepts reports whether an instruction returning other may fill a child
// slot declared with this type.
func (t *Type) Accepts(other *Type) bool {
	if t == Any {
		return other != Any
	}
	return t == other
}

// TypeOf returns the singleton for the given kind.
func TypeOf(kind Kind) *Type {
	if int(kind) >= len(types) {
		panic(fmt.Sprintf("unknown type kind: %d", kind))
	}
	return types[kind]
}

// ParseType returns the value type with the given name. The slot wildcard
// "any" is not a value type and is rejected.
func ParseType(name string) (*Type, error) {
	switch name {
	case "void", "":
		return Void, nil
	case "i32":
		return I32, nil
	case "i64":
		return I64, nil
	case "f32":
		return F32, nil
	case "f64":
		return F64, nil
	default:
		return nil, fmt.Errorf("unknown value type: %q", name)
	}
}
