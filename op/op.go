// Package op defines the instruction kinds of the tree instruction language.
package op

import "sort"

// Code is an integer opcode that identifies an instruction kind.
type Code uint16

const (
	Invalid Code = 0

	// Control
	Nop         Code = 1
	Unreachable Code = 2
	Block       Code = 3
	Loop        Code = 4
	Break       Code = 5
	BreakIf     Code = 6
	If          Code = 7
	Drop        Code = 8

	// Constants
	Const Code = 10

	// Locals
	GetLocal Code = 20
	SetLocal Code = 21
	TeeLocal Code = 22

	// Operations
	BinaryOp  Code = 30
	CompareOp Code = 31
	Eqz       Code = 32
)

// BinaryOpType describes an arithmetic or bitwise operation on two integers.
type BinaryOpType uint16

const (
	Add  BinaryOpType = 1
	Sub  BinaryOpType = 2
	Mul  BinaryOpType = 3
	DivS BinaryOpType = 4
	RemS BinaryOpType = 5
	And  BinaryOpType = 6
	Or   BinaryOpType = 7
	Xor  BinaryOpType = 8
)

var binaryOpNames = map[BinaryOpType]string{
	Add:  "add",
	Sub:  "sub",
	Mul:  "mul",
	DivS: "div_s",
	RemS: "rem_s",
	And:  "and",
	Or:   "or",
	Xor:  "xor",
}

// String returns the text format suffix of the operation, e.g. "add".
func (bop BinaryOpType) String() string {
	return binaryOpNames[bop]
}

// CompareOpType describes a signed integer comparison.
type CompareOpType uint16

const (
	Eq  CompareOpType = 1
	Ne  CompareOpType = 2
	LtS CompareOpType = 3
	GtS CompareOpType = 4
	LeS CompareOpType = 5
	GeS CompareOpType = 6
)

var compareOpNames = map[CompareOpType]string{
	Eq:  "eq",
	Ne:  "ne",
	LtS: "lt_s",
	GtS: "gt_s",
	LeS: "le_s",
	GeS: "ge_s",
}

// String returns the text format suffix of the comparison, e.g. "lt_s".
func (cop CompareOpType) String() string {
	return compareOpNames[cop]
}

// BinaryOpByName returns the binary operation with the given suffix.
func BinaryOpByName(name string) (BinaryOpType, bool) {
	for bop, n := range binaryOpNames {
		if n == name {
			return bop, true
		}
	}
	return 0, false
}

// CompareOpByName returns the comparison with the given suffix.
func CompareOpByName(name string) (CompareOpType, bool) {
	for cop, n := range compareOpNames {
		if n == name {
			return cop, true
		}
	}
	return 0, false
}

// Info contains information about an opcode.
type Info struct {
	Code Code
	Name string

	// Immediates is the number of static operands embedded in the
	// instruction, such as a branch depth or a local index.
	Immediates int

	// Scope is true for the instructions that catch branch signals.
	Scope bool
}

var infos = make([]Info, 64)

var byName = map[string]Code{}

func init() {
	type opInfo struct {
		op         Code
		name       string
		immediates int
		scope      bool
	}
	ops := []opInfo{
		{BinaryOp, "binary", 1, false},
		{Block, "block", 0, true},
		{Break, "br", 1, false},
		{BreakIf, "br_if", 1, false},
		{CompareOp, "compare", 1, false},
		{Const, "const", 1, false},
		{Drop, "drop", 0, false},
		{Eqz, "eqz", 0, false},
		{GetLocal, "get_local", 1, false},
		{If, "if", 0, false},
		{Loop, "loop", 0, true},
		{Nop, "nop", 0, false},
		{SetLocal, "set_local", 1, false},
		{TeeLocal, "tee_local", 1, false},
		{Unreachable, "unreachable", 0, false},
	}
	for _, o := range ops {
		infos[o.op] = Info{
			Code:       o.op,
			Name:       o.name,
			Immediates: o.immediates,
			Scope:      o.scope,
		}
		byName[o.name] = o.op
	}
}

// GetInfo returns information about the given opcode.
func GetInfo(op Code) Info {
	if int(op) >= len(infos) {
		return Info{}
	}
	return infos[op]
}

// Lookup returns the opcode with the given name.
func Lookup(name string) (Code, bool) {
	code, ok := byName[name]
	return code, ok
}

// IsScope returns true if the opcode catches branch signals.
func IsScope(op Code) bool {
	return GetInfo(op).Scope
}

// Names returns the sorted names of the instructions written without a
// type prefix.
func Names() []string {
	var names []string
	for name, code := range byName {
		if !IsTyped(code) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// TypedSuffixes returns the sorted names that follow the type prefix of a
// typed instruction, such as "add" in "i32.add".
func TypedSuffixes() []string {
	names := []string{"const", "eqz"}
	for _, n := range binaryOpNames {
		names = append(names, n)
	}
	for _, n := range compareOpNames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// IsTyped returns true for the instructions written with a type prefix.
func IsTyped(op Code) bool {
	switch op {
	case Const, BinaryOp, CompareOp, Eqz:
		return true
	default:
		return false
	}
}
