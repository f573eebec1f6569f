package bytecode

import (
	"github.com/wasmint/wasmint/object"
	"github.com/wasmint/wasmint/op"
)

// Instruction is a node of an instruction tree.
type Instruction interface {
	// Opcode returns the kind of the instruction.
	Opcode() op.Code

	// Name returns a diagnostic identifier, e.g. "block" or "i32.add".
	Name() string

	// ChildrenTypes returns the type each child slot requires. The result
	// is a fresh slice with one entry per child.
	ChildrenTypes() []*object.Type

	// ReturnType returns the type produced on normal completion.
	ReturnType() *object.Type

	// ChildCount returns the number of children.
	ChildCount() int

	// Child returns the child at the given index.
	Child(index int) Instruction

	instruction()
}

// leaf provides the child accessors for instructions without children.
type leaf struct{}

func (leaf) ChildrenTypes() []*object.Type {
	return nil
}

func (leaf) ChildCount() int {
	return 0
}

func (leaf) Child(index int) Instruction {
	panic("instruction has no children")
}

func (leaf) instruction() {}

// Nop does nothing.
type Nop struct{ leaf }

func NewNop() *Nop {
	return &Nop{}
}

func (*Nop) Opcode() op.Code {
	return op.Nop
}

func (*Nop) Name() string {
	return "nop"
}

func (*Nop) ReturnType() *object.Type {
	return object.Void
}

// Unreachable traps when executed.
type Unreachable struct{ leaf }

func NewUnreachable() *Unreachable {
	return &Unreachable{}
}

func (*Unreachable) Opcode() op.Code {
	return op.Unreachable
}

func (*Unreachable) Name() string {
	return "unreachable"
}

func (*Unreachable) ReturnType() *object.Type {
	return object.Void
}

// Drop evaluates its operand and discards the result.
type Drop struct {
	value Instruction
}

func NewDrop(value Instruction) *Drop {
	return &Drop{value: value}
}

func (*Drop) Opcode() op.Code {
	return op.Drop
}

func (*Drop) Name() string {
	return "drop"
}

func (*Drop) ReturnType() *object.Type {
	return object.Void
}

func (*Drop) ChildrenTypes() []*object.Type {
	return []*object.Type{object.Any}
}

func (*Drop) ChildCount() int {
	return 1
}

func (d *Drop) Child(index int) Instruction {
	return fixedChild(index, d.value)
}

func (*Drop) instruction() {}

// Value returns the dropped operand.
func (d *Drop) Value() Instruction {
	return d.value
}

// childAt indexes the present children, skipping nil optional ones.
func childAt(index int, children ...Instruction) Instruction {
	for _, child := range children {
		if child == nil {
			continue
		}
		if index == 0 {
			return child
		}
		index--
	}
	panic("child index out of range")
}

// fixedChild returns a child by position. Missing children are reported as
// nil so that the checker can name the empty slot.
func fixedChild(index int, children ...Instruction) Instruction {
	if index < 0 || index >= len(children) {
		panic("child index out of range")
	}
	return children[index]
}

func countChildren(children ...Instruction) int {
	n := 0
	for _, child := range children {
		if child != nil {
			n++
		}
	}
	return n
}

func copyInstructions(instrs []Instruction) []Instruction {
	if instrs == nil {
		return nil
	}
	result := make([]Instruction, len(instrs))
	copy(result, instrs)
	return result
}
