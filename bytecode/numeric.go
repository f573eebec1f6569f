package bytecode

import (
	"github.com/wasmint/wasmint/object"
	"github.com/wasmint/wasmint/op"
)

// Const produces a constant value.
type Const struct {
	leaf
	value object.Value
}

func NewConst(value object.Value) *Const {
	return &Const{value: value}
}

func (*Const) Opcode() op.Code {
	return op.Const
}

func (c *Const) Name() string {
	return c.value.Type().Name() + ".const"
}

func (c *Const) ReturnType() *object.Type {
	return c.value.Type()
}

func (c *Const) Value() object.Value {
	return c.value
}

// Binary applies an integer operation to two operands of the same type.
type Binary struct {
	op    op.BinaryOpType
	typ   *object.Type
	left  Instruction
	right Instruction
}

func NewBinary(bop op.BinaryOpType, typ *object.Type, left, right Instruction) *Binary {
	return &Binary{op: bop, typ: typ, left: left, right: right}
}

func (*Binary) Opcode() op.Code {
	return op.BinaryOp
}

func (b *Binary) Name() string {
	return b.typ.Name() + "." + b.op.String()
}

func (b *Binary) ChildrenTypes() []*object.Type {
	return []*object.Type{b.typ, b.typ}
}

func (b *Binary) ReturnType() *object.Type {
	return b.typ
}

func (*Binary) ChildCount() int {
	return 2
}

func (b *Binary) Child(index int) Instruction {
	return fixedChild(index, b.left, b.right)
}

func (*Binary) instruction() {}

func (b *Binary) Op() op.BinaryOpType {
	return b.op
}

// OperandType returns the type of both operands and the result.
func (b *Binary) OperandType() *object.Type {
	return b.typ
}

// Compare compares two integer operands and produces an i32 of 0 or 1.
type Compare struct {
	op    op.CompareOpType
	typ   *object.Type
	left  Instruction
	right Instruction
}

func NewCompare(cop op.CompareOpType, typ *object.Type, left, right Instruction) *Compare {
	return &Compare{op: cop, typ: typ, left: left, right: right}
}

func (*Compare) Opcode() op.Code {
	return op.CompareOp
}

func (c *Compare) Name() string {
	return c.typ.Name() + "." + c.op.String()
}

func (c *Compare) ChildrenTypes() []*object.Type {
	return []*object.Type{c.typ, c.typ}
}

func (*Compare) ReturnType() *object.Type {
	return object.I32
}

func (*Compare) ChildCount() int {
	return 2
}

func (c *Compare) Child(index int) Instruction {
	return fixedChild(index, c.left, c.right)
}

func (*Compare) instruction() {}

func (c *Compare) Op() op.CompareOpType {
	return c.op
}

func (c *Compare) OperandType() *object.Type {
	return c.typ
}

// Eqz produces 1 if its integer operand is zero and 0 otherwise.
type Eqz struct {
	typ     *object.Type
	operand Instruction
}

func NewEqz(typ *object.Type, operand Instruction) *Eqz {
	return &Eqz{typ: typ, operand: operand}
}

func (*Eqz) Opcode() op.Code {
	return op.Eqz
}

func (e *Eqz) Name() string {
	return e.typ.Name() + ".eqz"
}

func (e *Eqz) ChildrenTypes() []*object.Type {
	return []*object.Type{e.typ}
}

func (*Eqz) ReturnType() *object.Type {
	return object.I32
}

func (*Eqz) ChildCount() int {
	return 1
}

func (e *Eqz) Child(index int) Instruction {
	return fixedChild(index, e.operand)
}

func (*Eqz) instruction() {}

func (e *Eqz) OperandType() *object.Type {
	return e.typ
}
