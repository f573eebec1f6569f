package bytecode

import (
	"github.com/wasmint/wasmint/object"
	"github.com/wasmint/wasmint/op"
)

// GetLocal reads a local variable of the current frame. Parameters occupy
// the first indexes, followed by declared locals.
type GetLocal struct {
	leaf
	index uint32
	typ   *object.Type
}

func NewGetLocal(index uint32, typ *object.Type) *GetLocal {
	return &GetLocal{index: index, typ: typ}
}

func (*GetLocal) Opcode() op.Code {
	return op.GetLocal
}

func (*GetLocal) Name() string {
	return "get_local"
}

func (g *GetLocal) ReturnType() *object.Type {
	return g.typ
}

func (g *GetLocal) Index() uint32 {
	return g.index
}

// SetLocal writes the result of its operand to a local variable.
type SetLocal struct {
	index uint32
	typ   *object.Type
	value Instruction
}

func NewSetLocal(index uint32, typ *object.Type, value Instruction) *SetLocal {
	return &SetLocal{index: index, typ: typ, value: value}
}

func (*SetLocal) Opcode() op.Code {
	return op.SetLocal
}

func (*SetLocal) Name() string {
	return "set_local"
}

func (s *SetLocal) ChildrenTypes() []*object.Type {
	return []*object.Type{s.typ}
}

func (*SetLocal) ReturnType() *object.Type {
	return object.Void
}

func (*SetLocal) ChildCount() int {
	return 1
}

func (s *SetLocal) Child(index int) Instruction {
	return fixedChild(index, s.value)
}

func (*SetLocal) instruction() {}

func (s *SetLocal) Index() uint32 {
	return s.index
}

// LocalType returns the declared type of the written local.
func (s *SetLocal) LocalType() *object.Type {
	return s.typ
}

func (s *SetLocal) Value() Instruction {
	return s.value
}

// TeeLocal is SetLocal that also produces the written value.
type TeeLocal struct {
	index uint32
	typ   *object.Type
	value Instruction
}

func NewTeeLocal(index uint32, typ *object.Type, value Instruction) *TeeLocal {
	return &TeeLocal{index: index, typ: typ, value: value}
}

func (*TeeLocal) Opcode() op.Code {
	return op.TeeLocal
}

func (*TeeLocal) Name() string {
	return "tee_local"
}

func (t *TeeLocal) ChildrenTypes() []*object.Type {
	return []*object.Type{t.typ}
}

func (t *TeeLocal) ReturnType() *object.Type {
	return t.typ
}

func (*TeeLocal) ChildCount() int {
	return 1
}

func (t *TeeLocal) Child(index int) Instruction {
	return fixedChild(index, t.value)
}

func (*TeeLocal) instruction() {}

func (t *TeeLocal) Index() uint32 {
	return t.index
}

func (t *TeeLocal) LocalType() *object.Type {
	return t.typ
}

func (t *TeeLocal) Value() Instruction {
	return t.value
}
