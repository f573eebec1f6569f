package bytecode

import (
	"github.com/wasmint/wasmint/object"
	"github.com/wasmint/wasmint/op"
)

// sequence is the child list shared by Block and Loop.
type sequence struct {
	typ  *object.Type
	body []Instruction
}

// ChildrenTypes accepts any type in every slot except the last, which must
// produce the scope's type when that type is not void.
func (s *sequence) ChildrenTypes() []*object.Type {
	types := make([]*object.Type, len(s.body))
	for i := range types {
		types[i] = object.Any
	}
	if n := len(types); n > 0 && s.typ != object.Void {
		types[n-1] = s.typ
	}
	return types
}

func (s *sequence) ReturnType() *object.Type {
	return s.typ
}

func (s *sequence) ChildCount() int {
	return len(s.body)
}

func (s *sequence) Child(index int) Instruction {
	return s.body[index]
}

func (*sequence) instruction() {}

// Block executes its children in order. A branch signal of depth zero
// completes the block early.
type Block struct {
	sequence
}

// NewBlock creates a block producing a value of the given type. Use
// object.Void for a block that produces nothing.
func NewBlock(typ *object.Type, body ...Instruction) *Block {
	return &Block{sequence{typ: typ, body: copyInstructions(body)}}
}

func (*Block) Opcode() op.Code {
	return op.Block
}

func (*Block) Name() string {
	return "block"
}

// Loop executes its children in order. A branch signal of depth zero
// restarts the loop from its first child.
type Loop struct {
	sequence
}

// NewLoop creates a loop producing a value of the given type on normal
// completion.
func NewLoop(typ *object.Type, body ...Instruction) *Loop {
	return &Loop{sequence{typ: typ, body: copyInstructions(body)}}
}

func (*Loop) Opcode() op.Code {
	return op.Loop
}

func (*Loop) Name() string {
	return "loop"
}

// Break requests an exit from Depth+1 enclosing scopes. Depth 0 targets the
// innermost scope. The optional value is left on the operand stack for a
// target block that produces a value.
type Break struct {
	depth uint32
	value Instruction
}

func NewBreak(depth uint32) *Break {
	return &Break{depth: depth}
}

// NewBreakWithValue creates a break that carries the result of value to
// its target block.
func NewBreakWithValue(depth uint32, value Instruction) *Break {
	return &Break{depth: depth, value: value}
}

func (*Break) Opcode() op.Code {
	return op.Break
}

func (*Break) Name() string {
	return "br"
}

func (b *Break) ChildrenTypes() []*object.Type {
	if b.value == nil {
		return nil
	}
	return []*object.Type{object.Any}
}

func (*Break) ReturnType() *object.Type {
	return object.Void
}

func (b *Break) ChildCount() int {
	return countChildren(b.value)
}

func (b *Break) Child(index int) Instruction {
	return childAt(index, b.value)
}

func (*Break) instruction() {}

// Depth returns the number of scopes between the break and its target.
func (b *Break) Depth() uint32 {
	return b.depth
}

// Value returns the carried value instruction, or nil.
func (b *Break) Value() Instruction {
	return b.value
}

// BreakIf evaluates its optional value and then its condition, and behaves
// like Break when the condition is non-zero. Otherwise it completes with
// the value, if any.
type BreakIf struct {
	depth uint32
	value Instruction
	cond  Instruction
}

func NewBreakIf(depth uint32, cond Instruction) *BreakIf {
	return &BreakIf{depth: depth, cond: cond}
}

func NewBreakIfWithValue(depth uint32, value, cond Instruction) *BreakIf {
	return &BreakIf{depth: depth, value: value, cond: cond}
}

func (*BreakIf) Opcode() op.Code {
	return op.BreakIf
}

func (*BreakIf) Name() string {
	return "br_if"
}

func (b *BreakIf) ChildrenTypes() []*object.Type {
	if b.value == nil {
		return []*object.Type{object.I32}
	}
	return []*object.Type{object.Any, object.I32}
}

func (b *BreakIf) ReturnType() *object.Type {
	if b.value == nil {
		return object.Void
	}
	return b.value.ReturnType()
}

func (b *BreakIf) ChildCount() int {
	return countChildren(b.value, b.cond)
}

func (b *BreakIf) Child(index int) Instruction {
	return childAt(index, b.value, b.cond)
}

func (*BreakIf) instruction() {}

func (b *BreakIf) Depth() uint32 {
	return b.depth
}

func (b *BreakIf) Value() Instruction {
	return b.value
}

func (b *BreakIf) Cond() Instruction {
	return b.cond
}

// If executes Then when its condition is non-zero and Else otherwise. It is
// not a scope: branch signals pass through it unchanged.
type If struct {
	typ  *object.Type
	cond Instruction
	then Instruction
	els  Instruction
}

// NewIf creates a conditional. els may be nil when typ is void.
func NewIf(typ *object.Type, cond, then, els Instruction) *If {
	return &If{typ: typ, cond: cond, then: then, els: els}
}

func (*If) Opcode() op.Code {
	return op.If
}

func (*If) Name() string {
	return "if"
}

func (i *If) ChildrenTypes() []*object.Type {
	if i.els == nil {
		return []*object.Type{object.I32, i.typ}
	}
	return []*object.Type{object.I32, i.typ, i.typ}
}

func (i *If) ReturnType() *object.Type {
	return i.typ
}

func (i *If) ChildCount() int {
	return countChildren(i.cond, i.then, i.els)
}

func (i *If) Child(index int) Instruction {
	return childAt(index, i.cond, i.then, i.els)
}

func (*If) instruction() {}

func (i *If) Cond() Instruction {
	return i.cond
}

func (i *If) Then() Instruction {
	return i.then
}

// Else returns the alternative branch, or nil.
func (i *If) Else() Instruction {
	return i.els
}
