package bytecode

import "github.com/wasmint/wasmint/op"

// Stats contains statistics about a function body.
// This is useful for auditing modules before execution.
type Stats struct {
	// InstructionCount is the total number of instructions in the tree.
	InstructionCount int

	// MaxDepth is the deepest nesting of the tree; the body is at depth 1.
	// A thread needs a nesting limit of at least MaxDepth to run it.
	MaxDepth int

	// ScopeCount is the number of blocks and loops.
	ScopeCount int

	// BranchCount is the number of br and br_if instructions.
	BranchCount int
}

// ComputeStats walks the body of fn.
func ComputeStats(fn *Function) Stats {
	var s Stats
	if fn.Body() != nil {
		s.walk(fn.Body(), 1)
	}
	return s
}

func (s *Stats) walk(instr Instruction, depth int) {
	s.InstructionCount++
	if depth > s.MaxDepth {
		s.MaxDepth = depth
	}
	switch instr.Opcode() {
	case op.Block, op.Loop:
		s.ScopeCount++
	case op.Break, op.BreakIf:
		s.BranchCount++
	}
	for i := 0; i < instr.ChildCount(); i++ {
		if child := instr.Child(i); child != nil {
			s.walk(child, depth+1)
		}
	}
}
