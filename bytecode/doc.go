// Package bytecode provides the immutable instruction tree executed by the
// vm package.
//
// An executable unit is a tree of [Instruction] nodes. Each node owns its
// children, declares the types its children must produce, and declares the
// type it produces itself. Trees are created once, checked, and may then be
// shared safely across goroutines and threads.
//
// # Key Types
//
//   - [Instruction]: sealed interface implemented by the kinds in this package
//   - [Block], [Loop]: scopes that catch branch signals
//   - [Break], [BreakIf]: leaves that request an exit from enclosing scopes
//   - [Function]: a body plus parameter and local declarations
//   - [Module]: a set of named functions
//
// # Closed Kind Set
//
// Instruction has an unexported method, so the set of kinds is fixed by this
// package. Executors switch over the concrete types exhaustively:
//
//	switch instr := instr.(type) {
//	case *bytecode.Block:
//		...
//	case *bytecode.Loop:
//		...
//	}
//
// # Immutability Guarantees
//
// All fields are unexported. Constructors copy input slices and children
// are reached by index:
//
//	block.ChildCount()
//	block.Child(i)
//
// # Usage
//
//	mod, err := bytecode.Decode(src)
//	if err != nil {
//		return err
//	}
//	fn, _ := mod.Function("main")
//	if err := bytecode.Check(fn); err != nil {
//		return err
//	}
package bytecode
