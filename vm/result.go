package vm

import (
	"fmt"

	"github.com/wasmint/wasmint/object"
)

// StepResult is the outcome of executing one instruction. It either
// completed normally, optionally with a value, or it carries a branch
// signal that must be handled by an enclosing scope.
type StepResult struct {
	signal   bool
	depth    uint32
	value    object.Value
	hasValue bool
}

// Completed returns a normal completion carrying v.
func Completed(v object.Value) StepResult {
	return StepResult{value: v, hasValue: true}
}

// CompletedVoid returns a normal completion without a value.
func CompletedVoid() StepResult {
	return StepResult{}
}

// Signal returns a branch signal. Depth counts the scopes still to unwind
// through; a depth of 0 is consumed by the innermost enclosing scope.
func Signal(depth uint32) StepResult {
	return StepResult{signal: true, depth: depth}
}

// IsSignal returns true if the result carries a branch signal.
func (r StepResult) IsSignal() bool {
	return r.signal
}

// Depth returns the remaining depth of a signal. It is 0 for completions.
func (r StepResult) Depth() uint32 {
	return r.depth
}

// Value returns the value of a normal completion, if any.
func (r StepResult) Value() (object.Value, bool) {
	return r.value, r.hasValue
}

// Unwind returns the signal as seen by the next enclosing scope.
func (r StepResult) Unwind() StepResult {
	if !r.signal || r.depth == 0 {
		panic("unwind of a completion or a depth-0 signal")
	}
	return Signal(r.depth - 1)
}

func (r StepResult) String() string {
	switch {
	case r.signal:
		return fmt.Sprintf("signal(%d)", r.depth)
	case r.hasValue:
		return fmt.Sprintf("completed(%s)", r.value)
	default:
		return "completed"
	}
}
