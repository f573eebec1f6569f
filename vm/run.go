package vm

import (
	"context"

	"github.com/wasmint/wasmint/bytecode"
	"github.com/wasmint/wasmint/object"
)

// Run invokes fn on a new Thread and returns its result.
func Run(ctx context.Context, fn *bytecode.Function, args []object.Value, options ...Option) (object.Value, error) {
	return New(options...).Invoke(ctx, fn, args...)
}

// RunOnThread invokes fn on an existing Thread. This allows reusing a
// thread's stack and frame storage across calls.
func RunOnThread(ctx context.Context, t *Thread, fn *bytecode.Function, args ...object.Value) (object.Value, error) {
	return t.Invoke(ctx, fn, args...)
}
