// Package wasmint loads and runs modules of the tree instruction language.
//
// A module is written in YAML, one instruction per mapping key:
//
//	functions:
//	  - name: answer
//	    result: i32
//	    body:
//	      block:
//	        type: i32
//	        body:
//	          - br: {depth: 0, value: {i32.const: 42}}
//	          - unreachable
//
// Load decodes and checks a module; Call runs one of its functions on a
// fresh thread.
package wasmint

import (
	"context"
	"fmt"
	"os"

	"github.com/wasmint/wasmint/bytecode"
	"github.com/wasmint/wasmint/object"
	"github.com/wasmint/wasmint/vm"
)

// Load decodes a module and checks every function in it. The returned
// module is immutable and safe for concurrent use.
func Load(src []byte) (*bytecode.Module, error) {
	m, err := bytecode.Decode(src)
	if err != nil {
		return nil, err
	}
	if err := bytecode.CheckModule(m); err != nil {
		return nil, err
	}
	return m, nil
}

// LoadFile reads and loads the module at path.
func LoadFile(path string) (*bytecode.Module, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	m, err := Load(src)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

// Call runs the named function of m with the given arguments. The zero
// Value is returned for void functions. Each call uses a new thread, so
// concurrent calls on the same module are safe.
func Call(ctx context.Context, m *bytecode.Module, name string, args []object.Value, opts ...Option) (object.Value, error) {
	fn, err := m.Lookup(name)
	if err != nil {
		return object.Value{}, err
	}
	cfg := collectOptions(opts...)
	return vm.Run(ctx, fn, args, cfg.vmOpts()...)
}

// ParseArgs converts textual arguments to values of the parameter types of
// the named function.
func ParseArgs(m *bytecode.Module, name string, texts []string) ([]object.Value, error) {
	fn, err := m.Lookup(name)
	if err != nil {
		return nil, err
	}
	if len(texts) != fn.ParamCount() {
		return nil, fmt.Errorf("function %q takes %d argument(s) (%d given)", name, fn.ParamCount(), len(texts))
	}
	args := make([]object.Value, len(texts))
	for i, text := range texts {
		v, err := object.ParseValue(fn.Param(i), text)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i, err)
		}
		args[i] = v
	}
	return args, nil
}
