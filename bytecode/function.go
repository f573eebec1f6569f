package bytecode

import (
	"fmt"
	"strings"

	"github.com/wasmint/wasmint/errz"
	"github.com/wasmint/wasmint/object"
)

// Function represents a function body together with the types of its
// parameters, locals and result. It is immutable after creation.
type Function struct {
	name   string
	params []*object.Type
	locals []*object.Type
	result *object.Type
	body   Instruction
}

// FunctionParams contains parameters for creating a new Function.
type FunctionParams struct {
	Name   string
	Params []*object.Type
	Locals []*object.Type
	Result *object.Type
	Body   Instruction
}

// NewFunction creates a new immutable Function from the given parameters.
// Input slices are copied to ensure immutability. A nil Result means void.
func NewFunction(params FunctionParams) *Function {
	result := params.Result
	if result == nil {
		result = object.Void
	}
	return &Function{
		name:   params.Name,
		params: copyTypes(params.Params),
		locals: copyTypes(params.Locals),
		result: result,
		body:   params.Body,
	}
}

// Name returns the function name.
func (f *Function) Name() string {
	return f.name
}

// Body returns the root instruction of the function.
func (f *Function) Body() Instruction {
	return f.body
}

// Result returns the type produced by the function.
func (f *Function) Result() *object.Type {
	return f.result
}

// ParamCount returns the number of parameters.
func (f *Function) ParamCount() int {
	return len(f.params)
}

// Param returns the type of the parameter at the given index.
func (f *Function) Param(index int) *object.Type {
	return f.params[index]
}

// LocalCount returns the number of declared locals, excluding parameters.
func (f *Function) LocalCount() int {
	return len(f.locals)
}

// FrameSize returns the number of local slots in a frame of this function,
// parameters included.
func (f *Function) FrameSize() int {
	return len(f.params) + len(f.locals)
}

// LocalType returns the type of the frame slot at the given index, where
// parameters come first.
func (f *Function) LocalType(index int) (*object.Type, bool) {
	if index < 0 || index >= f.FrameSize() {
		return nil, false
	}
	if index < len(f.params) {
		return f.params[index], true
	}
	return f.locals[index-len(f.params)], true
}

// Signature returns the function type as text, e.g. "(i32, i32) -> i32".
func (f *Function) Signature() string {
	names := make([]string, len(f.params))
	for i, p := range f.params {
		names[i] = p.Name()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(names, ", "), f.result.Name())
}

func (f *Function) String() string {
	return fmt.Sprintf("func %s%s", f.name, f.Signature())
}

func copyTypes(types []*object.Type) []*object.Type {
	if types == nil {
		return nil
	}
	result := make([]*object.Type, len(types))
	copy(result, types)
	return result
}

// Module is an immutable collection of named functions.
type Module struct {
	functions []*Function
	byName    map[string]*Function
}

// NewModule creates a module. If two functions share a name, the first one
// is returned by Function; CheckModule reports the duplicate.
func NewModule(functions ...*Function) *Module {
	m := &Module{
		functions: make([]*Function, len(functions)),
		byName:    make(map[string]*Function, len(functions)),
	}
	copy(m.functions, functions)
	for _, fn := range functions {
		if _, exists := m.byName[fn.Name()]; !exists {
			m.byName[fn.Name()] = fn
		}
	}
	return m
}

// FunctionCount returns the number of functions in the module.
func (m *Module) FunctionCount() int {
	return len(m.functions)
}

// FunctionAt returns the function at the given index.
func (m *Module) FunctionAt(index int) *Function {
	return m.functions[index]
}

// Function returns the function with the given name.
func (m *Module) Function(name string) (*Function, bool) {
	fn, ok := m.byName[name]
	return fn, ok
}

// Lookup is like Function but returns an error naming close matches when
// the function does not exist.
func (m *Module) Lookup(name string) (*Function, error) {
	if fn, ok := m.byName[name]; ok {
		return fn, nil
	}
	names := make([]string, len(m.functions))
	for i, fn := range m.functions {
		names[i] = fn.Name()
	}
	if hint := errz.DidYouMean(name, names); hint != "" {
		return nil, fmt.Errorf("function %q not found; %s", name, hint)
	}
	return nil, fmt.Errorf("function %q not found", name)
}
