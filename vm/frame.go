package vm

import (
	"github.com/wasmint/wasmint/bytecode"
	"github.com/wasmint/wasmint/object"
)

const (
	// DefaultFrameLocals is the number of local variables that can be stored
	// directly in the frame's fixed storage array, avoiding heap allocation.
	DefaultFrameLocals = 8

	// MinExtendedLocalsCapacity is the minimum capacity allocated for extended
	// locals when heap allocation is needed.
	MinExtendedLocalsCapacity = 32
)

type frame struct {
	fn             *bytecode.Function
	storage        [DefaultFrameLocals]object.Value
	locals         []object.Value
	extendedLocals []object.Value
}

// activate prepares the frame for a call of fn. Parameters are copied from
// args and the remaining locals are set to the zero value of their type.
func (f *frame) activate(fn *bytecode.Function, args []object.Value) {
	f.fn = fn
	size := fn.FrameSize()

	// Use the fixed storage when it is large enough. Otherwise reuse
	// extendedLocals if possible, or allocate with some headroom.
	if size > DefaultFrameLocals {
		if cap(f.extendedLocals) >= size {
			f.extendedLocals = f.extendedLocals[:size]
		} else {
			allocSize := size
			if allocSize < MinExtendedLocalsCapacity {
				allocSize = MinExtendedLocalsCapacity
			}
			f.extendedLocals = make([]object.Value, size, allocSize)
		}
		f.locals = f.extendedLocals
	} else {
		f.extendedLocals = nil
		f.locals = f.storage[:size]
	}

	copy(f.locals, args)
	for i := len(args); i < size; i++ {
		typ, _ := fn.LocalType(i)
		f.locals[i] = object.Zero(typ)
	}
}

func (f *frame) name() string {
	if f.fn == nil {
		return ""
	}
	return f.fn.Name()
}
