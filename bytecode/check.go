package bytecode

import (
	"github.com/hashicorp/go-multierror"
	"github.com/wasmint/wasmint/errz"
	"github.com/wasmint/wasmint/object"
	"github.com/wasmint/wasmint/op"
)

// label describes an enclosing scope as seen by a branch.
type label struct {
	code op.Code
	typ  *object.Type
}

type checker struct {
	fn     *Function
	labels []label
	path   []string
	errs   *multierror.Error
}

// Check verifies the structural rules that execution relies on:
//
//   - every child produces the type its slot requires
//   - every branch depth is less than the number of enclosing scopes
//   - a branch carries a value exactly when its target block produces one,
//     and never to a loop
//   - local indexes exist and have the declared type
//   - the body produces the function result
//
// All problems are reported, not just the first.
func Check(fn *Function) error {
	c := &checker{fn: fn}
	if fn.Body() == nil {
		c.fail(errz.E1006, "function", "function %q has no body", fn.Name())
		return c.errs.ErrorOrNil()
	}
	body := fn.Body()
	if !fn.Result().Accepts(body.ReturnType()) && !diverges(body) {
		c.fail(errz.E1006, body.Name(), "function %q returns %s but its body produces %s",
			fn.Name(), fn.Result(), body.ReturnType())
	}
	c.check(body)
	return c.errs.ErrorOrNil()
}

// CheckModule checks every function of the module and reports functions
// that share a name.
func CheckModule(m *Module) error {
	var errs *multierror.Error
	seen := make(map[string]bool, m.FunctionCount())
	for i := 0; i < m.FunctionCount(); i++ {
		fn := m.FunctionAt(i)
		if seen[fn.Name()] {
			err := errz.NewValidationErrorf(errz.E1008, "function", nil,
				"function %q is defined more than once", fn.Name())
			err.Function = fn.Name()
			errs = multierror.Append(errs, err)
		}
		seen[fn.Name()] = true
		if err := Check(fn); err != nil {
			errs = multierror.Append(errs, err)
		}
	}
	return errs.ErrorOrNil()
}

// diverges returns true for instructions that never complete normally and
// may therefore fill a slot of any type.
func diverges(instr Instruction) bool {
	switch instr.(type) {
	case *Break, *Unreachable:
		return true
	default:
		return false
	}
}

func (c *checker) fail(code errz.ErrorCode, instruction string, format string, args ...any) {
	path := make([]string, len(c.path))
	for i, name := range c.path {
		path[len(c.path)-1-i] = name
	}
	err := errz.NewValidationErrorf(code, instruction, path, format, args...)
	err.Function = c.fn.Name()
	c.errs = multierror.Append(c.errs, err)
}

func (c *checker) check(instr Instruction) {
	slots := instr.ChildrenTypes()
	if len(slots) != instr.ChildCount() {
		c.fail(errz.E1001, instr.Name(), "%s declares %d child slots but has %d children",
			instr.Name(), len(slots), instr.ChildCount())
		return
	}
	for i, slot := range slots {
		child := instr.Child(i)
		if child == nil {
			c.fail(errz.E1001, instr.Name(), "child %d of %s is missing", i, instr.Name())
			continue
		}
		if !slot.Accepts(child.ReturnType()) && !diverges(child) {
			c.fail(errz.E1001, instr.Name(), "child %d of %s must produce %s, not %s (%s)",
				i, instr.Name(), slot, child.ReturnType(), child.Name())
		}
	}

	switch instr := instr.(type) {
	case *Nop, *Unreachable, *Drop:
	case *Const:
		if !instr.ReturnType().IsNumeric() {
			c.fail(errz.E1007, instr.Name(), "constant must be numeric")
		}
	case *GetLocal:
		c.checkLocal(instr.Name(), instr.Index(), instr.ReturnType())
	case *SetLocal:
		c.checkLocal(instr.Name(), instr.Index(), instr.LocalType())
	case *TeeLocal:
		c.checkLocal(instr.Name(), instr.Index(), instr.LocalType())
	case *Binary:
		c.checkInteger(instr.Name(), instr.OperandType())
	case *Compare:
		c.checkInteger(instr.Name(), instr.OperandType())
	case *Eqz:
		c.checkInteger(instr.Name(), instr.OperandType())
	case *Block:
		c.checkSequence(instr.Name(), instr.ReturnType(), instr.ChildCount())
	case *Loop:
		c.checkSequence(instr.Name(), instr.ReturnType(), instr.ChildCount())
	case *Break:
		c.checkBranch(instr.Name(), instr.Depth(), instr.Value())
	case *BreakIf:
		c.checkBranch(instr.Name(), instr.Depth(), instr.Value())
	case *If:
		if instr.Else() == nil && instr.ReturnType() != object.Void {
			c.fail(errz.E1001, instr.Name(), "if producing %s requires an else branch", instr.ReturnType())
		}
	}

	scope := op.IsScope(instr.Opcode())
	if scope {
		c.labels = append(c.labels, label{code: instr.Opcode(), typ: instr.ReturnType()})
	}
	c.path = append(c.path, instr.Name())
	for i := 0; i < instr.ChildCount(); i++ {
		if child := instr.Child(i); child != nil {
			c.check(child)
		}
	}
	c.path = c.path[:len(c.path)-1]
	if scope {
		c.labels = c.labels[:len(c.labels)-1]
	}
}

func (c *checker) checkSequence(name string, typ *object.Type, count int) {
	if typ == object.Any {
		c.fail(errz.E1007, name, "%s cannot produce the slot wildcard type", name)
	}
	if typ != object.Void && count == 0 {
		c.fail(errz.E1001, name, "%s producing %s has no children", name, typ)
	}
}

func (c *checker) checkInteger(name string, typ *object.Type) {
	if !typ.IsInteger() {
		c.fail(errz.E1007, name, "%s requires integer operands, not %s", name, typ)
	}
}

func (c *checker) checkLocal(name string, index uint32, typ *object.Type) {
	declared, ok := c.fn.LocalType(int(index))
	if !ok {
		c.fail(errz.E1004, name, "local %d does not exist (frame has %d slots)", index, c.fn.FrameSize())
		return
	}
	if declared != typ {
		c.fail(errz.E1005, name, "local %d has type %s, not %s", index, declared, typ)
	}
}

func (c *checker) checkBranch(name string, depth uint32, value Instruction) {
	if int(depth) >= len(c.labels) {
		c.fail(errz.E1002, name, "branch depth %d exceeds the %d enclosing scope(s)", depth, len(c.labels))
		return
	}
	target := c.labels[len(c.labels)-1-int(depth)]
	switch {
	case target.code == op.Loop:
		if value != nil {
			c.fail(errz.E1003, name, "branch to a loop cannot carry a value")
		}
	case target.typ == object.Void:
		if value != nil {
			c.fail(errz.E1003, name, "branch to a void block cannot carry a value")
		}
	case value == nil:
		c.fail(errz.E1003, name, "branch to a block producing %s must carry a value", target.typ)
	case value.ReturnType() != target.typ && !diverges(value):
		c.fail(errz.E1003, name, "branch carries %s but its target block produces %s",
			value.ReturnType(), target.typ)
	}
}
