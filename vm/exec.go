package vm

import (
	"github.com/wasmint/wasmint/bytecode"
	"github.com/wasmint/wasmint/errz"
	"github.com/wasmint/wasmint/object"
)

// Exec executes instr and its children in the current frame.
//
// A normal completion carries the instruction's value, if it has one. A
// signal result means a branch is unwinding toward an enclosing Block or
// Loop; the caller must stop executing its remaining children and pass the
// signal up. Traps are returned as errors with the names of the enclosing
// instructions recorded on the way out.
func (t *Thread) Exec(instr bytecode.Instruction) (StepResult, error) {
	if instr == nil {
		return StepResult{}, errz.NewInterpreterErrorf("<missing>", "missing instruction")
	}
	t.depth++
	defer func() { t.depth-- }()

	if t.maxDepth > 0 && t.depth > t.maxDepth {
		return StepResult{}, errz.NewTrapf(errz.ErrStackExhausted, instr.Name(),
			"instruction nesting limit %d reached", t.maxDepth)
	}
	if err := t.step(instr); err != nil {
		return StepResult{}, err
	}

	switch i := instr.(type) {
	case *bytecode.Nop:
		return CompletedVoid(), nil
	case *bytecode.Unreachable:
		return StepResult{}, errz.NewTrapf(errz.ErrUnreachable, i.Name(), "unreachable executed")
	case *bytecode.Const:
		return Completed(i.Value()), nil
	case *bytecode.Drop:
		r, err := t.execChild(i, i.Value())
		if err != nil || r.IsSignal() {
			return r, err
		}
		return CompletedVoid(), nil
	case *bytecode.Block:
		return t.execBlock(i)
	case *bytecode.Loop:
		return t.execLoop(i)
	case *bytecode.Break:
		return t.execBreak(i)
	case *bytecode.BreakIf:
		return t.execBreakIf(i)
	case *bytecode.If:
		return t.execIf(i)
	case *bytecode.GetLocal:
		v, err := t.Local(int(i.Index()))
		if err != nil {
			return StepResult{}, err
		}
		return Completed(v), nil
	case *bytecode.SetLocal:
		return t.execSetLocal(i, i.Value(), i.Index(), false)
	case *bytecode.TeeLocal:
		return t.execSetLocal(i, i.Value(), i.Index(), true)
	case *bytecode.Binary:
		return t.execBinary(i)
	case *bytecode.Compare:
		return t.execCompare(i)
	case *bytecode.Eqz:
		v, r, err := t.eval(i, i.Child(0))
		if err != nil || r.IsSignal() {
			return r, err
		}
		return Completed(eqz(v)), nil
	default:
		return StepResult{}, errz.NewInterpreterErrorf(instr.Name(), "unknown instruction %T", instr)
	}
}

// step runs the per-instruction bookkeeping: context cancellation and
// observer callbacks.
func (t *Thread) step(instr bytecode.Instruction) error {
	t.steps++
	if t.done != nil && t.contextCheckInterval > 0 && t.steps%t.contextCheckInterval == 0 {
		select {
		case <-t.done:
			return errz.NewTrapf(errz.ErrHalted, instr.Name(), "execution cancelled").WithCause(t.ctx.Err())
		default:
		}
	}
	if t.observer == nil {
		return nil
	}
	switch t.observerCfg.StepMode {
	case StepAll:
	case StepSampled:
		if t.steps%t.observerCfg.SampleInterval != 0 {
			return nil
		}
	default:
		return nil
	}
	ok := t.observer.OnStep(StepEvent{
		Opcode:     instr.Opcode(),
		Name:       instr.Name(),
		Depth:      t.depth,
		StackDepth: len(t.stack),
		FrameDepth: t.fp + 1,
	})
	if !ok {
		return errz.NewTrapf(errz.ErrHalted, instr.Name(), "execution halted by observer")
	}
	return nil
}

// execChild executes a child of parent. A trap raised below parent gets
// parent's name added to its scope list.
func (t *Thread) execChild(parent, child bytecode.Instruction) (StepResult, error) {
	r, err := t.Exec(child)
	if err != nil {
		return r, errz.AddScope(err, parent.Name())
	}
	return r, nil
}

// eval executes a value-producing child. When the returned result is a
// signal or err is set, the value is meaningless.
func (t *Thread) eval(parent, child bytecode.Instruction) (object.Value, StepResult, error) {
	r, err := t.execChild(parent, child)
	if err != nil || r.IsSignal() {
		return object.Value{}, r, err
	}
	v, ok := r.Value()
	if !ok {
		return object.Value{}, r, errz.NewInterpreterErrorf(parent.Name(),
			"%s produced no value", child.Name())
	}
	return v, r, nil
}

func (t *Thread) execBlock(b *bytecode.Block) (StepResult, error) {
	height := len(t.stack)
	var last StepResult
	for idx := 0; idx < b.ChildCount(); idx++ {
		r, err := t.execChild(b, b.Child(idx))
		if err != nil {
			return r, err
		}
		if r.IsSignal() {
			if r.Depth() > 0 {
				return t.propagate(b, r)
			}
			return t.catch(b, height, r)
		}
		last = r
	}
	if b.ReturnType() == object.Void {
		return CompletedVoid(), nil
	}
	return last, nil
}

// catch completes block b with the value carried by a depth-0 signal.
func (t *Thread) catch(b *bytecode.Block, height int, r StepResult) (StepResult, error) {
	result := CompletedVoid()
	if b.ReturnType() != object.Void {
		if len(t.stack) <= height {
			return StepResult{}, errz.NewInterpreterErrorf(b.Name(),
				"branch to %s block carried no value", b.ReturnType())
		}
		result = Completed(t.stack[len(t.stack)-1])
	}
	t.truncate(height)
	if err := t.notify(SignalCaught, b.Name(), r.Depth()); err != nil {
		return StepResult{}, err
	}
	return result, nil
}

func (t *Thread) execLoop(l *bytecode.Loop) (StepResult, error) {
	height := len(t.stack)
restart:
	for {
		var last StepResult
		for idx := 0; idx < l.ChildCount(); idx++ {
			r, err := t.execChild(l, l.Child(idx))
			if err != nil {
				return r, err
			}
			if r.IsSignal() {
				if r.Depth() > 0 {
					return t.propagate(l, r)
				}
				t.truncate(height)
				if err := t.notify(SignalRestarted, l.Name(), r.Depth()); err != nil {
					return StepResult{}, err
				}
				continue restart
			}
			last = r
		}
		if l.ReturnType() == object.Void {
			return CompletedVoid(), nil
		}
		return last, nil
	}
}

// propagate passes a signal that did not target scope on to the next
// enclosing scope.
func (t *Thread) propagate(scope bytecode.Instruction, r StepResult) (StepResult, error) {
	if err := t.notify(SignalPropagated, scope.Name(), r.Depth()); err != nil {
		return StepResult{}, err
	}
	return r.Unwind(), nil
}

func (t *Thread) execBreak(b *bytecode.Break) (StepResult, error) {
	if b.Value() != nil {
		v, r, err := t.eval(b, b.Value())
		if err != nil || r.IsSignal() {
			return r, err
		}
		if err := t.push(b.Name(), v); err != nil {
			return StepResult{}, err
		}
	}
	return t.emit(b.Name(), b.Depth())
}

func (t *Thread) execBreakIf(b *bytecode.BreakIf) (StepResult, error) {
	var v object.Value
	hasValue := b.Value() != nil
	if hasValue {
		var r StepResult
		var err error
		v, r, err = t.eval(b, b.Value())
		if err != nil || r.IsSignal() {
			return r, err
		}
	}
	cond, r, err := t.eval(b, b.Cond())
	if err != nil || r.IsSignal() {
		return r, err
	}
	if cond.I32() == 0 {
		if hasValue {
			return Completed(v), nil
		}
		return CompletedVoid(), nil
	}
	if hasValue {
		if err := t.push(b.Name(), v); err != nil {
			return StepResult{}, err
		}
	}
	return t.emit(b.Name(), b.Depth())
}

func (t *Thread) emit(name string, depth uint32) (StepResult, error) {
	if err := t.notify(SignalEmitted, name, depth); err != nil {
		return StepResult{}, err
	}
	return Signal(depth), nil
}

// notify logs a signal action and reports it to the observer.
func (t *Thread) notify(action SignalAction, name string, depth uint32) error {
	t.logger.Trace().
		Str("action", action.String()).
		Str("instruction", name).
		Uint32("depth", depth).
		Int("stack", len(t.stack)).
		Msg("branch signal")
	if t.observer == nil || !t.observerCfg.ObserveSignals {
		return nil
	}
	ok := t.observer.OnSignal(SignalEvent{
		Action:       action,
		Name:         name,
		Depth:        depth,
		NestingDepth: t.depth,
		StackDepth:   len(t.stack),
	})
	if !ok {
		return errz.NewTrapf(errz.ErrHalted, name, "execution halted by observer")
	}
	return nil
}

func (t *Thread) execIf(i *bytecode.If) (StepResult, error) {
	cond, r, err := t.eval(i, i.Cond())
	if err != nil || r.IsSignal() {
		return r, err
	}
	branch := i.Then()
	if cond.I32() == 0 {
		branch = i.Else()
	}
	if branch == nil {
		return CompletedVoid(), nil
	}
	r, err = t.execChild(i, branch)
	if err != nil || r.IsSignal() {
		return r, err
	}
	if i.ReturnType() == object.Void {
		return CompletedVoid(), nil
	}
	return r, nil
}

func (t *Thread) execSetLocal(instr, value bytecode.Instruction, index uint32, tee bool) (StepResult, error) {
	v, r, err := t.eval(instr, value)
	if err != nil || r.IsSignal() {
		return r, err
	}
	if err := t.SetLocal(int(index), v); err != nil {
		return StepResult{}, err
	}
	if tee {
		return Completed(v), nil
	}
	return CompletedVoid(), nil
}

func (t *Thread) execBinary(b *bytecode.Binary) (StepResult, error) {
	left, r, err := t.eval(b, b.Child(0))
	if err != nil || r.IsSignal() {
		return r, err
	}
	right, r, err := t.eval(b, b.Child(1))
	if err != nil || r.IsSignal() {
		return r, err
	}
	v, err := binary(b.Name(), b.Op(), left, right)
	if err != nil {
		return StepResult{}, err
	}
	return Completed(v), nil
}

func (t *Thread) execCompare(c *bytecode.Compare) (StepResult, error) {
	left, r, err := t.eval(c, c.Child(0))
	if err != nil || r.IsSignal() {
		return r, err
	}
	right, r, err := t.eval(c, c.Child(1))
	if err != nil || r.IsSignal() {
		return r, err
	}
	v, err := compare(c.Name(), c.Op(), left, right)
	if err != nil {
		return StepResult{}, err
	}
	return Completed(v), nil
}

func (t *Thread) push(name string, v object.Value) error {
	if len(t.stack) >= t.maxStackDepth {
		return errz.NewTrapf(errz.ErrStackOverflow, name, "operand stack limit %d reached", t.maxStackDepth)
	}
	t.stack = append(t.stack, v)
	return nil
}
