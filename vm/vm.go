// Package vm executes instruction trees.
//
// A Thread walks a tree depth-first. Every instruction returns a
// StepResult: a normal completion or a branch signal. Signals are handled
// only by Block and Loop, which either consume them or pass them on with
// their depth decremented. Traps are returned as errors and never travel
// as signals.
package vm

import (
	"context"
	"fmt"
	"sync"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"
	"github.com/wasmint/wasmint/bytecode"
	"github.com/wasmint/wasmint/errz"
	"github.com/wasmint/wasmint/object"
)

const (
	DefaultMaxDepth      = 1024
	DefaultMaxStackDepth = 1024
	DefaultMaxFrameDepth = 256

	// DefaultContextCheckInterval is the number of instructions between
	// checks of ctx.Done(). Set to 0 to disable.
	DefaultContextCheckInterval = 1000
)

// Thread owns the operand stack and call frames used to execute
// instruction trees. A Thread runs one tree at a time; use one Thread per
// goroutine. Trees may be shared between threads.
type Thread struct {
	id     uuid.UUID
	stack  []object.Value
	frames []*frame
	fp     int // index of the active frame, -1 when none
	depth  int // nesting depth of the executing instruction
	steps  int

	ctx  context.Context
	done <-chan struct{}

	running  bool
	runMutex sync.Mutex

	logger      zerolog.Logger
	observer    Observer
	observerCfg ObserverConfig

	maxDepth             int
	maxStackDepth        int
	maxFrameDepth        int
	contextCheckInterval int
}

// New creates a new Thread.
func New(options ...Option) *Thread {
	t := &Thread{
		id:                   uuid.Must(uuid.NewV4()),
		fp:                   -1,
		ctx:                  context.Background(),
		logger:               zerolog.Nop(),
		maxDepth:             DefaultMaxDepth,
		maxStackDepth:        DefaultMaxStackDepth,
		maxFrameDepth:        DefaultMaxFrameDepth,
		contextCheckInterval: DefaultContextCheckInterval,
	}
	for _, opt := range options {
		opt(t)
	}
	t.logger = t.logger.With().Str("thread", t.id.String()).Logger()
	if t.observer != nil {
		t.observerCfg = NormalizeConfig(t.observer.Config())
	}
	return t
}

// ID returns the unique identifier of the thread, as used in its logs.
func (t *Thread) ID() uuid.UUID {
	return t.id
}

// Push places a value on top of the operand stack.
func (t *Thread) Push(v object.Value) error {
	return t.push("push", v)
}

// Pop removes and returns the value on top of the operand stack.
func (t *Thread) Pop() (object.Value, bool) {
	n := len(t.stack)
	if n == 0 {
		return object.Value{}, false
	}
	v := t.stack[n-1]
	t.stack = t.stack[:n-1]
	return v, true
}

// Peek returns the value on top of the operand stack without removing it.
func (t *Thread) Peek() (object.Value, bool) {
	n := len(t.stack)
	if n == 0 {
		return object.Value{}, false
	}
	return t.stack[n-1], true
}

// StackDepth returns the number of values on the operand stack.
func (t *Thread) StackDepth() int {
	return len(t.stack)
}

// truncate drops operand stack values above the given height.
func (t *Thread) truncate(height int) {
	if len(t.stack) > height {
		t.stack = t.stack[:height]
	}
}

// PushFrame activates a new frame for fn. Parameters are taken from args
// and the remaining locals start at zero.
func (t *Thread) PushFrame(fn *bytecode.Function, args ...object.Value) error {
	if t.fp+1 >= t.maxFrameDepth {
		return errz.NewTrapf(errz.ErrStackExhausted, fn.Name(), "call frame limit %d reached", t.maxFrameDepth)
	}
	if err := checkArgs(fn, args); err != nil {
		return err
	}
	t.fp++
	if t.fp == len(t.frames) {
		t.frames = append(t.frames, &frame{})
	}
	t.frames[t.fp].activate(fn, args)
	return nil
}

// PopFrame deactivates the current frame.
func (t *Thread) PopFrame() {
	if t.fp < 0 {
		return
	}
	t.frames[t.fp].fn = nil
	t.fp--
}

// FrameDepth returns the number of active frames.
func (t *Thread) FrameDepth() int {
	return t.fp + 1
}

// Local returns the local variable at index in the current frame.
func (t *Thread) Local(index int) (object.Value, error) {
	f, err := t.activeFrame(index)
	if err != nil {
		return object.Value{}, err
	}
	return f.locals[index], nil
}

// SetLocal writes the local variable at index in the current frame.
func (t *Thread) SetLocal(index int, v object.Value) error {
	f, err := t.activeFrame(index)
	if err != nil {
		return err
	}
	if current := f.locals[index].Type(); current != v.Type() {
		return errz.NewInterpreterErrorf("set_local", "local %d has type %s, cannot store %s", index, current, v.Type())
	}
	f.locals[index] = v
	return nil
}

func (t *Thread) activeFrame(index int) (*frame, error) {
	if t.fp < 0 {
		return nil, errz.NewInterpreterErrorf("local", "no active frame")
	}
	f := t.frames[t.fp]
	if index < 0 || index >= len(f.locals) {
		return nil, errz.NewInterpreterErrorf("local", "local %d out of range in %q", index, f.name())
	}
	return f, nil
}

func checkArgs(fn *bytecode.Function, args []object.Value) error {
	if len(args) != fn.ParamCount() {
		return fmt.Errorf("args error: function %q takes %d argument(s) (%d given)",
			fn.Name(), fn.ParamCount(), len(args))
	}
	for i, arg := range args {
		if arg.Type() != fn.Param(i) {
			return fmt.Errorf("args error: argument %d of function %q must be %s (%s given)",
				i, fn.Name(), fn.Param(i), arg.Type())
		}
	}
	return nil
}

func (t *Thread) start(ctx context.Context) error {
	t.runMutex.Lock()
	defer t.runMutex.Unlock()
	if t.running {
		return fmt.Errorf("thread is already running")
	}
	t.running = true
	t.ctx = ctx
	t.done = ctx.Done()
	t.steps = 0
	return nil
}

func (t *Thread) stop() {
	t.runMutex.Lock()
	defer t.runMutex.Unlock()
	t.running = false
	t.ctx = context.Background()
	t.done = nil
}

// Invoke runs fn with the given arguments on a new frame and returns its
// result. The zero Value is returned for void functions. The frame is
// popped and the operand stack restored whether the body completes or
// traps. A branch signal escaping the body is reported as an interpreter
// error.
func (t *Thread) Invoke(ctx context.Context, fn *bytecode.Function, args ...object.Value) (result object.Value, err error) {
	if fn.Body() == nil {
		fault := errz.NewInterpreterErrorf("function", "function %q has no body", fn.Name())
		fault.Function = fn.Name()
		return object.Value{}, fault
	}
	if err := t.start(ctx); err != nil {
		return object.Value{}, err
	}
	defer t.stop()

	if err := t.PushFrame(fn, args...); err != nil {
		return object.Value{}, err
	}
	height := len(t.stack)
	defer func() {
		t.truncate(height)
		t.PopFrame()
	}()

	r, err := t.Exec(fn.Body())
	if err != nil {
		errz.SetFunction(err, fn.Name())
		t.logger.Debug().Err(err).Str("function", fn.Name()).Msg("execution aborted")
		return object.Value{}, err
	}
	if r.IsSignal() {
		fault := errz.NewInterpreterErrorf(fn.Body().Name(),
			"branch signal with depth %d escaped the outermost scope", r.Depth())
		fault.Function = fn.Name()
		return object.Value{}, fault
	}
	v, _ := r.Value()
	return v, nil
}
