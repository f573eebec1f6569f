package vm

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"github.com/wasmint/wasmint/bytecode"
	"github.com/wasmint/wasmint/errz"
	"github.com/wasmint/wasmint/object"
	"github.com/wasmint/wasmint/op"
)

func i32(v int32) bytecode.Instruction {
	return bytecode.NewConst(object.NewI32(v))
}

func local(index uint32) bytecode.Instruction {
	return bytecode.NewGetLocal(index, object.I32)
}

func setLocal(index uint32, value bytecode.Instruction) bytecode.Instruction {
	return bytecode.NewSetLocal(index, object.I32, value)
}

func add(left, right bytecode.Instruction) bytecode.Instruction {
	return bytecode.NewBinary(op.Add, object.I32, left, right)
}

func fn(result *object.Type, body bytecode.Instruction, locals ...*object.Type) *bytecode.Function {
	return bytecode.NewFunction(bytecode.FunctionParams{
		Name:   "f",
		Locals: locals,
		Result: result,
		Body:   body,
	})
}

// countdown decrements local 0 until it reaches zero, counting the loop
// iterations in local 1.
func countdown() *bytecode.Function {
	body := bytecode.NewBlock(object.Void,
		bytecode.NewLoop(object.Void,
			setLocal(0, bytecode.NewBinary(op.Sub, object.I32, local(0), i32(1))),
			setLocal(1, add(local(1), i32(1))),
			bytecode.NewBreakIf(1, bytecode.NewEqz(object.I32, local(0))),
			bytecode.NewBreak(0),
		),
	)
	return bytecode.NewFunction(bytecode.FunctionParams{
		Name:   "countdown",
		Params: []*object.Type{object.I32},
		Locals: []*object.Type{object.I32},
		Body:   body,
	})
}

// nested builds scopes where level 0 is innermost and holds a branch of
// the given depth. Even levels are blocks and odd levels are loops. The
// branch is taken only on its first execution, counted in local 1, so a
// loop it targets restarts once. After its inner scope, every level sets
// bit 1<<level in local 0.
func nested(levels int, depth uint32) bytecode.Instruction {
	setBit := func(level int) bytecode.Instruction {
		return setLocal(0, bytecode.NewBinary(op.Or, object.I32, local(0), i32(1<<level)))
	}
	scope := func(level int, body ...bytecode.Instruction) bytecode.Instruction {
		if level%2 == 1 {
			return bytecode.NewLoop(object.Void, body...)
		}
		return bytecode.NewBlock(object.Void, body...)
	}
	instr := scope(0,
		setLocal(1, add(local(1), i32(1))),
		bytecode.NewBreakIf(depth, bytecode.NewCompare(op.Eq, object.I32, local(1), i32(1))),
		setBit(0),
	)
	for level := 1; level < levels; level++ {
		instr = scope(level, instr, setBit(level))
	}
	return instr
}

func TestNewThread(t *testing.T) {
	th := New()
	require.NotEqual(t, th.ID(), New().ID())
	require.Equal(t, 0, th.StackDepth())
	require.Equal(t, 0, th.FrameDepth())
}

func TestOperandStack(t *testing.T) {
	th := New()
	_, ok := th.Pop()
	require.False(t, ok)
	_, ok = th.Peek()
	require.False(t, ok)

	require.Nil(t, th.Push(object.NewI32(1)))
	require.Nil(t, th.Push(object.NewI64(2)))
	require.Equal(t, 2, th.StackDepth())

	v, ok := th.Peek()
	require.True(t, ok)
	require.Equal(t, object.NewI64(2), v)

	v, ok = th.Pop()
	require.True(t, ok)
	require.Equal(t, object.NewI64(2), v)
	v, ok = th.Pop()
	require.True(t, ok)
	require.Equal(t, object.NewI32(1), v)
	require.Equal(t, 0, th.StackDepth())
}

func TestOperandStackLimit(t *testing.T) {
	th := New(WithMaxStackDepth(1))
	require.Nil(t, th.Push(object.NewI32(1)))
	err := th.Push(object.NewI32(2))
	require.True(t, errz.IsKind(err, errz.ErrStackOverflow))
}

func TestFrames(t *testing.T) {
	f := bytecode.NewFunction(bytecode.FunctionParams{
		Name:   "f",
		Params: []*object.Type{object.I32},
		Locals: []*object.Type{object.I64},
		Body:   bytecode.NewNop(),
	})
	th := New()
	require.Nil(t, th.PushFrame(f, object.NewI32(7)))
	require.Equal(t, 1, th.FrameDepth())

	v, err := th.Local(0)
	require.Nil(t, err)
	require.Equal(t, object.NewI32(7), v)
	v, err = th.Local(1)
	require.Nil(t, err)
	require.Equal(t, object.NewI64(0), v)

	require.Nil(t, th.SetLocal(1, object.NewI64(-5)))
	v, err = th.Local(1)
	require.Nil(t, err)
	require.Equal(t, int64(-5), v.I64())

	err = th.SetLocal(1, object.NewI32(1))
	require.True(t, errz.IsKind(err, errz.ErrInterpreter))
	_, err = th.Local(2)
	require.True(t, errz.IsKind(err, errz.ErrInterpreter))

	th.PopFrame()
	require.Equal(t, 0, th.FrameDepth())
	_, err = th.Local(0)
	require.True(t, errz.IsKind(err, errz.ErrInterpreter))
}

func TestFrameWithManyLocals(t *testing.T) {
	locals := make([]*object.Type, DefaultFrameLocals*2)
	for i := range locals {
		locals[i] = object.I32
	}
	th := New()
	require.Nil(t, th.PushFrame(fn(object.Void, bytecode.NewNop(), locals...)))
	last := len(locals) - 1
	require.Nil(t, th.SetLocal(last, object.NewI32(3)))
	v, err := th.Local(last)
	require.Nil(t, err)
	require.Equal(t, int32(3), v.I32())
}

func TestFrameLimit(t *testing.T) {
	th := New(WithMaxFrameDepth(2))
	f := fn(object.Void, bytecode.NewNop())
	require.Nil(t, th.PushFrame(f))
	require.Nil(t, th.PushFrame(f))
	err := th.PushFrame(f)
	require.True(t, errz.IsKind(err, errz.ErrStackExhausted))
}

func TestInvokeArgs(t *testing.T) {
	f := countdown()
	_, err := New().Invoke(context.Background(), f)
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "takes 1 argument(s) (0 given)")

	_, err = New().Invoke(context.Background(), f, object.NewI64(3))
	require.NotNil(t, err)
	require.Contains(t, err.Error(), "must be i32 (i64 given)")
}

func TestBreakSkipsRemainingSiblings(t *testing.T) {
	th := New()
	r, err := th.Exec(bytecode.NewBlock(object.Void, bytecode.NewBreak(0), bytecode.NewUnreachable()))
	require.Nil(t, err)
	require.False(t, r.IsSignal())
	_, ok := r.Value()
	require.False(t, ok)
}

func TestLoopCountdown(t *testing.T) {
	f := countdown()
	th := New()
	require.Nil(t, th.PushFrame(f, object.NewI32(3)))

	r, err := th.Exec(f.Body())
	require.Nil(t, err)
	require.False(t, r.IsSignal())

	counter, err := th.Local(0)
	require.Nil(t, err)
	require.Equal(t, int32(0), counter.I32())
	iterations, err := th.Local(1)
	require.Nil(t, err)
	require.Equal(t, int32(3), iterations.I32())
}

func TestSignalDepthSelectsScope(t *testing.T) {
	const levels = 5
	for depth := uint32(0); depth < levels; depth++ {
		// A caught block skips the levels up to and including itself. A
		// restarted loop reruns everything below it.
		restarts := depth%2 == 1
		var expected int32
		for level := 0; level < levels; level++ {
			if restarts || level > int(depth) {
				expected |= 1 << level
			}
		}
		expectedRuns := int32(1)
		if restarts {
			expectedRuns = 2
		}

		th := New()
		require.Nil(t, th.PushFrame(fn(object.Void, nil, object.I32, object.I32)))
		r, err := th.Exec(nested(levels, depth))
		require.Nil(t, err)
		require.False(t, r.IsSignal())
		bits, err := th.Local(0)
		require.Nil(t, err)
		require.Equal(t, expected, bits.I32(), "depth %d", depth)
		runs, err := th.Local(1)
		require.Nil(t, err)
		require.Equal(t, expectedRuns, runs.I32(), "depth %d", depth)
	}
}

func TestBranchContinuesOuterLoop(t *testing.T) {
	body := bytecode.NewBlock(object.Void,
		bytecode.NewLoop(object.Void,
			setLocal(0, add(local(0), i32(1))),
			bytecode.NewBreakIf(1, bytecode.NewCompare(op.GeS, object.I32, local(0), i32(3))),
			bytecode.NewBlock(object.Void,
				bytecode.NewLoop(object.Void,
					bytecode.NewBreak(2),
					bytecode.NewUnreachable(),
				),
				bytecode.NewUnreachable(),
			),
			bytecode.NewUnreachable(),
		),
	)
	observer := &TestObserver{}
	th := New(WithObserver(observer))
	require.Nil(t, th.PushFrame(fn(object.Void, nil, object.I32)))
	r, err := th.Exec(body)
	require.Nil(t, err)
	require.False(t, r.IsSignal())

	v, err := th.Local(0)
	require.Nil(t, err)
	require.Equal(t, int32(3), v.I32())
	require.Equal(t, 2, observer.count(SignalRestarted))
	require.Equal(t, 4, observer.count(SignalPropagated))
	require.Equal(t, 1, observer.count(SignalCaught))
	require.Equal(t, 0, th.StackDepth())
}

func TestSignalEscapesExec(t *testing.T) {
	th := New()
	require.Nil(t, th.PushFrame(fn(object.Void, nil, object.I32, object.I32)))
	r, err := th.Exec(nested(3, 5))
	require.Nil(t, err)
	require.True(t, r.IsSignal())
	require.Equal(t, uint32(2), r.Depth())
}

func TestEscapedSignalIsInterpreterError(t *testing.T) {
	for _, body := range []bytecode.Instruction{
		bytecode.NewBreak(0),
		bytecode.NewBlock(object.Void, bytecode.NewBreak(1)),
		nested(2, 2),
	} {
		th := New()
		_, err := th.Invoke(context.Background(), fn(object.Void, body, object.I32, object.I32))
		require.NotNil(t, err)
		se, ok := errz.AsStructured(err)
		require.True(t, ok)
		require.Equal(t, errz.ErrInterpreter, se.Kind)
		require.Equal(t, errz.E4001, se.Code)
		require.Equal(t, "f", se.Function)
		require.Equal(t, 0, th.FrameDepth())
	}
}

func TestMissingInstructionIsInterpreterError(t *testing.T) {
	_, err := Run(context.Background(), fn(object.Void, nil), nil)
	se, ok := errz.AsStructured(err)
	require.True(t, ok)
	require.Equal(t, errz.ErrInterpreter, se.Kind)
	require.Equal(t, "f", se.Function)
	require.Equal(t, `function "f" has no body`, se.Message)

	for _, body := range []bytecode.Instruction{
		bytecode.NewBlock(object.Void, nil),
		bytecode.NewDrop(bytecode.NewBinary(op.Add, object.I32, i32(1), nil)),
		bytecode.NewIf(object.Void, nil, bytecode.NewNop(), nil),
	} {
		th := New()
		_, err := th.Invoke(context.Background(), fn(object.Void, body))
		se, ok := errz.AsStructured(err)
		require.True(t, ok)
		require.Equal(t, errz.ErrInterpreter, se.Kind)
		require.Equal(t, "missing instruction", se.Message)
		require.Equal(t, "f", se.Function)
		require.Equal(t, 0, th.FrameDepth())
	}
}

func TestBlockWithoutSignalRunsSequentially(t *testing.T) {
	children := []bytecode.Instruction{
		setLocal(0, i32(4)),
		setLocal(1, add(local(0), i32(5))),
		setLocal(0, add(local(0), local(1))),
	}
	f := fn(object.Void, nil, object.I32, object.I32)

	sequential := New()
	require.Nil(t, sequential.PushFrame(f))
	for _, child := range children {
		r, err := sequential.Exec(child)
		require.Nil(t, err)
		require.False(t, r.IsSignal())
	}

	block := New()
	require.Nil(t, block.PushFrame(f))
	r, err := block.Exec(bytecode.NewBlock(object.Void, children...))
	require.Nil(t, err)
	require.False(t, r.IsSignal())

	for i := 0; i < 2; i++ {
		want, err := sequential.Local(i)
		require.Nil(t, err)
		got, err := block.Local(i)
		require.Nil(t, err)
		require.Equal(t, want, got)
	}
}

func TestTypedBlockResult(t *testing.T) {
	tests := []struct {
		name     string
		body     bytecode.Instruction
		expected int32
	}{
		{
			name:     "last child",
			body:     bytecode.NewBlock(object.I32, bytecode.NewNop(), i32(3)),
			expected: 3,
		},
		{
			name: "break value",
			body: bytecode.NewBlock(object.I32,
				bytecode.NewBreakWithValue(0, i32(7)),
				bytecode.NewUnreachable(),
			),
			expected: 7,
		},
		{
			name: "break value through inner block",
			body: bytecode.NewBlock(object.I32,
				bytecode.NewBlock(object.Void, bytecode.NewBreakWithValue(1, i32(9))),
				i32(1),
			),
			expected: 9,
		},
		{
			name: "break value through if",
			body: bytecode.NewBlock(object.I32,
				bytecode.NewBlock(object.Void,
					bytecode.NewIf(object.Void, i32(1), bytecode.NewBreakWithValue(1, i32(42)), nil),
					bytecode.NewUnreachable(),
				),
				i32(0),
			),
			expected: 42,
		},
		{
			name: "break inside operand",
			body: bytecode.NewBlock(object.I32,
				add(i32(1), bytecode.NewBreakWithValue(0, i32(11))),
			),
			expected: 11,
		},
		{
			name: "br_if not taken",
			body: bytecode.NewBlock(object.I32,
				bytecode.NewDrop(bytecode.NewBreakIfWithValue(0, i32(5), i32(0))),
				i32(6),
			),
			expected: 6,
		},
		{
			name: "br_if taken",
			body: bytecode.NewBlock(object.I32,
				bytecode.NewDrop(bytecode.NewBreakIfWithValue(0, i32(5), i32(1))),
				i32(6),
			),
			expected: 5,
		},
		{
			name: "br_if value passes through",
			body: bytecode.NewBlock(object.I32,
				bytecode.NewBreakIfWithValue(0, i32(8), i32(0)),
			),
			expected: 8,
		},
		{
			name:     "if else",
			body:     bytecode.NewIf(object.I32, i32(0), i32(1), i32(2)),
			expected: 2,
		},
		{
			name:     "tee_local",
			body:     add(bytecode.NewTeeLocal(0, object.I32, i32(20)), local(0)),
			expected: 40,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			th := New()
			result, err := th.Invoke(context.Background(), fn(object.I32, tt.body, object.I32))
			require.Nil(t, err)
			require.Equal(t, object.NewI32(tt.expected), result)
			require.Equal(t, 0, th.StackDepth())
			require.Equal(t, 0, th.FrameDepth())
		})
	}
}

func TestLoopResult(t *testing.T) {
	body := bytecode.NewLoop(object.I32,
		setLocal(0, add(local(0), i32(1))),
		bytecode.NewBreakIf(0, bytecode.NewCompare(op.LtS, object.I32, local(0), i32(10))),
		local(0),
	)
	result, err := Run(context.Background(), fn(object.I32, body, object.I32), nil)
	require.Nil(t, err)
	require.Equal(t, object.NewI32(10), result)
}

func TestInvokeIsRepeatable(t *testing.T) {
	f := countdown()
	body := bytecode.NewBlock(object.I32, bytecode.NewDrop(i32(0)), add(i32(2), i32(3)))
	g := fn(object.I32, body)
	th := New()
	for i := 0; i < 3; i++ {
		_, err := th.Invoke(context.Background(), f, object.NewI32(5))
		require.Nil(t, err)
		result, err := th.Invoke(context.Background(), g)
		require.Nil(t, err)
		require.Equal(t, object.NewI32(5), result)
	}
}

func TestSharedTreeConcurrentThreads(t *testing.T) {
	body := bytecode.NewBlock(object.I32,
		bytecode.NewLoop(object.Void,
			setLocal(1, add(local(1), local(0))),
			setLocal(0, bytecode.NewBinary(op.Sub, object.I32, local(0), i32(1))),
			bytecode.NewBreakIf(0, local(0)),
		),
		local(1),
	)
	sum := bytecode.NewFunction(bytecode.FunctionParams{
		Name:   "sum",
		Params: []*object.Type{object.I32},
		Locals: []*object.Type{object.I32},
		Result: object.I32,
		Body:   body,
	})

	var wg sync.WaitGroup
	results := make([]object.Value, 8)
	errs := make([]error, 8)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = Run(context.Background(), sum, []object.Value{object.NewI32(100)})
		}(i)
	}
	wg.Wait()
	for i := range results {
		require.Nil(t, errs[i])
		require.Equal(t, object.NewI32(5050), results[i])
	}
}

func TestTrapScopes(t *testing.T) {
	body := bytecode.NewBlock(object.Void,
		bytecode.NewLoop(object.Void,
			bytecode.NewDrop(bytecode.NewBinary(op.DivS, object.I32, i32(1), i32(0))),
		),
	)
	th := New()
	_, err := th.Invoke(context.Background(), fn(object.Void, body))
	require.NotNil(t, err)
	require.True(t, errz.IsTrap(err))

	se, ok := errz.AsStructured(err)
	require.True(t, ok)
	require.Equal(t, errz.ErrDivideByZero, se.Kind)
	require.Equal(t, "i32.div_s", se.Instruction)
	require.Equal(t, []string{"drop", "loop", "block"}, se.Scopes)
	require.Equal(t, "f", se.Function)
	require.Equal(t, 0, th.FrameDepth())
	require.Equal(t, 0, th.StackDepth())
}

func TestUnreachableTrap(t *testing.T) {
	_, err := Run(context.Background(), fn(object.Void, bytecode.NewUnreachable()), nil)
	require.True(t, errz.IsKind(err, errz.ErrUnreachable))
}

func TestTrapInBreakValue(t *testing.T) {
	body := bytecode.NewBlock(object.I32,
		bytecode.NewBreakWithValue(0, bytecode.NewBinary(op.RemS, object.I32, i32(1), i32(0))),
	)
	th := New()
	_, err := th.Invoke(context.Background(), fn(object.I32, body))
	se, ok := errz.AsStructured(err)
	require.True(t, ok)
	require.Equal(t, errz.ErrDivideByZero, se.Kind)
	require.Equal(t, []string{"br", "block"}, se.Scopes)
	require.Equal(t, 0, th.StackDepth())
}

func TestMaxDepth(t *testing.T) {
	var body bytecode.Instruction = bytecode.NewNop()
	for i := 0; i < 20; i++ {
		body = bytecode.NewBlock(object.Void, body)
	}
	_, err := Run(context.Background(), fn(object.Void, body), nil, WithMaxDepth(10))
	require.True(t, errz.IsKind(err, errz.ErrStackExhausted))

	_, err = Run(context.Background(), fn(object.Void, body), nil, WithMaxDepth(21))
	require.Nil(t, err)
}

func TestBreakValueStackLimit(t *testing.T) {
	body := bytecode.NewBlock(object.I32, bytecode.NewBreakWithValue(0, i32(1)))
	_, err := Run(context.Background(), fn(object.I32, body), nil, WithMaxStackDepth(0))
	se, ok := errz.AsStructured(err)
	require.True(t, ok)
	require.Equal(t, errz.ErrStackOverflow, se.Kind)
	require.Equal(t, "br", se.Instruction)
}

func TestContextCancellation(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	forever := fn(object.Void, bytecode.NewLoop(object.Void, bytecode.NewBreak(0)))
	th := New(WithContextCheckInterval(10))
	_, err := th.Invoke(ctx, forever)
	require.NotNil(t, err)
	require.True(t, errz.IsKind(err, errz.ErrHalted))
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	require.Equal(t, 0, th.FrameDepth())

	// The thread is usable again after a cancelled run.
	result, err := th.Invoke(context.Background(), fn(object.I32, i32(1)))
	require.Nil(t, err)
	require.Equal(t, object.NewI32(1), result)
}

func TestSignalLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.TraceLevel)
	th := New(WithLogger(logger))

	body := bytecode.NewBlock(object.Void, bytecode.NewBlock(object.Void, bytecode.NewBreak(1)))
	_, err := th.Invoke(context.Background(), fn(object.Void, body))
	require.Nil(t, err)

	out := buf.String()
	require.Contains(t, out, `"message":"branch signal"`)
	require.Contains(t, out, `"action":"emitted"`)
	require.Contains(t, out, `"action":"propagated"`)
	require.Contains(t, out, `"action":"caught"`)
	require.Contains(t, out, th.ID().String())
}

func TestTrapLogging(t *testing.T) {
	var buf bytes.Buffer
	th := New(WithLogger(zerolog.New(&buf).Level(zerolog.DebugLevel)))
	_, err := th.Invoke(context.Background(), fn(object.Void, bytecode.NewUnreachable()))
	require.NotNil(t, err)
	require.Contains(t, buf.String(), `"message":"execution aborted"`)
	require.Contains(t, buf.String(), `"function":"f"`)
}
