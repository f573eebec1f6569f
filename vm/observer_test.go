package vm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wasmint/wasmint/bytecode"
	"github.com/wasmint/wasmint/errz"
	"github.com/wasmint/wasmint/object"
	"github.com/wasmint/wasmint/op"
)

// TestObserver is a test observer that records events.
type TestObserver struct {
	NoOpObserver
	config  *ObserverConfig
	Steps   []StepEvent
	Signals []SignalEvent
}

func (o *TestObserver) Config() ObserverConfig {
	if o.config != nil {
		return *o.config
	}
	return o.NoOpObserver.Config()
}

func (o *TestObserver) OnStep(event StepEvent) bool {
	o.Steps = append(o.Steps, event)
	return true
}

func (o *TestObserver) OnSignal(event SignalEvent) bool {
	o.Signals = append(o.Signals, event)
	return true
}

func (o *TestObserver) count(action SignalAction) int {
	n := 0
	for _, s := range o.Signals {
		if s.Action == action {
			n++
		}
	}
	return n
}

func TestObserverOnStep(t *testing.T) {
	observer := &TestObserver{}
	body := add(i32(1), i32(2))
	_, err := Run(context.Background(), fn(object.I32, body), nil, WithObserver(observer))
	require.Nil(t, err)

	require.Len(t, observer.Steps, 3)
	require.Equal(t, op.BinaryOp, observer.Steps[0].Opcode)
	require.Equal(t, "i32.add", observer.Steps[0].Name)
	require.Equal(t, 1, observer.Steps[0].Depth)
	require.Equal(t, 1, observer.Steps[0].FrameDepth)
	require.Equal(t, "i32.const", observer.Steps[1].Name)
	require.Equal(t, 2, observer.Steps[1].Depth)
}

func TestObserverSignals(t *testing.T) {
	observer := &TestObserver{}
	f := countdown()
	_, err := New(WithObserver(observer)).Invoke(context.Background(), f, object.NewI32(3))
	require.Nil(t, err)

	require.Equal(t, 3, observer.count(SignalEmitted))
	require.Equal(t, 2, observer.count(SignalRestarted))
	require.Equal(t, 1, observer.count(SignalPropagated))
	require.Equal(t, 1, observer.count(SignalCaught))

	last := observer.Signals[len(observer.Signals)-1]
	require.Equal(t, SignalCaught, last.Action)
	require.Equal(t, "block", last.Name)
	require.Equal(t, uint32(0), last.Depth)
	require.Equal(t, 1, last.NestingDepth)

	propagated := observer.Signals[len(observer.Signals)-2]
	require.Equal(t, SignalPropagated, propagated.Action)
	require.Equal(t, "loop", propagated.Name)
	require.Equal(t, uint32(1), propagated.Depth)
}

func TestObserverStepNone(t *testing.T) {
	cfg := NewObserverConfig(StepNone)
	observer := &TestObserver{config: &cfg}
	body := bytecode.NewBlock(object.Void, bytecode.NewBreak(0))
	_, err := Run(context.Background(), fn(object.Void, body), nil, WithObserver(observer))
	require.Nil(t, err)
	require.Empty(t, observer.Steps)
	require.Len(t, observer.Signals, 2)
}

func TestObserverSampled(t *testing.T) {
	cfg := NewObserverConfig(StepSampled)
	cfg.SampleInterval = 2
	cfg.ObserveSignals = false
	observer := &TestObserver{config: &cfg}
	body := bytecode.NewBlock(object.Void, bytecode.NewNop(), bytecode.NewNop(), bytecode.NewNop(), bytecode.NewBreak(0))
	_, err := Run(context.Background(), fn(object.Void, body), nil, WithObserver(observer))
	require.Nil(t, err)
	require.Len(t, observer.Steps, 2)
	require.Empty(t, observer.Signals)
}

func TestNormalizeConfig(t *testing.T) {
	cfg := NormalizeConfig(ObserverConfig{StepMode: StepSampled})
	require.Equal(t, 1, cfg.SampleInterval)
	cfg = NormalizeConfig(ObserverConfig{StepMode: StepAll})
	require.Equal(t, 0, cfg.SampleInterval)
}

type haltingObserver struct {
	NoOpObserver
	haltAfter int
	steps     int
}

func (o *haltingObserver) OnStep(event StepEvent) bool {
	o.steps++
	return o.steps < o.haltAfter
}

func TestObserverHaltOnStep(t *testing.T) {
	observer := &haltingObserver{haltAfter: 3}
	forever := fn(object.Void, bytecode.NewLoop(object.Void, bytecode.NewBreak(0)))
	_, err := Run(context.Background(), forever, nil, WithObserver(observer))
	require.NotNil(t, err)
	require.True(t, errz.IsKind(err, errz.ErrHalted))
	require.Equal(t, 3, observer.steps)
}

type signalHaltingObserver struct {
	NoOpObserver
}

func (signalHaltingObserver) OnSignal(event SignalEvent) bool {
	return event.Action != SignalCaught
}

func TestObserverHaltOnSignal(t *testing.T) {
	body := bytecode.NewBlock(object.Void, bytecode.NewBreak(0), bytecode.NewUnreachable())
	th := New(WithObserver(signalHaltingObserver{}))
	_, err := th.Invoke(context.Background(), fn(object.Void, body))
	se, ok := errz.AsStructured(err)
	require.True(t, ok)
	require.Equal(t, errz.ErrHalted, se.Kind)
	require.Equal(t, "block", se.Instruction)
	require.Equal(t, 0, th.FrameDepth())
}

func TestSignalActionString(t *testing.T) {
	require.Equal(t, "emitted", SignalEmitted.String())
	require.Equal(t, "propagated", SignalPropagated.String())
	require.Equal(t, "caught", SignalCaught.String())
	require.Equal(t, "restarted", SignalRestarted.String())
	require.Equal(t, "unknown", SignalAction(99).String())
}
