package vm

import (
	"github.com/wasmint/wasmint/op"
)

// StepMode controls when OnStep callbacks are triggered.
type StepMode uint8

const (
	// StepAll calls OnStep for every executed instruction.
	// Use for: detailed tracing, instruction-level debugging.
	StepAll StepMode = iota

	// StepNone never calls OnStep.
	// Use for: observers that only need signal events.
	StepNone

	// StepSampled calls OnStep every N instructions.
	// Use for: statistical profiling.
	StepSampled
)

// ObserverConfig specifies what events an observer wants to receive.
// Use NewObserverConfig() to create configs with safe defaults.
type ObserverConfig struct {
	// StepMode controls OnStep callback frequency.
	StepMode StepMode

	// SampleInterval is the number of instructions between OnStep calls
	// when StepMode is StepSampled. Values <= 0 are treated as 1.
	SampleInterval int

	// ObserveSignals enables OnSignal callbacks.
	ObserveSignals bool
}

// NewObserverConfig creates a config with safe defaults.
// ObserveSignals defaults to true.
func NewObserverConfig(mode StepMode) ObserverConfig {
	return ObserverConfig{
		StepMode:       mode,
		SampleInterval: 1000,
		ObserveSignals: true,
	}
}

// NormalizeConfig validates and clamps config values.
func NormalizeConfig(cfg ObserverConfig) ObserverConfig {
	if cfg.StepMode == StepSampled && cfg.SampleInterval <= 0 {
		cfg.SampleInterval = 1
	}
	return cfg
}

// Observer is an interface for observing thread execution events.
// Implementations can embed NoOpObserver for the methods they don't need.
//
// Observer methods are called synchronously during execution.
// Implementations should be fast to avoid impacting performance.
type Observer interface {
	// Config returns the observer's configuration.
	// Called once when the observer is attached to the thread.
	Config() ObserverConfig

	// OnStep is called before an instruction executes, based on the
	// StepMode in the observer's config.
	// Returns false to halt execution immediately.
	OnStep(event StepEvent) bool

	// OnSignal is called whenever a branch signal is emitted, passed on,
	// caught or turned into a loop restart (if ObserveSignals is true).
	// Returns false to halt execution immediately.
	OnSignal(event SignalEvent) bool
}

// StepEvent contains information about a single instruction step.
type StepEvent struct {
	// Opcode is the kind of the instruction being executed.
	Opcode op.Code

	// Name is the diagnostic name of the instruction.
	Name string

	// Depth is the nesting depth of the instruction in the tree being run.
	Depth int

	// StackDepth is the current depth of the operand stack.
	StackDepth int

	// FrameDepth is the current depth of the call stack.
	FrameDepth int
}

// SignalAction tells what happened to a branch signal.
type SignalAction uint8

const (
	// SignalEmitted: a branch instruction produced the signal.
	SignalEmitted SignalAction = iota
	// SignalPropagated: a scope did not match and passed the signal on
	// with its depth decremented.
	SignalPropagated
	// SignalCaught: a block consumed the signal and completed.
	SignalCaught
	// SignalRestarted: a loop consumed the signal and restarted.
	SignalRestarted
)

func (a SignalAction) String() string {
	switch a {
	case SignalEmitted:
		return "emitted"
	case SignalPropagated:
		return "propagated"
	case SignalCaught:
		return "caught"
	case SignalRestarted:
		return "restarted"
	default:
		return "unknown"
	}
}

// SignalEvent contains information about a branch signal.
type SignalEvent struct {
	Action SignalAction

	// Name is the name of the instruction handling the signal.
	Name string

	// Depth is the signal depth as received by the instruction.
	Depth uint32

	// NestingDepth is the depth of the instruction in the tree.
	NestingDepth int

	// StackDepth is the depth of the operand stack after the action.
	StackDepth int
}

// NoOpObserver is an Observer implementation that does nothing.
// Embed this in your observer to provide default implementations
// for methods you don't need.
//
// NoOpObserver uses StepAll mode with ObserveSignals enabled. Override
// Config() in your observer to use a different mode.
type NoOpObserver struct{}

func (NoOpObserver) Config() ObserverConfig {
	return NewObserverConfig(StepAll)
}

func (NoOpObserver) OnStep(StepEvent) bool {
	return true
}

func (NoOpObserver) OnSignal(SignalEvent) bool {
	return true
}

// Ensure NoOpObserver implements Observer.
var _ Observer = NoOpObserver{}
