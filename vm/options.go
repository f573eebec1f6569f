package vm

import "github.com/rs/zerolog"

// Option is a configuration function for a Thread.
type Option func(*Thread)

// WithLogger sets the logger used for execution tracing. Signal handling is
// logged at trace level and traps at debug level. The default logger
// discards everything.
func WithLogger(logger zerolog.Logger) Option {
	return func(t *Thread) {
		t.logger = logger
	}
}

// WithObserver sets an observer for execution events.
// The observer receives callbacks for instruction steps and branch signals.
// Returning false from any observer method halts execution immediately.
func WithObserver(observer Observer) Option {
	return func(t *Thread) {
		t.observer = observer
	}
}

// WithMaxDepth sets the maximum nesting depth of executing instructions.
// Exceeding it raises a stack exhausted trap.
func WithMaxDepth(depth int) Option {
	return func(t *Thread) {
		t.maxDepth = depth
	}
}

// WithMaxStackDepth sets the maximum size of the operand stack.
func WithMaxStackDepth(depth int) Option {
	return func(t *Thread) {
		t.maxStackDepth = depth
	}
}

// WithMaxFrameDepth sets the maximum number of active call frames.
func WithMaxFrameDepth(depth int) Option {
	return func(t *Thread) {
		t.maxFrameDepth = depth
	}
}

// WithContextCheckInterval sets how often the thread checks ctx.Done()
// during execution, in number of executed instructions. A value of 0
// disables checking. The default is DefaultContextCheckInterval.
//
// An infinite loop is a valid program; cancelling the context is how a
// host bounds it.
func WithContextCheckInterval(interval int) Option {
	return func(t *Thread) {
		t.contextCheckInterval = interval
	}
}
