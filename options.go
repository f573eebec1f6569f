package wasmint

import (
	"github.com/rs/zerolog"
	"github.com/wasmint/wasmint/vm"
)

// Option configures a call.
type Option func(*config)

type config struct {
	logger        *zerolog.Logger
	observer      vm.Observer
	maxDepth      int
	checkInterval *int
}

func collectOptions(opts ...Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

func (cfg *config) vmOpts() []vm.Option {
	var opts []vm.Option
	if cfg.logger != nil {
		opts = append(opts, vm.WithLogger(*cfg.logger))
	}
	if cfg.observer != nil {
		opts = append(opts, vm.WithObserver(cfg.observer))
	}
	if cfg.maxDepth > 0 {
		opts = append(opts, vm.WithMaxDepth(cfg.maxDepth))
	}
	if cfg.checkInterval != nil {
		opts = append(opts, vm.WithContextCheckInterval(*cfg.checkInterval))
	}
	return opts
}

// WithLogger sets the logger that receives signal traces and trap reports.
func WithLogger(logger zerolog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = &logger
	}
}

// WithObserver sets an observer for execution events. See vm.Observer.
func WithObserver(observer vm.Observer) Option {
	return func(cfg *config) {
		cfg.observer = observer
	}
}

// WithMaxDepth limits the nesting depth of executing instructions.
func WithMaxDepth(depth int) Option {
	return func(cfg *config) {
		cfg.maxDepth = depth
	}
}

// WithContextCheckInterval sets how many instructions run between checks
// for context cancellation. Zero disables the check.
func WithContextCheckInterval(interval int) Option {
	return func(cfg *config) {
		cfg.checkInterval = &interval
	}
}
