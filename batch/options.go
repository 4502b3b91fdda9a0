package batch

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/cwbudde/algo-storir/synth"
)

// ErrInvalidOption is returned for out-of-range driver options.
var ErrInvalidOption = errors.New("batch: invalid option")

const defaultIOWorkers = 2

type config struct {
	baseSeed       uint64
	computeWorkers int
	ioWorkers      int
	logger         *slog.Logger
	observer       Observer
	synthOpts      []synth.Option
}

func defaultConfig() config {
	return config{
		computeWorkers: runtime.GOMAXPROCS(0),
		ioWorkers:      defaultIOWorkers,
		logger:         slog.New(slog.DiscardHandler),
		observer:       nopObserver{},
	}
}

// Option configures a [Driver].
type Option func(*config) error

// WithBaseSeed sets the seed every per-draw seed is derived from (default 0).
func WithBaseSeed(seed uint64) Option {
	return func(cfg *config) error {
		cfg.baseSeed = seed
		return nil
	}
}

// WithComputeWorkers bounds the number of draws synthesized concurrently
// (default GOMAXPROCS).
func WithComputeWorkers(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("%w: compute workers must be >= 1: %d", ErrInvalidOption, n)
		}
		cfg.computeWorkers = n
		return nil
	}
}

// WithIOWorkers bounds the number of concurrent writes (default 2).
func WithIOWorkers(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return fmt.Errorf("%w: I/O workers must be >= 1: %d", ErrInvalidOption, n)
		}
		cfg.ioWorkers = n
		return nil
	}
}

// WithLogger sets the structured logger. Draws are logged at debug level,
// truncated tails at warn and failures at error.
func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) error {
		if l != nil {
			cfg.logger = l
		}
		return nil
	}
}

// WithObserver registers per-draw hooks. Use [Observers] to register several.
func WithObserver(o Observer) Option {
	return func(cfg *config) error {
		if o != nil {
			cfg.observer = o
		}
		return nil
	}
}

// WithSynthOptions passes options through to the synthesizer.
func WithSynthOptions(opts ...synth.Option) Option {
	return func(cfg *config) error {
		cfg.synthOpts = append(cfg.synthOpts, opts...)
		return nil
	}
}
