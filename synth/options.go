package synth

import (
	"fmt"
	"math"
	"time"
)

const (
	defaultFloorDB     = -80.0
	defaultMaxDuration = 10 * time.Second
)

type config struct {
	floorDB     float64
	maxDuration time.Duration
	dist        Distribution
}

func defaultConfig() config {
	return config{
		floorDB:     defaultFloorDB,
		maxDuration: defaultMaxDuration,
		dist:        Gaussian,
	}
}

// maxSamples returns the max duration in samples at sampleRate.
func (c config) maxSamples(sampleRate int) int {
	n := math.Round(c.maxDuration.Seconds() * float64(sampleRate))
	if n >= float64(math.MaxInt) {
		return math.MaxInt
	}
	return int(n)
}

// Option configures a [Synthesizer].
type Option func(*config) error

// WithFloorDB sets the level relative to the direct sound below which the
// tail is cut (default -80 dB, must be < 0).
func WithFloorDB(db float64) Option {
	return func(cfg *config) error {
		if !(db < 0) || math.IsInf(db, 0) {
			return fmt.Errorf("%w: floor must be < 0 dB and finite: %f", ErrInvalidParameter, db)
		}

		cfg.floorDB = db

		return nil
	}
}

// WithMaxDuration sets the hard length limit of a rendered response
// (default 10 s). Tails longer than the limit are truncated.
func WithMaxDuration(d time.Duration) Option {
	return func(cfg *config) error {
		if d <= 0 {
			return fmt.Errorf("%w: max duration must be > 0: %v", ErrInvalidParameter, d)
		}

		cfg.maxDuration = d

		return nil
	}
}

// WithDistribution selects the excitation noise distribution (default Gaussian).
func WithDistribution(d Distribution) Option {
	return func(cfg *config) error {
		if !d.Valid() {
			return fmt.Errorf("%w: unknown noise distribution: %d", ErrInvalidParameter, int(d))
		}

		cfg.dist = d

		return nil
	}
}
