package dither

import (
	"fmt"
	"math"
)

const (
	defaultBitDepth        = 16
	defaultDitherType      = DitherNone
	defaultDitherAmplitude = 1.0
	defaultLimit           = true
	minBitDepth            = 2
	maxBitDepth            = 32
)

type config struct {
	bitDepth        int
	ditherType      DitherType
	ditherAmplitude float64
	limit           bool
	seed            uint64
	stream          uint64
}

func defaultConfig() config {
	return config{
		bitDepth:        defaultBitDepth,
		ditherType:      defaultDitherType,
		ditherAmplitude: defaultDitherAmplitude,
		limit:           defaultLimit,
	}
}

// Option configures a [Quantizer].
type Option func(*config) error

// WithBitDepth sets the target bit depth (2–32, default 16).
func WithBitDepth(bits int) Option {
	return func(cfg *config) error {
		if bits < minBitDepth || bits > maxBitDepth {
			return fmt.Errorf("dither: bit depth must be in [%d, %d]: %d", minBitDepth, maxBitDepth, bits)
		}

		cfg.bitDepth = bits

		return nil
	}
}

// WithDitherType sets the dither noise PDF (default [DitherNone]).
func WithDitherType(dt DitherType) Option {
	return func(cfg *config) error {
		if !dt.Valid() {
			return fmt.Errorf("dither: invalid dither type: %d", dt)
		}

		cfg.ditherType = dt

		return nil
	}
}

// WithDitherAmplitude sets the dither amplitude in LSB (default 1.0, must be >= 0).
func WithDitherAmplitude(amp float64) Option {
	return func(cfg *config) error {
		if amp < 0 || math.IsNaN(amp) || math.IsInf(amp, 0) {
			return fmt.Errorf("dither: amplitude must be >= 0 and finite: %f", amp)
		}

		cfg.ditherAmplitude = amp

		return nil
	}
}

// WithLimit enables or disables clipping to the bit-depth range (default true).
func WithLimit(enabled bool) Option {
	return func(cfg *config) error {
		cfg.limit = enabled
		return nil
	}
}

// WithSeed seeds the dither noise generator. Quantizers with equal seed and
// stream produce identical output.
func WithSeed(seed, stream uint64) Option {
	return func(cfg *config) error {
		cfg.seed = seed
		cfg.stream = stream
		return nil
	}
}
