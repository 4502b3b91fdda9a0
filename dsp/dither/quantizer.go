package dither

import (
	"fmt"
	"math"

	"github.com/MichaelTJones/pcg"
)

// Quantizer rounds samples in [-1, +1] to signed integers of a fixed bit
// depth, scaling full scale to 2^(bits-1)-1. A Quantizer owns its noise
// generator and is not safe for concurrent use.
type Quantizer struct {
	bitDepth        int
	ditherType      DitherType
	ditherAmplitude float64
	limit           bool
	rng             *pcg.PCG32

	// derived from bitDepth
	fullScale float64
	limitLo   int
	limitHi   int
}

// NewQuantizer creates a new Quantizer. The default configuration is
// 16-bit, no dither, amplitude 1.0 LSB, limiting enabled, seed 0.
func NewQuantizer(opts ...Option) (*Quantizer, error) {
	cfg := defaultConfig()

	for _, opt := range opts {
		if opt == nil {
			continue
		}

		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	quant := &Quantizer{
		bitDepth:        cfg.bitDepth,
		ditherType:      cfg.ditherType,
		ditherAmplitude: cfg.ditherAmplitude,
		limit:           cfg.limit,
		rng:             pcg.NewPCG32(),
	}
	quant.rng.Seed(cfg.seed, cfg.stream)
	quant.updateDerived()

	return quant, nil
}

func (q *Quantizer) updateDerived() {
	q.fullScale = math.Exp2(float64(q.bitDepth-1)) - 1
	q.limitLo = -int(q.fullScale) - 1
	q.limitHi = int(q.fullScale)
}

// ProcessInteger quantizes input to an integer in the bit-depth range.
func (q *Quantizer) ProcessInteger(input float64) int {
	result := int(math.Round(q.fullScale*input + q.noise()))

	if q.limit {
		result = max(q.limitLo, min(q.limitHi, result))
	}

	return result
}

// ProcessSample quantizes input and returns it rescaled to [-1, +1].
func (q *Quantizer) ProcessSample(input float64) float64 {
	return float64(q.ProcessInteger(input)) / q.fullScale
}

// ProcessInPlace quantizes each sample in buf in place.
func (q *Quantizer) ProcessInPlace(buf []float64) {
	for idx, val := range buf {
		buf[idx] = q.ProcessSample(val)
	}
}

// QuantizeTo writes the integer quantization of src into dst, which must be
// at least as long as src.
func (q *Quantizer) QuantizeTo(dst []int, src []float64) error {
	if len(dst) < len(src) {
		return fmt.Errorf("dither: destination holds %d samples, need %d", len(dst), len(src))
	}
	for idx, val := range src {
		dst[idx] = q.ProcessInteger(val)
	}
	return nil
}

// noise returns one dither draw in LSB.
func (q *Quantizer) noise() float64 {
	switch q.ditherType {
	case DitherRectangular:
		return q.ditherAmplitude * (q.uniform()*2 - 1)
	case DitherTriangular:
		return q.ditherAmplitude * (q.uniform() - q.uniform())
	default:
		return 0
	}
}

// uniform returns a value in [0, 1) with 32 bits of resolution.
func (q *Quantizer) uniform() float64 {
	return float64(q.rng.Random()) / (1 << 32)
}

// BitDepth returns the target bit depth.
func (q *Quantizer) BitDepth() int { return q.bitDepth }

// DitherType returns the dither noise type.
func (q *Quantizer) DitherType() DitherType { return q.ditherType }

// DitherAmplitude returns the dither amplitude in LSB.
func (q *Quantizer) DitherAmplitude() float64 { return q.ditherAmplitude }

// Limit returns whether output limiting is enabled.
func (q *Quantizer) Limit() bool { return q.limit }

// FullScale returns the integer value that +1.0 maps to.
func (q *Quantizer) FullScale() int { return q.limitHi }
