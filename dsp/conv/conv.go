package conv

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by convolution functions.
var (
	ErrEmptyInput     = errors.New("conv: empty input")
	ErrEmptyKernel    = errors.New("conv: empty kernel")
	ErrLengthMismatch = errors.New("conv: buffer length mismatch")
	ErrInvalidMix     = errors.New("conv: wet mix must be in [0, 1]")
)

// directThreshold is the kernel length up to which direct convolution beats
// the FFT path.
const directThreshold = 64

// Direct performs time-domain linear convolution of a and b.
// The result has length len(a) + len(b) - 1.
func Direct(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}
	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	m := len(b)
	out := make([]float64, len(a)+m-1)
	scaled := make([]float64, m)
	for i, x := range a {
		if x == 0 {
			continue
		}
		vecmath.ScaleBlock(scaled, b, x)
		vecmath.AddBlockInPlace(out[i:i+m], scaled)
	}
	return out, nil
}

// Convolve performs linear convolution of a and b, using direct convolution
// for short kernels and overlap-add otherwise.
func Convolve(a, b []float64) ([]float64, error) {
	if len(a) == 0 {
		return nil, ErrEmptyInput
	}
	if len(b) == 0 {
		return nil, ErrEmptyKernel
	}

	if len(b) > len(a) {
		a, b = b, a
	}
	if len(b) <= directThreshold {
		return Direct(a, b)
	}
	return OverlapAddConvolve(a, b)
}

// Apply runs dry through the impulse response ir and mixes the result:
//
//	out = (1-wet)*dry + wet*(dry ⊛ ir)
//
// The output has the full convolution length so the reverb tail is kept.
func Apply(dry, ir []float64, wet float64) ([]float64, error) {
	if wet < 0 || wet > 1 || math.IsNaN(wet) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMix, wet)
	}

	out, err := Convolve(dry, ir)
	if err != nil {
		return nil, err
	}

	if wet == 1 {
		return out, nil
	}
	vecmath.ScaleBlockInPlace(out, wet)
	dryPart := make([]float64, len(dry))
	vecmath.ScaleBlock(dryPart, dry, 1-wet)
	vecmath.AddBlockInPlace(out[:len(dry)], dryPart)
	return out, nil
}

// nextPowerOf2 returns the next power of 2 >= n.
func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
