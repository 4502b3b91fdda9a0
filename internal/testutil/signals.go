package testutil

import (
	"math"
	"math/rand"
)

// ExponentialDecay returns a smooth impulse response that decays 60 dB in
// rt60 seconds, durationSec long at sampleRate.
func ExponentialDecay(sampleRate int, rt60, durationSec float64) []float64 {
	out := make([]float64, int(float64(sampleRate)*durationSec))
	rate := 3 * math.Ln10 / rt60
	for i := range out {
		out[i] = math.Exp(-rate * float64(i) / float64(sampleRate))
	}
	return out
}

// DeterministicNoise generates white noise with a fixed seed for reproducibility.
func DeterministicNoise(seed int64, amplitude float64, length int) []float64 {
	out := make([]float64, length)
	rng := rand.New(rand.NewSource(seed))
	for i := range out {
		out[i] = (rng.Float64()*2 - 1) * amplitude
	}
	return out
}

// Impulse generates a unit impulse at the given position.
func Impulse(length, pos int) []float64 {
	out := make([]float64, length)
	if pos >= 0 && pos < length {
		out[pos] = 1
	}
	return out
}
