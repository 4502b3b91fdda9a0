package core

import "math"

const defaultEpsilon = 1e-12

// Level conventions used by the decay model. Levels are amplitude levels in
// dB (20*log10), so a decay of D dB over T seconds is the exponential rate
// ln(10^(D/20))/T per second.
const (
	// AmplitudeDBFactor is the dB factor for amplitude quantities.
	AmplitudeDBFactor = 20.0
	// PowerDBFactor is the dB factor for energy quantities.
	PowerDBFactor = 10.0

	// RT60DecayDB is the decay span that defines the reverberation time.
	RT60DecayDB = 60.0
	// EDTDecayDB is the decay span that defines the early decay time.
	EDTDecayDB = 10.0
	// EDTExtrapolation scales an EDT to its 60 dB-equivalent decay time.
	EDTExtrapolation = RT60DecayDB / EDTDecayDB
)

var (
	// Ln10 is ln(10): the exponent of one decade of amplitude.
	Ln10 = math.Ln10
	// Ln1000 is ln(10^3), the exponent of a 60 dB amplitude decay.
	Ln1000 = 3 * math.Ln10
)

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

// DBToLinear converts dB to linear amplitude (20*log10 convention).
func DBToLinear(db float64) float64 {
	return math.Pow(10, db/AmplitudeDBFactor)
}

// LinearToDB converts linear amplitude to dB (20*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearToDB(linear float64) float64 {
	if linear < 0 {
		return math.NaN()
	}

	if linear == 0 {
		return math.Inf(-1)
	}

	return AmplitudeDBFactor * math.Log10(linear)
}

// DBPowerToLinear converts dB to linear power (10*log10 convention).
func DBPowerToLinear(db float64) float64 {
	return math.Pow(10, db/PowerDBFactor)
}

// LinearPowerToDB converts linear power to dB (10*log10 convention).
// Returns -Inf for zero and NaN for negative values.
func LinearPowerToDB(power float64) float64 {
	if power < 0 {
		return math.NaN()
	}

	if power == 0 {
		return math.Inf(-1)
	}

	return PowerDBFactor * math.Log10(power)
}

// DecayRate returns the exponential amplitude rate (1/s) that drops the level
// by decayDB over seconds. It returns 0 for non-positive or non-finite input.
//
//	rate = ln(10^(decayDB/20)) / seconds
func DecayRate(decayDB, seconds float64) float64 {
	if seconds <= 0 || decayDB <= 0 || !IsFinite(seconds) || !IsFinite(decayDB) {
		return 0
	}

	return decayDB / AmplitudeDBFactor * Ln10 / seconds
}

// MsToSamples converts a duration in milliseconds to a rounded sample count.
// Counts beyond the int range saturate at math.MaxInt.
func MsToSamples(ms float64, sampleRate int) int {
	if !(ms > 0) || sampleRate <= 0 {
		return 0
	}

	n := math.Round(ms * 0.001 * float64(sampleRate))
	if n >= float64(math.MaxInt) {
		return math.MaxInt
	}

	return int(n)
}
