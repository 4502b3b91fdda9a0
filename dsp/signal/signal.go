// Package signal provides level helpers for rendered sample buffers:
// peak and energy measurement and peak normalization.
package signal

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-vecmath"
)

// Errors returned by signal helpers.
var (
	ErrEmpty  = errors.New("signal: input must not be empty")
	ErrSilent = errors.New("signal: input is silent")
)

// Peak returns the largest absolute sample value and its index.
// It returns (0, -1) for an empty slice. A NaN sample is returned as the
// peak; vecmath.MaxAbs skips NaN and reports no position, so it is not used.
func Peak(data []float64) (float64, int) {
	maxAbs := 0.0
	idx := -1
	for i, v := range data {
		av := math.Abs(v)
		if math.IsNaN(av) {
			return av, i
		}
		if idx < 0 || av > maxAbs {
			maxAbs = av
			idx = i
		}
	}
	return maxAbs, idx
}

// Energy returns the sum of squared samples.
func Energy(data []float64) float64 {
	return vecmath.DotProduct(data, data)
}

// Normalize scales data in place so its absolute peak equals targetPeak and
// returns the applied gain.
//
// A silent input is left untouched and reported with ErrSilent; callers that
// treat silence as a recoverable condition can test for it with errors.Is.
func Normalize(data []float64, targetPeak float64) (float64, error) {
	if targetPeak < 0 || math.IsNaN(targetPeak) || math.IsInf(targetPeak, 0) {
		return 0, fmt.Errorf("signal: normalize target peak must be >= 0 and finite: %f", targetPeak)
	}
	if len(data) == 0 {
		return 0, ErrEmpty
	}

	peak, idx := Peak(data)
	if peak == 0 {
		return 0, ErrSilent
	}
	if math.IsInf(peak, 0) || math.IsNaN(peak) {
		return 0, fmt.Errorf("signal: normalize input has non-finite peak: %f", peak)
	}

	gain := targetPeak / peak
	vecmath.ScaleBlockInPlace(data, gain)
	// Rounding of the gain can leave the peak an ulp off target.
	data[idx] = math.Copysign(targetPeak, data[idx])
	return gain, nil
}
