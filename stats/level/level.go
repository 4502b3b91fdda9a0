// Package level computes level and distribution statistics of a signal:
// peak, RMS and crest factor in dBFS, plus the first four moments. The
// moments describe the excitation noise of a synthesized response.
package level

import (
	"math"

	"github.com/cwbudde/algo-storir/dsp/core"
)

// Stats holds time-domain signal statistics. Levels are in dB relative to
// full scale and are -Inf for a silent signal.
type Stats struct {
	Length        int
	DC            float64 // mean
	RMS           float64
	RMSdB         float64
	Peak          float64
	PeakPos       int
	PeakdB        float64
	CrestdB       float64 // peak over RMS, 0 for silence
	ZeroCrossings int
	Variance      float64
	Skewness      float64
	Kurtosis      float64 // excess kurtosis, 0 for Gaussian noise
}

// Calculate computes all statistics in one pass. Moments use Welford's
// online update.
func Calculate(signal []float64) Stats {
	s := Stats{
		Length: len(signal),
		RMSdB:  math.Inf(-1),
		PeakdB: math.Inf(-1),
	}
	if len(signal) == 0 {
		return s
	}

	var (
		w     welford
		sumSq float64
	)
	for i, x := range signal {
		w.add(x)
		sumSq += x * x

		if a := math.Abs(x); a > s.Peak {
			s.Peak, s.PeakPos = a, i
		}
		if i > 0 && signal[i-1]*x < 0 {
			s.ZeroCrossings++
		}
	}

	s.DC, s.Variance, s.Skewness, s.Kurtosis = w.moments()
	s.RMS = math.Sqrt(sumSq / float64(len(signal)))
	s.RMSdB = core.LinearToDB(s.RMS)
	s.PeakdB = core.LinearToDB(s.Peak)
	if s.RMS > 0 {
		s.CrestdB = core.LinearToDB(s.Peak / s.RMS)
	}
	return s
}

// Moments returns the mean, population variance, skewness and excess
// kurtosis of the signal.
func Moments(signal []float64) (mean, variance, skewness, kurtosis float64) {
	var w welford
	for _, x := range signal {
		w.add(x)
	}
	return w.moments()
}

// RMS returns the root-mean-square of the signal.
func RMS(signal []float64) float64 {
	if len(signal) == 0 {
		return 0
	}
	var sumSq float64
	for _, x := range signal {
		sumSq += x * x
	}
	return math.Sqrt(sumSq / float64(len(signal)))
}

type welford struct {
	n          int
	mean       float64
	m2, m3, m4 float64
}

func (w *welford) add(x float64) {
	prev := float64(w.n)
	w.n++
	n := float64(w.n)

	delta := x - w.mean
	deltaN := delta / n
	deltaN2 := deltaN * deltaN
	term1 := delta * deltaN * prev

	// M4 must be updated before M3, and M3 before M2.
	w.m4 += term1*deltaN2*(n*n-3*n+3) + 6*deltaN2*w.m2 - 4*deltaN*w.m3
	w.m3 += term1*deltaN*(n-2) - 3*deltaN*w.m2
	w.m2 += term1
	w.mean += deltaN
}

func (w *welford) moments() (mean, variance, skewness, kurtosis float64) {
	if w.n == 0 {
		return 0, 0, 0, 0
	}
	n := float64(w.n)
	variance = w.m2 / n
	if variance > 0 {
		skewness = (w.m3 / n) / (variance * math.Sqrt(variance))
		kurtosis = (w.m4/n)/(variance*variance) - 3
	}
	return w.mean, variance, skewness, kurtosis
}
