package ir

import (
	"errors"
	"fmt"
	"math"

	"github.com/cwbudde/algo-storir/dsp/core"
	"github.com/cwbudde/algo-storir/dsp/signal"
)

// Errors returned by IR analysis functions.
var (
	ErrEmptyIR           = errors.New("ir: impulse response is empty")
	ErrInvalidSampleRate = errors.New("ir: sample rate must be positive")
	ErrInvalidTime       = errors.New("ir: time must be positive")
	ErrNoDecay           = errors.New("ir: insufficient decay for RT calculation")
)

// schroederFloorDB is reported where no energy remains ahead of a sample.
const schroederFloorDB = -200

// Metrics holds impulse response analysis results. Times are in seconds.
type Metrics struct {
	RT60       float64 // from T30, falling back to T20
	EDT        float64 // 0 to -10 dB slope, extrapolated to 60 dB
	T20        float64 // -5 to -25 dB slope, extrapolated to 60 dB
	T30        float64 // -5 to -35 dB slope, extrapolated to 60 dB
	C50        float64 // dB
	C80        float64 // dB
	D50        float64 // ratio 0-1
	D80        float64 // ratio 0-1
	DRR        float64 // direct-to-reverberant ratio in dB
	CenterTime float64
	Duration   float64
	PeakIndex  int
}

// Analyzer computes room acoustic metrics from impulse response data.
type Analyzer struct {
	SampleRate int
}

// NewAnalyzer creates an IR analyzer for the given sample rate in Hz.
func NewAnalyzer(sampleRate int) *Analyzer {
	return &Analyzer{SampleRate: sampleRate}
}

func (a *Analyzer) check(ir []float64) error {
	if len(ir) == 0 {
		return ErrEmptyIR
	}
	if a.SampleRate <= 0 {
		return ErrInvalidSampleRate
	}
	return nil
}

func (a *Analyzer) fs() float64 { return float64(a.SampleRate) }

// Analyze computes all metrics of ir. Energy measures are taken from the
// absolute peak onward, which for a synthesized response is the direct sound.
func (a *Analyzer) Analyze(ir []float64) (Metrics, error) {
	if err := a.check(ir); err != nil {
		return Metrics{}, err
	}

	_, peakIdx := signal.Peak(ir)
	fromPeak := ir[peakIdx:]
	schroeder := a.schroederIntegral(fromPeak)

	m := Metrics{
		PeakIndex:  peakIdx,
		Duration:   float64(len(ir)) / a.fs(),
		CenterTime: a.centerTime(fromPeak),
		C50:        a.clarity(fromPeak, 50),
		C80:        a.clarity(fromPeak, 80),
		D50:        a.definition(fromPeak, 50),
		D80:        a.definition(fromPeak, 80),
		DRR:        directToReverberant(fromPeak),
		EDT:        a.reverbTime(schroeder, 0, -core.EDTDecayDB),
		T20:        a.reverbTime(schroeder, -5, -25),
		T30:        a.reverbTime(schroeder, -5, -35),
	}

	m.RT60 = m.T30
	if m.RT60 == 0 {
		m.RT60 = m.T20
	}

	return m, nil
}

// SchroederIntegral computes the backward-integrated energy decay curve of
// ir in dB relative to the total energy:
//
//	S(t) = 10*log10( ∫_t^∞ h²(τ) dτ / ∫_0^∞ h²(τ) dτ )
func (a *Analyzer) SchroederIntegral(ir []float64) ([]float64, error) {
	if len(ir) == 0 {
		return nil, ErrEmptyIR
	}
	return a.schroederIntegral(ir), nil
}

func (a *Analyzer) schroederIntegral(ir []float64) []float64 {
	out := make([]float64, len(ir))

	var acc float64
	for i := len(ir) - 1; i >= 0; i-- {
		acc += ir[i] * ir[i]
		out[i] = acc
	}

	total := out[0]
	if total <= 0 {
		return out
	}

	for i, e := range out {
		if e <= 0 {
			out[i] = schroederFloorDB
			continue
		}
		out[i] = core.LinearPowerToDB(e / total)
	}
	return out
}

// reverbTime fits a line to the Schroeder curve between startDB and endDB and
// returns the time it takes that slope to fall 60 dB. It returns 0 when the
// curve never reaches endDB or does not decay.
func (a *Analyzer) reverbTime(schroeder []float64, startDB, endDB float64) float64 {
	first, last := -1, -1
	for i, v := range schroeder {
		if first < 0 && v <= startDB {
			first = i
		}
		if first >= 0 && v <= endDB {
			last = i
			break
		}
	}
	if first < 0 || last <= first {
		return 0
	}

	var sumX, sumY, sumXX, sumXY float64
	for i := first; i <= last; i++ {
		x := float64(i - first)
		y := schroeder[i]
		sumX += x
		sumY += y
		sumXX += x * x
		sumXY += x * y
	}

	n := float64(last - first + 1)
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0
	}

	slope := (n*sumXY - sumX*sumY) / denom * a.fs() // dB per second
	if slope >= 0 {
		return 0
	}
	return -core.RT60DecayDB / slope
}

// EDT returns the early decay time of ir: the 0 to -10 dB slope of the
// Schroeder curve, extrapolated to a 60 dB decay.
func (a *Analyzer) EDT(ir []float64) (float64, error) {
	if err := a.check(ir); err != nil {
		return 0, err
	}
	edt := a.reverbTime(a.schroederIntegral(ir), 0, -core.EDTDecayDB)
	if edt == 0 {
		return 0, ErrNoDecay
	}
	return edt, nil
}

// RT60 returns the reverberation time of ir from T30, falling back to T20.
func (a *Analyzer) RT60(ir []float64) (float64, error) {
	if err := a.check(ir); err != nil {
		return 0, err
	}

	schroeder := a.schroederIntegral(ir)
	if rt := a.reverbTime(schroeder, -5, -35); rt > 0 {
		return rt, nil
	}
	if rt := a.reverbTime(schroeder, -5, -25); rt > 0 {
		return rt, nil
	}
	return 0, ErrNoDecay
}

// Definition computes D(t), the fraction of the energy arriving before
// timeMs:
//
//	D(t) = ∫₀ᵗ h²(τ)dτ / ∫₀^∞ h²(τ)dτ
func (a *Analyzer) Definition(ir []float64, timeMs float64) (float64, error) {
	if err := a.check(ir); err != nil {
		return 0, err
	}
	if timeMs <= 0 {
		return 0, ErrInvalidTime
	}
	return a.definition(ir, timeMs), nil
}

func (a *Analyzer) definition(ir []float64, timeMs float64) float64 {
	boundary := core.MsToSamples(timeMs, a.SampleRate)
	if boundary <= 0 {
		return 0
	}
	if boundary >= len(ir) {
		return 1
	}

	total := signal.Energy(ir)
	if total <= 0 {
		return 0
	}
	return signal.Energy(ir[:boundary]) / total
}

// Clarity computes C(t), the early-to-late energy ratio at timeMs in dB:
//
//	C(t) = 10*log10( ∫₀ᵗ h²(τ)dτ / ∫ₜ^∞ h²(τ)dτ )
func (a *Analyzer) Clarity(ir []float64, timeMs float64) (float64, error) {
	if err := a.check(ir); err != nil {
		return 0, err
	}
	if timeMs <= 0 {
		return 0, ErrInvalidTime
	}
	return a.clarity(ir, timeMs), nil
}

func (a *Analyzer) clarity(ir []float64, timeMs float64) float64 {
	boundary := core.MsToSamples(timeMs, a.SampleRate)
	if boundary <= 0 {
		return math.Inf(-1)
	}
	if boundary >= len(ir) {
		return math.Inf(1)
	}

	early := signal.Energy(ir[:boundary])
	late := signal.Energy(ir[boundary:])
	switch {
	case late <= 0:
		return math.Inf(1)
	case early <= 0:
		return math.Inf(-1)
	}
	return core.LinearPowerToDB(early / late)
}

// CenterTime computes the energy centroid of ir in seconds:
//
//	Ts = ∫₀^∞ τ·h²(τ)dτ / ∫₀^∞ h²(τ)dτ
func (a *Analyzer) CenterTime(ir []float64) (float64, error) {
	if err := a.check(ir); err != nil {
		return 0, err
	}
	return a.centerTime(ir), nil
}

func (a *Analyzer) centerTime(ir []float64) float64 {
	var num, den float64
	for i, v := range ir {
		e := v * v
		num += float64(i) * e
		den += e
	}
	if den <= 0 {
		return 0
	}
	return num / den / a.fs()
}

// WindowRMS splits ir into consecutive windows of windowMs and returns the
// RMS of each full window. A trailing partial window is dropped.
func (a *Analyzer) WindowRMS(ir []float64, windowMs float64) ([]float64, error) {
	if err := a.check(ir); err != nil {
		return nil, err
	}
	if windowMs <= 0 || math.IsNaN(windowMs) {
		return nil, ErrInvalidTime
	}

	win := core.MsToSamples(windowMs, a.SampleRate)
	if win < 1 {
		return nil, fmt.Errorf("%w: window %.3g ms is shorter than one sample", ErrInvalidTime, windowMs)
	}

	out := make([]float64, 0, len(ir)/win)
	for start := 0; start+win <= len(ir); start += win {
		out = append(out, math.Sqrt(signal.Energy(ir[start:start+win])/float64(win)))
	}
	return out, nil
}

// FindImpulseStart returns the index of the first sample within 20 dB of the
// absolute peak.
func (a *Analyzer) FindImpulseStart(ir []float64) (int, error) {
	if len(ir) == 0 {
		return 0, ErrEmptyIR
	}

	peak, _ := signal.Peak(ir)
	threshold := peak * 0.1
	for i, v := range ir {
		if math.Abs(v) >= threshold {
			return i, nil
		}
	}
	return 0, nil
}

// directToReverberant treats ir[0] as the direct sound and the rest as
// reverberation.
func directToReverberant(ir []float64) float64 {
	reverb := signal.Energy(ir[1:])
	if reverb <= 0 {
		return math.Inf(1)
	}
	return core.LinearPowerToDB(ir[0] * ir[0] / reverb)
}
