package synth

import (
	"fmt"
	"math"

	"github.com/cwbudde/algo-storir/dsp/core"
)

// RegionKind tags a segment of the decay envelope.
type RegionKind int

const (
	// RegionGap is the initial time delay gap. The level is held at 1.
	RegionGap RegionKind = iota
	// RegionEarly is the early-reflection segment decaying at the EDT rate.
	RegionEarly
	// RegionLate is the reverberant tail decaying at the RT60 rate.
	RegionLate
)

// String returns the name of the region kind.
func (k RegionKind) String() string {
	switch k {
	case RegionGap:
		return "gap"
	case RegionEarly:
		return "early"
	case RegionLate:
		return "late"
	default:
		return fmt.Sprintf("RegionKind(%d)", int(k))
	}
}

// Region is one exponential piece of the envelope, valid on [Start, End).
// Times are in seconds; the late region ends at +Inf.
type Region struct {
	Kind  RegionKind
	Start float64
	End   float64
	Level float64 // linear amplitude at Start
	Rate  float64 // exponential decay rate in 1/s, never negative
}

// At returns the region's amplitude at time t. It does not check that t lies
// inside the region.
func (r Region) At(t float64) float64 {
	if r.Rate == 0 {
		return r.Level
	}
	return r.Level * math.Exp(-r.Rate*(t-r.Start))
}

// EndLevel returns the amplitude the region reaches at End.
func (r Region) EndLevel() float64 {
	if math.IsInf(r.End, 1) {
		return 0
	}
	return r.At(r.End)
}

// Contains reports whether t lies in [Start, End).
func (r Region) Contains(t float64) bool {
	return t >= r.Start && t < r.End
}

// Envelope is the piecewise exponential energy-decay curve of a parameter
// set, expressed as a linear amplitude scale in [0, 1]. It is immutable and
// safe for concurrent use.
type Envelope struct {
	regions      []Region
	earlyRate    float64
	lateRate     float64
	earlyClamped bool
}

// NewEnvelope builds the envelope for p. Region boundaries are rounded to
// the sample grid of p.SampleRate so rendered segments line up with them.
func NewEnvelope(p Params) (*Envelope, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	sr := float64(p.SampleRate)
	gapEnd := float64(p.GapSamples()) / sr
	earlyEnd := gapEnd + float64(p.EarlySamples())/sr

	// EDT covers the first 10 dB; its 60 dB equivalent sets the early rate.
	earlyRate := core.DecayRate(core.RT60DecayDB, p.EDT*0.001*core.EDTExtrapolation)
	lateRate := core.DecayRate(core.RT60DecayDB, p.RT60*0.001)

	e := &Envelope{earlyRate: earlyRate, lateRate: lateRate}
	if earlyRate < lateRate {
		// Early decay slower than the tail: hold the early segment to the
		// tail rate so the early window is never shallower than the tail.
		e.earlyRate = lateRate
		e.earlyClamped = true
	}

	level := 1.0
	if gapEnd > 0 {
		e.regions = append(e.regions, Region{Kind: RegionGap, Start: 0, End: gapEnd, Level: level})
	}
	if earlyEnd > gapEnd {
		early := Region{Kind: RegionEarly, Start: gapEnd, End: earlyEnd, Level: level, Rate: e.earlyRate}
		e.regions = append(e.regions, early)
		level = early.EndLevel()
	}
	e.regions = append(e.regions, Region{
		Kind:  RegionLate,
		Start: earlyEnd,
		End:   math.Inf(1),
		Level: level,
		Rate:  lateRate,
	})

	return e, nil
}

// At returns the amplitude scale at time t in seconds. Times before zero
// return 1.
func (e *Envelope) At(t float64) float64 {
	if t < 0 {
		return 1
	}
	for _, r := range e.regions {
		if r.Contains(t) {
			return r.At(t)
		}
	}
	// Unreachable for t >= 0: the late region is unbounded.
	return 0
}

// Regions returns a copy of the non-empty regions in time order.
func (e *Envelope) Regions() []Region {
	out := make([]Region, len(e.regions))
	copy(out, e.regions)
	return out
}

// Region returns the region of the given kind, if present.
func (e *Envelope) Region(kind RegionKind) (Region, bool) {
	for _, r := range e.regions {
		if r.Kind == kind {
			return r, true
		}
	}
	return Region{}, false
}

// LateStart returns the time in seconds at which the tail begins.
func (e *Envelope) LateStart() float64 {
	return e.regions[len(e.regions)-1].Start
}

// EarlyRate returns the decay rate applied to the early segment.
func (e *Envelope) EarlyRate() float64 { return e.earlyRate }

// LateRate returns the decay rate applied to the tail.
func (e *Envelope) LateRate() float64 { return e.lateRate }

// EarlyRateClamped reports whether the EDT-derived rate was slower than the
// RT60-derived rate and was raised to it.
func (e *Envelope) EarlyRateClamped() bool { return e.earlyClamped }

// TimeToLevel returns the earliest time in seconds at which the envelope is
// at or below level. Levels at or above 1 return 0 and non-positive levels
// return +Inf.
func (e *Envelope) TimeToLevel(level float64) float64 {
	if level >= 1 {
		return 0
	}
	if level <= 0 {
		return math.Inf(1)
	}
	for _, r := range e.regions {
		if r.Level <= level {
			return r.Start
		}
		if r.Rate == 0 {
			continue
		}
		if math.IsInf(r.End, 1) || r.EndLevel() <= level {
			return r.Start + math.Log(r.Level/level)/r.Rate
		}
	}
	return math.Inf(1)
}

// Fill writes the envelope sampled at (offset+i)/sampleRate into dst.
func (e *Envelope) Fill(dst []float64, offset, sampleRate int) {
	if sampleRate <= 0 {
		return
	}
	sr := float64(sampleRate)
	ri := 0
	for i := range dst {
		t := float64(offset+i) / sr
		for ri < len(e.regions)-1 && t >= e.regions[ri].End {
			ri++
		}
		r := e.regions[ri]
		if t < r.Start {
			dst[i] = 1
			continue
		}
		dst[i] = r.At(t)
	}
}
