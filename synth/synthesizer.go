package synth

import (
	"fmt"
	"math"
	"time"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-storir/dsp/core"
	"github.com/cwbudde/algo-storir/dsp/signal"
)

// Request identifies one draw of a synthesis run.
type Request struct {
	Params Params
	Index  int
	Seed   uint64
}

// Buffer is one synthesized impulse response. The caller owns Samples.
type Buffer struct {
	Index      int
	Seed       uint64
	SampleRate int
	Samples    []float64

	Truncated        bool    // tail cut by the max-duration safeguard
	Silent           bool    // all-zero output, left unnormalized
	EarlyRateClamped bool    // EDT slower than RT60, early rate raised
	Thinned          bool    // reflections removed to reach the target DRR
	DRR              float64 // direct-to-reverberant ratio in dB
}

// Duration returns the length of the buffer in time.
func (b Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// Synthesizer renders impulse responses for one parameter set. The envelope
// and segment layout are computed once; Synthesize is safe for concurrent
// use because each call owns its noise source.
type Synthesizer struct {
	params Params
	cfg    config
	env    *Envelope

	gapLen    int // samples [0, gapLen) are the gap
	earlyLen  int // samples [gapLen, gapLen+earlyLen) are early reflections
	tailLen   int
	truncated bool
}

// NewSynthesizer validates p and prepares the shared envelope.
func NewSynthesizer(p Params, opts ...Option) (*Synthesizer, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	// The gap and early region are never truncated, so they must fit.
	limit := cfg.maxSamples(p.SampleRate)
	if gap, early := p.GapSamples(), p.EarlySamples(); gap > limit || early > limit-gap {
		return nil, fmt.Errorf("%w: itdg + er duration exceed the max duration %v",
			ErrInvalidParameter, cfg.maxDuration)
	}

	env, err := NewEnvelope(p)
	if err != nil {
		return nil, err
	}

	s := &Synthesizer{
		params:   p,
		cfg:      cfg,
		env:      env,
		gapLen:   p.GapSamples(),
		earlyLen: p.EarlySamples(),
	}
	s.layoutTail()

	return s, nil
}

// layoutTail sizes the tail: it runs while the envelope stays at or above
// the floor, capped so the whole response fits the max duration.
func (s *Synthesizer) layoutTail() {
	sr := float64(s.params.SampleRate)
	floor := core.DBToLinear(s.cfg.floorDB)

	late, _ := s.env.Region(RegionLate)
	tail := 0.0
	if late.Level >= floor && late.Rate > 0 {
		seconds := math.Log(late.Level/floor) / late.Rate
		tail = math.Floor(seconds*sr) + 1
	}

	maxTail := s.cfg.maxSamples(s.params.SampleRate) - s.gapLen - s.earlyLen
	if tail > float64(maxTail) {
		s.tailLen = maxTail
		s.truncated = true
		return
	}
	s.tailLen = int(tail)
}

// Params returns the parameter set.
func (s *Synthesizer) Params() Params { return s.params }

// Envelope returns the shared decay envelope.
func (s *Synthesizer) Envelope() *Envelope { return s.env }

// Distribution returns the configured noise distribution.
func (s *Synthesizer) Distribution() Distribution { return s.cfg.dist }

// Len returns the number of samples of every rendered response.
func (s *Synthesizer) Len() int {
	return max(1, s.gapLen+s.earlyLen+s.tailLen)
}

// Truncated reports whether the tail is cut by the max-duration safeguard.
func (s *Synthesizer) Truncated() bool { return s.truncated }

// onset returns the first sample carrying reflections. Index 0 always holds
// the direct sound.
func (s *Synthesizer) onset() int {
	return max(1, s.gapLen)
}

// Request builds the request for draw index under baseSeed.
func (s *Synthesizer) Request(index int, baseSeed uint64) Request {
	return Request{Params: s.params, Index: index, Seed: DrawSeed(baseSeed, index)}
}

// Synthesize renders the raw, unnormalized response for req.
//
// Layout: index 0 is the direct sound, samples 1..gap-1 are exactly zero and
// every later sample is noise scaled by the envelope. The direct sound is set
// to the largest absolute amplitude in the buffer (at least 1), so it is the
// loudest arrival. Noise is only drawn for reflection samples.
func (s *Synthesizer) Synthesize(req Request) (Buffer, error) {
	if req.Params != s.params {
		return Buffer{}, fmt.Errorf("%w: request parameters do not match the synthesizer", ErrInvalidParameter)
	}
	if req.Index < 0 || req.Index >= s.params.NumImpulses {
		return Buffer{}, fmt.Errorf("%w: draw index %d outside [0, %d)", ErrInvalidParameter, req.Index, s.params.NumImpulses)
	}

	n := s.Len()
	out := make([]float64, n)
	onset := s.onset()
	src := NewNoise(req.Seed, uint64(req.Index), s.cfg.dist)

	if onset < n {
		reflections := out[onset:]
		s.env.Fill(reflections, onset, s.params.SampleRate)

		excitation := make([]float64, len(reflections))
		src.Fill(excitation)
		vecmath.MulBlockInPlace(reflections, excitation)
	}

	peak, _ := signal.Peak(out[onset:])
	out[0] = math.Max(s.env.At(0), peak)

	buf := Buffer{
		Index:            req.Index,
		Seed:             req.Seed,
		SampleRate:       s.params.SampleRate,
		Samples:          out,
		Truncated:        s.truncated,
		EarlyRateClamped: s.env.EarlyRateClamped(),
	}

	if s.params.Variant == VariantImproved {
		earlyEnd := min(n, max(onset, s.gapLen+s.earlyLen))
		buf.DRR, buf.Thinned = thinReflections(out, onset, earlyEnd, s.params.DRR, src)
	} else {
		buf.DRR = directToReverberant(out)
	}

	return buf, nil
}

// Generate synthesizes and assembles draw index under baseSeed.
func (s *Synthesizer) Generate(index int, baseSeed uint64) (Buffer, error) {
	buf, err := s.Synthesize(s.Request(index, baseSeed))
	if err != nil {
		return Buffer{}, err
	}
	return Assemble(buf)
}
