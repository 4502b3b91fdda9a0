package synth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/cwbudde/algo-storir/dsp/core"
)

// ErrInvalidParameter reports acoustic parameters that cannot be synthesized.
var ErrInvalidParameter = errors.New("synth: invalid parameter")

// Variant selects the envelope and noise recipe.
type Variant int

const (
	// VariantSimple renders enveloped noise with an ITDG gap.
	VariantSimple Variant = iota
	// VariantImproved additionally thins reflections towards a target
	// direct-to-reverberant ratio.
	VariantImproved

	variantCount // sentinel for validation
)

var variantNames = [variantCount]string{"simple", "improved"}

// String returns the name of the variant.
func (v Variant) String() string {
	if v.Valid() {
		return variantNames[v]
	}
	return fmt.Sprintf("Variant(%d)", v)
}

// Valid reports whether v is a known variant.
func (v Variant) Valid() bool {
	return v >= 0 && v < variantCount
}

// ParseVariant resolves a variant name (case-insensitive).
func ParseVariant(name string) (Variant, error) {
	for i, n := range variantNames {
		if strings.EqualFold(n, name) {
			return Variant(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown variant %q", ErrInvalidParameter, name)
}

// MarshalText implements encoding.TextMarshaler.
func (v Variant) MarshalText() ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("%w: unknown variant %d", ErrInvalidParameter, int(v))
	}
	return []byte(v.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (v *Variant) UnmarshalText(text []byte) error {
	parsed, err := ParseVariant(string(text))
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MaxLeadTime bounds ITDG and the early-reflection duration, in ms.
const MaxLeadTime = 60_000.0

// Params holds the acoustic parameters of a synthesis run.
// Durations are in milliseconds.
type Params struct {
	SampleRate  int     // Hz
	RT60        float64 // time for a 60 dB decay
	EDT         float64 // time for the first 10 dB of decay
	ITDG        float64 // gap between direct sound and first reflection
	ERDuration  float64 // length of the early-reflection segment
	NumImpulses int     // independent realizations to produce
	Variant     Variant
	DRR         float64 // target direct-to-reverberant ratio in dB (VariantImproved)
}

// DefaultParams returns a medium-sized room at 44.1 kHz.
func DefaultParams() Params {
	return Params{
		SampleRate:  44100,
		RT60:        500,
		EDT:         50,
		ITDG:        3,
		ERDuration:  80,
		NumImpulses: 5,
		Variant:     VariantSimple,
		DRR:         -1,
	}
}

// Validate reports every invalid field. The returned error matches
// ErrInvalidParameter with errors.Is.
func (p Params) Validate() error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalidParameter}, args...)...))
	}

	if p.SampleRate <= 0 {
		bad("sample rate must be > 0: %d", p.SampleRate)
	}
	if !(p.RT60 > 0) || !core.IsFinite(p.RT60) {
		bad("rt60 must be > 0 and finite: %v", p.RT60)
	}
	if !(p.EDT > 0) || !core.IsFinite(p.EDT) {
		bad("edt must be > 0 and finite: %v", p.EDT)
	}
	if !(p.ITDG >= 0 && p.ITDG <= MaxLeadTime) {
		bad("itdg must be in [0, %v] ms: %v", MaxLeadTime, p.ITDG)
	}
	if !(p.ERDuration >= 0 && p.ERDuration <= MaxLeadTime) {
		bad("er duration must be in [0, %v] ms: %v", MaxLeadTime, p.ERDuration)
	}
	if p.NumImpulses <= 0 {
		bad("number of impulses must be > 0: %d", p.NumImpulses)
	}
	if !p.Variant.Valid() {
		bad("unknown variant: %d", int(p.Variant))
	}
	if p.Variant == VariantImproved && !core.IsFinite(p.DRR) {
		bad("drr must be finite: %v", p.DRR)
	}

	return errors.Join(errs...)
}

// GapSamples returns the ITDG length in samples.
func (p Params) GapSamples() int {
	return core.MsToSamples(p.ITDG, p.SampleRate)
}

// EarlySamples returns the early-reflection segment length in samples.
func (p Params) EarlySamples() int {
	return core.MsToSamples(p.ERDuration, p.SampleRate)
}
