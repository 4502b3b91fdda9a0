package synth

import (
	"math"
	"testing"

	"github.com/cwbudde/algo-storir/dsp/core"
)

func envelopeCases() []struct {
	name string
	p    Params
} {
	base := DefaultParams()
	noGap := base
	noGap.ITDG = 0
	noEarly := base
	noEarly.ERDuration = 0
	bare := base
	bare.ITDG, bare.ERDuration = 0, 0
	slowEDT := base
	slowEDT.EDT = 400 // 60 dB equivalent 2.4 s, slower than RT60
	longRoom := base
	longRoom.RT60, longRoom.EDT, longRoom.ITDG, longRoom.ERDuration = 2500, 300, 25, 150
	lowRate := base
	lowRate.SampleRate = 8000

	return []struct {
		name string
		p    Params
	}{
		{"default", base},
		{"no gap", noGap},
		{"no early", noEarly},
		{"late only", bare},
		{"slow edt", slowEDT},
		{"long room", longRoom},
		{"low rate", lowRate},
	}
}

func TestEnvelopeStartsAtUnity(t *testing.T) {
	for _, tc := range envelopeCases() {
		t.Run(tc.name, func(t *testing.T) {
			env, err := NewEnvelope(tc.p)
			if err != nil {
				t.Fatal(err)
			}
			if got := env.At(0); got != 1 {
				t.Fatalf("At(0) = %v, want 1", got)
			}
		})
	}
}

func TestEnvelopeNonIncreasing(t *testing.T) {
	for _, tc := range envelopeCases() {
		t.Run(tc.name, func(t *testing.T) {
			env, err := NewEnvelope(tc.p)
			if err != nil {
				t.Fatal(err)
			}

			n := int(3 * tc.p.RT60 * 0.001 * float64(tc.p.SampleRate))
			samples := make([]float64, n)
			env.Fill(samples, 0, tc.p.SampleRate)
			for i := 1; i < n; i++ {
				if samples[i] > samples[i-1] {
					t.Fatalf("envelope increases at sample %d: %v > %v", i, samples[i], samples[i-1])
				}
				if samples[i] < 0 {
					t.Fatalf("envelope negative at sample %d: %v", i, samples[i])
				}
			}
		})
	}
}

func TestEnvelopeContinuity(t *testing.T) {
	const eps = 1e-12
	for _, tc := range envelopeCases() {
		t.Run(tc.name, func(t *testing.T) {
			env, err := NewEnvelope(tc.p)
			if err != nil {
				t.Fatal(err)
			}

			regions := env.Regions()
			for i := 1; i < len(regions); i++ {
				prev, next := regions[i-1], regions[i]
				if prev.End != next.Start {
					t.Fatalf("%s ends at %v but %s starts at %v", prev.Kind, prev.End, next.Kind, next.Start)
				}
				if diff := math.Abs(prev.EndLevel() - next.Level); diff > eps {
					t.Fatalf("level jumps by %v at %s/%s boundary", diff, prev.Kind, next.Kind)
				}
				// Evaluate the public curve just around the boundary.
				left := env.At(math.Nextafter(next.Start, 0))
				right := env.At(next.Start)
				if math.Abs(left-right) > 1e-9 {
					t.Fatalf("At() discontinuous at %v: %v vs %v", next.Start, left, right)
				}
			}
		})
	}
}

func TestEnvelopeRegionLayout(t *testing.T) {
	p := DefaultParams()
	p.ITDG, p.ERDuration = 4, 100
	env, err := NewEnvelope(p)
	if err != nil {
		t.Fatal(err)
	}

	regions := env.Regions()
	if len(regions) != 3 {
		t.Fatalf("regions = %d, want 3", len(regions))
	}
	kinds := []RegionKind{RegionGap, RegionEarly, RegionLate}
	for i, r := range regions {
		if r.Kind != kinds[i] {
			t.Fatalf("region %d kind = %s, want %s", i, r.Kind, kinds[i])
		}
	}

	gap := regions[0]
	if gap.Rate != 0 || gap.Level != 1 {
		t.Fatalf("gap = %+v, want flat unity", gap)
	}
	if want := 176.0 / 44100; gap.End != want {
		t.Fatalf("gap end = %v, want %v", gap.End, want)
	}
	if !math.IsInf(regions[2].End, 1) {
		t.Fatalf("late region must be unbounded, ends at %v", regions[2].End)
	}

	noGap := p
	noGap.ITDG = 0
	env, err = NewEnvelope(noGap)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := env.Region(RegionGap); ok {
		t.Fatal("zero itdg must not produce a gap region")
	}
	if r, _ := env.Region(RegionEarly); r.Start != 0 {
		t.Fatalf("early region starts at %v, want 0", r.Start)
	}
}

func TestEnvelopeRates(t *testing.T) {
	p := DefaultParams()
	p.RT60, p.EDT = 500, 50
	env, err := NewEnvelope(p)
	if err != nil {
		t.Fatal(err)
	}

	// 10 dB per EDT in the early segment.
	early, _ := env.Region(RegionEarly)
	drop := core.LinearToDB(early.At(early.Start + p.EDT*0.001))
	if !core.NearlyEqual(drop, -core.EDTDecayDB, 1e-9) {
		t.Fatalf("early drop over EDT = %v dB, want -10 dB", drop)
	}

	// 60 dB per RT60 in the tail, relative to its anchor.
	late, _ := env.Region(RegionLate)
	rel := core.LinearToDB(late.At(late.Start+p.RT60*0.001) / late.Level)
	if !core.NearlyEqual(rel, -core.RT60DecayDB, 1e-9) {
		t.Fatalf("late drop over RT60 = %v dB, want -60 dB", rel)
	}

	if env.EarlyRateClamped() {
		t.Fatal("EDT 50 ms is steeper than RT60 500 ms and must not be clamped")
	}
}

// The early slope is the EDT slope extrapolated to 60 dB, in the same
// amplitude convention as the RT60 slope. One decade over 6·EDT instead
// would decay slower than the tail for a typical 500/50 room.
func TestEnvelopeEarlyRateConvention(t *testing.T) {
	p := DefaultParams()
	p.RT60, p.EDT = 500, 50
	env, err := NewEnvelope(p)
	if err != nil {
		t.Fatal(err)
	}
	early, _ := env.Region(RegionEarly)
	late, _ := env.Region(RegionLate)

	edt60 := p.EDT * 0.001 * core.EDTExtrapolation
	if want := core.Ln1000 / edt60; !core.NearlyEqual(early.Rate, want, 1e-12) {
		t.Fatalf("early rate = %v/s, want ln(1000)/(6·EDT) = %v/s", early.Rate, want)
	}
	if want := core.Ln1000 / (p.RT60 * 0.001); !core.NearlyEqual(late.Rate, want, 1e-12) {
		t.Fatalf("late rate = %v/s, want ln(1000)/RT60 = %v/s", late.Rate, want)
	}
	if decade := core.Ln10 / edt60; decade >= late.Rate {
		t.Fatalf("one decade over 6·EDT = %v/s, expected shallower than the tail %v/s", decade, late.Rate)
	}
	if early.Rate <= late.Rate || env.EarlyRateClamped() {
		t.Fatalf("early rate %v/s must be steeper than the tail %v/s without clamping", early.Rate, late.Rate)
	}
}

func TestEnvelopeClampsSlowEDT(t *testing.T) {
	p := DefaultParams()
	p.RT60, p.EDT = 300, 200 // 60 dB equivalent 1.2 s
	env, err := NewEnvelope(p)
	if err != nil {
		t.Fatal(err)
	}
	if !env.EarlyRateClamped() {
		t.Fatal("expected clamped early rate")
	}
	if env.EarlyRate() != env.LateRate() {
		t.Fatalf("early rate %v, want late rate %v", env.EarlyRate(), env.LateRate())
	}
}

func TestEnvelopeTimeToLevel(t *testing.T) {
	for _, tc := range envelopeCases() {
		t.Run(tc.name, func(t *testing.T) {
			env, err := NewEnvelope(tc.p)
			if err != nil {
				t.Fatal(err)
			}
			for _, db := range []float64{-3, -20, -60, -80} {
				level := core.DBToLinear(db)
				at := env.TimeToLevel(level)
				if got := env.At(at); math.Abs(got-level) > 1e-9*math.Max(1, level) && got > level {
					t.Fatalf("At(TimeToLevel(%v dB)) = %v, want <= %v", db, got, level)
				}
				if at > 0 && env.At(at*(1-1e-9)) < level*(1-1e-6) {
					t.Fatalf("TimeToLevel(%v dB) = %v is not the earliest crossing", db, at)
				}
			}
			if env.TimeToLevel(1) != 0 {
				t.Fatal("TimeToLevel(1) must be 0")
			}
			if !math.IsInf(env.TimeToLevel(0), 1) {
				t.Fatal("TimeToLevel(0) must be +Inf")
			}
		})
	}
}

func TestNewEnvelopeInvalid(t *testing.T) {
	p := DefaultParams()
	p.RT60 = 0
	if _, err := NewEnvelope(p); err == nil {
		t.Fatal("expected error for rt60 = 0")
	}
}
