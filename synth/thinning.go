package synth

import (
	"math"

	"github.com/cwbudde/algo-storir/dsp/core"
	"github.com/cwbudde/algo-storir/dsp/signal"
)

const (
	drrToleranceDB    = 0.5
	earlyThinFraction = 1.0 / 8
	lateThinFraction  = 1.0 / 10
)

// directToReverberant returns 10*log10(E_direct/E_reverb) where the direct
// sound is samples[0] and everything after it is reverberant.
func directToReverberant(samples []float64) float64 {
	if len(samples) == 0 {
		return math.Inf(-1)
	}
	direct := samples[0] * samples[0]
	reverb := signal.Energy(samples[1:])
	if reverb == 0 {
		return math.Inf(1)
	}
	return core.LinearPowerToDB(direct / reverb)
}

// thinReflections zeroes random reflections until the direct-to-reverberant
// ratio reaches target within the tolerance, or until a pass no longer
// changes it. Each pass removes a fraction of the remaining non-zero samples
// of the early segment [earlyStart, earlyEnd) and of the tail after it.
// Energy can only be removed, so a ratio already above the window is kept.
func thinReflections(samples []float64, earlyStart, earlyEnd int, target float64, rng *Noise) (float64, bool) {
	current := directToReverberant(samples)
	if current > target+drrToleranceDB {
		return current, false
	}

	thinned := false
	for current < target-drrToleranceDB {
		removed := thinOut(samples[earlyStart:earlyEnd], earlyThinFraction, rng)
		removed += thinOut(samples[earlyEnd:], lateThinFraction, rng)
		if removed == 0 {
			break
		}
		thinned = true

		previous := current
		current = directToReverberant(samples)
		if math.Abs(previous-current) < 1e-12 {
			break
		}
	}

	return current, thinned
}

// thinOut zeroes round(fraction*k) of the k non-zero samples of seg, chosen
// uniformly without replacement, and returns how many it zeroed.
func thinOut(seg []float64, fraction float64, rng *Noise) int {
	live := make([]int, 0, len(seg))
	for i, v := range seg {
		if v != 0 {
			live = append(live, i)
		}
	}

	k := int(math.Round(float64(len(live)) * fraction))
	for i := range k {
		j := i + rng.Intn(len(live)-i)
		live[i], live[j] = live[j], live[i]
		seg[live[i]] = 0
	}
	return k
}
