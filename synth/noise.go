package synth

import (
	"fmt"
	"iter"
	"math"
	"strings"

	"github.com/MichaelTJones/pcg"
)

// Distribution selects the probability distribution of the excitation noise.
// Every distribution has zero mean and unit variance.
type Distribution int

const (
	// Gaussian draws normally distributed samples.
	Gaussian Distribution = iota
	// Uniform draws samples uniformly from [-sqrt(3), sqrt(3)).
	Uniform

	distributionCount // sentinel for validation
)

var distributionNames = [distributionCount]string{"gaussian", "uniform"}

// String returns the name of the distribution.
func (d Distribution) String() string {
	if d.Valid() {
		return distributionNames[d]
	}
	return fmt.Sprintf("Distribution(%d)", d)
}

// Valid reports whether d is a known distribution.
func (d Distribution) Valid() bool {
	return d >= 0 && d < distributionCount
}

// ParseDistribution resolves a distribution name (case-insensitive).
func ParseDistribution(name string) (Distribution, error) {
	for i, n := range distributionNames {
		if strings.EqualFold(n, name) {
			return Distribution(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown noise distribution %q", ErrInvalidParameter, name)
}

// splitmixGamma is the SplitMix64 golden-ratio increment.
const splitmixGamma = 0x9e3779b97f4a7c15

// DrawSeed derives the seed of draw index from a base seed. Neighbouring
// indices map to unrelated seeds.
func DrawSeed(base uint64, index int) uint64 {
	z := base + uint64(index)*splitmixGamma + splitmixGamma
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Noise is a seeded stochastic excitation source. A Noise is owned by a
// single draw and is not safe for concurrent use.
type Noise struct {
	rng      *pcg.PCG32
	dist     Distribution
	spare    float64
	hasSpare bool
}

// NewNoise returns a source producing the sequence identified by seed and
// stream. Equal arguments yield bit-identical sequences; distinct streams are
// independent PCG sequences even for equal seeds.
func NewNoise(seed, stream uint64, dist Distribution) *Noise {
	rng := pcg.NewPCG32()
	rng.Seed(seed, stream)
	return &Noise{rng: rng, dist: dist}
}

// Next returns the next noise sample.
func (n *Noise) Next() float64 {
	switch n.dist {
	case Uniform:
		return (2*n.unit() - 1) * math.Sqrt(3)
	default:
		return n.gaussian()
	}
}

// Fill overwrites dst with the next len(dst) samples.
func (n *Noise) Fill(dst []float64) {
	for i := range dst {
		dst[i] = n.Next()
	}
}

// Seq yields the next count samples lazily. The sequence advances the
// source; it cannot be replayed without creating a new Noise.
func (n *Noise) Seq(count int) iter.Seq[float64] {
	return func(yield func(float64) bool) {
		for range count {
			if !yield(n.Next()) {
				return
			}
		}
	}
}

// Intn returns a uniform integer in [0, k) from the same stream.
// It returns 0 for k <= 0.
func (n *Noise) Intn(k int) int {
	if k <= 1 {
		return 0
	}
	return int(n.rng.Bounded(uint32(k)))
}

// unit returns a uniform value in [0, 1) with 53 bits of precision.
func (n *Noise) unit() float64 {
	hi := uint64(n.rng.Random()) >> 5 // 27 bits
	lo := uint64(n.rng.Random()) >> 6 // 26 bits
	return float64(hi<<26|lo) / (1 << 53)
}

// gaussian uses the Marsaglia polar method, caching the second variate.
func (n *Noise) gaussian() float64 {
	if n.hasSpare {
		n.hasSpare = false
		return n.spare
	}
	for {
		u := 2*n.unit() - 1
		v := 2*n.unit() - 1
		s := u*u + v*v
		if s == 0 || s >= 1 {
			continue
		}
		m := math.Sqrt(-2 * math.Log(s) / s)
		n.spare = v * m
		n.hasSpare = true
		return u * m
	}
}
