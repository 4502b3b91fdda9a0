package resample

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidRate indicates a non-positive sample rate.
	ErrInvalidRate = errors.New("resample: invalid sample rate")
	// ErrInvalidQuality indicates an unknown quality mode.
	ErrInvalidQuality = errors.New("resample: invalid quality")
)

// Quality controls the anti-aliasing filter.
type Quality int

const (
	// QualityFast prioritizes lower CPU usage.
	QualityFast Quality = iota
	// QualityBalanced is the default quality/performance trade-off.
	QualityBalanced
	// QualityBest prioritizes stopband attenuation and passband flatness.
	QualityBest
)

// profile holds the filter parameters of a quality mode.
type profile struct {
	tapsPerPhase int
	cutoffScale  float64
	kaiserBeta   float64
}

var profiles = map[Quality]profile{
	QualityFast:     {tapsPerPhase: 16, cutoffScale: 0.88, kaiserBeta: 5.0},
	QualityBalanced: {tapsPerPhase: 32, cutoffScale: 0.92, kaiserBeta: 7.5},
	QualityBest:     {tapsPerPhase: 64, cutoffScale: 0.96, kaiserBeta: 9.0},
}

type config struct {
	quality Quality
}

// Option configures a [Converter].
type Option func(*config) error

// WithQuality selects the anti-aliasing quality mode (default QualityBalanced).
func WithQuality(q Quality) Option {
	return func(cfg *config) error {
		if _, ok := profiles[q]; !ok {
			return fmt.Errorf("%w: %d", ErrInvalidQuality, q)
		}
		cfg.quality = q
		return nil
	}
}

// Converter changes the sample rate of impulse responses with a polyphase
// FIR. The filter delay is compensated, so sample 0 of the output is aligned
// with sample 0 of the input and the direct sound stays in place.
type Converter struct {
	up, down int
	phases   [][]float64
	delay    int // filter centre in upsampled samples
}

// New creates a converter from inRate to outRate Hz.
func New(inRate, outRate int, opts ...Option) (*Converter, error) {
	if inRate <= 0 || outRate <= 0 {
		return nil, fmt.Errorf("%w: %d -> %d Hz", ErrInvalidRate, inRate, outRate)
	}

	cfg := config{quality: QualityBalanced}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	g := gcd(inRate, outRate)
	c := &Converter{up: outRate / g, down: inRate / g}
	if c.up == 1 && c.down == 1 {
		c.phases = [][]float64{{1}}
		return c, nil
	}

	taps := design(c.up, c.down, profiles[cfg.quality])
	c.delay = (len(taps) - 1) / 2
	c.phases = make([][]float64, c.up)
	for p := range c.up {
		for i := p; i < len(taps); i += c.up {
			c.phases[p] = append(c.phases[p], taps[i])
		}
	}
	return c, nil
}

// Ratio returns the reduced up/down conversion factors.
func (c *Converter) Ratio() (up, down int) { return c.up, c.down }

// OutputLen returns the number of samples Convert produces for n inputs.
func (c *Converter) OutputLen(n int) int {
	if n <= 0 {
		return 0
	}
	return (n*c.up + c.down - 1) / c.down
}

// Convert resamples x. The input is treated as zero outside its bounds.
func (c *Converter) Convert(x []float64) []float64 {
	out := make([]float64, c.OutputLen(len(x)))
	for m := range out {
		t := m*c.down + c.delay // position in the upsampled stream
		taps := c.phases[t%c.up]
		base := t / c.up

		var y float64
		for k, h := range taps {
			i := base - k
			if i < 0 {
				break
			}
			if i < len(x) {
				y += h * x[i]
			}
		}
		out[m] = y
	}
	return out
}

// Convert resamples x from inRate to outRate Hz in one call.
func Convert(x []float64, inRate, outRate int, opts ...Option) ([]float64, error) {
	c, err := New(inRate, outRate, opts...)
	if err != nil {
		return nil, err
	}
	return c.Convert(x), nil
}

// design returns a Kaiser-windowed sinc lowpass for the upsampled rate,
// scaled to unity passband gain after decimation.
func design(up, down int, p profile) []float64 {
	n := p.tapsPerPhase * up
	fc := 0.5 / float64(max(up, down)) * p.cutoffScale
	center := 0.5 * float64(n-1)

	taps := make([]float64, n)
	var sum float64
	for i := range taps {
		t := float64(i) - center
		taps[i] = 2 * fc * sinc(2*fc*t) * kaiser(i, n, p.kaiserBeta)
		sum += taps[i]
	}

	scale := float64(up) / sum
	for i := range taps {
		taps[i] *= scale
	}
	return taps
}

func gcd(a, b int) int {
	for b != 0 {
		a, b = b, a%b
	}
	return a
}

func sinc(x float64) float64 {
	if math.Abs(x) < 1e-12 {
		return 1
	}
	pix := math.Pi * x
	return math.Sin(pix) / pix
}

func kaiser(i, n int, beta float64) float64 {
	if n <= 1 {
		return 1
	}
	t := 2*float64(i)/float64(n-1) - 1
	return i0(beta*math.Sqrt(math.Max(0, 1-t*t))) / i0(beta)
}

// i0 is the zeroth-order modified Bessel function of the first kind.
func i0(x float64) float64 {
	sum, term := 1.0, 1.0
	x2 := x * x / 4
	for k := 1; k < 64; k++ {
		term *= x2 / float64(k*k)
		sum += term
		if term < 1e-16*sum {
			break
		}
	}
	return sum
}
