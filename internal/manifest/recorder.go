package manifest

import (
	"slices"
	"sync"
	"time"

	"github.com/cwbudde/algo-storir/batch"
	"github.com/cwbudde/algo-storir/measure/ir"
	"github.com/cwbudde/algo-storir/synth"
)

// Recorder collects draw records from a running batch. It implements
// batch.Observer and measures EDT and RT60 of every rendered response.
type Recorder struct {
	mu       sync.Mutex
	run      Run
	analyzer *ir.Analyzer
	name     func(index int) string
}

// NewRecorder starts a manifest for a run of p. name maps a draw index to
// the file it is written to; it may be nil when nothing is written.
func NewRecorder(p synth.Params, baseSeed uint64, name func(index int) string) *Recorder {
	return &Recorder{
		run: Run{
			Version:  Version,
			Created:  time.Now().UTC(),
			Params:   FromParams(p),
			BaseSeed: baseSeed,
			Draws:    make([]Draw, 0, p.NumImpulses),
		},
		analyzer: ir.NewAnalyzer(p.SampleRate),
		name:     name,
	}
}

// SetSynthesis records the synthesizer settings that are not part of the
// acoustic parameters.
func (r *Recorder) SetSynthesis(floorDB float64, maxDuration time.Duration, dist synth.Distribution) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.run.Params.FloorDB = floorDB
	r.run.Params.MaxDuration = maxDuration
	r.run.Params.Distribution = dist.String()
}

// DrawStarted implements batch.Observer.
func (r *Recorder) DrawStarted(int) {}

// DrawFinished implements batch.Observer.
func (r *Recorder) DrawFinished(res batch.Result) {
	buf := res.Buffer
	d := Draw{
		Index:            res.Index,
		Seed:             res.Seed,
		Samples:          len(buf.Samples),
		Status:           string(res.Status()),
		Truncated:        buf.Truncated,
		Silent:           buf.Silent,
		EarlyRateClamped: buf.EarlyRateClamped,
		Thinned:          buf.Thinned,
		DRR:              buf.DRR,
		Elapsed:          res.Elapsed,
	}
	if res.Err != nil {
		d.Error = res.Err.Error()
	} else if r.name != nil {
		d.File = r.name(res.Index)
	}

	// Measurement needs a decaying response; silent or failed draws have none.
	if len(buf.Samples) > 0 && !buf.Silent {
		if edt, err := r.analyzer.EDT(buf.Samples); err == nil {
			d.EDT = edt * 1000
		}
		if rt60, err := r.analyzer.RT60(buf.Samples); err == nil {
			d.RT60 = rt60 * 1000
		}
	}

	r.mu.Lock()
	r.run.Draws = append(r.run.Draws, d)
	r.mu.Unlock()
}

// Run returns a snapshot of the manifest with draws ordered by index.
func (r *Recorder) Run() *Run {
	r.mu.Lock()
	defer r.mu.Unlock()

	run := r.run
	run.Draws = slices.Clone(r.run.Draws)
	slices.SortFunc(run.Draws, func(a, b Draw) int { return a.Index - b.Index })
	return &run
}
