package batch

import (
	"time"

	"github.com/cwbudde/algo-storir/synth"
)

// Status classifies a finished draw.
type Status string

// Draw statuses.
const (
	StatusOK     Status = "ok"
	StatusSilent Status = "silent"
	StatusFailed Status = "failed"
)

// Result describes one finished draw. Buffer is populated whenever synthesis
// succeeded, even if the write failed.
type Result struct {
	Index   int
	Seed    uint64
	Buffer  synth.Buffer
	Elapsed time.Duration // synthesis time
	Err     error
}

// Status returns the classification of r.
func (r Result) Status() Status {
	switch {
	case r.Err != nil:
		return StatusFailed
	case r.Buffer.Silent:
		return StatusSilent
	default:
		return StatusOK
	}
}

// Observer receives per-draw events. Hooks are called from worker
// goroutines and must be safe for concurrent use.
//
// DrawFinished is called exactly once for every draw. DrawStarted is called
// only for draws that reach synthesis: a draw skipped because the run was
// cancelled finishes with the context error and no matching DrawStarted.
type Observer interface {
	DrawStarted(index int)
	DrawFinished(r Result)
}

// Observers fans events out to every observer in order.
type Observers []Observer

// DrawStarted implements Observer.
func (os Observers) DrawStarted(index int) {
	for _, o := range os {
		o.DrawStarted(index)
	}
}

// DrawFinished implements Observer.
func (os Observers) DrawFinished(r Result) {
	for _, o := range os {
		o.DrawFinished(r)
	}
}

type nopObserver struct{}

func (nopObserver) DrawStarted(int) {}
func (nopObserver) DrawFinished(Result) {}
