package batch

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cwbudde/algo-storir/internal/testutil"
	"github.com/cwbudde/algo-storir/synth"
)

func smallParams(n int) synth.Params {
	return synth.Params{
		SampleRate:  8000,
		RT60:        120,
		EDT:         15,
		ITDG:        2,
		ERDuration:  20,
		NumImpulses: n,
		Variant:     synth.VariantSimple,
	}
}

func run(t *testing.T, p synth.Params, w Writer, opts ...Option) Summary {
	t.Helper()
	d, err := New(p, opts...)
	if err != nil {
		t.Fatal(err)
	}
	s, err := d.Run(context.Background(), w)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestRunFiveDistinctDraws(t *testing.T) {
	var mem MemoryWriter
	s := run(t, smallParams(5), &mem, WithBaseSeed(42))

	if err := s.Err(); err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(s.Succeeded, []int{0, 1, 2, 3, 4}) {
		t.Fatalf("Succeeded = %v", s.Succeeded)
	}

	bufs := mem.Buffers()
	if len(bufs) != 5 {
		t.Fatalf("wrote %d buffers, want 5", len(bufs))
	}
	for i, b := range bufs {
		if b.Index != i {
			t.Fatalf("buffer %d tagged %d", i, b.Index)
		}
		if b.Seed != synth.DrawSeed(42, i) {
			t.Fatalf("buffer %d seed = %d, want %d", i, b.Seed, synth.DrawSeed(42, i))
		}
	}
	for i := range bufs {
		for j := i + 1; j < len(bufs); j++ {
			if slices.Equal(bufs[i].Samples, bufs[j].Samples) {
				t.Fatalf("draws %d and %d are identical", i, j)
			}
		}
	}
}

func TestRunReproducibleAcrossWorkerCounts(t *testing.T) {
	var serial, parallel MemoryWriter
	run(t, smallParams(6), &serial, WithBaseSeed(7), WithComputeWorkers(1), WithIOWorkers(1))
	run(t, smallParams(6), &parallel, WithBaseSeed(7), WithComputeWorkers(4), WithIOWorkers(3))

	a, b := serial.Buffers(), parallel.Buffers()
	if len(a) != 6 || len(b) != 6 {
		t.Fatalf("wrote %d and %d buffers, want 6", len(a), len(b))
	}
	for i := range a {
		diff, at, err := testutil.MaxAbsDiff(a[i].Samples, b[i].Samples)
		if err != nil {
			t.Fatalf("draw %d: %v", i, err)
		}
		if diff != 0 {
			t.Fatalf("draw %d differs between worker counts at sample %d by %g", i, at, diff)
		}
	}
}

func TestNewRejectsInvalidParams(t *testing.T) {
	p := smallParams(3)
	p.RT60 = 0

	if _, err := New(p); !errors.Is(err, synth.ErrInvalidParameter) {
		t.Fatalf("err = %v, want ErrInvalidParameter", err)
	}
}

func TestNewRejectsInvalidOptions(t *testing.T) {
	for name, opt := range map[string]Option{
		"compute": WithComputeWorkers(0),
		"io":      WithIOWorkers(-1),
	} {
		if _, err := New(smallParams(1), opt); !errors.Is(err, ErrInvalidOption) {
			t.Errorf("%s: err = %v, want ErrInvalidOption", name, err)
		}
	}
	if _, err := New(smallParams(1), WithSynthOptions(synth.WithFloorDB(1))); !errors.Is(err, synth.ErrInvalidParameter) {
		t.Errorf("synth option: err = %v, want ErrInvalidParameter", err)
	}
}

func TestRunIsolatesWriteFailures(t *testing.T) {
	errDisk := errors.New("disk full")
	var mem MemoryWriter
	w := WriterFunc(func(ctx context.Context, buf synth.Buffer) error {
		if buf.Index == 2 {
			return errDisk
		}
		return mem.WriteImpulse(ctx, buf)
	})

	s := run(t, smallParams(4), w, WithIOWorkers(2))

	if !slices.Equal(s.Failed, []int{2}) || !slices.Equal(s.Succeeded, []int{0, 1, 3}) {
		t.Fatalf("Failed = %v, Succeeded = %v", s.Failed, s.Succeeded)
	}
	err := s.Err()
	if !errors.Is(err, errDisk) {
		t.Fatalf("Err() = %v, want disk full", err)
	}
	var de *DrawError
	if !errors.As(err, &de) || de.Index != 2 {
		t.Fatalf("Err() = %v, want DrawError for index 2", err)
	}
	if len(mem.Buffers()) != 3 {
		t.Fatalf("wrote %d buffers, want 3", len(mem.Buffers()))
	}
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	d, err := New(smallParams(3))
	if err != nil {
		t.Fatal(err)
	}
	var mem MemoryWriter
	s, err := d.Run(ctx, &mem)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if len(s.Failed) != 3 || len(mem.Buffers()) != 0 {
		t.Fatalf("Failed = %v, written = %d", s.Failed, len(mem.Buffers()))
	}
	if !errors.Is(s.Err(), context.Canceled) {
		t.Fatalf("Err() = %v, want context.Canceled", s.Err())
	}
}

func TestRunCancelledObserverEvents(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	o := &countingObserver{}
	d, err := New(smallParams(3), WithObserver(o))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Run(ctx, &MemoryWriter{}); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}

	if o.started.Load() != 0 {
		t.Fatalf("started = %d, want 0 for draws skipped before synthesis", o.started.Load())
	}
	if len(o.finished) != 3 {
		t.Fatalf("finished = %v, want all 3 draws", o.finished)
	}
	for idx, st := range o.finished {
		if st != StatusFailed {
			t.Fatalf("draw %d status = %s, want failed", idx, st)
		}
	}
}

func TestRunNilWriter(t *testing.T) {
	d, err := New(smallParams(1))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := d.Run(context.Background(), nil); !errors.Is(err, ErrNilWriter) {
		t.Fatalf("err = %v, want ErrNilWriter", err)
	}
}

func TestRunReportsTruncation(t *testing.T) {
	p := smallParams(2)
	p.RT60 = 20000
	s := run(t, p, &MemoryWriter{}, WithSynthOptions(synth.WithMaxDuration(500*time.Millisecond)))

	if !slices.Equal(s.Truncated, []int{0, 1}) {
		t.Fatalf("Truncated = %v, want [0 1]", s.Truncated)
	}
	if s.Err() != nil {
		t.Fatalf("truncation must not fail draws: %v", s.Err())
	}
}

type countingObserver struct {
	started  atomic.Int64
	mu       sync.Mutex
	finished map[int]Status
}

func (c *countingObserver) DrawStarted(int) { c.started.Add(1) }

func (c *countingObserver) DrawFinished(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.finished == nil {
		c.finished = make(map[int]Status)
	}
	c.finished[r.Index] = r.Status()
}

func TestRunObservers(t *testing.T) {
	a, b := &countingObserver{}, &countingObserver{}
	run(t, smallParams(4), &MemoryWriter{}, WithObserver(Observers{a, b}), WithComputeWorkers(2))

	for _, o := range []*countingObserver{a, b} {
		if o.started.Load() != 4 {
			t.Fatalf("started = %d, want 4", o.started.Load())
		}
		if len(o.finished) != 4 {
			t.Fatalf("finished = %v, want 4 draws", o.finished)
		}
		for idx, st := range o.finished {
			if st != StatusOK {
				t.Fatalf("draw %d status = %s, want ok", idx, st)
			}
		}
	}
}

func TestResultStatus(t *testing.T) {
	tests := []struct {
		r    Result
		want Status
	}{
		{Result{}, StatusOK},
		{Result{Buffer: synth.Buffer{Silent: true}}, StatusSilent},
		{Result{Err: errors.New("x"), Buffer: synth.Buffer{Silent: true}}, StatusFailed},
	}
	for _, tt := range tests {
		if got := tt.r.Status(); got != tt.want {
			t.Errorf("Status() = %s, want %s", got, tt.want)
		}
	}
}
