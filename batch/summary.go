package batch

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

// DrawError records the failure of a single draw.
type DrawError struct {
	Index int
	Err   error
}

func (e *DrawError) Error() string {
	return fmt.Sprintf("batch: draw %d: %v", e.Index, e.Err)
}

func (e *DrawError) Unwrap() error { return e.Err }

// Summary is the outcome of a run. Index lists are sorted ascending.
type Summary struct {
	Total     int
	Succeeded []int
	Failed    []int
	Truncated []int
	Silent    []int
	Errors    []*DrawError // ordered by index
	Elapsed   time.Duration
}

// Err joins the per-draw failures, or returns nil if every draw succeeded.
func (s Summary) Err() error {
	if len(s.Errors) == 0 {
		return nil
	}
	errs := make([]error, len(s.Errors))
	for i, e := range s.Errors {
		errs[i] = e
	}
	return errors.Join(errs...)
}

// recorder accumulates results from concurrent workers.
type recorder struct {
	mu sync.Mutex
	s  Summary
}

func (r *recorder) add(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if res.Err != nil {
		r.s.Failed = append(r.s.Failed, res.Index)
		r.s.Errors = append(r.s.Errors, &DrawError{Index: res.Index, Err: res.Err})
		return
	}
	r.s.Succeeded = append(r.s.Succeeded, res.Index)
	if res.Buffer.Truncated {
		r.s.Truncated = append(r.s.Truncated, res.Index)
	}
	if res.Buffer.Silent {
		r.s.Silent = append(r.s.Silent, res.Index)
	}
}

func (r *recorder) summary(total int, elapsed time.Duration) Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := r.s
	s.Total = total
	s.Elapsed = elapsed
	for _, idx := range [][]int{s.Succeeded, s.Failed, s.Truncated, s.Silent} {
		slices.Sort(idx)
	}
	slices.SortFunc(s.Errors, func(a, b *DrawError) int { return a.Index - b.Index })
	return s
}
