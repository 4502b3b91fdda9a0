package synth

import (
	"errors"
	"fmt"

	"github.com/cwbudde/algo-storir/dsp/signal"
)

// Conditions reported on an otherwise successful draw.
var (
	ErrEmptyOutput = errors.New("synth: synthesized response is silent")
	ErrTruncated   = errors.New("synth: tail truncated by the max-duration safeguard")
)

// Assemble peak-normalizes buf so its largest absolute sample is 1.0.
//
// A silent buffer cannot be normalized; it is returned unchanged with Silent
// set instead of failing. The only error is non-finite sample data.
func Assemble(buf Buffer) (Buffer, error) {
	if len(buf.Samples) == 0 {
		buf.Silent = true
		return buf, nil
	}

	_, err := signal.Normalize(buf.Samples, 1)
	switch {
	case errors.Is(err, signal.ErrSilent):
		buf.Silent = true
	case err != nil:
		return Buffer{}, fmt.Errorf("synth: assemble draw %d: %w", buf.Index, err)
	}

	return buf, nil
}

// Notices returns the non-fatal conditions of buf, each matching
// ErrEmptyOutput or ErrTruncated with errors.Is.
func (b Buffer) Notices() []error {
	var out []error
	if b.Silent {
		out = append(out, fmt.Errorf("draw %d: %w", b.Index, ErrEmptyOutput))
	}
	if b.Truncated {
		out = append(out, fmt.Errorf("draw %d: %w", b.Index, ErrTruncated))
	}
	return out
}
