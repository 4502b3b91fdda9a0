package wavio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cwbudde/algo-storir/dsp/dither"
	"github.com/cwbudde/algo-storir/synth"
)

const (
	defaultPrefix   = "rir"
	defaultBitDepth = 16
	minIndexDigits  = 3
)

type config struct {
	prefix   string
	bitDepth int
	dither   dither.DitherType
}

// Option configures a [Writer].
type Option func(*config) error

// WithPrefix sets the file name prefix (default "rir").
func WithPrefix(prefix string) Option {
	return func(cfg *config) error {
		if prefix == "" || filepath.Base(prefix) != prefix {
			return fmt.Errorf("wavio: invalid file prefix %q", prefix)
		}
		cfg.prefix = prefix
		return nil
	}
}

// WithBitDepth sets the PCM bit depth: 16 (default), 24 or 32.
func WithBitDepth(bits int) Option {
	return func(cfg *config) error {
		if !validBitDepth(bits) {
			return fmt.Errorf("%w: %d", ErrInvalidBitDepth, bits)
		}
		cfg.bitDepth = bits
		return nil
	}
}

// WithDither sets the dither applied when quantizing (default none).
func WithDither(dt dither.DitherType) Option {
	return func(cfg *config) error {
		if !dt.Valid() {
			return fmt.Errorf("wavio: invalid dither type %d", dt)
		}
		cfg.dither = dt
		return nil
	}
}

// Writer stores each draw of a run as <dir>/<prefix>_<index>.wav. It
// implements the batch writer interface and is safe for concurrent use.
type Writer struct {
	dir    string
	digits int
	cfg    config
}

// NewWriter creates dir if needed and returns a writer for a run of total
// draws. Indices are zero-padded to a common width.
func NewWriter(dir string, total int, opts ...Option) (*Writer, error) {
	cfg := config{prefix: defaultPrefix, bitDepth: defaultBitDepth, dither: dither.DitherNone}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("wavio: create output folder: %w", err)
	}

	return &Writer{
		dir:    dir,
		digits: max(minIndexDigits, len(strconv.Itoa(max(0, total-1)))),
		cfg:    cfg,
	}, nil
}

// Dir returns the output folder.
func (w *Writer) Dir() string { return w.dir }

// Name returns the file name of draw index.
func (w *Writer) Name(index int) string {
	return fmt.Sprintf("%s_%0*d.wav", w.cfg.prefix, w.digits, index)
}

// Path returns the full path of draw index.
func (w *Writer) Path(index int) string {
	return filepath.Join(w.dir, w.Name(index))
}

// WriteImpulse writes buf under its index. Dither noise is seeded from the
// draw seed so files are reproducible.
func (w *Writer) WriteImpulse(ctx context.Context, buf synth.Buffer) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	q, err := dither.NewQuantizer(
		dither.WithBitDepth(w.cfg.bitDepth),
		dither.WithDitherType(w.cfg.dither),
		dither.WithSeed(buf.Seed, uint64(buf.Index)),
	)
	if err != nil {
		return err
	}

	return WriteFile(w.Path(buf.Index), buf.Samples, buf.SampleRate, q)
}
