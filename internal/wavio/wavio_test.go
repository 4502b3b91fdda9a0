package wavio

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cwbudde/algo-storir/dsp/dither"
	"github.com/cwbudde/algo-storir/internal/testutil"
	"github.com/cwbudde/algo-storir/synth"
)

func newQuantizer(t *testing.T, bits int) *dither.Quantizer {
	t.Helper()
	q, err := dither.NewQuantizer(dither.WithBitDepth(bits))
	if err != nil {
		t.Fatal(err)
	}
	return q
}

func TestWriteReadRoundTrip(t *testing.T) {
	samples := []float64{1, 0, 0, -0.5, 0.25, -1}

	for _, bits := range []int{16, 24, 32} {
		path := filepath.Join(t.TempDir(), "ir.wav")
		if err := WriteFile(path, samples, 44100, newQuantizer(t, bits)); err != nil {
			t.Fatalf("%d-bit: %v", bits, err)
		}

		a, err := ReadFile(path)
		if err != nil {
			t.Fatalf("%d-bit: %v", bits, err)
		}
		if a.SampleRate != 44100 || a.BitDepth != bits || a.Channels != 1 {
			t.Fatalf("%d-bit: format = %+v", bits, a)
		}
		lsb := 1 / float64(int(1)<<(bits-1)-1)
		testutil.RequireSliceNearlyEqual(t, a.Samples, samples, lsb)
		if a.Samples[0] != 1 || a.Samples[1] != 0 || a.Samples[2] != 0 {
			t.Fatalf("%d-bit: full scale and silence must be exact: %v", bits, a.Samples[:3])
		}
	}
}

func TestWriteFileErrors(t *testing.T) {
	dir := t.TempDir()
	if err := WriteFile(filepath.Join(dir, "a.wav"), nil, 44100, newQuantizer(t, 16)); !errors.Is(err, ErrEmpty) {
		t.Errorf("err = %v, want ErrEmpty", err)
	}
	if err := WriteFile(filepath.Join(dir, "b.wav"), []float64{1}, 44100, newQuantizer(t, 8)); !errors.Is(err, ErrInvalidBitDepth) {
		t.Errorf("err = %v, want ErrInvalidBitDepth", err)
	}
	if err := WriteFile(filepath.Join(dir, "missing", "c.wav"), []float64{1}, 44100, newQuantizer(t, 16)); err == nil {
		t.Error("expected error for missing directory")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("failed writes left files behind: %v", entries)
	}
}

func TestReadFileInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "junk.wav")
	if err := os.WriteFile(path, []byte("definitely not RIFF data"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadFile(path); !errors.Is(err, ErrInvalidFile) {
		t.Fatalf("err = %v, want ErrInvalidFile", err)
	}
	if _, err := ReadFile(filepath.Join(t.TempDir(), "none.wav")); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want ErrNotExist", err)
	}
}

func TestWriterNames(t *testing.T) {
	tests := []struct {
		total int
		index int
		want  string
	}{
		{5, 3, "rir_003.wav"},
		{1000, 7, "rir_007.wav"},
		{1001, 7, "rir_0007.wav"},
	}
	for _, tt := range tests {
		w, err := NewWriter(t.TempDir(), tt.total)
		if err != nil {
			t.Fatal(err)
		}
		if got := w.Name(tt.index); got != tt.want {
			t.Errorf("Name(%d) of %d = %q, want %q", tt.index, tt.total, got, tt.want)
		}
	}

	w, err := NewWriter(t.TempDir(), 2, WithPrefix("hall"))
	if err != nil {
		t.Fatal(err)
	}
	if got := w.Name(1); got != "hall_001.wav" {
		t.Errorf("Name = %q, want hall_001.wav", got)
	}
}

func TestWriterOptions(t *testing.T) {
	for name, opt := range map[string]Option{
		"prefix path": WithPrefix("a/b"),
		"empty":       WithPrefix(""),
		"bits":        WithBitDepth(12),
		"dither":      WithDither(dither.DitherType(9)),
	} {
		if _, err := NewWriter(t.TempDir(), 1, opt); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}

func TestWriterWriteImpulse(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	w, err := NewWriter(dir, 2, WithBitDepth(24), WithDither(dither.DitherTriangular))
	if err != nil {
		t.Fatal(err)
	}

	buf := synth.Buffer{Index: 1, Seed: 99, SampleRate: 8000, Samples: []float64{1, 0.5, -0.25, 0.125}}
	if err := w.WriteImpulse(context.Background(), buf); err != nil {
		t.Fatal(err)
	}

	a, err := ReadFile(w.Path(1))
	if err != nil {
		t.Fatal(err)
	}
	if a.SampleRate != 8000 || a.BitDepth != 24 || len(a.Samples) != 4 {
		t.Fatalf("format = %+v", a)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.Contains(e.Name(), ".tmp-") {
			t.Fatalf("temp file left behind: %s", e.Name())
		}
	}

	// Dither is seeded from the draw, so a rewrite is byte-identical.
	first, err := os.ReadFile(w.Path(1))
	if err != nil {
		t.Fatal(err)
	}
	if err := w.WriteImpulse(context.Background(), buf); err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(w.Path(1))
	if err != nil {
		t.Fatal(err)
	}
	if string(first) != string(second) {
		t.Fatal("rewriting the same draw changed the file")
	}
}

func TestWriterCancelled(t *testing.T) {
	w, err := NewWriter(t.TempDir(), 1)
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err = w.WriteImpulse(ctx, synth.Buffer{SampleRate: 8000, Samples: []float64{1}})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if _, err := os.Stat(w.Path(0)); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("cancelled write created a file: %v", err)
	}
}
