// Package wavio reads and writes mono PCM WAV files for impulse responses.
//
// Files are written to a temporary name in the destination directory and
// renamed into place once complete, so an interrupted run never leaves a
// truncated file under its final name.
package wavio

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/cwbudde/algo-storir/dsp/dither"
)

// Errors returned by wavio.
var (
	ErrInvalidFile     = errors.New("wavio: not a valid WAV file")
	ErrInvalidBitDepth = errors.New("wavio: bit depth must be 16, 24 or 32")
	ErrEmpty           = errors.New("wavio: no samples")
)

// pcmFormat is the WAVE_FORMAT_PCM tag.
const pcmFormat = 1

// Audio is decoded sample data mixed down to mono, scaled to [-1, +1].
type Audio struct {
	SampleRate int
	BitDepth   int
	Channels   int
	Samples    []float64
}

func validBitDepth(bits int) bool {
	return bits == 16 || bits == 24 || bits == 32
}

// WriteFile quantizes samples with q and writes them as a mono WAV file at
// path, atomically replacing any existing file.
func WriteFile(path string, samples []float64, sampleRate int, q *dither.Quantizer) (err error) {
	if len(samples) == 0 {
		return ErrEmpty
	}
	if !validBitDepth(q.BitDepth()) {
		return fmt.Errorf("%w: %d", ErrInvalidBitDepth, q.BitDepth())
	}

	data := make([]int, len(samples))
	if err := q.QuantizeTo(data, samples); err != nil {
		return err
	}

	dir, base := filepath.Split(path)
	if dir == "" {
		dir = "."
	}
	f, err := os.CreateTemp(dir, "."+base+".tmp-*")
	if err != nil {
		return fmt.Errorf("wavio: create temp file: %w", err)
	}
	tmp := f.Name()
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()

	enc := wav.NewEncoder(f, sampleRate, q.BitDepth(), 1, pcmFormat)
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: 1, SampleRate: sampleRate},
		Data:           data,
		SourceBitDepth: q.BitDepth(),
	}
	if err = enc.Write(buf); err != nil {
		return fmt.Errorf("wavio: encode %s: %w", path, err)
	}
	if err = enc.Close(); err != nil {
		return fmt.Errorf("wavio: finalize %s: %w", path, err)
	}
	if err = f.Sync(); err != nil {
		return fmt.Errorf("wavio: sync %s: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("wavio: close %s: %w", path, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("wavio: rename into place: %w", err)
	}
	return nil
}

// ReadFile decodes the WAV file at path. Multi-channel files are averaged
// to mono.
func ReadFile(path string) (Audio, error) {
	f, err := os.Open(path)
	if err != nil {
		return Audio{}, err
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return Audio{}, fmt.Errorf("%w: %s", ErrInvalidFile, path)
	}
	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Audio{}, fmt.Errorf("wavio: decode %s: %w", path, err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return Audio{}, fmt.Errorf("%w: %s", ErrEmpty, path)
	}

	a := Audio{
		SampleRate: int(dec.SampleRate),
		BitDepth:   int(dec.BitDepth),
		Channels:   max(1, int(dec.NumChans)),
	}
	if a.SampleRate <= 0 || a.BitDepth < 2 {
		return Audio{}, fmt.Errorf("%w: %s: %d Hz, %d bit", ErrInvalidFile, path, a.SampleRate, a.BitDepth)
	}

	fullScale := math.Exp2(float64(a.BitDepth-1)) - 1
	frames := len(buf.Data) / a.Channels
	a.Samples = make([]float64, frames)
	for i := range frames {
		var sum float64
		for c := range a.Channels {
			sum += float64(buf.Data[i*a.Channels+c])
		}
		a.Samples[i] = sum / float64(a.Channels) / fullScale
	}
	return a, nil
}
