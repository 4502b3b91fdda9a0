// Package manifest records what a synthesis run produced: the parameters,
// the seeds of every draw, the files written and the decay times measured
// on each rendered response. Manifests are msgpack encoded and zstd
// compressed.
package manifest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/cwbudde/algo-storir/synth"
)

// Filename is the standard name of a run manifest inside the output folder.
const Filename = "manifest.msgpack.zst"

// Version is the manifest format version written by this package.
const Version = 1

// ErrVersion is returned when reading a manifest of an unknown format.
var ErrVersion = errors.New("manifest: unsupported version")

// Params mirrors synth.Params with named enums so manifests stay readable
// by other tools.
type Params struct {
	SampleRate   int           `msgpack:"sample_rate"`
	RT60         float64       `msgpack:"rt60_ms"`
	EDT          float64       `msgpack:"edt_ms"`
	ITDG         float64       `msgpack:"itdg_ms"`
	ERDuration   float64       `msgpack:"er_duration_ms"`
	NumImpulses  int           `msgpack:"num_impulses"`
	Variant      string        `msgpack:"variant"`
	DRR          float64       `msgpack:"drr_db"`
	FloorDB      float64       `msgpack:"floor_db,omitempty"`
	MaxDuration  time.Duration `msgpack:"max_duration,omitempty"`
	Distribution string        `msgpack:"distribution,omitempty"`
}

// FromParams converts synthesis parameters.
func FromParams(p synth.Params) Params {
	return Params{
		SampleRate:  p.SampleRate,
		RT60:        p.RT60,
		EDT:         p.EDT,
		ITDG:        p.ITDG,
		ERDuration:  p.ERDuration,
		NumImpulses: p.NumImpulses,
		Variant:     p.Variant.String(),
		DRR:         p.DRR,
	}
}

// Synth converts back to synthesis parameters.
func (p Params) Synth() (synth.Params, error) {
	v, err := synth.ParseVariant(p.Variant)
	if err != nil {
		return synth.Params{}, err
	}
	return synth.Params{
		SampleRate:  p.SampleRate,
		RT60:        p.RT60,
		EDT:         p.EDT,
		ITDG:        p.ITDG,
		ERDuration:  p.ERDuration,
		NumImpulses: p.NumImpulses,
		Variant:     v,
		DRR:         p.DRR,
	}, nil
}

// Draw is the record of one rendered impulse response.
type Draw struct {
	Index            int           `msgpack:"index"`
	Seed             uint64        `msgpack:"seed"`
	File             string        `msgpack:"file,omitempty"`
	Samples          int           `msgpack:"samples"`
	Status           string        `msgpack:"status"`
	Truncated        bool          `msgpack:"truncated,omitempty"`
	Silent           bool          `msgpack:"silent,omitempty"`
	EarlyRateClamped bool          `msgpack:"early_rate_clamped,omitempty"`
	Thinned          bool          `msgpack:"thinned,omitempty"`
	DRR              float64       `msgpack:"drr_db"`
	EDT              float64       `msgpack:"measured_edt_ms,omitempty"`
	RT60             float64       `msgpack:"measured_rt60_ms,omitempty"`
	Elapsed          time.Duration `msgpack:"elapsed"`
	Error            string        `msgpack:"error,omitempty"`
}

// Run is the record of a whole batch.
type Run struct {
	Version  int       `msgpack:"version"`
	Created  time.Time `msgpack:"created"`
	Params   Params    `msgpack:"params"`
	BaseSeed uint64    `msgpack:"base_seed"`
	Draws    []Draw    `msgpack:"draws"`
}

// Failed returns the draws that did not produce a file.
func (r *Run) Failed() []Draw {
	var failed []Draw
	for _, d := range r.Draws {
		if d.Error != "" {
			failed = append(failed, d)
		}
	}
	return failed
}

// Write encodes run to w.
func Write(w io.Writer, run *Run) error {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	if err != nil {
		return err
	}
	if err := msgpack.NewEncoder(zw).Encode(run); err != nil {
		zw.Close()
		return fmt.Errorf("manifest: encode: %w", err)
	}
	return zw.Close()
}

// Read decodes a run written by Write.
func Read(r io.Reader) (*Run, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var run Run
	if err := msgpack.NewDecoder(zr).Decode(&run); err != nil {
		return nil, fmt.Errorf("manifest: decode: %w", err)
	}
	if run.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrVersion, run.Version)
	}
	return &run, nil
}

// WriteFile writes run to path through a temporary file in the same folder.
func WriteFile(path string, run *Run) (err error) {
	f, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(f.Name())
		}
	}()

	if err = Write(f, run); err != nil {
		return err
	}
	if err = f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), path)
}

// ReadFile reads the manifest at path.
func ReadFile(path string) (*Run, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Read(f)
}
