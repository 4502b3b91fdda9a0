package main

import (
	"flag"
	"fmt"
	"io"

	"github.com/cwbudde/algo-storir/dsp/conv"
	"github.com/cwbudde/algo-storir/dsp/dither"
	"github.com/cwbudde/algo-storir/dsp/resample"
	"github.com/cwbudde/algo-storir/dsp/signal"
	"github.com/cwbudde/algo-storir/internal/wavio"
)

func runApply(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("apply", flag.ContinueOnError)
	fs.SetOutput(stderr)
	irPath := fs.String("ir", "", "impulse response WAV file (required)")
	wet := fs.Float64("wet", 1, "wet mix between 0 (dry) and 1 (reverb only)")
	bits := fs.Int("bits", 0, "output bit depth (default: that of the dry file)")
	ditherName := fs.String("dither", "tpdf", "dither: none, rpdf or tpdf")
	convert := fs.Bool("resample", true, "convert the impulse response to the rate of the dry file")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: storir apply -ir response.wav [flags] dry.wav out.wav\n\n")
		fs.PrintDefaults()
	}
	if err := parseFlags(fs, args); err != nil {
		return ignoreHelp(err)
	}
	if *irPath == "" || fs.NArg() != 2 {
		fs.Usage()
		return errUsage
	}
	dt, err := dither.ParseDitherType(*ditherName)
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	dry, err := wavio.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}
	ir, err := wavio.ReadFile(*irPath)
	if err != nil {
		return err
	}
	if dry.SampleRate != ir.SampleRate {
		if !*convert {
			return fmt.Errorf("sample rates differ: %s is %d Hz, %s is %d Hz",
				fs.Arg(0), dry.SampleRate, *irPath, ir.SampleRate)
		}
		ir.Samples, err = resample.Convert(ir.Samples, ir.SampleRate, dry.SampleRate, resample.WithQuality(resample.QualityBest))
		if err != nil {
			return err
		}
		ir.SampleRate = dry.SampleRate
	}

	out, err := conv.Apply(dry.Samples, ir.Samples, *wet)
	if err != nil {
		return err
	}
	if peak, _ := signal.Peak(out); peak > 1 {
		if _, err := signal.Normalize(out, 1); err != nil {
			return err
		}
	}

	depth := *bits
	if depth == 0 {
		depth = dry.BitDepth
	}
	q, err := dither.NewQuantizer(dither.WithBitDepth(depth), dither.WithDitherType(dt))
	if err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if err := wavio.WriteFile(fs.Arg(1), out, dry.SampleRate, q); err != nil {
		return err
	}

	fmt.Fprintf(stdout, "%s: %d samples at %d Hz, %d-bit\n", fs.Arg(1), len(out), dry.SampleRate, depth)
	return nil
}
