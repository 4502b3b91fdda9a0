package main

import (
	"flag"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/cwbudde/algo-storir/internal/wavio"
	"github.com/cwbudde/algo-storir/measure/ir"
	"github.com/cwbudde/algo-storir/stats/level"
)

func runAnalyze(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("analyze", flag.ContinueOnError)
	fs.SetOutput(stderr)
	window := fs.Float64("window", 0, "also print the RMS level of consecutive windows of this many ms")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: storir analyze [flags] file.wav ...\n\n")
		fs.PrintDefaults()
	}
	if err := parseFlags(fs, args); err != nil {
		return ignoreHelp(err)
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return errUsage
	}

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "file\tlength(s)\tpeak(dBFS)\tcrest(dB)\tEDT(s)\tT20(s)\tT30(s)\tRT60(s)\tC50(dB)\tC80(dB)\tD50\tDRR(dB)\tTs(ms)\t")

	var failed int
	for _, path := range fs.Args() {
		a, err := wavio.ReadFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		analyzer := ir.NewAnalyzer(a.SampleRate)
		m, err := analyzer.Analyze(a.Samples)
		if err != nil {
			fmt.Fprintf(stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		lv := level.Calculate(a.Samples)
		fmt.Fprintf(tw, "%s\t%.3f\t%.1f\t%.1f\t%.3f\t%.3f\t%.3f\t%.3f\t%.1f\t%.1f\t%.2f\t%.1f\t%.1f\t\n",
			path, m.Duration, lv.PeakdB, lv.CrestdB, m.EDT, m.T20, m.T30, m.RT60, m.C50, m.C80, m.D50, m.DRR, m.CenterTime*1000)

		if *window > 0 {
			rms, err := analyzer.WindowRMS(a.Samples, *window)
			if err != nil {
				return fmt.Errorf("%w: %v", errUsage, err)
			}
			for k, v := range rms {
				fmt.Fprintf(tw, "  %.0f ms\t%.3g\t\t\t\t\t\t\t\t\t\t\t\t\n", float64(k) * *window, v)
			}
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files could not be analyzed", failed, fs.NArg())
	}
	return nil
}
