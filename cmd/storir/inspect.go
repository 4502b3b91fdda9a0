package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/cwbudde/algo-storir/internal/manifest"
)

func runInspect(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("inspect", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: storir inspect %s\n", manifest.Filename)
	}
	if err := parseFlags(fs, args); err != nil {
		return ignoreHelp(err)
	}
	if fs.NArg() != 1 {
		fs.Usage()
		return errUsage
	}

	run, err := manifest.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	p := run.Params
	fmt.Fprintf(stdout, "created   %s\n", run.Created.Format(time.RFC3339))
	fmt.Fprintf(stdout, "room      %d Hz  rt60 %g ms  edt %g ms  itdg %g ms  er %g ms\n",
		p.SampleRate, p.RT60, p.EDT, p.ITDG, p.ERDuration)
	fmt.Fprintf(stdout, "synthesis %s  drr %g dB  floor %g dB  max %v  noise %s  seed %d\n",
		p.Variant, p.DRR, p.FloorDB, p.MaxDuration, p.Distribution, run.BaseSeed)
	fmt.Fprintln(stdout)

	tw := tabwriter.NewWriter(stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "index\tfile\tsamples\tstatus\tDRR(dB)\tEDT(ms)\tRT60(ms)\tflags\t")
	for _, d := range run.Draws {
		var flags []string
		for _, f := range []struct {
			set  bool
			name string
		}{
			{d.Truncated, "truncated"},
			{d.Silent, "silent"},
			{d.EarlyRateClamped, "clamped"},
			{d.Thinned, "thinned"},
		} {
			if f.set {
				flags = append(flags, f.name)
			}
		}
		status := d.Status
		if d.Error != "" {
			status += ": " + d.Error
		}
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%.1f\t%.0f\t%.0f\t%s\t\n",
			d.Index, d.File, d.Samples, status, d.DRR, d.EDT, d.RT60, strings.Join(flags, ","))
	}
	return tw.Flush()
}
