package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/cwbudde/algo-storir/batch"
	"github.com/cwbudde/algo-storir/internal/config"
	"github.com/cwbudde/algo-storir/internal/logging"
	"github.com/cwbudde/algo-storir/internal/manifest"
	"github.com/cwbudde/algo-storir/internal/metrics"
	"github.com/cwbudde/algo-storir/internal/wavio"
)

// parseFlags parses args and turns -h into a clean exit.
func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return errHelp
		}
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	return nil
}

// errHelp stops a command after its usage was printed on request.
var errHelp = errors.New("help requested")

// configFlags binds the command line overrides of a configuration.
type configFlags struct {
	fs   *flag.FlagSet
	path string
	def  *config.Config // flag defaults, overwritten by Parse
}

func newConfigFlags(fs *flag.FlagSet) *configFlags {
	f := &configFlags{fs: fs, def: config.Default()}
	c := f.def

	fs.StringVar(&f.path, "config", "", "YAML configuration file")

	fs.IntVar(&c.Acoustics.SampleRate, "sr", c.Acoustics.SampleRate, "sample rate in Hz")
	fs.Float64Var(&c.Acoustics.RT60, "rt60", c.Acoustics.RT60, "reverberation time in ms")
	fs.Float64Var(&c.Acoustics.EDT, "edt", c.Acoustics.EDT, "early decay time in ms")
	fs.Float64Var(&c.Acoustics.ITDG, "itdg", c.Acoustics.ITDG, "initial time delay gap in ms")
	fs.Float64Var(&c.Acoustics.ERDuration, "er", c.Acoustics.ERDuration, "early reflection duration in ms")
	fs.IntVar(&c.Acoustics.NumImpulses, "n", c.Acoustics.NumImpulses, "number of impulse responses")

	fs.StringVar(&c.Synthesis.Variant, "variant", c.Synthesis.Variant, "synthesis variant: simple or improved")
	fs.Float64Var(&c.Synthesis.DRR, "drr", c.Synthesis.DRR, "target direct-to-reverberant ratio in dB (improved)")
	fs.Float64Var(&c.Synthesis.FloorDB, "floor", c.Synthesis.FloorDB, "tail cut level in dB")
	fs.DurationVar(&c.Synthesis.MaxDuration, "max-duration", c.Synthesis.MaxDuration, "maximum response length")
	fs.StringVar(&c.Synthesis.Distribution, "noise", c.Synthesis.Distribution, "noise distribution: gaussian or uniform")
	fs.Uint64Var(&c.Synthesis.Seed, "seed", c.Synthesis.Seed, "base seed")

	fs.StringVar(&c.Output.Folder, "out", c.Output.Folder, "output folder")
	fs.StringVar(&c.Output.Prefix, "prefix", c.Output.Prefix, "file name prefix")
	fs.IntVar(&c.Output.BitDepth, "bits", c.Output.BitDepth, "PCM bit depth: 16, 24 or 32")
	fs.StringVar(&c.Output.Dither, "dither", c.Output.Dither, "dither: none, rpdf or tpdf")
	fs.BoolVar(&c.Output.Manifest, "manifest", c.Output.Manifest, "write "+manifest.Filename)

	fs.IntVar(&c.Workers.Compute, "workers", c.Workers.Compute, "synthesis workers (0 = one per CPU)")
	fs.IntVar(&c.Workers.IO, "io-workers", c.Workers.IO, "file writers")

	fs.StringVar(&c.Logging.Level, "log-level", c.Logging.Level, "log level: debug, info, warn or error")
	fs.StringVar(&c.Logging.Format, "log-format", c.Logging.Format, "log format: text or json")
	fs.StringVar(&c.Logging.Output, "log", c.Logging.Output, "log output: stderr, stdout or a file")
	fs.StringVar(&c.Metrics.Textfile, "metrics", c.Metrics.Textfile, "Prometheus textfile to write after the run")

	return f
}

// load returns the configuration file, or the defaults, with every flag
// given on the command line applied on top.
func (f *configFlags) load() (*config.Config, error) {
	if f.path == "" {
		return f.def, f.def.Validate()
	}

	cfg, err := config.Load(f.path)
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool)
	f.fs.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	src, dst := f.def, cfg
	apply := func(name string, fn func()) {
		if set[name] {
			fn()
		}
	}
	apply("sr", func() { dst.Acoustics.SampleRate = src.Acoustics.SampleRate })
	apply("rt60", func() { dst.Acoustics.RT60 = src.Acoustics.RT60 })
	apply("edt", func() { dst.Acoustics.EDT = src.Acoustics.EDT })
	apply("itdg", func() { dst.Acoustics.ITDG = src.Acoustics.ITDG })
	apply("er", func() { dst.Acoustics.ERDuration = src.Acoustics.ERDuration })
	apply("n", func() { dst.Acoustics.NumImpulses = src.Acoustics.NumImpulses })
	apply("variant", func() { dst.Synthesis.Variant = src.Synthesis.Variant })
	apply("drr", func() { dst.Synthesis.DRR = src.Synthesis.DRR })
	apply("floor", func() { dst.Synthesis.FloorDB = src.Synthesis.FloorDB })
	apply("max-duration", func() { dst.Synthesis.MaxDuration = src.Synthesis.MaxDuration })
	apply("noise", func() { dst.Synthesis.Distribution = src.Synthesis.Distribution })
	apply("seed", func() { dst.Synthesis.Seed = src.Synthesis.Seed })
	apply("out", func() { dst.Output.Folder = src.Output.Folder })
	apply("prefix", func() { dst.Output.Prefix = src.Output.Prefix })
	apply("bits", func() { dst.Output.BitDepth = src.Output.BitDepth })
	apply("dither", func() { dst.Output.Dither = src.Output.Dither })
	apply("manifest", func() { dst.Output.Manifest = src.Output.Manifest })
	apply("workers", func() { dst.Workers.Compute = src.Workers.Compute })
	apply("io-workers", func() { dst.Workers.IO = src.Workers.IO })
	apply("log-level", func() { dst.Logging.Level = src.Logging.Level })
	apply("log-format", func() { dst.Logging.Format = src.Logging.Format })
	apply("log", func() { dst.Logging.Output = src.Logging.Output })
	apply("metrics", func() { dst.Metrics.Textfile = src.Metrics.Textfile })

	return cfg, cfg.Validate()
}

func runGenerate(args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flags := newConfigFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return ignoreHelp(err)
	}
	if fs.NArg() > 0 {
		return fmt.Errorf("%w: unexpected arguments %v", errUsage, fs.Args())
	}

	cfg, err := flags.load()
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return err
	}
	defer log.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := generate(ctx, cfg, log.Logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d of %d impulse responses written to %s in %v\n",
		len(s.Succeeded), s.Total, cfg.Output.Folder, s.Elapsed.Round(time.Millisecond))
	return s.Err()
}

// generate renders one run of cfg with the WAV writer, the manifest and the
// metrics attached.
func generate(ctx context.Context, cfg *config.Config, log *slog.Logger) (batch.Summary, error) {
	p := cfg.Params()
	if err := p.Validate(); err != nil {
		return batch.Summary{}, err
	}

	wopts, err := cfg.Output.WriterOptions()
	if err != nil {
		return batch.Summary{}, err
	}
	w, err := wavio.NewWriter(cfg.Output.Folder, p.NumImpulses, wopts...)
	if err != nil {
		return batch.Summary{}, err
	}

	m := metrics.New()
	rec := manifest.NewRecorder(p, cfg.Synthesis.Seed, w.Name)
	opts := []batch.Option{
		batch.WithBaseSeed(cfg.Synthesis.Seed),
		batch.WithIOWorkers(cfg.Workers.IO),
		batch.WithLogger(log),
		batch.WithSynthOptions(cfg.SynthOptions()...),
		batch.WithObserver(batch.Observers{m, rec}),
	}
	if cfg.Workers.Compute > 0 {
		opts = append(opts, batch.WithComputeWorkers(cfg.Workers.Compute))
	}

	d, err := batch.New(p, opts...)
	if err != nil {
		return batch.Summary{}, err
	}
	syn := d.Synthesizer()
	rec.SetSynthesis(cfg.Synthesis.FloorDB, cfg.Synthesis.MaxDuration, syn.Distribution())
	if syn.Envelope().EarlyRateClamped() {
		log.Warn("edt is slower than rt60; early decay raised to the late rate",
			slog.Float64("edt_ms", p.EDT), slog.Float64("rt60_ms", p.RT60))
	}

	s, runErr := d.Run(ctx, w)

	if cfg.Output.Manifest {
		path := filepath.Join(cfg.Output.Folder, manifest.Filename)
		if err := manifest.WriteFile(path, rec.Run()); err != nil {
			log.Error("writing manifest failed", slog.String("path", path), slog.Any("err", err))
		}
	}
	if cfg.Metrics.Textfile != "" {
		if err := m.WriteTextfile(cfg.Metrics.Textfile); err != nil {
			log.Error("writing metrics failed", slog.String("path", cfg.Metrics.Textfile), slog.Any("err", err))
		}
	}

	return s, runErr
}

func ignoreHelp(err error) error {
	if errors.Is(err, errHelp) {
		return nil
	}
	return err
}
