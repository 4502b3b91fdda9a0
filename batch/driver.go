package batch

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-storir/synth"
)

// ErrNilWriter is returned by Run when no writer is given.
var ErrNilWriter = errors.New("batch: writer must not be nil")

// Driver runs every draw of one parameter set.
type Driver struct {
	synth *synth.Synthesizer
	cfg   config
}

// New validates p and the options and prepares the shared synthesizer.
// Invalid parameters are reported here, before any draw is rendered, with an
// error matching synth.ErrInvalidParameter.
func New(p synth.Params, opts ...Option) (*Driver, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	s, err := synth.NewSynthesizer(p, cfg.synthOpts...)
	if err != nil {
		return nil, err
	}

	return &Driver{synth: s, cfg: cfg}, nil
}

// Synthesizer returns the shared synthesizer.
func (d *Driver) Synthesizer() *synth.Synthesizer { return d.synth }

// BaseSeed returns the seed the per-draw seeds derive from.
func (d *Driver) BaseSeed() uint64 { return d.cfg.baseSeed }

// Run renders all draws and writes them with w. Per-draw failures do not
// stop the run; they are listed in the returned Summary. If ctx is cancelled,
// draws not yet written are recorded as failed with the context error and
// Run returns that error alongside the summary.
func (d *Driver) Run(ctx context.Context, w Writer) (Summary, error) {
	if w == nil {
		return Summary{}, ErrNilWriter
	}

	start := time.Now()
	p := d.synth.Params()
	log := d.cfg.logger.With(slog.Int("impulses", p.NumImpulses), slog.Uint64("base_seed", d.cfg.baseSeed))
	log.Info("batch started",
		slog.Int("compute_workers", d.cfg.computeWorkers),
		slog.Int("io_workers", d.cfg.ioWorkers),
		slog.Int("samples", d.synth.Len()))

	rec := &recorder{}
	ready := make(chan Result, d.cfg.ioWorkers)

	var io errgroup.Group
	for range d.cfg.ioWorkers {
		io.Go(func() error {
			for res := range ready {
				d.finish(ctx, log, w, rec, res)
			}
			return nil
		})
	}

	var compute errgroup.Group
	compute.SetLimit(d.cfg.computeWorkers)
	for index := range p.NumImpulses {
		compute.Go(func() error {
			ready <- d.render(ctx, index)
			return nil
		})
	}

	_ = compute.Wait()
	close(ready)
	_ = io.Wait()

	s := rec.summary(p.NumImpulses, time.Since(start))
	log.Info("batch finished",
		slog.Int("succeeded", len(s.Succeeded)),
		slog.Int("failed", len(s.Failed)),
		slog.Int("truncated", len(s.Truncated)),
		slog.Int("silent", len(s.Silent)),
		slog.Duration("elapsed", s.Elapsed))

	return s, ctx.Err()
}

// render synthesizes one draw unless the run is already cancelled.
func (d *Driver) render(ctx context.Context, index int) Result {
	req := d.synth.Request(index, d.cfg.baseSeed)
	res := Result{Index: index, Seed: req.Seed}
	if err := ctx.Err(); err != nil {
		res.Err = err
		return res
	}

	d.cfg.observer.DrawStarted(index)
	began := time.Now()
	buf, err := d.synth.Synthesize(req)
	if err == nil {
		buf, err = synth.Assemble(buf)
	}
	res.Elapsed = time.Since(began)
	res.Buffer = buf
	res.Err = err
	return res
}

// finish writes a rendered draw and records its outcome.
func (d *Driver) finish(ctx context.Context, log *slog.Logger, w Writer, rec *recorder, res Result) {
	if res.Err == nil {
		if err := ctx.Err(); err != nil {
			res.Err = err
		} else {
			res.Err = w.WriteImpulse(ctx, res.Buffer)
		}
	}

	rec.add(res)
	d.cfg.observer.DrawFinished(res)

	attrs := []any{slog.Int("index", res.Index), slog.Uint64("seed", res.Seed)}
	switch {
	case res.Err != nil:
		log.Error("draw failed", append(attrs, slog.Any("err", res.Err))...)
		return
	case res.Buffer.Truncated:
		log.Warn("tail truncated by max duration", append(attrs, slog.Int("samples", len(res.Buffer.Samples)))...)
	case res.Buffer.Silent:
		log.Warn("draw is silent", attrs...)
	}
	log.Debug("draw written", append(attrs,
		slog.Int("samples", len(res.Buffer.Samples)),
		slog.Float64("drr_db", res.Buffer.DRR),
		slog.Duration("elapsed", res.Elapsed))...)
}
