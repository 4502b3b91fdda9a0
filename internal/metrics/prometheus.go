// Package metrics exposes batch statistics as Prometheus metrics. Each
// Metrics value owns a private registry, so runs in one process do not
// share counters.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/cwbudde/algo-storir/batch"
)

// Metrics contains all Prometheus metrics of a synthesis run.
type Metrics struct {
	registry *prometheus.Registry

	mu      sync.Mutex
	running map[int]struct{}

	DrawsStarted   prometheus.Counter
	DrawsInFlight  prometheus.Gauge
	Draws          *prometheus.CounterVec // by status
	Truncations    prometheus.Counter
	ThinnedDraws   prometheus.Counter
	SynthDuration  prometheus.Histogram
	ResponseLength prometheus.Histogram
}

// New creates the metrics on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		running:  make(map[int]struct{}),

		DrawsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "storir_draws_started_total",
			Help: "Total number of draws whose synthesis started",
		}),
		DrawsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "storir_draws_in_flight",
			Help: "Number of draws started but not yet finished",
		}),
		Draws: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "storir_draws_total",
			Help: "Total number of finished draws by status",
		}, []string{"status"}),
		Truncations: factory.NewCounter(prometheus.CounterOpts{
			Name: "storir_truncations_total",
			Help: "Total number of tails cut by the max-duration safeguard",
		}),
		ThinnedDraws: factory.NewCounter(prometheus.CounterOpts{
			Name: "storir_thinned_draws_total",
			Help: "Total number of draws thinned towards the target DRR",
		}),
		SynthDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "storir_synthesis_duration_seconds",
			Help:    "Time spent synthesizing one draw",
			Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 100µs to ~1.6s
		}),
		ResponseLength: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "storir_response_length_seconds",
			Help:    "Length of rendered impulse responses",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 9), // 50ms to ~13s
		}),
	}
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// DrawStarted implements batch.Observer.
func (m *Metrics) DrawStarted(index int) {
	m.mu.Lock()
	m.running[index] = struct{}{}
	m.mu.Unlock()

	m.DrawsStarted.Inc()
	m.DrawsInFlight.Inc()
}

// DrawFinished implements batch.Observer. Draws cancelled before synthesis
// never started and do not touch the in-flight gauge.
func (m *Metrics) DrawFinished(r batch.Result) {
	m.Draws.WithLabelValues(string(r.Status())).Inc()

	m.mu.Lock()
	_, ok := m.running[r.Index]
	delete(m.running, r.Index)
	m.mu.Unlock()
	if ok {
		m.DrawsInFlight.Dec()
	}
	if len(r.Buffer.Samples) == 0 {
		return
	}

	m.SynthDuration.Observe(r.Elapsed.Seconds())
	m.ResponseLength.Observe(r.Buffer.Duration().Seconds())
	if r.Buffer.Truncated {
		m.Truncations.Inc()
	}
	if r.Buffer.Thinned {
		m.ThinnedDraws.Inc()
	}
}

// WriteTextfile writes the metrics in the text exposition format for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
