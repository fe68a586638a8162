package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes Prometheus instruments for the scoring pipeline.
type Recorder struct {
	fetchesTotal  *prometheus.CounterVec
	skipsTotal    *prometheus.CounterVec
	runsTotal     *prometheus.CounterVec
	runDuration   *prometheus.HistogramVec
	symbolsScored *prometheus.GaugeVec
}

// New creates a recorder registered on the default registry.
func New() *Recorder {
	return NewWith(prometheus.DefaultRegisterer)
}

// NewWith creates a recorder registered on reg. Tests pass their own
// registry to avoid duplicate registration.
func NewWith(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		fetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alphascore_fetches_total",
				Help: "Total number of market data fetches",
			},
			[]string{"provider", "outcome"},
		),
		skipsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alphascore_symbols_skipped_total",
				Help: "Total number of symbols skipped during scoring runs",
			},
			[]string{"model", "reason"},
		),
		runsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "alphascore_runs_total",
				Help: "Total number of scoring runs",
			},
			[]string{"model", "status"},
		),
		runDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "alphascore_run_duration_seconds",
				Help:    "Duration of scoring runs in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"model"},
		),
		symbolsScored: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "alphascore_symbols_scored",
				Help: "Number of symbols scored in the latest run",
			},
			[]string{"model"},
		),
	}
}

// RecordFetch records a market data fetch outcome.
func (r *Recorder) RecordFetch(provider, outcome string) {
	r.fetchesTotal.WithLabelValues(provider, outcome).Inc()
}

// RecordSkip records a symbol skipped during a run.
func (r *Recorder) RecordSkip(model, reason string) {
	r.skipsTotal.WithLabelValues(model, reason).Inc()
}

// RecordRun records a completed or failed run with its duration.
func (r *Recorder) RecordRun(model, status string, seconds float64) {
	r.runsTotal.WithLabelValues(model, status).Inc()
	r.runDuration.WithLabelValues(model).Observe(seconds)
}

// SetSymbolsScored records how many symbols the latest run scored.
func (r *Recorder) SetSymbolsScored(model string, count int) {
	r.symbolsScored.WithLabelValues(model).Set(float64(count))
}
