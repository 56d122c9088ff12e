// Package wbmetrics exposes a Prometheus registry for the batch engine,
// following internal/interfaces/http.MetricsRegistry's
// promauto-free NewXVec-plus-MustRegister shape adapted to the engine's own
// phases and categories instead of the scanner's pipeline steps.
package wbmetrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every metric the engine records during a RunDate call.
type Registry struct {
	RowsPersisted     *prometheus.CounterVec
	PersistFailures   *prometheus.CounterVec
	TickerFailures    *prometheus.CounterVec
	ExternalCalls     *prometheus.CounterVec
	PhaseDuration     *prometheus.HistogramVec
	TickersAnalyzed   prometheus.Gauge
	LastRunTimestamp  prometheus.Gauge
}

// New builds and registers a Registry against the given Prometheus registerer.
// Passing prometheus.NewRegistry() keeps test instances isolated from the
// global DefaultRegisterer; production callers pass prometheus.DefaultRegisterer.
func New(reg prometheus.Registerer) *Registry {
	r := &Registry{
		RowsPersisted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whaleback_rows_persisted_total",
				Help: "Total number of snapshot rows upserted, by category",
			},
			[]string{"category"},
		),
		PersistFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whaleback_persist_batch_failures_total",
				Help: "Total number of batch upsert failures, by category",
			},
			[]string{"category"},
		),
		TickerFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whaleback_ticker_failures_total",
				Help: "Total number of per-ticker pipeline failures, by stage",
			},
			[]string{"stage"},
		),
		ExternalCalls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "whaleback_external_calls_total",
				Help: "Total external collaborator calls, by collaborator and outcome",
			},
			[]string{"collaborator", "outcome"},
		),
		PhaseDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "whaleback_phase_duration_seconds",
				Help:    "Duration of each compute_analysis phase in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300, 600},
			},
			[]string{"phase"},
		),
		TickersAnalyzed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "whaleback_tickers_analyzed",
				Help: "Number of tickers analyzed in the most recent run",
			},
		),
		LastRunTimestamp: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "whaleback_last_run_timestamp_seconds",
				Help: "Unix timestamp of the most recently completed run",
			},
		),
	}

	reg.MustRegister(
		r.RowsPersisted, r.PersistFailures, r.TickerFailures,
		r.ExternalCalls, r.PhaseDuration, r.TickersAnalyzed, r.LastRunTimestamp,
	)
	return r
}

// ObservePhase records a phase's wall-clock duration in seconds.
func (r *Registry) ObservePhase(phase string, seconds float64) {
	r.PhaseDuration.WithLabelValues(phase).Observe(seconds)
}

// RecordExternalCall tallies one external collaborator call outcome
// ("success", "retry", "failure").
func (r *Registry) RecordExternalCall(collaborator, outcome string) {
	r.ExternalCalls.WithLabelValues(collaborator, outcome).Inc()
}

// Handler returns the standard Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
