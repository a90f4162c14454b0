// Package metrics publishes Prometheus counters for refresh runs. Metrics
// are registered on the default registry at construction, so the struct must
// be built exactly once per process.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"service-rates/internal"
)

// RefreshMetrics groups everything recorded during rate refresh runs.
type RefreshMetrics struct {
	ProviderAttemptsTotal prometheus.CounterVec
	RefreshRunsTotal      prometheus.Counter
	RatesSavedTotal       prometheus.Counter
	CurrencyFailuresTotal prometheus.Counter
	RefreshDuration       prometheus.Histogram
}

func NewRefreshMetrics() *RefreshMetrics {
	return &RefreshMetrics{
		ProviderAttemptsTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "rates_provider_attempts_total",
				Help: "Logical provider attempts by provider name and outcome.",
			},
			[]string{"provider", "outcome"},
		),

		RefreshRunsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rates_refresh_runs_total",
			Help: "Completed refresh runs.",
		}),

		RatesSavedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rates_saved_total",
			Help: "Exchange rate records persisted across all runs.",
		}),

		CurrencyFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "rates_currency_failures_total",
			Help: "Per-currency failures recorded in run summaries.",
		}),

		RefreshDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "rates_refresh_duration_seconds",
			Help:    "Wall time of one full refresh run.",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
	}
}

// RecordAttempt counts one logical provider attempt from the ledger.
func (m *RefreshMetrics) RecordAttempt(provider string, outcome internal.AttemptOutcome) {
	m.ProviderAttemptsTotal.WithLabelValues(provider, string(outcome)).Inc()
}

// RecordRun folds a finished run summary into the run-level counters.
func (m *RefreshMetrics) RecordRun(summary internal.RefreshSummary) {
	m.RefreshRunsTotal.Inc()
	m.RatesSavedTotal.Add(float64(summary.RatesSaved))
	m.CurrencyFailuresTotal.Add(float64(len(summary.Failures)))
	m.RefreshDuration.Observe(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
}
