// Package refresh drives one full rate-refresh pass: every currency the
// system tracks is aggregated as a base, chosen snapshots are persisted, and
// the whole run folds into one auditable summary.
package refresh

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"service-rates/internal"
	"service-rates/internal/metrics"
)

const defaultWorkers = 4

// CurrencyDirectory reports the currencies the system currently tracks.
type CurrencyDirectory interface {
	ListCurrencies(ctx context.Context) ([]internal.CurrencyCode, error)
}

// RateStore persists one exchange-rate observation per call. Write atomicity
// per record is the store's responsibility.
type RateStore interface {
	SaveRate(ctx context.Context, rate internal.ExchangeRate) error
}

// RateAggregator runs the ordered provider fallback for one base currency.
type RateAggregator interface {
	Aggregate(ctx context.Context, base internal.CurrencyCode) internal.AggregationResult
}

// SummaryPublisher pushes a finished run summary onto an event stream.
type SummaryPublisher interface {
	PublishSummary(ctx context.Context, summary internal.RefreshSummary) error
}

// Options carries the optional collaborators and tuning knobs. Every field
// may be left zero: nil collaborators are skipped, zero Workers falls back
// to a small default.
type Options struct {
	Metrics     *metrics.RefreshMetrics
	AuditLogger internal.RunAuditLogger
	Publisher   SummaryPublisher
	Workers     int
}

// Orchestrator owns the per-run fan-out across currencies. It decides what a
// run does, never when it happens; scheduling belongs to the caller.
type Orchestrator struct {
	directory  CurrencyDirectory
	store      RateStore
	aggregator RateAggregator

	metrics     *metrics.RefreshMetrics
	auditLogger internal.RunAuditLogger
	publisher   SummaryPublisher
	workers     int
}

func NewOrchestrator(directory CurrencyDirectory, store RateStore, aggregator RateAggregator, opts Options) *Orchestrator {
	workers := opts.Workers
	if workers < 1 {
		workers = defaultWorkers
	}
	return &Orchestrator{
		directory:   directory,
		store:       store,
		aggregator:  aggregator,
		metrics:     opts.Metrics,
		auditLogger: opts.AuditLogger,
		publisher:   opts.Publisher,
		workers:     workers,
	}
}

// Refresh runs one full pass over every tracked currency and returns the run
// summary. A currency that fails degrades the summary but never aborts the
// run; the only error returns are a failed currency listing and caller
// cancellation. On cancellation the partial summary is discarded.
func (o *Orchestrator) Refresh(ctx context.Context) (internal.RefreshSummary, error) {
	currencies, err := o.directory.ListCurrencies(ctx)
	if err != nil {
		return internal.RefreshSummary{}, fmt.Errorf("list currencies: %w", err)
	}

	summary := internal.RefreshSummary{
		RunID:              uuid.NewString(),
		StartedAt:          time.Now().UTC(),
		CurrenciesInSystem: len(currencies),
		Failures:           []string{},
	}

	known := make(map[internal.CurrencyCode]struct{}, len(currencies))
	for _, c := range currencies {
		known[c] = struct{}{}
	}

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(o.workers)

	for _, base := range currencies {
		base := base
		g.Go(func() error {
			// In-flight currencies may finish, new ones must not start.
			if ctx.Err() != nil {
				return nil
			}

			outcome := o.refreshOne(ctx, base, known)

			mu.Lock()
			defer mu.Unlock()
			summary.CurrenciesProcessed++
			summary.RatesSaved += outcome.saved
			if outcome.hadData {
				summary.ProvidersWithData++
			}
			if outcome.failure != "" {
				summary.Failures = append(summary.Failures, outcome.failure)
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return internal.RefreshSummary{}, err
	}

	summary.FinishedAt = time.Now().UTC()
	o.report(ctx, summary)
	return summary, nil
}

type currencyOutcome struct {
	saved   int
	hadData bool
	failure string
}

// refreshOne aggregates one base currency and persists every chosen rate
// whose quote currency is also tracked. The first persistence error stops
// this currency and becomes its single failure line.
func (o *Orchestrator) refreshOne(ctx context.Context, base internal.CurrencyCode, known map[internal.CurrencyCode]struct{}) currencyOutcome {
	result := o.aggregator.Aggregate(ctx, base)

	if o.metrics != nil {
		for _, attempt := range result.Attempts {
			o.metrics.RecordAttempt(attempt.Provider, attempt.Outcome)
		}
	}

	if result.Chosen == nil {
		failure := fmt.Sprintf("%s: no usable rates: %s", base, describeAttempts(result.Attempts))
		log.Printf("refresh: %s", failure)
		return currencyOutcome{failure: failure}
	}

	chosen := result.Chosen
	out := currencyOutcome{hadData: true}
	for quote, rate := range chosen.Rates {
		if _, ok := known[quote]; !ok {
			continue
		}

		record := internal.ExchangeRate{
			Base:       base,
			Quote:      quote,
			Rate:       rate,
			Provider:   chosen.Provider,
			ObservedAt: chosen.ObservedAt,
		}
		if err := o.store.SaveRate(ctx, record); err != nil {
			out.failure = fmt.Sprintf("%s: save rate %s/%s from %s: %v", base, base, quote, chosen.Provider, err)
			log.Printf("refresh: %s", out.failure)
			return out
		}
		out.saved++
	}
	return out
}

func (o *Orchestrator) report(ctx context.Context, summary internal.RefreshSummary) {
	log.Printf("refresh run %s finished: processed %d/%d currencies, saved %d rates, %d failures",
		summary.RunID, summary.CurrenciesProcessed, summary.CurrenciesInSystem, summary.RatesSaved, len(summary.Failures))

	if o.metrics != nil {
		o.metrics.RecordRun(summary)
	}
	if o.auditLogger != nil {
		if err := o.auditLogger.LogRun(ctx, summary); err != nil {
			log.Printf("refresh run %s: log run: %v", summary.RunID, err)
		}
	}
	if o.publisher != nil {
		if err := o.publisher.PublishSummary(ctx, summary); err != nil {
			log.Printf("refresh run %s: publish summary: %v", summary.RunID, err)
		}
	}
}

func describeAttempts(attempts []internal.AggregationAttempt) string {
	if len(attempts) == 0 {
		return "no providers configured"
	}
	parts := make([]string, 0, len(attempts))
	for _, a := range attempts {
		if a.Outcome == internal.OutcomeFailure {
			parts = append(parts, fmt.Sprintf("%s: %s", a.Provider, a.Err))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", a.Provider, a.Outcome))
	}
	return strings.Join(parts, "; ")
}
