// Package aggregator implements ordered provider fallback: for one base
// currency it walks the configured provider order, retrying each provider a
// bounded number of times, and returns the first usable snapshot together
// with a full attempt ledger.
package aggregator

import (
	"context"
	"log"

	"service-rates/internal"
	"service-rates/internal/provider"
)

// Aggregator is stateless after construction and safe for concurrent use
// across different base currencies.
type Aggregator struct {
	registry    provider.Registry
	order       []string
	maxAttempts int
}

// New builds an aggregator over the registered adapters. order is the
// authoritative fallback sequence; names without a registered adapter are
// skipped at call time. maxAttempts below 1 is clamped to 1.
func New(registry provider.Registry, order []string, maxAttempts int) *Aggregator {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &Aggregator{registry: registry, order: order, maxAttempts: maxAttempts}
}

// Aggregate tries the configured providers in order until one yields a
// non-empty snapshot. It never returns an error: every miss and failure is
// recorded in the attempt ledger, and Chosen stays nil when nothing usable
// came back.
func (a *Aggregator) Aggregate(ctx context.Context, base internal.CurrencyCode) internal.AggregationResult {
	result := internal.AggregationResult{
		Attempts: make([]internal.AggregationAttempt, 0, len(a.order)),
	}

	for _, name := range a.order {
		p, ok := a.registry.Lookup(name)
		if !ok {
			log.Printf("aggregator: provider %q is not registered, skipping", name)
			continue
		}

		snap, attempt := fetchWithRetry(ctx, p, base, a.maxAttempts)
		result.Attempts = append(result.Attempts, attempt)

		if attempt.Outcome == internal.OutcomeSuccess {
			result.Chosen = snap
			break
		}
	}

	return result
}
