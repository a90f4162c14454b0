package aggregator

import (
	"context"
	"errors"
	"log"

	"service-rates/internal"
	"service-rates/internal/provider"
)

// fetchWithRetry performs up to maxAttempts physical calls against one
// provider and collapses them into a single ledger entry. Only
// provider-unavailable failures are retried; a validation failure or an
// empty answer is terminal on the first call.
func fetchWithRetry(ctx context.Context, p provider.Provider, base internal.CurrencyCode, maxAttempts int) (*internal.RateSnapshot, internal.AggregationAttempt) {
	attempt := internal.AggregationAttempt{Provider: p.Name()}

	var lastErr error
	for try := 1; try <= maxAttempts; try++ {
		attempt.Tries = try

		snap, err := p.FetchLatest(ctx, base)
		if err == nil {
			if snap.IsEmpty() {
				attempt.Outcome = internal.OutcomeEmptyData
				return nil, attempt
			}
			attempt.Outcome = internal.OutcomeSuccess
			return snap, attempt
		}

		if errors.Is(err, internal.ErrValidation) {
			attempt.Outcome = internal.OutcomeFailure
			attempt.Kind = internal.FailureValidation
			attempt.Err = err.Error()
			return nil, attempt
		}

		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}

	log.Printf("aggregator: provider %s failed for base %s after %d tries: %v", p.Name(), base, attempt.Tries, lastErr)

	attempt.Outcome = internal.OutcomeFailure
	attempt.Kind = internal.FailureProviderUnavailable
	attempt.Err = lastErr.Error()
	return nil, attempt
}
