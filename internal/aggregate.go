package internal

// AttemptOutcome tags the result of one logical provider attempt.
type AttemptOutcome string

const (
	OutcomeSuccess   AttemptOutcome = "success"
	OutcomeEmptyData AttemptOutcome = "empty_data"
	OutcomeFailure   AttemptOutcome = "failure"
)

// FailureKind classifies a failed attempt.
type FailureKind string

const (
	FailureValidation          FailureKind = "validation"
	FailureProviderUnavailable FailureKind = "provider_unavailable"
)

// AggregationAttempt is one ledger entry: a single provider's logical outcome
// for one aggregation call. Physical retries collapse into one entry; Tries
// records how many calls that took. Immutable once recorded.
type AggregationAttempt struct {
	Provider string         `json:"provider"`
	Outcome  AttemptOutcome `json:"outcome"`
	Kind     FailureKind    `json:"kind,omitempty"`
	Err      string         `json:"error,omitempty"`
	Tries    int            `json:"tries"`
}

// AggregationResult is the outcome of one ordered fallback pass across the
// configured providers for a single base currency. Chosen is nil when no
// provider returned usable rates; Attempts always holds one entry per
// provider actually tried, in configuration order.
type AggregationResult struct {
	Chosen   *RateSnapshot
	Attempts []AggregationAttempt
}
