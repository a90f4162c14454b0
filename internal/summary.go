package internal

import "time"

// RefreshSummary is the auditable outcome of one full refresh run across
// every tracked currency. It is built once per run and reported (logged,
// recorded, published), never mutated afterwards.
type RefreshSummary struct {
	RunID               string    `json:"run_id"`
	StartedAt           time.Time `json:"started_at"`
	FinishedAt          time.Time `json:"finished_at"`
	CurrenciesInSystem  int       `json:"currencies_in_system"`
	CurrenciesProcessed int       `json:"currencies_processed"`
	ProvidersWithData   int       `json:"providers_with_data"`
	RatesSaved          int       `json:"rates_saved"`
	Failures            []string  `json:"failures"`
}
