package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"service-rates/internal"
)

type RunLogStorage struct {
	pgpool *pgxpool.Pool
}

func NewRunLogStorage(pgpool *pgxpool.Pool) *RunLogStorage {
	return &RunLogStorage{pgpool: pgpool}
}

// Insert writes one audit row per completed refresh run.
func (s *RunLogStorage) Insert(ctx context.Context, summary internal.RefreshSummary) error {
	runID := strings.TrimSpace(summary.RunID)
	if runID == "" {
		return fmt.Errorf("run id is empty")
	}

	failures := summary.Failures
	if failures == nil {
		failures = []string{}
	}

	_, err := s.pgpool.Exec(ctx, `
insert into refresh_run_log
  (run_id, started_at, finished_at, currencies_in_system, currencies_processed, providers_with_data, rates_saved, failures)
values ($1, $2, $3, $4, $5, $6, $7, $8);
`, runID, summary.StartedAt, summary.FinishedAt,
		summary.CurrenciesInSystem, summary.CurrenciesProcessed,
		summary.ProvidersWithData, summary.RatesSaved, failures)
	if err != nil {
		return fmt.Errorf("insert refresh_run_log: %w", err)
	}
	return nil
}
