package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"service-rates/internal"
)

type RateStorage struct {
	pgpool *pgxpool.Pool
}

func NewRateStorage(pgpool *pgxpool.Pool) *RateStorage {
	return &RateStorage{pgpool: pgpool}
}

// SaveRate upserts one observation; a pair keeps only its newest quote.
func (s *RateStorage) SaveRate(ctx context.Context, rate internal.ExchangeRate) error {
	if rate.Base.IsBlank() || rate.Quote.IsBlank() {
		return fmt.Errorf("base or quote currency is empty")
	}
	if !rate.Rate.IsPositive() {
		return fmt.Errorf("rate %s/%s must be positive, got %s", rate.Base, rate.Quote, rate.Rate)
	}

	observedAt := rate.ObservedAt
	if observedAt.IsZero() {
		observedAt = time.Now().UTC()
	}

	_, err := s.pgpool.Exec(ctx, `
insert into exchange_rate (base_ccy, quote_ccy, rate, provider, observed_at, fetched_at)
values ($1, $2, $3::numeric, $4, $5, now())
on conflict (base_ccy, quote_ccy)
do update set
  rate = excluded.rate,
  provider = excluded.provider,
  observed_at = excluded.observed_at,
  fetched_at = now();
`, rate.Base.String(), rate.Quote.String(), rate.Rate.String(), rate.Provider, observedAt)
	if err != nil {
		return fmt.Errorf("upsert %s/%s=%s: %w", rate.Base, rate.Quote, rate.Rate, err)
	}
	return nil
}

// GetPair returns the stored quote for one pair, or nil when the pair has
// never been saved.
func (s *RateStorage) GetPair(ctx context.Context, base, quote internal.CurrencyCode) (*internal.StoredRate, error) {
	row := s.pgpool.QueryRow(ctx, `
select base_ccy, quote_ccy, rate::text, provider, observed_at, fetched_at
from exchange_rate
where base_ccy = $1 and quote_ccy = $2;
`, base.String(), quote.String())

	stored, err := scanStoredRate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// GetLatest returns the stored quotes for a base. Empty quotes means every
// quote currency saved for that base.
func (s *RateStorage) GetLatest(ctx context.Context, base internal.CurrencyCode, quotes []internal.CurrencyCode) ([]internal.StoredRate, error) {
	if base.IsBlank() {
		return nil, errors.New("base currency is empty")
	}

	query := `
select base_ccy, quote_ccy, rate::text, provider, observed_at, fetched_at
from exchange_rate
where base_ccy = $1
order by quote_ccy;
`
	args := []any{base.String()}

	if len(quotes) > 0 {
		norm := make([]string, 0, len(quotes))
		for _, q := range quotes {
			qs := strings.ToUpper(strings.TrimSpace(q.String()))
			if qs != "" && qs != base.String() {
				norm = append(norm, qs)
			}
		}
		if len(norm) == 0 {
			return []internal.StoredRate{}, nil
		}
		query = `
select base_ccy, quote_ccy, rate::text, provider, observed_at, fetched_at
from exchange_rate
where base_ccy = $1 and quote_ccy = any($2)
order by quote_ccy;
`
		args = append(args, norm)
	}

	rows, err := s.pgpool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query latest rates: %w", err)
	}
	defer rows.Close()

	var out []internal.StoredRate
	for rows.Next() {
		stored, err := scanStoredRate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		out = append(out, stored)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStoredRate(row rowScanner) (internal.StoredRate, error) {
	var (
		bRaw, qRaw, rateText, provider string
		observedAt, fetchedAt          time.Time
	)
	if err := row.Scan(&bRaw, &qRaw, &rateText, &provider, &observedAt, &fetchedAt); err != nil {
		return internal.StoredRate{}, err
	}

	base, err := internal.NewCurrencyCode(strings.TrimSpace(bRaw))
	if err != nil {
		return internal.StoredRate{}, fmt.Errorf("bad base_ccy from db %q: %w", bRaw, err)
	}
	quote, err := internal.NewCurrencyCode(strings.TrimSpace(qRaw))
	if err != nil {
		return internal.StoredRate{}, fmt.Errorf("bad quote_ccy from db %q: %w", qRaw, err)
	}

	rate, err := decimal.NewFromString(strings.TrimSpace(rateText))
	if err != nil {
		return internal.StoredRate{}, fmt.Errorf("parse rate %s/%s=%q: %w", base, quote, rateText, err)
	}

	return internal.StoredRate{
		Base:       base,
		Quote:      quote,
		Rate:       rate,
		Provider:   provider,
		ObservedAt: observedAt,
		FetchedAt:  fetchedAt,
	}, nil
}
