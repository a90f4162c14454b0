package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"service-rates/internal"
)

// CurrencyStorage is the currency directory: the set of codes the system
// tracks and refreshes.
type CurrencyStorage struct {
	pgpool *pgxpool.Pool
}

func NewCurrencyStorage(pgpool *pgxpool.Pool) *CurrencyStorage {
	return &CurrencyStorage{pgpool: pgpool}
}

// ListCurrencies returns every tracked currency in code order.
func (c *CurrencyStorage) ListCurrencies(ctx context.Context) ([]internal.CurrencyCode, error) {
	rows, err := c.pgpool.Query(ctx, `
select code from currency order by code;
`)
	if err != nil {
		return nil, fmt.Errorf("query currencies: %w", err)
	}
	defer rows.Close()

	var out []internal.CurrencyCode
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan: %w", err)
		}
		code, err := internal.NewCurrencyCode(strings.TrimSpace(raw))
		if err != nil {
			return nil, fmt.Errorf("bad code from db %q: %w", raw, err)
		}
		out = append(out, code)
	}
	return out, rows.Err()
}

// EnsureCurrencies seeds the directory with any codes not yet tracked.
// Already-tracked codes are left untouched.
func (c *CurrencyStorage) EnsureCurrencies(ctx context.Context, codes []internal.CurrencyCode) error {
	if len(codes) == 0 {
		return nil
	}

	tx, err := c.pgpool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, code := range codes {
		if code.IsBlank() {
			continue
		}
		_, err := tx.Exec(ctx, `
insert into currency (code)
values ($1)
on conflict (code) do nothing;
`, code.String())
		if err != nil {
			return fmt.Errorf("insert currency %s: %w", code, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}
