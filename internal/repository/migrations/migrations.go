package migrations

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

type Migrations struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Migrations {
	return &Migrations{pool: pool}
}

func (m *Migrations) Setup(ctx context.Context) error {
	if err := m.setupCurrencyTable(ctx); err != nil {
		return fmt.Errorf("setup currency: %w", err)
	}
	if err := m.setupExchangeRateTable(ctx); err != nil {
		return fmt.Errorf("setup exchange_rate: %w", err)
	}
	if err := m.setupRefreshRunLogTable(ctx); err != nil {
		return fmt.Errorf("setup refresh_run_log: %w", err)
	}
	return nil
}

func (m *Migrations) setupCurrencyTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `
create table if not exists currency (
  code       char(3) primary key,
  created_at timestamptz not null default now()
);
`)
	if err != nil {
		return fmt.Errorf("ensure table currency: %w", err)
	}
	return nil
}

func (m *Migrations) setupExchangeRateTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `
create table if not exists exchange_rate (
  base_ccy    char(3) not null,
  quote_ccy   char(3) not null,
  rate        numeric(20, 10) not null,
  provider    text not null,
  observed_at timestamptz not null,
  fetched_at  timestamptz not null default now(),
  primary key (base_ccy, quote_ccy)
);

create index if not exists idx_exchange_rate_fetched_at
  on exchange_rate (fetched_at desc);
`)
	if err != nil {
		return fmt.Errorf("ensure table exchange_rate: %w", err)
	}
	return nil
}

func (m *Migrations) setupRefreshRunLogTable(ctx context.Context) error {
	_, err := m.pool.Exec(ctx, `
create table if not exists refresh_run_log (
  id                   bigserial primary key,
  run_id               text not null,
  started_at           timestamptz not null,
  finished_at          timestamptz not null,
  currencies_in_system integer not null,
  currencies_processed integer not null,
  providers_with_data  integer not null,
  rates_saved          integer not null,
  failures             text[] not null default '{}',
  created_at           timestamptz not null default now()
);

create index if not exists idx_refresh_run_log_created_at
  on refresh_run_log (created_at desc);
`)
	if err != nil {
		return fmt.Errorf("ensure table refresh_run_log: %w", err)
	}
	return nil
}
