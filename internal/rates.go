package internal

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateSnapshot is the canonical shape every provider adapter produces: one
// base currency and the rates quoted against it at a single observation time.
type RateSnapshot struct {
	Provider   string
	Base       CurrencyCode
	ObservedAt time.Time
	Rates      map[CurrencyCode]decimal.Decimal
}

// NewRateSnapshot normalizes raw upstream entries into the canonical shape:
// codes are uppercased, entries with malformed codes or non-positive rates
// are dropped, and a base self-quote, when the upstream sends one, is pinned
// to exactly 1.
func NewRateSnapshot(provider string, base CurrencyCode, observedAt time.Time, raw map[string]decimal.Decimal) *RateSnapshot {
	rates := make(map[CurrencyCode]decimal.Decimal, len(raw))
	for code, rate := range raw {
		ccy, err := NewCurrencyCode(code)
		if err != nil || !rate.IsPositive() {
			continue
		}
		if ccy == base {
			rates[ccy] = decimal.NewFromInt(1)
			continue
		}
		rates[ccy] = rate
	}
	return &RateSnapshot{
		Provider:   provider,
		Base:       base,
		ObservedAt: observedAt,
		Rates:      rates,
	}
}

// IsEmpty reports whether the snapshot carries no usable rates. An empty
// snapshot means "no data", not an error.
func (s *RateSnapshot) IsEmpty() bool { return s == nil || len(s.Rates) == 0 }

// ExchangeRate is one base/quote observation handed to the rate store.
type ExchangeRate struct {
	Base       CurrencyCode
	Quote      CurrencyCode
	Rate       decimal.Decimal
	Provider   string
	ObservedAt time.Time
}

// StoredRate is the latest persisted quote for a pair as read back from
// storage.
type StoredRate struct {
	Base       CurrencyCode
	Quote      CurrencyCode
	Rate       decimal.Decimal
	Provider   string
	ObservedAt time.Time
	FetchedAt  time.Time
}
