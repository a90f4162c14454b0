package rates_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-rates/internal"
	"service-rates/internal/service/rates"
)

type fakeStorage struct {
	pairs map[string]*internal.StoredRate
	err   error
}

func (f *fakeStorage) GetPair(_ context.Context, base, quote internal.CurrencyCode) (*internal.StoredRate, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.pairs[fmt.Sprintf("%s/%s", base, quote)], nil
}

func (f *fakeStorage) GetLatest(_ context.Context, base internal.CurrencyCode, quotes []internal.CurrencyCode) ([]internal.StoredRate, error) {
	if f.err != nil {
		return nil, f.err
	}
	narrowed := make(map[internal.CurrencyCode]bool, len(quotes))
	for _, q := range quotes {
		narrowed[q] = true
	}
	var out []internal.StoredRate
	for _, r := range f.pairs {
		if r.Base != base {
			continue
		}
		if len(quotes) > 0 && !narrowed[r.Quote] {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func storedRate(base, quote internal.CurrencyCode, rate string) *internal.StoredRate {
	return &internal.StoredRate{
		Base:       base,
		Quote:      quote,
		Rate:       decimal.RequireFromString(rate),
		Provider:   "mock-a",
		ObservedAt: time.Date(2025, 8, 20, 12, 0, 0, 0, time.UTC),
		FetchedAt:  time.Date(2025, 8, 20, 12, 0, 1, 0, time.UTC),
	}
}

func TestService_GetPairRate_Direct(t *testing.T) {
	st := &fakeStorage{pairs: map[string]*internal.StoredRate{
		"USD/EUR": storedRate(internal.USD, internal.EUR, "0.92"),
	}}
	svc := rates.New(st)

	out, err := svc.GetPairRate(context.Background(), "USD", "EUR")

	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, internal.USD, out.Base)
	assert.Equal(t, internal.EUR, out.Quote)
	assert.Equal(t, "0.92", out.Rate)
	assert.Equal(t, "mock-a", out.Provider)
	assert.False(t, out.Inverted)
}

func TestService_GetPairRate_InvertedFallback(t *testing.T) {
	st := &fakeStorage{pairs: map[string]*internal.StoredRate{
		"EUR/USD": storedRate(internal.EUR, internal.USD, "1.25"),
	}}
	svc := rates.New(st)

	out, err := svc.GetPairRate(context.Background(), "USD", "EUR")

	require.NoError(t, err)
	require.NotNil(t, out)
	assert.Equal(t, internal.USD, out.Base)
	assert.Equal(t, internal.EUR, out.Quote)
	assert.Equal(t, "0.8", out.Rate)
	assert.True(t, out.Inverted)
}

func TestService_GetPairRate_NotAvailable(t *testing.T) {
	svc := rates.New(&fakeStorage{})

	out, err := svc.GetPairRate(context.Background(), "USD", "EUR")

	require.Error(t, err)
	assert.Nil(t, out)

	var biz *internal.BusinessError
	require.True(t, errors.As(err, &biz))
	assert.Equal(t, "rate_not_available", biz.Code)
}

func TestService_GetPairRate_SameCurrency(t *testing.T) {
	svc := rates.New(&fakeStorage{})

	out, err := svc.GetPairRate(context.Background(), "usd", "USD")

	require.Error(t, err)
	assert.Nil(t, out)

	var biz *internal.BusinessError
	require.True(t, errors.As(err, &biz))
	assert.Equal(t, "same_currency", biz.Code)
}

func TestService_GetPairRate_InvalidCurrency(t *testing.T) {
	svc := rates.New(&fakeStorage{})

	out, err := svc.GetPairRate(context.Background(), "u$d", "EUR")

	require.Error(t, err)
	assert.Nil(t, out)

	var biz *internal.BusinessError
	require.True(t, errors.As(err, &biz))
	assert.Equal(t, "invalid_currency", biz.Code)
}

func TestService_ListRates(t *testing.T) {
	st := &fakeStorage{pairs: map[string]*internal.StoredRate{
		"USD/EUR": storedRate(internal.USD, internal.EUR, "0.92"),
		"USD/GBP": storedRate(internal.USD, internal.GBP, "0.79"),
		"EUR/USD": storedRate(internal.EUR, internal.USD, "1.09"),
	}}
	svc := rates.New(st)

	out, err := svc.ListRates(context.Background(), "usd", nil)

	require.NoError(t, err)
	require.Len(t, out, 2)
	for _, r := range out {
		assert.Equal(t, internal.USD, r.Base)
	}
}

func TestService_ListRates_NarrowedQuotes(t *testing.T) {
	st := &fakeStorage{pairs: map[string]*internal.StoredRate{
		"USD/EUR": storedRate(internal.USD, internal.EUR, "0.92"),
		"USD/GBP": storedRate(internal.USD, internal.GBP, "0.79"),
	}}
	svc := rates.New(st)

	out, err := svc.ListRates(context.Background(), "USD", []string{"gbp"})

	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, internal.GBP, out[0].Quote)
	assert.Equal(t, "0.79", out[0].Rate)
}

func TestService_ListRates_InvalidQuote(t *testing.T) {
	svc := rates.New(&fakeStorage{})

	out, err := svc.ListRates(context.Background(), "USD", []string{"nope!"})

	require.Error(t, err)
	assert.Nil(t, out)

	var biz *internal.BusinessError
	require.True(t, errors.As(err, &biz))
	assert.Equal(t, "invalid_currency", biz.Code)
}

func TestService_GetPairRate_StorageError(t *testing.T) {
	svc := rates.New(&fakeStorage{err: errors.New("db down")})

	out, err := svc.GetPairRate(context.Background(), "USD", "EUR")

	require.Error(t, err)
	assert.Nil(t, out)
	assert.Contains(t, err.Error(), "get pair USD/EUR")
}
