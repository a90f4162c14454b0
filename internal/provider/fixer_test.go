package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-rates/internal"
	"service-rates/internal/provider"
)

func TestFixer_FetchLatest_CrossRateDerivation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("access_key"))
		assert.Equal(t, "EUR", r.URL.Query().Get("base"))

		_, err := w.Write([]byte(`{"success":true,"timestamp":1735171200,"base":"EUR","rates":{"USD":1.1,"GBP":0.8}}`))
		require.NoError(t, err)
	}))
	defer server.Close()

	adapter := provider.NewFixer(server.URL, "test-key", internal.EUR, nil)

	snap, err := adapter.FetchLatest(context.Background(), internal.USD)

	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, provider.NameFixer, snap.Provider)
	assert.Equal(t, internal.USD, snap.Base)
	assert.Equal(t, time.Unix(1735171200, 0).UTC(), snap.ObservedAt)

	// 1 / 1.1 and 0.8 / 1.1 at six fractional digits.
	assert.True(t, snap.Rates[internal.EUR].Equal(decimal.RequireFromString("0.909091")))
	assert.True(t, snap.Rates[internal.GBP].Equal(decimal.RequireFromString("0.727273")))
	_, hasUSD := snap.Rates[internal.USD]
	assert.False(t, hasUSD)
}

func TestFixer_FetchLatest_BaseEqualsPivot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte(`{"success":true,"base":"EUR","rates":{"USD":1.1,"GBP":0.8}}`))
		require.NoError(t, err)
	}))
	defer server.Close()

	adapter := provider.NewFixer(server.URL, "test-key", internal.EUR, nil)

	snap, err := adapter.FetchLatest(context.Background(), internal.EUR)

	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, internal.EUR, snap.Base)
	assert.True(t, snap.Rates[internal.USD].Equal(decimal.RequireFromString("1.1")))
	assert.True(t, snap.Rates[internal.GBP].Equal(decimal.RequireFromString("0.8")))
}

func TestFixer_FetchLatest_NoAccessKey(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	adapter := provider.NewFixer(server.URL, "", internal.EUR, nil)

	snap, err := adapter.FetchLatest(context.Background(), internal.USD)

	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
	assert.Equal(t, int64(0), calls.Load())
}

func TestFixer_FetchLatest_PivotRateMissing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte(`{"success":true,"base":"EUR","rates":{"GBP":0.8}}`))
		require.NoError(t, err)
	}))
	defer server.Close()

	adapter := provider.NewFixer(server.URL, "test-key", internal.EUR, nil)

	snap, err := adapter.FetchLatest(context.Background(), internal.USD)

	require.NoError(t, err)
	assert.True(t, snap.IsEmpty())
}

func TestFixer_FetchLatest_UpstreamFailureFlag(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte(`{"success":false}`))
		require.NoError(t, err)
	}))
	defer server.Close()

	adapter := provider.NewFixer(server.URL, "test-key", internal.EUR, nil)

	snap, err := adapter.FetchLatest(context.Background(), internal.USD)

	require.Error(t, err)
	assert.Nil(t, snap)
	assert.True(t, errors.Is(err, internal.ErrProviderUnavailable))
}
