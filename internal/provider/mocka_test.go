package provider_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"service-rates/internal"
	"service-rates/internal/provider"
)

func TestMockA_FetchLatest_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rates", r.URL.Path)
		assert.Equal(t, "USD", r.URL.Query().Get("base"))

		w.Header().Set("Content-Type", "application/json")
		_, err := w.Write([]byte(`{"base":"USD","timestamp":1735171200,"rates":{"EUR":0.92,"GBP":0.79}}`))
		require.NoError(t, err)
	}))
	defer server.Close()

	adapter := provider.NewMockA(server.URL, nil)

	snap, err := adapter.FetchLatest(context.Background(), internal.USD)

	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, provider.NameMockA, snap.Provider)
	assert.Equal(t, internal.USD, snap.Base)
	assert.Len(t, snap.Rates, 2)
	assert.True(t, snap.Rates[internal.EUR].Equal(decimal.RequireFromString("0.92")))
	assert.True(t, snap.Rates[internal.GBP].Equal(decimal.RequireFromString("0.79")))
}

func TestMockA_FetchLatest_PinsBaseSelfQuote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte(`{"base":"USD","rates":{"USD":123.45,"EUR":0.92}}`))
		require.NoError(t, err)
	}))
	defer server.Close()

	adapter := provider.NewMockA(server.URL, nil)

	snap, err := adapter.FetchLatest(context.Background(), internal.USD)

	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.True(t, snap.Rates[internal.USD].Equal(decimal.NewFromInt(1)))
}

func TestMockA_FetchLatest_DropsGarbageEntries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte(`{"base":"USD","rates":{"EUR":0.92,"EURO":1.5,"GBP":-0.1,"JPY":0}}`))
		require.NoError(t, err)
	}))
	defer server.Close()

	adapter := provider.NewMockA(server.URL, nil)

	snap, err := adapter.FetchLatest(context.Background(), internal.USD)

	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Len(t, snap.Rates, 1)
	assert.True(t, snap.Rates[internal.EUR].Equal(decimal.RequireFromString("0.92")))
}

func TestMockA_FetchLatest_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, err := w.Write([]byte("internal server error"))
		require.NoError(t, err)
	}))
	defer server.Close()

	adapter := provider.NewMockA(server.URL, nil)

	snap, err := adapter.FetchLatest(context.Background(), internal.USD)

	require.Error(t, err)
	assert.Nil(t, snap)
	assert.True(t, errors.Is(err, internal.ErrProviderUnavailable))
	assert.Contains(t, err.Error(), "500")
	assert.Contains(t, err.Error(), "internal server error")
}

func TestMockA_FetchLatest_UnparsableBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, err := w.Write([]byte("not json at all"))
		require.NoError(t, err)
	}))
	defer server.Close()

	adapter := provider.NewMockA(server.URL, nil)

	snap, err := adapter.FetchLatest(context.Background(), internal.USD)

	require.Error(t, err)
	assert.Nil(t, snap)
	assert.True(t, errors.Is(err, internal.ErrProviderUnavailable))
}

func TestMockA_FetchLatest_BlankBase(t *testing.T) {
	var calls atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	adapter := provider.NewMockA(server.URL, nil)

	snap, err := adapter.FetchLatest(context.Background(), "  ")

	require.Error(t, err)
	assert.Nil(t, snap)
	assert.True(t, errors.Is(err, internal.ErrValidation))
	assert.Equal(t, int64(0), calls.Load())
}
