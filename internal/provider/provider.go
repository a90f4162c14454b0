// Package provider holds the upstream rate-source adapters. Every adapter
// speaks one upstream's wire format and translates it into the canonical
// internal.RateSnapshot shape; nothing upstream-specific leaks past this
// package.
package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"service-rates/internal"
)

const maxBodyBytes = 32 << 10

// Provider names, used for registry lookups and the configured fallback
// order. Wired explicitly; nothing discovers providers at runtime.
const (
	NameMockA       = "mock-a"
	NameMockB       = "mock-b"
	NameFixer       = "fixer"
	NameCurrencyAPI = "currency-api"
)

// Provider is one upstream rate source. FetchLatest returns the canonical
// snapshot for the requested base, or (nil, nil) when the adapter has no data
// to offer — an unconfigured access key, or an upstream answer without a
// single usable entry for that base. Adapters are stateless after
// construction and safe for concurrent use.
type Provider interface {
	Name() string
	FetchLatest(ctx context.Context, base internal.CurrencyCode) (*internal.RateSnapshot, error)
}

// Registry holds the constructed adapters keyed by provider name.
type Registry map[string]Provider

func NewRegistry(providers ...Provider) Registry {
	r := make(Registry, len(providers))
	for _, p := range providers {
		r[p.Name()] = p
	}
	return r
}

func (r Registry) Lookup(name string) (Provider, bool) {
	p, ok := r[name]
	return p, ok
}

func defaultHTTPClient() *http.Client {
	return &http.Client{Timeout: 20 * time.Second}
}

// normalizeBase rejects blank or malformed base codes before any network
// call; that class of failure belongs to the caller, not the upstream.
func normalizeBase(base internal.CurrencyCode) (internal.CurrencyCode, error) {
	if base.IsBlank() {
		return "", fmt.Errorf("%w: base currency is blank", internal.ErrValidation)
	}
	ccy, err := internal.NewCurrencyCode(base.String())
	if err != nil {
		return "", fmt.Errorf("%w: %v", internal.ErrValidation, err)
	}
	return ccy, nil
}

// getJSON performs one GET and decodes the body. Transport errors, non-2xx
// statuses and undecodable bodies all classify as provider-unavailable.
func getJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: new request: %w", internal.ErrProviderUnavailable, err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: do request: %w", internal.ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: read response body: %w", internal.ErrProviderUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: http %d: %s", internal.ErrProviderUnavailable, resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: unmarshal response: %w", internal.ErrProviderUnavailable, err)
	}
	return nil
}
