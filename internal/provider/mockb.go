package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"service-rates/internal"
)

// MockB talks to the second stub upstream: a success envelope around a list
// of quote objects instead of a flat map.
type MockB struct {
	BaseURL string

	httpClient *http.Client
}

func NewMockB(baseURL string, client *http.Client) *MockB {
	if client == nil {
		client = defaultHTTPClient()
	}
	return &MockB{BaseURL: baseURL, httpClient: client}
}

func (c *MockB) Name() string { return NameMockB }

type mockBResponse struct {
	Success bool         `json:"success"`
	Data    []mockBQuote `json:"data"`
}

type mockBQuote struct {
	CurrencyCode string          `json:"currencyCode"`
	ExchangeRate decimal.Decimal `json:"exchangeRate"`
	Description  string          `json:"description"`
}

func (c *MockB) FetchLatest(ctx context.Context, base internal.CurrencyCode) (*internal.RateSnapshot, error) {
	base, err := normalizeBase(base)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(c.BaseURL + "/api/rates")
	if err != nil {
		return nil, fmt.Errorf("%w: parse url: %w", internal.ErrValidation, err)
	}
	q := url.Values{}
	q.Set("from", base.String())
	u.RawQuery = q.Encode()

	var out mockBResponse
	if err := getJSON(ctx, c.httpClient, u.String(), &out); err != nil {
		return nil, fmt.Errorf("mock-b: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("mock-b: %w: upstream reported failure", internal.ErrProviderUnavailable)
	}

	raw := make(map[string]decimal.Decimal, len(out.Data))
	for _, quote := range out.Data {
		raw[quote.CurrencyCode] = quote.ExchangeRate
	}

	return internal.NewRateSnapshot(NameMockB, base, time.Now().UTC(), raw), nil
}
