package provider

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"

	"service-rates/internal"
)

// MockA talks to the first stub upstream: a plain JSON object with the base,
// an issue timestamp and a flat code-to-rate map.
type MockA struct {
	BaseURL string

	httpClient *http.Client
}

func NewMockA(baseURL string, client *http.Client) *MockA {
	if client == nil {
		client = defaultHTTPClient()
	}
	return &MockA{BaseURL: baseURL, httpClient: client}
}

func (c *MockA) Name() string { return NameMockA }

type mockARates struct {
	Base      string                     `json:"base"`
	Timestamp int64                      `json:"timestamp"`
	Rates     map[string]decimal.Decimal `json:"rates"`
}

func (c *MockA) FetchLatest(ctx context.Context, base internal.CurrencyCode) (*internal.RateSnapshot, error) {
	base, err := normalizeBase(base)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse(c.BaseURL + "/rates")
	if err != nil {
		return nil, fmt.Errorf("%w: parse url: %w", internal.ErrValidation, err)
	}
	q := url.Values{}
	q.Set("base", base.String())
	u.RawQuery = q.Encode()

	var out mockARates
	if err := getJSON(ctx, c.httpClient, u.String(), &out); err != nil {
		return nil, fmt.Errorf("mock-a: %w", err)
	}

	// The upstream timestamp is informational only; freshness is stamped
	// at observation time.
	if out.Timestamp > 0 {
		log.Printf("mock-a: upstream snapshot for %s issued at %s", base, time.Unix(out.Timestamp, 0).UTC().Format(time.RFC3339))
	}

	return internal.NewRateSnapshot(NameMockA, base, time.Now().UTC(), out.Rates), nil
}
