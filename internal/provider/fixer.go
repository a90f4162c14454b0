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

// Cross rates are derived at a fixed scale: 6 fractional digits, rounded
// half away from zero.
const crossRateScale = 6

// Fixer talks to a fixer.io style upstream. The free plan pins every answer
// to one pivot base, so quotes for any other base are derived locally by
// cross-rate division through the pivot.
type Fixer struct {
	BaseURL string

	accessKey  string
	pivot      internal.CurrencyCode
	httpClient *http.Client
}

func NewFixer(baseURL, accessKey string, pivot internal.CurrencyCode, client *http.Client) *Fixer {
	if client == nil {
		client = defaultHTTPClient()
	}
	if pivot.IsBlank() {
		pivot = internal.EUR
	}
	return &Fixer{BaseURL: baseURL, accessKey: accessKey, pivot: pivot, httpClient: client}
}

func (c *Fixer) Name() string { return NameFixer }

type fixerResponse struct {
	Success   bool                       `json:"success"`
	Timestamp int64                      `json:"timestamp"`
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
}

func (c *Fixer) FetchLatest(ctx context.Context, base internal.CurrencyCode) (*internal.RateSnapshot, error) {
	base, err := normalizeBase(base)
	if err != nil {
		return nil, err
	}
	// A keyed upstream without a key is simply absent, never an error.
	if c.accessKey == "" {
		return nil, nil
	}

	u, err := url.Parse(c.BaseURL + "/latest")
	if err != nil {
		return nil, fmt.Errorf("%w: parse url: %w", internal.ErrValidation, err)
	}
	q := url.Values{}
	q.Set("access_key", c.accessKey)
	q.Set("base", c.pivot.String())
	u.RawQuery = q.Encode()

	var out fixerResponse
	if err := getJSON(ctx, c.httpClient, u.String(), &out); err != nil {
		return nil, fmt.Errorf("fixer: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("fixer: %w: upstream reported failure", internal.ErrProviderUnavailable)
	}

	observedAt := time.Now().UTC()
	if out.Timestamp > 0 {
		observedAt = time.Unix(out.Timestamp, 0).UTC()
	}

	pivotSnap := internal.NewRateSnapshot(NameFixer, c.pivot, observedAt, out.Rates)
	if base == c.pivot {
		return pivotSnap, nil
	}
	return c.rebase(pivotSnap, base, observedAt), nil
}

// rebase turns a pivot-based snapshot into one quoted against the requested
// base: rate(base->quote) = rate(pivot->quote) / rate(pivot->base). The
// pivot itself becomes an ordinary quote currency of the result.
func (c *Fixer) rebase(pivotSnap *internal.RateSnapshot, base internal.CurrencyCode, observedAt time.Time) *internal.RateSnapshot {
	baseRate, ok := pivotSnap.Rates[base]
	if !ok || !baseRate.IsPositive() {
		return nil
	}

	derived := make(map[string]decimal.Decimal, len(pivotSnap.Rates))
	derived[c.pivot.String()] = decimal.NewFromInt(1).DivRound(baseRate, crossRateScale)
	for code, rate := range pivotSnap.Rates {
		if code == base || code == c.pivot {
			continue
		}
		derived[code.String()] = rate.DivRound(baseRate, crossRateScale)
	}

	return internal.NewRateSnapshot(NameFixer, base, observedAt, derived)
}
