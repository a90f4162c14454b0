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

// CurrencyAPI talks to a keyed upstream that honors the requested base
// directly. Without an access key configured the adapter stays silent: it
// reports no data instead of failing, so deployments can omit the paid plan.
type CurrencyAPI struct {
	BaseURL string

	accessKey  string
	httpClient *http.Client
}

func NewCurrencyAPI(baseURL, accessKey string, client *http.Client) *CurrencyAPI {
	if client == nil {
		client = defaultHTTPClient()
	}
	return &CurrencyAPI{BaseURL: baseURL, accessKey: accessKey, httpClient: client}
}

func (c *CurrencyAPI) Name() string { return NameCurrencyAPI }

type currencyAPIResponse struct {
	Success   bool                       `json:"success"`
	Timestamp int64                      `json:"timestamp"`
	Base      string                     `json:"base"`
	Rates     map[string]decimal.Decimal `json:"rates"`
}

func (c *CurrencyAPI) FetchLatest(ctx context.Context, base internal.CurrencyCode) (*internal.RateSnapshot, error) {
	base, err := normalizeBase(base)
	if err != nil {
		return nil, err
	}
	if c.accessKey == "" {
		return nil, nil
	}

	u, err := url.Parse(c.BaseURL + "/latest")
	if err != nil {
		return nil, fmt.Errorf("%w: parse url: %w", internal.ErrValidation, err)
	}
	q := url.Values{}
	q.Set("access_key", c.accessKey)
	q.Set("base", base.String())
	u.RawQuery = q.Encode()

	var out currencyAPIResponse
	if err := getJSON(ctx, c.httpClient, u.String(), &out); err != nil {
		return nil, fmt.Errorf("currency-api: %w", err)
	}
	if !out.Success {
		return nil, fmt.Errorf("currency-api: %w: upstream reported failure", internal.ErrProviderUnavailable)
	}

	observedAt := time.Now().UTC()
	if out.Timestamp > 0 {
		observedAt = time.Unix(out.Timestamp, 0).UTC()
	}

	return internal.NewRateSnapshot(NameCurrencyAPI, base, observedAt, out.Rates), nil
}
