package rates

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"service-rates/internal"
)

// Inverse quotes are derived at the same scale as provider cross rates:
// 6 fractional digits, rounded half away from zero.
const inverseScale = 6

type Storage interface {
	GetPair(ctx context.Context, base, quote internal.CurrencyCode) (*internal.StoredRate, error)
	GetLatest(ctx context.Context, base internal.CurrencyCode, quotes []internal.CurrencyCode) ([]internal.StoredRate, error)
}

type Service struct {
	st Storage
}

func New(st Storage) *Service { return &Service{st: st} }

// PairRate is the API shape for one stored quote.
type PairRate struct {
	Base       internal.CurrencyCode `json:"base"`
	Quote      internal.CurrencyCode `json:"quote"`
	Rate       string                `json:"rate"`
	Provider   string                `json:"provider"`
	ObservedAt time.Time             `json:"observed_at"`
	Inverted   bool                  `json:"inverted,omitempty"`
}

// GetPairRate serves base/quote from storage, falling back to the inverted
// quote/base rate when only the opposite direction was saved.
func (s *Service) GetPairRate(ctx context.Context, baseRaw, quoteRaw string) (*PairRate, error) {
	base, err := internal.NewCurrencyCode(baseRaw)
	if err != nil {
		return nil, internal.BizError("invalid_currency", err.Error())
	}
	quote, err := internal.NewCurrencyCode(quoteRaw)
	if err != nil {
		return nil, internal.BizError("invalid_currency", err.Error())
	}
	if base == quote {
		return nil, internal.BizError("same_currency", "base and quote must be different")
	}

	direct, err := s.st.GetPair(ctx, base, quote)
	if err != nil {
		return nil, fmt.Errorf("get pair %s/%s: %w", base, quote, err)
	}
	if direct != nil {
		return &PairRate{
			Base:       base,
			Quote:      quote,
			Rate:       direct.Rate.String(),
			Provider:   direct.Provider,
			ObservedAt: direct.ObservedAt,
		}, nil
	}

	inverse, err := s.st.GetPair(ctx, quote, base)
	if err != nil {
		return nil, fmt.Errorf("get pair %s/%s: %w", quote, base, err)
	}
	if inverse == nil || !inverse.Rate.IsPositive() {
		return nil, internal.BizError("rate_not_available", fmt.Sprintf("no stored rate for %s/%s", base, quote))
	}

	inverted := decimal.NewFromInt(1).DivRound(inverse.Rate, inverseScale)
	return &PairRate{
		Base:       base,
		Quote:      quote,
		Rate:       inverted.String(),
		Provider:   inverse.Provider,
		ObservedAt: inverse.ObservedAt,
		Inverted:   true,
	}, nil
}

// ListRates returns every stored quote for a base, optionally narrowed to
// the requested quote currencies. Only directly stored quotes are listed;
// the inverted fallback applies to single-pair lookups.
func (s *Service) ListRates(ctx context.Context, baseRaw string, quotesRaw []string) ([]PairRate, error) {
	base, err := internal.NewCurrencyCode(baseRaw)
	if err != nil {
		return nil, internal.BizError("invalid_currency", err.Error())
	}

	quotes := make([]internal.CurrencyCode, 0, len(quotesRaw))
	for _, raw := range quotesRaw {
		quote, err := internal.NewCurrencyCode(raw)
		if err != nil {
			return nil, internal.BizError("invalid_currency", err.Error())
		}
		quotes = append(quotes, quote)
	}

	stored, err := s.st.GetLatest(ctx, base, quotes)
	if err != nil {
		return nil, fmt.Errorf("list rates for %s: %w", base, err)
	}

	out := make([]PairRate, 0, len(stored))
	for _, r := range stored {
		out = append(out, PairRate{
			Base:       r.Base,
			Quote:      r.Quote,
			Rate:       r.Rate.String(),
			Provider:   r.Provider,
			ObservedAt: r.ObservedAt,
		})
	}
	return out, nil
}
