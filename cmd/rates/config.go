package main

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"service-rates/internal"
)

type ProviderConfig struct {
	BaseURL   string
	AccessKey string
}

type Config struct {
	DatabaseURL string
	HTTPPort    string

	TrackedCurrencies []internal.CurrencyCode
	ProviderOrder     []string
	RetryMaxAttempts  int
	RefreshWorkers    int

	CronSpec string
	Location string

	MockA       ProviderConfig
	MockB       ProviderConfig
	Fixer       ProviderConfig
	FixerPivot  internal.CurrencyCode
	CurrencyAPI ProviderConfig

	KafkaBrokers []string
	KafkaTopic   string
}

func LoadConfig() (Config, error) {
	if err := godotenv.Overload(); err != nil {
		log.Println("no .env file loaded")
	}

	cfg := Config{
		HTTPPort:          "8080",
		TrackedCurrencies: []internal.CurrencyCode{internal.USD, internal.EUR, internal.GBP, internal.JPY},
		ProviderOrder:     []string{"mock-a", "mock-b", "fixer", "currency-api"},
		RetryMaxAttempts:  3,
		RefreshWorkers:    4,
		CronSpec:          "0 12 * * *",
		Location:          "UTC",
		FixerPivot:        internal.EUR,
		KafkaTopic:        "rates.refresh.summary",
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is empty")
	}

	if p := strings.TrimSpace(os.Getenv("PORT")); p != "" {
		cfg.HTTPPort = p
	}

	if raw := strings.TrimSpace(os.Getenv("TRACKED_CURRENCIES")); raw != "" {
		codes, err := parseCurrencyList(raw)
		if err != nil {
			return Config{}, fmt.Errorf("TRACKED_CURRENCIES: %w", err)
		}
		cfg.TrackedCurrencies = codes
	}

	if raw := strings.TrimSpace(os.Getenv("PROVIDER_ORDER")); raw != "" {
		cfg.ProviderOrder = splitList(raw)
	}

	if raw := strings.TrimSpace(os.Getenv("RETRY_MAX_ATTEMPTS")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("RETRY_MAX_ATTEMPTS must be an integer >= 1, got %q", raw)
		}
		cfg.RetryMaxAttempts = n
	}

	if raw := strings.TrimSpace(os.Getenv("REFRESH_WORKERS")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return Config{}, fmt.Errorf("REFRESH_WORKERS must be an integer >= 1, got %q", raw)
		}
		cfg.RefreshWorkers = n
	}

	if raw := strings.TrimSpace(os.Getenv("CRON_SPEC")); raw != "" {
		cfg.CronSpec = raw
	}
	if raw := strings.TrimSpace(os.Getenv("LOCATION")); raw != "" {
		cfg.Location = raw
	}

	cfg.MockA.BaseURL = strings.TrimSpace(os.Getenv("MOCK_A_BASE_URL"))
	cfg.MockB.BaseURL = strings.TrimSpace(os.Getenv("MOCK_B_BASE_URL"))
	cfg.Fixer.BaseURL = strings.TrimSpace(os.Getenv("FIXER_BASE_URL"))
	cfg.Fixer.AccessKey = strings.TrimSpace(os.Getenv("FIXER_ACCESS_KEY"))
	cfg.CurrencyAPI.BaseURL = strings.TrimSpace(os.Getenv("CURRENCY_API_BASE_URL"))
	cfg.CurrencyAPI.AccessKey = strings.TrimSpace(os.Getenv("CURRENCY_API_ACCESS_KEY"))

	if raw := strings.TrimSpace(os.Getenv("FIXER_PIVOT")); raw != "" {
		pivot, err := internal.NewCurrencyCode(raw)
		if err != nil {
			return Config{}, fmt.Errorf("FIXER_PIVOT: %w", err)
		}
		cfg.FixerPivot = pivot
	}

	if raw := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); raw != "" {
		cfg.KafkaBrokers = splitList(raw)
	}
	if raw := strings.TrimSpace(os.Getenv("KAFKA_TOPIC")); raw != "" {
		cfg.KafkaTopic = raw
	}

	return cfg, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func parseCurrencyList(raw string) ([]internal.CurrencyCode, error) {
	parts := splitList(raw)
	out := make([]internal.CurrencyCode, 0, len(parts))
	for _, p := range parts {
		code, err := internal.NewCurrencyCode(p)
		if err != nil {
			return nil, err
		}
		out = append(out, code)
	}
	return out, nil
}
