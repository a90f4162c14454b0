package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"service-rates/internal"
	rateshttp "service-rates/internal/api/http/rates"
	"service-rates/internal/aggregator"
	"service-rates/internal/events"
	"service-rates/internal/metrics"
	"service-rates/internal/provider"
	"service-rates/internal/refresh"
	"service-rates/internal/repository/migrations"
	"service-rates/internal/repository/postgresql"
	ratessvc "service-rates/internal/service/rates"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	// env
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// DB
	dbCtx, cancelDB := context.WithTimeout(ctx, 5*time.Second)
	defer cancelDB()

	pool, err := pgxpool.New(dbCtx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to db: %w", err)
	}
	defer pool.Close()

	// storage + migrations
	migrator := migrations.New(pool)
	if err := migrator.Setup(dbCtx); err != nil {
		return fmt.Errorf("ensure tables: %w", err)
	}

	currencyStorage := postgresql.NewCurrencyStorage(pool)
	if err := currencyStorage.EnsureCurrencies(dbCtx, cfg.TrackedCurrencies); err != nil {
		return fmt.Errorf("seed currencies: %w", err)
	}
	rateStorage := postgresql.NewRateStorage(pool)
	runLogStorage := postgresql.NewRunLogStorage(pool)

	// providers: only those with a configured base URL are registered;
	// keyed providers without a key stay registered and answer "no data".
	registry := buildRegistry(cfg)
	agg := aggregator.New(registry, cfg.ProviderOrder, cfg.RetryMaxAttempts)

	opts := refresh.Options{
		Metrics:     metrics.NewRefreshMetrics(),
		AuditLogger: internal.NewStorageRunAuditLogger(runLogStorage),
		Workers:     cfg.RefreshWorkers,
	}
	if len(cfg.KafkaBrokers) > 0 {
		publisher := events.NewKafkaSummaryPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() { _ = publisher.Close() }()
		opts.Publisher = publisher
	}
	orchestrator := refresh.NewOrchestrator(currencyStorage, rateStorage, agg, opts)

	// instant refresh
	if summary, err := orchestrator.Refresh(ctx); err != nil {
		log.Printf("initial refresh failed: %v", err)
	} else {
		log.Printf("initial refresh %s: saved %d rates for %d currencies", summary.RunID, summary.RatesSaved, summary.CurrenciesProcessed)
	}

	// cron
	loc, err := time.LoadLocation(cfg.Location)
	if err != nil {
		return fmt.Errorf("load location %s: %w", cfg.Location, err)
	}
	scheduler := cron.New(
		cron.WithLocation(loc),
		cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow)),
	)

	// HTTP handlers
	ratesService := ratessvc.New(rateStorage)
	ratesHandler := rateshttp.New(ratesService, orchestrator)

	mux := http.NewServeMux()
	ratesHandler.Register(mux)
	mux.Handle("/metrics", promhttp.Handler())

	g, gctx := errgroup.WithContext(ctx)

	_, err = scheduler.AddFunc(cfg.CronSpec, func() {
		if summary, err := orchestrator.Refresh(gctx); err != nil {
			log.Printf("scheduled refresh failed: %v", err)
		} else {
			log.Printf("scheduled refresh %s: saved %d rates for %d currencies", summary.RunID, summary.RatesSaved, summary.CurrenciesProcessed)
		}
	})
	if err != nil {
		return fmt.Errorf("add cron func: %w", err)
	}

	g.Go(func() error {
		return runCron(gctx, scheduler)
	})

	g.Go(func() error {
		return serveHTTP(gctx, ":"+cfg.HTTPPort, mux)
	})

	log.Println("Running. Stop with Ctrl+C / SIGTERM.")
	return g.Wait()
}

func buildRegistry(cfg Config) provider.Registry {
	var providers []provider.Provider

	if cfg.MockA.BaseURL != "" {
		providers = append(providers, provider.NewMockA(cfg.MockA.BaseURL, nil))
	}
	if cfg.MockB.BaseURL != "" {
		providers = append(providers, provider.NewMockB(cfg.MockB.BaseURL, nil))
	}
	if cfg.Fixer.BaseURL != "" {
		providers = append(providers, provider.NewFixer(cfg.Fixer.BaseURL, cfg.Fixer.AccessKey, cfg.FixerPivot, nil))
	}
	if cfg.CurrencyAPI.BaseURL != "" {
		providers = append(providers, provider.NewCurrencyAPI(cfg.CurrencyAPI.BaseURL, cfg.CurrencyAPI.AccessKey, nil))
	}

	if len(providers) == 0 {
		log.Println("no providers configured; refresh runs will record misses only")
	}
	return provider.NewRegistry(providers...)
}

func runCron(ctx context.Context, c *cron.Cron) error {
	c.Start()
	defer func() {
		stopCtx := c.Stop()
		<-stopCtx.Done()
	}()

	<-ctx.Done()
	return nil
}

func serveHTTP(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: h}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	log.Printf("HTTP listening on %s", addr)
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
