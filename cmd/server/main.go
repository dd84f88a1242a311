// Package main runs the finance gateway HTTP server
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"finance-gateway/analysis"
	"finance-gateway/config"
	"finance-gateway/internal/api"
	"finance-gateway/internal/app"
	"finance-gateway/observability"
	"finance-gateway/repository"
	"finance-gateway/services"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present; real deployments set the environment directly
	_ = godotenv.Load()

	production := os.Getenv("ENVIRONMENT") == "production"
	observability.InitLogger(production)
	observability.InitMetrics()

	cfg, err := config.Load()
	if err != nil {
		observability.Fatal("invalid configuration", "error", err)
	}

	ctx := context.Background()

	// The cache backend is Postgres when a database is configured, otherwise
	// an in-process map. Both honor the same TTL.
	var (
		cache services.QuoteCache
		repo  *repository.Repository
	)
	if cfg.HasDatabase() {
		repo, err = repository.NewRepository(ctx, cfg.Database.URL)
		if err != nil {
			observability.Fatal("failed to connect to database", "error", err)
		}
		if err := repo.EnsureSchema(ctx); err != nil {
			observability.Fatal("failed to prepare database schema", "error", err)
		}
		cache = repository.NewPostgresCache(repo, cfg.Cache.TTL())
		observability.Info("using postgres cache backend", "ttl", cfg.Cache.TTL().String())
	} else {
		cache = services.NewMemoryCache(cfg.Cache.TTL())
		observability.Info("using in-memory cache backend", "ttl", cfg.Cache.TTL().String())
	}

	// Sources in priority order. FMP and Alpha Vantage report themselves
	// unconfigured without credentials; Yahoo needs none.
	sources := []services.DataSource{
		services.NewFMPService(cfg.FMP.APIKey),
		services.NewAlphaVantageService(cfg.AlphaVantage.APIKey),
		services.NewYahooFinanceService(),
	}
	observability.Info("data sources configured",
		"fmp", cfg.HasFMP(), "alpha_vantage", cfg.HasAlphaVantage(), "yahoo_finance", true)

	marketData := services.NewMarketDataService(cfg, cache, sources...)
	analyzer := analysis.NewAnalyzer(marketData)

	var appRepo app.RepositoryInterface
	if repo != nil {
		appRepo = repo
	}
	application := app.New(cfg, marketData, analyzer, appRepo)
	defer application.Shutdown()

	handler := api.NewHandler(application, cfg)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second,
	}

	go func() {
		observability.Info("starting finance gateway", "port", cfg.HTTP.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			observability.Fatal("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	observability.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		observability.Error("graceful shutdown failed", "error", err)
	}
}
