// Package app wires the gateway's services behind a single application
// struct consumed by the HTTP layer
package app

import (
	"context"
	"fmt"
	"time"

	"finance-gateway/calculator"
	"finance-gateway/config"
	"finance-gateway/models"
	"finance-gateway/services"

	"github.com/shopspring/decimal"
)

// RepositoryInterface defines the repository operations needed by App
type RepositoryInterface interface {
	Close()
	Health(ctx context.Context) error
}

// AnalyzerInterface defines the fundamentals analysis operations
type AnalyzerInterface interface {
	Analyze(ctx context.Context, symbol string) (*models.PillarReport, error)
}

// App holds application dependencies using interfaces for testability.
// repo is nil when no database is configured.
type App struct {
	cfg         *config.Config
	marketData  services.MarketDataServiceInterface
	analyzer    AnalyzerInterface
	repo        RepositoryInterface
	analysisSem chan struct{}
}

// New creates a new App application struct
func New(cfg *config.Config, marketData services.MarketDataServiceInterface, analyzer AnalyzerInterface, repo RepositoryInterface) *App {
	return &App{
		cfg:         cfg,
		marketData:  marketData,
		analyzer:    analyzer,
		repo:        repo,
		analysisSem: make(chan struct{}, cfg.Analysis.ConcurrencyLimit),
	}
}

// Shutdown releases held resources
func (a *App) Shutdown() {
	if a.repo != nil {
		a.repo.Close()
	}
}

// HasDatabase reports whether a database backend is wired
func (a *App) HasDatabase() bool {
	return a.repo != nil
}

// DatabaseHealth pings the database backend
func (a *App) DatabaseHealth(ctx context.Context) error {
	return a.repo.Health(ctx)
}

// Config returns the application configuration
func (a *App) Config() *config.Config {
	return a.cfg
}

// GetQuote resolves the latest quote for a symbol
func (a *App) GetQuote(ctx context.Context, symbol string) (*services.QuoteResult, error) {
	return a.marketData.GetQuote(ctx, symbol)
}

// GetFundamentals resolves the fundamentals record for a symbol
func (a *App) GetFundamentals(ctx context.Context, symbol string) (*services.FundamentalsResult, error) {
	return a.marketData.GetFundamentals(ctx, symbol)
}

// Analyze runs the eight pillar analysis for a symbol. Concurrent analyses
// are bounded by a semaphore; when all slots are busy the call is rejected
// rather than queued.
func (a *App) Analyze(ctx context.Context, symbol string) (*models.PillarReport, error) {
	select {
	case a.analysisSem <- struct{}{}:
		defer func() { <-a.analysisSem }()
	default:
		return nil, fmt.Errorf("analysis queue full, too many concurrent requests - try again later")
	}

	return a.analyzer.Analyze(ctx, symbol)
}

// CompoundInterest runs a compound interest projection
func (a *App) CompoundInterest(in calculator.CompoundInterestInput) (*calculator.CompoundInterestResult, error) {
	return calculator.CompoundInterest(in)
}

// Retirement runs a retirement savings projection
func (a *App) Retirement(in calculator.RetirementInput) (*calculator.RetirementResult, error) {
	return calculator.Retirement(in)
}

// PortfolioValue is a position valued at the latest quote
type PortfolioValue struct {
	Symbol    string          `json:"symbol"`
	Shares    decimal.Decimal `json:"shares"`
	Price     decimal.Decimal `json:"price"`
	Value     decimal.Decimal `json:"value"`
	Currency  string          `json:"currency"`
	Source    string          `json:"data_source"`
	FromCache bool            `json:"from_cache"`
	AsOf      time.Time       `json:"as_of"`
}

// GetPortfolioValue resolves the latest quote and values a share count
// against it
func (a *App) GetPortfolioValue(ctx context.Context, symbol string, shares decimal.Decimal) (*PortfolioValue, error) {
	result, err := a.marketData.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}

	return &PortfolioValue{
		Symbol:    result.Quote.Symbol,
		Shares:    shares,
		Price:     result.Quote.Price,
		Value:     result.Quote.Price.Mul(shares),
		Currency:  result.Quote.Currency,
		Source:    result.Source,
		FromCache: result.FromCache,
		AsOf:      result.Quote.AsOf,
	}, nil
}
