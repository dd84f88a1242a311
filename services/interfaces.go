package services

import (
	"context"

	"finance-gateway/models"
)

// DataSource is the capability pair every provider adapter implements.
// The market data service depends only on this interface and never on a
// concrete provider.
type DataSource interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (*models.Quote, error)
	FetchFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error)
}

// MarketDataServiceInterface defines the resolution operations consumed by the
// application layer
type MarketDataServiceInterface interface {
	GetQuote(ctx context.Context, symbol string) (*QuoteResult, error)
	GetFundamentals(ctx context.Context, symbol string) (*FundamentalsResult, error)
}

// Compile-time interface verification
var _ DataSource = (*FMPService)(nil)
var _ DataSource = (*AlphaVantageService)(nil)
var _ DataSource = (*YahooFinanceService)(nil)
var _ MarketDataServiceInterface = (*MarketDataService)(nil)
