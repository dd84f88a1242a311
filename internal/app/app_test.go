package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"finance-gateway/calculator"
	"finance-gateway/config"
	"finance-gateway/models"
	"finance-gateway/services"

	"github.com/shopspring/decimal"
)

type mockMarketData struct {
	quote *services.QuoteResult
	fund  *services.FundamentalsResult
	err   error
}

func (m *mockMarketData) GetQuote(context.Context, string) (*services.QuoteResult, error) {
	return m.quote, m.err
}

func (m *mockMarketData) GetFundamentals(context.Context, string) (*services.FundamentalsResult, error) {
	return m.fund, m.err
}

type mockAnalyzer struct {
	report *models.PillarReport
	err    error
}

func (m *mockAnalyzer) Analyze(context.Context, string) (*models.PillarReport, error) {
	return m.report, m.err
}

func newTestApp(md services.MarketDataServiceInterface, an AnalyzerInterface) *App {
	return New(config.NewTestConfig(), md, an, nil)
}

func TestApp_GetPortfolioValue(t *testing.T) {
	md := &mockMarketData{
		quote: &services.QuoteResult{
			Quote: &models.Quote{
				Symbol:   "AAPL",
				Price:    decimal.NewFromFloat(175.50),
				Currency: "USD",
				AsOf:     time.Now(),
			},
			Source:    "fmp",
			FromCache: true,
		},
	}
	a := newTestApp(md, &mockAnalyzer{})

	value, err := a.GetPortfolioValue(context.Background(), "AAPL", decimal.NewFromFloat(10.5))
	if err != nil {
		t.Fatalf("GetPortfolioValue() error = %v", err)
	}

	want := decimal.NewFromFloat(175.50).Mul(decimal.NewFromFloat(10.5))
	if !value.Value.Equal(want) {
		t.Errorf("Value = %s, want %s", value.Value, want)
	}
	if value.Source != "fmp" {
		t.Errorf("Source = %q, want 'fmp'", value.Source)
	}
	if !value.FromCache {
		t.Error("FromCache should carry through")
	}
}

func TestApp_GetPortfolioValue_Error(t *testing.T) {
	wantErr := errors.New("resolution failed")
	a := newTestApp(&mockMarketData{err: wantErr}, &mockAnalyzer{})

	_, err := a.GetPortfolioValue(context.Background(), "AAPL", decimal.NewFromInt(1))
	if !errors.Is(err, wantErr) {
		t.Errorf("GetPortfolioValue() error = %v, want %v", err, wantErr)
	}
}

func TestApp_CalculatorPassthrough(t *testing.T) {
	a := newTestApp(&mockMarketData{}, &mockAnalyzer{})

	result, err := a.CompoundInterest(calculator.CompoundInterestInput{
		Principal:         1000,
		AnnualRatePercent: 5,
		Years:             1,
		Frequency:         calculator.FrequencyAnnual,
	})
	if err != nil {
		t.Fatalf("CompoundInterest() error = %v", err)
	}
	if result.FinalAmount != 1050 {
		t.Errorf("FinalAmount = %v, want 1050", result.FinalAmount)
	}

	if _, err := a.Retirement(calculator.RetirementInput{CurrentAge: 10}); err == nil {
		t.Error("invalid retirement input should surface the validation error")
	}
}

type blockingAnalyzer struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingAnalyzer) Analyze(context.Context, string) (*models.PillarReport, error) {
	b.started <- struct{}{}
	<-b.release
	return models.NewPillarReport("AAPL"), nil
}

func TestApp_AnalyzeConcurrencyLimit(t *testing.T) {
	an := &blockingAnalyzer{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	cfg := config.NewTestConfig()
	cfg.Analysis.ConcurrencyLimit = 1
	a := New(cfg, &mockMarketData{}, an, nil)

	done := make(chan error, 1)
	go func() {
		_, err := a.Analyze(context.Background(), "AAPL")
		done <- err
	}()
	<-an.started

	// The only slot is held by the in-flight analysis
	if _, err := a.Analyze(context.Background(), "MSFT"); err == nil {
		t.Error("expected rejection while the semaphore is full")
	}

	close(an.release)
	if err := <-done; err != nil {
		t.Errorf("in-flight analysis failed: %v", err)
	}

	// Slot is free again after completion
	go func() {
		_, err := a.Analyze(context.Background(), "GOOG")
		done <- err
	}()
	<-an.started
	if err := <-done; err != nil {
		t.Errorf("follow-up analysis failed: %v", err)
	}
}

func TestApp_HasDatabase(t *testing.T) {
	a := newTestApp(&mockMarketData{}, &mockAnalyzer{})
	if a.HasDatabase() {
		t.Error("app without a repository should report no database")
	}
}
