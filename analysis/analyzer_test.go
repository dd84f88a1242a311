package analysis

import (
	"context"
	"errors"
	"testing"

	"finance-gateway/models"
	"finance-gateway/services"

	"github.com/google/uuid"
)

// mockMarketData returns a canned fundamentals result
type mockMarketData struct {
	result *services.FundamentalsResult
	err    error
}

func (m *mockMarketData) GetQuote(context.Context, string) (*services.QuoteResult, error) {
	return nil, errors.New("not implemented")
}

func (m *mockMarketData) GetFundamentals(context.Context, string) (*services.FundamentalsResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func TestAnalyzer_Analyze(t *testing.T) {
	analyzer := NewAnalyzer(&mockMarketData{
		result: &services.FundamentalsResult{
			Fundamentals: strongFundamentals(),
			Source:       "fmp",
			FromCache:    true,
		},
	})

	report, err := analyzer.Analyze(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if report.Symbol != "AAPL" {
		t.Errorf("Symbol = %q, want 'AAPL'", report.Symbol)
	}
	if report.DataSource != "fmp" {
		t.Errorf("DataSource = %q, want 'fmp'", report.DataSource)
	}
	if !report.FromCache {
		t.Error("FromCache should carry through from the resolution")
	}
	if report.Score == nil || *report.Score != 100 {
		t.Errorf("Score = %v, want 100", report.Score)
	}
	if report.ID == uuid.Nil {
		t.Error("report should get an ID")
	}
	if report.GeneratedAt.IsZero() {
		t.Error("GeneratedAt should be set")
	}
}

func TestAnalyzer_Analyze_ResolutionErrorPassesThrough(t *testing.T) {
	wantErr := &services.ExhaustedError{Symbol: "NOPE", Kind: models.KindFundamentals}
	analyzer := NewAnalyzer(&mockMarketData{err: wantErr})

	_, err := analyzer.Analyze(context.Background(), "NOPE")
	var exhausted *services.ExhaustedError
	if !errors.As(err, &exhausted) {
		t.Errorf("Analyze() error = %v, want ExhaustedError", err)
	}
}

func TestAnalyzer_Analyze_InsufficientData(t *testing.T) {
	analyzer := NewAnalyzer(&mockMarketData{
		result: &services.FundamentalsResult{
			Fundamentals: &models.Fundamentals{Symbol: "EMPTY"},
			Source:       "alpha_vantage",
		},
	})

	report, err := analyzer.Analyze(context.Background(), "EMPTY")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if report.Recommendation != models.RecommendationInsufficientData {
		t.Errorf("Recommendation = %v, want insufficient_data", report.Recommendation)
	}
}
