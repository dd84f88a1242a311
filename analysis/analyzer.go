package analysis

import (
	"context"

	"finance-gateway/models"
	"finance-gateway/observability"
	"finance-gateway/services"
)

// Analyzer produces eight pillar reports by resolving fundamentals through
// the market data service and scoring them
type Analyzer struct {
	marketData services.MarketDataServiceInterface
}

// NewAnalyzer creates an Analyzer backed by the given market data service
func NewAnalyzer(marketData services.MarketDataServiceInterface) *Analyzer {
	return &Analyzer{marketData: marketData}
}

// Analyze resolves fundamentals for a symbol and grades them into a pillar
// report. Resolution errors pass through unchanged so callers can map them
// the same way as direct fundamentals requests.
func (a *Analyzer) Analyze(ctx context.Context, symbol string) (*models.PillarReport, error) {
	metrics := observability.GetMetrics()
	metrics.RecordAnalysisRequest(symbol)

	result, err := a.marketData.GetFundamentals(ctx, symbol)
	if err != nil {
		return nil, err
	}

	report := models.NewPillarReport(result.Fundamentals.Symbol)
	report.CompanyName = result.Fundamentals.CompanyName
	report.DataSource = result.Source
	report.FromCache = result.FromCache
	report.Pillars = ScorePillars(result.Fundamentals)
	Aggregate(report)

	if report.Score != nil {
		metrics.RecordAnalysisScore(string(report.Recommendation), *report.Score)
		observability.WithSymbol(report.Symbol).Info("eight pillar analysis complete",
			"score", *report.Score,
			"checks_passed", report.ChecksPassed,
			"recommendation", string(report.Recommendation),
			"source", report.DataSource)
	} else {
		observability.WithSymbol(report.Symbol).Warn("eight pillar analysis had no usable metrics",
			"source", report.DataSource)
	}

	return report, nil
}
