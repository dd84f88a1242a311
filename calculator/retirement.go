package calculator

import (
	"math"

	"finance-gateway/observability"
)

// Age bounds accepted by the retirement projection
const (
	minAge = 18
	maxAge = 100
)

// safeWithdrawalRate is the classic 4% rule
const safeWithdrawalRate = 0.04

// RetirementInput holds the inputs for a retirement savings projection
type RetirementInput struct {
	CurrentAge          int     `json:"current_age"`
	RetirementAge       int     `json:"retirement_age"`
	CurrentSavings      float64 `json:"current_savings"`
	MonthlyContribution float64 `json:"monthly_contribution"`
	AnnualReturnPercent float64 `json:"annual_return_percent"`
}

// RetirementYear is one row of the projection's year-by-year breakdown
type RetirementYear struct {
	Age         int     `json:"age"`
	Balance     float64 `json:"balance"`
	Contributed float64 `json:"total_contributed"`
}

// RetirementResult is a completed retirement projection. Withdrawal figures
// apply the 4% rule to the projected balance.
type RetirementResult struct {
	CurrentAge          int              `json:"current_age"`
	RetirementAge       int              `json:"retirement_age"`
	YearsToRetirement   int              `json:"years_to_retirement"`
	ProjectedSavings    float64          `json:"projected_savings"`
	TotalContributions  float64          `json:"total_contributions"`
	InvestmentGrowth    float64          `json:"investment_growth"`
	AnnualWithdrawal    float64          `json:"annual_withdrawal_4pct"`
	MonthlyWithdrawal   float64          `json:"monthly_withdrawal_4pct"`
	AnnualReturnPercent float64          `json:"annual_return_percent"`
	YearlyBreakdown     []RetirementYear `json:"yearly_breakdown"`
	Notes               []string         `json:"notes"`
}

// retirementNotes are the caveats attached to every projection
var retirementNotes = []string{
	"4% rule: withdraw 4% of the retirement balance annually (adjusted for inflation)",
	"Assumes consistent monthly contributions and returns",
	"Does not account for inflation, taxes, or fees",
	"Consider consulting a financial advisor for personalized planning",
}

// Validate checks the projection inputs
func (in RetirementInput) Validate() error {
	if in.CurrentAge < minAge || in.CurrentAge > maxAge {
		return invalidArg("current_age", "must be between %d and %d, got %d", minAge, maxAge, in.CurrentAge)
	}
	if in.RetirementAge > maxAge {
		return invalidArg("retirement_age", "must be at most %d, got %d", maxAge, in.RetirementAge)
	}
	if in.RetirementAge <= in.CurrentAge {
		return invalidArg("retirement_age", "must be greater than current_age %d, got %d", in.CurrentAge, in.RetirementAge)
	}
	if in.CurrentSavings < 0 {
		return invalidArg("current_savings", "must not be negative, got %v", in.CurrentSavings)
	}
	if in.MonthlyContribution < 0 {
		return invalidArg("monthly_contribution", "must not be negative, got %v", in.MonthlyContribution)
	}
	if in.AnnualReturnPercent < 0 {
		return invalidArg("annual_return_percent", "must not be negative, got %v", in.AnnualReturnPercent)
	}
	return nil
}

// Retirement projects savings at retirement, existing savings compounding
// annually and contributions accruing as a monthly ordinary annuity, then
// derives sustainable withdrawals via the 4% rule.
func Retirement(in RetirementInput) (*RetirementResult, error) {
	metrics := observability.GetMetrics()
	metrics.RecordCalculatorRequest("retirement")

	if err := in.Validate(); err != nil {
		metrics.RecordCalculatorError("retirement")
		return nil, err
	}

	years := in.RetirementAge - in.CurrentAge

	breakdown := make([]RetirementYear, 0, years)
	for elapsed := 1; elapsed <= years; elapsed++ {
		breakdown = append(breakdown, RetirementYear{
			Age:         in.CurrentAge + elapsed,
			Balance:     roundCents(futureValue(in.CurrentSavings, in.MonthlyContribution, in.AnnualReturnPercent, elapsed)),
			Contributed: roundCents(in.MonthlyContribution * float64(elapsed*12)),
		})
	}

	projected := futureValue(in.CurrentSavings, in.MonthlyContribution, in.AnnualReturnPercent, years)
	contributions := in.MonthlyContribution * float64(years*12)
	growth := projected - in.CurrentSavings - contributions
	annualWithdrawal := projected * safeWithdrawalRate

	return &RetirementResult{
		CurrentAge:          in.CurrentAge,
		RetirementAge:       in.RetirementAge,
		YearsToRetirement:   years,
		ProjectedSavings:    roundCents(projected),
		TotalContributions:  roundCents(contributions),
		InvestmentGrowth:    roundCents(growth),
		AnnualWithdrawal:    roundCents(annualWithdrawal),
		MonthlyWithdrawal:   roundCents(annualWithdrawal / 12),
		AnnualReturnPercent: in.AnnualReturnPercent,
		YearlyBreakdown:     breakdown,
		Notes:               retirementNotes,
	}, nil
}

// futureValue computes the closed-form future value after the given number of
// years: the starting balance compounds annually while the level monthly
// payment accrues as an ordinary annuity at the monthly rate
func futureValue(principal, payment, annualRatePercent float64, years int) float64 {
	annualRate := annualRatePercent / 100
	monthlyRate := annualRate / 12
	months := years * 12

	savings := principal * math.Pow(1+annualRate, float64(years))
	if monthlyRate == 0 {
		return savings + payment*float64(months)
	}
	return savings + payment*(math.Pow(1+monthlyRate, float64(months))-1)/monthlyRate
}
