package calculator

import (
	"errors"
	"math"
	"testing"
)

func TestRetirement_Projection(t *testing.T) {
	result, err := Retirement(RetirementInput{
		CurrentAge:          30,
		RetirementAge:       65,
		CurrentSavings:      50000,
		MonthlyContribution: 1000,
		AnnualReturnPercent: 7,
	})
	if err != nil {
		t.Fatalf("Retirement() error = %v", err)
	}

	if result.YearsToRetirement != 35 {
		t.Errorf("YearsToRetirement = %d, want 35", result.YearsToRetirement)
	}
	if result.TotalContributions != 420000 {
		t.Errorf("TotalContributions = %v, want 420000", result.TotalContributions)
	}
	// Growth must exceed nothing-invested baseline
	if result.ProjectedSavings <= 50000+420000 {
		t.Errorf("ProjectedSavings = %v, want more than contributions alone", result.ProjectedSavings)
	}
	if result.InvestmentGrowth <= 0 {
		t.Errorf("InvestmentGrowth = %v, want positive", result.InvestmentGrowth)
	}

	// 4% rule is applied to the projected balance
	wantAnnual := roundCents(result.ProjectedSavings * 0.04)
	if math.Abs(result.AnnualWithdrawal-wantAnnual) > 0.01 {
		t.Errorf("AnnualWithdrawal = %v, want %v", result.AnnualWithdrawal, wantAnnual)
	}
	if math.Abs(result.MonthlyWithdrawal-result.AnnualWithdrawal/12) > 0.01 {
		t.Errorf("MonthlyWithdrawal = %v, want annual/12", result.MonthlyWithdrawal)
	}

	if len(result.Notes) == 0 {
		t.Error("expected advisory notes on the projection")
	}
}

func TestRetirement_ZeroReturn(t *testing.T) {
	result, err := Retirement(RetirementInput{
		CurrentAge:          40,
		RetirementAge:       50,
		CurrentSavings:      10000,
		MonthlyContribution: 500,
		AnnualReturnPercent: 0,
	})
	if err != nil {
		t.Fatalf("Retirement() error = %v", err)
	}

	// With no return the projection is exact arithmetic
	want := 10000.0 + 500*12*10
	if result.ProjectedSavings != want {
		t.Errorf("ProjectedSavings = %v, want %v", result.ProjectedSavings, want)
	}
	if result.InvestmentGrowth != 0 {
		t.Errorf("InvestmentGrowth = %v, want 0", result.InvestmentGrowth)
	}
}

func TestRetirement_NoContributions(t *testing.T) {
	tests := []struct {
		name    string
		savings float64
		ratePct float64
		years   int
	}{
		{"One year at 12%", 10000, 12, 1},
		{"Thirty-five years at 7%", 50000, 7, 35},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Retirement(RetirementInput{
				CurrentAge:          30,
				RetirementAge:       30 + tt.years,
				CurrentSavings:      tt.savings,
				MonthlyContribution: 0,
				AnnualReturnPercent: tt.ratePct,
			})
			if err != nil {
				t.Fatalf("Retirement() error = %v", err)
			}

			// With no contributions the balance is the savings compounded
			// annually, nothing else
			want := roundCents(tt.savings * math.Pow(1+tt.ratePct/100, float64(tt.years)))
			if result.ProjectedSavings != want {
				t.Errorf("ProjectedSavings = %v, want %v", result.ProjectedSavings, want)
			}
			if result.TotalContributions != 0 {
				t.Errorf("TotalContributions = %v, want 0", result.TotalContributions)
			}
		})
	}
}

func TestRetirement_YearlyBreakdown(t *testing.T) {
	result, err := Retirement(RetirementInput{
		CurrentAge:          60,
		RetirementAge:       65,
		CurrentSavings:      100000,
		MonthlyContribution: 2000,
		AnnualReturnPercent: 5,
	})
	if err != nil {
		t.Fatalf("Retirement() error = %v", err)
	}

	if len(result.YearlyBreakdown) != 5 {
		t.Fatalf("breakdown length = %d, want 5", len(result.YearlyBreakdown))
	}
	if result.YearlyBreakdown[0].Age != 61 {
		t.Errorf("first age = %d, want 61", result.YearlyBreakdown[0].Age)
	}
	last := result.YearlyBreakdown[4]
	if last.Age != 65 {
		t.Errorf("last age = %d, want 65", last.Age)
	}
	if last.Balance != result.ProjectedSavings {
		t.Errorf("last balance = %v, want %v", last.Balance, result.ProjectedSavings)
	}

	// Balances grow year over year
	for i := 1; i < len(result.YearlyBreakdown); i++ {
		if result.YearlyBreakdown[i].Balance <= result.YearlyBreakdown[i-1].Balance {
			t.Errorf("balance should grow: year %d %v <= year %d %v",
				i+1, result.YearlyBreakdown[i].Balance, i, result.YearlyBreakdown[i-1].Balance)
		}
	}
}

func TestRetirement_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input RetirementInput
	}{
		{"Too young", RetirementInput{CurrentAge: 17, RetirementAge: 65}},
		{"Too old", RetirementInput{CurrentAge: 101, RetirementAge: 105}},
		{"Retirement beyond bound", RetirementInput{CurrentAge: 30, RetirementAge: 101}},
		{"Retirement not after current", RetirementInput{CurrentAge: 65, RetirementAge: 65}},
		{"Retirement before current", RetirementInput{CurrentAge: 65, RetirementAge: 60}},
		{"Negative savings", RetirementInput{CurrentAge: 30, RetirementAge: 65, CurrentSavings: -1}},
		{"Negative contribution", RetirementInput{CurrentAge: 30, RetirementAge: 65, MonthlyContribution: -1}},
		{"Negative return", RetirementInput{CurrentAge: 30, RetirementAge: 65, AnnualReturnPercent: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Retirement(tt.input)
			var validation *ValidationError
			if !errors.As(err, &validation) {
				t.Errorf("Retirement() error = %v, want ValidationError", err)
			}
		})
	}
}
