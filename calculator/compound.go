package calculator

import (
	"math"

	"finance-gateway/observability"

	"github.com/shopspring/decimal"
)

// Compounding frequencies in periods per year
const (
	FrequencyAnnual     = 1
	FrequencySemiAnnual = 2
	FrequencyQuarterly  = 4
	FrequencyMonthly    = 12
	FrequencyDaily      = 365
)

var validFrequencies = map[int]string{
	FrequencyAnnual:     "annual",
	FrequencySemiAnnual: "semi-annual",
	FrequencyQuarterly:  "quarterly",
	FrequencyMonthly:    "monthly",
	FrequencyDaily:      "daily",
}

// maxYears bounds the projection horizon so a typo like years=1e6 cannot
// produce an enormous breakdown or an overflowing power
const maxYears = 100

// CompoundInterestInput holds the inputs for a compound interest projection.
// Years may be fractional; the yearly breakdown covers whole years only.
type CompoundInterestInput struct {
	Principal         float64 `json:"principal"`
	AnnualRatePercent float64 `json:"annual_rate_percent"`
	Years             float64 `json:"years"`
	Frequency         int     `json:"compounding_frequency"`
}

// YearlyBalance is one row of a projection's year-by-year breakdown
type YearlyBalance struct {
	Year     int     `json:"year"`
	Balance  float64 `json:"balance"`
	Interest float64 `json:"interest_earned"`
}

// CompoundInterestResult is a completed compound interest projection
type CompoundInterestResult struct {
	Principal           float64         `json:"principal"`
	AnnualRatePercent   float64         `json:"annual_rate_percent"`
	Years               float64         `json:"years"`
	Frequency           int             `json:"compounding_frequency"`
	FrequencyLabel      string          `json:"compounding_frequency_label"`
	FinalAmount         float64         `json:"final_amount"`
	TotalInterest       float64         `json:"total_interest"`
	EffectiveAnnualRate float64         `json:"effective_annual_rate_percent"`
	YearlyBreakdown     []YearlyBalance `json:"yearly_breakdown"`
}

// Validate checks the projection inputs
func (in CompoundInterestInput) Validate() error {
	if in.Principal <= 0 {
		return invalidArg("principal", "must be positive, got %v", in.Principal)
	}
	if in.AnnualRatePercent < 0 {
		return invalidArg("annual_rate_percent", "must not be negative, got %v", in.AnnualRatePercent)
	}
	if in.Years <= 0 || in.Years > maxYears {
		return invalidArg("years", "must be positive and at most %d, got %v", maxYears, in.Years)
	}
	if _, ok := validFrequencies[in.Frequency]; !ok {
		return invalidArg("compounding_frequency", "must be 1, 2, 4, 12, or 365, got %d", in.Frequency)
	}
	return nil
}

// CompoundInterest projects the growth of a lump sum under periodic
// compounding: A = P(1 + r/n)^(nt)
func CompoundInterest(in CompoundInterestInput) (*CompoundInterestResult, error) {
	metrics := observability.GetMetrics()
	metrics.RecordCalculatorRequest("compound_interest")

	if err := in.Validate(); err != nil {
		metrics.RecordCalculatorError("compound_interest")
		return nil, err
	}

	rate := in.AnnualRatePercent / 100
	n := float64(in.Frequency)
	periodRate := rate / n

	wholeYears := int(in.Years)
	breakdown := make([]YearlyBalance, 0, wholeYears)
	previous := in.Principal
	for year := 1; year <= wholeYears; year++ {
		balance := in.Principal * math.Pow(1+periodRate, n*float64(year))
		breakdown = append(breakdown, YearlyBalance{
			Year:     year,
			Balance:  roundCents(balance),
			Interest: roundCents(balance - previous),
		})
		previous = balance
	}

	final := in.Principal * math.Pow(1+periodRate, n*in.Years)
	effective := (math.Pow(1+periodRate, n) - 1) * 100

	return &CompoundInterestResult{
		Principal:           in.Principal,
		AnnualRatePercent:   in.AnnualRatePercent,
		Years:               in.Years,
		Frequency:           in.Frequency,
		FrequencyLabel:      validFrequencies[in.Frequency],
		FinalAmount:         roundCents(final),
		TotalInterest:       roundCents(final - in.Principal),
		EffectiveAnnualRate: roundRate(effective),
		YearlyBreakdown:     breakdown,
	}, nil
}

// roundCents rounds a monetary amount to two decimal places
func roundCents(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// roundRate rounds a percentage to four decimal places
func roundRate(v float64) float64 {
	return decimal.NewFromFloat(v).Round(4).InexactFloat64()
}
