package models

import (
	"time"

	"github.com/google/uuid"
)

// Pillar identifies one of the eight fundamental analysis dimensions
type Pillar string

const (
	PillarPERatio           Pillar = "pe_ratio"
	PillarROIC              Pillar = "roic"
	PillarSharesOutstanding Pillar = "shares_outstanding"
	PillarCashFlowGrowth    Pillar = "cash_flow_growth"
	PillarNetIncomeGrowth   Pillar = "net_income_growth"
	PillarRevenueGrowth     Pillar = "revenue_growth"
	PillarLiabilities       Pillar = "liabilities"
	PillarPriceToFCF        Pillar = "price_to_fcf"
)

// AllPillars lists the eight pillars in their canonical reporting order
var AllPillars = []Pillar{
	PillarPERatio,
	PillarROIC,
	PillarSharesOutstanding,
	PillarCashFlowGrowth,
	PillarNetIncomeGrowth,
	PillarRevenueGrowth,
	PillarLiabilities,
	PillarPriceToFCF,
}

// PillarStatus is the qualitative bucket a pillar metric falls into
type PillarStatus string

const (
	StatusStrong      PillarStatus = "strong"
	StatusFair        PillarStatus = "fair"
	StatusWeak        PillarStatus = "weak"
	StatusUnavailable PillarStatus = "unavailable"
)

// PillarResult holds the scored outcome for a single pillar
type PillarResult struct {
	Pillar    Pillar       `json:"pillar"`
	Value     *float64     `json:"value,omitempty"`
	Status    PillarStatus `json:"status"`
	Passed    bool         `json:"passed"`
	SubScore  float64      `json:"sub_score"`
	Weight    float64      `json:"weight"`
	Available bool         `json:"available"`
}

// Recommendation buckets the aggregate score into an actionable label
type Recommendation string

const (
	RecommendationStrongBuy        Recommendation = "strong_buy"
	RecommendationBuy              Recommendation = "buy"
	RecommendationHold             Recommendation = "hold"
	RecommendationSell             Recommendation = "sell"
	RecommendationStrongSell       Recommendation = "strong_sell"
	RecommendationInsufficientData Recommendation = "insufficient_data"
)

// PillarReport is the full result of an eight pillar analysis
type PillarReport struct {
	ID              uuid.UUID      `json:"id"`
	Symbol          string         `json:"symbol"`
	CompanyName     string         `json:"company_name,omitempty"`
	Pillars         []PillarResult `json:"pillars"`
	Score           *float64       `json:"score,omitempty"`
	AvailableWeight float64        `json:"available_weight"`
	ChecksPassed    int            `json:"checks_passed"`
	Recommendation  Recommendation `json:"recommendation"`
	DataSource      string         `json:"data_source"`
	FromCache       bool           `json:"from_cache"`
	GeneratedAt     time.Time      `json:"generated_at"`
}

// NewPillarReport creates a report shell for a symbol
func NewPillarReport(symbol string) *PillarReport {
	return &PillarReport{
		ID:          uuid.New(),
		Symbol:      symbol,
		Pillars:     make([]PillarResult, 0, len(AllPillars)),
		GeneratedAt: time.Now(),
	}
}
