package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DataKind identifies which kind of market data record a cache entry or
// resolution refers to.
type DataKind string

const (
	KindQuote        DataKind = "quote"
	KindFundamentals DataKind = "fundamentals"
)

// Quote represents a normalized real-time quote for a stock
type Quote struct {
	Symbol        string          `json:"symbol"`
	Price         decimal.Decimal `json:"price"`
	Currency      string          `json:"currency"`
	Change        decimal.Decimal `json:"change"`
	ChangePercent float64         `json:"change_percent"`
	Open          decimal.Decimal `json:"open"`
	High          decimal.Decimal `json:"high"`
	Low           decimal.Decimal `json:"low"`
	PreviousClose decimal.Decimal `json:"previous_close"`
	Volume        int64           `json:"volume,omitempty"`
	MarketCap     int64           `json:"market_cap,omitempty"`
	CompanyName   string          `json:"company_name,omitempty"`
	AsOf          time.Time       `json:"as_of"`
}

// Fundamentals represents the normalized fundamental metrics consumed by the
// eight pillar analysis. Every metric is optional: a provider that cannot
// supply a field leaves it nil, and nil must never be read as zero.
type Fundamentals struct {
	Symbol      string `json:"symbol"`
	CompanyName string `json:"company_name,omitempty"`

	PERatio                 *float64 `json:"pe_ratio,omitempty"`
	ROIC                    *float64 `json:"roic,omitempty"`
	SharesOutstandingChange *float64 `json:"shares_outstanding_change,omitempty"`
	OperatingCashFlowGrowth *float64 `json:"operating_cash_flow_growth,omitempty"`
	NetIncomeGrowth         *float64 `json:"net_income_growth,omitempty"`
	RevenueGrowth           *float64 `json:"revenue_growth,omitempty"`
	LiabilitiesRatio        *float64 `json:"liabilities_ratio,omitempty"`
	PriceToFreeCashFlow     *float64 `json:"price_to_fcf,omitempty"`

	MarketCap int64     `json:"market_cap,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Float64Ptr is a convenience helper for building optional metric fields
func Float64Ptr(v float64) *float64 {
	return &v
}
