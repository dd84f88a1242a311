package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"finance-gateway/models"
	"finance-gateway/observability"

	"github.com/shopspring/decimal"
)

// FMPService is the Financial Modeling Prep data source adapter
type FMPService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewFMPService creates a new FMPService instance. An empty API key leaves
// the source unconfigured; every fetch then reports ErrUnconfigured without
// touching the network.
func NewFMPService(apiKey string) *FMPService {
	return &FMPService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://financialmodelingprep.com/api/v3",
	}
}

// Name returns the data source identifier
func (s *FMPService) Name() string {
	return "fmp"
}

// fmpQuoteResponse represents a single quote from the FMP API
type fmpQuoteResponse struct {
	Symbol            string  `json:"symbol"`
	Name              string  `json:"name"`
	Price             float64 `json:"price"`
	Change            float64 `json:"change"`
	ChangesPercentage float64 `json:"changesPercentage"`
	DayLow            float64 `json:"dayLow"`
	DayHigh           float64 `json:"dayHigh"`
	MarketCap         int64   `json:"marketCap"`
	Volume            int64   `json:"volume"`
	Open              float64 `json:"open"`
	PreviousClose     float64 `json:"previousClose"`
	Exchange          string  `json:"exchange"`
	Timestamp         int64   `json:"timestamp"`
}

// fmpRatiosResponse represents trailing-twelve-month ratios from the FMP API
type fmpRatiosResponse struct {
	Symbol                  string  `json:"symbol"`
	PERatio                 float64 `json:"peRatioTTM"`
	ReturnOnCapitalEmployed float64 `json:"returnOnCapitalEmployedTTM"`
	PriceToFreeCashFlowsTTM float64 `json:"priceToFreeCashFlowsRatioTTM"`
	PriceToBookRatio        float64 `json:"priceToBookRatioTTM"`
	DividendYieldPercentage float64 `json:"dividendYieldPercentageTTM"`
}

// fmpGrowthResponse represents year-over-year growth metrics from the FMP API
type fmpGrowthResponse struct {
	Symbol                      string  `json:"symbol"`
	RevenueGrowth               float64 `json:"revenueGrowth"`
	NetIncomeGrowth             float64 `json:"netIncomeGrowth"`
	OperatingCashFlowGrowth     float64 `json:"operatingCashFlowGrowth"`
	WeightedAverageSharesGrowth float64 `json:"weightedAverageSharesGrowth"`
}

// FetchQuote returns a normalized quote from FMP
func (s *FMPService) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if s.apiKey == "" {
		return nil, ErrUnconfigured
	}

	return WithCircuitBreaker(ctx, BreakerFMP, func() (*models.Quote, error) {
		var quote *models.Quote

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			metrics := observability.GetMetrics()
			metrics.RecordSourceRequest(s.Name(), "quote")
			timer := metrics.NewTimer()
			defer timer.ObserveSource(s.Name(), "quote")

			reqURL := fmt.Sprintf("%s/quote/%s?apikey=%s",
				s.baseURL, url.PathEscape(toFMPSymbol(symbol)), url.QueryEscape(s.apiKey))

			body, err := s.get(ctx, reqURL)
			if err != nil {
				return err
			}

			var quotes []fmpQuoteResponse
			if err := json.Unmarshal(body, &quotes); err != nil {
				return NewTransientError("malformed FMP quote payload", err)
			}
			// FMP answers an empty array for unknown symbols
			if len(quotes) == 0 {
				return fmt.Errorf("FMP has no quote for %s: %w", symbol, ErrSymbolNotFound)
			}

			q := quotes[0]
			quote = &models.Quote{
				Symbol:        symbol,
				Price:         decimal.NewFromFloat(q.Price),
				Currency:      "USD",
				Change:        decimal.NewFromFloat(q.Change),
				ChangePercent: q.ChangesPercentage,
				Open:          decimal.NewFromFloat(q.Open),
				High:          decimal.NewFromFloat(q.DayHigh),
				Low:           decimal.NewFromFloat(q.DayLow),
				PreviousClose: decimal.NewFromFloat(q.PreviousClose),
				Volume:        q.Volume,
				MarketCap:     q.MarketCap,
				CompanyName:   q.Name,
				AsOf:          time.Now().UTC(),
			}
			return nil
		})

		if err != nil {
			return nil, err
		}
		return quote, nil
	})
}

// FetchFundamentals returns normalized fundamentals from FMP. The metrics come
// from two endpoints: TTM ratios for valuation and financial growth for the
// trend pillars. FMP does not expose a long-term-debt to free-cash-flow ratio,
// so that pillar stays unavailable from this source.
func (s *FMPService) FetchFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	if s.apiKey == "" {
		return nil, ErrUnconfigured
	}

	return WithCircuitBreaker(ctx, BreakerFMP, func() (*models.Fundamentals, error) {
		var fundamentals *models.Fundamentals

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			metrics := observability.GetMetrics()
			metrics.RecordSourceRequest(s.Name(), "fundamentals")
			timer := metrics.NewTimer()
			defer timer.ObserveSource(s.Name(), "fundamentals")

			fmpSymbol := url.PathEscape(toFMPSymbol(symbol))

			ratiosBody, err := s.get(ctx, fmt.Sprintf("%s/ratios-ttm/%s?apikey=%s",
				s.baseURL, fmpSymbol, url.QueryEscape(s.apiKey)))
			if err != nil {
				return err
			}

			var ratios []fmpRatiosResponse
			if err := json.Unmarshal(ratiosBody, &ratios); err != nil {
				return NewTransientError("malformed FMP ratios payload", err)
			}
			if len(ratios) == 0 {
				return fmt.Errorf("FMP has no ratios for %s: %w", symbol, ErrSymbolNotFound)
			}

			growthBody, err := s.get(ctx, fmt.Sprintf("%s/financial-growth/%s?limit=1&apikey=%s",
				s.baseURL, fmpSymbol, url.QueryEscape(s.apiKey)))
			if err != nil {
				return err
			}

			var growth []fmpGrowthResponse
			if err := json.Unmarshal(growthBody, &growth); err != nil {
				return NewTransientError("malformed FMP growth payload", err)
			}

			r := ratios[0]
			f := &models.Fundamentals{
				Symbol:    symbol,
				UpdatedAt: time.Now().UTC(),
			}
			if r.PERatio != 0 {
				f.PERatio = models.Float64Ptr(r.PERatio)
			}
			if r.ReturnOnCapitalEmployed != 0 {
				// FMP reports a fraction; pillars score percentages
				f.ROIC = models.Float64Ptr(r.ReturnOnCapitalEmployed * 100)
			}
			if r.PriceToFreeCashFlowsTTM != 0 {
				f.PriceToFreeCashFlow = models.Float64Ptr(r.PriceToFreeCashFlowsTTM)
			}
			if len(growth) > 0 {
				g := growth[0]
				f.RevenueGrowth = models.Float64Ptr(g.RevenueGrowth * 100)
				f.NetIncomeGrowth = models.Float64Ptr(g.NetIncomeGrowth * 100)
				f.OperatingCashFlowGrowth = models.Float64Ptr(g.OperatingCashFlowGrowth * 100)
				f.SharesOutstandingChange = models.Float64Ptr(g.WeightedAverageSharesGrowth * 100)
			}

			fundamentals = f
			return nil
		})

		if err != nil {
			return nil, err
		}
		return fundamentals, nil
	})
}

// get performs a GET request and maps HTTP-level failures onto the source
// error taxonomy
func (s *FMPService) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, NewTransientError("failed to create FMP request", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, NewTransientError("FMP request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("FMP rejected API key (status %d): %w", resp.StatusCode, ErrUnconfigured)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewTransientError("FMP rate limit exceeded", nil)
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("FMP returned status 404: %w", ErrSymbolNotFound)
	case resp.StatusCode >= 500:
		return nil, NewTransientError(fmt.Sprintf("FMP returned status %d", resp.StatusCode), nil)
	default:
		return nil, fmt.Errorf("FMP returned status %d: %w", resp.StatusCode, ErrSymbolNotFound)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, NewTransientError("failed to read FMP response", err)
	}
	return body, nil
}

// toFMPSymbol converts exchange suffixes to the FMP dialect:
// NSE RELIANCE.NS -> RELIANCE.NSE, BSE INFY.BO -> INFY.BSE
func toFMPSymbol(symbol string) string {
	upper := strings.ToUpper(symbol)
	if strings.HasSuffix(upper, ".NS") {
		return strings.TrimSuffix(upper, ".NS") + ".NSE"
	}
	if strings.HasSuffix(upper, ".BO") {
		return strings.TrimSuffix(upper, ".BO") + ".BSE"
	}
	return upper
}
