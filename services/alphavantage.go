package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"finance-gateway/models"
	"finance-gateway/observability"

	"github.com/shopspring/decimal"
)

// AlphaVantageService is the Alpha Vantage data source adapter
type AlphaVantageService struct {
	apiKey     string
	httpClient *http.Client
	baseURL    string
}

// NewAlphaVantageService creates a new AlphaVantageService instance. An empty
// API key leaves the source unconfigured.
func NewAlphaVantageService(apiKey string) *AlphaVantageService {
	return &AlphaVantageService{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://www.alphavantage.co/query",
	}
}

// Name returns the data source identifier
func (s *AlphaVantageService) Name() string {
	return "alpha_vantage"
}

// avEnvelope captures the error/throttle keys Alpha Vantage mixes into every
// response body regardless of HTTP status
type avEnvelope struct {
	ErrorMessage string `json:"Error Message"`
	Note         string `json:"Note"`
	Information  string `json:"Information"`
}

// avQuoteResponse represents the GLOBAL_QUOTE response
type avQuoteResponse struct {
	avEnvelope
	GlobalQuote struct {
		Symbol        string `json:"01. symbol"`
		Open          string `json:"02. open"`
		High          string `json:"03. high"`
		Low           string `json:"04. low"`
		Price         string `json:"05. price"`
		Volume        string `json:"06. volume"`
		LatestDay     string `json:"07. latest trading day"`
		PrevClose     string `json:"08. previous close"`
		Change        string `json:"09. change"`
		ChangePercent string `json:"10. change percent"`
	} `json:"Global Quote"`
}

// avOverviewResponse represents the company OVERVIEW response
type avOverviewResponse struct {
	avEnvelope
	Symbol                     string `json:"Symbol"`
	Name                       string `json:"Name"`
	MarketCapitalization       string `json:"MarketCapitalization"`
	PERatio                    string `json:"PERatio"`
	QuarterlyEarningsGrowthYOY string `json:"QuarterlyEarningsGrowthYOY"`
	QuarterlyRevenueGrowthYOY  string `json:"QuarterlyRevenueGrowthYOY"`
	SharesOutstanding          string `json:"SharesOutstanding"`
}

// FetchQuote returns a normalized quote from Alpha Vantage
func (s *AlphaVantageService) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	if s.apiKey == "" {
		return nil, ErrUnconfigured
	}

	return WithCircuitBreaker(ctx, BreakerAlphaVantage, func() (*models.Quote, error) {
		var quote *models.Quote

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			metrics := observability.GetMetrics()
			metrics.RecordSourceRequest(s.Name(), "quote")
			timer := metrics.NewTimer()
			defer timer.ObserveSource(s.Name(), "quote")

			body, err := s.query(ctx, "GLOBAL_QUOTE", symbol)
			if err != nil {
				return err
			}

			var resp avQuoteResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return NewTransientError("malformed Alpha Vantage quote payload", err)
			}
			if err := resp.avEnvelope.check(symbol); err != nil {
				return err
			}
			if resp.GlobalQuote.Price == "" {
				return fmt.Errorf("Alpha Vantage has no quote for %s: %w", symbol, ErrSymbolNotFound)
			}

			price, err := decimal.NewFromString(resp.GlobalQuote.Price)
			if err != nil {
				return NewTransientError("unparseable Alpha Vantage price", err)
			}
			change, _ := decimal.NewFromString(resp.GlobalQuote.Change)
			open, _ := decimal.NewFromString(resp.GlobalQuote.Open)
			high, _ := decimal.NewFromString(resp.GlobalQuote.High)
			low, _ := decimal.NewFromString(resp.GlobalQuote.Low)
			prevClose, _ := decimal.NewFromString(resp.GlobalQuote.PrevClose)

			changePercent, _ := strconv.ParseFloat(
				strings.TrimSuffix(resp.GlobalQuote.ChangePercent, "%"), 64)

			var volume int64
			if resp.GlobalQuote.Volume != "" {
				volume, _ = strconv.ParseInt(resp.GlobalQuote.Volume, 10, 64)
			}

			quote = &models.Quote{
				Symbol:        symbol,
				Price:         price,
				Currency:      "USD",
				Change:        change,
				ChangePercent: changePercent,
				Open:          open,
				High:          high,
				Low:           low,
				PreviousClose: prevClose,
				Volume:        volume,
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

// FetchFundamentals returns normalized fundamentals from Alpha Vantage. The
// OVERVIEW function only covers a subset of the pillar metrics; everything it
// does not report stays nil.
func (s *AlphaVantageService) FetchFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	if s.apiKey == "" {
		return nil, ErrUnconfigured
	}

	return WithCircuitBreaker(ctx, BreakerAlphaVantage, func() (*models.Fundamentals, error) {
		var fundamentals *models.Fundamentals

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			metrics := observability.GetMetrics()
			metrics.RecordSourceRequest(s.Name(), "fundamentals")
			timer := metrics.NewTimer()
			defer timer.ObserveSource(s.Name(), "fundamentals")

			body, err := s.query(ctx, "OVERVIEW", symbol)
			if err != nil {
				return err
			}

			var resp avOverviewResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return NewTransientError("malformed Alpha Vantage overview payload", err)
			}
			if err := resp.avEnvelope.check(symbol); err != nil {
				return err
			}
			if resp.Symbol == "" {
				return fmt.Errorf("Alpha Vantage has no overview for %s: %w", symbol, ErrSymbolNotFound)
			}

			f := &models.Fundamentals{
				Symbol:      symbol,
				CompanyName: resp.Name,
				UpdatedAt:   time.Now().UTC(),
			}
			if v, ok := avFloat(resp.PERatio); ok {
				f.PERatio = models.Float64Ptr(v)
			}
			if v, ok := avFloat(resp.QuarterlyRevenueGrowthYOY); ok {
				f.RevenueGrowth = models.Float64Ptr(v * 100)
			}
			if v, ok := avFloat(resp.QuarterlyEarningsGrowthYOY); ok {
				f.NetIncomeGrowth = models.Float64Ptr(v * 100)
			}
			if v, ok := avFloat(resp.MarketCapitalization); ok {
				f.MarketCap = int64(v)
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

// query performs an Alpha Vantage function call for a symbol
func (s *AlphaVantageService) query(ctx context.Context, function, symbol string) ([]byte, error) {
	params := url.Values{}
	params.Set("function", function)
	params.Set("symbol", toAlphaVantageSymbol(symbol))
	params.Set("apikey", s.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, NewTransientError("failed to create Alpha Vantage request", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, NewTransientError("Alpha Vantage request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewTransientError("Alpha Vantage rate limit exceeded", nil)
	case resp.StatusCode >= 500:
		return nil, NewTransientError(fmt.Sprintf("Alpha Vantage returned status %d", resp.StatusCode), nil)
	default:
		return nil, fmt.Errorf("Alpha Vantage returned status %d: %w", resp.StatusCode, ErrSymbolNotFound)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, NewTransientError("failed to read Alpha Vantage response", err)
	}
	return body, nil
}

// check maps in-body error signals onto the failure taxonomy. Alpha Vantage
// reports throttling with HTTP 200 and a "Note" or "Information" key.
func (e avEnvelope) check(symbol string) error {
	if e.Note != "" || e.Information != "" {
		return NewTransientError("Alpha Vantage rate limit exceeded", nil)
	}
	if e.ErrorMessage != "" {
		return fmt.Errorf("Alpha Vantage error for %s: %w", symbol, ErrSymbolNotFound)
	}
	return nil
}

// avFloat parses an Alpha Vantage numeric field, which may be empty, "None",
// or "-" when the metric is unavailable
func avFloat(s string) (float64, bool) {
	if s == "" || s == "None" || s == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// toAlphaVantageSymbol converts Indian exchange suffixes to the Alpha Vantage
// dialect, which lists both NSE and BSE symbols under .BSE
func toAlphaVantageSymbol(symbol string) string {
	upper := strings.ToUpper(symbol)
	if strings.HasSuffix(upper, ".NS") {
		return strings.TrimSuffix(upper, ".NS") + ".BSE"
	}
	if strings.HasSuffix(upper, ".BO") {
		return strings.TrimSuffix(upper, ".BO") + ".BSE"
	}
	return upper
}
