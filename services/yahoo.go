package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"finance-gateway/models"
	"finance-gateway/observability"

	"github.com/shopspring/decimal"
)

// YahooFinanceService is the Yahoo Finance data source adapter. It uses the
// public chart and quoteSummary endpoints and needs no credentials, which
// makes it the fallback of last resort.
type YahooFinanceService struct {
	httpClient *http.Client
	baseURL    string
}

// NewYahooFinanceService creates a new YahooFinanceService instance
func NewYahooFinanceService() *YahooFinanceService {
	return &YahooFinanceService{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://query1.finance.yahoo.com",
	}
}

// Name returns the data source identifier
func (s *YahooFinanceService) Name() string {
	return "yahoo_finance"
}

// yahooChartResponse represents the v8 chart response, of which only the meta
// block is used
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol               string  `json:"symbol"`
				Currency             string  `json:"currency"`
				RegularMarketPrice   float64 `json:"regularMarketPrice"`
				RegularMarketVolume  int64   `json:"regularMarketVolume"`
				RegularMarketDayHigh float64 `json:"regularMarketDayHigh"`
				RegularMarketDayLow  float64 `json:"regularMarketDayLow"`
				PreviousClose        float64 `json:"previousClose"`
				ChartPreviousClose   float64 `json:"chartPreviousClose"`
				RegularMarketTime    int64   `json:"regularMarketTime"`
				LongName             string  `json:"longName"`
				ShortName            string  `json:"shortName"`
			} `json:"meta"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"chart"`
}

type yahooError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// yahooValue is Yahoo's {"raw": n, "fmt": "..."} numeric wrapper
type yahooValue struct {
	Raw *float64 `json:"raw"`
}

// yahooSummaryResponse represents the v10 quoteSummary response for the
// modules used by the fundamentals mapping
type yahooSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			SummaryDetail struct {
				TrailingPE yahooValue `json:"trailingPE"`
			} `json:"summaryDetail"`
			FinancialData struct {
				ReturnOnAssets    yahooValue `json:"returnOnAssets"`
				RevenueGrowth     yahooValue `json:"revenueGrowth"`
				EarningsGrowth    yahooValue `json:"earningsGrowth"`
				OperatingCashflow yahooValue `json:"operatingCashflow"`
				FreeCashflow      yahooValue `json:"freeCashflow"`
				TotalDebt         yahooValue `json:"totalDebt"`
			} `json:"financialData"`
			Price struct {
				LongName  string     `json:"longName"`
				MarketCap yahooValue `json:"marketCap"`
			} `json:"price"`
		} `json:"result"`
		Error *yahooError `json:"error"`
	} `json:"quoteSummary"`
}

// FetchQuote returns a normalized quote from the Yahoo chart endpoint
func (s *YahooFinanceService) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	return WithCircuitBreaker(ctx, BreakerYahooFinance, func() (*models.Quote, error) {
		var quote *models.Quote

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			metrics := observability.GetMetrics()
			metrics.RecordSourceRequest(s.Name(), "quote")
			timer := metrics.NewTimer()
			defer timer.ObserveSource(s.Name(), "quote")

			reqURL := fmt.Sprintf("%s/v8/finance/chart/%s?range=1d&interval=1d",
				s.baseURL, url.PathEscape(symbol))

			body, err := s.get(ctx, reqURL)
			if err != nil {
				return err
			}

			var resp yahooChartResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return NewTransientError("malformed Yahoo chart payload", err)
			}
			if resp.Chart.Error != nil {
				return fmt.Errorf("Yahoo error %s for %s: %w",
					resp.Chart.Error.Code, symbol, ErrSymbolNotFound)
			}
			if len(resp.Chart.Result) == 0 {
				return fmt.Errorf("Yahoo has no chart data for %s: %w", symbol, ErrSymbolNotFound)
			}

			meta := resp.Chart.Result[0].Meta
			if meta.RegularMarketPrice == 0 {
				return fmt.Errorf("Yahoo has no market price for %s: %w", symbol, ErrSymbolNotFound)
			}

			prevClose := meta.PreviousClose
			if prevClose == 0 {
				prevClose = meta.ChartPreviousClose
			}

			// Yahoo does not report change directly, so derive it from the
			// previous close like the quote consumers expect
			change := meta.RegularMarketPrice - prevClose
			changePercent := 0.0
			if prevClose > 0 {
				changePercent = change / prevClose * 100
			}

			name := meta.LongName
			if name == "" {
				name = meta.ShortName
			}

			asOf := time.Now().UTC()
			if meta.RegularMarketTime > 0 {
				asOf = time.Unix(meta.RegularMarketTime, 0).UTC()
			}

			quote = &models.Quote{
				Symbol:        symbol,
				Price:         decimal.NewFromFloat(meta.RegularMarketPrice),
				Currency:      meta.Currency,
				Change:        decimal.NewFromFloat(change),
				ChangePercent: changePercent,
				High:          decimal.NewFromFloat(meta.RegularMarketDayHigh),
				Low:           decimal.NewFromFloat(meta.RegularMarketDayLow),
				PreviousClose: decimal.NewFromFloat(prevClose),
				Volume:        meta.RegularMarketVolume,
				CompanyName:   name,
				AsOf:          asOf,
			}
			return nil
		})

		if err != nil {
			return nil, err
		}
		return quote, nil
	})
}

// FetchFundamentals returns normalized fundamentals from the Yahoo
// quoteSummary endpoint. Return on assets stands in for ROIC; Yahoo does not
// expose invested capital. Shares-outstanding trend and operating cash flow
// growth need historical statements this endpoint lacks, so they stay nil.
func (s *YahooFinanceService) FetchFundamentals(ctx context.Context, symbol string) (*models.Fundamentals, error) {
	return WithCircuitBreaker(ctx, BreakerYahooFinance, func() (*models.Fundamentals, error) {
		var fundamentals *models.Fundamentals

		err := WithRetry(ctx, DefaultRetryConfig, func() error {
			metrics := observability.GetMetrics()
			metrics.RecordSourceRequest(s.Name(), "fundamentals")
			timer := metrics.NewTimer()
			defer timer.ObserveSource(s.Name(), "fundamentals")

			reqURL := fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=summaryDetail,financialData,price",
				s.baseURL, url.PathEscape(symbol))

			body, err := s.get(ctx, reqURL)
			if err != nil {
				return err
			}

			var resp yahooSummaryResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return NewTransientError("malformed Yahoo summary payload", err)
			}
			if resp.QuoteSummary.Error != nil {
				return fmt.Errorf("Yahoo error %s for %s: %w",
					resp.QuoteSummary.Error.Code, symbol, ErrSymbolNotFound)
			}
			if len(resp.QuoteSummary.Result) == 0 {
				return fmt.Errorf("Yahoo has no summary data for %s: %w", symbol, ErrSymbolNotFound)
			}

			r := resp.QuoteSummary.Result[0]
			f := &models.Fundamentals{
				Symbol:      symbol,
				CompanyName: r.Price.LongName,
				UpdatedAt:   time.Now().UTC(),
			}
			if v := r.SummaryDetail.TrailingPE.Raw; v != nil {
				f.PERatio = models.Float64Ptr(*v)
			}
			if v := r.FinancialData.ReturnOnAssets.Raw; v != nil {
				f.ROIC = models.Float64Ptr(*v * 100)
			}
			if v := r.FinancialData.RevenueGrowth.Raw; v != nil {
				f.RevenueGrowth = models.Float64Ptr(*v * 100)
			}
			if v := r.FinancialData.EarningsGrowth.Raw; v != nil {
				f.NetIncomeGrowth = models.Float64Ptr(*v * 100)
			}
			if cap := r.Price.MarketCap.Raw; cap != nil {
				f.MarketCap = int64(*cap)
				if fcf := r.FinancialData.FreeCashflow.Raw; fcf != nil && *fcf > 0 {
					f.PriceToFreeCashFlow = models.Float64Ptr(*cap / *fcf)
				}
			}
			if debt := r.FinancialData.TotalDebt.Raw; debt != nil {
				if fcf := r.FinancialData.FreeCashflow.Raw; fcf != nil && *fcf > 0 {
					f.LiabilitiesRatio = models.Float64Ptr(*debt / *fcf)
				}
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
func (s *YahooFinanceService) get(ctx context.Context, reqURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, NewTransientError("failed to create Yahoo request", err)
	}
	// Yahoo rejects requests without a browser-ish user agent
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; finance-gateway/1.0)")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, NewTransientError("Yahoo request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("Yahoo returned status 404: %w", ErrSymbolNotFound)
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, NewTransientError("Yahoo rate limit exceeded", nil)
	case resp.StatusCode >= 500:
		return nil, NewTransientError(fmt.Sprintf("Yahoo returned status %d", resp.StatusCode), nil)
	default:
		return nil, fmt.Errorf("Yahoo returned status %d: %w", resp.StatusCode, ErrSymbolNotFound)
	}

	body, err := readBody(resp)
	if err != nil {
		return nil, NewTransientError("failed to read Yahoo response", err)
	}
	return body, nil
}
