package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewAlphaVantageService(t *testing.T) {
	service := NewAlphaVantageService("test-api-key")
	if service == nil {
		t.Fatal("NewAlphaVantageService should not return nil")
	}
	if service.apiKey != "test-api-key" {
		t.Errorf("apiKey = %v, want 'test-api-key'", service.apiKey)
	}
	if service.baseURL != "https://www.alphavantage.co/query" {
		t.Errorf("baseURL = %v, want Alpha Vantage query endpoint", service.baseURL)
	}
}

func TestAlphaVantageService_Name(t *testing.T) {
	if got := NewAlphaVantageService("key").Name(); got != "alpha_vantage" {
		t.Errorf("Name() = %q, want 'alpha_vantage'", got)
	}
}

func TestAlphaVantageService_FetchQuote_Unconfigured(t *testing.T) {
	service := NewAlphaVantageService("")

	_, err := service.FetchQuote(context.Background(), "AAPL")
	if !errors.Is(err, ErrUnconfigured) {
		t.Errorf("FetchQuote() error = %v, want ErrUnconfigured", err)
	}
}

func TestAlphaVantageService_FetchQuote_Success(t *testing.T) {
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("function") != "GLOBAL_QUOTE" {
			t.Errorf("function = %q, want GLOBAL_QUOTE", r.URL.Query().Get("function"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"Global Quote": {
				"01. symbol": "AAPL",
				"02. open": "173.00",
				"03. high": "176.00",
				"04. low": "172.10",
				"05. price": "175.50",
				"06. volume": "50000000",
				"07. latest trading day": "2025-01-15",
				"08. previous close": "173.25",
				"09. change": "2.25",
				"10. change percent": "1.2987%"
			}
		}`))
	}))
	defer server.Close()

	service := NewAlphaVantageService("test-key")
	service.baseURL = server.URL

	quote, err := service.FetchQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchQuote() error = %v", err)
	}
	if quote.Price.String() != "175.5" {
		t.Errorf("Price = %s, want 175.5", quote.Price)
	}
	if quote.ChangePercent != 1.2987 {
		t.Errorf("ChangePercent = %v, want percent sign stripped", quote.ChangePercent)
	}
	if quote.Volume != 50000000 {
		t.Errorf("Volume = %d, want 50000000", quote.Volume)
	}
}

func TestAlphaVantageService_FetchQuote_ThrottleNote(t *testing.T) {
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))

	// Alpha Vantage reports throttling with HTTP 200 and a Note key
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Note": "Thank you for using Alpha Vantage! Our standard API rate limit is 25 requests per day."}`))
	}))
	defer server.Close()

	service := NewAlphaVantageService("test-key")
	service.baseURL = server.URL

	_, err := service.FetchQuote(context.Background(), "AAPL")
	if err == nil {
		t.Fatal("expected error")
	}
	if ClassifyFailure(err) != FailureTransient {
		t.Errorf("throttle note should classify as transient, got %v", ClassifyFailure(err))
	}
}

func TestAlphaVantageService_FetchQuote_ErrorMessageIsNotFound(t *testing.T) {
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Error Message": "Invalid API call."}`))
	}))
	defer server.Close()

	service := NewAlphaVantageService("test-key")
	service.baseURL = server.URL

	_, err := service.FetchQuote(context.Background(), "NOSUCH")
	if !errors.Is(err, ErrSymbolNotFound) {
		t.Errorf("FetchQuote() error = %v, want ErrSymbolNotFound", err)
	}
}

func TestAlphaVantageService_FetchQuote_EmptyQuoteIsNotFound(t *testing.T) {
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))

	// Unknown symbols come back as an empty Global Quote object
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"Global Quote": {}}`))
	}))
	defer server.Close()

	service := NewAlphaVantageService("test-key")
	service.baseURL = server.URL

	_, err := service.FetchQuote(context.Background(), "NOSUCH")
	if !errors.Is(err, ErrSymbolNotFound) {
		t.Errorf("FetchQuote() error = %v, want ErrSymbolNotFound", err)
	}
}

func TestAlphaVantageService_FetchFundamentals_Success(t *testing.T) {
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("function") != "OVERVIEW" {
			t.Errorf("function = %q, want OVERVIEW", r.URL.Query().Get("function"))
		}
		w.Write([]byte(`{
			"Symbol": "AAPL",
			"Name": "Apple Inc",
			"MarketCapitalization": "2500000000000",
			"PERatio": "28.5",
			"QuarterlyEarningsGrowthYOY": "0.05",
			"QuarterlyRevenueGrowthYOY": "0.08",
			"SharesOutstanding": "15000000000"
		}`))
	}))
	defer server.Close()

	service := NewAlphaVantageService("test-key")
	service.baseURL = server.URL

	f, err := service.FetchFundamentals(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("FetchFundamentals() error = %v", err)
	}
	if f.CompanyName != "Apple Inc" {
		t.Errorf("CompanyName = %q, want 'Apple Inc'", f.CompanyName)
	}
	if f.PERatio == nil || *f.PERatio != 28.5 {
		t.Errorf("PERatio = %v, want 28.5", f.PERatio)
	}
	if f.RevenueGrowth == nil || *f.RevenueGrowth != 8 {
		t.Errorf("RevenueGrowth = %v, want 8", f.RevenueGrowth)
	}
	if f.NetIncomeGrowth == nil || *f.NetIncomeGrowth != 5 {
		t.Errorf("NetIncomeGrowth = %v, want 5", f.NetIncomeGrowth)
	}
	if f.MarketCap != 2500000000000 {
		t.Errorf("MarketCap = %d, want 2500000000000", f.MarketCap)
	}
	// OVERVIEW does not cover these pillars
	if f.ROIC != nil || f.LiabilitiesRatio != nil || f.PriceToFreeCashFlow != nil {
		t.Error("metrics absent from OVERVIEW should stay nil")
	}
}

func TestAlphaVantageService_FetchFundamentals_NoneValues(t *testing.T) {
	SetGlobalRegistry(NewCircuitBreakerRegistry(DefaultCircuitBreakerConfig))

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"Symbol": "NEWCO",
			"Name": "New Company",
			"PERatio": "None",
			"QuarterlyEarningsGrowthYOY": "-",
			"QuarterlyRevenueGrowthYOY": ""
		}`))
	}))
	defer server.Close()

	service := NewAlphaVantageService("test-key")
	service.baseURL = server.URL

	f, err := service.FetchFundamentals(context.Background(), "NEWCO")
	if err != nil {
		t.Fatalf("FetchFundamentals() error = %v", err)
	}
	if f.PERatio != nil || f.NetIncomeGrowth != nil || f.RevenueGrowth != nil {
		t.Error("placeholder values should map to nil metrics")
	}
}

func TestAvFloat(t *testing.T) {
	tests := []struct {
		input  string
		want   float64
		wantOK bool
	}{
		{"28.5", 28.5, true},
		{"-0.05", -0.05, true},
		{"None", 0, false},
		{"-", 0, false},
		{"", 0, false},
		{"garbage", 0, false},
	}

	for _, tt := range tests {
		got, ok := avFloat(tt.input)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("avFloat(%q) = (%v, %v), want (%v, %v)", tt.input, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestToAlphaVantageSymbol(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"AAPL", "AAPL"},
		{"RELIANCE.NS", "RELIANCE.BSE"},
		{"INFY.BO", "INFY.BSE"},
	}

	for _, tt := range tests {
		if got := toAlphaVantageSymbol(tt.input); got != tt.want {
			t.Errorf("toAlphaVantageSymbol(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
