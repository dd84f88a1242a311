// Package api implements the HTTP surface of the gateway
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"finance-gateway/calculator"
	"finance-gateway/config"
	"finance-gateway/internal/app"
	"finance-gateway/models"
	"finance-gateway/services"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

// Handler handles HTTP API requests
type Handler struct {
	app *app.App
	cfg *config.Config
}

// Response envelopes add the status field every response carries. Payload
// fields are flattened alongside it via struct embedding.
type quoteResponse struct {
	Status string `json:"status"`
	*services.QuoteResult
}

type fundamentalsResponse struct {
	Status string `json:"status"`
	*services.FundamentalsResult
}

type analysisResponse struct {
	Status string `json:"status"`
	*models.PillarReport
}

type compoundInterestResponse struct {
	Status string `json:"status"`
	*calculator.CompoundInterestResult
}

type retirementResponse struct {
	Status string `json:"status"`
	*calculator.RetirementResult
}

type portfolioValueResponse struct {
	Status string `json:"status"`
	*app.PortfolioValue
}

// NewHandler creates a new Handler
func NewHandler(a *app.App, cfg *config.Config) *Handler {
	return &Handler{app: a, cfg: cfg}
}

// handleHealth returns the health status of the gateway
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	dbStatus := "not_configured"
	status := "ok"

	if h.app.HasDatabase() {
		if err := h.app.DatabaseHealth(r.Context()); err == nil {
			dbStatus = "connected"
		} else {
			dbStatus = "disconnected"
			status = "degraded"
		}
	}

	h.jsonResponse(w, map[string]any{
		"status": status,
		"services": map[string]any{
			"database": dbStatus,
			"sources": map[string]bool{
				"fmp":           h.cfg.HasFMP(),
				"alpha_vantage": h.cfg.HasAlphaVantage(),
				"yahoo_finance": true,
			},
		},
		"circuit_breakers": services.GetGlobalRegistry().Status(),
	})
}

// handleQuote returns the latest quote for a symbol
func (h *Handler) handleQuote(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.GetQuote(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		h.resolutionError(w, err)
		return
	}
	h.jsonResponse(w, quoteResponse{Status: "success", QuoteResult: result})
}

// handleFundamentals returns the fundamentals record for a symbol
func (h *Handler) handleFundamentals(w http.ResponseWriter, r *http.Request) {
	result, err := h.app.GetFundamentals(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		h.resolutionError(w, err)
		return
	}
	h.jsonResponse(w, fundamentalsResponse{Status: "success", FundamentalsResult: result})
}

// handleAnalysis returns the eight pillar report for a symbol
func (h *Handler) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	report, err := h.app.Analyze(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		h.resolutionError(w, err)
		return
	}
	h.jsonResponse(w, analysisResponse{Status: "success", PillarReport: report})
}

// handleCompoundInterest runs a compound interest projection
func (h *Handler) handleCompoundInterest(w http.ResponseWriter, r *http.Request) {
	var input calculator.CompoundInterestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.app.CompoundInterest(input)
	if err != nil {
		h.calculatorError(w, err)
		return
	}
	h.jsonResponse(w, compoundInterestResponse{Status: "success", CompoundInterestResult: result})
}

// handleRetirement runs a retirement savings projection
func (h *Handler) handleRetirement(w http.ResponseWriter, r *http.Request) {
	var input calculator.RetirementInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.app.Retirement(input)
	if err != nil {
		h.calculatorError(w, err)
		return
	}
	h.jsonResponse(w, retirementResponse{Status: "success", RetirementResult: result})
}

// handlePortfolioValue values a share count at the latest quote
func (h *Handler) handlePortfolioValue(w http.ResponseWriter, r *http.Request) {
	symbol := r.URL.Query().Get("symbol")
	if symbol == "" {
		h.jsonError(w, "symbol is required", http.StatusBadRequest)
		return
	}

	shares, err := decimal.NewFromString(r.URL.Query().Get("shares"))
	if err != nil || shares.IsNegative() || shares.IsZero() {
		h.jsonError(w, "shares must be a positive number", http.StatusBadRequest)
		return
	}

	result, err := h.app.GetPortfolioValue(r.Context(), symbol, shares)
	if err != nil {
		h.resolutionError(w, err)
		return
	}
	h.jsonResponse(w, portfolioValueResponse{Status: "success", PortfolioValue: result})
}

// resolutionError maps a market data resolution failure to an HTTP status.
// A symbol no provider recognizes is a 404; exhausted providers are a 502
// since the gateway itself is healthy.
func (h *Handler) resolutionError(w http.ResponseWriter, err error) {
	if errors.Is(err, services.ErrInvalidSymbol) {
		h.jsonError(w, "invalid symbol format (alphanumeric, dots, and dashes only, max 10 characters)", http.StatusBadRequest)
		return
	}

	var exhausted *services.ExhaustedError
	if errors.As(err, &exhausted) {
		if exhausted.AllNotFound() {
			h.jsonError(w, err.Error(), http.StatusNotFound)
			return
		}
		h.jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}

	h.jsonError(w, err.Error(), http.StatusInternalServerError)
}

// calculatorError maps a calculator failure to an HTTP status
func (h *Handler) calculatorError(w http.ResponseWriter, err error) {
	var validation *calculator.ValidationError
	if errors.As(err, &validation) {
		h.jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	h.jsonError(w, err.Error(), http.StatusInternalServerError)
}

func (h *Handler) jsonResponse(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": message})
}
