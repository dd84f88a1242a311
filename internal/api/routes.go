package api

import (
	"net/http"
	"strings"
	"time"

	"finance-gateway/config"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter creates and configures a Chi router with all routes
func NewRouter(h *Handler, cfg *config.Config) http.Handler {
	r := chi.NewRouter()

	// Middleware stack
	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second))
	r.Use(corsMiddleware(cfg.HTTP.CORSAllowedOrigins))
	r.Use(MetricsMiddleware)

	// Prometheus scrape endpoint
	r.Handle("/metrics", promhttp.Handler())

	// API routes
	r.Route("/api", func(r chi.Router) {
		r.Get("/health", h.handleHealth)

		// Market data
		r.Get("/quote/{symbol}", h.handleQuote)
		r.Get("/fundamentals/{symbol}", h.handleFundamentals)

		// Analysis
		r.Get("/analysis/{symbol}", h.handleAnalysis)

		// Calculators
		r.Route("/calculators", func(r chi.Router) {
			r.Post("/compound-interest", h.handleCompoundInterest)
			r.Post("/retirement", h.handleRetirement)
		})

		// Portfolio
		r.Get("/portfolio-value", h.handlePortfolioValue)
	})

	return r
}

// corsMiddleware returns CORS middleware for the configured origins. The
// config value is "*" or a comma-separated origin list; a listed origin is
// echoed back per request since Access-Control-Allow-Origin admits only a
// single value.
func corsMiddleware(allowedOrigins string) func(next http.Handler) http.Handler {
	allowAll := allowedOrigins == "*"
	allowed := make(map[string]bool)
	for _, origin := range strings.Split(allowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			allowed[origin] = true
		}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if origin := r.Header.Get("Origin"); allowed[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
