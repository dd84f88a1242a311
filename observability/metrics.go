package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the gateway
type Metrics struct {
	// Quote/fundamentals resolution metrics
	ResolutionsTotal   *prometheus.CounterVec
	ResolutionDuration *prometheus.HistogramVec
	ResolutionErrors   *prometheus.CounterVec
	FallbackDepth      *prometheus.HistogramVec

	// Cache metrics
	CacheHitsTotal   *prometheus.CounterVec
	CacheMissesTotal *prometheus.CounterVec
	CacheWritesTotal *prometheus.CounterVec

	// Data source metrics
	SourceRequestsTotal *prometheus.CounterVec
	SourceErrorsTotal   *prometheus.CounterVec
	SourceDuration      *prometheus.HistogramVec

	// Calculator metrics
	CalculatorRequestsTotal *prometheus.CounterVec
	CalculatorErrorsTotal   *prometheus.CounterVec

	// Analysis metrics
	AnalysisRequestsTotal *prometheus.CounterVec
	AnalysisScores        *prometheus.HistogramVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Circuit breaker metrics
	CircuitBreakerState *prometheus.GaugeVec
	CircuitBreakerTrips *prometheus.CounterVec
}

// defaultBuckets are the default histogram buckets for duration metrics (in seconds)
var defaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

// depthBuckets count how many sources were tried before a resolution settled
var depthBuckets = []float64{1, 2, 3}

// scoreBuckets are histogram buckets for aggregate analysis scores (0 to 100)
var scoreBuckets = []float64{0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}

// globalMetrics is the global metrics instance
var globalMetrics *Metrics

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	factory := promauto.With(reg)

	m := &Metrics{
		ResolutionsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "finance_gateway",
				Subsystem: "marketdata",
				Name:      "resolutions_total",
				Help:      "Total number of quote/fundamentals resolutions",
			},
			[]string{"kind", "outcome"},
		),
		ResolutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "finance_gateway",
				Subsystem: "marketdata",
				Name:      "resolution_duration_seconds",
				Help:      "Duration of quote/fundamentals resolutions in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"kind", "outcome"},
		),
		ResolutionErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "finance_gateway",
				Subsystem: "marketdata",
				Name:      "resolution_errors_total",
				Help:      "Total number of resolutions where every source failed",
			},
			[]string{"kind"},
		),
		FallbackDepth: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "finance_gateway",
				Subsystem: "marketdata",
				Name:      "fallback_depth",
				Help:      "Number of sources tried before a resolution succeeded",
				Buckets:   depthBuckets,
			},
			[]string{"kind"},
		),
		CacheHitsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "finance_gateway",
				Subsystem: "cache",
				Name:      "hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"kind"},
		),
		CacheMissesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "finance_gateway",
				Subsystem: "cache",
				Name:      "misses_total",
				Help:      "Total number of cache misses (including expired entries)",
			},
			[]string{"kind"},
		),
		CacheWritesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "finance_gateway",
				Subsystem: "cache",
				Name:      "writes_total",
				Help:      "Total number of cache writes",
			},
			[]string{"kind", "source"},
		),
		SourceRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "finance_gateway",
				Subsystem: "source",
				Name:      "requests_total",
				Help:      "Total number of data source requests",
			},
			[]string{"source", "operation"},
		),
		SourceErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "finance_gateway",
				Subsystem: "source",
				Name:      "errors_total",
				Help:      "Total number of data source failures by kind",
			},
			[]string{"source", "operation", "error_kind"},
		),
		SourceDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "finance_gateway",
				Subsystem: "source",
				Name:      "request_duration_seconds",
				Help:      "Duration of data source requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"source", "operation"},
		),
		CalculatorRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "finance_gateway",
				Subsystem: "calculator",
				Name:      "requests_total",
				Help:      "Total number of calculator invocations",
			},
			[]string{"calculator"},
		),
		CalculatorErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "finance_gateway",
				Subsystem: "calculator",
				Name:      "errors_total",
				Help:      "Total number of calculator input validation failures",
			},
			[]string{"calculator"},
		),
		AnalysisRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "finance_gateway",
				Subsystem: "analysis",
				Name:      "requests_total",
				Help:      "Total number of eight pillar analysis requests",
			},
			[]string{"symbol"},
		),
		AnalysisScores: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "finance_gateway",
				Subsystem: "analysis",
				Name:      "scores",
				Help:      "Aggregate eight pillar scores",
				Buckets:   scoreBuckets,
			},
			[]string{"recommendation"},
		),
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "finance_gateway",
				Subsystem: "http",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status_code"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "finance_gateway",
				Subsystem: "http",
				Name:      "request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   defaultBuckets,
			},
			[]string{"method", "path"},
		),
		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "finance_gateway",
				Subsystem: "http",
				Name:      "response_size_bytes",
				Help:      "Size of HTTP responses in bytes",
				Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
			},
			[]string{"method", "path"},
		),
		CircuitBreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "finance_gateway",
				Subsystem: "circuit_breaker",
				Name:      "state",
				Help:      "Current state of circuit breakers (0=closed, 1=half-open, 2=open)",
			},
			[]string{"service"},
		),
		CircuitBreakerTrips: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "finance_gateway",
				Subsystem: "circuit_breaker",
				Name:      "trips_total",
				Help:      "Total number of circuit breaker trips",
			},
			[]string{"service"},
		),
	}

	return m
}

// InitMetrics initializes the global metrics instance
func InitMetrics() *Metrics {
	globalMetrics = NewMetrics(nil)
	return globalMetrics
}

// InitMetricsWithRegistry initializes the global metrics with a custom registry.
// Useful for tests that need an isolated registry.
func InitMetricsWithRegistry(reg prometheus.Registerer) *Metrics {
	globalMetrics = NewMetrics(reg)
	return globalMetrics
}

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	if globalMetrics == nil {
		return InitMetrics()
	}
	return globalMetrics
}

// RecordResolution records a completed quote/fundamentals resolution
func (m *Metrics) RecordResolution(kind, outcome string, duration time.Duration) {
	m.ResolutionsTotal.WithLabelValues(kind, outcome).Inc()
	m.ResolutionDuration.WithLabelValues(kind, outcome).Observe(duration.Seconds())
}

// RecordResolutionError records a resolution where every source failed
func (m *Metrics) RecordResolutionError(kind string) {
	m.ResolutionErrors.WithLabelValues(kind).Inc()
}

// RecordFallbackDepth records how many sources were tried before success
func (m *Metrics) RecordFallbackDepth(kind string, depth int) {
	m.FallbackDepth.WithLabelValues(kind).Observe(float64(depth))
}

// RecordCacheHit records a cache hit
func (m *Metrics) RecordCacheHit(kind string) {
	m.CacheHitsTotal.WithLabelValues(kind).Inc()
}

// RecordCacheMiss records a cache miss
func (m *Metrics) RecordCacheMiss(kind string) {
	m.CacheMissesTotal.WithLabelValues(kind).Inc()
}

// RecordCacheWrite records a cache write
func (m *Metrics) RecordCacheWrite(kind, source string) {
	m.CacheWritesTotal.WithLabelValues(kind, source).Inc()
}

// RecordSourceRequest records a data source request
func (m *Metrics) RecordSourceRequest(source, operation string) {
	m.SourceRequestsTotal.WithLabelValues(source, operation).Inc()
}

// RecordSourceError records a data source failure
func (m *Metrics) RecordSourceError(source, operation, errorKind string) {
	m.SourceErrorsTotal.WithLabelValues(source, operation, errorKind).Inc()
}

// RecordSourceDuration records the duration of a data source call
func (m *Metrics) RecordSourceDuration(source, operation string, duration time.Duration) {
	m.SourceDuration.WithLabelValues(source, operation).Observe(duration.Seconds())
}

// RecordCalculatorRequest records a calculator invocation
func (m *Metrics) RecordCalculatorRequest(calculator string) {
	m.CalculatorRequestsTotal.WithLabelValues(calculator).Inc()
}

// RecordCalculatorError records a calculator validation failure
func (m *Metrics) RecordCalculatorError(calculator string) {
	m.CalculatorErrorsTotal.WithLabelValues(calculator).Inc()
}

// RecordAnalysisRequest records an eight pillar analysis request
func (m *Metrics) RecordAnalysisRequest(symbol string) {
	m.AnalysisRequestsTotal.WithLabelValues(symbol).Inc()
}

// RecordAnalysisScore records an aggregate analysis score
func (m *Metrics) RecordAnalysisScore(recommendation string, score float64) {
	m.AnalysisScores.WithLabelValues(recommendation).Observe(score)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, statusCode string, duration time.Duration, responseSize int) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.HTTPResponseSize.WithLabelValues(method, path).Observe(float64(responseSize))
}

// SetCircuitBreakerState sets the current state of a circuit breaker
func (m *Metrics) SetCircuitBreakerState(service string, state int) {
	m.CircuitBreakerState.WithLabelValues(service).Set(float64(state))
}

// RecordCircuitBreakerTrip records a circuit breaker trip
func (m *Metrics) RecordCircuitBreakerTrip(service string) {
	m.CircuitBreakerTrips.WithLabelValues(service).Inc()
}

// Timer is a helper for timing operations
type Timer struct {
	start   time.Time
	metrics *Metrics
}

// NewTimer creates a new timer
func (m *Metrics) NewTimer() *Timer {
	return &Timer{
		start:   time.Now(),
		metrics: m,
	}
}

// ObserveResolution records the resolution duration and outcome
func (t *Timer) ObserveResolution(kind, outcome string) {
	t.metrics.RecordResolution(kind, outcome, time.Since(t.start))
}

// ObserveSource records the data source call duration
func (t *Timer) ObserveSource(source, operation string) {
	t.metrics.RecordSourceDuration(source, operation, time.Since(t.start))
}

// Duration returns the elapsed time
func (t *Timer) Duration() time.Duration {
	return time.Since(t.start)
}
