package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"finance-gateway/config"
	"finance-gateway/models"
	"finance-gateway/observability"
)

// symbolPattern matches the canonical symbol form after normalization.
// Dots and hyphens cover exchange suffixes (RELIANCE.NS) and share classes
// (BRK-B).
var symbolPattern = regexp.MustCompile(`^[A-Z0-9.\-]{1,10}$`)

// NormalizeSymbol trims and uppercases a raw symbol and validates its shape.
// Returns ErrInvalidSymbol when the result is not a plausible ticker.
func NormalizeSymbol(raw string) (string, error) {
	symbol := strings.ToUpper(strings.TrimSpace(raw))
	if !symbolPattern.MatchString(symbol) {
		return "", ErrInvalidSymbol
	}
	return symbol, nil
}

// QuoteResult is a resolved quote together with its provenance
type QuoteResult struct {
	Quote     *models.Quote `json:"quote"`
	Source    string        `json:"data_source"`
	FromCache bool          `json:"from_cache"`
}

// FundamentalsResult is a resolved fundamentals record together with its
// provenance
type FundamentalsResult struct {
	Fundamentals *models.Fundamentals `json:"fundamentals"`
	Source       string               `json:"data_source"`
	FromCache    bool                 `json:"from_cache"`
}

// MarketDataService resolves quotes and fundamentals against an ordered list
// of data sources with a cache in front. Sources are tried in priority order;
// a transient failure or an unconfigured source falls through to the next one.
type MarketDataService struct {
	sources        []DataSource
	cache          QuoteCache
	notFoundPolicy config.NotFoundPolicy
	timeout        time.Duration
}

// NewMarketDataService creates a MarketDataService. Sources are consulted in
// the order given.
func NewMarketDataService(cfg *config.Config, cache QuoteCache, sources ...DataSource) *MarketDataService {
	return &MarketDataService{
		sources:        sources,
		cache:          cache,
		notFoundPolicy: cfg.MarketData.NotFoundPolicy,
		timeout:        time.Duration(cfg.MarketData.RequestTimeoutSeconds) * time.Second,
	}
}

// GetQuote resolves the latest quote for a symbol
func (s *MarketDataService) GetQuote(ctx context.Context, symbol string) (*QuoteResult, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	key := CacheKey{Symbol: symbol, Kind: models.KindQuote}

	if entry := s.cacheLookup(ctx, key); entry != nil {
		if quote, ok := entry.Payload.(*models.Quote); ok {
			timer.ObserveResolution(string(models.KindQuote), "cache_hit")
			return &QuoteResult{Quote: quote, Source: entry.Source, FromCache: true}, nil
		}
	}

	quote, source, depth, err := resolve(ctx, s, key, func(ctx context.Context, src DataSource) (*models.Quote, error) {
		return src.FetchQuote(ctx, symbol)
	})
	if err != nil {
		timer.ObserveResolution(string(models.KindQuote), "error")
		metrics.RecordResolutionError(string(models.KindQuote))
		return nil, err
	}

	s.cacheStore(ctx, key, quote, source)
	timer.ObserveResolution(string(models.KindQuote), "ok")
	metrics.RecordFallbackDepth(string(models.KindQuote), depth)

	return &QuoteResult{Quote: quote, Source: source}, nil
}

// GetFundamentals resolves the fundamentals record for a symbol
func (s *MarketDataService) GetFundamentals(ctx context.Context, symbol string) (*FundamentalsResult, error) {
	symbol, err := NormalizeSymbol(symbol)
	if err != nil {
		return nil, err
	}

	metrics := observability.GetMetrics()
	timer := metrics.NewTimer()
	key := CacheKey{Symbol: symbol, Kind: models.KindFundamentals}

	if entry := s.cacheLookup(ctx, key); entry != nil {
		if fundamentals, ok := entry.Payload.(*models.Fundamentals); ok {
			timer.ObserveResolution(string(models.KindFundamentals), "cache_hit")
			return &FundamentalsResult{Fundamentals: fundamentals, Source: entry.Source, FromCache: true}, nil
		}
	}

	fundamentals, source, depth, err := resolve(ctx, s, key, func(ctx context.Context, src DataSource) (*models.Fundamentals, error) {
		return src.FetchFundamentals(ctx, symbol)
	})
	if err != nil {
		timer.ObserveResolution(string(models.KindFundamentals), "error")
		metrics.RecordResolutionError(string(models.KindFundamentals))
		return nil, err
	}

	s.cacheStore(ctx, key, fundamentals, source)
	timer.ObserveResolution(string(models.KindFundamentals), "ok")
	metrics.RecordFallbackDepth(string(models.KindFundamentals), depth)

	return &FundamentalsResult{Fundamentals: fundamentals, Source: source}, nil
}

// resolve walks the source list in priority order until one answers. It
// returns the payload, the name of the source that answered, and how many
// sources were tried. When every source fails the error is an ExhaustedError
// carrying the per-source failure modes.
func resolve[T any](ctx context.Context, s *MarketDataService, key CacheKey, fetch func(context.Context, DataSource) (T, error)) (T, string, int, error) {
	var zero T
	metrics := observability.GetMetrics()
	failures := make([]SourceFailure, 0, len(s.sources))

	for i, src := range s.sources {
		srcCtx, cancel := context.WithTimeout(ctx, s.timeout)
		payload, err := fetch(srcCtx, src)
		cancel()

		if err == nil {
			if i > 0 {
				observability.WithSymbol(key.Symbol).Info("resolved via fallback source",
					"source", src.Name(), "kind", string(key.Kind), "depth", i+1)
			}
			return payload, src.Name(), i + 1, nil
		}

		kind := ClassifyFailure(err)
		metrics.RecordSourceError(src.Name(), string(key.Kind), string(kind))
		failures = append(failures, SourceFailure{
			Source: src.Name(),
			Kind:   kind,
			Reason: err.Error(),
		})

		switch kind {
		case FailureUnconfigured:
			observability.WithSource(src.Name()).Debug("skipping unconfigured source",
				"symbol", key.Symbol, "kind", string(key.Kind))
		case FailureNotFound:
			if s.notFoundPolicy == config.NotFoundStop {
				observability.WithSymbol(key.Symbol).Info("symbol not found, stopping fallback",
					"source", src.Name(), "kind", string(key.Kind))
				return zero, "", 0, &ExhaustedError{Symbol: key.Symbol, Kind: key.Kind, Failures: failures}
			}
			observability.WithSymbol(key.Symbol).Debug("symbol not found, trying next source",
				"source", src.Name(), "kind", string(key.Kind))
		default:
			observability.WithSource(src.Name()).Warn("source failed, trying next",
				"symbol", key.Symbol, "kind", string(key.Kind), "error", err.Error())
		}

		if ctx.Err() != nil {
			return zero, "", 0, fmt.Errorf("resolution of %s aborted after %d of %d sources: %w",
				key.Symbol, len(failures), len(s.sources), ctx.Err())
		}
	}

	return zero, "", 0, &ExhaustedError{Symbol: key.Symbol, Kind: key.Kind, Failures: failures}
}

// cacheLookup returns the cached entry for key, or nil on a miss. Cache
// errors degrade to a miss so a broken backend never blocks resolution.
func (s *MarketDataService) cacheLookup(ctx context.Context, key CacheKey) *CacheEntry {
	if s.cache == nil {
		return nil
	}
	metrics := observability.GetMetrics()

	entry, err := s.cache.Get(ctx, key)
	if err != nil {
		observability.WithError(err).Warn("cache lookup failed", "key", key.String())
		metrics.RecordCacheMiss(string(key.Kind))
		return nil
	}
	if entry == nil {
		metrics.RecordCacheMiss(string(key.Kind))
		return nil
	}
	metrics.RecordCacheHit(string(key.Kind))
	return entry
}

// cacheStore writes a freshly fetched payload. Write failures are logged and
// swallowed; the caller already has the data.
func (s *MarketDataService) cacheStore(ctx context.Context, key CacheKey, payload any, source string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Put(ctx, key, payload, source); err != nil {
		observability.WithError(err).Warn("cache write failed", "key", key.String())
		return
	}
	observability.GetMetrics().RecordCacheWrite(string(key.Kind), source)
}
