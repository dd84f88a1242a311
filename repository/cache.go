package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"finance-gateway/models"
	"finance-gateway/services"

	"github.com/jackc/pgx/v5"
)

// PostgresCache is the database-backed services.QuoteCache implementation.
// Expiry is enforced by the database so clock skew between gateway instances
// does not matter.
type PostgresCache struct {
	repo *Repository
	ttl  time.Duration
}

// NewPostgresCache creates a PostgresCache with the given TTL
func NewPostgresCache(repo *Repository, ttl time.Duration) *PostgresCache {
	if ttl <= 0 {
		ttl = services.DefaultCacheTTL
	}
	return &PostgresCache{repo: repo, ttl: ttl}
}

// Get retrieves the cached payload for key. A missing or expired row is a
// miss, returned as (nil, nil).
func (c *PostgresCache) Get(ctx context.Context, key services.CacheKey) (*services.CacheEntry, error) {
	var (
		data       []byte
		source     string
		insertedAt time.Time
	)

	// Let the database handle the expiry check to avoid timezone issues
	err := c.repo.pool.QueryRow(ctx, `
		SELECT data, source, inserted_at FROM market_data_cache
		WHERE symbol = $1 AND data_type = $2 AND expires_at > NOW()
	`, key.Symbol, string(key.Kind)).Scan(&data, &source, &insertedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cache: %w", err)
	}

	payload, err := decodePayload(key.Kind, data)
	if err != nil {
		return nil, err
	}

	return &services.CacheEntry{
		Payload:    payload,
		Source:     source,
		InsertedAt: insertedAt,
	}, nil
}

// Put stores a payload under key, replacing any existing row
func (c *PostgresCache) Put(ctx context.Context, key services.CacheKey, payload any, source string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal cache data: %w", err)
	}

	_, err = c.repo.pool.Exec(ctx, `
		INSERT INTO market_data_cache (symbol, data_type, source, data, inserted_at, expires_at)
		VALUES ($1, $2, $3, $4, NOW(), NOW() + $5::interval)
		ON CONFLICT (symbol, data_type)
		DO UPDATE SET source = EXCLUDED.source, data = EXCLUDED.data,
			inserted_at = NOW(), expires_at = NOW() + $5::interval
	`, key.Symbol, string(key.Kind), source, data, c.ttl.String())

	if err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Invalidate removes the cached row for key
func (c *PostgresCache) Invalidate(ctx context.Context, key services.CacheKey) error {
	_, err := c.repo.pool.Exec(ctx, `
		DELETE FROM market_data_cache WHERE symbol = $1 AND data_type = $2
	`, key.Symbol, string(key.Kind))

	if err != nil {
		return fmt.Errorf("failed to invalidate cache: %w", err)
	}
	return nil
}

// CleanExpired removes all expired rows and returns how many were dropped
func (c *PostgresCache) CleanExpired(ctx context.Context) (int64, error) {
	result, err := c.repo.pool.Exec(ctx, `DELETE FROM market_data_cache WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to clean expired cache: %w", err)
	}
	return result.RowsAffected(), nil
}

// decodePayload deserializes a cached row into the concrete model for its kind
func decodePayload(kind models.DataKind, data []byte) (any, error) {
	switch kind {
	case models.KindQuote:
		var quote models.Quote
		if err := json.Unmarshal(data, &quote); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cached quote: %w", err)
		}
		return &quote, nil
	case models.KindFundamentals:
		var fundamentals models.Fundamentals
		if err := json.Unmarshal(data, &fundamentals); err != nil {
			return nil, fmt.Errorf("failed to unmarshal cached fundamentals: %w", err)
		}
		return &fundamentals, nil
	default:
		return nil, fmt.Errorf("unknown cache data type %q", kind)
	}
}

var _ services.QuoteCache = (*PostgresCache)(nil)
