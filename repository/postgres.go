// Package repository provides the Postgres-backed persistence layer. It is
// optional: the gateway runs with an in-memory cache when no database is
// configured.
package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository provides database access
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Repository with a PostgreSQL connection pool
func NewRepository(ctx context.Context, connString string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	return &Repository{pool: pool}, nil
}

// EnsureSchema creates the cache table if it does not exist
func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS market_data_cache (
			symbol      TEXT        NOT NULL,
			data_type   TEXT        NOT NULL,
			source      TEXT        NOT NULL,
			data        JSONB       NOT NULL,
			inserted_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			expires_at  TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (symbol, data_type)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure cache schema: %w", err)
	}
	return nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	if r.pool != nil {
		r.pool.Close()
	}
}

// Health checks if the database connection is healthy
func (r *Repository) Health(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

// Pool returns the underlying connection pool for advanced operations.
// This is primarily intended for testing and cleanup operations.
func (r *Repository) Pool() *pgxpool.Pool {
	return r.pool
}
