package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// PostgresBackend keeps every collection as one row of a PostgreSQL table.
// Documents are stored as TEXT so they round-trip byte for byte.
type PostgresBackend struct {
	pool  *pgxpool.Pool
	table string
}

// OpenPostgres connects to databaseURL and makes sure the collections
// table exists.
func OpenPostgres(ctx context.Context, databaseURL, table string) (*PostgresBackend, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database URL: %w", err)
	}

	// Connection pool settings
	config.MaxConns = 10
	config.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	b := &PostgresBackend{pool: pool, table: pq.QuoteIdentifier(table)}

	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			name       TEXT PRIMARY KEY,
			body       TEXT NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`, b.table)
	if _, err := pool.Exec(ctx, query); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create collections table: %w", err)
	}

	return b, nil
}

// Read returns the stored document.
func (b *PostgresBackend) Read(ctx context.Context, name string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT body FROM %s WHERE name = $1`, b.table)

	var body string
	if err := b.pool.QueryRow(ctx, query, name).Scan(&body); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrCollectionMissing, name)
		}
		return nil, fmt.Errorf("failed to select collection: %w", err)
	}
	return []byte(body), nil
}

// Write upserts the document in a single statement.
func (b *PostgresBackend) Write(ctx context.Context, name string, data []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, body, updated_at) VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE SET body = EXCLUDED.body, updated_at = now()
	`, b.table)

	if _, err := b.pool.Exec(ctx, query, name, string(data)); err != nil {
		return fmt.Errorf("failed to upsert collection: %w", err)
	}
	return nil
}

// Ensure inserts an empty array unless a row already exists.
func (b *PostgresBackend) Ensure(ctx context.Context, name string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, body) VALUES ($1, '[]')
		ON CONFLICT (name) DO NOTHING
	`, b.table)

	if _, err := b.pool.Exec(ctx, query, name); err != nil {
		return fmt.Errorf("failed to seed collection: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (b *PostgresBackend) Ping(ctx context.Context) error {
	return b.pool.Ping(ctx)
}

// Close closes the connection pool.
func (b *PostgresBackend) Close() error {
	b.pool.Close()
	return nil
}
