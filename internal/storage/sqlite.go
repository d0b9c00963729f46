package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// SQLiteBackend keeps every collection as one row of a SQLite table.
type SQLiteBackend struct {
	db    *sql.DB
	table string
}

// OpenSQLite opens (or creates) the database file at path and makes sure
// the collections table exists.
func OpenSQLite(ctx context.Context, path, table string) (*SQLiteBackend, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	// journal_mode is not supported for in-memory databases.
	_, _ = db.ExecContext(ctx, `PRAGMA journal_mode=WAL`)
	if _, err := db.ExecContext(ctx, `PRAGMA busy_timeout=5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy_timeout: %w", err)
	}

	b := &SQLiteBackend{db: db, table: pq.QuoteIdentifier(table)}

	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		name TEXT PRIMARY KEY,
		body TEXT NOT NULL
	)`, b.table)
	if _, err := db.ExecContext(ctx, query); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create collections table: %w", err)
	}

	return b, nil
}

// Read returns the stored document.
func (b *SQLiteBackend) Read(ctx context.Context, name string) ([]byte, error) {
	query := fmt.Sprintf(`SELECT body FROM %s WHERE name = ?`, b.table)

	var body string
	if err := b.db.QueryRowContext(ctx, query, name).Scan(&body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrCollectionMissing, name)
		}
		return nil, fmt.Errorf("select collection: %w", err)
	}
	return []byte(body), nil
}

// Write upserts the document in a single statement.
func (b *SQLiteBackend) Write(ctx context.Context, name string, data []byte) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, body) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET body = excluded.body
	`, b.table)

	if _, err := b.db.ExecContext(ctx, query, name, string(data)); err != nil {
		return fmt.Errorf("upsert collection: %w", err)
	}
	return nil
}

// Ensure inserts an empty array unless a row already exists.
func (b *SQLiteBackend) Ensure(ctx context.Context, name string) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (name, body) VALUES (?, '[]')
		ON CONFLICT(name) DO NOTHING
	`, b.table)

	if _, err := b.db.ExecContext(ctx, query, name); err != nil {
		return fmt.Errorf("seed collection: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (b *SQLiteBackend) Ping(ctx context.Context) error {
	return b.db.PingContext(ctx)
}

// Close closes the database.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
