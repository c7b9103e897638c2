package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	namespace TEXT NOT NULL,
	key       TEXT NOT NULL,
	value     BLOB NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (namespace, key)
);
CREATE INDEX IF NOT EXISTS idx_kv_namespace ON kv(namespace);
`

// SQLiteBackend implements Backend on a local SQLite database.
type SQLiteBackend struct {
	db     *sql.DB
	logger *slog.Logger
}

// NewSQLiteBackend opens (or creates) the database at path and ensures the
// schema exists. Pass ":memory:" for an ephemeral database.
func NewSQLiteBackend(path string, logger *slog.Logger) (*SQLiteBackend, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", path, err)
	}

	// SQLite is single-writer by design. A single shared connection lets
	// database/sql serialize callers instead of fighting for write locks.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("setting pragma: %w", err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensuring schema: %w", err)
	}

	logger.Debug("sqlite backend ready", "path", path)
	return &SQLiteBackend{db: db, logger: logger}, nil
}

// Get returns the bytes stored under key, or ErrNotFound.
func (b *SQLiteBackend) Get(ctx context.Context, namespace, key string) ([]byte, error) {
	var value []byte
	err := b.db.QueryRowContext(ctx,
		"SELECT value FROM kv WHERE namespace = ? AND key = ?", namespace, key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting %s/%s: %w", namespace, key, err)
	}
	return value, nil
}

// Set stores value under key, overwriting any previous value.
func (b *SQLiteBackend) Set(ctx context.Context, namespace, key string, value []byte) error {
	_, err := b.db.ExecContext(ctx,
		`INSERT INTO kv (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		namespace, key, value, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("setting %s/%s: %w", namespace, key, err)
	}
	return nil
}

// Delete removes key from the namespace.
func (b *SQLiteBackend) Delete(ctx context.Context, namespace, key string) error {
	res, err := b.db.ExecContext(ctx,
		"DELETE FROM kv WHERE namespace = ? AND key = ?", namespace, key)
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", namespace, key, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting %s/%s: %w", namespace, key, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListNamespace returns all entries in the namespace in key order.
func (b *SQLiteBackend) ListNamespace(ctx context.Context, namespace string) ([]Entry, error) {
	rows, err := b.db.QueryContext(ctx,
		"SELECT key, value FROM kv WHERE namespace = ? ORDER BY key", namespace)
	if err != nil {
		return nil, fmt.Errorf("listing namespace %s: %w", namespace, err)
	}
	defer func() { _ = rows.Close() }()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("scanning namespace %s: %w", namespace, err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing namespace %s: %w", namespace, err)
	}
	return entries, nil
}

// ClearNamespace removes every entry in the namespace.
func (b *SQLiteBackend) ClearNamespace(ctx context.Context, namespace string) error {
	if _, err := b.db.ExecContext(ctx,
		"DELETE FROM kv WHERE namespace = ?", namespace); err != nil {
		return fmt.Errorf("clearing namespace %s: %w", namespace, err)
	}
	return nil
}

// Close closes the database connection.
func (b *SQLiteBackend) Close() error {
	return b.db.Close()
}
