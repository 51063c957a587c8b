package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// Store is the durable key-value state that survives restarts. It plays the
// role browser local storage plays for a web client: a handful of well-known
// keys, each holding a serialized JSON document.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures the backing driver.
type Options struct {
	Driver string // "sqlite" | "postgres"
	Path   string // sqlite file path, ":memory:" for ephemeral
	DSN    string // postgres connection string
}

// Open returns a Store based on the configured driver.
func Open(opts Options) (Store, error) {
	switch opts.Driver {
	case "sqlite":
		return openSQLite(opts.Path)
	case "postgres":
		return openPostgres(opts.DSN)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", opts.Driver)
	}
}

type sqlStore struct {
	db *sql.DB
}

func (s *sqlStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %q: %w", key, err)
	}
	return value, true, nil
}

func (s *sqlStore) Set(ctx context.Context, key string, value []byte) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_store(key, value, updated_at) VALUES($1, $2, $3)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, now)
	if err != nil {
		return fmt.Errorf("set %q: %w", key, err)
	}
	return nil
}

func (s *sqlStore) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM kv_store WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete %q: %w", key, err)
	}
	return nil
}

func (s *sqlStore) Close() error {
	return s.db.Close()
}

func migrate(db *sql.DB, valueType string) error {
	statement := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS kv_store (
		key TEXT PRIMARY KEY,
		value %s NOT NULL,
		updated_at TEXT NOT NULL
	)`, valueType)
	if _, err := db.Exec(statement); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}
