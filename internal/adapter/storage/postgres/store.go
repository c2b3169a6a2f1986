package postgres

import (
	"context"
	"errors"
	"fmt"

	"chain-connector/internal/core/ports"

	"github.com/jackc/pgx/v5"
)

const schemaVersion = 1

const (
	createRecords = `CREATE TABLE IF NOT EXISTS connector_kv (
		key   BYTEA PRIMARY KEY,
		value BYTEA NOT NULL
	)`
	createMeta = `CREATE TABLE IF NOT EXISTS connector_meta (
		name    TEXT PRIMARY KEY,
		version INTEGER NOT NULL
	)`
	insertVersion = `INSERT INTO connector_meta (name, version) VALUES ('schema', $1)
		ON CONFLICT (name) DO NOTHING`
	selectVersion = `SELECT version FROM connector_meta WHERE name = 'schema'`
)

// Store implements ports.Store on the connector_kv table.
type Store struct {
	pool Pool
}

// NewStore wraps pool. Call EnsureSchema once before use.
func NewStore(pool Pool) *Store {
	return &Store{pool: pool}
}

// EnsureSchema creates the tables if needed and rejects a database written
// by an incompatible schema version.
func (s *Store) EnsureSchema(ctx context.Context) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	if err := migrate(ctx, tx); err != nil {
		tx.Rollback(ctx)
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func migrate(ctx context.Context, tx pgx.Tx) error {
	for _, stmt := range []string{createRecords, createMeta} {
		if _, err := tx.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	if _, err := tx.Exec(ctx, insertVersion, schemaVersion); err != nil {
		return fmt.Errorf("record schema version: %w", err)
	}

	var version int
	if err := tx.QueryRow(ctx, selectVersion).Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("incompatible store version: %d", version)
	}
	return nil
}

// Get returns the value under key, or nil if absent.
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM connector_kv WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get record: %w", err)
	}
	return value, nil
}

func (s *Store) Put(ctx context.Context, key, value []byte) error {
	query := `INSERT INTO connector_kv (key, value) VALUES ($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`

	if _, err := s.pool.Exec(ctx, query, key, value); err != nil {
		return fmt.Errorf("put record: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key []byte) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM connector_kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	return nil
}

// Ping checks PostgreSQL connectivity.
func (s *Store) Ping(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, "SELECT 1")
	return err
}

// Name returns the dependency name.
func (s *Store) Name() string {
	return "postgresql"
}

var (
	_ ports.Store         = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)
