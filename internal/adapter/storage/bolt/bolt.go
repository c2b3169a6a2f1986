// Package bolt implements ports.Store on a single bbolt database file.
package bolt

import (
	"context"
	"fmt"
	"time"

	"chain-connector/internal/core/ports"

	"github.com/rs/zerolog"
	bolt "go.etcd.io/bbolt"
)

const (
	metadataBucket = "metadata"
	recordsBucket  = "records"
	versionKey     = "version"

	schemaVersion = 0
)

// Store is a bbolt backed ports.Store. bbolt serializes writers, so puts to
// the same key never interleave.
type Store struct {
	db  *bolt.DB
	log zerolog.Logger
}

// Open opens (creating if needed) the database at path.
func Open(path string, log zerolog.Logger) (*Store, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("opening bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		meta, err := tx.CreateBucketIfNotExists([]byte(metadataBucket))
		if err != nil {
			return err
		}
		if _, err := tx.CreateBucketIfNotExists([]byte(recordsBucket)); err != nil {
			return err
		}

		if b := meta.Get([]byte(versionKey)); b != nil {
			if len(b) != 1 || b[0] != schemaVersion {
				return fmt.Errorf("incompatible store version: %v", b)
			}
			return nil
		}
		return meta.Put([]byte(versionKey), []byte{schemaVersion})
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing bolt db: %w", err)
	}

	log.Info().Str("path", path).Msg("Bolt store opened")
	return &Store{db: db, log: log}, nil
}

// Get returns a copy of the value under key, or nil if absent.
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket([]byte(recordsBucket)).Get(key); v != nil {
			// v is only valid for the life of the transaction.
			out = append([]byte{}, v...)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("bolt get: %w", err)
	}
	return out, nil
}

func (s *Store) Put(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(recordsBucket)).Put(key, value)
	})
	if err != nil {
		return fmt.Errorf("bolt put: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(recordsBucket)).Delete(key)
	})
	if err != nil {
		return fmt.Errorf("bolt delete: %w", err)
	}
	return nil
}

// Close closes the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks that the database is readable.
func (s *Store) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.db.View(func(tx *bolt.Tx) error {
		if tx.Bucket([]byte(recordsBucket)) == nil {
			return fmt.Errorf("records bucket missing")
		}
		return nil
	})
}

// Name returns the dependency name.
func (s *Store) Name() string {
	return "bbolt"
}

var (
	_ ports.Store         = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)
