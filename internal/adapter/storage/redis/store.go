package redis

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"chain-connector/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces connector records inside a shared database.
const DefaultPrefix = "connector:"

// Store implements ports.Store with plain Redis strings. Keys are hex encoded
// under prefix so several connectors can share one database.
type Store struct {
	client *goredis.Client
	prefix string
}

// NewStore creates a Redis-backed store. An empty prefix uses DefaultPrefix.
func NewStore(client *goredis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) key(k []byte) string {
	return s.prefix + hex.EncodeToString(k)
}

// Get returns the value under key, or nil if absent.
func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	v, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return v, nil
}

// Put writes value under key with no expiry.
func (s *Store) Put(ctx context.Context, key, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key []byte) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Ping checks Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Name returns the dependency name.
func (s *Store) Name() string {
	return "redis"
}

var (
	_ ports.Store         = (*Store)(nil)
	_ ports.HealthChecker = (*Store)(nil)
)
