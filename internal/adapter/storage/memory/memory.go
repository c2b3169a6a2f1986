package memory

import (
	"context"
	"sync"

	"chain-connector/internal/core/ports"
)

// Store is an in-memory ports.Store. Values are copied on the way in and out.
type Store struct {
	mu      sync.Mutex
	records map[string][]byte
}

func NewStore() *Store {
	return &Store{
		records: make(map[string][]byte),
	}
}

func (s *Store) Get(ctx context.Context, key []byte) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.records[string(key)]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), v...), nil
}

func (s *Store) Put(ctx context.Context, key, value []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[string(key)] = append([]byte(nil), value...)
	return nil
}

func (s *Store) Delete(ctx context.Context, key []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.records, string(key))
	return nil
}

// Len returns the number of stored keys.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.records)
}

// Make sure Store implements ports.Store.
var _ ports.Store = &Store{}
