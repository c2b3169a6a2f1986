package ports

import (
	"context"
)

// Store is the persistent key-value store the connector writes to. Keys are
// namespaced by the prefixes in the domain package.
type Store interface {
	// Get returns the value stored under key, or nil, nil if there is none.
	Get(ctx context.Context, key []byte) ([]byte, error)
	// Put stores value under key, replacing any previous value.
	Put(ctx context.Context, key []byte, value []byte) error
	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key []byte) error
}
