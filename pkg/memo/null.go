package memo

import (
	"context"
	"time"
)

// NullStore is a no-op [Store] that never stores anything: the default
// when no shared memo backend is configured, leaving the exact
// scheduler's in-process memo table as the only memoization in effect.
type NullStore struct{}

// NewNullStore creates a null store.
func NewNullStore() Store {
	return &NullStore{}
}

// Get always reports a miss.
func (c *NullStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, nil
}

// Set does nothing.
func (c *NullStore) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return nil
}

// Delete does nothing.
func (c *NullStore) Delete(ctx context.Context, key string) error {
	return nil
}

// Close does nothing.
func (c *NullStore) Close() error {
	return nil
}

// Ensure NullStore implements Store.
var _ Store = (*NullStore)(nil)
