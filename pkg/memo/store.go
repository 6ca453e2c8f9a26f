// Package memo provides the exact scheduler's memoization persistence.
//
// The branch-and-bound scheduler (pkg/scheduler/exact) keys its
// in-process memo table by the scheduled-units bitmap and holds it only
// for the lifetime of one search. [Store] is an optional second layer:
// a shared, cross-run cache of whole-search results (the best peak and
// the unit order achieving it) keyed by a [Key] derived from the
// sub-DAG's structural signature, so that repeatedly scheduling the same
// recurring sub-DAG
// shape (e.g. a basic block pattern seen across many compilation units)
// can skip the search entirely. It is never required for correctness;
// [NullStore] is the default when no shared cache is configured.
package memo

import (
	"context"
	"time"
)

// Store is the persistence interface for shared memo entries. It
// mirrors a conventional byte-oriented cache: callers marshal their own
// entry encoding (see pkg/scheduler/exact for the wire format).
type Store interface {
	// Get retrieves the entry for key. The second return reports a hit.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set stores data under key with an optional ttl (zero means no expiry).
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	// Delete removes the entry for key, if any.
	Delete(ctx context.Context, key string) error
	// Close releases any resources held by the store.
	Close() error
}
