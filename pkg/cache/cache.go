// Package cache provides the caches of the extension graph engine.
//
// Two layers exist:
//
//   - [Results] memoizes processed graphs in memory, keyed by mode and
//     canonical filter selection. It is the engine's result cache: explicit,
//     injected, cleared whenever the snapshot changes.
//   - [Cache] is a byte-level cache for encoded graphs and layouts, with
//     null, file, in-memory (LRU) and Redis backends. Keys come from a
//     [Keyer] and are content-addressed, so a changed snapshot simply stops
//     hitting old entries.
package cache

import (
	"context"
	"time"
)

// Cache stores opaque byte values under string keys.
//
// A miss is not an error: Get returns (nil, false, nil). A ttl of zero
// means the entry does not expire.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop every entry at once.
// Clear returns the number of entries removed.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// Clear clears c if it supports clearing. Caches that cannot be cleared
// report zero entries removed.
func Clear(ctx context.Context, c Cache) (int, error) {
	if cl, ok := c.(Clearer); ok {
		return cl.Clear(ctx)
	}
	return 0, nil
}
