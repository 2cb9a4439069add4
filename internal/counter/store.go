package counter

import (
	"context"
	"time"
)

// Store is the counter-store contract the gateway relies on: atomic integer
// increment and TTL assignment. Quota mutual exclusion across requests is
// delegated entirely to Incr's atomicity; no other coordination exists.
type Store interface {
	// Incr atomically increments the counter at key, creating it at zero
	// first if absent, and returns the post-increment value.
	Incr(ctx context.Context, key string) (int64, error)

	// Expire sets the remaining time-to-live for key. It is idempotent;
	// expiring an absent key is a no-op.
	Expire(ctx context.Context, key string, ttl time.Duration) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend resources.
	Close() error
}
