package shared

import (
	"context"
	"time"
)

// IdempotencyStore remembers keys that were already acted upon, so
// repeated sweeps or retried handlers do not repeat a side effect.
type IdempotencyStore interface {
	// MarkProcessed marks a key as processed with a TTL.
	// Returns true if the key was newly marked, false if it was already present
	MarkProcessed(ctx context.Context, key string, ttl time.Duration) (bool, error)

	// IsProcessed checks if a key has already been processed
	IsProcessed(ctx context.Context, key string) (bool, error)

	Close() error
}
