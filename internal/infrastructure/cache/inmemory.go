package cache

import (
	"context"
	"sync"
	"time"

	"github.com/procurement/backend/internal/domain/shared"
)

// sweepEvery bounds how often expired keys are purged
const sweepEvery = 5 * time.Minute

// expiringKeys is a set whose members expire. It backs the in-process
// dedup store and job locker when Redis is not configured.
type expiringKeys struct {
	mu        sync.Mutex
	expiry    map[string]time.Time
	now       func() time.Time
	lastSweep time.Time
}

func newExpiringKeys() *expiringKeys {
	return &expiringKeys{expiry: map[string]time.Time{}, now: time.Now}
}

// claim adds key for ttl unless it is already live
func (k *expiringKeys) claim(key string, ttl time.Duration) (time.Time, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	now := k.now()
	if now.Sub(k.lastSweep) >= sweepEvery {
		k.sweepLocked(now)
	}
	if exp, ok := k.expiry[key]; ok && now.Before(exp) {
		return time.Time{}, false
	}
	exp := now.Add(ttl)
	k.expiry[key] = exp
	return exp, true
}

func (k *expiringKeys) live(key string) bool {
	k.mu.Lock()
	defer k.mu.Unlock()
	exp, ok := k.expiry[key]
	return ok && k.now().Before(exp)
}

// release drops key only if it still holds the claim made at expiresAt
func (k *expiringKeys) release(key string, expiresAt time.Time) {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.expiry[key].Equal(expiresAt) {
		delete(k.expiry, key)
	}
}

func (k *expiringKeys) sweepLocked(now time.Time) {
	for key, exp := range k.expiry {
		if !now.Before(exp) {
			delete(k.expiry, key)
		}
	}
	k.lastSweep = now
}

func (k *expiringKeys) len() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.expiry)
}

// InMemoryIdempotencyStore remembers processed keys in this process only,
// so two instances may each send the same delay alert.
type InMemoryIdempotencyStore struct {
	keys *expiringKeys
}

func NewInMemoryIdempotencyStore() *InMemoryIdempotencyStore {
	return &InMemoryIdempotencyStore{keys: newExpiringKeys()}
}

// MarkProcessed claims key for ttl. Returns false while an unexpired claim exists.
func (s *InMemoryIdempotencyStore) MarkProcessed(_ context.Context, key string, ttl time.Duration) (bool, error) {
	_, fresh := s.keys.claim(key, ttl)
	return fresh, nil
}

func (s *InMemoryIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	return s.keys.live(key), nil
}

// Close is a no-op; expired keys are swept on write
func (s *InMemoryIdempotencyStore) Close() error { return nil }

var _ shared.IdempotencyStore = (*InMemoryIdempotencyStore)(nil)
