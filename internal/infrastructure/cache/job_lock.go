package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// JobLocker keeps a periodic job from running on two instances at once
type JobLocker interface {
	// TryLock acquires name for at most ttl. ok is false when another
	// holder has it; release must be called once the job ends.
	TryLock(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error)
}

// releaseScript deletes the lock only if this holder still owns it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisJobLocker implements JobLocker with SET NX PX and a token check on release
type RedisJobLocker struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisJobLocker creates a locker on an existing Redis client
func NewRedisJobLocker(client *redis.Client) *RedisJobLocker {
	return &RedisJobLocker{client: client, keyPrefix: "procurement:lock:"}
}

// TryLock implements JobLocker
func (l *RedisJobLocker) TryLock(ctx context.Context, name string, ttl time.Duration) (func(), bool, error) {
	key := l.keyPrefix + name
	token := uuid.NewString()

	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %q: %w", name, err)
	}
	if !ok {
		return nil, false, nil
	}

	release := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.client, []string{key}, token).Err()
	}
	return release, true, nil
}

// InMemoryJobLocker implements JobLocker inside one process
type InMemoryJobLocker struct {
	keys *expiringKeys
}

func NewInMemoryJobLocker() *InMemoryJobLocker {
	return &InMemoryJobLocker{keys: newExpiringKeys()}
}

// TryLock implements JobLocker
func (l *InMemoryJobLocker) TryLock(_ context.Context, name string, ttl time.Duration) (func(), bool, error) {
	expiresAt, ok := l.keys.claim(name, ttl)
	if !ok {
		return nil, false, nil
	}
	return func() { l.keys.release(name, expiresAt) }, true, nil
}

var (
	_ JobLocker = (*RedisJobLocker)(nil)
	_ JobLocker = (*InMemoryJobLocker)(nil)
)
