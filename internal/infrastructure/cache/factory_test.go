package cache

import (
	"errors"
	"testing"

	"github.com/procurement/backend/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func unreachable(config.RedisConfig) (*redis.Client, error) {
	return nil, errors.New("dial tcp 10.0.0.9:6379: connect: connection refused")
}

func TestFactory_Create(t *testing.T) {
	t.Run("no redis configured", func(t *testing.T) {
		backends, err := NewFactory(config.RedisConfig{}).Create()
		require.NoError(t, err)
		defer backends.Close()

		assert.Nil(t, backends.Client)
		assert.IsType(t, &InMemoryIdempotencyStore{}, backends.Dedup)
		assert.IsType(t, &InMemoryJobLocker{}, backends.JobLocker)
	})

	t.Run("unreachable redis falls back with a warning", func(t *testing.T) {
		core, recorded := observer.New(zapcore.WarnLevel)
		f := NewFactory(config.RedisConfig{Host: "10.0.0.9", Port: 6379}, WithLogger(zap.New(core)))
		f.dial = unreachable

		backends, err := f.Create()
		require.NoError(t, err)
		defer backends.Close()

		assert.Nil(t, backends.Client)
		assert.Len(t, recorded.All(), 1)
	})

	t.Run("fallback disabled", func(t *testing.T) {
		f := NewFactory(config.RedisConfig{Host: "10.0.0.9", Port: 6379}, WithInMemoryFallback(false))
		f.dial = unreachable

		_, err := f.Create()
		assert.ErrorContains(t, err, "redis required")
	})
}
