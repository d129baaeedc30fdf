package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/procurement/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestOnceHandler_SkipsRedelivery(t *testing.T) {
	ctx := context.Background()
	inner := &recordingHandler{types: []string{"PurchaseOrderStatusChanged"}}
	h := NewOnceHandler("evaluation_reminder", inner, cache.NewInMemoryIdempotencyStore(), time.Hour, zap.NewNop())
	e := newEvent("PurchaseOrderStatusChanged")

	require.NoError(t, h.Handle(ctx, e))
	require.NoError(t, h.Handle(ctx, e))
	require.NoError(t, h.Handle(ctx, newEvent("PurchaseOrderStatusChanged")))

	assert.Len(t, inner.Seen(), 2)
	assert.Equal(t, []string{"PurchaseOrderStatusChanged"}, h.EventTypes())
}

func TestOnceHandler_FailureIsRetried(t *testing.T) {
	ctx := context.Background()
	inner := &recordingHandler{err: errors.New("notifier down")}
	h := NewOnceHandler("evaluation_reminder", inner, cache.NewInMemoryIdempotencyStore(), 0, zap.NewNop())
	e := newEvent("PurchaseOrderStatusChanged")

	assert.Error(t, h.Handle(ctx, e))
	inner.err = nil
	require.NoError(t, h.Handle(ctx, e))
	require.NoError(t, h.Handle(ctx, e))

	assert.Len(t, inner.Seen(), 2)
	assert.Equal(t, DefaultOnceTTL, h.ttl)
}

func TestOnceHandler_KeysAreScopedByName(t *testing.T) {
	ctx := context.Background()
	store := cache.NewInMemoryIdempotencyStore()
	first := &recordingHandler{}
	second := &recordingHandler{}
	e := newEvent("StockIssued")

	require.NoError(t, NewOnceHandler("a", first, store, time.Hour, zap.NewNop()).Handle(ctx, e))
	require.NoError(t, NewOnceHandler("b", second, store, time.Hour, zap.NewNop()).Handle(ctx, e))

	assert.Len(t, first.Seen(), 1)
	assert.Len(t, second.Seen(), 1)
}
