package event

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/notification"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/cache"
	infraevent "github.com/procurement/backend/internal/infrastructure/event"
	"github.com/procurement/backend/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func completedOrder(to purchase.Status) (*purchase.PurchaseOrder, *purchase.PurchaseOrderStatusChangedEvent) {
	po := &purchase.PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              "PO00007",
		CreatedBy:         uuid.New(),
		Status:            to,
	}
	return po, purchase.NewPurchaseOrderStatusChangedEvent(po, purchase.StatusDelivered)
}

func TestEvaluationReminderHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("completed order reminds the creator once per event", func(t *testing.T) {
		orders := new(testutil.MockPurchaseOrderRepository)
		notifier := testutil.NewRecordingNotifier()
		po, ev := completedOrder(purchase.StatusCompleted)
		orders.On("FindByID", mock.Anything, po.ID).Return(po, nil)

		bus := infraevent.NewInMemoryEventBus(zap.NewNop())
		require.NoError(t, bus.Start(ctx))
		bus.Subscribe(infraevent.NewOnceHandler("evaluation_reminder",
			NewEvaluationReminderHandler(orders, notifier),
			cache.NewInMemoryIdempotencyStore(), time.Hour, zap.NewNop()))

		require.NoError(t, bus.Publish(ctx, ev))
		require.NoError(t, bus.Publish(ctx, ev))

		sent := notifier.Sent()
		require.Len(t, sent, 1)
		assert.Equal(t, po.CreatedBy, sent[0].UserID)
		assert.Equal(t, notification.TypeInfo, sent[0].Type)
		assert.Contains(t, sent[0].Message, "PO00007")
	})

	t.Run("other transitions are ignored", func(t *testing.T) {
		orders := new(testutil.MockPurchaseOrderRepository)
		notifier := testutil.NewRecordingNotifier()
		_, ev := completedOrder(purchase.StatusCancelled)

		require.NoError(t, NewEvaluationReminderHandler(orders, notifier).Handle(ctx, ev))
		assert.Empty(t, notifier.Sent())
		orders.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("lookup failure is returned", func(t *testing.T) {
		orders := new(testutil.MockPurchaseOrderRepository)
		po, ev := completedOrder(purchase.StatusCompleted)
		orders.On("FindByID", mock.Anything, po.ID).Return(nil, errors.New("db gone"))

		err := NewEvaluationReminderHandler(orders, testutil.NewRecordingNotifier()).Handle(ctx, ev)
		assert.ErrorContains(t, err, "db gone")
	})
}

func TestActivityLogHandler(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := NewActivityLogHandler(zap.New(core))
	_, ev := completedOrder(purchase.StatusCompleted)

	require.NoError(t, h.Handle(context.Background(), ev))
	assert.Nil(t, h.EventTypes())

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, purchase.EventTypePurchaseOrderStatusChanged, fields["event_type"])
	assert.Equal(t, "delivered", fields["from"])
	assert.Equal(t, "completed", fields["to"])
}
