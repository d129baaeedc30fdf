package shared

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capture struct{ got []DomainEvent }

func (c *capture) Publish(_ context.Context, events ...DomainEvent) error {
	c.got = append(c.got, events...)
	return nil
}

func newEvent(kind string, root *BaseAggregateRoot) DomainEvent {
	ev := NewEventMeta(kind, "material_request", root.ID)
	return &ev
}

func TestBaseAggregateRoot_Lifecycle(t *testing.T) {
	root := NewBaseAggregateRoot()
	require.NotEqual(t, uuid.Nil, root.ID)
	assert.Equal(t, 1, root.Version)
	assert.Equal(t, root.CreatedAt, root.UpdatedAt)

	root.IncrementVersion()
	assert.Equal(t, 2, root.Version)
	assert.False(t, root.UpdatedAt.Before(root.CreatedAt))

	root.AddDomainEvent(newEvent("request.created", &root))
	assert.Len(t, root.DomainEvents(), 1)

	pulled := root.PullDomainEvents()
	assert.Len(t, pulled, 1)
	assert.Empty(t, root.DomainEvents())
	assert.Empty(t, root.PullDomainEvents())
}

func TestPublishPending(t *testing.T) {
	ctx := context.Background()
	req, issue := NewBaseAggregateRoot(), NewBaseAggregateRoot()
	req.AddDomainEvent(newEvent("request.completed", &req))
	issue.AddDomainEvent(newEvent("stock.issued", &issue))

	t.Run("nil publisher keeps events queued", func(t *testing.T) {
		PublishPending(ctx, nil, &req)
		assert.Len(t, req.DomainEvents(), 1)
	})

	t.Run("drains every source in order", func(t *testing.T) {
		pub := &capture{}
		PublishPending(ctx, pub, &issue, &req)

		require.Len(t, pub.got, 2)
		assert.Equal(t, "stock.issued", pub.got[0].EventType())
		assert.Equal(t, "request.completed", pub.got[1].EventType())
		assert.Empty(t, req.DomainEvents())
		assert.Empty(t, issue.DomainEvents())
	})

	t.Run("nothing pending publishes nothing", func(t *testing.T) {
		pub := &capture{}
		PublishPending(ctx, pub, &req)
		assert.Empty(t, pub.got)
	})
}
