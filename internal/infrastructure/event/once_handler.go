package event

import (
	"context"
	"fmt"
	"time"

	"github.com/procurement/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// DefaultOnceTTL is how long a handled event id is remembered
const DefaultOnceTTL = 72 * time.Hour

// OnceHandler runs the wrapped handler at most once per event id. The id is
// recorded only after a successful run, so a failed event is retried on
// redelivery. Two concurrent deliveries of the same id may both run.
type OnceHandler struct {
	name    string
	handler shared.EventHandler
	store   shared.IdempotencyStore
	ttl     time.Duration
	logger  *zap.Logger
}

// NewOnceHandler wraps handler. name scopes the keys so two handlers can
// each see the same event once.
func NewOnceHandler(name string, handler shared.EventHandler, store shared.IdempotencyStore, ttl time.Duration, logger *zap.Logger) *OnceHandler {
	if ttl <= 0 {
		ttl = DefaultOnceTTL
	}
	return &OnceHandler{name: name, handler: handler, store: store, ttl: ttl, logger: logger}
}

// Handle implements shared.EventHandler
func (h *OnceHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	key := h.key(event)
	seen, err := h.store.IsProcessed(ctx, key)
	if err != nil {
		return fmt.Errorf("check event %s: %w", event.EventID(), err)
	}
	if seen {
		h.logger.Debug("duplicate event skipped",
			zap.String("handler", h.name),
			zap.String("event_id", event.EventID().String()))
		return nil
	}

	if err := h.handler.Handle(ctx, event); err != nil {
		return err
	}

	if _, err := h.store.MarkProcessed(ctx, key, h.ttl); err != nil {
		h.logger.Warn("failed to mark event processed",
			zap.String("handler", h.name),
			zap.String("event_id", event.EventID().String()),
			zap.Error(err))
	}
	return nil
}

// EventTypes implements shared.EventHandler
func (h *OnceHandler) EventTypes() []string {
	return h.handler.EventTypes()
}

func (h *OnceHandler) key(event shared.DomainEvent) string {
	return "event:" + h.name + ":" + event.EventID().String()
}

var _ shared.EventHandler = (*OnceHandler)(nil)
