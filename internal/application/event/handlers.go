// Package event holds application-level subscribers to workflow events.
package event

import (
	"context"
	"fmt"

	"github.com/procurement/backend/internal/application/port"
	"github.com/procurement/backend/internal/domain/notification"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/request"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/domain/sourcing"
	"github.com/procurement/backend/internal/domain/stock"
	"go.uber.org/zap"
)

// ActivityLogHandler writes every workflow event to the structured log
type ActivityLogHandler struct {
	logger *zap.Logger
}

// NewActivityLogHandler creates a new ActivityLogHandler
func NewActivityLogHandler(logger *zap.Logger) *ActivityLogHandler {
	return &ActivityLogHandler{logger: logger}
}

// EventTypes returns nil so the handler sees every event
func (h *ActivityLogHandler) EventTypes() []string { return nil }

// Handle implements shared.EventHandler
func (h *ActivityLogHandler) Handle(_ context.Context, e shared.DomainEvent) error {
	fields := []zap.Field{
		zap.String("event_type", e.EventType()),
		zap.String("event_id", e.EventID().String()),
		zap.String("aggregate_type", e.AggregateType()),
		zap.String("aggregate_id", e.AggregateID().String()),
		zap.Time("occurred_at", e.OccurredAt()),
	}
	switch ev := e.(type) {
	case *request.RequestCreatedEvent:
		fields = append(fields, zap.String("code", ev.Code), zap.String("priority", string(ev.Priority)))
	case *request.RequestRejectedEvent:
		fields = append(fields, zap.String("code", ev.Code), zap.String("reason", ev.Reason))
	case *sourcing.RFQCreatedEvent:
		fields = append(fields, zap.String("code", ev.Code), zap.Int("suppliers", len(ev.SupplierIDs)))
	case *sourcing.QuotationSelectedEvent:
		fields = append(fields, zap.String("code", ev.QuotationCode), zap.String("total", ev.TotalAmount.String()))
	case *purchase.PurchaseOrderCreatedEvent:
		fields = append(fields, zap.String("code", ev.Code), zap.String("grand_total", ev.GrandTotal.String()))
	case *purchase.PurchaseOrderStatusChangedEvent:
		fields = append(fields, zap.String("code", ev.Code),
			zap.String("from", string(ev.FromStatus)),
			zap.String("to", string(ev.ToStatus)))
	case *stock.StockIssuedEvent:
		fields = append(fields, zap.String("code", ev.Code))
	case *stock.StockReceivedEvent:
		fields = append(fields, zap.String("code", ev.Code))
	}
	h.logger.Info("Workflow event", fields...)
	return nil
}

// EvaluationReminderHandler asks the PO creator to rate the supplier once
// the order completes. Wrap it in a once-handler so redelivery does not
// repeat the reminder.
type EvaluationReminderHandler struct {
	orders   purchase.PurchaseOrderRepository
	notifier port.Notifier
}

// NewEvaluationReminderHandler creates a new EvaluationReminderHandler
func NewEvaluationReminderHandler(orders purchase.PurchaseOrderRepository, notifier port.Notifier) *EvaluationReminderHandler {
	return &EvaluationReminderHandler{orders: orders, notifier: notifier}
}

// EventTypes implements shared.EventHandler
func (h *EvaluationReminderHandler) EventTypes() []string {
	return []string{purchase.EventTypePurchaseOrderStatusChanged}
}

// Handle implements shared.EventHandler
func (h *EvaluationReminderHandler) Handle(ctx context.Context, e shared.DomainEvent) error {
	ev, ok := e.(*purchase.PurchaseOrderStatusChangedEvent)
	if !ok || ev.ToStatus != purchase.StatusCompleted {
		return nil
	}
	po, err := h.orders.FindByID(ctx, ev.OrderID)
	if err != nil {
		return fmt.Errorf("load purchase order %s: %w", ev.OrderID, err)
	}
	h.notifier.Notify(ctx, po.CreatedBy, "Đánh giá nhà cung cấp",
		fmt.Sprintf("Đơn đặt hàng %s đã hoàn tất, vui lòng đánh giá nhà cung cấp", po.Code),
		notification.TypeInfo, "/evaluations/new?po="+po.ID.String())
	return nil
}

var (
	_ shared.EventHandler = (*ActivityLogHandler)(nil)
	_ shared.EventHandler = (*EvaluationReminderHandler)(nil)
)
