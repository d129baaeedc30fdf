package purchase

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
)

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	// FindByID finds a PO with its items and approvals
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByIDForUpdate finds a PO and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindAll finds POs matching the filter (status, supplier_id, project_id)
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, int64, error)

	// FindOverdue finds POs awaiting delivery whose delivery date is before now
	FindOverdue(ctx context.Context, now time.Time) ([]PurchaseOrder, error)

	// ExistsForQuotation reports whether a PO was already created from the quotation
	ExistsForQuotation(ctx context.Context, quotationID uuid.UUID) (bool, error)

	// Create inserts a new PO with its items and approvals
	Create(ctx context.Context, po *PurchaseOrder) error

	// SaveWithLock saves status, dates and approvals with an optimistic version check
	SaveWithLock(ctx context.Context, po *PurchaseOrder) error
}

// DeliveryRepository defines the interface for delivery persistence
type DeliveryRepository interface {
	// FindByPOID returns ErrNotFound when the PO has no delivery yet
	FindByPOID(ctx context.Context, poID uuid.UUID) (*Delivery, error)
	ExistsForPO(ctx context.Context, poID uuid.UUID) (bool, error)
	Create(ctx context.Context, d *Delivery) error
	Save(ctx context.Context, d *Delivery) error
}

// PaymentRepository defines the interface for payment persistence
type PaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByIDForUpdate finds a payment and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Payment, error)

	// FindByPOID returns ErrNotFound when the PO has no payment yet
	FindByPOID(ctx context.Context, poID uuid.UUID) (*Payment, error)
	ExistsForPO(ctx context.Context, poID uuid.UUID) (bool, error)
	Create(ctx context.Context, p *Payment) error
	SaveWithLock(ctx context.Context, p *Payment) error
}

// TrackingRepository defines the interface for the tracking event log
type TrackingRepository interface {
	// Append inserts a new event
	Append(ctx context.Context, t *DeliveryTracking) error

	// FindByPOID lists events in ascending time order
	FindByPOID(ctx context.Context, poID uuid.UUID) ([]DeliveryTracking, error)

	// FindLatest returns the newest event or nil when there is none
	FindLatest(ctx context.Context, poID uuid.UUID) (*DeliveryTracking, error)
}
