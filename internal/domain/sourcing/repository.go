package sourcing

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
)

// RFQRepository defines the interface for RFQ persistence
type RFQRepository interface {
	// FindByID finds an RFQ with its items and invited suppliers
	FindByID(ctx context.Context, id uuid.UUID) (*RFQ, error)

	// FindByIDForUpdate finds an RFQ and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*RFQ, error)

	// FindByRequestID finds the RFQs opened for a request
	FindByRequestID(ctx context.Context, requestID uuid.UUID) ([]RFQ, error)

	// ExistsForRequest reports whether the request already has an RFQ
	ExistsForRequest(ctx context.Context, requestID uuid.UUID) (bool, error)

	// FindAll finds RFQs matching the filter (status, request_id)
	FindAll(ctx context.Context, filter shared.Filter) ([]RFQ, int64, error)

	// Create inserts a new RFQ with its items
	Create(ctx context.Context, rfq *RFQ) error

	// SaveWithLock saves status with an optimistic version check
	SaveWithLock(ctx context.Context, rfq *RFQ) error
}

// QuotationRepository defines the interface for quotation persistence
type QuotationRepository interface {
	// FindByID finds a quotation with its items
	FindByID(ctx context.Context, id uuid.UUID) (*Quotation, error)

	// FindByRFQ finds every quotation of an RFQ ordered by total amount
	FindByRFQ(ctx context.Context, rfqID uuid.UUID) ([]Quotation, error)

	// ExistsForSupplier reports whether the supplier already quoted on the RFQ
	ExistsForSupplier(ctx context.Context, rfqID, supplierID uuid.UUID) (bool, error)

	// FindAll finds quotations matching the filter (status, supplier_id, rfq_id)
	FindAll(ctx context.Context, filter shared.Filter) ([]Quotation, int64, error)

	// Create inserts a new quotation with its items
	Create(ctx context.Context, q *Quotation) error

	// UpdateStatuses persists the status of every given quotation
	UpdateStatuses(ctx context.Context, quotations []*Quotation) error
}
