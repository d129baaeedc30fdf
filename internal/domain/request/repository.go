package request

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaterialRequestRepository defines the interface for material request persistence.
// Items and approvals are loaded and saved with the aggregate.
type MaterialRequestRepository interface {
	// FindByID finds a request by ID
	FindByID(ctx context.Context, id uuid.UUID) (*MaterialRequest, error)

	// FindByIDForUpdate finds a request and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*MaterialRequest, error)

	// FindAll finds requests matching the filter; supported filters are
	// project_id, status and created_by
	FindAll(ctx context.Context, filter shared.Filter) ([]MaterialRequest, int64, error)

	// Create inserts a new request with its items and approvals
	Create(ctx context.Context, req *MaterialRequest) error

	// SaveWithLock saves status and approvals with an optimistic version check
	SaveWithLock(ctx context.Context, req *MaterialRequest) error

	// SumQuantityByStatus sums item quantities of a material across the
	// project's requests in the given statuses, excluding excludeID
	SumQuantityByStatus(ctx context.Context, projectID, materialID uuid.UUID, statuses []Status, excludeID *uuid.UUID) (decimal.Decimal, error)
}
