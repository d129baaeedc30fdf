package quota

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaterialQuotaRepository defines the interface for quota persistence
type MaterialQuotaRepository interface {
	// FindByID finds a quota by ID
	FindByID(ctx context.Context, id uuid.UUID) (*MaterialQuota, error)

	// FindByProjectAndMaterial returns ErrNotFound when no quota is set
	FindByProjectAndMaterial(ctx context.Context, projectID, materialID uuid.UUID) (*MaterialQuota, error)

	// FindByProject finds every quota of a project
	FindByProject(ctx context.Context, projectID uuid.UUID) ([]MaterialQuota, error)

	// FindAll finds quotas matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]MaterialQuota, int64, error)

	// Save creates or updates a quota's max; used_quantity is written only on insert
	Save(ctx context.Context, q *MaterialQuota) error

	// IncrementUsed atomically adds quantity to used_quantity
	IncrementUsed(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error

	// Delete removes a quota
	Delete(ctx context.Context, id uuid.UUID) error
}
