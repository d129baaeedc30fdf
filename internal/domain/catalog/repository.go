package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// MaterialRepository defines the interface for material persistence
type MaterialRepository interface {
	// FindByID finds a material by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Material, error)

	// FindByIDForUpdate finds a material and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Material, error)

	// FindByIDs finds multiple materials, keyed by ID
	FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*Material, error)

	// FindAll finds all materials matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Material, int64, error)

	// Save creates or updates a material
	Save(ctx context.Context, material *Material) error

	// AdjustStock atomically adds delta (negative to decrement) to the stock column.
	// It fails with InsufficientStock rather than letting stock go negative.
	AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error
}

// ProjectRepository defines the interface for project persistence
type ProjectRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Project, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Project, int64, error)
	Save(ctx context.Context, project *Project) error
}

// SupplierRepository defines the interface for supplier persistence
type SupplierRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Supplier, error)

	// FindByIDs returns the suppliers found; missing ids are simply absent
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Supplier, error)

	// FindByUserID finds the supplier linked to a portal account
	FindByUserID(ctx context.Context, userID uuid.UUID) (*Supplier, error)

	FindAll(ctx context.Context, filter shared.Filter) ([]Supplier, int64, error)
	Save(ctx context.Context, supplier *Supplier) error
}
