package stock

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
)

// StockIssueRepository defines the interface for stock issue persistence
type StockIssueRepository interface {
	// FindByID finds a stock issue with its items
	FindByID(ctx context.Context, id uuid.UUID) (*StockIssue, error)

	// FindByIDForUpdate finds a stock issue and locks its row until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*StockIssue, error)

	// FindByRequestID returns ErrNotFound when the request has no issue
	FindByRequestID(ctx context.Context, requestID uuid.UUID) (*StockIssue, error)

	// ExistsForRequest reports whether the request already has an issue
	ExistsForRequest(ctx context.Context, requestID uuid.UUID) (bool, error)

	// FindAll finds issues matching the filter (status, request_id)
	FindAll(ctx context.Context, filter shared.Filter) ([]StockIssue, int64, error)

	// Create inserts a new issue with its items
	Create(ctx context.Context, issue *StockIssue) error

	// SaveWithLock saves status fields with an optimistic version check
	SaveWithLock(ctx context.Context, issue *StockIssue) error
}
