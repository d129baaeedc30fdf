package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/domain/stock"
	"github.com/procurement/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStockIssueRepository implements StockIssueRepository using GORM
type GormStockIssueRepository struct {
	db *gorm.DB
}

// NewGormStockIssueRepository creates a new GormStockIssueRepository
func NewGormStockIssueRepository(db *gorm.DB) *GormStockIssueRepository {
	return &GormStockIssueRepository{db: db}
}

// FindByID finds a stock issue with its items
func (r *GormStockIssueRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.StockIssue, error) {
	return r.findOne(ctx, r.db.WithContext(ctx), "id = ?", id)
}

// FindByIDForUpdate finds a stock issue and locks its row
func (r *GormStockIssueRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*stock.StockIssue, error) {
	return r.findOne(ctx, forUpdate(r.db.WithContext(ctx)), "id = ?", id)
}

// FindByRequestID returns ErrNotFound when the request has no issue
func (r *GormStockIssueRepository) FindByRequestID(ctx context.Context, requestID uuid.UUID) (*stock.StockIssue, error) {
	return r.findOne(ctx, r.db.WithContext(ctx), "request_id = ?", requestID)
}

func (r *GormStockIssueRepository) findOne(ctx context.Context, query *gorm.DB, cond string, arg uuid.UUID) (*stock.StockIssue, error) {
	var model models.StockIssueModel
	if err := query.Where(cond, arg).First(&model).Error; err != nil {
		return nil, notFound(err, "StockIssue", arg)
	}
	if err := r.db.WithContext(ctx).Where("issue_id = ?", model.ID).Find(&model.Items).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// ExistsForRequest reports whether the request already has an issue
func (r *GormStockIssueRepository) ExistsForRequest(ctx context.Context, requestID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.StockIssueModel{}).
		Where("request_id = ?", requestID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll finds issues matching the filter (status, request_id)
func (r *GormStockIssueRepository) FindAll(ctx context.Context, filter shared.Filter) ([]stock.StockIssue, int64, error) {
	query := applyEquals(r.db.WithContext(ctx).Model(&models.StockIssueModel{}), filter, "status", "request_id")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.StockIssueModel
	if err := applyPaging(query, filter, issueSort).Preload("Items").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]stock.StockIssue, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Create inserts a new issue with its items
func (r *GormStockIssueRepository) Create(ctx context.Context, issue *stock.StockIssue) error {
	return translate(r.db.WithContext(ctx).Create(models.StockIssueModelFromDomain(issue)).Error, "StockIssue")
}

// SaveWithLock saves status fields with an optimistic version check
func (r *GormStockIssueRepository) SaveWithLock(ctx context.Context, issue *stock.StockIssue) error {
	return updateWithVersion(ctx, r.db, &models.StockIssueModel{}, &issue.BaseAggregateRoot, map[string]any{
		"status":       issue.Status,
		"received_by":  issue.ReceivedBy,
		"received_at":  issue.ReceivedAt,
		"receive_note": issue.ReceiveNote,
	})
}

var _ stock.StockIssueRepository = (*GormStockIssueRepository)(nil)
