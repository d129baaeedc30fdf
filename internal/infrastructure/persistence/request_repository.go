package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/approval"
	"github.com/procurement/backend/internal/domain/request"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormMaterialRequestRepository implements MaterialRequestRepository using GORM
type GormMaterialRequestRepository struct {
	db *gorm.DB
}

// NewGormMaterialRequestRepository creates a new GormMaterialRequestRepository
func NewGormMaterialRequestRepository(db *gorm.DB) *GormMaterialRequestRepository {
	return &GormMaterialRequestRepository{db: db}
}

// FindByID finds a request with its items and approvals
func (r *GormMaterialRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*request.MaterialRequest, error) {
	return r.find(ctx, r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a request and locks its row
func (r *GormMaterialRequestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*request.MaterialRequest, error) {
	return r.find(ctx, forUpdate(r.db.WithContext(ctx)), id)
}

func (r *GormMaterialRequestRepository) find(ctx context.Context, query *gorm.DB, id uuid.UUID) (*request.MaterialRequest, error) {
	var model models.MaterialRequestModel
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "MaterialRequest", id)
	}
	if err := r.db.WithContext(ctx).Where("request_id = ?", id).Find(&model.Items).Error; err != nil {
		return nil, err
	}
	req := model.ToDomain()
	chain, err := loadApprovals(ctx, r.db, approval.OwnerMaterialRequest, id)
	if err != nil {
		return nil, err
	}
	req.Approvals = chain
	return req, nil
}

// FindAll finds requests matching the filter (project_id, status, created_by)
func (r *GormMaterialRequestRepository) FindAll(ctx context.Context, filter shared.Filter) ([]request.MaterialRequest, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MaterialRequestModel{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR description LIKE ?", like, like)
	}
	query = applyEquals(query, filter, "project_id", "status", "created_by")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.MaterialRequestModel
	if err := applyPaging(query, filter, requestSort).Preload("Items").Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	chains, err := loadApprovalsFor(ctx, r.db, approval.OwnerMaterialRequest, ids)
	if err != nil {
		return nil, 0, err
	}
	out := make([]request.MaterialRequest, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
		out[i].Approvals = chains[rows[i].ID]
	}
	return out, total, nil
}

// Create inserts a new request with its items and approvals
func (r *GormMaterialRequestRepository) Create(ctx context.Context, req *request.MaterialRequest) error {
	if err := r.db.WithContext(ctx).Create(models.MaterialRequestModelFromDomain(req)).Error; err != nil {
		return translate(err, "MaterialRequest")
	}
	return insertApprovals(ctx, r.db, req.Approvals)
}

// SaveWithLock saves status and approvals with an optimistic version check
func (r *GormMaterialRequestRepository) SaveWithLock(ctx context.Context, req *request.MaterialRequest) error {
	if err := updateWithVersion(ctx, r.db, &models.MaterialRequestModel{}, &req.BaseAggregateRoot, map[string]any{
		"status":       req.Status,
		"description":  req.Description,
		"priority":     req.Priority,
		"need_by_date": req.NeedByDate,
	}); err != nil {
		return err
	}
	return saveApprovals(ctx, r.db, req.Approvals)
}

// SumQuantityByStatus sums item quantities of a material across the
// project's requests in the given statuses, excluding excludeID
func (r *GormMaterialRequestRepository) SumQuantityByStatus(ctx context.Context, projectID, materialID uuid.UUID, statuses []request.Status, excludeID *uuid.UUID) (decimal.Decimal, error) {
	if len(statuses) == 0 {
		return decimal.Zero, nil
	}
	query := r.db.WithContext(ctx).
		Table("material_request_items AS i").
		Joins("JOIN material_requests AS r ON r.id = i.request_id").
		Where("r.project_id = ? AND i.material_id = ? AND r.status IN ?", projectID, materialID, statuses)
	if excludeID != nil {
		query = query.Where("r.id <> ?", *excludeID)
	}

	var total decimal.NullDecimal
	if err := query.Select("SUM(i.quantity)").Row().Scan(&total); err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

var _ request.MaterialRequestRepository = (*GormMaterialRequestRepository)(nil)
