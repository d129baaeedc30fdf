package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/quota"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMaterialQuotaRepository implements MaterialQuotaRepository using GORM
type GormMaterialQuotaRepository struct {
	db *gorm.DB
}

// NewGormMaterialQuotaRepository creates a new GormMaterialQuotaRepository
func NewGormMaterialQuotaRepository(db *gorm.DB) *GormMaterialQuotaRepository {
	return &GormMaterialQuotaRepository{db: db}
}

// FindByID finds a quota by ID
func (r *GormMaterialQuotaRepository) FindByID(ctx context.Context, id uuid.UUID) (*quota.MaterialQuota, error) {
	var model models.MaterialQuotaModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "MaterialQuota", id)
	}
	return model.ToDomain(), nil
}

// FindByProjectAndMaterial returns ErrNotFound when no quota is set
func (r *GormMaterialQuotaRepository) FindByProjectAndMaterial(ctx context.Context, projectID, materialID uuid.UUID) (*quota.MaterialQuota, error) {
	var model models.MaterialQuotaModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ? AND material_id = ?", projectID, materialID).
		First(&model).Error; err != nil {
		return nil, notFound(err, "MaterialQuota", materialID)
	}
	return model.ToDomain(), nil
}

// FindByProject finds every quota of a project
func (r *GormMaterialQuotaRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]quota.MaterialQuota, error) {
	var rows []models.MaterialQuotaModel
	if err := r.db.WithContext(ctx).
		Where("project_id = ?", projectID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]quota.MaterialQuota, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// FindAll finds quotas matching the filter (project_id, material_id)
func (r *GormMaterialQuotaRepository) FindAll(ctx context.Context, filter shared.Filter) ([]quota.MaterialQuota, int64, error) {
	query := applyEquals(r.db.WithContext(ctx).Model(&models.MaterialQuotaModel{}), filter, "project_id", "material_id")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.MaterialQuotaModel
	if err := applyPaging(query, filter, quotaSort).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]quota.MaterialQuota, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Save creates or updates a quota's max; used_quantity is written only on insert
func (r *GormMaterialQuotaRepository) Save(ctx context.Context, q *quota.MaterialQuota) error {
	model := models.MaterialQuotaModelFromDomain(q)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"max_quantity", "updated_at"}),
	}).Create(model).Error
	return translate(err, "MaterialQuota")
}

// IncrementUsed adds quantity to used_quantity in a single statement
func (r *GormMaterialQuotaRepository) IncrementUsed(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.MaterialQuotaModel{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"used_quantity": gorm.Expr("used_quantity + ?", quantity),
			"updated_at":    time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("MaterialQuota", id)
	}
	return nil
}

// Delete removes a quota
func (r *GormMaterialQuotaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.MaterialQuotaModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("MaterialQuota", id)
	}
	return nil
}

var _ quota.MaterialQuotaRepository = (*GormMaterialQuotaRepository)(nil)
