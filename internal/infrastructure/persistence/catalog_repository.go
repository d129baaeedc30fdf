package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/catalog"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormMaterialRepository implements MaterialRepository using GORM.
// The material row carries the on-hand stock level.
type GormMaterialRepository struct {
	db *gorm.DB
}

// NewGormMaterialRepository creates a new GormMaterialRepository
func NewGormMaterialRepository(db *gorm.DB) *GormMaterialRepository {
	return &GormMaterialRepository{db: db}
}

// FindByID finds a material by its ID
func (r *GormMaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Material, error) {
	var model models.MaterialModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Material", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a material and locks its row
func (r *GormMaterialRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Material, error) {
	var model models.MaterialModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Material", id)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple materials keyed by ID
func (r *GormMaterialRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Material, error) {
	out := make(map[uuid.UUID]*catalog.Material, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []models.MaterialModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].ID] = rows[i].ToDomain()
	}
	return out, nil
}

// FindAll finds materials matching the filter (search on code/name, category)
func (r *GormMaterialRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Material, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.MaterialModel{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", like, like)
	}
	query = applyEquals(query, filter, "category")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.MaterialModel
	if err := applyPaging(query, filter, materialSort).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]catalog.Material, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Save creates or updates a material. Stock is written only on insert;
// afterwards it moves through AdjustStock.
func (r *GormMaterialRepository) Save(ctx context.Context, material *catalog.Material) error {
	model := models.MaterialModelFromDomain(material)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"code", "name", "unit", "min_stock", "ref_price", "category", "specs", "updated_at"}),
	}).Create(model).Error
	return translate(err, "Material")
}

// AdjustStock adds delta to the stock column in a single statement guarded
// against going negative
func (r *GormMaterialRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	result := r.db.WithContext(ctx).
		Model(&models.MaterialModel{}).
		Where("id = ? AND stock + ? >= 0", id, delta).
		Updates(map[string]any{
			"stock":      gorm.Expr("stock + ?", delta),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected > 0 {
		return nil
	}

	material, err := r.FindByID(ctx, id)
	if err != nil {
		return err
	}
	return shared.NewInsufficientStockError(material.ID, material.Name, material.Stock, delta.Neg())
}

// GormProjectRepository implements ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByID finds a project by its ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Project, error) {
	var model models.ProjectModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Project", id)
	}
	return model.ToDomain(), nil
}

// FindAll finds projects matching the filter (status, search on code/name)
func (r *GormProjectRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Project, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.ProjectModel{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR name LIKE ?", like, like)
	}
	query = applyEquals(query, filter, "status")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.ProjectModel
	if err := applyPaging(query, filter, projectSort).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]catalog.Project, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Save creates or updates a project
func (r *GormProjectRepository) Save(ctx context.Context, project *catalog.Project) error {
	return translate(r.db.WithContext(ctx).Save(models.ProjectModelFromDomain(project)).Error, "Project")
}

// GormSupplierRepository implements SupplierRepository using GORM
type GormSupplierRepository struct {
	db *gorm.DB
}

// NewGormSupplierRepository creates a new GormSupplierRepository
func NewGormSupplierRepository(db *gorm.DB) *GormSupplierRepository {
	return &GormSupplierRepository{db: db}
}

// FindByID finds a supplier by its ID
func (r *GormSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Supplier", id)
	}
	return model.ToDomain(), nil
}

// FindByIDs returns the suppliers found; missing ids are simply absent
func (r *GormSupplierRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Supplier, error) {
	if len(ids) == 0 {
		return []catalog.Supplier{}, nil
	}
	var rows []models.SupplierModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("code ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]catalog.Supplier, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, nil
}

// FindByUserID finds the supplier linked to a portal account
func (r *GormSupplierRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*catalog.Supplier, error) {
	var model models.SupplierModel
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&model).Error; err != nil {
		return nil, notFound(err, "Supplier", userID)
	}
	return model.ToDomain(), nil
}

// FindAll finds suppliers matching the filter (search on code/company name)
func (r *GormSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Supplier, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SupplierModel{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR company_name LIKE ?", like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.SupplierModel
	if err := applyPaging(query, filter, supplierSort).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	out := make([]catalog.Supplier, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out, total, nil
}

// Save creates or updates a supplier
func (r *GormSupplierRepository) Save(ctx context.Context, supplier *catalog.Supplier) error {
	return translate(r.db.WithContext(ctx).Save(models.SupplierModelFromDomain(supplier)).Error, "Supplier")
}

var (
	_ catalog.MaterialRepository = (*GormMaterialRepository)(nil)
	_ catalog.ProjectRepository  = (*GormProjectRepository)(nil)
	_ catalog.SupplierRepository = (*GormSupplierRepository)(nil)
)
