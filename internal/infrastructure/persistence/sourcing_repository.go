package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/domain/sourcing"
	"github.com/procurement/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormRFQRepository implements RFQRepository using GORM
type GormRFQRepository struct {
	db *gorm.DB
}

// NewGormRFQRepository creates a new GormRFQRepository
func NewGormRFQRepository(db *gorm.DB) *GormRFQRepository {
	return &GormRFQRepository{db: db}
}

// preloadRFQ loads items and invited suppliers in invitation order
func preloadRFQ(query *gorm.DB) *gorm.DB {
	return query.Preload("Items").Preload("Suppliers", func(db *gorm.DB) *gorm.DB {
		return db.Order("position ASC")
	})
}

// FindByID finds an RFQ by ID
func (r *GormRFQRepository) FindByID(ctx context.Context, id uuid.UUID) (*sourcing.RFQ, error) {
	var model models.RFQModel
	if err := preloadRFQ(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "RFQ", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds an RFQ and locks its row
func (r *GormRFQRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*sourcing.RFQ, error) {
	var model models.RFQModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "RFQ", id)
	}
	if err := r.db.WithContext(ctx).Where("rfq_id = ?", id).Find(&model.Items).Error; err != nil {
		return nil, err
	}
	if err := r.db.WithContext(ctx).Where("rfq_id = ?", id).Order("position ASC").Find(&model.Suppliers).Error; err != nil {
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByRequestID finds the RFQs raised for a request, newest first
func (r *GormRFQRepository) FindByRequestID(ctx context.Context, requestID uuid.UUID) ([]sourcing.RFQ, error) {
	var rows []models.RFQModel
	if err := preloadRFQ(r.db.WithContext(ctx)).
		Where("request_id = ?", requestID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rfqsToDomain(rows), nil
}

// ExistsForRequest reports whether the request already has an RFQ
func (r *GormRFQRepository) ExistsForRequest(ctx context.Context, requestID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.RFQModel{}).
		Where("request_id = ?", requestID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll finds RFQs matching the filter (status, request_id)
func (r *GormRFQRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sourcing.RFQ, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.RFQModel{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR title LIKE ?", like, like)
	}
	query = applyEquals(query, filter, "status", "request_id")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.RFQModel
	if err := preloadRFQ(applyPaging(query, filter, rfqSort)).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rfqsToDomain(rows), total, nil
}

// Create inserts a new RFQ with items and invited suppliers
func (r *GormRFQRepository) Create(ctx context.Context, rfq *sourcing.RFQ) error {
	return translate(r.db.WithContext(ctx).Create(models.RFQModelFromDomain(rfq)).Error, "RFQ")
}

// SaveWithLock saves the RFQ status with an optimistic version check
func (r *GormRFQRepository) SaveWithLock(ctx context.Context, rfq *sourcing.RFQ) error {
	return updateWithVersion(ctx, r.db, &models.RFQModel{}, &rfq.BaseAggregateRoot, map[string]any{
		"status":   rfq.Status,
		"deadline": rfq.Deadline,
	})
}

func rfqsToDomain(rows []models.RFQModel) []sourcing.RFQ {
	out := make([]sourcing.RFQ, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

// GormQuotationRepository implements QuotationRepository using GORM
type GormQuotationRepository struct {
	db *gorm.DB
}

// NewGormQuotationRepository creates a new GormQuotationRepository
func NewGormQuotationRepository(db *gorm.DB) *GormQuotationRepository {
	return &GormQuotationRepository{db: db}
}

// FindByID finds a quotation by ID
func (r *GormQuotationRepository) FindByID(ctx context.Context, id uuid.UUID) (*sourcing.Quotation, error) {
	var model models.QuotationModel
	if err := r.db.WithContext(ctx).Preload("Items").First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Quotation", id)
	}
	return model.ToDomain(), nil
}

// FindByRFQ finds the quotations of an RFQ, cheapest first
func (r *GormQuotationRepository) FindByRFQ(ctx context.Context, rfqID uuid.UUID) ([]sourcing.Quotation, error) {
	var rows []models.QuotationModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("rfq_id = ?", rfqID).
		Order("total_amount ASC").
		Order("submitted_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return quotationsToDomain(rows), nil
}

// ExistsForSupplier reports whether the supplier already quoted on the RFQ
func (r *GormQuotationRepository) ExistsForSupplier(ctx context.Context, rfqID, supplierID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.QuotationModel{}).
		Where("rfq_id = ? AND supplier_id = ?", rfqID, supplierID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll finds quotations matching the filter (status, supplier_id, rfq_id)
func (r *GormQuotationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sourcing.Quotation, int64, error) {
	query := applyEquals(r.db.WithContext(ctx).Model(&models.QuotationModel{}), filter, "status", "supplier_id", "rfq_id")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.QuotationModel
	if err := applyPaging(query, filter, quotationSort).Preload("Items").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return quotationsToDomain(rows), total, nil
}

// Create inserts a new quotation with its items
func (r *GormQuotationRepository) Create(ctx context.Context, q *sourcing.Quotation) error {
	return translate(r.db.WithContext(ctx).Create(models.QuotationModelFromDomain(q)).Error, "Quotation")
}

// UpdateStatuses saves the status of each quotation with a version check
func (r *GormQuotationRepository) UpdateStatuses(ctx context.Context, quotations []*sourcing.Quotation) error {
	for _, q := range quotations {
		if err := updateWithVersion(ctx, r.db, &models.QuotationModel{}, &q.BaseAggregateRoot, map[string]any{
			"status": q.Status,
		}); err != nil {
			return err
		}
	}
	return nil
}

func quotationsToDomain(rows []models.QuotationModel) []sourcing.Quotation {
	out := make([]sourcing.Quotation, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
	}
	return out
}

var (
	_ sourcing.RFQRepository       = (*GormRFQRepository)(nil)
	_ sourcing.QuotationRepository = (*GormQuotationRepository)(nil)
)
