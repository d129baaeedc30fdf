package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/infrastructure/persistence/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// GormDeliveryRepository implements DeliveryRepository using GORM
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewGormDeliveryRepository creates a new GormDeliveryRepository
func NewGormDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// FindByPOID returns ErrNotFound when no goods were received for the PO
func (r *GormDeliveryRepository) FindByPOID(ctx context.Context, poID uuid.UUID) (*purchase.Delivery, error) {
	var model models.DeliveryModel
	if err := r.db.WithContext(ctx).Where("po_id = ?", poID).First(&model).Error; err != nil {
		return nil, notFound(err, "Delivery", poID)
	}
	return model.ToDomain(), nil
}

// ExistsForPO reports whether the PO already has a delivery record
func (r *GormDeliveryRepository) ExistsForPO(ctx context.Context, poID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.DeliveryModel{}).
		Where("po_id = ?", poID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a delivery record
func (r *GormDeliveryRepository) Create(ctx context.Context, d *purchase.Delivery) error {
	return translate(r.db.WithContext(ctx).Create(models.DeliveryModelFromDomain(d)).Error, "Delivery")
}

// Save updates the mutable fields of a delivery (photos, note, quality)
func (r *GormDeliveryRepository) Save(ctx context.Context, d *purchase.Delivery) error {
	photos := d.Photos
	if photos == nil {
		photos = []string{}
	}
	d.UpdatedAt = time.Now()
	result := r.db.WithContext(ctx).
		Model(&models.DeliveryModel{}).
		Where("id = ?", d.ID).
		Updates(map[string]any{
			"photos":         datatypes.NewJSONType(photos),
			"note":           d.Note,
			"quality_status": d.QualityStatus,
			"updated_at":     d.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFound(gorm.ErrRecordNotFound, "Delivery", d.ID)
	}
	return nil
}

// GormPaymentRepository implements PaymentRepository using GORM
type GormPaymentRepository struct {
	db *gorm.DB
}

// NewGormPaymentRepository creates a new GormPaymentRepository
func NewGormPaymentRepository(db *gorm.DB) *GormPaymentRepository {
	return &GormPaymentRepository{db: db}
}

// FindByID finds a payment by ID
func (r *GormPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchase.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Payment", id)
	}
	return model.ToDomain(), nil
}

// FindByIDForUpdate finds a payment and locks its row
func (r *GormPaymentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*purchase.Payment, error) {
	var model models.PaymentModel
	if err := forUpdate(r.db.WithContext(ctx)).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "Payment", id)
	}
	return model.ToDomain(), nil
}

// FindByPOID finds the payment of a PO
func (r *GormPaymentRepository) FindByPOID(ctx context.Context, poID uuid.UUID) (*purchase.Payment, error) {
	var model models.PaymentModel
	if err := r.db.WithContext(ctx).Where("po_id = ?", poID).First(&model).Error; err != nil {
		return nil, notFound(err, "Payment", poID)
	}
	return model.ToDomain(), nil
}

// ExistsForPO reports whether the PO already has a payment
func (r *GormPaymentRepository) ExistsForPO(ctx context.Context, poID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PaymentModel{}).
		Where("po_id = ?", poID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new payment
func (r *GormPaymentRepository) Create(ctx context.Context, p *purchase.Payment) error {
	return translate(r.db.WithContext(ctx).Create(models.PaymentModelFromDomain(p)).Error, "Payment")
}

// SaveWithLock saves the approval fields with an optimistic version check
func (r *GormPaymentRepository) SaveWithLock(ctx context.Context, p *purchase.Payment) error {
	return updateWithVersion(ctx, r.db, &models.PaymentModel{}, &p.BaseAggregateRoot, map[string]any{
		"status":      p.Status,
		"approved_by": p.ApprovedBy,
		"approved_at": p.ApprovedAt,
		"paid_at":     p.PaidAt,
		"note":        p.Note,
	})
}

// GormTrackingRepository implements TrackingRepository using GORM.
// The log is append-only.
type GormTrackingRepository struct {
	db *gorm.DB
}

// NewGormTrackingRepository creates a new GormTrackingRepository
func NewGormTrackingRepository(db *gorm.DB) *GormTrackingRepository {
	return &GormTrackingRepository{db: db}
}

// Append inserts a tracking event
func (r *GormTrackingRepository) Append(ctx context.Context, t *purchase.DeliveryTracking) error {
	return r.db.WithContext(ctx).Create(models.DeliveryTrackingModelFromDomain(t)).Error
}

// FindByPOID lists the events of a PO oldest first
func (r *GormTrackingRepository) FindByPOID(ctx context.Context, poID uuid.UUID) ([]purchase.DeliveryTracking, error) {
	var rows []models.DeliveryTrackingModel
	if err := r.db.WithContext(ctx).
		Where("po_id = ?", poID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]purchase.DeliveryTracking, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// FindLatest returns the newest event of a PO, or nil when there is none
func (r *GormTrackingRepository) FindLatest(ctx context.Context, poID uuid.UUID) (*purchase.DeliveryTracking, error) {
	var model models.DeliveryTrackingModel
	err := r.db.WithContext(ctx).
		Where("po_id = ?", poID).
		Order("created_at DESC").
		First(&model).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	event := model.ToDomain()
	return &event, nil
}

var (
	_ purchase.DeliveryRepository = (*GormDeliveryRepository)(nil)
	_ purchase.PaymentRepository  = (*GormPaymentRepository)(nil)
	_ purchase.TrackingRepository = (*GormTrackingRepository)(nil)
)
