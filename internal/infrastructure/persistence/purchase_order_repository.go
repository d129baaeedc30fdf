package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/approval"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order with its items and approvals
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchase.PurchaseOrder, error) {
	return r.find(ctx, r.db.WithContext(ctx), id)
}

// FindByIDForUpdate finds a purchase order and locks its row
func (r *GormPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*purchase.PurchaseOrder, error) {
	return r.find(ctx, forUpdate(r.db.WithContext(ctx)), id)
}

func (r *GormPurchaseOrderRepository) find(ctx context.Context, query *gorm.DB, id uuid.UUID) (*purchase.PurchaseOrder, error) {
	var model models.PurchaseOrderModel
	if err := query.First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "PurchaseOrder", id)
	}
	if err := r.db.WithContext(ctx).Where("order_id = ?", id).Find(&model.Items).Error; err != nil {
		return nil, err
	}
	po := model.ToDomain()
	chain, err := loadApprovals(ctx, r.db, approval.OwnerPurchaseOrder, id)
	if err != nil {
		return nil, err
	}
	po.Approvals = chain
	return po, nil
}

// FindAll finds purchase orders matching the filter (status, supplier_id, project_id)
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]purchase.PurchaseOrder, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where("code LIKE ? OR delivery_address LIKE ?", like, like)
	}
	query = applyEquals(query, filter, "status", "supplier_id", "project_id")

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var rows []models.PurchaseOrderModel
	if err := applyPaging(query, filter, orderSort).Preload("Items").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	orders, err := r.withApprovals(ctx, rows)
	if err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// FindOverdue finds POs still awaiting goods whose delivery date has passed
func (r *GormPurchaseOrderRepository) FindOverdue(ctx context.Context, now time.Time) ([]purchase.PurchaseOrder, error) {
	var rows []models.PurchaseOrderModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("status IN ?", purchase.AwaitingDeliveryStatuses).
		Where("delivery_date IS NOT NULL AND delivery_date < ?", now).
		Order("delivery_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return r.withApprovals(ctx, rows)
}

// ExistsForQuotation reports whether a PO was already created from the quotation
func (r *GormPurchaseOrderRepository) ExistsForQuotation(ctx context.Context, quotationID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.PurchaseOrderModel{}).
		Where("quotation_id = ?", quotationID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts a new PO with its items and approvals
func (r *GormPurchaseOrderRepository) Create(ctx context.Context, po *purchase.PurchaseOrder) error {
	if err := r.db.WithContext(ctx).Create(models.PurchaseOrderModelFromDomain(po)).Error; err != nil {
		return translate(err, "PurchaseOrder")
	}
	return insertApprovals(ctx, r.db, po.Approvals)
}

// SaveWithLock saves the PO lifecycle fields and approvals with an optimistic version check
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, po *purchase.PurchaseOrder) error {
	if err := updateWithVersion(ctx, r.db, &models.PurchaseOrderModel{}, &po.BaseAggregateRoot, map[string]any{
		"status":           po.Status,
		"delivery_date":    po.DeliveryDate,
		"actual_delivery":  po.ActualDelivery,
		"delivery_address": po.DeliveryAddress,
		"note":             po.Note,
		"sent_at":          po.SentAt,
		"cancelled_at":     po.CancelledAt,
		"cancel_reason":    po.CancelReason,
	}); err != nil {
		return err
	}
	return saveApprovals(ctx, r.db, po.Approvals)
}

func (r *GormPurchaseOrderRepository) withApprovals(ctx context.Context, rows []models.PurchaseOrderModel) ([]purchase.PurchaseOrder, error) {
	ids := make([]uuid.UUID, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	chains, err := loadApprovalsFor(ctx, r.db, approval.OwnerPurchaseOrder, ids)
	if err != nil {
		return nil, err
	}
	out := make([]purchase.PurchaseOrder, len(rows))
	for i := range rows {
		out[i] = *rows[i].ToDomain()
		out[i].Approvals = chains[rows[i].ID]
	}
	return out, nil
}

var _ purchase.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
