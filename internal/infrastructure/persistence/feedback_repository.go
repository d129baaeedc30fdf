package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/evaluation"
	"github.com/procurement/backend/internal/domain/notification"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormEvaluationRepository implements EvaluationRepository using GORM
type GormEvaluationRepository struct {
	db *gorm.DB
}

// NewGormEvaluationRepository creates a new GormEvaluationRepository
func NewGormEvaluationRepository(db *gorm.DB) *GormEvaluationRepository {
	return &GormEvaluationRepository{db: db}
}

// FindBySupplier lists a supplier's evaluations newest first
func (r *GormEvaluationRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]evaluation.SupplierEvaluation, error) {
	var rows []models.SupplierEvaluationModel
	if err := r.db.WithContext(ctx).
		Where("supplier_id = ?", supplierID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]evaluation.SupplierEvaluation, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// ExistsForEvaluator reports whether the evaluator already rated the PO
func (r *GormEvaluationRepository) ExistsForEvaluator(ctx context.Context, poID, evaluatorID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.SupplierEvaluationModel{}).
		Where("po_id = ? AND evaluator_id = ?", poID, evaluatorID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Create inserts an evaluation
func (r *GormEvaluationRepository) Create(ctx context.Context, eval *evaluation.SupplierEvaluation) error {
	return translate(r.db.WithContext(ctx).Create(models.SupplierEvaluationModelFromDomain(eval)).Error, "SupplierEvaluation")
}

// GormNotificationRepository implements NotificationRepository using GORM
type GormNotificationRepository struct {
	db *gorm.DB
}

// NewGormNotificationRepository creates a new GormNotificationRepository
func NewGormNotificationRepository(db *gorm.DB) *GormNotificationRepository {
	return &GormNotificationRepository{db: db}
}

// Create inserts a notification
func (r *GormNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return r.db.WithContext(ctx).Create(models.NotificationModelFromDomain(n)).Error
}

// FindLatest lists a user's newest notifications
func (r *GormNotificationRepository) FindLatest(ctx context.Context, userID uuid.UUID, limit int) ([]notification.Notification, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []models.NotificationModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]notification.Notification, len(rows))
	for i := range rows {
		out[i] = rows[i].ToDomain()
	}
	return out, nil
}

// MarkRead marks one notification read; only its owner may do so
func (r *GormNotificationRepository) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("is_read", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("Notification", id)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user read
func (r *GormNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.NotificationModel{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

var (
	_ evaluation.EvaluationRepository     = (*GormEvaluationRepository)(nil)
	_ notification.NotificationRepository = (*GormNotificationRepository)(nil)
)
