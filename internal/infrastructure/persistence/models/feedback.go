package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/evaluation"
	"github.com/procurement/backend/internal/domain/notification"
	"github.com/shopspring/decimal"
)

// SupplierEvaluationModel is a 1..5 rating of a supplier on one PO
type SupplierEvaluationModel struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key"`
	SupplierID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	POID          uuid.UUID       `gorm:"column:po_id;type:uuid;not null;uniqueIndex:idx_evaluation_po_evaluator,priority:1"`
	EvaluatorID   uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_evaluation_po_evaluator,priority:2"`
	PriceScore    int             `gorm:"not null"`
	QualityScore  int             `gorm:"not null"`
	DeliveryScore int             `gorm:"not null"`
	SupportScore  int             `gorm:"not null"`
	AverageScore  decimal.Decimal `gorm:"type:decimal(3,2);not null"`
	Comment       string          `gorm:"type:text"`
	CreatedAt     time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (SupplierEvaluationModel) TableName() string {
	return "supplier_evaluations"
}

// ToDomain converts the persistence model to a domain SupplierEvaluation
func (m *SupplierEvaluationModel) ToDomain() evaluation.SupplierEvaluation {
	return evaluation.SupplierEvaluation{
		ID:          m.ID,
		SupplierID:  m.SupplierID,
		POID:        m.POID,
		EvaluatorID: m.EvaluatorID,
		Scores: evaluation.Scores{
			Price:    m.PriceScore,
			Quality:  m.QualityScore,
			Delivery: m.DeliveryScore,
			Support:  m.SupportScore,
		},
		AverageScore: m.AverageScore,
		Comment:      m.Comment,
		CreatedAt:    m.CreatedAt,
	}
}

// SupplierEvaluationModelFromDomain creates a persistence model from a domain evaluation
func SupplierEvaluationModelFromDomain(e *evaluation.SupplierEvaluation) *SupplierEvaluationModel {
	return &SupplierEvaluationModel{
		ID:            e.ID,
		SupplierID:    e.SupplierID,
		POID:          e.POID,
		EvaluatorID:   e.EvaluatorID,
		PriceScore:    e.Scores.Price,
		QualityScore:  e.Scores.Quality,
		DeliveryScore: e.Scores.Delivery,
		SupportScore:  e.Scores.Support,
		AverageScore:  e.AverageScore,
		Comment:       e.Comment,
		CreatedAt:     e.CreatedAt,
	}
}

// NotificationModel is an in-app notification
type NotificationModel struct {
	ID        uuid.UUID         `gorm:"type:uuid;primary_key"`
	UserID    uuid.UUID         `gorm:"type:uuid;not null;index:idx_notification_user_created,priority:1"`
	Title     string            `gorm:"type:varchar(300);not null"`
	Message   string            `gorm:"type:text;not null"`
	Type      notification.Type `gorm:"type:varchar(20);not null;default:'info'"`
	Link      string            `gorm:"type:varchar(500)"`
	Read      bool              `gorm:"column:is_read;not null;default:false"`
	CreatedAt time.Time         `gorm:"not null;index:idx_notification_user_created,priority:2"`
}

// TableName returns the table name for GORM
func (NotificationModel) TableName() string {
	return "notifications"
}

// ToDomain converts the persistence model to a domain Notification
func (m *NotificationModel) ToDomain() notification.Notification {
	return notification.Notification{
		ID:        m.ID,
		UserID:    m.UserID,
		Title:     m.Title,
		Message:   m.Message,
		Type:      m.Type,
		Link:      m.Link,
		Read:      m.Read,
		CreatedAt: m.CreatedAt,
	}
}

// NotificationModelFromDomain creates a persistence model from a domain Notification
func NotificationModelFromDomain(n *notification.Notification) *NotificationModel {
	return &NotificationModel{
		ID:        n.ID,
		UserID:    n.UserID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		Link:      n.Link,
		Read:      n.Read,
		CreatedAt: n.CreatedAt,
	}
}
