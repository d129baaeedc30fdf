package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
)

// StockIssueModel is the persistence model for a stock issue (XK#####)
type StockIssueModel struct {
	AggregateModel
	Code        string            `gorm:"type:varchar(20);not null;uniqueIndex"`
	RequestID   uuid.UUID         `gorm:"type:uuid;not null;uniqueIndex"`
	IssuedBy    uuid.UUID         `gorm:"type:uuid;not null"`
	Status      stock.IssueStatus `gorm:"type:varchar(20);not null;default:'pending';index"`
	IssuedAt    time.Time         `gorm:"not null"`
	ReceivedBy  *uuid.UUID        `gorm:"type:uuid"`
	ReceivedAt  *time.Time
	Note        string                `gorm:"type:text"`
	ReceiveNote string                `gorm:"type:text"`
	Items       []StockIssueItemModel `gorm:"foreignKey:IssueID;references:ID"`
}

// TableName returns the table name for GORM
func (StockIssueModel) TableName() string {
	return "stock_issues"
}

// ToDomain converts the persistence model to a domain StockIssue
func (m *StockIssueModel) ToDomain() *stock.StockIssue {
	issue := &stock.StockIssue{
		BaseAggregateRoot: m.Root(),
		Code:              m.Code,
		RequestID:         m.RequestID,
		IssuedBy:          m.IssuedBy,
		Status:            m.Status,
		IssuedAt:          m.IssuedAt,
		ReceivedBy:        m.ReceivedBy,
		ReceivedAt:        m.ReceivedAt,
		Note:              m.Note,
		ReceiveNote:       m.ReceiveNote,
		Items:             make([]stock.StockIssueItem, len(m.Items)),
	}
	for i, it := range m.Items {
		issue.Items[i] = stock.StockIssueItem{
			ID:           it.ID,
			IssueID:      it.IssueID,
			MaterialID:   it.MaterialID,
			MaterialName: it.MaterialName,
			Unit:         it.Unit,
			Quantity:     it.Quantity,
		}
	}
	return issue
}

// StockIssueModelFromDomain creates a persistence model with its items
func StockIssueModelFromDomain(issue *stock.StockIssue) *StockIssueModel {
	m := &StockIssueModel{
		Code:        issue.Code,
		RequestID:   issue.RequestID,
		IssuedBy:    issue.IssuedBy,
		Status:      issue.Status,
		IssuedAt:    issue.IssuedAt,
		ReceivedBy:  issue.ReceivedBy,
		ReceivedAt:  issue.ReceivedAt,
		Note:        issue.Note,
		ReceiveNote: issue.ReceiveNote,
		Items:       make([]StockIssueItemModel, len(issue.Items)),
	}
	m.SetRoot(issue.BaseAggregateRoot)
	for i, it := range issue.Items {
		m.Items[i] = StockIssueItemModel{
			ID:           it.ID,
			IssueID:      issue.ID,
			MaterialID:   it.MaterialID,
			MaterialName: it.MaterialName,
			Unit:         it.Unit,
			Quantity:     it.Quantity,
		}
	}
	return m
}

// StockIssueItemModel is a line of a stock issue
type StockIssueItemModel struct {
	ID           uuid.UUID       `gorm:"type:uuid;primary_key"`
	IssueID      uuid.UUID       `gorm:"type:uuid;not null;index"`
	MaterialID   uuid.UUID       `gorm:"type:uuid;not null"`
	MaterialName string          `gorm:"type:varchar(200);not null"`
	Unit         string          `gorm:"type:varchar(20);not null"`
	Quantity     decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for GORM
func (StockIssueItemModel) TableName() string {
	return "stock_issue_items"
}
