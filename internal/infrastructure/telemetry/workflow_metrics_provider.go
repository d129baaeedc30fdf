package telemetry

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// awaitingDeliveryStatuses mirrors the PO statuses that can become overdue
var awaitingDeliveryStatuses = []string{"approved", "sent", "in_transit"}

// GormWorkflowMetricsProvider implements WorkflowMetricsProvider using GORM.
// It queries the workflow tables directly for aggregated gauges.
type GormWorkflowMetricsProvider struct {
	db *gorm.DB
}

// NewGormWorkflowMetricsProvider creates a new GormWorkflowMetricsProvider.
func NewGormWorkflowMetricsProvider(db *gorm.DB) *GormWorkflowMetricsProvider {
	return &GormWorkflowMetricsProvider{db: db}
}

// GetLowStockCount returns the number of materials below their minimum stock.
func (p *GormWorkflowMetricsProvider) GetLowStockCount(ctx context.Context) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("materials").
		Where("min_stock > 0 AND stock < min_stock").
		Count(&count).Error
	return count, err
}

// GetAwaitingApprovalCount returns, per owner type, how many owners still
// have a pending approval level and no rejection.
func (p *GormWorkflowMetricsProvider) GetAwaitingApprovalCount(ctx context.Context) (map[string]int64, error) {
	type result struct {
		OwnerType string `gorm:"column:owner_type"`
		Owners    int64  `gorm:"column:owners"`
	}

	var results []result
	err := p.db.WithContext(ctx).
		Table("approvals").
		Select("owner_type, COUNT(DISTINCT owner_id) AS owners").
		Where("status = ?", "pending").
		Where("owner_id NOT IN (?)", p.db.Table("approvals").Select("owner_id").Where("status = ?", "rejected")).
		Group("owner_type").
		Scan(&results).Error
	if err != nil {
		return nil, err
	}

	out := make(map[string]int64, len(results))
	for _, r := range results {
		out[r.OwnerType] = r.Owners
	}
	return out, nil
}

// GetOverdueOrderCount returns POs still awaiting goods after their delivery date.
func (p *GormWorkflowMetricsProvider) GetOverdueOrderCount(ctx context.Context, now time.Time) (int64, error) {
	var count int64
	err := p.db.WithContext(ctx).
		Table("purchase_orders").
		Where("status IN ?", awaitingDeliveryStatuses).
		Where("delivery_date IS NOT NULL AND delivery_date < ?", now).
		Count(&count).Error
	return count, err
}

var _ WorkflowMetricsProvider = (*GormWorkflowMetricsProvider)(nil)
