package scheduler

import (
	"context"
	"time"

	purchaseapp "github.com/procurement/backend/internal/application/purchase"
	"go.uber.org/zap"
)

// OverdueScanJobName is the lock and state name of the overdue scan
const OverdueScanJobName = "overdue_delivery_scan"

// OverdueScanner flags POs past their delivery date
type OverdueScanner interface {
	ScanForOverdue(ctx context.Context, now time.Time) (*purchaseapp.ScanResult, error)
}

// OverdueScanJob runs the overdue delivery scan on a schedule
type OverdueScanJob struct {
	scanner OverdueScanner
	logger  *zap.Logger
}

// NewOverdueScanJob creates a new OverdueScanJob
func NewOverdueScanJob(scanner OverdueScanner, logger *zap.Logger) *OverdueScanJob {
	return &OverdueScanJob{scanner: scanner, logger: logger}
}

// Name implements Job
func (j *OverdueScanJob) Name() string { return OverdueScanJobName }

// Run implements Job
func (j *OverdueScanJob) Run(ctx context.Context, now time.Time) error {
	res, err := j.scanner.ScanForOverdue(ctx, now)
	if err != nil {
		return err
	}
	if res.Flagged > 0 || res.Failed > 0 {
		j.logger.Info("Overdue scan flagged purchase orders",
			zap.Int("flagged", res.Flagged),
			zap.Int("failed", res.Failed))
	}
	return nil
}
