package telemetry

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// BusinessMetrics provides business metrics for the procurement workflow.
// It tracks requests, approvals, stock movements, sourcing, purchase orders,
// payments and the overdue delivery scan.
type BusinessMetrics struct {
	meter  metric.Meter
	logger *zap.Logger

	// Counter metrics (monotonically increasing)
	requestCreatedTotal   *Counter
	approvalDecisionTotal *Counter
	stockIssuedTotal      *Counter
	stockReceivedTotal    *Counter
	rfqCreatedTotal       *Counter
	rfqInvitedTotal       *Counter
	poCreatedTotal        *Counter
	poAmountTotal         *Counter
	paymentTotal          *Counter
	paymentAmountTotal    *Counter
	overdueScanTotal      *Counter

	// Gauge metrics (point-in-time values)
	lowStockMaterials *Gauge
	awaitingApproval  *Gauge
	overdueOrders     *Gauge

	// Periodic collector
	stopChan    chan struct{}
	stopOnce    sync.Once
	collectOnce sync.Once

	// Data provider for periodic collection
	workflowProvider WorkflowMetricsProvider
}

// WorkflowMetricsProvider provides workflow state for periodic metrics collection.
// This interface allows the telemetry layer to query the database without
// depending on the domain packages directly.
type WorkflowMetricsProvider interface {
	// GetLowStockCount returns the number of materials below their minimum stock
	GetLowStockCount(ctx context.Context) (int64, error)

	// GetAwaitingApprovalCount returns pending approval chains per owner type
	GetAwaitingApprovalCount(ctx context.Context) (map[string]int64, error)

	// GetOverdueOrderCount returns POs still awaiting goods after their delivery date
	GetOverdueOrderCount(ctx context.Context, now time.Time) (int64, error)
}

// BusinessMetricsConfig holds configuration for business metrics.
type BusinessMetricsConfig struct {
	Meter            metric.Meter
	Logger           *zap.Logger
	CollectInterval  time.Duration // Default: 5 minutes
	WorkflowProvider WorkflowMetricsProvider
}

// NewBusinessMetrics creates a new BusinessMetrics instance.
func NewBusinessMetrics(cfg BusinessMetricsConfig) (*BusinessMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	bm := &BusinessMetrics{
		meter:            cfg.Meter,
		logger:           logger,
		stopChan:         make(chan struct{}),
		workflowProvider: cfg.WorkflowProvider,
	}

	counters := []struct {
		target      **Counter
		name        string
		description string
		unit        string
	}{
		{&bm.requestCreatedTotal, "procurement_request_created_total", "Total number of material requests created", "{requests}"},
		{&bm.approvalDecisionTotal, "procurement_approval_decision_total", "Total number of approval decisions recorded", "{decisions}"},
		{&bm.stockIssuedTotal, "procurement_stock_issued_total", "Total number of stock issues created", "{issues}"},
		{&bm.stockReceivedTotal, "procurement_stock_received_total", "Total number of stock issues confirmed as received", "{issues}"},
		{&bm.rfqCreatedTotal, "procurement_rfq_created_total", "Total number of RFQs opened", "{rfqs}"},
		{&bm.rfqInvitedTotal, "procurement_rfq_invited_suppliers_total", "Total number of supplier invitations", "{suppliers}"},
		{&bm.poCreatedTotal, "procurement_po_created_total", "Total number of purchase orders created", "{orders}"},
		{&bm.poAmountTotal, "procurement_po_amount_total", "Total purchase order grand total in VND", "{dong}"},
		{&bm.paymentTotal, "procurement_payment_total", "Total number of payment orders by type and status", "{payments}"},
		{&bm.paymentAmountTotal, "procurement_payment_amount_total", "Total paid amount in VND", "{dong}"},
		{&bm.overdueScanTotal, "procurement_overdue_scan_total", "Purchase orders visited by the overdue scan by outcome", "{orders}"},
	}
	for _, c := range counters {
		counter, err := NewCounter(cfg.Meter, c.name, c.description, c.unit)
		if err != nil {
			return nil, err
		}
		*c.target = counter
	}

	var err error
	bm.lowStockMaterials, err = NewGauge(
		cfg.Meter,
		"procurement_material_low_stock_count",
		"Number of materials below minimum stock",
		"{materials}",
	)
	if err != nil {
		return nil, err
	}

	bm.awaitingApproval, err = NewGauge(
		cfg.Meter,
		"procurement_awaiting_approval_count",
		"Number of approval chains still pending",
		"{chains}",
	)
	if err != nil {
		return nil, err
	}

	bm.overdueOrders, err = NewGauge(
		cfg.Meter,
		"procurement_overdue_order_count",
		"Number of purchase orders past their delivery date",
		"{orders}",
	)
	if err != nil {
		return nil, err
	}

	return bm, nil
}

// =============================================================================
// Request and Approval Metrics
// =============================================================================

// RecordRequestCreated records a material request creation.
func (bm *BusinessMetrics) RecordRequestCreated(ctx context.Context) {
	bm.requestCreatedTotal.Inc(ctx)
}

// RecordApprovalDecision records one signed approval level.
// ownerType is material_request or purchase_order.
func (bm *BusinessMetrics) RecordApprovalDecision(ctx context.Context, ownerType, decision string) {
	bm.approvalDecisionTotal.Inc(ctx,
		AttrOwnerType.String(ownerType),
		AttrDecision.String(decision),
	)
}

// =============================================================================
// Stock Metrics
// =============================================================================

// RecordStockIssued records a new stock issue
func (bm *BusinessMetrics) RecordStockIssued(ctx context.Context) {
	bm.stockIssuedTotal.Inc(ctx)
}

// RecordStockReceived records a confirmed receipt
func (bm *BusinessMetrics) RecordStockReceived(ctx context.Context) {
	bm.stockReceivedTotal.Inc(ctx)
}

// =============================================================================
// Sourcing and Purchase Metrics
// =============================================================================

// RecordRFQCreated records an RFQ and the number of invited suppliers.
func (bm *BusinessMetrics) RecordRFQCreated(ctx context.Context, invited int) {
	bm.rfqCreatedTotal.Inc(ctx)
	bm.rfqInvitedTotal.Add(ctx, int64(invited))
}

// RecordPurchaseOrderCreated records a PO and its grand total.
// VND has no minor unit, so the amount is truncated to whole dong.
func (bm *BusinessMetrics) RecordPurchaseOrderCreated(ctx context.Context, grandTotal decimal.Decimal) {
	bm.poCreatedTotal.Inc(ctx)
	bm.poAmountTotal.Add(ctx, grandTotal.IntPart())
}

// RecordPayment records a payment decision.
// The amount counter only moves for payments that were actually paid.
func (bm *BusinessMetrics) RecordPayment(ctx context.Context, paymentType, status string, amount decimal.Decimal) {
	bm.paymentTotal.Inc(ctx,
		AttrPaymentType.String(paymentType),
		AttrPaymentStatus.String(status),
	)
	if status == "paid" {
		bm.paymentAmountTotal.Add(ctx, amount.IntPart(), AttrPaymentType.String(paymentType))
	}
}

// RecordOverdueScan records the outcome counts of one overdue scan run.
func (bm *BusinessMetrics) RecordOverdueScan(ctx context.Context, flagged, skipped, failed int) {
	bm.overdueScanTotal.Add(ctx, int64(flagged), AttrScanOutcome.String("flagged"))
	bm.overdueScanTotal.Add(ctx, int64(skipped), AttrScanOutcome.String("skipped"))
	bm.overdueScanTotal.Add(ctx, int64(failed), AttrScanOutcome.String("failed"))
}

// =============================================================================
// Gauge Metrics
// =============================================================================

// RecordLowStockCount records the number of materials below minimum stock.
func (bm *BusinessMetrics) RecordLowStockCount(ctx context.Context, count int64) {
	bm.lowStockMaterials.Record(ctx, count)
}

// RecordAwaitingApproval records the pending chains of one owner type.
func (bm *BusinessMetrics) RecordAwaitingApproval(ctx context.Context, ownerType string, count int64) {
	bm.awaitingApproval.Record(ctx, count, AttrOwnerType.String(ownerType))
}

// RecordOverdueOrders records the number of overdue purchase orders.
func (bm *BusinessMetrics) RecordOverdueOrders(ctx context.Context, count int64) {
	bm.overdueOrders.Record(ctx, count)
}

// =============================================================================
// Periodic Collection
// =============================================================================

// StartPeriodicCollection starts periodic collection of gauge metrics.
// This is non-blocking - use Stop() to stop collection.
func (bm *BusinessMetrics) StartPeriodicCollection(ctx context.Context, interval time.Duration) {
	bm.collectOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}

		go bm.runPeriodicCollection(ctx, interval)
	})
}

// runPeriodicCollection runs the periodic collection loop.
func (bm *BusinessMetrics) runPeriodicCollection(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Collect immediately on start
	bm.collectWorkflowMetrics(ctx)

	for {
		select {
		case <-bm.stopChan:
			bm.logger.Info("Stopping periodic business metrics collection")
			return
		case <-ctx.Done():
			bm.logger.Info("Context cancelled, stopping periodic business metrics collection")
			return
		case <-ticker.C:
			bm.collectWorkflowMetrics(ctx)
		}
	}
}

// collectWorkflowMetrics collects the gauge metrics once.
func (bm *BusinessMetrics) collectWorkflowMetrics(ctx context.Context) {
	if bm.workflowProvider == nil {
		bm.logger.Debug("No workflow provider configured, skipping gauge collection")
		return
	}

	if count, err := bm.workflowProvider.GetLowStockCount(ctx); err != nil {
		bm.logger.Warn("Failed to get low stock count", zap.Error(err))
	} else {
		bm.RecordLowStockCount(ctx, count)
	}

	if byOwner, err := bm.workflowProvider.GetAwaitingApprovalCount(ctx); err != nil {
		bm.logger.Warn("Failed to get awaiting approval count", zap.Error(err))
	} else {
		for ownerType, count := range byOwner {
			bm.RecordAwaitingApproval(ctx, ownerType, count)
		}
	}

	if count, err := bm.workflowProvider.GetOverdueOrderCount(ctx, time.Now()); err != nil {
		bm.logger.Warn("Failed to get overdue order count", zap.Error(err))
	} else {
		bm.RecordOverdueOrders(ctx, count)
	}
}

// Stop stops the periodic collection.
func (bm *BusinessMetrics) Stop() {
	bm.stopOnce.Do(func() {
		close(bm.stopChan)
	})
}

// =============================================================================
// Error Types
// =============================================================================

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewBusinessMetrics", Err: "meter cannot be nil"}

// MetricsError represents a metrics-related error.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}
