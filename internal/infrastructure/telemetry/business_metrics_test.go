package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/procurement/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

func newTestBusinessMetrics(t *testing.T, provider telemetry.WorkflowMetricsProvider) *telemetry.BusinessMetrics {
	t.Helper()
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:            noop.NewMeterProvider().Meter("test"),
		Logger:           zap.NewNop(),
		WorkflowProvider: provider,
	})
	require.NoError(t, err)
	return bm
}

func TestNewBusinessMetrics(t *testing.T) {
	bm := newTestBusinessMetrics(t, nil)
	require.NotNil(t, bm)
}

func TestNewBusinessMetrics_NilMeter(t *testing.T) {
	bm, err := telemetry.NewBusinessMetrics(telemetry.BusinessMetricsConfig{
		Meter:  nil,
		Logger: zap.NewNop(),
	})

	require.Error(t, err)
	assert.Nil(t, bm)
	assert.Equal(t, "NewBusinessMetrics: meter cannot be nil", err.Error())
}

func TestBusinessMetrics_WorkflowCounters(t *testing.T) {
	bm := newTestBusinessMetrics(t, nil)
	ctx := context.Background()

	// Should not panic
	bm.RecordRequestCreated(ctx)
	bm.RecordApprovalDecision(ctx, "material_request", "approved")
	bm.RecordApprovalDecision(ctx, "purchase_order", "rejected")
	bm.RecordStockIssued(ctx)
	bm.RecordStockReceived(ctx)
	bm.RecordRFQCreated(ctx, 3)
	bm.RecordPurchaseOrderCreated(ctx, decimal.RequireFromString("8250000"))
	bm.RecordPayment(ctx, "postpay", "paid", decimal.RequireFromString("8250000"))
	bm.RecordPayment(ctx, "prepay", "cancelled", decimal.RequireFromString("100"))
	bm.RecordOverdueScan(ctx, 2, 1, 0)
}

func TestBusinessMetrics_Gauges(t *testing.T) {
	bm := newTestBusinessMetrics(t, nil)
	ctx := context.Background()

	bm.RecordLowStockCount(ctx, 5)
	bm.RecordAwaitingApproval(ctx, "purchase_order", 4)
	bm.RecordOverdueOrders(ctx, 1)
}

type mockWorkflowProvider struct {
	lowStock  int64
	awaiting  map[string]int64
	overdue   int64
	err       error
	collected chan struct{}
}

func (m *mockWorkflowProvider) GetLowStockCount(ctx context.Context) (int64, error) {
	select {
	case m.collected <- struct{}{}:
	default:
	}
	return m.lowStock, m.err
}

func (m *mockWorkflowProvider) GetAwaitingApprovalCount(ctx context.Context) (map[string]int64, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.awaiting, nil
}

func (m *mockWorkflowProvider) GetOverdueOrderCount(ctx context.Context, now time.Time) (int64, error) {
	return m.overdue, m.err
}

func TestBusinessMetrics_PeriodicCollection(t *testing.T) {
	provider := &mockWorkflowProvider{
		lowStock:  5,
		awaiting:  map[string]int64{"material_request": 2, "purchase_order": 1},
		overdue:   1,
		collected: make(chan struct{}, 1),
	}
	bm := newTestBusinessMetrics(t, provider)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bm.StartPeriodicCollection(ctx, 100*time.Millisecond)

	select {
	case <-provider.collected:
	case <-time.After(time.Second):
		t.Fatal("expected an immediate collection on start")
	}
	bm.Stop()
}

func TestBusinessMetrics_PeriodicCollection_ProviderErrors(t *testing.T) {
	provider := &mockWorkflowProvider{err: errors.New("db down"), collected: make(chan struct{}, 1)}
	bm := newTestBusinessMetrics(t, provider)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Errors are logged, never fatal
	bm.StartPeriodicCollection(ctx, 50*time.Millisecond)
	<-provider.collected
	bm.Stop()
}

func TestBusinessMetrics_PeriodicCollection_NoProvider(t *testing.T) {
	bm := newTestBusinessMetrics(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Should not panic with no workflow provider
	bm.StartPeriodicCollection(ctx, 50*time.Millisecond)

	time.Sleep(100 * time.Millisecond)
	bm.Stop()
}

func TestBusinessMetrics_Stop_Idempotent(t *testing.T) {
	bm := newTestBusinessMetrics(t, nil)

	// Calling Stop multiple times should not panic
	bm.Stop()
	bm.Stop()
	bm.Stop()
}

func TestBusinessMetrics_StartPeriodicCollection_OnlyOnce(t *testing.T) {
	bm := newTestBusinessMetrics(t, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Calling StartPeriodicCollection multiple times should only start once
	bm.StartPeriodicCollection(ctx, time.Hour)
	bm.StartPeriodicCollection(ctx, time.Minute)
	bm.StartPeriodicCollection(ctx, time.Second)

	bm.Stop()
}

func TestMetricsError_Error(t *testing.T) {
	err := &telemetry.MetricsError{
		Op:  "TestOperation",
		Err: "test error message",
	}

	assert.Equal(t, "TestOperation: test error message", err.Error())
}
