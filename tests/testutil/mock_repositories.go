package testutil

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/application/port"
	"github.com/procurement/backend/internal/domain/catalog"
	"github.com/procurement/backend/internal/domain/evaluation"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/notification"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/quota"
	"github.com/procurement/backend/internal/domain/request"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/domain/sourcing"
	"github.com/procurement/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockMaterialRequestRepository is a testify mock
type MockMaterialRequestRepository struct {
	mock.Mock
}

func (m *MockMaterialRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*request.MaterialRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*request.MaterialRequest), args.Error(1)
}

func (m *MockMaterialRequestRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*request.MaterialRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*request.MaterialRequest), args.Error(1)
}

func (m *MockMaterialRequestRepository) FindAll(ctx context.Context, filter shared.Filter) ([]request.MaterialRequest, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]request.MaterialRequest), args.Get(1).(int64), args.Error(2)
}

func (m *MockMaterialRequestRepository) Create(ctx context.Context, req *request.MaterialRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockMaterialRequestRepository) SaveWithLock(ctx context.Context, req *request.MaterialRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockMaterialRequestRepository) SumQuantityByStatus(ctx context.Context, projectID uuid.UUID, materialID uuid.UUID, statuses []request.Status, excludeID *uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, projectID, materialID, statuses, excludeID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// MockMaterialQuotaRepository is a testify mock
type MockMaterialQuotaRepository struct {
	mock.Mock
}

func (m *MockMaterialQuotaRepository) FindByID(ctx context.Context, id uuid.UUID) (*quota.MaterialQuota, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quota.MaterialQuota), args.Error(1)
}

func (m *MockMaterialQuotaRepository) FindByProjectAndMaterial(ctx context.Context, projectID uuid.UUID, materialID uuid.UUID) (*quota.MaterialQuota, error) {
	args := m.Called(ctx, projectID, materialID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*quota.MaterialQuota), args.Error(1)
}

func (m *MockMaterialQuotaRepository) FindByProject(ctx context.Context, projectID uuid.UUID) ([]quota.MaterialQuota, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]quota.MaterialQuota), args.Error(1)
}

func (m *MockMaterialQuotaRepository) FindAll(ctx context.Context, filter shared.Filter) ([]quota.MaterialQuota, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]quota.MaterialQuota), args.Get(1).(int64), args.Error(2)
}

func (m *MockMaterialQuotaRepository) Save(ctx context.Context, q *quota.MaterialQuota) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockMaterialQuotaRepository) IncrementUsed(ctx context.Context, id uuid.UUID, quantity decimal.Decimal) error {
	args := m.Called(ctx, id, quantity)
	return args.Error(0)
}

func (m *MockMaterialQuotaRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockMaterialRepository is a testify mock
type MockMaterialRepository struct {
	mock.Mock
}

func (m *MockMaterialRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Material, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Material), args.Error(1)
}

func (m *MockMaterialRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*catalog.Material, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Material), args.Error(1)
}

func (m *MockMaterialRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*catalog.Material, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[uuid.UUID]*catalog.Material), args.Error(1)
}

func (m *MockMaterialRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Material, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Material), args.Get(1).(int64), args.Error(2)
}

func (m *MockMaterialRepository) Save(ctx context.Context, material *catalog.Material) error {
	args := m.Called(ctx, material)
	return args.Error(0)
}

func (m *MockMaterialRepository) AdjustStock(ctx context.Context, id uuid.UUID, delta decimal.Decimal) error {
	args := m.Called(ctx, id, delta)
	return args.Error(0)
}

// MockProjectRepository is a testify mock
type MockProjectRepository struct {
	mock.Mock
}

func (m *MockProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Project), args.Error(1)
}

func (m *MockProjectRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Project, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Project), args.Get(1).(int64), args.Error(2)
}

func (m *MockProjectRepository) Save(ctx context.Context, project *catalog.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

// MockSupplierRepository is a testify mock
type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Supplier, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindByUserID(ctx context.Context, userID uuid.UUID) (*catalog.Supplier, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Supplier, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]catalog.Supplier), args.Get(1).(int64), args.Error(2)
}

func (m *MockSupplierRepository) Save(ctx context.Context, supplier *catalog.Supplier) error {
	args := m.Called(ctx, supplier)
	return args.Error(0)
}

// MockStockIssueRepository is a testify mock
type MockStockIssueRepository struct {
	mock.Mock
}

func (m *MockStockIssueRepository) FindByID(ctx context.Context, id uuid.UUID) (*stock.StockIssue, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.StockIssue), args.Error(1)
}

func (m *MockStockIssueRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*stock.StockIssue, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.StockIssue), args.Error(1)
}

func (m *MockStockIssueRepository) FindByRequestID(ctx context.Context, requestID uuid.UUID) (*stock.StockIssue, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*stock.StockIssue), args.Error(1)
}

func (m *MockStockIssueRepository) ExistsForRequest(ctx context.Context, requestID uuid.UUID) (bool, error) {
	args := m.Called(ctx, requestID)
	return args.Bool(0), args.Error(1)
}

func (m *MockStockIssueRepository) FindAll(ctx context.Context, filter shared.Filter) ([]stock.StockIssue, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]stock.StockIssue), args.Get(1).(int64), args.Error(2)
}

func (m *MockStockIssueRepository) Create(ctx context.Context, issue *stock.StockIssue) error {
	args := m.Called(ctx, issue)
	return args.Error(0)
}

func (m *MockStockIssueRepository) SaveWithLock(ctx context.Context, issue *stock.StockIssue) error {
	args := m.Called(ctx, issue)
	return args.Error(0)
}

// MockRFQRepository is a testify mock
type MockRFQRepository struct {
	mock.Mock
}

func (m *MockRFQRepository) FindByID(ctx context.Context, id uuid.UUID) (*sourcing.RFQ, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourcing.RFQ), args.Error(1)
}

func (m *MockRFQRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*sourcing.RFQ, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourcing.RFQ), args.Error(1)
}

func (m *MockRFQRepository) FindByRequestID(ctx context.Context, requestID uuid.UUID) ([]sourcing.RFQ, error) {
	args := m.Called(ctx, requestID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sourcing.RFQ), args.Error(1)
}

func (m *MockRFQRepository) ExistsForRequest(ctx context.Context, requestID uuid.UUID) (bool, error) {
	args := m.Called(ctx, requestID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRFQRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sourcing.RFQ, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]sourcing.RFQ), args.Get(1).(int64), args.Error(2)
}

func (m *MockRFQRepository) Create(ctx context.Context, rfq *sourcing.RFQ) error {
	args := m.Called(ctx, rfq)
	return args.Error(0)
}

func (m *MockRFQRepository) SaveWithLock(ctx context.Context, rfq *sourcing.RFQ) error {
	args := m.Called(ctx, rfq)
	return args.Error(0)
}

// MockQuotationRepository is a testify mock
type MockQuotationRepository struct {
	mock.Mock
}

func (m *MockQuotationRepository) FindByID(ctx context.Context, id uuid.UUID) (*sourcing.Quotation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sourcing.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) FindByRFQ(ctx context.Context, rfqID uuid.UUID) ([]sourcing.Quotation, error) {
	args := m.Called(ctx, rfqID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]sourcing.Quotation), args.Error(1)
}

func (m *MockQuotationRepository) ExistsForSupplier(ctx context.Context, rfqID uuid.UUID, supplierID uuid.UUID) (bool, error) {
	args := m.Called(ctx, rfqID, supplierID)
	return args.Bool(0), args.Error(1)
}

func (m *MockQuotationRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sourcing.Quotation, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]sourcing.Quotation), args.Get(1).(int64), args.Error(2)
}

func (m *MockQuotationRepository) Create(ctx context.Context, q *sourcing.Quotation) error {
	args := m.Called(ctx, q)
	return args.Error(0)
}

func (m *MockQuotationRepository) UpdateStatuses(ctx context.Context, quotations []*sourcing.Quotation) error {
	args := m.Called(ctx, quotations)
	return args.Error(0)
}

// MockPurchaseOrderRepository is a testify mock
type MockPurchaseOrderRepository struct {
	mock.Mock
}

func (m *MockPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchase.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*purchase.PurchaseOrder, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]purchase.PurchaseOrder, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]purchase.PurchaseOrder), args.Get(1).(int64), args.Error(2)
}

func (m *MockPurchaseOrderRepository) FindOverdue(ctx context.Context, now time.Time) ([]purchase.PurchaseOrder, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]purchase.PurchaseOrder), args.Error(1)
}

func (m *MockPurchaseOrderRepository) ExistsForQuotation(ctx context.Context, quotationID uuid.UUID) (bool, error) {
	args := m.Called(ctx, quotationID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPurchaseOrderRepository) Create(ctx context.Context, po *purchase.PurchaseOrder) error {
	args := m.Called(ctx, po)
	return args.Error(0)
}

func (m *MockPurchaseOrderRepository) SaveWithLock(ctx context.Context, po *purchase.PurchaseOrder) error {
	args := m.Called(ctx, po)
	return args.Error(0)
}

// MockDeliveryRepository is a testify mock
type MockDeliveryRepository struct {
	mock.Mock
}

func (m *MockDeliveryRepository) FindByPOID(ctx context.Context, poID uuid.UUID) (*purchase.Delivery, error) {
	args := m.Called(ctx, poID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.Delivery), args.Error(1)
}

func (m *MockDeliveryRepository) ExistsForPO(ctx context.Context, poID uuid.UUID) (bool, error) {
	args := m.Called(ctx, poID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeliveryRepository) Create(ctx context.Context, d *purchase.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

func (m *MockDeliveryRepository) Save(ctx context.Context, d *purchase.Delivery) error {
	args := m.Called(ctx, d)
	return args.Error(0)
}

// MockPaymentRepository is a testify mock
type MockPaymentRepository struct {
	mock.Mock
}

func (m *MockPaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*purchase.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*purchase.Payment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.Payment), args.Error(1)
}

func (m *MockPaymentRepository) FindByPOID(ctx context.Context, poID uuid.UUID) (*purchase.Payment, error) {
	args := m.Called(ctx, poID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.Payment), args.Error(1)
}

func (m *MockPaymentRepository) ExistsForPO(ctx context.Context, poID uuid.UUID) (bool, error) {
	args := m.Called(ctx, poID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPaymentRepository) Create(ctx context.Context, p *purchase.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *MockPaymentRepository) SaveWithLock(ctx context.Context, p *purchase.Payment) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

// MockTrackingRepository is a testify mock
type MockTrackingRepository struct {
	mock.Mock
}

func (m *MockTrackingRepository) Append(ctx context.Context, t *purchase.DeliveryTracking) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTrackingRepository) FindByPOID(ctx context.Context, poID uuid.UUID) ([]purchase.DeliveryTracking, error) {
	args := m.Called(ctx, poID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]purchase.DeliveryTracking), args.Error(1)
}

func (m *MockTrackingRepository) FindLatest(ctx context.Context, poID uuid.UUID) (*purchase.DeliveryTracking, error) {
	args := m.Called(ctx, poID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*purchase.DeliveryTracking), args.Error(1)
}

// MockEvaluationRepository is a testify mock
type MockEvaluationRepository struct {
	mock.Mock
}

func (m *MockEvaluationRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID) ([]evaluation.SupplierEvaluation, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]evaluation.SupplierEvaluation), args.Error(1)
}

func (m *MockEvaluationRepository) ExistsForEvaluator(ctx context.Context, poID uuid.UUID, evaluatorID uuid.UUID) (bool, error) {
	args := m.Called(ctx, poID, evaluatorID)
	return args.Bool(0), args.Error(1)
}

func (m *MockEvaluationRepository) Create(ctx context.Context, eval *evaluation.SupplierEvaluation) error {
	args := m.Called(ctx, eval)
	return args.Error(0)
}

// MockNotificationRepository is a testify mock
type MockNotificationRepository struct {
	mock.Mock
}

func (m *MockNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockNotificationRepository) FindLatest(ctx context.Context, userID uuid.UUID, limit int) ([]notification.Notification, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]notification.Notification), args.Error(1)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockNotificationRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockUserRepository is a testify mock
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindFirstByRole(ctx context.Context, role identity.Role) (*identity.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

// MockMailer is a testify mock
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendRFQInvitation(ctx context.Context, supplier catalog.Supplier, rfq *sourcing.RFQ) error {
	args := m.Called(ctx, supplier, rfq)
	return args.Error(0)
}

func (m *MockMailer) SendPOConfirmation(ctx context.Context, supplier catalog.Supplier, po *purchase.PurchaseOrder) error {
	args := m.Called(ctx, supplier, po)
	return args.Error(0)
}

func (m *MockMailer) SendDelayAlert(ctx context.Context, to string, po *purchase.PurchaseOrder, reason string) error {
	args := m.Called(ctx, to, po, reason)
	return args.Error(0)
}

// MockExporter is a testify mock
type MockExporter struct {
	mock.Mock
}

func (m *MockExporter) QuotationComparison(data port.QuotationComparison) ([]byte, error) {
	args := m.Called(data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockExporter) PurchaseOrders(orders []purchase.PurchaseOrder, suppliers map[uuid.UUID]catalog.Supplier) ([]byte, error) {
	args := m.Called(orders, suppliers)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

// MockObjectStorage is a testify mock
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, storageKey string, data []byte, contentType string) error {
	args := m.Called(ctx, storageKey, data, contentType)
	return args.Error(0)
}

func (m *MockObjectStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	args := m.Called(ctx, storageKey, expiresIn)
	return args.String(0), args.Get(1).(time.Time), args.Error(2)
}
