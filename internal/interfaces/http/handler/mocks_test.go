package handler

import (
	"context"
	"time"

	"github.com/google/uuid"
	appidentity "github.com/procurement/backend/internal/application/identity"
	appnotification "github.com/procurement/backend/internal/application/notification"
	apppurchase "github.com/procurement/backend/internal/application/purchase"
	appquota "github.com/procurement/backend/internal/application/quota"
	apprequest "github.com/procurement/backend/internal/application/request"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/quota"
	"github.com/procurement/backend/internal/domain/request"
	"github.com/stretchr/testify/mock"
)

func result[T any](args mock.Arguments) (*T, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Login(ctx context.Context, in appidentity.LoginInput) (*appidentity.LoginResult, error) {
	return result[appidentity.LoginResult](m.Called(ctx, in))
}

func (m *mockAuthService) RefreshToken(ctx context.Context, in appidentity.RefreshTokenInput) (*appidentity.RefreshTokenResult, error) {
	return result[appidentity.RefreshTokenResult](m.Called(ctx, in))
}

func (m *mockAuthService) Logout(ctx context.Context, in appidentity.LogoutInput) error {
	return m.Called(ctx, in).Error(0)
}

func (m *mockAuthService) GetCurrentUser(ctx context.Context, userID uuid.UUID) (*appidentity.UserInfo, error) {
	return result[appidentity.UserInfo](m.Called(ctx, userID))
}

type mockRequestService struct{ mock.Mock }

func (m *mockRequestService) Create(ctx context.Context, actor identity.Actor, req apprequest.CreateRequestRequest) (*apprequest.CreateRequestResult, error) {
	return result[apprequest.CreateRequestResult](m.Called(ctx, actor, req))
}

func (m *mockRequestService) Approve(ctx context.Context, actor identity.Actor, id uuid.UUID, req apprequest.ApproveRequest) (*apprequest.ApproveResult, error) {
	return result[apprequest.ApproveResult](m.Called(ctx, actor, id, req))
}

func (m *mockRequestService) Get(ctx context.Context, id uuid.UUID) (*apprequest.RequestResponse, error) {
	return result[apprequest.RequestResponse](m.Called(ctx, id))
}

func (m *mockRequestService) List(ctx context.Context, filter apprequest.RequestListFilter) ([]apprequest.RequestResponse, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]apprequest.RequestResponse), args.Get(1).(int64), args.Error(2)
}

type mockQuotaService struct{ mock.Mock }

func (m *mockQuotaService) CheckViolations(ctx context.Context, projectID uuid.UUID, items []request.ItemInput, excludeID *uuid.UUID) ([]quota.Violation, error) {
	args := m.Called(ctx, projectID, items, excludeID)
	v, _ := args.Get(0).([]quota.Violation)
	return v, args.Error(1)
}

func (m *mockQuotaService) Upsert(ctx context.Context, actor identity.Actor, req appquota.UpsertQuotaRequest) (*appquota.QuotaResponse, error) {
	return result[appquota.QuotaResponse](m.Called(ctx, actor, req))
}

func (m *mockQuotaService) List(ctx context.Context, filter appquota.QuotaListFilter) ([]appquota.QuotaResponse, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]appquota.QuotaResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockQuotaService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]appquota.QuotaResponse, error) {
	args := m.Called(ctx, projectID)
	return args.Get(0).([]appquota.QuotaResponse), args.Error(1)
}

func (m *mockQuotaService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

type mockOrderService struct{ mock.Mock }

func (m *mockOrderService) CreateFromQuotation(ctx context.Context, actor identity.Actor, in apppurchase.CreatePurchaseOrderRequest) (*apppurchase.PurchaseOrderResponse, error) {
	return result[apppurchase.PurchaseOrderResponse](m.Called(ctx, actor, in))
}

func (m *mockOrderService) ActOnApproval(ctx context.Context, actor identity.Actor, poID uuid.UUID, req apppurchase.ApprovePurchaseOrderRequest) (*apppurchase.ApprovePurchaseOrderResult, error) {
	return result[apppurchase.ApprovePurchaseOrderResult](m.Called(ctx, actor, poID, req))
}

func (m *mockOrderService) Send(ctx context.Context, actor identity.Actor, poID uuid.UUID) (*apppurchase.SendPurchaseOrderResult, error) {
	return result[apppurchase.SendPurchaseOrderResult](m.Called(ctx, actor, poID))
}

func (m *mockOrderService) Cancel(ctx context.Context, actor identity.Actor, poID uuid.UUID, req apppurchase.CancelPurchaseOrderRequest) (*apppurchase.PurchaseOrderResponse, error) {
	return result[apppurchase.PurchaseOrderResponse](m.Called(ctx, actor, poID, req))
}

func (m *mockOrderService) Get(ctx context.Context, id uuid.UUID) (*apppurchase.PurchaseOrderResponse, error) {
	return result[apppurchase.PurchaseOrderResponse](m.Called(ctx, id))
}

func (m *mockOrderService) List(ctx context.Context, filter apppurchase.PurchaseOrderListFilter) ([]apppurchase.PurchaseOrderResponse, int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]apppurchase.PurchaseOrderResponse), args.Get(1).(int64), args.Error(2)
}

func (m *mockOrderService) Export(ctx context.Context, filter apppurchase.PurchaseOrderListFilter) ([]byte, error) {
	args := m.Called(ctx, filter)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

type mockDeliveryService struct{ mock.Mock }

func (m *mockDeliveryService) RecordDelivery(ctx context.Context, actor identity.Actor, in apppurchase.RecordDeliveryRequest) (*apppurchase.DeliveryResponse, error) {
	return result[apppurchase.DeliveryResponse](m.Called(ctx, actor, in))
}

func (m *mockDeliveryService) GetByPO(ctx context.Context, poID uuid.UUID) (*apppurchase.DeliveryResponse, error) {
	return result[apppurchase.DeliveryResponse](m.Called(ctx, poID))
}

func (m *mockDeliveryService) UploadPhoto(ctx context.Context, actor identity.Actor, poID uuid.UUID, fileName, contentType string, data []byte) (*apppurchase.PhotoUploadResult, error) {
	return result[apppurchase.PhotoUploadResult](m.Called(ctx, actor, poID, fileName, contentType, data))
}

type mockPaymentService struct{ mock.Mock }

func (m *mockPaymentService) CheckDocuments(ctx context.Context, in apppurchase.CheckDocumentsRequest) (*purchase.DocumentChecklist, error) {
	return result[purchase.DocumentChecklist](m.Called(ctx, in))
}

func (m *mockPaymentService) CreatePayment(ctx context.Context, actor identity.Actor, in apppurchase.CreatePaymentRequest) (*apppurchase.PaymentResponse, error) {
	return result[apppurchase.PaymentResponse](m.Called(ctx, actor, in))
}

func (m *mockPaymentService) ApprovePayment(ctx context.Context, actor identity.Actor, id uuid.UUID, in apppurchase.ApprovePaymentRequest) (*apppurchase.ApprovePaymentResult, error) {
	return result[apppurchase.ApprovePaymentResult](m.Called(ctx, actor, id, in))
}

func (m *mockPaymentService) GetByPO(ctx context.Context, poID uuid.UUID) (*apppurchase.PaymentResponse, error) {
	return result[apppurchase.PaymentResponse](m.Called(ctx, poID))
}

type mockTrackingService struct{ mock.Mock }

func (m *mockTrackingService) RecordEvent(ctx context.Context, actor identity.Actor, in apppurchase.RecordTrackingRequest) (*apppurchase.RecordTrackingResult, error) {
	return result[apppurchase.RecordTrackingResult](m.Called(ctx, actor, in))
}

func (m *mockTrackingService) ScanForOverdue(ctx context.Context, now time.Time) (*apppurchase.ScanResult, error) {
	return result[apppurchase.ScanResult](m.Called(ctx, now))
}

func (m *mockTrackingService) History(ctx context.Context, poID uuid.UUID) ([]apppurchase.TrackingResponse, error) {
	args := m.Called(ctx, poID)
	return args.Get(0).([]apppurchase.TrackingResponse), args.Error(1)
}

type mockNotificationService struct{ mock.Mock }

func (m *mockNotificationService) List(ctx context.Context, userID uuid.UUID) (*appnotification.InboxResponse, error) {
	return result[appnotification.InboxResponse](m.Called(ctx, userID))
}

func (m *mockNotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return m.Called(ctx, userID, id).Error(0)
}

func (m *mockNotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) error {
	return m.Called(ctx, userID).Error(0)
}
