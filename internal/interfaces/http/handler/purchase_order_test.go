package handler

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	apppurchase "github.com/procurement/backend/internal/application/purchase"
	"github.com/procurement/backend/internal/domain/approval"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/interfaces/http/dto"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestPurchaseOrderHandler_Approve(t *testing.T) {
	director := identity.NewActor(uuid.New(), identity.RoleDirector)
	poID := uuid.New()

	svc := new(mockOrderService)
	router := newRouter(director)
	router.POST("/purchase-orders/:id/approve", NewPurchaseOrderHandler(svc).Approve)
	svc.On("ActOnApproval", mock.Anything, director, poID, apppurchase.ApprovePurchaseOrderRequest{
		Decision: approval.DecisionApprove,
		Comment:  "Đồng ý",
	}).Return(&apppurchase.ApprovePurchaseOrderResult{
		Order:   apppurchase.PurchaseOrderResponse{ID: poID, Code: "PO00003", Status: purchase.StatusApproved},
		Outcome: approval.OutcomeApproved,
	}, nil)

	w := doJSON(router, http.MethodPost, "/purchase-orders/"+poID.String()+"/approve",
		map[string]string{"decision": "approved", "comment": "Đồng ý"})
	require.Equal(t, http.StatusOK, w.Code)
	var got apppurchase.ApprovePurchaseOrderResult
	decodeData(t, w, &got)
	assert.Equal(t, purchase.StatusApproved, got.Order.Status)
	svc.AssertExpectations(t)
}

func TestPurchaseOrderHandler_Cancel(t *testing.T) {
	manager := identity.NewActor(uuid.New(), identity.RolePurchasingManager)
	poID := uuid.New()
	svc := new(mockOrderService)
	router := newRouter(manager)
	router.POST("/purchase-orders/:id/cancel", NewPurchaseOrderHandler(svc).Cancel)
	svc.On("Cancel", mock.Anything, manager, poID, apppurchase.CancelPurchaseOrderRequest{Reason: "Đổi nhà cung cấp"}).
		Return(nil, shared.NewInvalidStateError("Purchase order in status delivered cannot be cancelled"))

	w := doJSON(router, http.MethodPost, "/purchase-orders/"+poID.String()+"/cancel", map[string]string{"reason": "Đổi nhà cung cấp"})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, dto.ErrCodeInvalidState, decode(t, w).Error.Code)

	w = doJSON(router, http.MethodPost, "/purchase-orders/"+poID.String()+"/cancel", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPurchaseOrderHandler_Export(t *testing.T) {
	svc := new(mockOrderService)
	h := NewPurchaseOrderHandler(svc)
	h.now = func() time.Time { return time.Date(2026, 3, 9, 0, 0, 0, 0, time.UTC) }
	router := newRouter(identity.NewActor(uuid.New(), identity.RoleChiefAccountant))
	router.GET("/purchase-orders/export.xlsx", h.Export)
	router.GET("/purchase-orders/:id", h.Get)

	sent := purchase.StatusSent
	svc.On("Export", mock.Anything, apppurchase.PurchaseOrderListFilter{Status: &sent, Page: 1, PageSize: 20}).
		Return([]byte("PK\x03\x04"), nil)

	w := doJSON(router, http.MethodGet, "/purchase-orders/export.xlsx?status=sent", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="don-dat-hang-20260309.xlsx"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "PK\x03\x04", w.Body.String())
	svc.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestPaymentHandler_Create(t *testing.T) {
	accountant := identity.NewActor(uuid.New(), identity.RoleChiefAccountant)
	poID := uuid.New()

	t.Run("missing documents are listed in the error details", func(t *testing.T) {
		svc := new(mockPaymentService)
		router := newRouter(accountant)
		router.POST("/payments", NewPaymentHandler(svc).Create)
		svc.On("CreatePayment", mock.Anything, accountant, mock.Anything).
			Return(nil, shared.NewMissingDocumentsError([]string{purchase.DocDeliveryNote, purchase.DocVATInvoice}))

		w := doJSON(router, http.MethodPost, "/payments", map[string]any{
			"po_id": poID, "method": "bank_transfer", "type": "postpay",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		resp := decode(t, w)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, []any{purchase.DocDeliveryNote, purchase.DocVATInvoice}, resp.Error.Details["missing_documents"])
	})

	t.Run("created payment carries its UNC number", func(t *testing.T) {
		svc := new(mockPaymentService)
		router := newRouter(accountant)
		router.POST("/payments", NewPaymentHandler(svc).Create)
		svc.On("CreatePayment", mock.Anything, accountant, mock.MatchedBy(func(in apppurchase.CreatePaymentRequest) bool {
			return in.POID == poID && in.Type == purchase.TypePrepay && in.Amount.Equal(decimal.NewFromInt(5000000))
		})).Return(&apppurchase.PaymentResponse{UNCNumber: "UNC00012", Status: purchase.PaymentStatusPending}, nil)

		w := doJSON(router, http.MethodPost, "/payments", map[string]any{
			"po_id": poID, "method": "cash", "type": "prepay", "amount": "5000000",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var got apppurchase.PaymentResponse
		decodeData(t, w, &got)
		assert.Equal(t, "UNC00012", got.UNCNumber)
	})

	t.Run("unknown payment method", func(t *testing.T) {
		svc := new(mockPaymentService)
		router := newRouter(accountant)
		router.POST("/payments", NewPaymentHandler(svc).Create)

		w := doJSON(router, http.MethodPost, "/payments", map[string]any{
			"po_id": poID, "method": "crypto", "type": "prepay",
		})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "method", decode(t, w).Error.Fields[0].Field)
	})
}

func TestPaymentHandler_CheckDocuments(t *testing.T) {
	svc := new(mockPaymentService)
	router := newRouter(identity.NewActor(uuid.New(), identity.RoleChiefAccountant))
	router.POST("/payments/check-documents", NewPaymentHandler(svc).CheckDocuments)
	poID := uuid.New()
	svc.On("CheckDocuments", mock.Anything, apppurchase.CheckDocumentsRequest{POID: poID, Type: purchase.TypePostpay}).
		Return(&purchase.DocumentChecklist{CanProceed: false, MissingRequired: []string{purchase.DocVATInvoice}}, nil)

	w := doJSON(router, http.MethodPost, "/payments/check-documents", map[string]any{"po_id": poID, "type": "postpay"})
	require.Equal(t, http.StatusOK, w.Code)
	var got purchase.DocumentChecklist
	decodeData(t, w, &got)
	assert.False(t, got.CanProceed)
	assert.Equal(t, []string{purchase.DocVATInvoice}, got.MissingRequired)
}

// photoRequest builds a multipart upload with an explicit part content type
func photoRequest(t *testing.T, path, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestDeliveryHandler_UploadPhoto(t *testing.T) {
	supervisor := identity.NewActor(uuid.New(), identity.RoleSiteSupervisor)
	poID := uuid.New()
	photo := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
	path := "/deliveries/" + poID.String() + "/photos"

	setup := func() (*mockDeliveryService, *gin.Engine) {
		svc := new(mockDeliveryService)
		router := newRouter(supervisor)
		router.POST("/deliveries/:poId/photos", NewDeliveryHandler(svc).UploadPhoto)
		return svc, router
	}

	t.Run("passes the file through to the service", func(t *testing.T) {
		svc, router := setup()
		svc.On("UploadPhoto", mock.Anything, supervisor, poID, "hang-ve.jpg", "image/jpeg", photo).
			Return(&apppurchase.PhotoUploadResult{StorageKey: "deliveries/" + poID.String() + "/x.jpg"}, nil)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, photoRequest(t, path, "hang-ve.jpg", "image/jpeg", photo))
		require.Equal(t, http.StatusCreated, w.Code)
		var got apppurchase.PhotoUploadResult
		decodeData(t, w, &got)
		assert.Contains(t, got.StorageKey, poID.String())
	})

	t.Run("missing file field", func(t *testing.T) {
		svc, router := setup()
		w := doJSON(router, http.MethodPost, path, nil)
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "file", decode(t, w).Error.Fields[0].Field)
		svc.AssertNotCalled(t, "UploadPhoto", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("oversize photo is 413", func(t *testing.T) {
		svc, router := setup()
		w := httptest.NewRecorder()
		router.ServeHTTP(w, photoRequest(t, path, "lon.jpg", "image/jpeg", make([]byte, apppurchase.MaxPhotoSize+1)))
		assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
		svc.AssertNotCalled(t, "UploadPhoto", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestTrackingHandler_CheckDelays(t *testing.T) {
	now := time.Date(2026, 3, 15, 8, 0, 0, 0, time.UTC)
	svc := new(mockTrackingService)
	h := NewTrackingHandler(svc)
	h.now = func() time.Time { return now }
	router := newRouter(identity.NewActor(uuid.New(), identity.RolePurchasingStaff))
	router.POST("/tracking/check-delays", h.CheckDelays)

	svc.On("ScanForOverdue", mock.Anything, now).Return(&apppurchase.ScanResult{
		Checked: 2, Flagged: 1, Skipped: 1,
		Items: []apppurchase.ScanItem{
			{Code: "PO00001", DaysLate: 3, Outcome: apppurchase.ScanFlagged},
			{Code: "PO00002", DaysLate: 1, Outcome: apppurchase.ScanSkipped},
		},
	}, nil).Once()
	svc.On("ScanForOverdue", mock.Anything, now).Return(nil, errors.New("db down")).Once()

	w := doJSON(router, http.MethodPost, "/tracking/check-delays", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var got apppurchase.ScanResult
	decodeData(t, w, &got)
	assert.Equal(t, 1, got.Flagged)
	assert.Equal(t, apppurchase.ScanFlagged, got.Items[0].Outcome)

	w = doJSON(router, http.MethodPost, "/tracking/check-delays", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestTrackingHandler_Record(t *testing.T) {
	staff := identity.NewActor(uuid.New(), identity.RolePurchasingStaff)
	poID := uuid.New()
	svc := new(mockTrackingService)
	router := newRouter(staff)
	h := NewTrackingHandler(svc)
	router.POST("/tracking", h.Record)
	router.GET("/tracking/:poId", h.History)

	svc.On("RecordEvent", mock.Anything, staff, apppurchase.RecordTrackingRequest{
		POID: poID, Status: purchase.TrackingShipped, Location: "Kho Bình Dương",
	}).Return(&apppurchase.RecordTrackingResult{OrderStatus: purchase.StatusInTransit}, nil)
	svc.On("History", mock.Anything, poID).Return([]apppurchase.TrackingResponse{{Status: purchase.TrackingShipped}}, nil)

	w := doJSON(router, http.MethodPost, "/tracking", map[string]any{
		"po_id": poID, "status": purchase.TrackingShipped, "location": "Kho Bình Dương",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var got apppurchase.RecordTrackingResult
	decodeData(t, w, &got)
	assert.Equal(t, purchase.StatusInTransit, got.OrderStatus)

	w = doJSON(router, http.MethodGet, "/tracking/"+poID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var history []apppurchase.TrackingResponse
	decodeData(t, w, &history)
	assert.Len(t, history, 1)
}
