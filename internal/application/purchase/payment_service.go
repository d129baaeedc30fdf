package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/application/port"
	"github.com/procurement/backend/internal/application/txn"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/notification"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PaymentService handles payment orders (UNC) against purchase orders
type PaymentService struct {
	txScope         txn.TransactionScope
	orderRepo       purchase.PurchaseOrderRepository
	deliveryRepo    purchase.DeliveryRepository
	paymentRepo     purchase.PaymentRepository
	notifier        port.Notifier
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
	now             func() time.Time
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	txScope txn.TransactionScope,
	orderRepo purchase.PurchaseOrderRepository,
	deliveryRepo purchase.DeliveryRepository,
	paymentRepo purchase.PaymentRepository,
	notifier port.Notifier,
	logger *zap.Logger,
) *PaymentService {
	return &PaymentService{
		txScope:      txScope,
		orderRepo:    orderRepo,
		deliveryRepo: deliveryRepo,
		paymentRepo:  paymentRepo,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PaymentService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *PaymentService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// CheckDocuments reports which payment documents exist for a PO
func (s *PaymentService) CheckDocuments(ctx context.Context, in CheckDocumentsRequest) (*purchase.DocumentChecklist, error) {
	po, err := s.orderRepo.FindByID(ctx, in.POID)
	if err != nil {
		return nil, err
	}
	hasDelivery, err := s.deliveryRepo.ExistsForPO(ctx, po.ID)
	if err != nil {
		return nil, err
	}
	checklist := purchase.CheckDocuments(in.Type, hasDelivery, in.VATInvoiceRef)
	return &checklist, nil
}

// CreatePayment raises the single payment order of a PO. Postpay needs the
// delivery record and a VAT invoice reference.
func (s *PaymentService) CreatePayment(ctx context.Context, actor identity.Actor, in CreatePaymentRequest) (*PaymentResponse, error) {
	if err := actor.Authorize(identity.PermManagePayment); err != nil {
		return nil, err
	}

	var (
		payment *purchase.Payment
		po      *purchase.PurchaseOrder
	)
	err := s.txScope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		var err error
		po, err = repos.PurchaseOrderRepo().FindByIDForUpdate(ctx, in.POID)
		if err != nil {
			return err
		}
		exists, err := repos.PaymentRepo().ExistsForPO(ctx, po.ID)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewAlreadyExistsError(fmt.Sprintf("PO %s already has a payment order", po.Code))
		}
		hasDelivery, err := repos.DeliveryRepo().ExistsForPO(ctx, po.ID)
		if err != nil {
			return err
		}
		input := purchase.PaymentInput{
			Amount:         in.Amount,
			Method:         in.Method,
			Type:           in.Type,
			InvoiceNumber:  in.InvoiceNumber,
			VATInvoiceRef:  in.VATInvoiceRef,
			DeliveryNote:   in.DeliveryNote,
			AcceptanceNote: in.AcceptanceNote,
			Note:           in.Note,
			CreatedBy:      actor.UserID,
		}
		input.UNCNumber, err = repos.Codes().Next(ctx, port.PrefixPayment)
		if err != nil {
			return err
		}
		payment, err = purchase.NewPayment(po, hasDelivery, input)
		if err != nil {
			return err
		}
		return repos.PaymentRepo().Create(ctx, payment)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment order created",
		zap.String("payment_id", payment.ID.String()),
		zap.String("unc", payment.UNCNumber),
		zap.String("po_id", po.ID.String()),
		zap.String("type", string(payment.Type)),
		zap.String("amount", payment.Amount.String()))
	if s.businessMetrics != nil {
		s.businessMetrics.RecordPayment(ctx, string(payment.Type), string(payment.Status), payment.Amount)
	}
	s.notifier.NotifyRole(ctx, identity.RoleChiefAccountant, "Ủy nhiệm chi chờ duyệt",
		fmt.Sprintf("Ủy nhiệm chi %s cho đơn hàng %s (%s đ) đang chờ duyệt", payment.UNCNumber, po.Code, payment.Amount.StringFixed(0)),
		notification.TypeInfo, "/payments/"+payment.ID.String())

	response := ToPaymentResponse(payment)
	return &response, nil
}

// ApprovePayment approves (and pays) or rejects a pending payment. A paid
// payment completes its PO in the same transaction when the goods are
// already delivered.
func (s *PaymentService) ApprovePayment(ctx context.Context, actor identity.Actor, paymentID uuid.UUID, in ApprovePaymentRequest) (*ApprovePaymentResult, error) {
	if err := actor.Authorize(identity.PermManagePayment); err != nil {
		return nil, err
	}

	var (
		payment *purchase.Payment
		po      *purchase.PurchaseOrder
	)
	err := s.txScope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		var err error
		payment, err = repos.PaymentRepo().FindByIDForUpdate(ctx, paymentID)
		if err != nil {
			return err
		}
		po, err = repos.PurchaseOrderRepo().FindByIDForUpdate(ctx, payment.POID)
		if err != nil {
			return err
		}
		now := s.now()
		if !in.Approved {
			if err := payment.Reject(actor.UserID, in.Note, now); err != nil {
				return err
			}
			return repos.PaymentRepo().SaveWithLock(ctx, payment)
		}

		if err := payment.Approve(actor.UserID, in.Note, now); err != nil {
			return err
		}
		if err := repos.PaymentRepo().SaveWithLock(ctx, payment); err != nil {
			return err
		}
		if po.Status != purchase.StatusDelivered {
			return nil
		}
		if err := po.Complete(); err != nil {
			return err
		}
		return repos.PurchaseOrderRepo().SaveWithLock(ctx, po)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Payment decision recorded",
		zap.String("payment_id", payment.ID.String()),
		zap.String("status", string(payment.Status)),
		zap.String("po_status", string(po.Status)))
	shared.PublishPending(ctx, s.eventPublisher, po)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordPayment(ctx, string(payment.Type), string(payment.Status), payment.Amount)
	}

	link := "/payments/" + payment.ID.String()
	if payment.Status == purchase.PaymentStatusPaid {
		s.notifier.Notify(ctx, payment.CreatedBy, "Đã thanh toán",
			fmt.Sprintf("Ủy nhiệm chi %s đã được duyệt và thanh toán", payment.UNCNumber), notification.TypeSuccess, link)
	} else {
		s.notifier.Notify(ctx, payment.CreatedBy, "Ủy nhiệm chi bị từ chối",
			fmt.Sprintf("Ủy nhiệm chi %s bị từ chối: %s", payment.UNCNumber, in.Note), notification.TypeError, link)
	}

	return &ApprovePaymentResult{Payment: ToPaymentResponse(payment), OrderStatus: po.Status}, nil
}

// GetByPO returns the payment order of a PO
func (s *PaymentService) GetByPO(ctx context.Context, poID uuid.UUID) (*PaymentResponse, error) {
	p, err := s.paymentRepo.FindByPOID(ctx, poID)
	if err != nil {
		return nil, err
	}
	response := ToPaymentResponse(p)
	return &response, nil
}
