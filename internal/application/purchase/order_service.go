package purchase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/application/port"
	"github.com/procurement/backend/internal/application/txn"
	"github.com/procurement/backend/internal/domain/approval"
	"github.com/procurement/backend/internal/domain/catalog"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/notification"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PurchaseOrderService handles the purchase order lifecycle up to delivery
type PurchaseOrderService struct {
	txScope         txn.TransactionScope
	orderRepo       purchase.PurchaseOrderRepository
	supplierRepo    catalog.SupplierRepository
	mailer          port.Mailer
	exporter        port.Exporter
	notifier        port.Notifier
	policy          approval.LevelPolicy
	approvalLevels  int
	vatRate         decimal.Decimal
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
	now             func() time.Time
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	txScope txn.TransactionScope,
	orderRepo purchase.PurchaseOrderRepository,
	supplierRepo catalog.SupplierRepository,
	mailer port.Mailer,
	exporter port.Exporter,
	notifier port.Notifier,
	logger *zap.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		txScope:        txScope,
		orderRepo:      orderRepo,
		supplierRepo:   supplierRepo,
		mailer:         mailer,
		exporter:       exporter,
		notifier:       notifier,
		policy:         approval.RolePolicy,
		approvalLevels: approval.DefaultLevels,
		vatRate:        purchase.DefaultVATRate,
		logger:         logger,
		now:            time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseOrderService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *PurchaseOrderService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetApprovalPolicy replaces the role-to-level policy
func (s *PurchaseOrderService) SetApprovalPolicy(policy approval.LevelPolicy) {
	s.policy = policy
}

// SetWorkflowDefaults sets the VAT rate and approval depth of new POs.
// Zero values keep the current setting.
func (s *PurchaseOrderService) SetWorkflowDefaults(vatRate decimal.Decimal, approvalLevels int) {
	if vatRate.IsPositive() {
		s.vatRate = vatRate
	}
	if approvalLevels > 0 {
		s.approvalLevels = approvalLevels
	}
}

// CreateFromQuotation turns the selected quotation into a pending PO with a
// fresh approval chain. A quotation can back at most one PO.
func (s *PurchaseOrderService) CreateFromQuotation(ctx context.Context, actor identity.Actor, in CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	if err := actor.Authorize(identity.PermCreatePO); err != nil {
		return nil, err
	}

	var po *purchase.PurchaseOrder
	err := s.txScope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		q, err := repos.QuotationRepo().FindByID(ctx, in.QuotationID)
		if err != nil {
			return err
		}
		exists, err := repos.PurchaseOrderRepo().ExistsForQuotation(ctx, q.ID)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewAlreadyExistsError(fmt.Sprintf("Quotation %s already has a purchase order", q.Code))
		}
		rfq, err := repos.RFQRepo().FindByID(ctx, q.RFQID)
		if err != nil {
			return err
		}
		req, err := repos.RequestRepo().FindByID(ctx, rfq.RequestID)
		if err != nil {
			return err
		}

		code, err := repos.Codes().Next(ctx, port.PrefixPurchaseOrder)
		if err != nil {
			return err
		}
		po, err = purchase.NewFromQuotation(q, purchase.FromQuotationInput{
			Code:            code,
			RequestID:       req.ID,
			ProjectID:       req.ProjectID,
			CreatedBy:       actor.UserID,
			DeliveryAddress: in.DeliveryAddress,
			DeliveryDate:    in.DeliveryDate,
			Note:            in.Note,
			VATRate:         s.vatRate,
			ApprovalLevels:  s.approvalLevels,
		})
		if err != nil {
			return err
		}
		return repos.PurchaseOrderRepo().Create(ctx, po)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order created",
		zap.String("po_id", po.ID.String()),
		zap.String("code", po.Code),
		zap.String("quotation_id", po.QuotationID.String()),
		zap.String("grand_total", po.GrandTotal.String()))
	shared.PublishPending(ctx, s.eventPublisher, po)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordPurchaseOrderCreated(ctx, po.GrandTotal)
	}
	s.notifyNextApprover(ctx, po)

	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// ActOnApproval records the actor's decision on the lowest pending level of
// the PO chain. A rejection at any level is terminal.
func (s *PurchaseOrderService) ActOnApproval(ctx context.Context, actor identity.Actor, poID uuid.UUID, req ApprovePurchaseOrderRequest) (*ApprovePurchaseOrderResult, error) {
	in := approval.ActInput{
		Actor:     actor,
		Decision:  req.Decision,
		Comment:   req.Comment,
		Signature: req.Signature,
	}

	var (
		po      *purchase.PurchaseOrder
		acted   approval.Approval
		outcome approval.Outcome
	)
	err := s.txScope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		var err error
		po, err = repos.PurchaseOrderRepo().FindByIDForUpdate(ctx, poID)
		if err != nil {
			return err
		}
		a, o, err := po.Act(in, s.policy, s.now())
		if err != nil {
			return err
		}
		acted, outcome = *a, o
		return repos.PurchaseOrderRepo().SaveWithLock(ctx, po)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order approval recorded",
		zap.String("po_id", po.ID.String()),
		zap.Int("level", acted.Level),
		zap.String("decision", string(acted.Status)),
		zap.String("outcome", string(outcome)))
	shared.PublishPending(ctx, s.eventPublisher, po)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordApprovalDecision(ctx, string(approval.OwnerPurchaseOrder), string(acted.Status))
	}

	link := "/purchase-orders/" + po.ID.String()
	switch outcome {
	case approval.OutcomeApproved:
		s.notifier.Notify(ctx, po.CreatedBy, "Đơn hàng đã được duyệt",
			fmt.Sprintf("Đơn đặt hàng %s đã được duyệt đầy đủ, có thể gửi nhà cung cấp", po.Code), notification.TypeSuccess, link)
	case approval.OutcomeRejected:
		s.notifier.Notify(ctx, po.CreatedBy, "Đơn hàng bị từ chối",
			fmt.Sprintf("Đơn đặt hàng %s bị từ chối ở cấp %d: %s", po.Code, acted.Level, acted.Comment), notification.TypeError, link)
	default:
		s.notifyNextApprover(ctx, po)
	}

	return &ApprovePurchaseOrderResult{
		Order:   ToPurchaseOrderResponse(po),
		Acted:   ToApprovalResponse(&acted),
		Outcome: outcome,
	}, nil
}

// Send marks an approved PO as sent and mails the confirmation to the
// supplier after commit. A mail failure does not undo the status change.
func (s *PurchaseOrderService) Send(ctx context.Context, actor identity.Actor, poID uuid.UUID) (*SendPurchaseOrderResult, error) {
	if err := actor.Authorize(identity.PermSendPO); err != nil {
		return nil, err
	}

	var po *purchase.PurchaseOrder
	err := s.txScope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		var err error
		po, err = repos.PurchaseOrderRepo().FindByIDForUpdate(ctx, poID)
		if err != nil {
			return err
		}
		if err := po.Send(s.now()); err != nil {
			return err
		}
		return repos.PurchaseOrderRepo().SaveWithLock(ctx, po)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order sent",
		zap.String("po_id", po.ID.String()),
		zap.String("code", po.Code))
	shared.PublishPending(ctx, s.eventPublisher, po)

	emailSent := false
	supplier, err := s.supplierRepo.FindByID(ctx, po.SupplierID)
	switch {
	case err != nil:
		s.logger.Warn("Failed to load supplier for PO confirmation",
			zap.String("po_id", po.ID.String()),
			zap.Error(err))
	case !supplier.HasEmail():
		s.logger.Warn("Supplier has no email, PO confirmation skipped",
			zap.String("po_id", po.ID.String()),
			zap.String("supplier_id", supplier.ID.String()))
	case s.mailer != nil:
		if err := s.mailer.SendPOConfirmation(ctx, *supplier, po); err != nil {
			s.logger.Warn("Failed to send PO confirmation",
				zap.String("po_id", po.ID.String()),
				zap.Error(err))
		} else {
			emailSent = true
		}
	}

	return &SendPurchaseOrderResult{Order: ToPurchaseOrderResponse(po), EmailSent: emailSent}, nil
}

// Cancel voids a PO that has not been completed
func (s *PurchaseOrderService) Cancel(ctx context.Context, actor identity.Actor, poID uuid.UUID, req CancelPurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	if err := actor.Authorize(identity.PermCreatePO); err != nil {
		return nil, err
	}

	var po *purchase.PurchaseOrder
	err := s.txScope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		var err error
		po, err = repos.PurchaseOrderRepo().FindByIDForUpdate(ctx, poID)
		if err != nil {
			return err
		}
		if err := po.Cancel(req.Reason, s.now()); err != nil {
			return err
		}
		return repos.PurchaseOrderRepo().SaveWithLock(ctx, po)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Purchase order cancelled",
		zap.String("po_id", po.ID.String()),
		zap.String("reason", req.Reason))
	shared.PublishPending(ctx, s.eventPublisher, po)

	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// Get retrieves a purchase order by ID
func (s *PurchaseOrderService) Get(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	po, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToPurchaseOrderResponse(po)
	return &response, nil
}

// List retrieves purchase orders with filtering and pagination
func (s *PurchaseOrderService) List(ctx context.Context, filter PurchaseOrderListFilter) ([]PurchaseOrderResponse, int64, error) {
	orders, total, err := s.orderRepo.FindAll(ctx, toDomainFilter(filter))
	if err != nil {
		return nil, 0, err
	}
	return ToPurchaseOrderResponses(orders), total, nil
}

// Export renders the filtered purchase orders as an xlsx workbook
func (s *PurchaseOrderService) Export(ctx context.Context, filter PurchaseOrderListFilter) ([]byte, error) {
	domainFilter := toDomainFilter(filter)
	if filter.PageSize == 0 {
		domainFilter.PageSize = 1000
	}
	orders, _, err := s.orderRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, err
	}

	seen := make(map[uuid.UUID]struct{}, len(orders))
	ids := make([]uuid.UUID, 0, len(orders))
	for _, po := range orders {
		if _, ok := seen[po.SupplierID]; !ok {
			seen[po.SupplierID] = struct{}{}
			ids = append(ids, po.SupplierID)
		}
	}
	found, err := s.supplierRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	suppliers := make(map[uuid.UUID]catalog.Supplier, len(found))
	for _, sup := range found {
		suppliers[sup.ID] = sup
	}
	data, err := s.exporter.PurchaseOrders(orders, suppliers)
	if err != nil {
		return nil, fmt.Errorf("render purchase orders: %w", err)
	}
	return data, nil
}

func toDomainFilter(filter PurchaseOrderListFilter) shared.Filter {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.SupplierID != nil {
		domainFilter.Filters["supplier_id"] = *filter.SupplierID
	}
	if filter.ProjectID != nil {
		domainFilter.Filters["project_id"] = *filter.ProjectID
	}
	return domainFilter
}

// notifyNextApprover tells the role owning the current level that a signature is due
func (s *PurchaseOrderService) notifyNextApprover(ctx context.Context, po *purchase.PurchaseOrder) {
	level := po.Approvals.CurrentLevel()
	role, ok := identity.ApproverRole(level)
	if !ok {
		return
	}
	s.notifier.NotifyRole(ctx, role, "Đơn đặt hàng chờ duyệt",
		fmt.Sprintf("Đơn đặt hàng %s (%s đ) đang chờ duyệt cấp %d", po.Code, po.GrandTotal.StringFixed(0), level),
		notification.TypeInfo, "/purchase-orders/"+po.ID.String())
}
