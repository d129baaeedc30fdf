package sourcing

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/application/port"
	stockapp "github.com/procurement/backend/internal/application/stock"
	"github.com/procurement/backend/internal/application/txn"
	"github.com/procurement/backend/internal/domain/catalog"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/notification"
	"github.com/procurement/backend/internal/domain/request"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/domain/sourcing"
	"github.com/procurement/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// SourcingService handles RFQs and supplier quotations
type SourcingService struct {
	txScope         txn.TransactionScope
	requestRepo     request.MaterialRequestRepository
	projectRepo     catalog.ProjectRepository
	materialRepo    catalog.MaterialRepository
	supplierRepo    catalog.SupplierRepository
	rfqRepo         sourcing.RFQRepository
	quotationRepo   sourcing.QuotationRepository
	mailer          port.Mailer
	exporter        port.Exporter
	notifier        port.Notifier
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	minSuppliers    int
	logger          *zap.Logger
	now             func() time.Time
}

// NewSourcingService creates a new SourcingService
func NewSourcingService(
	txScope txn.TransactionScope,
	requestRepo request.MaterialRequestRepository,
	projectRepo catalog.ProjectRepository,
	materialRepo catalog.MaterialRepository,
	supplierRepo catalog.SupplierRepository,
	rfqRepo sourcing.RFQRepository,
	quotationRepo sourcing.QuotationRepository,
	mailer port.Mailer,
	exporter port.Exporter,
	notifier port.Notifier,
	logger *zap.Logger,
) *SourcingService {
	return &SourcingService{
		txScope:       txScope,
		requestRepo:   requestRepo,
		projectRepo:   projectRepo,
		materialRepo:  materialRepo,
		supplierRepo:  supplierRepo,
		rfqRepo:       rfqRepo,
		quotationRepo: quotationRepo,
		mailer:        mailer,
		exporter:      exporter,
		notifier:      notifier,
		minSuppliers:  sourcing.MinInvitedSuppliers,
		logger:        logger,
		now:           time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SourcingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *SourcingService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetMinSuppliers sets how many distinct suppliers an RFQ must invite
func (s *SourcingService) SetMinSuppliers(n int) {
	s.minSuppliers = n
}

// ComputeNeedPurchase returns the lines of a request that stock cannot cover
func (s *SourcingService) ComputeNeedPurchase(ctx context.Context, requestID uuid.UUID) (*NeedPurchaseResponse, error) {
	req, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	analysis, err := stockapp.AnalyzeRequest(ctx, s.materialRepo, req)
	if err != nil {
		return nil, err
	}
	shortfall, err := sourcing.ComputeNeedPurchase(analysis)
	if err != nil {
		return nil, err
	}
	return &NeedPurchaseResponse{RequestID: req.ID, Items: shortfall}, nil
}

// CreateRFQ opens an RFQ carrying only the shortfall quantities of a request
// and invites the given suppliers. Invitations are mailed after commit; a
// failed email is logged and never undoes the RFQ.
func (s *SourcingService) CreateRFQ(ctx context.Context, actor identity.Actor, in CreateRFQRequest) (*CreateRFQResult, error) {
	if err := actor.Authorize(identity.PermCreateRFQ); err != nil {
		return nil, err
	}
	supplierIDs, err := sourcing.ValidateSuppliers(in.SupplierIDs, s.minSuppliers)
	if err != nil {
		return nil, err
	}
	suppliers, err := s.supplierRepo.FindByIDs(ctx, supplierIDs)
	if err != nil {
		return nil, err
	}
	if missing := missingSuppliers(supplierIDs, suppliers); len(missing) > 0 {
		return nil, shared.NewNotFoundError("Supplier", missing[0])
	}

	var (
		rfq *sourcing.RFQ
		req *request.MaterialRequest
	)
	err = s.txScope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		var err error
		req, err = repos.RequestRepo().FindByIDForUpdate(ctx, in.RequestID)
		if err != nil {
			return err
		}
		if !req.CanFulfill() {
			return shared.NewInvalidStateError(fmt.Sprintf("Request %s is %s, an RFQ needs an approved request", req.Code, req.Status)).
				WithDetail("status", string(req.Status))
		}
		exists, err := repos.RFQRepo().ExistsForRequest(ctx, req.ID)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewAlreadyExistsError(fmt.Sprintf("Request %s already has an RFQ", req.Code)).
				WithDetail("request_id", req.ID.String())
		}
		project, err := s.projectRepo.FindByID(ctx, req.ProjectID)
		if err != nil {
			return err
		}
		analysis, err := stockapp.AnalyzeRequest(ctx, repos.MaterialRepo(), req)
		if err != nil {
			return err
		}
		shortfall, err := sourcing.ComputeNeedPurchase(analysis)
		if err != nil {
			return err
		}

		code, err := repos.Codes().Next(ctx, port.PrefixRFQ)
		if err != nil {
			return err
		}
		rfq, err = sourcing.NewRFQ(sourcing.NewRFQInput{
			Code:        code,
			RequestID:   req.ID,
			ProjectName: project.Name,
			CreatedBy:   actor.UserID,
			Deadline:    in.Deadline,
			Description: in.Description,
			SupplierIDs: supplierIDs,
			Shortfall:   shortfall,
		})
		if err != nil {
			return err
		}
		if err := repos.RFQRepo().Create(ctx, rfq); err != nil {
			return err
		}
		if err := req.StartProcessing(); err != nil {
			return err
		}
		return repos.RequestRepo().SaveWithLock(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("RFQ created",
		zap.String("rfq_id", rfq.ID.String()),
		zap.String("code", rfq.Code),
		zap.String("request_id", req.ID.String()),
		zap.Int("suppliers", len(rfq.SupplierIDs)))
	shared.PublishPending(ctx, s.eventPublisher, rfq)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordRFQCreated(ctx, len(rfq.SupplierIDs))
	}

	sent := s.inviteSuppliers(ctx, rfq, suppliers)
	return &CreateRFQResult{RFQ: ToRFQResponse(rfq), EmailsSent: sent}, nil
}

// inviteSuppliers mails the RFQ to every invited supplier with an address
func (s *SourcingService) inviteSuppliers(ctx context.Context, rfq *sourcing.RFQ, suppliers []catalog.Supplier) int {
	if s.mailer == nil {
		return 0
	}
	sent := 0
	for _, supplier := range suppliers {
		if !supplier.HasEmail() {
			s.logger.Warn("Supplier has no email, invitation skipped",
				zap.String("rfq_id", rfq.ID.String()),
				zap.String("supplier_id", supplier.ID.String()))
			continue
		}
		if err := s.mailer.SendRFQInvitation(ctx, supplier, rfq); err != nil {
			s.logger.Warn("Failed to send RFQ invitation",
				zap.String("rfq_id", rfq.ID.String()),
				zap.String("supplier_id", supplier.ID.String()),
				zap.Error(err))
			continue
		}
		sent++
	}
	return sent
}

func missingSuppliers(ids []uuid.UUID, found []catalog.Supplier) []uuid.UUID {
	present := make(map[uuid.UUID]struct{}, len(found))
	for _, s := range found {
		present[s.ID] = struct{}{}
	}
	var missing []uuid.UUID
	for _, id := range ids {
		if _, ok := present[id]; !ok {
			missing = append(missing, id)
		}
	}
	return missing
}

// SubmitQuotation records a supplier's priced response to an open RFQ.
// A supplier account always quotes as its own supplier record.
func (s *SourcingService) SubmitQuotation(ctx context.Context, actor identity.Actor, in SubmitQuotationRequest) (*QuotationResponse, error) {
	if err := actor.Authorize(identity.PermSubmitQuotation); err != nil {
		return nil, err
	}
	supplierID, err := s.resolveSupplier(ctx, actor, in.SupplierID)
	if err != nil {
		return nil, err
	}

	lines := make([]sourcing.QuotationLine, len(in.Items))
	for i, item := range in.Items {
		lines[i] = sourcing.QuotationLine{
			MaterialID: item.MaterialID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			Note:       item.Note,
		}
	}

	var quotation *sourcing.Quotation
	err = s.txScope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		rfq, err := repos.RFQRepo().FindByIDForUpdate(ctx, in.RFQID)
		if err != nil {
			return err
		}
		if !rfq.Invited(supplierID) {
			return shared.NewPermissionDeniedError(fmt.Sprintf("Supplier was not invited to RFQ %s", rfq.Code)).
				WithDetail("supplier_id", supplierID.String())
		}
		exists, err := repos.QuotationRepo().ExistsForSupplier(ctx, rfq.ID, supplierID)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewAlreadyExistsError(fmt.Sprintf("Supplier already quoted on RFQ %s", rfq.Code))
		}
		if !rfq.IsOpen() {
			return shared.NewInvalidStateError(fmt.Sprintf("RFQ %s no longer accepts quotations", rfq.Code))
		}
		code, err := repos.Codes().Next(ctx, port.PrefixQuotation)
		if err != nil {
			return err
		}
		quotation, err = rfq.Submit(sourcing.SubmitInput{
			Code:             code,
			SupplierID:       supplierID,
			DeliveryTimeDays: in.DeliveryTimeDays,
			PaymentTerms:     in.PaymentTerms,
			ValidUntil:       in.ValidUntil,
			Note:             in.Note,
			Lines:            lines,
		}, s.now())
		if err != nil {
			return err
		}
		if err := repos.QuotationRepo().Create(ctx, quotation); err != nil {
			return err
		}
		s.notifier.Notify(ctx, rfq.CreatedBy, "Báo giá mới",
			fmt.Sprintf("Nhà cung cấp đã gửi báo giá %s cho %s", quotation.Code, rfq.Code),
			notification.TypeInfo, "/rfqs/"+rfq.ID.String())
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quotation submitted",
		zap.String("quotation_id", quotation.ID.String()),
		zap.String("code", quotation.Code),
		zap.String("rfq_id", quotation.RFQID.String()),
		zap.String("total", quotation.TotalAmount.String()))
	response := ToQuotationResponse(quotation)
	return &response, nil
}

func (s *SourcingService) resolveSupplier(ctx context.Context, actor identity.Actor, requested *uuid.UUID) (uuid.UUID, error) {
	if actor.Role == identity.RoleSupplier {
		supplier, err := s.supplierRepo.FindByUserID(ctx, actor.UserID)
		if err != nil {
			return uuid.Nil, err
		}
		if requested != nil && *requested != supplier.ID {
			return uuid.Nil, shared.NewPermissionDeniedError("Suppliers can only quote for themselves")
		}
		return supplier.ID, nil
	}
	if requested == nil {
		return uuid.Nil, shared.NewValidationError("supplier_id is required")
	}
	return *requested, nil
}

// SelectQuotation marks one quotation as the winner, rejects its siblings and
// closes the RFQ. The RFQ row is locked for the duration so two concurrent
// selections cannot both win.
func (s *SourcingService) SelectQuotation(ctx context.Context, actor identity.Actor, quotationID uuid.UUID) (*QuotationResponse, error) {
	if err := actor.Authorize(identity.PermSelectQuotation); err != nil {
		return nil, err
	}

	var (
		rfq    *sourcing.RFQ
		winner *sourcing.Quotation
	)
	err := s.txScope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		target, err := repos.QuotationRepo().FindByID(ctx, quotationID)
		if err != nil {
			return err
		}
		rfq, err = repos.RFQRepo().FindByIDForUpdate(ctx, target.RFQID)
		if err != nil {
			return err
		}
		all, err := repos.QuotationRepo().FindByRFQ(ctx, rfq.ID)
		if err != nil {
			return err
		}
		siblings := make([]*sourcing.Quotation, len(all))
		for i := range all {
			siblings[i] = &all[i]
		}
		winner, err = sourcing.Select(rfq, siblings, quotationID)
		if err != nil {
			return err
		}
		if err := repos.QuotationRepo().UpdateStatuses(ctx, siblings); err != nil {
			return err
		}
		return repos.RFQRepo().SaveWithLock(ctx, rfq)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Quotation selected",
		zap.String("quotation_id", winner.ID.String()),
		zap.String("rfq_id", rfq.ID.String()),
		zap.String("supplier_id", winner.SupplierID.String()))
	shared.PublishPending(ctx, s.eventPublisher, rfq)

	if supplier, err := s.supplierRepo.FindByID(ctx, winner.SupplierID); err == nil && supplier.UserID != nil {
		s.notifier.Notify(ctx, *supplier.UserID, "Báo giá được chọn",
			fmt.Sprintf("Báo giá %s của bạn đã được chọn cho %s", winner.Code, rfq.Code),
			notification.TypeSuccess, "/quotations/"+winner.ID.String())
	}

	response := ToQuotationResponse(winner)
	return &response, nil
}

// GetRFQ retrieves an RFQ by ID
func (s *SourcingService) GetRFQ(ctx context.Context, id uuid.UUID) (*RFQResponse, error) {
	rfq, err := s.rfqRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToRFQResponse(rfq)
	return &response, nil
}

// ListRFQs retrieves RFQs with filtering and pagination
func (s *SourcingService) ListRFQs(ctx context.Context, filter RFQListFilter) ([]RFQResponse, int64, error) {
	domainFilter := pageFilter(filter.Page, filter.PageSize)
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.RequestID != nil {
		domainFilter.Filters["request_id"] = *filter.RequestID
	}
	rfqs, total, err := s.rfqRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToRFQResponses(rfqs), total, nil
}

// ListQuotations retrieves quotations with filtering and pagination
func (s *SourcingService) ListQuotations(ctx context.Context, filter QuotationListFilter) ([]QuotationResponse, int64, error) {
	domainFilter := pageFilter(filter.Page, filter.PageSize)
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.SupplierID != nil {
		domainFilter.Filters["supplier_id"] = *filter.SupplierID
	}
	if filter.RFQID != nil {
		domainFilter.Filters["rfq_id"] = *filter.RFQID
	}
	quotations, total, err := s.quotationRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToQuotationResponses(quotations), total, nil
}

// ListByRFQ returns every quotation of an RFQ, cheapest first
func (s *SourcingService) ListByRFQ(ctx context.Context, rfqID uuid.UUID) ([]QuotationResponse, error) {
	quotations, err := s.quotationRepo.FindByRFQ(ctx, rfqID)
	if err != nil {
		return nil, err
	}
	return ToQuotationResponses(quotations), nil
}

// ExportComparison renders the quotations of an RFQ side by side as xlsx.
// It returns the workbook and a file name.
func (s *SourcingService) ExportComparison(ctx context.Context, rfqID uuid.UUID) ([]byte, string, error) {
	rfq, err := s.rfqRepo.FindByID(ctx, rfqID)
	if err != nil {
		return nil, "", err
	}
	quotations, err := s.quotationRepo.FindByRFQ(ctx, rfqID)
	if err != nil {
		return nil, "", err
	}
	ids := make([]uuid.UUID, len(quotations))
	for i, q := range quotations {
		ids[i] = q.SupplierID
	}
	found, err := s.supplierRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, "", err
	}
	suppliers := make(map[uuid.UUID]catalog.Supplier, len(found))
	for _, sup := range found {
		suppliers[sup.ID] = sup
	}
	data, err := s.exporter.QuotationComparison(port.QuotationComparison{
		RFQ:        rfq,
		Quotations: quotations,
		Suppliers:  suppliers,
	})
	if err != nil {
		return nil, "", fmt.Errorf("render comparison for %s: %w", rfq.Code, err)
	}
	return data, fmt.Sprintf("so-sanh-bao-gia-%s.xlsx", rfq.Code), nil
}

func pageFilter(page, pageSize int) shared.Filter {
	filter := shared.DefaultFilter()
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	return filter
}
