package stock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/application/port"
	"github.com/procurement/backend/internal/application/txn"
	"github.com/procurement/backend/internal/domain/catalog"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/notification"
	"github.com/procurement/backend/internal/domain/request"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/domain/stock"
	"github.com/procurement/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// StockService handles the stock ledger and the issue/receipt hand-off
type StockService struct {
	txScope         txn.TransactionScope
	requestRepo     request.MaterialRequestRepository
	materialRepo    catalog.MaterialRepository
	issueRepo       stock.StockIssueRepository
	notifier        port.Notifier
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
	now             func() time.Time
}

// NewStockService creates a new StockService
func NewStockService(
	txScope txn.TransactionScope,
	requestRepo request.MaterialRequestRepository,
	materialRepo catalog.MaterialRepository,
	issueRepo stock.StockIssueRepository,
	notifier port.Notifier,
	logger *zap.Logger,
) *StockService {
	return &StockService{
		txScope:      txScope,
		requestRepo:  requestRepo,
		materialRepo: materialRepo,
		issueRepo:    issueRepo,
		notifier:     notifier,
		logger:       logger,
		now:          time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *StockService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *StockService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// AnalyzeRequest joins a request's items with current material stock and
// splits them into the part on hand and the part to buy. It never writes.
func AnalyzeRequest(ctx context.Context, materials catalog.MaterialRepository, req *request.MaterialRequest) (stock.FulfillmentAnalysis, error) {
	byID, err := materials.FindByIDs(ctx, req.MaterialIDs())
	if err != nil {
		return stock.FulfillmentAnalysis{}, err
	}
	lines := make([]stock.AnalysisInput, 0, len(req.Items))
	for _, item := range req.Items {
		m, ok := byID[item.MaterialID]
		if !ok {
			return stock.FulfillmentAnalysis{}, shared.NewNotFoundError("Material", item.MaterialID)
		}
		lines = append(lines, stock.AnalysisInput{
			MaterialID:   m.ID,
			MaterialName: m.Name,
			MaterialCode: m.Code,
			Unit:         m.Unit,
			Requested:    item.Quantity,
			Stock:        m.Stock,
		})
	}
	return stock.Analyze(req.ID, lines), nil
}

// Analyze reports how much of a request can be served from stock
func (s *StockService) Analyze(ctx context.Context, requestID uuid.UUID) (*stock.FulfillmentAnalysis, error) {
	req, err := s.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	analysis, err := AnalyzeRequest(ctx, s.materialRepo, req)
	if err != nil {
		return nil, err
	}
	return &analysis, nil
}

// Issue creates the pending stock issue of an approved request and moves the
// request to processing. Material stock is not touched until receipt.
func (s *StockService) Issue(ctx context.Context, actor identity.Actor, in IssueStockRequest) (*StockIssueResponse, error) {
	if err := actor.Authorize(identity.PermIssueStock); err != nil {
		return nil, err
	}

	var (
		issue *stock.StockIssue
		req   *request.MaterialRequest
	)
	err := s.txScope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		var err error
		req, err = repos.RequestRepo().FindByIDForUpdate(ctx, in.RequestID)
		if err != nil {
			return err
		}
		if req.Status != request.StatusApproved {
			return shared.NewInvalidStateError(fmt.Sprintf("Request %s is %s, stock can only be issued for approved requests", req.Code, req.Status)).
				WithDetail("status", string(req.Status))
		}
		exists, err := repos.StockIssueRepo().ExistsForRequest(ctx, req.ID)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewAlreadyExistsError(fmt.Sprintf("Request %s already has a stock issue", req.Code))
		}

		lines, err := s.issueLines(ctx, repos, req, in.Items)
		if err != nil {
			return err
		}
		items := make([]stock.StockIssueItem, 0, len(lines))
		for _, line := range lines {
			m, err := repos.MaterialRepo().FindByIDForUpdate(ctx, line.MaterialID)
			if err != nil {
				return err
			}
			if line.Quantity.GreaterThan(m.Stock) {
				return shared.NewInsufficientStockError(m.ID, m.Name, m.Stock, line.Quantity)
			}
			items = append(items, stock.StockIssueItem{
				MaterialID:   m.ID,
				MaterialName: m.Name,
				Unit:         m.Unit,
				Quantity:     line.Quantity,
			})
		}

		code, err := repos.Codes().Next(ctx, port.PrefixStockIssue)
		if err != nil {
			return err
		}
		issue, err = stock.NewStockIssue(code, req.ID, actor.UserID, in.Note, items)
		if err != nil {
			return err
		}
		if err := repos.StockIssueRepo().Create(ctx, issue); err != nil {
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

	s.logger.Info("Stock issued",
		zap.String("issue_id", issue.ID.String()),
		zap.String("code", issue.Code),
		zap.String("request_id", req.ID.String()))
	shared.PublishPending(ctx, s.eventPublisher, issue)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordStockIssued(ctx)
	}
	s.notifier.Notify(ctx, req.CreatedBy, "Vật tư đã xuất kho",
		fmt.Sprintf("Phiếu xuất kho %s cho yêu cầu %s đã được tạo, vui lòng xác nhận khi nhận hàng", issue.Code, req.Code),
		notification.TypeInfo, "/stock/"+issue.ID.String())

	response := ToStockIssueResponse(issue)
	return &response, nil
}

// issueLines merges the submitted lines per material. With no lines it
// falls back to every quantity the analysis can serve from stock.
func (s *StockService) issueLines(ctx context.Context, repos txn.TransactionalRepositories, req *request.MaterialRequest, inputs []IssueStockItemInput) ([]stock.IssueLine, error) {
	if len(inputs) == 0 {
		analysis, err := AnalyzeRequest(ctx, repos.MaterialRepo(), req)
		if err != nil {
			return nil, err
		}
		lines := make([]stock.IssueLine, 0, len(analysis.Items))
		for _, item := range analysis.Items {
			if item.FulfillQuantity.IsPositive() {
				lines = append(lines, stock.IssueLine{MaterialID: item.MaterialID, Quantity: item.FulfillQuantity})
			}
		}
		if len(lines) == 0 {
			return nil, shared.NewValidationError(fmt.Sprintf("Nothing in stock for request %s", req.Code))
		}
		return lines, nil
	}

	requested := make(map[uuid.UUID]struct{}, len(req.Items))
	for _, item := range req.Items {
		requested[item.MaterialID] = struct{}{}
	}
	totals := make(map[uuid.UUID]decimal.Decimal, len(inputs))
	lines := make([]stock.IssueLine, 0, len(inputs))
	for i, in := range inputs {
		if _, ok := requested[in.MaterialID]; !ok {
			return nil, shared.NewValidationError(fmt.Sprintf("Item %d: material is not part of request %s", i+1, req.Code)).
				WithDetail("material_id", in.MaterialID.String())
		}
		if !in.Quantity.IsPositive() {
			return nil, shared.NewValidationError(fmt.Sprintf("Item %d: issue quantity must be positive", i+1))
		}
		if _, seen := totals[in.MaterialID]; !seen {
			lines = append(lines, stock.IssueLine{MaterialID: in.MaterialID})
		}
		totals[in.MaterialID] = totals[in.MaterialID].Add(in.Quantity)
	}
	for i := range lines {
		lines[i].Quantity = totals[lines[i].MaterialID]
	}
	return lines, nil
}

// ConfirmReceipt completes a pending issue, decrements material stock by
// every issued quantity and completes the parent request. This is the only
// path that consumes stock.
func (s *StockService) ConfirmReceipt(ctx context.Context, actor identity.Actor, issueID uuid.UUID, in ReceiveStockRequest) (*StockIssueResponse, error) {
	if err := actor.Authorize(identity.PermReceiveStock); err != nil {
		return nil, err
	}

	var (
		issue *stock.StockIssue
		req   *request.MaterialRequest
	)
	err := s.txScope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		var err error
		issue, err = repos.StockIssueRepo().FindByIDForUpdate(ctx, issueID)
		if err != nil {
			return err
		}
		if err := issue.ConfirmReceipt(actor.UserID, in.Note, s.now()); err != nil {
			return err
		}
		if err := repos.StockIssueRepo().SaveWithLock(ctx, issue); err != nil {
			return err
		}
		for _, item := range issue.Items {
			if err := repos.MaterialRepo().AdjustStock(ctx, item.MaterialID, item.Quantity.Neg()); err != nil {
				return err
			}
		}

		req, err = repos.RequestRepo().FindByIDForUpdate(ctx, issue.RequestID)
		if err != nil {
			return err
		}
		if err := req.Complete(); err != nil {
			return err
		}
		return repos.RequestRepo().SaveWithLock(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Stock receipt confirmed",
		zap.String("issue_id", issue.ID.String()),
		zap.String("request_id", issue.RequestID.String()))
	shared.PublishPending(ctx, s.eventPublisher, issue, req)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordStockReceived(ctx)
	}
	s.notifier.Notify(ctx, issue.IssuedBy, "Đã nhận hàng xuất kho",
		fmt.Sprintf("Phiếu xuất kho %s đã được xác nhận nhận hàng", issue.Code),
		notification.TypeSuccess, "/stock/"+issue.ID.String())

	response := ToStockIssueResponse(issue)
	return &response, nil
}

// GetByRequest returns the stock issue of a request
func (s *StockService) GetByRequest(ctx context.Context, requestID uuid.UUID) (*StockIssueResponse, error) {
	issue, err := s.issueRepo.FindByRequestID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	response := ToStockIssueResponse(issue)
	return &response, nil
}

// List retrieves stock issues with filtering and pagination
func (s *StockService) List(ctx context.Context, filter StockIssueListFilter) ([]StockIssueResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.RequestID != nil {
		domainFilter.Filters["request_id"] = *filter.RequestID
	}
	issues, total, err := s.issueRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToStockIssueResponses(issues), total, nil
}

// Restock is the upward stock path for goods received from suppliers or
// counted in; it is a master-data operation reserved to admins
func (s *StockService) Restock(ctx context.Context, actor identity.Actor, materialID uuid.UUID, in RestockRequest) (*MaterialStockResponse, error) {
	if err := actor.Authorize(identity.PermRestock); err != nil {
		return nil, err
	}
	if !in.Quantity.IsPositive() {
		return nil, shared.NewValidationError("Restock quantity must be positive")
	}
	if _, err := s.materialRepo.FindByID(ctx, materialID); err != nil {
		return nil, err
	}
	if err := s.materialRepo.AdjustStock(ctx, materialID, in.Quantity); err != nil {
		return nil, err
	}
	m, err := s.materialRepo.FindByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Material restocked",
		zap.String("material_id", m.ID.String()),
		zap.String("quantity", in.Quantity.String()),
		zap.String("stock", m.Stock.String()))
	response := ToMaterialStockResponse(m)
	return &response, nil
}

// ListMaterials returns material stock positions
func (s *StockService) ListMaterials(ctx context.Context, page, pageSize int, search string) ([]MaterialStockResponse, int64, error) {
	filter := shared.DefaultFilter()
	filter.OrderBy = "code"
	filter.OrderDir = "asc"
	filter.Search = search
	if page > 0 {
		filter.Page = page
	}
	if pageSize > 0 {
		filter.PageSize = pageSize
	}
	materials, total, err := s.materialRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]MaterialStockResponse, len(materials))
	for i := range materials {
		out[i] = ToMaterialStockResponse(&materials[i])
	}
	return out, total, nil
}
