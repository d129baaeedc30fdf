package request

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/application/port"
	quotaapp "github.com/procurement/backend/internal/application/quota"
	"github.com/procurement/backend/internal/application/txn"
	"github.com/procurement/backend/internal/domain/approval"
	"github.com/procurement/backend/internal/domain/catalog"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/notification"
	"github.com/procurement/backend/internal/domain/quota"
	"github.com/procurement/backend/internal/domain/request"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// RequestService handles the material request workflow
type RequestService struct {
	txScope         txn.TransactionScope
	requestRepo     request.MaterialRequestRepository
	projectRepo     catalog.ProjectRepository
	materialRepo    catalog.MaterialRepository
	quotaService    *quotaapp.QuotaService
	notifier        port.Notifier
	policy          approval.LevelPolicy
	approvalLevels  int
	eventPublisher  shared.EventPublisher
	businessMetrics *telemetry.BusinessMetrics
	logger          *zap.Logger
	now             func() time.Time
}

// NewRequestService creates a new RequestService
func NewRequestService(
	txScope txn.TransactionScope,
	requestRepo request.MaterialRequestRepository,
	projectRepo catalog.ProjectRepository,
	materialRepo catalog.MaterialRepository,
	quotaService *quotaapp.QuotaService,
	notifier port.Notifier,
	logger *zap.Logger,
) *RequestService {
	return &RequestService{
		txScope:        txScope,
		requestRepo:    requestRepo,
		projectRepo:    projectRepo,
		materialRepo:   materialRepo,
		quotaService:   quotaService,
		notifier:       notifier,
		policy:         approval.RolePolicy,
		approvalLevels: approval.DefaultLevels,
		logger:         logger,
		now:            time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *RequestService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetBusinessMetrics sets the business metrics collector
func (s *RequestService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.businessMetrics = bm
}

// SetApprovalPolicy replaces the role-to-level policy
func (s *RequestService) SetApprovalPolicy(policy approval.LevelPolicy) {
	s.policy = policy
}

// SetApprovalLevels sets the number of levels seeded on new requests
func (s *RequestService) SetApprovalLevels(levels int) {
	if levels > 0 {
		s.approvalLevels = levels
	}
}

// Create submits a new material request with a pending approval chain.
// Quota violations are advisory: they are returned with the created request
// and never block it.
func (s *RequestService) Create(ctx context.Context, actor identity.Actor, req CreateRequestRequest) (*CreateRequestResult, error) {
	if err := actor.Authorize(identity.PermCreateRequest); err != nil {
		return nil, err
	}
	project, err := s.projectRepo.FindByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if !project.IsActive() {
		return nil, shared.NewInvalidStateError(fmt.Sprintf("Project %s is %s and does not accept requests", project.Code, project.Status))
	}

	items := make([]request.ItemInput, len(req.Items))
	materialIDs := make([]uuid.UUID, 0, len(req.Items))
	for i, item := range req.Items {
		items[i] = request.ItemInput{MaterialID: item.MaterialID, Quantity: item.Quantity, Note: item.Note}
		materialIDs = append(materialIDs, item.MaterialID)
	}
	if len(items) == 0 {
		return nil, shared.NewValidationError("Request needs at least one item")
	}
	materials, err := s.materialRepo.FindByIDs(ctx, materialIDs)
	if err != nil {
		return nil, err
	}
	for _, id := range materialIDs {
		if _, ok := materials[id]; !ok {
			return nil, shared.NewNotFoundError("Material", id)
		}
	}

	violations, err := s.quotaService.CheckViolations(ctx, req.ProjectID, items, nil)
	if err != nil {
		return nil, err
	}

	var created *request.MaterialRequest
	err = s.txScope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		code, err := repos.Codes().Next(ctx, port.PrefixMaterialRequest)
		if err != nil {
			return err
		}
		created, err = request.NewMaterialRequest(code, req.ProjectID, actor.UserID, req.Description, req.Priority, req.NeedByDate, items, s.approvalLevels)
		if err != nil {
			return err
		}
		return repos.RequestRepo().Create(ctx, created)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Material request created",
		zap.String("request_id", created.ID.String()),
		zap.String("code", created.Code),
		zap.Int("quota_violations", len(violations)))
	shared.PublishPending(ctx, s.eventPublisher, created)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordRequestCreated(ctx)
	}
	s.notifyNextApprover(ctx, created)

	if violations == nil {
		violations = []quota.Violation{}
	}
	return &CreateRequestResult{Request: ToRequestResponse(created), Violations: violations}, nil
}

// Approve records the actor's decision on the lowest pending level.
// When the chain becomes fully approved the request's quantities are
// committed to the project quotas in the same transaction.
func (s *RequestService) Approve(ctx context.Context, actor identity.Actor, requestID uuid.UUID, req ApproveRequest) (*ApproveResult, error) {
	in := approval.ActInput{
		Actor:     actor,
		Decision:  req.Decision,
		Comment:   req.Comment,
		Signature: req.Signature,
	}

	var (
		updated *request.MaterialRequest
		acted   approval.Approval
		outcome approval.Outcome
	)
	err := s.txScope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		r, err := repos.RequestRepo().FindByIDForUpdate(ctx, requestID)
		if err != nil {
			return err
		}
		a, o, err := r.Act(in, s.policy, s.now())
		if err != nil {
			return err
		}
		if err := repos.RequestRepo().SaveWithLock(ctx, r); err != nil {
			return err
		}
		if o == approval.OutcomeApproved {
			if err := quotaapp.CommitUsage(ctx, repos, r); err != nil {
				return err
			}
		}
		updated, acted, outcome = r, *a, o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Material request approval recorded",
		zap.String("request_id", updated.ID.String()),
		zap.Int("level", acted.Level),
		zap.String("decision", string(acted.Status)),
		zap.String("outcome", string(outcome)))
	shared.PublishPending(ctx, s.eventPublisher, updated)
	if s.businessMetrics != nil {
		s.businessMetrics.RecordApprovalDecision(ctx, string(approval.OwnerMaterialRequest), string(acted.Status))
	}

	link := "/requests/" + updated.ID.String()
	switch outcome {
	case approval.OutcomeApproved:
		s.notifier.Notify(ctx, updated.CreatedBy, "Yêu cầu đã được duyệt",
			fmt.Sprintf("Yêu cầu vật tư %s đã được duyệt đầy đủ", updated.Code), notification.TypeSuccess, link)
	case approval.OutcomeRejected:
		s.notifier.Notify(ctx, updated.CreatedBy, "Yêu cầu bị từ chối",
			fmt.Sprintf("Yêu cầu vật tư %s bị từ chối ở cấp %d: %s", updated.Code, acted.Level, acted.Comment), notification.TypeError, link)
	default:
		s.notifyNextApprover(ctx, updated)
	}

	return &ApproveResult{
		Request: ToRequestResponse(updated),
		Acted:   ToApprovalResponse(&acted),
		Outcome: outcome,
	}, nil
}

// Get retrieves a material request by ID
func (s *RequestService) Get(ctx context.Context, id uuid.UUID) (*RequestResponse, error) {
	r, err := s.requestRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	response := ToRequestResponse(r)
	return &response, nil
}

// List retrieves material requests with filtering and pagination
func (s *RequestService) List(ctx context.Context, filter RequestListFilter) ([]RequestResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	domainFilter.Search = filter.Search
	if filter.ProjectID != nil {
		domainFilter.Filters["project_id"] = *filter.ProjectID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = string(*filter.Status)
	}
	if filter.CreatedBy != nil {
		domainFilter.Filters["created_by"] = *filter.CreatedBy
	}

	requests, total, err := s.requestRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToRequestResponses(requests), total, nil
}

// notifyNextApprover tells the role owning the current level that a signature is due
func (s *RequestService) notifyNextApprover(ctx context.Context, r *request.MaterialRequest) {
	level := r.Approvals.CurrentLevel()
	role, ok := identity.ApproverRole(level)
	if !ok {
		return
	}
	s.notifier.NotifyRole(ctx, role, "Yêu cầu vật tư chờ duyệt",
		fmt.Sprintf("Yêu cầu %s đang chờ duyệt cấp %d", r.Code, level),
		notification.TypeInfo, "/requests/"+r.ID.String())
}
