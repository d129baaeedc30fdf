package quota

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/application/txn"
	"github.com/procurement/backend/internal/domain/catalog"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/quota"
	"github.com/procurement/backend/internal/domain/request"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuotaService owns the per-project material caps
type QuotaService struct {
	quotaRepo    quota.MaterialQuotaRepository
	materialRepo catalog.MaterialRepository
	projectRepo  catalog.ProjectRepository
	requestRepo  request.MaterialRequestRepository
	logger       *zap.Logger
}

// NewQuotaService creates a new QuotaService
func NewQuotaService(
	quotaRepo quota.MaterialQuotaRepository,
	materialRepo catalog.MaterialRepository,
	projectRepo catalog.ProjectRepository,
	requestRepo request.MaterialRequestRepository,
	logger *zap.Logger,
) *QuotaService {
	return &QuotaService{
		quotaRepo:    quotaRepo,
		materialRepo: materialRepo,
		projectRepo:  projectRepo,
		requestRepo:  requestRepo,
		logger:       logger,
	}
}

// CheckViolations is advisory. For every item with a quota it adds the
// quota's used quantity, the quantity held by the project's other pending
// requests and the new quantity, and reports the items whose total exceeds
// the max. excludeID keeps a request from counting against itself.
//
// Approved requests reach a quota only through CommitUsage, so a quota
// created after a request was approved never counts that request, while
// completed requests keep counting through the used quantity.
func (s *QuotaService) CheckViolations(ctx context.Context, projectID uuid.UUID, items []request.ItemInput, excludeID *uuid.UUID) ([]quota.Violation, error) {
	requested := make(map[uuid.UUID]decimal.Decimal, len(items))
	order := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		if _, ok := requested[item.MaterialID]; !ok {
			order = append(order, item.MaterialID)
		}
		requested[item.MaterialID] = requested[item.MaterialID].Add(item.Quantity)
	}

	violations := make([]quota.Violation, 0)
	for _, materialID := range order {
		q, err := s.quotaRepo.FindByProjectAndMaterial(ctx, projectID, materialID)
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		uncommitted, err := s.requestRepo.SumQuantityByStatus(ctx, projectID, materialID, request.UncommittedStatuses, excludeID)
		if err != nil {
			return nil, err
		}
		name, unit := "", ""
		if m, err := s.materialRepo.FindByID(ctx, materialID); err == nil {
			name, unit = m.Name, m.Unit
		}
		if v := quota.Check(q, name, unit, requested[materialID], uncommitted); v != nil {
			violations = append(violations, *v)
		}
	}
	return violations, nil
}

// CommitUsage adds the quantities of a fully approved request to the used
// quantity of every matching quota. It runs inside the approving
// transaction and has no reverse path.
func CommitUsage(ctx context.Context, repos txn.TransactionalRepositories, req *request.MaterialRequest) error {
	if req.Status != request.StatusApproved {
		return shared.NewInvalidStateError("Quota usage is committed only for approved requests").
			WithDetail("status", string(req.Status))
	}
	for _, item := range req.Items {
		q, err := repos.QuotaRepo().FindByProjectAndMaterial(ctx, req.ProjectID, item.MaterialID)
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return err
		}
		if err := repos.QuotaRepo().IncrementUsed(ctx, q.ID, item.Quantity); err != nil {
			return err
		}
	}
	return nil
}

// Upsert creates the quota or replaces its max quantity; used is untouched
func (s *QuotaService) Upsert(ctx context.Context, actor identity.Actor, req UpsertQuotaRequest) (*QuotaResponse, error) {
	if err := actor.Authorize(identity.PermManageQuota); err != nil {
		return nil, err
	}
	if _, err := s.projectRepo.FindByID(ctx, req.ProjectID); err != nil {
		return nil, err
	}
	if _, err := s.materialRepo.FindByID(ctx, req.MaterialID); err != nil {
		return nil, err
	}

	q, err := s.quotaRepo.FindByProjectAndMaterial(ctx, req.ProjectID, req.MaterialID)
	switch {
	case errors.Is(err, shared.ErrNotFound):
		q, err = quota.NewMaterialQuota(req.ProjectID, req.MaterialID, req.MaxQuantity, actor.UserID)
		if err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	default:
		if err := q.SetMaxQuantity(req.MaxQuantity); err != nil {
			return nil, err
		}
	}

	if err := s.quotaRepo.Save(ctx, q); err != nil {
		return nil, err
	}
	s.logger.Info("Quota saved",
		zap.String("project_id", q.ProjectID.String()),
		zap.String("material_id", q.MaterialID.String()),
		zap.String("max_quantity", q.MaxQuantity.String()))

	response := ToQuotaResponse(q)
	return &response, nil
}

// List retrieves quotas with filtering and pagination
func (s *QuotaService) List(ctx context.Context, filter QuotaListFilter) ([]QuotaResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.ProjectID != nil {
		domainFilter.Filters["project_id"] = *filter.ProjectID
	}
	if filter.MaterialID != nil {
		domainFilter.Filters["material_id"] = *filter.MaterialID
	}
	quotas, total, err := s.quotaRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToQuotaResponses(quotas), total, nil
}

// ListByProject returns every quota of a project
func (s *QuotaService) ListByProject(ctx context.Context, projectID uuid.UUID) ([]QuotaResponse, error) {
	quotas, err := s.quotaRepo.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return ToQuotaResponses(quotas), nil
}

// Delete removes a quota
func (s *QuotaService) Delete(ctx context.Context, actor identity.Actor, id uuid.UUID) error {
	if err := actor.Authorize(identity.PermManageQuota); err != nil {
		return err
	}
	if _, err := s.quotaRepo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.quotaRepo.Delete(ctx, id)
}
