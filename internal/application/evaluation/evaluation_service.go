package evaluation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/application/txn"
	"github.com/procurement/backend/internal/domain/catalog"
	"github.com/procurement/backend/internal/domain/evaluation"
	"github.com/procurement/backend/internal/domain/identity"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EvaluationService rates suppliers after their goods arrive
type EvaluationService struct {
	txScope        txn.TransactionScope
	evaluationRepo evaluation.EvaluationRepository
	supplierRepo   catalog.SupplierRepository
	logger         *zap.Logger
}

// NewEvaluationService creates a new EvaluationService
func NewEvaluationService(
	txScope txn.TransactionScope,
	evaluationRepo evaluation.EvaluationRepository,
	supplierRepo catalog.SupplierRepository,
	logger *zap.Logger,
) *EvaluationService {
	return &EvaluationService{
		txScope:        txScope,
		evaluationRepo: evaluationRepo,
		supplierRepo:   supplierRepo,
		logger:         logger,
	}
}

// Evaluate records the actor's rating of the PO's supplier and recomputes
// the supplier rating as the mean of all evaluation averages
func (s *EvaluationService) Evaluate(ctx context.Context, actor identity.Actor, in EvaluateSupplierRequest) (*EvaluateResult, error) {
	if err := actor.Authorize(identity.PermEvaluate); err != nil {
		return nil, err
	}
	scores := evaluation.Scores{
		Price:    in.PriceScore,
		Quality:  in.QualityScore,
		Delivery: in.DeliveryScore,
		Support:  in.SupportScore,
	}

	var (
		eval     *evaluation.SupplierEvaluation
		supplier *catalog.Supplier
	)
	err := s.txScope.Execute(ctx, func(repos txn.TransactionalRepositories) error {
		po, err := repos.PurchaseOrderRepo().FindByID(ctx, in.POID)
		if err != nil {
			return err
		}
		if po.Status != purchase.StatusDelivered && po.Status != purchase.StatusCompleted {
			return shared.NewInvalidStateError(fmt.Sprintf("PO %s is %s, suppliers are rated after delivery", po.Code, po.Status)).
				WithDetail("status", string(po.Status))
		}
		if po.SupplierID != in.SupplierID {
			return shared.NewValidationError("Supplier did not fulfil this purchase order").
				WithDetail("supplier_id", in.SupplierID.String())
		}
		exists, err := repos.EvaluationRepo().ExistsForEvaluator(ctx, po.ID, actor.UserID)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewAlreadyExistsError(fmt.Sprintf("PO %s was already evaluated by this user", po.Code))
		}

		eval, err = evaluation.NewSupplierEvaluation(in.SupplierID, po.ID, actor.UserID, scores, in.Comment)
		if err != nil {
			return err
		}
		if err := repos.EvaluationRepo().Create(ctx, eval); err != nil {
			return err
		}

		all, err := repos.EvaluationRepo().FindBySupplier(ctx, in.SupplierID)
		if err != nil {
			return err
		}
		supplier, err = repos.SupplierRepo().FindByID(ctx, in.SupplierID)
		if err != nil {
			return err
		}
		if err := supplier.UpdateRating(evaluation.Rating(all)); err != nil {
			return err
		}
		return repos.SupplierRepo().Save(ctx, supplier)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Supplier evaluated",
		zap.String("supplier_id", supplier.ID.String()),
		zap.String("po_id", eval.POID.String()),
		zap.String("average", eval.AverageScore.String()),
		zap.String("rating", supplier.Rating.String()))

	return &EvaluateResult{Evaluation: ToEvaluationResponse(eval), SupplierRating: supplier.Rating}, nil
}

// ListBySupplier returns a supplier's evaluations newest first
func (s *EvaluationService) ListBySupplier(ctx context.Context, supplierID uuid.UUID) (*SupplierEvaluationsResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	evals, err := s.evaluationRepo.FindBySupplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	out := make([]EvaluationResponse, len(evals))
	for i := range evals {
		out[i] = ToEvaluationResponse(&evals[i])
	}
	return &SupplierEvaluationsResponse{SupplierID: supplier.ID, Rating: supplier.Rating, Evaluations: out}, nil
}
