package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/approval"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// notFound maps gorm.ErrRecordNotFound to a typed not-found error
func notFound(err error, entity string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return shared.NewNotFoundError(entity, id)
	}
	return err
}

// translate maps driver errors the services care about to domain errors
func translate(err error, entity string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return shared.NewAlreadyExistsError(entity + " already exists")
	}
	return err
}

// forUpdate locks the selected rows until the transaction ends.
// SQLite ignores the clause.
func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

// applyEquals adds "column = ?" for each filter key present
func applyEquals(query *gorm.DB, filter shared.Filter, columns ...string) *gorm.DB {
	for _, col := range columns {
		if v, ok := filterValue(filter, col); ok {
			query = query.Where(col+" = ?", v)
		}
	}
	return query
}

// updateWithVersion runs an optimistic update: it matches the aggregate's
// current version and bumps it. A stale version yields ConcurrentModification.
func updateWithVersion(ctx context.Context, db *gorm.DB, model any, agg *shared.BaseAggregateRoot, fields map[string]any) error {
	fields["version"] = agg.Version + 1
	fields["updated_at"] = agg.UpdatedAt
	result := db.WithContext(ctx).
		Model(model).
		Where("id = ? AND version = ?", agg.ID, agg.Version).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrentModification.WithDetail("id", agg.ID.String())
	}
	agg.Version++
	return nil
}

func loadApprovals(ctx context.Context, db *gorm.DB, ownerType approval.OwnerType, ownerID uuid.UUID) (approval.Chain, error) {
	var rows []models.ApprovalModel
	if err := db.WithContext(ctx).
		Where("owner_type = ? AND owner_id = ?", ownerType, ownerID).
		Order("level ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return models.ChainFromModels(rows), nil
}

func loadApprovalsFor(ctx context.Context, db *gorm.DB, ownerType approval.OwnerType, ownerIDs []uuid.UUID) (map[uuid.UUID]approval.Chain, error) {
	out := make(map[uuid.UUID]approval.Chain, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return out, nil
	}
	var rows []models.ApprovalModel
	if err := db.WithContext(ctx).
		Where("owner_type = ? AND owner_id IN ?", ownerType, ownerIDs).
		Order("level ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		out[rows[i].OwnerID] = append(out[rows[i].OwnerID], rows[i].ToDomain())
	}
	return out, nil
}

func insertApprovals(ctx context.Context, db *gorm.DB, chain approval.Chain) error {
	if len(chain) == 0 {
		return nil
	}
	rows := models.ApprovalModelsFromChain(chain)
	return db.WithContext(ctx).Create(&rows).Error
}

// saveApprovals writes the decision fields of every level
func saveApprovals(ctx context.Context, db *gorm.DB, chain approval.Chain) error {
	for _, a := range chain {
		if err := db.WithContext(ctx).
			Model(&models.ApprovalModel{}).
			Where("id = ?", a.ID).
			Updates(map[string]any{
				"status":      a.Status,
				"approver_id": a.ApproverID,
				"comment":     a.Comment,
				"signature":   a.Signature,
				"acted_at":    a.ActedAt,
				"updated_at":  a.UpdatedAt,
			}).Error; err != nil {
			return err
		}
	}
	return nil
}
