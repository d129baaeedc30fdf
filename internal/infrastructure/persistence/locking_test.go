package persistence

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentRepository_FindByIDForUpdate_LocksRow(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormPaymentRepository(db.DB)
	id := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "payments" WHERE id = \$1 ORDER BY "payments"."id" LIMIT \$2 FOR UPDATE`).
		WithArgs(id, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "unc_number", "status", "version"}).
			AddRow(id, "UNC00003", "pending", 1))

	p, err := repo.FindByIDForUpdate(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "UNC00003", p.UNCNumber)
	assert.Equal(t, purchase.PaymentStatusPending, p.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepository_SaveWithLock_VersionMismatch(t *testing.T) {
	db, mock, mockDB := newMockDatabase(t)
	defer mockDB.Close()
	repo := NewGormPaymentRepository(db.DB)
	p := &purchase.Payment{BaseAggregateRoot: shared.NewBaseAggregateRoot(), Status: purchase.PaymentStatusPaid}

	mock.ExpectExec(`UPDATE "payments" SET .* WHERE id = \$\d+ AND version = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SaveWithLock(context.Background(), p)
	assert.True(t, shared.HasCode(err, shared.CodeConcurrentModification))
	assert.Equal(t, 1, p.Version)
	assert.NoError(t, mock.ExpectationsWereMet())
}
