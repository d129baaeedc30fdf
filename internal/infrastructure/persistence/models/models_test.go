package models

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/approval"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/sourcing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRFQModel_KeepsSupplierOrder(t *testing.T) {
	first, second := uuid.New(), uuid.New()
	rfq := &sourcing.RFQ{Code: "RFQ00001", SupplierIDs: []uuid.UUID{second, first}}
	rfq.ID = uuid.New()

	m := RFQModelFromDomain(rfq)
	require.Len(t, m.Suppliers, 2)
	assert.Equal(t, 1, m.Suppliers[1].Position)

	back := m.ToDomain()
	assert.Equal(t, []uuid.UUID{second, first}, back.SupplierIDs)
}

func TestDeliveryModel_NilSlicesBecomeEmpty(t *testing.T) {
	d := &purchase.Delivery{ID: uuid.New(), POID: uuid.New(), DeliveryDate: time.Now()}

	m := DeliveryModelFromDomain(d)
	back := m.ToDomain()
	assert.NotNil(t, back.Photos)
	assert.Empty(t, back.Photos)
	assert.NotNil(t, back.ActualQuantity)

	d.ActualQuantity = []purchase.DeliveredQuantity{{MaterialID: uuid.New(), Quantity: decimal.NewFromInt(3)}}
	d.Photos = []string{"deliveries/a.jpg"}
	back = DeliveryModelFromDomain(d).ToDomain()
	assert.Equal(t, d.ActualQuantity, back.ActualQuantity)
	assert.Equal(t, d.Photos, back.Photos)
}

func TestChainFromModels(t *testing.T) {
	owner := uuid.New()
	chain, err := approval.Initialize(approval.OwnerPurchaseOrder, owner, 3)
	require.NoError(t, err)

	back := ChainFromModels(ApprovalModelsFromChain(chain))
	require.Len(t, back, 3)
	for i := range back {
		assert.Equal(t, i+1, back[i].Level)
		assert.Equal(t, owner, back[i].OwnerID)
		assert.Equal(t, approval.StatusPending, back[i].Status)
	}
}
