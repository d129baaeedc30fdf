package sourcing

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/domain/stock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

var steelID = uuid.New()

func steelAnalysis(requested, onHand int64) stock.FulfillmentAnalysis {
	return stock.Analyze(uuid.New(), []stock.AnalysisInput{{
		MaterialID:   steelID,
		MaterialName: "Thép D10",
		Unit:         "kg",
		Requested:    d(requested),
		Stock:        d(onHand),
	}})
}

func newTestRFQ(t *testing.T) *RFQ {
	t.Helper()
	shortfall, err := ComputeNeedPurchase(steelAnalysis(2000, 1500))
	require.NoError(t, err)
	rfq, err := NewRFQ(NewRFQInput{
		Code:        "RFQ00001",
		RequestID:   uuid.New(),
		ProjectName: "Chung cư An Phú",
		CreatedBy:   uuid.New(),
		Deadline:    time.Now().Add(72 * time.Hour),
		SupplierIDs: []uuid.UUID{uuid.New(), uuid.New()},
		Shortfall:   shortfall,
	})
	require.NoError(t, err)
	return rfq
}

func TestComputeNeedPurchase(t *testing.T) {
	t.Run("keeps only the shortfall", func(t *testing.T) {
		shortfall, err := ComputeNeedPurchase(steelAnalysis(2000, 1500))
		require.NoError(t, err)
		require.Len(t, shortfall, 1)
		assert.True(t, shortfall[0].NeedToBuy.Equal(d(500)))
	})

	t.Run("fails when stock covers everything", func(t *testing.T) {
		_, err := ComputeNeedPurchase(steelAnalysis(1000, 1500))
		assert.ErrorIs(t, err, shared.ErrAllFulfillableFromStock)
	})
}

func TestValidateSuppliers(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	ids, err := ValidateSuppliers([]uuid.UUID{a, b}, 0)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{a, b}, ids)

	_, err = ValidateSuppliers([]uuid.UUID{a}, 2)
	assert.True(t, shared.HasCode(err, shared.CodeValidation))

	_, err = ValidateSuppliers([]uuid.UUID{a, a}, 0)
	assert.True(t, shared.HasCode(err, shared.CodeValidation), "duplicates count once")

	_, err = ValidateSuppliers([]uuid.UUID{a, b}, 3)
	assert.True(t, shared.HasCode(err, shared.CodeValidation), "configured minimum applies")
}

func TestNewRFQ(t *testing.T) {
	rfq := newTestRFQ(t)

	assert.Equal(t, RFQStatusSent, rfq.Status)
	assert.Equal(t, "Yêu cầu báo giá - Chung cư An Phú", rfq.Title)
	assert.Contains(t, rfq.Description, "Thép D10: Yêu cầu 2000, Tồn kho 1500 → Cần mua 500")
	require.Len(t, rfq.Items, 1)
	assert.True(t, rfq.Items[0].Quantity.Equal(d(500)), "RFQ item carries the shortfall, not the requested quantity")
	assert.Equal(t, rfq.ID, rfq.Items[0].RFQID)
	assert.Len(t, rfq.SupplierIDs, 2)
	assert.Equal(t, EventTypeRFQCreated, rfq.DomainEvents()[0].EventType())
}

func TestNewRFQ_ValidatesBeforeBuilding(t *testing.T) {
	shortfall, _ := ComputeNeedPurchase(steelAnalysis(2000, 1500))

	only := uuid.New()
	_, err := NewRFQ(NewRFQInput{Code: "RFQ00002", Deadline: time.Now(), SupplierIDs: []uuid.UUID{only}, Shortfall: shortfall})
	assert.True(t, shared.HasCode(err, shared.CodeValidation))
	assert.Contains(t, err.Error(), "At least 2 suppliers")

	_, err = NewRFQ(NewRFQInput{Code: "RFQ00002", Deadline: time.Now(), SupplierIDs: []uuid.UUID{only, only}, Shortfall: shortfall})
	assert.True(t, shared.HasCode(err, shared.CodeValidation), "a repeated supplier counts once")

	_, err = NewRFQ(NewRFQInput{Code: "RFQ00002", Deadline: time.Now(), SupplierIDs: []uuid.UUID{uuid.New(), uuid.New()}})
	assert.ErrorIs(t, err, shared.ErrAllFulfillableFromStock)

	_, err = NewRFQ(NewRFQInput{Code: "RFQ00002", SupplierIDs: []uuid.UUID{uuid.New(), uuid.New()}, Shortfall: shortfall})
	assert.True(t, shared.HasCode(err, shared.CodeValidation))
}

func submit(t *testing.T, rfq *RFQ, code string, unitPrice int64) *Quotation {
	t.Helper()
	q, err := rfq.Submit(SubmitInput{
		Code:             code,
		SupplierID:       uuid.New(),
		DeliveryTimeDays: 7,
		PaymentTerms:     "30 ngày",
		Lines:            []QuotationLine{{MaterialID: steelID, Quantity: d(500), UnitPrice: d(unitPrice)}},
	}, time.Now())
	require.NoError(t, err)
	return q
}

func TestRFQ_Submit(t *testing.T) {
	rfq := newTestRFQ(t)

	t.Run("computes amounts and total", func(t *testing.T) {
		q, err := rfq.Submit(SubmitInput{
			Code:       "BG00001",
			SupplierID: uuid.New(),
			Lines: []QuotationLine{
				{MaterialID: steelID, Quantity: d(300), UnitPrice: decimal.RequireFromString("15500.5")},
				{MaterialID: steelID, Quantity: d(200), UnitPrice: d(15000)},
			},
		}, time.Now())
		require.NoError(t, err)
		assert.Equal(t, QuotationStatusPending, q.Status)
		assert.Equal(t, "4650150", q.Items[0].Amount.String())
		assert.Equal(t, "7650150", q.TotalAmount.String())
		assert.Equal(t, "Thép D10", q.Items[0].MaterialName)
	})

	t.Run("rejects materials outside the RFQ", func(t *testing.T) {
		_, err := rfq.Submit(SubmitInput{
			Code:  "BG00002",
			Lines: []QuotationLine{{MaterialID: uuid.New(), Quantity: d(1), UnitPrice: d(1)}},
		}, time.Now())
		assert.True(t, shared.HasCode(err, shared.CodeValidation))
	})

	t.Run("rejects submissions on a closed RFQ", func(t *testing.T) {
		closed := newTestRFQ(t)
		require.NoError(t, closed.Close())
		_, err := closed.Submit(SubmitInput{
			Code:  "BG00003",
			Lines: []QuotationLine{{MaterialID: steelID, Quantity: d(1), UnitPrice: d(1)}},
		}, time.Now())
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestSelect(t *testing.T) {
	t.Run("selects one and rejects the siblings", func(t *testing.T) {
		rfq := newTestRFQ(t)
		bg1 := submit(t, rfq, "BG00001", 15000)
		bg2 := submit(t, rfq, "BG00002", 14800)
		bg3 := submit(t, rfq, "BG00003", 15200)

		selected, err := Select(rfq, []*Quotation{bg1, bg2, bg3}, bg1.ID)
		require.NoError(t, err)

		assert.Equal(t, bg1.ID, selected.ID)
		assert.Equal(t, QuotationStatusSelected, bg1.Status)
		assert.Equal(t, QuotationStatusRejected, bg2.Status)
		assert.Equal(t, QuotationStatusRejected, bg3.Status)
		assert.Equal(t, RFQStatusClosed, rfq.Status)

		count := 0
		for _, q := range []*Quotation{bg1, bg2, bg3} {
			if q.IsSelected() {
				count++
			}
		}
		assert.Equal(t, 1, count)
	})

	t.Run("refuses a second selection", func(t *testing.T) {
		rfq := newTestRFQ(t)
		bg1 := submit(t, rfq, "BG00001", 15000)
		bg2 := submit(t, rfq, "BG00002", 14800)
		_, err := Select(rfq, []*Quotation{bg1, bg2}, bg1.ID)
		require.NoError(t, err)

		_, err = Select(rfq, []*Quotation{bg1, bg2}, bg2.ID)
		assert.ErrorIs(t, err, shared.ErrInvalidState)
		assert.Equal(t, QuotationStatusSelected, bg1.Status)
		assert.Equal(t, QuotationStatusRejected, bg2.Status)
	})

	t.Run("unknown target leaves siblings untouched", func(t *testing.T) {
		rfq := newTestRFQ(t)
		bg1 := submit(t, rfq, "BG00001", 15000)

		_, err := Select(rfq, []*Quotation{bg1}, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Equal(t, QuotationStatusPending, bg1.Status)
		assert.True(t, rfq.IsOpen())
	})
}
