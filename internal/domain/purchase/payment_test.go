package purchase

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckDocuments(t *testing.T) {
	t.Run("prepay needs nothing extra", func(t *testing.T) {
		c := CheckDocuments(TypePrepay, false, "")
		assert.True(t, c.CanProceed)
		assert.Empty(t, c.MissingRequired)
		assert.Len(t, c.Documents, 3)
	})

	t.Run("postpay lists every missing document", func(t *testing.T) {
		c := CheckDocuments(TypePostpay, false, " ")
		assert.False(t, c.CanProceed)
		assert.Equal(t, []string{DocDeliveryNote, DocVATInvoice}, c.MissingRequired)
		assert.Equal(t, "Thiếu: "+DocDeliveryNote+", "+DocVATInvoice, c.Message)
	})

	t.Run("postpay with delivery and invoice proceeds", func(t *testing.T) {
		c := CheckDocuments(TypePostpay, true, "HD-0001")
		assert.True(t, c.CanProceed)
	})
}

func TestNewPayment(t *testing.T) {
	t.Run("postpay without delivery reports missing documents", func(t *testing.T) {
		po := approvedPO(t)
		_, err := NewPayment(po, false, PaymentInput{UNCNumber: "UNC00001", Method: MethodBankTransfer, Type: TypePostpay})

		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, shared.CodeValidation, de.Code)
		assert.Equal(t, []string{DocDeliveryNote, DocVATInvoice}, de.Details["missing_documents"])
	})

	t.Run("defaults amount and notes", func(t *testing.T) {
		po := approvedPO(t)
		require.NoError(t, po.MarkDelivered(time.Now()))
		p, err := NewPayment(po, true, PaymentInput{
			UNCNumber:     "UNC00001",
			Method:        MethodBankTransfer,
			Type:          TypePostpay,
			VATInvoiceRef: "invoices/hd-0001.pdf",
		})
		require.NoError(t, err)
		assert.Equal(t, PaymentStatusPending, p.Status)
		assert.True(t, p.Amount.Equal(po.GrandTotal))
		assert.Equal(t, DefaultDeliveryNote, p.DeliveryNote)
		assert.Equal(t, DefaultAcceptanceNote, p.AcceptanceNote)
	})

	t.Run("rejects unknown method and pending PO", func(t *testing.T) {
		_, err := NewPayment(approvedPO(t), false, PaymentInput{Method: "crypto", Type: TypePrepay})
		assert.True(t, shared.HasCode(err, shared.CodeValidation))

		_, err = NewPayment(newTestPO(t), false, PaymentInput{Method: MethodCash, Type: TypePrepay, Amount: decimal.NewFromInt(1)})
		assert.ErrorIs(t, err, shared.ErrInvalidState)
	})
}

func TestPayment_Decisions(t *testing.T) {
	newPayment := func(t *testing.T) *Payment {
		p, err := NewPayment(approvedPO(t), false, PaymentInput{UNCNumber: "UNC00001", Method: MethodCash, Type: TypePrepay})
		require.NoError(t, err)
		return p
	}

	t.Run("approve marks paid", func(t *testing.T) {
		p := newPayment(t)
		approver := uuid.New()
		require.NoError(t, p.Approve(approver, "OK", time.Now()))
		assert.Equal(t, PaymentStatusPaid, p.Status)
		assert.Equal(t, approver, *p.ApprovedBy)
		assert.NotNil(t, p.PaidAt)
		assert.ErrorIs(t, p.Approve(approver, "", time.Now()), shared.ErrAlreadyProcessed)
	})

	t.Run("reject cancels", func(t *testing.T) {
		p := newPayment(t)
		require.NoError(t, p.Reject(uuid.New(), "Sai số tiền", time.Now()))
		assert.Equal(t, PaymentStatusCancelled, p.Status)
		assert.Nil(t, p.PaidAt)
		assert.ErrorIs(t, p.Reject(uuid.New(), "", time.Now()), shared.ErrAlreadyProcessed)
	})
}

func TestNewDelivery(t *testing.T) {
	po := approvedPO(t)
	now := time.Now()

	d, err := NewDelivery(po, DeliveryInput{
		ReceivedBy:     "Nguyễn Văn A",
		ActualQuantity: []DeliveredQuantity{{MaterialID: steelID, Quantity: decimal.NewFromInt(495)}},
		QualityStatus:  QualityPartial,
	}, now)
	require.NoError(t, err)
	assert.Equal(t, po.ID, d.POID)
	assert.Equal(t, now, d.DeliveryDate)

	d.AddPhoto("deliveries/po/photo1.jpg")
	assert.Len(t, d.Photos, 1)

	_, err = NewDelivery(po, DeliveryInput{ReceivedBy: "A", ActualQuantity: []DeliveredQuantity{{MaterialID: uuid.New(), Quantity: decimal.NewFromInt(1)}}}, now)
	assert.True(t, shared.HasCode(err, shared.CodeValidation))

	_, err = NewDelivery(po, DeliveryInput{ReceivedBy: "A", QualityStatus: "broken"}, now)
	assert.True(t, shared.HasCode(err, shared.CodeValidation))
}
