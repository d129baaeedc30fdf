package mail

import (
	"context"
	"errors"
	"mime"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/domain/catalog"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/domain/sourcing"
	"github.com/procurement/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

type fakeSender struct {
	sent []*gomail.Message
	err  error
}

func (f *fakeSender) DialAndSend(m ...*gomail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, m...)
	return nil
}

func newTestMailer() (*SMTPMailer, *fakeSender) {
	fs := &fakeSender{}
	return &SMTPMailer{sender: fs, from: "muahang@congty.vn", fromName: "Phòng Mua hàng", logger: zap.NewNop()}, fs
}

func testSupplier(email string) catalog.Supplier {
	return catalog.Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              "NCC01",
		CompanyName:       "Thép Hòa Phát",
		Email:             email,
	}
}

func testOrder() *purchase.PurchaseOrder {
	due := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	return &purchase.PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              "PO00001",
		DeliveryAddress:   "Công trình Thủ Đức",
		DeliveryDate:      &due,
		TotalAmount:       decimal.NewFromInt(10000000),
		VATAmount:         decimal.NewFromInt(1000000),
		GrandTotal:        decimal.NewFromInt(11000000),
		Items: []purchase.PurchaseOrderItem{{
			ID:           uuid.New(),
			MaterialName: "Thép D10",
			Unit:         "kg",
			Quantity:     decimal.NewFromInt(500),
			UnitPrice:    decimal.NewFromInt(20000),
			Amount:       decimal.NewFromInt(10000000),
		}},
	}
}

// decodedHeader undoes the RFC 2047 encoding gomail applies to non-ASCII headers
func decodedHeader(t *testing.T, values []string) string {
	t.Helper()
	require.Len(t, values, 1)
	out, err := new(mime.WordDecoder).DecodeHeader(values[0])
	require.NoError(t, err)
	return out
}

func TestFormatVND(t *testing.T) {
	assert.Equal(t, "11.000.000 ₫", FormatVND(decimal.NewFromInt(11000000)))
	assert.Equal(t, "1.235 ₫", FormatVND(decimal.RequireFromString("1234.5")))
	assert.Equal(t, "0 ₫", FormatVND(decimal.Zero))
}

func TestSMTPMailer_SendPOConfirmation(t *testing.T) {
	m, fs := newTestMailer()

	require.NoError(t, m.SendPOConfirmation(context.Background(), testSupplier("sales@hoaphat.vn"), testOrder()))
	require.Len(t, fs.sent, 1)
	msg := fs.sent[0]
	assert.Equal(t, []string{"sales@hoaphat.vn"}, msg.GetHeader("To"))
	assert.Equal(t, "[PO00001] Xác nhận đơn đặt hàng", decodedHeader(t, msg.GetHeader("Subject")))

	body, err := render(poConfirmationTmpl, poConfirmationView(testSupplier(""), testOrder()))
	require.NoError(t, err)
	assert.Contains(t, body, "11.000.000 ₫")
	assert.Contains(t, body, "10/03/2026")
	assert.Contains(t, body, "Thép D10")
}

func TestSMTPMailer_SendRFQInvitation(t *testing.T) {
	m, fs := newTestMailer()
	rfq := &sourcing.RFQ{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              "RFQ00003",
		Title:             "Báo giá vật tư cho YC00002",
		Deadline:          time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC),
		Items:             []sourcing.RFQItem{{MaterialName: "Xi măng PCB40", Unit: "bao", Quantity: decimal.NewFromInt(200)}},
	}

	err := m.SendRFQInvitation(context.Background(), testSupplier(""), rfq)
	assert.ErrorContains(t, err, "has no email")
	assert.Empty(t, fs.sent)

	require.NoError(t, m.SendRFQInvitation(context.Background(), testSupplier("baogia@ncc.vn"), rfq))
	require.Len(t, fs.sent, 1)

	body, err := render(rfqInvitationTmpl, rfqInvitationView(testSupplier(""), rfq))
	require.NoError(t, err)
	assert.Contains(t, body, "Xi măng PCB40")
	assert.Contains(t, body, "01/04/2026")
}

func TestSMTPMailer_SendDelayAlert(t *testing.T) {
	m, fs := newTestMailer()
	fs.err = errors.New("connection refused")

	err := m.SendDelayAlert(context.Background(), "mai@congtrinh.vn", testOrder(), "Kẹt xe")
	assert.ErrorContains(t, err, "connection refused")

	err = m.SendDelayAlert(context.Background(), "", testOrder(), "Kẹt xe")
	assert.ErrorContains(t, err, "no recipient")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	fs.err = nil
	assert.ErrorIs(t, m.SendDelayAlert(ctx, "mai@congtrinh.vn", testOrder(), "Kẹt xe"), context.Canceled)
	assert.Empty(t, fs.sent)
}

func TestNew_WithoutHostIsNop(t *testing.T) {
	mailer := New(config.MailConfig{}, zap.NewNop())
	_, ok := mailer.(NopMailer)
	require.True(t, ok)
	assert.NoError(t, mailer.SendDelayAlert(context.Background(), "x@y.vn", testOrder(), "r"))

	smtp := New(config.MailConfig{Host: "smtp.local", Port: 587, From: "a@b.vn"}, zap.NewNop())
	_, ok = smtp.(*SMTPMailer)
	assert.True(t, ok)
}
