// Package mail sends workflow emails over SMTP.
package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/procurement/backend/internal/application/port"
	"github.com/procurement/backend/internal/domain/catalog"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/sourcing"
	"github.com/procurement/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/gomail.v2"
)

var (
	_ port.Mailer = (*SMTPMailer)(nil)
	_ port.Mailer = NopMailer{}
)

// sender is the part of gomail.Dialer the mailer needs
type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer renders HTML emails and sends them with gomail
type SMTPMailer struct {
	sender   sender
	from     string
	fromName string
	logger   *zap.Logger
}

// NewSMTPMailer creates a mailer from the [mail] section
func NewSMTPMailer(cfg config.MailConfig, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		sender:   gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:     cfg.From,
		fromName: cfg.FromName,
		logger:   logger,
	}
}

// New returns an SMTP mailer, or a NopMailer when no host is configured
func New(cfg config.MailConfig, logger *zap.Logger) port.Mailer {
	if cfg.Host == "" {
		logger.Info("Mail host not configured, emails are disabled")
		return NopMailer{logger: logger}
	}
	return NewSMTPMailer(cfg, logger)
}

// SendRFQInvitation invites one supplier to quote
func (m *SMTPMailer) SendRFQInvitation(ctx context.Context, supplier catalog.Supplier, rfq *sourcing.RFQ) error {
	if !supplier.HasEmail() {
		return fmt.Errorf("supplier %s has no email", supplier.Code)
	}
	body, err := render(rfqInvitationTmpl, rfqInvitationView(supplier, rfq))
	if err != nil {
		return err
	}
	return m.send(ctx, supplier.Email, fmt.Sprintf("[%s] Mời báo giá: %s", rfq.Code, rfq.Title), body)
}

// SendPOConfirmation sends an approved PO to its supplier
func (m *SMTPMailer) SendPOConfirmation(ctx context.Context, supplier catalog.Supplier, po *purchase.PurchaseOrder) error {
	if !supplier.HasEmail() {
		return fmt.Errorf("supplier %s has no email", supplier.Code)
	}
	body, err := render(poConfirmationTmpl, poConfirmationView(supplier, po))
	if err != nil {
		return err
	}
	return m.send(ctx, supplier.Email, fmt.Sprintf("[%s] Xác nhận đơn đặt hàng", po.Code), body)
}

// SendDelayAlert warns a requester that their PO is late
func (m *SMTPMailer) SendDelayAlert(ctx context.Context, to string, po *purchase.PurchaseOrder, reason string) error {
	if to == "" {
		return fmt.Errorf("delay alert for %s has no recipient", po.Code)
	}
	body, err := render(delayAlertTmpl, delayAlertView(po, reason))
	if err != nil {
		return err
	}
	return m.send(ctx, to, fmt.Sprintf("[%s] Cảnh báo giao hàng trễ", po.Code), body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.from, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if err := m.sender.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", to, err)
	}
	m.logger.Debug("Email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// NopMailer drops every email
type NopMailer struct {
	logger *zap.Logger
}

func (n NopMailer) SendRFQInvitation(_ context.Context, supplier catalog.Supplier, rfq *sourcing.RFQ) error {
	n.skip("rfq_invitation", supplier.Email, rfq.Code)
	return nil
}

func (n NopMailer) SendPOConfirmation(_ context.Context, supplier catalog.Supplier, po *purchase.PurchaseOrder) error {
	n.skip("po_confirmation", supplier.Email, po.Code)
	return nil
}

func (n NopMailer) SendDelayAlert(_ context.Context, to string, po *purchase.PurchaseOrder, _ string) error {
	n.skip("delay_alert", to, po.Code)
	return nil
}

func (n NopMailer) skip(kind, to, code string) {
	if n.logger == nil {
		return
	}
	n.logger.Debug("Email skipped",
		zap.String("kind", kind),
		zap.String("to", to),
		zap.String("code", code))
}

var vndPrinter = message.NewPrinter(language.Vietnamese)

// FormatVND renders an amount as whole dong with Vietnamese digit grouping
func FormatVND(amount decimal.Decimal) string {
	return vndPrinter.Sprintf("%d ₫", amount.Round(0).IntPart())
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02/01/2006")
}

func render(tmpl *template.Template, data any) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render %s: %w", tmpl.Name(), err)
	}
	return buf.String(), nil
}
