package mail

import (
	"html/template"

	"github.com/procurement/backend/internal/domain/catalog"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/sourcing"
)

type lineView struct {
	Name      string
	Unit      string
	Quantity  string
	UnitPrice string
	Amount    string
}

type rfqView struct {
	CompanyName string
	Code        string
	Title       string
	Description string
	Deadline    string
	Items       []lineView
}

type poView struct {
	CompanyName     string
	Code            string
	DeliveryAddress string
	DeliveryDate    string
	PaymentTerms    string
	Items           []lineView
	Total           string
	VAT             string
	GrandTotal      string
}

type delayView struct {
	Code         string
	DeliveryDate string
	Reason       string
}

func rfqInvitationView(supplier catalog.Supplier, rfq *sourcing.RFQ) rfqView {
	deadline := rfq.Deadline
	v := rfqView{
		CompanyName: supplier.CompanyName,
		Code:        rfq.Code,
		Title:       rfq.Title,
		Description: rfq.Description,
		Deadline:    formatDate(&deadline),
		Items:       make([]lineView, len(rfq.Items)),
	}
	for i, it := range rfq.Items {
		v.Items[i] = lineView{Name: it.MaterialName, Unit: it.Unit, Quantity: it.Quantity.String()}
	}
	return v
}

func poConfirmationView(supplier catalog.Supplier, po *purchase.PurchaseOrder) poView {
	v := poView{
		CompanyName:     supplier.CompanyName,
		Code:            po.Code,
		DeliveryAddress: po.DeliveryAddress,
		DeliveryDate:    formatDate(po.DeliveryDate),
		PaymentTerms:    po.PaymentTerms,
		Items:           make([]lineView, len(po.Items)),
		Total:           FormatVND(po.TotalAmount),
		VAT:             FormatVND(po.VATAmount),
		GrandTotal:      FormatVND(po.GrandTotal),
	}
	for i, it := range po.Items {
		v.Items[i] = lineView{
			Name:      it.MaterialName,
			Unit:      it.Unit,
			Quantity:  it.Quantity.String(),
			UnitPrice: FormatVND(it.UnitPrice),
			Amount:    FormatVND(it.Amount),
		}
	}
	return v
}

func delayAlertView(po *purchase.PurchaseOrder, reason string) delayView {
	return delayView{Code: po.Code, DeliveryDate: formatDate(po.DeliveryDate), Reason: reason}
}

var rfqInvitationTmpl = template.Must(template.New("rfq_invitation").Parse(`<html><body>
<p>Kính gửi {{.CompanyName}},</p>
<p>Chúng tôi trân trọng mời quý công ty báo giá cho yêu cầu <strong>{{.Code}}</strong>: {{.Title}}.</p>
{{if .Description}}<p>{{.Description}}</p>{{end}}
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Vật tư</th><th>ĐVT</th><th>Số lượng</th></tr>
{{range .Items}}<tr><td>{{.Name}}</td><td>{{.Unit}}</td><td>{{.Quantity}}</td></tr>
{{end}}</table>
<p>Hạn nộp báo giá: <strong>{{.Deadline}}</strong></p>
</body></html>`))

var poConfirmationTmpl = template.Must(template.New("po_confirmation").Parse(`<html><body>
<p>Kính gửi {{.CompanyName}},</p>
<p>Đơn đặt hàng <strong>{{.Code}}</strong> đã được phê duyệt.</p>
<table border="1" cellpadding="4" cellspacing="0">
<tr><th>Vật tư</th><th>ĐVT</th><th>Số lượng</th><th>Đơn giá</th><th>Thành tiền</th></tr>
{{range .Items}}<tr><td>{{.Name}}</td><td>{{.Unit}}</td><td>{{.Quantity}}</td><td>{{.UnitPrice}}</td><td>{{.Amount}}</td></tr>
{{end}}</table>
<p>Tổng tiền hàng: {{.Total}}<br>VAT: {{.VAT}}<br>Tổng thanh toán: <strong>{{.GrandTotal}}</strong></p>
<p>Địa chỉ giao hàng: {{.DeliveryAddress}}<br>Ngày giao: {{.DeliveryDate}}<br>Điều khoản thanh toán: {{.PaymentTerms}}</p>
</body></html>`))

var delayAlertTmpl = template.Must(template.New("delay_alert").Parse(`<html><body>
<p>Đơn đặt hàng <strong>{{.Code}}</strong> (ngày giao dự kiến {{.DeliveryDate}}) đang bị trễ.</p>
<p>Lý do: {{.Reason}}</p>
</body></html>`))
