// Package export renders workflow data as Excel workbooks.
package export

import (
	"bytes"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/procurement/backend/internal/application/port"
	"github.com/procurement/backend/internal/domain/catalog"
	"github.com/procurement/backend/internal/domain/purchase"
	"github.com/procurement/backend/internal/domain/sourcing"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	comparisonSheet = "So sanh bao gia"
	ordersSheet     = "Don dat hang"
	dateLayout      = "02/01/2006"
	moneyFormat     = "#,##0"
)

var _ port.Exporter = (*ExcelExporter)(nil)

// ExcelExporter implements port.Exporter with excelize
type ExcelExporter struct{}

// NewExcelExporter creates a new ExcelExporter
func NewExcelExporter() *ExcelExporter {
	return &ExcelExporter{}
}

// QuotationComparison writes one row per RFQ line and a price column per
// quotation, lowest price highlighted, with totals and terms at the bottom
func (e *ExcelExporter) QuotationComparison(data port.QuotationComparison) ([]byte, error) {
	if data.RFQ == nil {
		return nil, fmt.Errorf("quotation comparison needs an RFQ")
	}
	wb, err := newWorkbook(comparisonSheet)
	if err != nil {
		return nil, err
	}
	defer wb.f.Close()

	quotes := append([]sourcing.Quotation(nil), data.Quotations...)
	sort.SliceStable(quotes, func(i, j int) bool {
		return quotes[i].TotalAmount.LessThan(quotes[j].TotalAmount)
	})

	title := fmt.Sprintf("%s - %s", data.RFQ.Code, data.RFQ.Title)
	if err := wb.set("A1", title); err != nil {
		return nil, err
	}

	header := []any{"STT", "Vật tư", "ĐVT", "Số lượng"}
	for _, q := range quotes {
		header = append(header, supplierName(data.Suppliers, q.SupplierID)+" ("+q.Code+")")
	}
	if err := wb.header(3, header); err != nil {
		return nil, err
	}

	row := 4
	for i, item := range data.RFQ.Items {
		values := []any{i + 1, item.MaterialName, item.Unit, item.Quantity.InexactFloat64()}
		prices := make([]decimal.Decimal, len(quotes))
		found := make([]bool, len(quotes))
		for qi, q := range quotes {
			for _, line := range q.Items {
				if line.MaterialID == item.MaterialID {
					prices[qi], found[qi] = line.UnitPrice, true
					break
				}
			}
			if found[qi] {
				values = append(values, prices[qi].InexactFloat64())
			} else {
				values = append(values, "-")
			}
		}
		if err := wb.row(row, values); err != nil {
			return nil, err
		}
		if best := lowest(prices, found); best >= 0 {
			if err := wb.highlight(cellName(5+best, row)); err != nil {
				return nil, err
			}
		}
		row++
	}

	row++
	footers := []struct {
		label string
		value func(q sourcing.Quotation) any
	}{
		{"Tổng tiền", func(q sourcing.Quotation) any { return q.TotalAmount.InexactFloat64() }},
		{"Thời gian giao (ngày)", func(q sourcing.Quotation) any { return q.DeliveryTimeDays }},
		{"Điều khoản thanh toán", func(q sourcing.Quotation) any { return q.PaymentTerms }},
		{"Trạng thái", func(q sourcing.Quotation) any { return string(q.Status) }},
	}
	for _, footer := range footers {
		values := []any{"", footer.label, "", ""}
		for _, q := range quotes {
			values = append(values, footer.value(q))
		}
		if err := wb.row(row, values); err != nil {
			return nil, err
		}
		row++
	}

	if err := wb.moneyColumns(5, 4+len(quotes), 4, row); err != nil {
		return nil, err
	}
	return wb.bytes()
}

// PurchaseOrders writes one row per PO
func (e *ExcelExporter) PurchaseOrders(orders []purchase.PurchaseOrder, suppliers map[uuid.UUID]catalog.Supplier) ([]byte, error) {
	wb, err := newWorkbook(ordersSheet)
	if err != nil {
		return nil, err
	}
	defer wb.f.Close()

	header := []any{"Mã PO", "Nhà cung cấp", "Trạng thái", "Tiền hàng", "VAT", "Tổng cộng", "Ngày giao dự kiến", "Ngày giao thực tế", "Ngày tạo"}
	if err := wb.header(1, header); err != nil {
		return nil, err
	}

	for i, po := range orders {
		values := []any{
			po.Code,
			supplierName(suppliers, po.SupplierID),
			string(po.Status),
			po.TotalAmount.InexactFloat64(),
			po.VATAmount.InexactFloat64(),
			po.GrandTotal.InexactFloat64(),
			dateOrDash(po.DeliveryDate),
			dateOrDash(po.ActualDelivery),
			po.CreatedAt.Format(dateLayout),
		}
		if err := wb.row(i+2, values); err != nil {
			return nil, err
		}
	}

	if err := wb.moneyColumns(4, 6, 2, len(orders)+1); err != nil {
		return nil, err
	}
	return wb.bytes()
}

type workbook struct {
	f     *excelize.File
	sheet string
	bold  int
	best  int
	money int
}

func newWorkbook(sheet string) (*workbook, error) {
	f := excelize.NewFile()
	index, err := f.NewSheet(sheet)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, err
	}

	wb := &workbook{f: f, sheet: sheet}
	if wb.bold, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#D3D3D3"}, Pattern: 1},
	}); err != nil {
		f.Close()
		return nil, err
	}
	if wb.best, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Color: "#006100"},
		Fill:         excelize.Fill{Type: "pattern", Color: []string{"#C6EFCE"}, Pattern: 1},
		CustomNumFmt: strPtr(moneyFormat),
	}); err != nil {
		f.Close()
		return nil, err
	}
	if wb.money, err = f.NewStyle(&excelize.Style{CustomNumFmt: strPtr(moneyFormat)}); err != nil {
		f.Close()
		return nil, err
	}
	return wb, nil
}

func (w *workbook) set(cell string, value any) error {
	return w.f.SetCellValue(w.sheet, cell, value)
}

func (w *workbook) header(row int, values []any) error {
	if err := w.row(row, values); err != nil {
		return err
	}
	first, last := cellName(1, row), cellName(len(values), row)
	if err := w.f.SetCellStyle(w.sheet, first, last, w.bold); err != nil {
		return err
	}
	lastCol, _ := excelize.ColumnNumberToName(len(values))
	return w.f.SetColWidth(w.sheet, "A", lastCol, 18)
}

func (w *workbook) row(row int, values []any) error {
	return w.f.SetSheetRow(w.sheet, cellName(1, row), &values)
}

func (w *workbook) highlight(cell string) error {
	return w.f.SetCellStyle(w.sheet, cell, cell, w.best)
}

// moneyColumns applies the thousands format to cols [from,to] and rows
// [top,bottom], leaving highlighted cells alone
func (w *workbook) moneyColumns(from, to, top, bottom int) error {
	if to < from || bottom < top {
		return nil
	}
	for col := from; col <= to; col++ {
		for r := top; r <= bottom; r++ {
			cell := cellName(col, r)
			style, err := w.f.GetCellStyle(w.sheet, cell)
			if err != nil {
				return err
			}
			if style == w.best {
				continue
			}
			if err := w.f.SetCellStyle(w.sheet, cell, cell, w.money); err != nil {
				return err
			}
		}
	}
	return nil
}

func (w *workbook) bytes() ([]byte, error) {
	var buf bytes.Buffer
	if err := w.f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func cellName(col, row int) string {
	name, _ := excelize.CoordinatesToCellName(col, row)
	return name
}

func lowest(prices []decimal.Decimal, found []bool) int {
	best := -1
	for i := range prices {
		if !found[i] {
			continue
		}
		if best < 0 || prices[i].LessThan(prices[best]) {
			best = i
		}
	}
	return best
}

func supplierName(suppliers map[uuid.UUID]catalog.Supplier, id uuid.UUID) string {
	if s, ok := suppliers[id]; ok {
		return s.CompanyName
	}
	return id.String()
}

func dateOrDash(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(dateLayout)
}

func strPtr(s string) *string { return &s }
