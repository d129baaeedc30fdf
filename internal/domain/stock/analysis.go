package stock

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AnalysisInput is one requested line joined with its material's stock
type AnalysisInput struct {
	MaterialID   uuid.UUID
	MaterialName string
	MaterialCode string
	Unit         string
	Requested    decimal.Decimal
	Stock        decimal.Decimal
}

// ItemAnalysis is the stock-versus-purchase split of one requested line
type ItemAnalysis struct {
	MaterialID      uuid.UUID       `json:"material_id"`
	MaterialName    string          `json:"material_name"`
	MaterialCode    string          `json:"material_code"`
	Unit            string          `json:"unit"`
	Requested       decimal.Decimal `json:"requested"`
	Stock           decimal.Decimal `json:"stock"`
	FulfillQuantity decimal.Decimal `json:"fulfill_quantity"`
	NeedToBuy       decimal.Decimal `json:"need_to_buy"`
	CanFulfill      bool            `json:"can_fulfill"`
}

// FulfillmentAnalysis is the split of a whole request
type FulfillmentAnalysis struct {
	RequestID           uuid.UUID      `json:"request_id"`
	Items               []ItemAnalysis `json:"items"`
	CanFulfillFully     bool           `json:"can_fulfill_fully"`
	CanFulfillPartially bool           `json:"can_fulfill_partially"`
}

// Analyze splits each line into the part on hand and the part to buy.
// A request without lines is vacuously fully fulfillable.
func Analyze(requestID uuid.UUID, lines []AnalysisInput) FulfillmentAnalysis {
	result := FulfillmentAnalysis{
		RequestID:       requestID,
		Items:           make([]ItemAnalysis, len(lines)),
		CanFulfillFully: true,
	}
	for i, line := range lines {
		item := AnalyzeLine(line)
		result.Items[i] = item
		if !item.CanFulfill {
			result.CanFulfillFully = false
		}
		if item.FulfillQuantity.IsPositive() {
			result.CanFulfillPartially = true
		}
	}
	return result
}

// AnalyzeLine computes fulfill = min(stock, requested), needToBuy = max(0, requested - stock)
func AnalyzeLine(line AnalysisInput) ItemAnalysis {
	available := line.Stock
	if available.IsNegative() {
		available = decimal.Zero
	}
	needToBuy := line.Requested.Sub(available)
	if needToBuy.IsNegative() {
		needToBuy = decimal.Zero
	}
	return ItemAnalysis{
		MaterialID:      line.MaterialID,
		MaterialName:    line.MaterialName,
		MaterialCode:    line.MaterialCode,
		Unit:            line.Unit,
		Requested:       line.Requested,
		Stock:           line.Stock,
		FulfillQuantity: decimal.Min(available, line.Requested),
		NeedToBuy:       needToBuy,
		CanFulfill:      available.GreaterThanOrEqual(line.Requested),
	}
}

// Shortfall returns only the lines that must be purchased
func (a FulfillmentAnalysis) Shortfall() []ItemAnalysis {
	out := make([]ItemAnalysis, 0, len(a.Items))
	for _, item := range a.Items {
		if item.NeedToBuy.IsPositive() {
			out = append(out, item)
		}
	}
	return out
}
