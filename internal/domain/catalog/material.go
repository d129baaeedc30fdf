package catalog

import (
	"strings"

	"github.com/procurement/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Material is a stocked construction material (steel, cement, sand...).
// Stock goes down only when a stock issue is confirmed as received and
// goes up only through Restock.
type Material struct {
	shared.BaseAggregateRoot
	Code     string
	Name     string
	Unit     string
	Stock    decimal.Decimal
	MinStock decimal.Decimal
	RefPrice decimal.Decimal
	Category string
	Specs    string
}

// NewMaterial creates a new material with zero stock
func NewMaterial(code, name, unit string) (*Material, error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	unit = strings.TrimSpace(unit)
	if code == "" {
		return nil, shared.NewValidationError("Material code cannot be empty")
	}
	if name == "" {
		return nil, shared.NewValidationError("Material name cannot be empty")
	}
	if unit == "" {
		return nil, shared.NewValidationError("Material unit cannot be empty")
	}
	return &Material{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Code:              strings.ToUpper(code),
		Name:              name,
		Unit:              unit,
		Stock:             decimal.Zero,
		MinStock:          decimal.Zero,
		RefPrice:          decimal.Zero,
	}, nil
}

// SetMinStock sets the low-stock threshold
func (m *Material) SetMinStock(minStock decimal.Decimal) error {
	if minStock.IsNegative() {
		return shared.NewValidationError("Minimum stock cannot be negative")
	}
	m.MinStock = minStock
	m.Touch()
	return nil
}

// SetRefPrice sets the reference unit price
func (m *Material) SetRefPrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return shared.NewValidationError("Reference price cannot be negative")
	}
	m.RefPrice = price
	m.Touch()
	return nil
}

// Restock adds received quantity to on-hand stock
func (m *Material) Restock(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewValidationError("Restock quantity must be positive")
	}
	m.Stock = m.Stock.Add(quantity)
	m.Touch()
	return nil
}

// Consume removes quantity from on-hand stock
func (m *Material) Consume(quantity decimal.Decimal) error {
	if !quantity.IsPositive() {
		return shared.NewValidationError("Consumed quantity must be positive")
	}
	if m.Stock.LessThan(quantity) {
		return shared.NewInsufficientStockError(m.ID, m.Name, m.Stock, quantity)
	}
	m.Stock = m.Stock.Sub(quantity)
	m.Touch()
	return nil
}

// IsBelowMinimum reports whether stock has fallen under the threshold
func (m *Material) IsBelowMinimum() bool {
	return m.MinStock.IsPositive() && m.Stock.LessThan(m.MinStock)
}
