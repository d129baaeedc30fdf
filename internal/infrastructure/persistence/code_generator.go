package persistence

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/procurement/backend/internal/application/port"
	"github.com/procurement/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// codeColumn locates where the codes of one prefix are stored
type codeColumn struct {
	table  string
	column string
}

var codeColumns = map[port.CodePrefix]codeColumn{
	port.PrefixMaterialRequest: {table: "material_requests", column: "code"},
	port.PrefixRFQ:             {table: "rfqs", column: "code"},
	port.PrefixQuotation:       {table: "quotations", column: "code"},
	port.PrefixPurchaseOrder:   {table: "purchase_orders", column: "code"},
	port.PrefixStockIssue:      {table: "stock_issues", column: "code"},
	port.PrefixPayment:         {table: "payments", column: "unc_number"},
}

// GormCodeGenerator derives the next code from the highest stored one.
// Format: <prefix><5 digits> (e.g., PO00001); wider numbers are kept once 99999 is passed.
// Uniqueness is enforced by the unique index on each code column; a
// concurrent insert that loses the race fails with ALREADY_EXISTS.
type GormCodeGenerator struct {
	db *gorm.DB
}

// NewGormCodeGenerator creates a new GormCodeGenerator
func NewGormCodeGenerator(db *gorm.DB) *GormCodeGenerator {
	return &GormCodeGenerator{db: db}
}

// Next returns the next code for prefix
func (g *GormCodeGenerator) Next(ctx context.Context, prefix port.CodePrefix) (string, error) {
	target, ok := codeColumns[prefix]
	if !ok {
		return "", shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("unknown code prefix %q", prefix))
	}

	var codes []string
	if err := g.db.WithContext(ctx).
		Table(target.table).
		Where(target.column+" LIKE ?", string(prefix)+"%").
		Order(fmt.Sprintf("LENGTH(%s) DESC, %s DESC", target.column, target.column)).
		Limit(1).
		Pluck(target.column, &codes).Error; err != nil {
		return "", err
	}

	var next int64 = 1
	if len(codes) > 0 {
		if n, err := strconv.ParseInt(strings.TrimPrefix(codes[0], string(prefix)), 10, 64); err == nil {
			next = n + 1
		}
	}
	return FormatCode(prefix, next), nil
}

// FormatCode renders a sequence number with its prefix
func FormatCode(prefix port.CodePrefix, n int64) string {
	return fmt.Sprintf("%s%05d", prefix, n)
}

var _ port.CodeGenerator = (*GormCodeGenerator)(nil)
