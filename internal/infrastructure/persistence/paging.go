package persistence

import (
	"strings"

	"github.com/procurement/backend/internal/domain/shared"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// sortColumns whitelists the columns a list endpoint may order by.
// Anything else falls back to created_at.
type sortColumns map[string]struct{}

func sortable(cols ...string) sortColumns {
	s := sortColumns{"id": {}, "created_at": {}, "updated_at": {}}
	for _, c := range cols {
		s[c] = struct{}{}
	}
	return s
}

func (s sortColumns) orderBy(field, dir string) clause.OrderByColumn {
	col := strings.TrimSpace(field)
	if _, ok := s[col]; !ok {
		col = "created_at"
	}
	return clause.OrderByColumn{
		Column: clause.Column{Name: col},
		Desc:   !strings.EqualFold(strings.TrimSpace(dir), "asc"),
	}
}

var (
	materialSort  = sortable("code", "name", "category", "stock")
	projectSort   = sortable("code", "name", "status", "start_date")
	supplierSort  = sortable("code", "company_name", "rating")
	quotaSort     = sortable("max_quantity", "used_quantity")
	requestSort   = sortable("code", "status", "priority", "need_by_date")
	issueSort     = sortable("code", "status", "issued_at")
	rfqSort       = sortable("code", "status", "deadline")
	quotationSort = sortable("code", "status", "total_amount", "delivery_time_days", "submitted_at")
	orderSort     = sortable("code", "status", "grand_total", "delivery_date")
)

// applyPaging orders by a whitelisted column and applies offset/limit;
// page size is clamped to maxPageSize.
func applyPaging(query *gorm.DB, filter shared.Filter, cols sortColumns) *gorm.DB {
	size := filter.PageSize
	switch {
	case size <= 0:
		size = defaultPageSize
	case size > maxPageSize:
		size = maxPageSize
	}
	return query.
		Order(cols.orderBy(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(size)
}

// filterValue returns a filter entry unless it is missing, nil or ""
func filterValue(filter shared.Filter, key string) (any, bool) {
	v, ok := filter.Filters[key]
	if !ok || v == nil {
		return nil, false
	}
	if s, isString := v.(string); isString && s == "" {
		return nil, false
	}
	return v, true
}
