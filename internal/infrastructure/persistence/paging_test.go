package persistence

import (
	"testing"

	"github.com/procurement/backend/internal/domain/shared"
	"github.com/procurement/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func pagedSQL(t *testing.T, filter shared.Filter) string {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{DryRun: true})
	require.NoError(t, err)

	var rows []models.PurchaseOrderModel
	stmt := applyPaging(db.Model(&models.PurchaseOrderModel{}), filter, orderSort).Find(&rows).Statement
	return db.Dialector.Explain(stmt.SQL.String(), stmt.Vars...)
}

func TestApplyPaging(t *testing.T) {
	tests := []struct {
		name   string
		filter shared.Filter
		want   string
	}{
		{"defaults", shared.Filter{}, "ORDER BY `created_at` DESC LIMIT 20"},
		{"whitelisted ascending", shared.Filter{OrderBy: " grand_total ", OrderDir: "asc"}, "ORDER BY `grand_total` LIMIT 20"},
		{"unknown column", shared.Filter{OrderBy: "supplier_id", OrderDir: "ASC"}, "ORDER BY `created_at` LIMIT 20"},
		{"injection", shared.Filter{OrderBy: "id; DROP TABLE payments;--"}, "ORDER BY `created_at` DESC"},
		{"direction garbage", shared.Filter{OrderBy: "code", OrderDir: "ASC; --"}, "ORDER BY `code` DESC"},
		{"page size clamped", shared.Filter{PageSize: 5000}, "LIMIT 100"},
		{"offset from page", shared.Filter{Page: 3, PageSize: 10}, "LIMIT 10 OFFSET 20"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Contains(t, pagedSQL(t, tt.filter), tt.want)
		})
	}
}

func TestSortable_CommonColumns(t *testing.T) {
	cols := sortable("rating")
	for _, c := range []string{"id", "created_at", "updated_at", "rating"} {
		assert.Equal(t, c, cols.orderBy(c, "").Column.Name)
	}
	assert.Equal(t, "created_at", cols.orderBy("RATING", "").Column.Name, "column names are case sensitive")
}

func TestFilterValue(t *testing.T) {
	f := shared.Filter{Filters: map[string]any{"status": "pending", "project_id": "", "supplier_id": nil}}

	v, ok := filterValue(f, "status")
	assert.True(t, ok)
	assert.Equal(t, "pending", v)

	for _, key := range []string{"project_id", "supplier_id", "missing"} {
		_, ok := filterValue(f, key)
		assert.False(t, ok, key)
	}
}
