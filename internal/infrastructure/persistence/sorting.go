package persistence

import (
	"strings"

	"github.com/samber/lo"
	"gorm.io/gorm/clause"
)

// sortColumns whitelists the columns a list endpoint may order by. Anything
// else falls back, so user input never reaches the SQL text.
type sortColumns struct {
	allowed  []string
	fallback string
}

var (
	invoiceSort   = sortColumns{[]string{"id", "created_at", "updated_at", "invoice_id", "invoice_date", "number", "recipient_id", "is_paid", "invoiced"}, "invoice_date"}
	currencySort  = sortColumns{[]string{"id", "created_at", "updated_at", "code"}, "code"}
	recipientSort = sortColumns{[]string{"id", "created_at", "updated_at", "name", "email"}, "name"}
	exportSort    = sortColumns{[]string{"id", "created_at", "date"}, "date"}
)

// column returns the requested column when whitelisted
func (s sortColumns) column(orderBy string) string {
	col := strings.TrimSpace(orderBy)
	if lo.Contains(s.allowed, col) {
		return col
	}
	return s.fallback
}

// orderBy builds the ORDER BY clause. Direction defaults to descending and
// id breaks ties so pages are stable.
func (s sortColumns) orderBy(orderBy, orderDir string) clause.OrderBy {
	col := s.column(orderBy)
	desc := !strings.EqualFold(strings.TrimSpace(orderDir), "asc")

	cols := []clause.OrderByColumn{{Column: clause.Column{Name: col}, Desc: desc}}
	if col != "id" {
		cols = append(cols, clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc})
	}
	return clause.OrderBy{Columns: cols}
}
