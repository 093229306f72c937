package persistence

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm/clause"
)

func TestSortColumns_Column(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"whitelisted", "number", "number"},
		{"trimmed", "  invoice_id ", "invoice_id"},
		{"empty falls back", "", "invoice_date"},
		{"case sensitive", "NUMBER", "invoice_date"},
		{"injection falls back", "id; DROP TABLE invoices;--", "invoice_date"},
		{"unknown column falls back", "total", "invoice_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, invoiceSort.column(tt.input))
		})
	}
}

func TestSortColumns_OrderBy(t *testing.T) {
	col := func(name string, desc bool) clause.OrderByColumn {
		return clause.OrderByColumn{Column: clause.Column{Name: name}, Desc: desc}
	}

	t.Run("id breaks ties", func(t *testing.T) {
		got := invoiceSort.orderBy("invoice_date", "desc")
		assert.Equal(t, []clause.OrderByColumn{col("invoice_date", true), col("id", true)}, got.Columns)
	})

	t.Run("ascending only when asked", func(t *testing.T) {
		assert.False(t, currencySort.orderBy("code", " ASC ").Columns[0].Desc)
		assert.True(t, currencySort.orderBy("code", "ASC; --").Columns[0].Desc)
		assert.True(t, currencySort.orderBy("code", "").Columns[0].Desc)
	})

	t.Run("id sorts alone", func(t *testing.T) {
		got := recipientSort.orderBy("id", "asc")
		assert.Equal(t, []clause.OrderByColumn{col("id", false)}, got.Columns)
	})

	t.Run("every list keeps id sortable", func(t *testing.T) {
		for _, s := range []sortColumns{invoiceSort, currencySort, recipientSort, exportSort} {
			assert.Equal(t, "id", s.column("id"))
		}
	})
}
