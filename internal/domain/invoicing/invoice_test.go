package invoicing

import (
	"errors"
	"testing"
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func newTestInvoice(t *testing.T) *Invoice {
	t.Helper()
	inv, err := NewInvoice(1, time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC), false)
	require.NoError(t, err)
	return inv
}

func TestNewInvoice(t *testing.T) {
	t.Run("successful creation", func(t *testing.T) {
		inv := newTestInvoice(t)
		assert.Equal(t, int64(1), inv.RecipientID)
		assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), inv.InvoiceDate)
		assert.Equal(t, ExportStateNone, inv.ExportState)
		assert.False(t, inv.HasIdentifier())
		assert.False(t, inv.IsPersisted())
		assert.Empty(t, inv.Items)
	})

	t.Run("defaults date to today", func(t *testing.T) {
		inv, err := NewInvoice(1, time.Time{}, true)
		require.NoError(t, err)
		assert.Equal(t, Today(), inv.InvoiceDate)
		assert.True(t, inv.Draft)
	})

	t.Run("missing recipient", func(t *testing.T) {
		_, err := NewInvoice(0, time.Time{}, false)
		require.Error(t, err)
		var de *shared.DomainError
		require.True(t, errors.As(err, &de))
		assert.Equal(t, "INVALID_RECIPIENT", de.Code)
	})
}

func TestLineItem_Total(t *testing.T) {
	tests := []struct {
		name     string
		price    string
		quantity string
		want     string
	}{
		{"half-even rounding", "3.335", "2", "6.67"},
		{"simple", "10.00", "3", "30.00"},
		{"fractional quantity", "19.99", "0.5", "10.00"},
		{"round down to even", "0.125", "1", "0.12"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item, err := NewLineItem("item", dec(tt.price), dec(tt.quantity))
			require.NoError(t, err)
			assert.Equal(t, tt.want, item.Total().StringFixed(2))
		})
	}

	t.Run("quantity defaults to one", func(t *testing.T) {
		item, err := NewLineItem("item", dec("4.50"), decimal.Zero)
		require.NoError(t, err)
		assert.True(t, item.Quantity.Equal(decimal.NewFromInt(1)))
	})

	t.Run("rejects long description", func(t *testing.T) {
		long := make([]rune, MaxDescriptionLength+1)
		for i := range long {
			long[i] = 'x'
		}
		_, err := NewLineItem(string(long), dec("1"), dec("1"))
		assert.Error(t, err)
	})
}

func TestInvoice_Total(t *testing.T) {
	inv := newTestInvoice(t)
	_, err := inv.AddItem("Consulting", dec("3.335"), dec("2"))
	require.NoError(t, err)
	_, err = inv.AddItem("Hosting", dec("93.33"), dec("1"))
	require.NoError(t, err)

	assert.Equal(t, "100.00", inv.Total().StringFixed(2))
}

func TestInvoice_AssignIdentifier(t *testing.T) {
	t.Run("requires storage ID", func(t *testing.T) {
		inv := newTestInvoice(t)
		err := inv.AssignIdentifier(1, "INV0000001")
		assert.ErrorIs(t, err, ErrAllocationOrdering)
		assert.False(t, inv.HasIdentifier())
	})

	t.Run("assigns once", func(t *testing.T) {
		inv := newTestInvoice(t)
		inv.ID = 5
		require.NoError(t, inv.AssignIdentifier(3, "INV0000005"))
		assert.Equal(t, 3, inv.Number)
		assert.Equal(t, "INV0000005", inv.InvoiceID)

		err := inv.AssignIdentifier(4, "INV0000099")
		assert.ErrorIs(t, err, ErrIdentifierImmutable)
		assert.Equal(t, 3, inv.Number)
		assert.Equal(t, "INV0000005", inv.InvoiceID)

		events := inv.Events()
		require.Len(t, events, 1)
		assert.Equal(t, EventTypeInvoiceNumbered, events[0].EventType())
	})

	t.Run("rejects identifiers wider than the column", func(t *testing.T) {
		inv := newTestInvoice(t)
		inv.ID = 12345678
		err := inv.AssignIdentifier(1, NewPrefixEncoder("INV", 0).Encode(inv.ID, 1))
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_IDENTIFIER", domainErr.Code)
		assert.False(t, inv.HasIdentifier())
		assert.Empty(t, inv.Events())
	})
}

func TestInvoice_UpdateDetails(t *testing.T) {
	inv := newTestInvoice(t)
	inv.ID = 1
	require.NoError(t, inv.AssignIdentifier(1, "INV0000001"))

	t.Run("edits within the same year", func(t *testing.T) {
		err := inv.UpdateDetails(Details{
			RecipientID: 2,
			InvoiceDate: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC),
			CostCode:    "CC-1",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(2), inv.RecipientID)
		assert.Equal(t, "CC-1", inv.CostCode)
		assert.Equal(t, "INV0000001", inv.InvoiceID)
	})

	t.Run("refuses to change year once numbered", func(t *testing.T) {
		err := inv.UpdateDetails(Details{
			RecipientID: 2,
			InvoiceDate: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		})
		require.Error(t, err)
		assert.Equal(t, 2024, inv.InvoiceDate.Year())
	})

	t.Run("rejects long cost code", func(t *testing.T) {
		err := inv.UpdateDetails(Details{RecipientID: 2, CostCode: "12345678901"})
		assert.Error(t, err)
	})
}

func TestInvoice_ItemsAndPayments(t *testing.T) {
	inv := newTestInvoice(t)
	_, err := inv.AddItem("Widget", dec("10"), dec("2"))
	require.NoError(t, err)
	inv.Items[0].ID = 11

	_, err = inv.UpdateItem(11, "Widget XL", dec("12.50"), dec("2"))
	require.NoError(t, err)
	assert.Equal(t, "25.00", inv.Total().StringFixed(2))
	assert.Equal(t, "Widget XL", inv.Items[0].Description)

	assert.Error(t, inv.RemoveItem(99))
	require.NoError(t, inv.RemoveItem(11))
	assert.True(t, inv.Total().IsZero())

	_, err = inv.AddPayment(dec("5"), nil, PaymentMethodCheck, "")
	require.NoError(t, err)
	inv.Payments[0].ID = 21
	_, err = inv.AddPayment(dec("-1"), nil, PaymentMethodCheck, "")
	assert.Error(t, err)
	_, err = inv.AddPayment(dec("1"), nil, PaymentMethod("cash"), "")
	assert.Error(t, err)

	assert.Error(t, inv.RemovePayment(99))
	require.NoError(t, inv.RemovePayment(21))
	assert.Empty(t, inv.Payments)
}

func TestInvoice_LastPayment(t *testing.T) {
	inv := newTestInvoice(t)
	assert.Nil(t, inv.LastPayment())

	jan := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, _ = inv.AddPayment(dec("1"), nil, "", "undated")
	_, _ = inv.AddPayment(dec("2"), &mar, "", "march")
	_, _ = inv.AddPayment(dec("3"), &jan, "", "january")

	last := inv.LastPayment()
	require.NotNil(t, last)
	assert.Equal(t, "march", last.Note)
}

func TestInvoice_IsDue(t *testing.T) {
	today := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	inv := newTestInvoice(t)
	assert.True(t, inv.IsDue(today))
	assert.False(t, inv.IsDue(today.AddDate(0, 0, -1)))

	inv.Draft = true
	assert.False(t, inv.IsDue(today))
	inv.Draft = false

	inv.MarkInvoiced()
	assert.False(t, inv.IsDue(today))
}

func TestInvoice_MarkExported(t *testing.T) {
	inv := newTestInvoice(t)
	_, _ = inv.AddItem("Widget", dec("10"), dec("1"))
	_, _ = inv.AddPayment(dec("4"), nil, "", "")
	inv.Reconcile(nil)

	require.Len(t, inv.UnexportedPayments(), 1)
	inv.MarkExported()
	assert.Equal(t, ExportStatePartial, inv.ExportState)
	assert.Empty(t, inv.UnexportedPayments())

	_, _ = inv.AddPayment(dec("6"), nil, "", "")
	inv.Reconcile(nil)
	inv.MarkExported()
	assert.Equal(t, ExportStateFull, inv.ExportState)
	assert.False(t, inv.ExportState.Pending())
}
