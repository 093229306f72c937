package printing

import (
	"context"
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// fakeEngine records the last request and returns a fixed document
type fakeEngine struct {
	last *RenderRequest
	err  error
}

func (e *fakeEngine) Render(_ context.Context, req *RenderRequest) (*RenderResult, error) {
	e.last = req
	if e.err != nil {
		return nil, e.err
	}
	return &RenderResult{PDFData: []byte("%PDF-1.4 /Type /Page"), PageCount: 1}, nil
}

func (e *fakeEngine) Close() error { return nil }

func sampleInvoice() *invoicing.Invoice {
	date := time.Date(2024, 5, 17, 0, 0, 0, 0, time.UTC)
	inv := &invoicing.Invoice{
		InvoiceID:   "INV_0042",
		Number:      42,
		RecipientID: 7,
		Recipient: &invoicing.Recipient{
			ID:      7,
			Name:    "Müller & Söhne",
			Email:   "billing@example.com",
			Address: "Hauptstraße 1\n10115 Berlin",
		},
		InvoiceDate: date,
		CostCode:    "CC-7",
		ExportState: invoicing.ExportStateNone,
		Items: []invoicing.LineItem{
			{ID: 1, Description: "Consulting <senior>", UnitPrice: decimal.RequireFromString("3.335"), Quantity: decimal.NewFromInt(2)},
			{ID: 2, Description: "Travel", UnitPrice: decimal.RequireFromString("100"), Quantity: decimal.NewFromInt(1)},
		},
	}
	inv.ID = 42
	inv.UpdatedAt = date.Add(9 * time.Hour)
	return inv
}
