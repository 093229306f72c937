package invoicing

import (
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

const (
	EventTypeInvoiceNumbered          = "InvoiceNumbered"
	EventTypeInvoicePaidStatusChanged = "InvoicePaidStatusChanged"
	EventTypeInvoiceSent              = "InvoiceSent"
	EventTypeCreditNoteIssued         = "CreditNoteIssued"
)

// InvoiceNumberedEvent is raised once, when the invoice receives its identifier
type InvoiceNumberedEvent struct {
	shared.EventHeader
	InvoiceID string `json:"invoice_id"`
	Number    int    `json:"number"`
	Year      int    `json:"year"`
}

func NewInvoiceNumberedEvent(inv *Invoice) *InvoiceNumberedEvent {
	return &InvoiceNumberedEvent{
		EventHeader: shared.NewEventHeader(EventTypeInvoiceNumbered, inv.ID),
		InvoiceID:   inv.InvoiceID,
		Number:      inv.Number,
		Year:        inv.InvoiceDate.Year(),
	}
}

// InvoicePaidStatusChangedEvent is raised when reconciliation flips IsPaid
type InvoicePaidStatusChangedEvent struct {
	shared.EventHeader
	IsPaid        bool            `json:"is_paid"`
	Total         decimal.Decimal `json:"total"`
	PaymentsTotal decimal.Decimal `json:"payments_total"`
}

func NewInvoicePaidStatusChangedEvent(inv *Invoice) *InvoicePaidStatusChangedEvent {
	return &InvoicePaidStatusChangedEvent{
		EventHeader:   shared.NewEventHeader(EventTypeInvoicePaidStatusChanged, inv.ID),
		IsPaid:        inv.IsPaid,
		Total:         inv.Total(),
		PaymentsTotal: inv.PaymentsTotal(),
	}
}

// InvoiceSentEvent is raised after the rendered invoice was delivered
type InvoiceSentEvent struct {
	shared.EventHeader
	InvoiceID string `json:"invoice_id"`
}

func NewInvoiceSentEvent(inv *Invoice) *InvoiceSentEvent {
	return &InvoiceSentEvent{
		EventHeader: shared.NewEventHeader(EventTypeInvoiceSent, inv.ID),
		InvoiceID:   inv.InvoiceID,
	}
}

// CreditNoteIssuedEvent is raised on the credit note derived from an invoice.
// Its aggregate ID is zero because the credit note is not stored yet.
type CreditNoteIssuedEvent struct {
	shared.EventHeader
	OriginalID        int64           `json:"original_id"`
	OriginalInvoiceID string          `json:"original_invoice_id"`
	Total             decimal.Decimal `json:"total"`
}

func NewCreditNoteIssuedEvent(cn, original *Invoice) *CreditNoteIssuedEvent {
	return &CreditNoteIssuedEvent{
		EventHeader:       shared.NewEventHeader(EventTypeCreditNoteIssued, cn.ID),
		OriginalID:        original.ID,
		OriginalInvoiceID: original.InvoiceID,
		Total:             cn.Total(),
	}
}
