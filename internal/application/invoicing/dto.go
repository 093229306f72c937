package invoicing

import (
	"fmt"
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// CreateInvoiceInput carries the attributes of a new invoice
type CreateInvoiceInput struct {
	RecipientID int64
	CurrencyID  *int64
	InvoiceDate time.Time
	CostCode    string
	Draft       bool
	Items       []ItemInput
}

// UpdateInvoiceInput carries the editable attributes of an invoice
type UpdateInvoiceInput struct {
	RecipientID int64
	CurrencyID  *int64
	InvoiceDate time.Time
	CostCode    string
	Draft       bool
}

// ItemInput carries a line item
type ItemInput struct {
	Description string
	UnitPrice   decimal.Decimal
	Quantity    decimal.Decimal
}

// PaymentInput carries a payment
type PaymentInput struct {
	Amount   decimal.Decimal
	PaidDate *time.Time
	Method   invoicing.PaymentMethod
	Note     string
}

// SendCommand asks for an invoice to be emailed. ToEmail and Subject are
// optional overrides.
type SendCommand struct {
	InvoiceID int64
	ToEmail   string
	Subject   string
}

// SendResult is the outcome of a send. Sent is false with a Reason when the
// invoice could not be sent and nothing was changed.
type SendResult struct {
	InvoiceID int64  `json:"invoice_id"`
	Reference string `json:"reference,omitempty"`
	To        string `json:"to,omitempty"`
	Sent      bool   `json:"sent"`
	Reason    error  `json:"-"`

	Invoice *invoicing.Invoice `json:"-"`
}

// BatchError reports one invoice skipped by a batch action
type BatchError struct {
	InvoiceID int64
	Err       error
}

// Error implements error
func (e BatchError) Error() string {
	return fmt.Sprintf("invoice %d: %v", e.InvoiceID, e.Err)
}

// Unwrap returns the underlying error
func (e BatchError) Unwrap() error {
	return e.Err
}

// BatchResult is the outcome of a batch action. Last is the last invoice
// produced by the action, if any.
type BatchResult struct {
	Processed []int64
	Errors    []BatchError
	Last      *invoicing.Invoice
}

// Failed reports whether any invoice was skipped
func (r *BatchResult) Failed() bool {
	return len(r.Errors) > 0
}

// LineItemResponse represents a line item in API responses
type LineItemResponse struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    decimal.Decimal `json:"quantity"`
	Total       decimal.Decimal `json:"total"`
}

// PaymentResponse represents a payment in API responses
type PaymentResponse struct {
	ID       int64           `json:"id"`
	Amount   decimal.Decimal `json:"amount"`
	PaidDate *string         `json:"paid_date,omitempty"`
	Method   string          `json:"method,omitempty"`
	Note     string          `json:"note,omitempty"`
	Exported bool            `json:"exported"`
}

// InvoiceResponse represents an invoice in API responses
type InvoiceResponse struct {
	ID               int64              `json:"id"`
	InvoiceID        string             `json:"invoice_id"`
	Number           int                `json:"number"`
	RecipientID      int64              `json:"recipient_id"`
	RecipientName    string             `json:"recipient_name,omitempty"`
	CurrencyID       *int64             `json:"currency_id,omitempty"`
	CurrencyCode     string             `json:"currency_code,omitempty"`
	InvoiceDate      string             `json:"invoice_date"`
	CostCode         string             `json:"cost_code,omitempty"`
	Draft            bool               `json:"draft"`
	Invoiced         bool               `json:"invoiced"`
	IsPaid           bool               `json:"is_paid"`
	IsCreditNote     bool               `json:"is_credit_note"`
	RelatedInvoiceID *int64             `json:"related_invoice_id,omitempty"`
	ExportState      string             `json:"export_state"`
	Total            decimal.Decimal    `json:"total"`
	TotalAmount      string             `json:"total_amount"`
	PaymentsTotal    decimal.Decimal    `json:"payments_total"`
	LastPayment      *PaymentResponse   `json:"last_payment,omitempty"`
	Items            []LineItemResponse `json:"items"`
	Payments         []PaymentResponse  `json:"payments"`
	CreatedAt        time.Time          `json:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at"`
}

// AmountFormatter renders display amounts
type AmountFormatter interface {
	FormatAmount(amount decimal.Decimal, currency *invoicing.Currency) string
}

// ToInvoiceResponse converts a domain invoice. formatter may be nil.
func ToInvoiceResponse(inv *invoicing.Invoice, formatter AmountFormatter) InvoiceResponse {
	resp := InvoiceResponse{
		ID:               inv.ID,
		InvoiceID:        inv.InvoiceID,
		Number:           inv.Number,
		RecipientID:      inv.RecipientID,
		CurrencyID:       inv.CurrencyID,
		InvoiceDate:      inv.InvoiceDate.Format(time.DateOnly),
		CostCode:         inv.CostCode,
		Draft:            inv.Draft,
		Invoiced:         inv.Invoiced,
		IsPaid:           inv.IsPaid,
		IsCreditNote:     inv.IsCreditNote,
		RelatedInvoiceID: inv.RelatedInvoiceID,
		ExportState:      inv.ExportState.String(),
		Total:            inv.Total(),
		PaymentsTotal:    inv.PaymentsTotal(),
		Items:            make([]LineItemResponse, 0, len(inv.Items)),
		Payments:         make([]PaymentResponse, 0, len(inv.Payments)),
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
	}
	if inv.Recipient != nil {
		resp.RecipientName = inv.Recipient.Name
	}
	if inv.Currency != nil {
		resp.CurrencyCode = inv.Currency.Code
	}
	if formatter != nil {
		resp.TotalAmount = formatter.FormatAmount(resp.Total, inv.Currency)
	} else {
		resp.TotalAmount = resp.Total.StringFixed(2)
	}
	for _, item := range inv.Items {
		resp.Items = append(resp.Items, LineItemResponse{
			ID:          item.ID,
			Description: item.Description,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
			Total:       item.Total(),
		})
	}
	for _, p := range inv.Payments {
		resp.Payments = append(resp.Payments, toPaymentResponse(p))
	}
	if last := inv.LastPayment(); last != nil {
		lp := toPaymentResponse(*last)
		resp.LastPayment = &lp
	}
	return resp
}

func toPaymentResponse(p invoicing.Payment) PaymentResponse {
	resp := PaymentResponse{
		ID:       p.ID,
		Amount:   p.Amount,
		Method:   p.Method.String(),
		Note:     p.Note,
		Exported: p.Exported,
	}
	if p.PaidDate != nil {
		d := p.PaidDate.Format(time.DateOnly)
		resp.PaidDate = &d
	}
	return resp
}

// ToInvoiceResponses converts a list of invoices
func ToInvoiceResponses(invoices []invoicing.Invoice, formatter AmountFormatter) []InvoiceResponse {
	out := make([]InvoiceResponse, len(invoices))
	for i := range invoices {
		out[i] = ToInvoiceResponse(&invoices[i], formatter)
	}
	return out
}
