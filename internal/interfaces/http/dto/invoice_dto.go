package dto

import (
	"time"

	appinv "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// InvoiceListRequest holds the invoice list query parameters
type InvoiceListRequest struct {
	ListRequest
	InvoiceDate  string `form:"invoice_date" binding:"omitempty,datetime=2006-01-02"`
	FromDate     string `form:"from_date" binding:"omitempty,datetime=2006-01-02"`
	ToDate       string `form:"to_date" binding:"omitempty,datetime=2006-01-02"`
	Invoiced     *bool  `form:"invoiced"`
	IsCreditNote *bool  `form:"is_credit_note"`
	IsPaid       *bool  `form:"is_paid"`
	Draft        *bool  `form:"draft"`
	RecipientID  *int64 `form:"recipient_id" binding:"omitempty,min=1"`
}

// ToFilter converts the query to an invoice filter
func (r InvoiceListRequest) ToFilter() invoicing.InvoiceFilter {
	f := invoicing.DefaultInvoiceFilter()
	f.Filter = r.ListRequest.ToFilter(f.Filter)
	f.InvoiceDate = parseDate(r.InvoiceDate)
	f.FromDate = parseDate(r.FromDate)
	f.ToDate = parseDate(r.ToDate)
	f.Invoiced = r.Invoiced
	f.IsCreditNote = r.IsCreditNote
	f.IsPaid = r.IsPaid
	f.Draft = r.Draft
	f.RecipientID = r.RecipientID
	return f
}

// ItemRequest is a line item in a request body
type ItemRequest struct {
	Description string           `json:"description" binding:"required,max=100"`
	UnitPrice   decimal.Decimal  `json:"unit_price"`
	Quantity    *decimal.Decimal `json:"quantity"`
}

// ToInput converts to the application input; quantity defaults to 1
func (r ItemRequest) ToInput() appinv.ItemInput {
	qty := decimal.NewFromInt(1)
	if r.Quantity != nil {
		qty = *r.Quantity
	}
	return appinv.ItemInput{
		Description: r.Description,
		UnitPrice:   r.UnitPrice,
		Quantity:    qty,
	}
}

// CreateInvoiceRequest is the body of POST /invoices
type CreateInvoiceRequest struct {
	RecipientID int64         `json:"recipient_id" binding:"required,min=1"`
	CurrencyID  *int64        `json:"currency_id" binding:"omitempty,min=1"`
	InvoiceDate string        `json:"invoice_date" binding:"omitempty,datetime=2006-01-02"`
	CostCode    string        `json:"cost_code" binding:"max=10"`
	Draft       bool          `json:"draft"`
	Items       []ItemRequest `json:"items" binding:"omitempty,dive"`
}

// ToInput converts to the application input
func (r CreateInvoiceRequest) ToInput() appinv.CreateInvoiceInput {
	in := appinv.CreateInvoiceInput{
		RecipientID: r.RecipientID,
		CurrencyID:  r.CurrencyID,
		CostCode:    r.CostCode,
		Draft:       r.Draft,
		Items:       make([]appinv.ItemInput, len(r.Items)),
	}
	if d := parseDate(r.InvoiceDate); d != nil {
		in.InvoiceDate = *d
	}
	for i, item := range r.Items {
		in.Items[i] = item.ToInput()
	}
	return in
}

// UpdateInvoiceRequest is the body of PUT /invoices/:id
type UpdateInvoiceRequest struct {
	RecipientID int64  `json:"recipient_id" binding:"required,min=1"`
	CurrencyID  *int64 `json:"currency_id" binding:"omitempty,min=1"`
	InvoiceDate string `json:"invoice_date" binding:"required,datetime=2006-01-02"`
	CostCode    string `json:"cost_code" binding:"max=10"`
	Draft       bool   `json:"draft"`
}

// ToInput converts to the application input
func (r UpdateInvoiceRequest) ToInput() appinv.UpdateInvoiceInput {
	in := appinv.UpdateInvoiceInput{
		RecipientID: r.RecipientID,
		CurrencyID:  r.CurrencyID,
		CostCode:    r.CostCode,
		Draft:       r.Draft,
	}
	if d := parseDate(r.InvoiceDate); d != nil {
		in.InvoiceDate = *d
	}
	return in
}

// PaymentRequest is the body of POST /invoices/:id/payments
type PaymentRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	PaidDate string          `json:"paid_date" binding:"omitempty,datetime=2006-01-02"`
	Method   string          `json:"method" binding:"omitempty,oneof=check bank_transfer"`
	Note     string          `json:"note" binding:"max=100"`
}

// ToInput converts to the application input
func (r PaymentRequest) ToInput() appinv.PaymentInput {
	return appinv.PaymentInput{
		Amount:   r.Amount,
		PaidDate: parseDate(r.PaidDate),
		Method:   invoicing.PaymentMethod(r.Method),
		Note:     r.Note,
	}
}

// SendRequest is the optional body of POST /invoices/:id/send
type SendRequest struct {
	To      string `json:"to" binding:"omitempty,email,max=254"`
	Subject string `json:"subject" binding:"max=200"`
}

// BatchRequest selects invoices for a bulk action
type BatchRequest struct {
	IDs []int64 `json:"ids" binding:"required,min=1,max=500,dive,min=1"`
}

// BatchErrorResponse reports one skipped invoice
type BatchErrorResponse struct {
	InvoiceID int64  `json:"invoice_id"`
	Code      string `json:"code"`
	Message   string `json:"message"`
}

// BatchResponse is the outcome of a bulk action
type BatchResponse struct {
	Processed []int64                 `json:"processed"`
	Errors    []BatchErrorResponse    `json:"errors"`
	Last      *appinv.InvoiceResponse `json:"last,omitempty"`
}

// NewBatchResponse converts a batch result. Error codes are the API codes
// of the domain errors, or ERR_INTERNAL.
func NewBatchResponse(r *appinv.BatchResult, formatter appinv.AmountFormatter, code func(error) (string, string)) BatchResponse {
	resp := BatchResponse{
		Processed: r.Processed,
		Errors:    make([]BatchErrorResponse, len(r.Errors)),
	}
	if resp.Processed == nil {
		resp.Processed = []int64{}
	}
	for i, e := range r.Errors {
		c, msg := code(e.Err)
		resp.Errors[i] = BatchErrorResponse{InvoiceID: e.InvoiceID, Code: c, Message: msg}
	}
	if r.Last != nil {
		last := appinv.ToInvoiceResponse(r.Last, formatter)
		resp.Last = &last
	}
	return resp
}

// SendResponse is the outcome of a single send
type SendResponse struct {
	Sent      bool                    `json:"sent"`
	To        string                  `json:"to,omitempty"`
	Reference string                  `json:"reference,omitempty"`
	Invoice   *appinv.InvoiceResponse `json:"invoice,omitempty"`
}

// PDFGeneratedResponse is returned after a PDF is stored
type PDFGeneratedResponse struct {
	FileName string `json:"file_name"`
}

// ExportResponse is returned by an export run
type ExportResponse struct {
	TestMode bool   `json:"test_mode"`
	URL      string `json:"url"`
}

// ExportRecordResponse is one export audit row
type ExportRecordResponse struct {
	ID            int64     `json:"id"`
	Date          string    `json:"date"`
	FileReference string    `json:"file_reference"`
	CreatedAt     time.Time `json:"created_at"`
}

// ToExportRecordResponse converts an export audit row
func ToExportRecordResponse(e invoicing.Export) ExportRecordResponse {
	return ExportRecordResponse{
		ID:            e.ID,
		Date:          e.Date.Format(time.DateOnly),
		FileReference: e.FileReference,
		CreatedAt:     e.CreatedAt,
	}
}

// CurrencyRequest is the body of currency create and update
type CurrencyRequest struct {
	Code       string `json:"code" binding:"required,len=3,alpha"`
	PreSymbol  string `json:"pre_symbol" binding:"max=3"`
	PostSymbol string `json:"post_symbol" binding:"max=3"`
}

// CurrencyResponse represents a currency in API responses
type CurrencyResponse struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"`
	PreSymbol  string    `json:"pre_symbol"`
	PostSymbol string    `json:"post_symbol"`
	Display    string    `json:"display"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ToCurrencyResponse converts a currency
func ToCurrencyResponse(c invoicing.Currency) CurrencyResponse {
	return CurrencyResponse{
		ID:         c.ID,
		Code:       c.Code,
		PreSymbol:  c.PreSymbol,
		PostSymbol: c.PostSymbol,
		Display:    c.String(),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

// RecipientRequest is the body of recipient create and update
type RecipientRequest struct {
	Name    string `json:"name" binding:"required,max=200"`
	Email   string `json:"email" binding:"omitempty,email,max=254"`
	Address string `json:"address" binding:"max=2000"`
}

// RecipientResponse represents a recipient in API responses
type RecipientResponse struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToRecipientResponse converts a recipient
func ToRecipientResponse(r invoicing.Recipient) RecipientResponse {
	return RecipientResponse{
		ID:        r.ID,
		Name:      r.Name,
		Email:     r.Email,
		Address:   r.Address,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// parseDate parses a YYYY-MM-DD value already checked by binding
func parseDate(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return nil
	}
	return &t
}
