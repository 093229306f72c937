package handler

import (
	"context"

	appinv "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
)

// InvoiceManager is the invoice lifecycle used by InvoiceHandler
type InvoiceManager interface {
	Create(ctx context.Context, in appinv.CreateInvoiceInput) (*invoicing.Invoice, error)
	Update(ctx context.Context, id int64, in appinv.UpdateInvoiceInput) (*invoicing.Invoice, error)
	Get(ctx context.Context, id int64) (*invoicing.Invoice, error)
	List(ctx context.Context, filter invoicing.InvoiceFilter) (shared.Paginated[invoicing.Invoice], error)
	Delete(ctx context.Context, id int64) error
	FindCreditNote(ctx context.Context, id int64) (*invoicing.Invoice, error)
	AddItem(ctx context.Context, id int64, in appinv.ItemInput) (*invoicing.Invoice, error)
	UpdateItem(ctx context.Context, id, itemID int64, in appinv.ItemInput) (*invoicing.Invoice, error)
	RemoveItem(ctx context.Context, id, itemID int64) (*invoicing.Invoice, error)
	AddPayment(ctx context.Context, id int64, in appinv.PaymentInput) (*invoicing.Invoice, error)
	RemovePayment(ctx context.Context, id, paymentID int64) (*invoicing.Invoice, error)
}

// CreditNoteIssuer issues credit notes
type CreditNoteIssuer interface {
	Issue(ctx context.Context, originalID int64) (*invoicing.Invoice, error)
	IssueBatch(ctx context.Context, ids []int64) *appinv.BatchResult
}

// InvoiceSender emails invoices
type InvoiceSender interface {
	Send(ctx context.Context, cmd appinv.SendCommand) (*appinv.SendResult, error)
	SendBatch(ctx context.Context, ids []int64) *appinv.BatchResult
	SendDue(ctx context.Context) (*appinv.BatchResult, error)
}

// PDFProvider renders and stores invoice PDFs
type PDFProvider interface {
	RenderByInvoiceID(ctx context.Context, invoiceID string) ([]byte, string, error)
	Generate(ctx context.Context, id int64) (string, error)
	Download(ctx context.Context, id int64) ([]byte, string, error)
	IsGenerated(ctx context.Context, id int64) (bool, error)
}

// ExportRunner runs accounting exports
type ExportRunner interface {
	Run(ctx context.Context, testMode bool) (string, error)
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[invoicing.Export], error)
}

// CurrencyManager manages currencies
type CurrencyManager interface {
	Create(ctx context.Context, code, preSymbol, postSymbol string) (*invoicing.Currency, error)
	Update(ctx context.Context, id int64, code, preSymbol, postSymbol string) (*invoicing.Currency, error)
	Get(ctx context.Context, id int64) (*invoicing.Currency, error)
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[invoicing.Currency], error)
	Delete(ctx context.Context, id int64) error
}

// RecipientManager manages invoice recipients
type RecipientManager interface {
	Create(ctx context.Context, name, email, address string) (*invoicing.Recipient, error)
	Update(ctx context.Context, id int64, name, email, address string) (*invoicing.Recipient, error)
	Get(ctx context.Context, id int64) (*invoicing.Recipient, error)
	List(ctx context.Context, filter shared.Filter) (shared.Paginated[invoicing.Recipient], error)
	Delete(ctx context.Context, id int64) error
}

var (
	_ InvoiceManager   = (*appinv.InvoiceService)(nil)
	_ CreditNoteIssuer = (*appinv.CreditNoteService)(nil)
	_ InvoiceSender    = (*appinv.SendService)(nil)
	_ PDFProvider      = (*appinv.PDFService)(nil)
	_ ExportRunner     = (*appinv.ExportJob)(nil)
	_ CurrencyManager  = (*appinv.CurrencyService)(nil)
	_ RecipientManager = (*appinv.RecipientService)(nil)
)
