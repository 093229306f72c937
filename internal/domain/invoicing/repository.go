package invoicing

import (
	"context"
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
)

// InvoiceFilter defines filtering options for invoice queries
type InvoiceFilter struct {
	shared.Filter
	InvoiceDate  *time.Time // Exact invoice date
	FromDate     *time.Time // Invoice date range start, inclusive
	ToDate       *time.Time // Invoice date range end, inclusive
	Invoiced     *bool
	IsCreditNote *bool
	IsPaid       *bool
	Draft        *bool
	RecipientID  *int64
}

// DefaultInvoiceFilter orders by newest invoice date first, then by ID
func DefaultInvoiceFilter() InvoiceFilter {
	f := shared.DefaultFilter()
	f.OrderBy = "invoice_date"
	f.OrderDir = "desc"
	return InvoiceFilter{Filter: f}
}

// InvoiceRepository defines the interface for invoice persistence.
// Loaded invoices carry their items, payments, currency and recipient.
type InvoiceRepository interface {
	// FindByID finds an invoice by storage ID
	FindByID(ctx context.Context, id int64) (*Invoice, error)

	// FindByInvoiceID finds an invoice by its human-facing identifier
	FindByInvoiceID(ctx context.Context, invoiceID string) (*Invoice, error)

	// FindCreditNote returns the credit note issued for originalID,
	// or nil without error when there is none
	FindCreditNote(ctx context.Context, originalID int64) (*Invoice, error)

	// FindAll finds invoices matching the filter
	FindAll(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter InvoiceFilter) (int64, error)

	// FindDue finds invoices dated on or before today that are neither
	// drafts nor invoiced yet
	FindDue(ctx context.Context, today time.Time) ([]Invoice, error)

	// FindInvoiced finds sent, non-draft invoices
	FindInvoiced(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)

	// FindExportable finds invoices whose export state is none or partial
	FindExportable(ctx context.Context) ([]Invoice, error)

	// Save inserts the invoice when it has no ID yet (assigning one) and
	// updates it otherwise. Items and payments are synchronised.
	Save(ctx context.Context, invoice *Invoice) error
}

// SequenceRepository allocates yearly invoice numbers
type SequenceRepository interface {
	// NextNumber returns 1 + the highest number used in year and reserves it.
	// It must run inside a transaction; concurrent callers for the same year
	// are serialised.
	NextNumber(ctx context.Context, year int) (int, error)
}

// CurrencyRepository defines the interface for currency persistence
type CurrencyRepository interface {
	FindByID(ctx context.Context, id int64) (*Currency, error)
	FindByCode(ctx context.Context, code string) (*Currency, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Currency, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByCode(ctx context.Context, code string) (bool, error)
	Save(ctx context.Context, currency *Currency) error
	Delete(ctx context.Context, id int64) error
}

// RecipientRepository defines the interface for recipient persistence
type RecipientRepository interface {
	FindByID(ctx context.Context, id int64) (*Recipient, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Recipient, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	Save(ctx context.Context, recipient *Recipient) error
	Delete(ctx context.Context, id int64) error
}

// ExportRepository stores export audit records
type ExportRepository interface {
	Save(ctx context.Context, export *Export) error
	FindAll(ctx context.Context, filter shared.Filter) ([]Export, error)
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
