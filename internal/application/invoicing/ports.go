package invoicing

import (
	"context"
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// Renderer produces the PDF rendition of an invoice and display amounts.
// Render must be deterministic for a given invoice state.
type Renderer interface {
	Render(ctx context.Context, inv *invoicing.Invoice) ([]byte, error)
	FormatAmount(amount decimal.Decimal, currency *invoicing.Currency) string
}

// Attachment is a file carried by a Message
type Attachment struct {
	FileName    string
	ContentType string
	Data        []byte
	// ContentID marks an inline image referenced from the HTML body as cid:<ContentID>
	ContentID string
}

// Message is an outgoing email
type Message struct {
	To          string
	Subject     string
	TextBody    string
	HTMLBody    string
	Attachments []Attachment
}

// Notifier delivers messages. A false result without error means no
// transport was available.
type Notifier interface {
	Deliver(ctx context.Context, msg *Message) (bool, error)
}

// EmailContent is the data available to email body templates
type EmailContent struct {
	Invoice        *invoicing.Invoice
	Date           time.Time
	SiteName       string
	Currency       string
	CurrencySymbol string
	TotalDisplay   string
}

// BodyComposer renders the text and HTML bodies of an invoice email
type BodyComposer interface {
	Compose(content EmailContent) (text string, html string, err error)
}

// DataGatherer produces export rows. testMode must not change any flags.
type DataGatherer interface {
	Gather(ctx context.Context, testMode bool) ([][]string, error)
}

// RowEncoder serialises export rows into file contents
type RowEncoder interface {
	Encode(rows [][]string) ([]byte, error)
}

// StoredFile describes a file written by a FileStore
type StoredFile struct {
	Name string
	URL  string
}

// FileStore writes export files. Store never overwrites: when name is taken a
// free variant of it is chosen.
type FileStore interface {
	Store(ctx context.Context, name string, data []byte, contentType string) (*StoredFile, error)
}

// PDFStore keeps generated invoice PDFs by file name
type PDFStore interface {
	Save(ctx context.Context, name string, data []byte) error
	Load(ctx context.Context, name string) ([]byte, error)
	Exists(ctx context.Context, name string) (bool, error)
}

// PDFCache caches rendered PDFs. Misses return (nil, false, nil).
type PDFCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, data []byte) error
}

// Clock returns the current time
type Clock func() time.Time
