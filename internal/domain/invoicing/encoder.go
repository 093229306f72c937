package invoicing

import (
	"fmt"
	"regexp"
)

// IdentifierEncoder turns a storage key and a yearly number into the
// human-facing invoice identifier. Implementations must be injective and stable.
type IdentifierEncoder interface {
	Encode(pk int64, number int) string
}

// PrefixEncoder formats the primary key zero-padded behind a fixed prefix,
// e.g. "INV0000042". The key alone is unique, so the result is injective.
type PrefixEncoder struct {
	Prefix string
	Width  int
}

// NewPrefixEncoder creates a PrefixEncoder. A non-positive width defaults to 7.
func NewPrefixEncoder(prefix string, width int) PrefixEncoder {
	if width <= 0 {
		width = 7
	}
	return PrefixEncoder{Prefix: prefix, Width: width}
}

// Encode implements IdentifierEncoder
func (e PrefixEncoder) Encode(pk int64, _ int) string {
	return fmt.Sprintf("%s%0*d", e.Prefix, e.Width, pk)
}

// FileNamer decides the file name of an invoice PDF
type FileNamer interface {
	FileName(inv *Invoice) string
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// IdentifierFileNamer names PDFs after the invoice identifier
type IdentifierFileNamer struct{}

// FileName implements FileNamer
func (IdentifierFileNamer) FileName(inv *Invoice) string {
	name := inv.InvoiceID
	if name == "" {
		name = fmt.Sprintf("invoice-%d", inv.ID)
	}
	return unsafeFileChars.ReplaceAllString(name, "_") + ".pdf"
}

var (
	_ IdentifierEncoder = PrefixEncoder{}
	_ FileNamer         = IdentifierFileNamer{}
)
