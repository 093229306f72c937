// Package export serialises accounting export rows.
package export

import (
	"bytes"
	"strings"
	"unicode/utf8"

	appinv "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/samber/lo"
)

// CSVEncoder writes rows as delimiter-separated values with every field
// quoted. encoding/csv only quotes when needed, so quoting is done here.
type CSVEncoder struct {
	delimiter  rune
	terminator string
	trimSpace  bool
}

// EncoderOption is a functional option for CSVEncoder configuration
type EncoderOption func(*CSVEncoder)

// WithDelimiter sets the field delimiter (default is semicolon)
func WithDelimiter(d rune) EncoderOption {
	return func(e *CSVEncoder) {
		e.delimiter = d
	}
}

// WithLineTerminator sets the record terminator (default is CRLF)
func WithLineTerminator(t string) EncoderOption {
	return func(e *CSVEncoder) {
		e.terminator = t
	}
}

// WithTrimSpace controls trimming of leading/trailing spaces from fields
func WithTrimSpace(trim bool) EncoderOption {
	return func(e *CSVEncoder) {
		e.trimSpace = trim
	}
}

// NewCSVEncoder creates a new encoder
func NewCSVEncoder(opts ...EncoderOption) *CSVEncoder {
	e := &CSVEncoder{
		delimiter:  ';',
		terminator: "\r\n",
		trimSpace:  true,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Encode implements appinv.RowEncoder. Output is UTF-8 without BOM.
func (e *CSVEncoder) Encode(rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	sep := string(e.delimiter)
	for _, row := range rows {
		fields := lo.Map(row, func(field string, _ int) string {
			if e.trimSpace {
				field = strings.TrimSpace(field)
			}
			if !utf8.ValidString(field) {
				field = strings.ToValidUTF8(field, "�")
			}
			return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
		})
		buf.WriteString(strings.Join(fields, sep))
		buf.WriteString(e.terminator)
	}
	return buf.Bytes(), nil
}

var _ appinv.RowEncoder = (*CSVEncoder)(nil)
