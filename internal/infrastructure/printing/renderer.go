package printing

import (
	"bytes"
	"context"
	"time"
)

// A4 paper in millimeters
const (
	a4WidthMM  = 210
	a4HeightMM = 297
)

// Margins in millimeters
type Margins struct {
	Top    int
	Right  int
	Bottom int
	Left   int
}

// DefaultMargins returns the margins used for invoices
func DefaultMargins() Margins {
	return Margins{Top: 15, Right: 15, Bottom: 15, Left: 15}
}

// RenderRequest is one A4 portrait document to print
type RenderRequest struct {
	HTML    string
	Title   string
	Margins Margins
	// FooterHTML is printed on every page; Chrome fills the pageNumber and
	// totalPages classes
	FooterHTML string
	// Timeout overrides the engine default when set
	Timeout time.Duration
}

// RenderResult is the printed document
type RenderResult struct {
	PDFData        []byte
	PageCount      int
	RenderDuration time.Duration
}

// PDFEngine prints HTML documents. HTMLInvoiceRenderer fills the invoice
// template and hands the result to an engine.
type PDFEngine interface {
	Render(ctx context.Context, req *RenderRequest) (*RenderResult, error)
	Close() error
}

// RenderError carries a machine readable code for rendering and storage
// failures. The application layer wraps it in the domain render error.
type RenderError struct {
	Code    string
	Message string
	Cause   error
}

func (e *RenderError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *RenderError) Unwrap() error {
	return e.Cause
}

// Error codes for rendering failures
const (
	ErrCodeRenderTimeout  = "RENDER_TIMEOUT"
	ErrCodeRenderFailed   = "RENDER_FAILED"
	ErrCodeInvalidHTML    = "INVALID_HTML"
	ErrCodeTemplateFailed = "TEMPLATE_FAILED"
	ErrCodeStorageFailed  = "STORAGE_FAILED"
)

// NewRenderError creates a new RenderError
func NewRenderError(code, message string, cause error) *RenderError {
	return &RenderError{Code: code, Message: message, Cause: cause}
}

// estimatePageCount counts page objects in a PDF
func estimatePageCount(pdfData []byte) int {
	count := bytes.Count(pdfData, []byte("/Type /Page"))
	// "/Type /Pages" also matches, subtract the parent objects
	count -= bytes.Count(pdfData, []byte("/Type /Pages"))
	return max(count, 1)
}
