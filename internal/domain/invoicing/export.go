package invoicing

import (
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
)

// Export is the audit record of a completed live export
type Export struct {
	ID            int64     `json:"id"`
	Date          time.Time `json:"date"`
	FileReference string    `json:"file_reference"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewExport creates an audit record for the given file
func NewExport(date time.Time, fileReference string) (*Export, error) {
	if fileReference == "" {
		return nil, shared.NewDomainError("INVALID_FILE_REFERENCE", "Export file reference cannot be empty")
	}
	return &Export{
		Date:          NormalizeDate(date),
		FileReference: fileReference,
		CreatedAt:     time.Now(),
	}, nil
}
