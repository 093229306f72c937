package invoicing

import "github.com/erp/invoicing/internal/domain/shared"

// Error codes raised by the invoicing context
const (
	CodeAllocationOrdering  = "ALLOCATION_ORDERING"
	CodeIdentifierImmutable = "IDENTIFIER_IMMUTABLE"
	CodeAlreadyCreditNote   = "ALREADY_CREDIT_NOTE"
	CodeDuplicateCreditNote = "DUPLICATE_CREDIT_NOTE"
	CodeRecipientUnresolved = "RECIPIENT_UNRESOLVED"
	CodeRenderFailed        = "RENDER_FAILED"
	CodeDeliveryFailed      = "DELIVERY_FAILED"
	CodeNoData              = "NO_DATA"
	CodeGatherFailed        = "GATHER_FAILED"
	CodePDFNotGenerated     = "PDF_NOT_GENERATED"
)

var (
	// ErrAllocationOrdering is a programmer error: identifiers were requested
	// before storage assigned a primary key.
	ErrAllocationOrdering = shared.NewDomainError(CodeAllocationOrdering, "Invoice must be persisted before an identifier can be allocated")

	ErrIdentifierImmutable = shared.NewDomainError(CodeIdentifierImmutable, "Invoice identifier is already assigned")
	ErrAlreadyCreditNote   = shared.NewDomainError(CodeAlreadyCreditNote, "Cannot issue a credit note for a credit note")
	ErrDuplicateCreditNote = shared.NewDomainError(CodeDuplicateCreditNote, "A credit note already exists for this invoice")
	ErrRecipientUnresolved = shared.NewDomainError(CodeRecipientUnresolved, "No recipient email address could be resolved")
	ErrRender              = shared.NewDomainError(CodeRenderFailed, "Failed to render invoice")
	ErrDelivery            = shared.NewDomainError(CodeDeliveryFailed, "Failed to deliver invoice")
	ErrNoData              = shared.NewDomainError(CodeNoData, "No data to export")
	ErrGather              = shared.NewDomainError(CodeGatherFailed, "Export data could not be gathered")
	ErrPDFNotGenerated     = shared.NewDomainError(CodePDFNotGenerated, "Invoice PDF has not been generated yet")
	ErrPermissionDenied    = shared.NewDomainError("FORBIDDEN", "Invoices cannot be deleted")
)
