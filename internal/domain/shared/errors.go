package shared

// DomainError is a business rule failure identified by a stable code.
// The HTTP layer maps codes to status codes.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// Is compares codes, so a record specific error such as
// NewDomainError("NOT_FOUND", "Invoice 42 not found") matches ErrNotFound.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Code == t.Code
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Record not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Record already exists")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "Invalid input")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Record was changed concurrently, reload and retry")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Operation not permitted")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in the current state")
)
