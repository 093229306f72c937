package dto

import (
	"net/http"
	"strings"
)

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	ErrCodeUnknown  = "ERR_UNKNOWN"
	ErrCodeInternal = "ERR_INTERNAL"
)

// Validation and input error codes
const (
	ErrCodeValidation   = "ERR_VALIDATION"
	ErrCodeBadRequest   = "ERR_BAD_REQUEST"
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	ErrCodeInvalidJSON  = "ERR_INVALID_JSON"
	ErrCodeTooLarge     = "ERR_REQUEST_TOO_LARGE"
	ErrCodeRateLimited  = "ERR_RATE_LIMITED"
)

// Resource error codes
const (
	ErrCodeForbidden           = "ERR_FORBIDDEN"
	ErrCodeNotFound            = "ERR_NOT_FOUND"
	ErrCodeAlreadyExists       = "ERR_ALREADY_EXISTS"
	ErrCodeConflict            = "ERR_CONFLICT"
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	ErrCodeInvalidState        = "ERR_INVALID_STATE"
)

// Invoicing error codes
const (
	// ErrCodeIdentifierImmutable is used when an assigned invoice identifier would change
	ErrCodeIdentifierImmutable = "ERR_INVOICE_IDENTIFIER_IMMUTABLE"
	// ErrCodeAllocationOrdering signals an identifier requested before persistence
	ErrCodeAllocationOrdering  = "ERR_INVOICE_ALLOCATION_ORDERING"
	ErrCodeAlreadyCreditNote   = "ERR_INVOICE_ALREADY_CREDIT_NOTE"
	ErrCodeDuplicateCreditNote = "ERR_INVOICE_DUPLICATE_CREDIT_NOTE"
	ErrCodeRecipientUnresolved = "ERR_INVOICE_RECIPIENT_UNRESOLVED"
	ErrCodePDFNotGenerated     = "ERR_INVOICE_PDF_NOT_GENERATED"
	ErrCodeRenderFailed        = "ERR_RENDER_FAILED"
	ErrCodeDeliveryFailed      = "ERR_DELIVERY_FAILED"
	ErrCodeNoData              = "ERR_EXPORT_NO_DATA"
	ErrCodeGatherFailed        = "ERR_EXPORT_GATHER_FAILED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeValidation:   http.StatusBadRequest,
	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeInvalidJSON:  http.StatusBadRequest,
	ErrCodeTooLarge:     http.StatusRequestEntityTooLarge,
	ErrCodeRateLimited:  http.StatusTooManyRequests,

	ErrCodeForbidden:           http.StatusForbidden,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeInvalidState:        http.StatusUnprocessableEntity,

	ErrCodeIdentifierImmutable: http.StatusUnprocessableEntity,
	ErrCodeAllocationOrdering:  http.StatusInternalServerError,
	ErrCodeAlreadyCreditNote:   http.StatusUnprocessableEntity,
	ErrCodeDuplicateCreditNote: http.StatusConflict,
	ErrCodeRecipientUnresolved: http.StatusUnprocessableEntity,
	ErrCodePDFNotGenerated:     http.StatusNotFound,
	ErrCodeRenderFailed:        http.StatusBadGateway,
	ErrCodeDeliveryFailed:      http.StatusBadGateway,
	ErrCodeNoData:              http.StatusUnprocessableEntity,
	ErrCodeGatherFailed:        http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unmapped INVALID_* validation codes answer 400 and *_NOT_FOUND codes 404;
// anything else is a 500.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	switch {
	case strings.HasPrefix(code, "INVALID_"):
		return http.StatusBadRequest
	case strings.HasSuffix(code, "_NOT_FOUND"):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

// DomainErrorCodeMapping maps domain error codes to API error codes
var DomainErrorCodeMapping = map[string]string{
	"NOT_FOUND":             ErrCodeNotFound,
	"ALREADY_EXISTS":        ErrCodeAlreadyExists,
	"INVALID_INPUT":         ErrCodeInvalidInput,
	"INVALID_STATE":         ErrCodeInvalidState,
	"FORBIDDEN":             ErrCodeForbidden,
	"CONCURRENCY_CONFLICT":  ErrCodeConcurrencyConflict,
	"IDENTIFIER_IMMUTABLE":  ErrCodeIdentifierImmutable,
	"ALLOCATION_ORDERING":   ErrCodeAllocationOrdering,
	"ALREADY_CREDIT_NOTE":   ErrCodeAlreadyCreditNote,
	"DUPLICATE_CREDIT_NOTE": ErrCodeDuplicateCreditNote,
	"RECIPIENT_UNRESOLVED":  ErrCodeRecipientUnresolved,
	"PDF_NOT_GENERATED":     ErrCodePDFNotGenerated,
	"RENDER_FAILED":         ErrCodeRenderFailed,
	"DELIVERY_FAILED":       ErrCodeDeliveryFailed,
	"NO_DATA":               ErrCodeNoData,
	"GATHER_FAILED":         ErrCodeGatherFailed,
}

// NormalizeErrorCode converts a domain error code to the API format
// If the code is already in the API format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if apiCode, ok := DomainErrorCodeMapping[code]; ok {
		return apiCode
	}
	return code
}
