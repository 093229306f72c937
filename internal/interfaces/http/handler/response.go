package handler

import (
	appinv "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/erp/invoicing/internal/interfaces/http/dto"
)

// The types below only describe response bodies in the swag annotations.
// Handlers write dto.Response.

// APIResponse is the success envelope with a typed payload
type APIResponse[T any] struct {
	Success bool           `json:"success"`
	Data    T              `json:"data,omitempty"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
	Meta    *dto.Meta      `json:"meta,omitempty"`
}

// ErrorResponse is the failure envelope
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error,omitempty"`
}

type (
	InvoiceEnvelope     = APIResponse[appinv.InvoiceResponse]
	InvoiceListEnvelope = APIResponse[[]appinv.InvoiceResponse]
)
