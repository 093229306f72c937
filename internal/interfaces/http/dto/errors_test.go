package dto

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeConcurrencyConflict, http.StatusConflict},
		{ErrCodeIdentifierImmutable, http.StatusUnprocessableEntity},
		{ErrCodeAlreadyCreditNote, http.StatusUnprocessableEntity},
		{ErrCodeDuplicateCreditNote, http.StatusConflict},
		{ErrCodeRecipientUnresolved, http.StatusUnprocessableEntity},
		{ErrCodePDFNotGenerated, http.StatusNotFound},
		{ErrCodeRenderFailed, http.StatusBadGateway},
		{ErrCodeDeliveryFailed, http.StatusBadGateway},
		{ErrCodeNoData, http.StatusUnprocessableEntity},
		{ErrCodeGatherFailed, http.StatusInternalServerError},
		{"INVALID_COST_CODE", http.StatusBadRequest},
		{"ITEM_NOT_FOUND", http.StatusNotFound},
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode_DomainSentinels(t *testing.T) {
	tests := []struct {
		err      *shared.DomainError
		expected string
	}{
		{shared.ErrNotFound, ErrCodeNotFound},
		{shared.ErrInvalidInput, ErrCodeInvalidInput},
		{invoicing.ErrPermissionDenied, ErrCodeForbidden},
		{invoicing.ErrIdentifierImmutable, ErrCodeIdentifierImmutable},
		{invoicing.ErrAllocationOrdering, ErrCodeAllocationOrdering},
		{invoicing.ErrAlreadyCreditNote, ErrCodeAlreadyCreditNote},
		{invoicing.ErrDuplicateCreditNote, ErrCodeDuplicateCreditNote},
		{invoicing.ErrRecipientUnresolved, ErrCodeRecipientUnresolved},
		{invoicing.ErrPDFNotGenerated, ErrCodePDFNotGenerated},
		{invoicing.ErrRender, ErrCodeRenderFailed},
		{invoicing.ErrDelivery, ErrCodeDeliveryFailed},
		{invoicing.ErrNoData, ErrCodeNoData},
		{invoicing.ErrGather, ErrCodeGatherFailed},
	}

	for _, tt := range tests {
		t.Run(tt.err.Code, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.err.Code))
		})
	}

	assert.Equal(t, ErrCodeNotFound, NormalizeErrorCode(ErrCodeNotFound), "API codes pass through")
	assert.Equal(t, "SOMETHING_ELSE", NormalizeErrorCode("SOMETHING_ELSE"))
}

func TestEveryMappedCodeHasStatus(t *testing.T) {
	for domainCode, apiCode := range DomainErrorCodeMapping {
		_, ok := ErrorCodeHTTPStatus[apiCode]
		assert.True(t, ok, "no status for %s (from %s)", apiCode, domainCode)
	}
}

func TestValidationErrorResponse_JSON(t *testing.T) {
	resp := NewValidationErrorResponse("Request validation failed", "req-1", []ValidationDetail{
		{Field: "recipient_id", Message: "This field is required"},
	})

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, false, decoded["success"])
	errInfo := decoded["error"].(map[string]any)
	assert.Equal(t, ErrCodeValidation, errInfo["code"])
	assert.Equal(t, "req-1", errInfo["request_id"])
	assert.Len(t, errInfo["details"], 1)
	assert.NotContains(t, decoded, "data")
}
