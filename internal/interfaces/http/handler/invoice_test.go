package handler

import (
	"net/http"
	"testing"
	"time"

	appinv "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupInvoiceRouter(m *MockInvoiceManager) *gin.Engine {
	h := NewInvoiceHandler(m, nil)
	r := newTestEngine()
	g := r.Group("/invoices")
	g.GET("", h.List)
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.GET("/:id/credit-note", h.GetCreditNote)
	g.POST("/:id/items", h.AddItem)
	g.PUT("/:id/items/:item_id", h.UpdateItem)
	g.DELETE("/:id/items/:item_id", h.RemoveItem)
	g.POST("/:id/payments", h.AddPayment)
	g.DELETE("/:id/payments/:payment_id", h.RemovePayment)
	return r
}

func TestInvoiceHandler_List(t *testing.T) {
	m := new(MockInvoiceManager)
	page := shared.NewPaginated([]invoicing.Invoice{*sampleInvoice(1), *sampleInvoice(2)}, 2, 1, 20)
	m.On("List", mock.Anything, mock.MatchedBy(func(f invoicing.InvoiceFilter) bool {
		return f.Search == "INV" &&
			f.IsPaid != nil && !*f.IsPaid &&
			f.InvoiceDate != nil && f.InvoiceDate.Equal(time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)) &&
			f.OrderBy == "invoice_date"
	})).Return(page, nil)

	w := doRequest(setupInvoiceRouter(m), http.MethodGet, "/invoices?search=INV&is_paid=false&invoice_date=2026-03-01", nil)

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode(t, w)
	items := resp.Data.([]any)
	assert.Len(t, items, 2)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(2), resp.Meta.Total)
	m.AssertExpectations(t)
}

func TestInvoiceHandler_List_InvalidDate(t *testing.T) {
	m := new(MockInvoiceManager)

	w := doRequest(setupInvoiceRouter(m), http.MethodGet, "/invoices?invoice_date=01/03/2026", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decode(t, w)
	assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "invoice_date", resp.Error.Details[0].Field)
	m.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestInvoiceHandler_Create(t *testing.T) {
	m := new(MockInvoiceManager)
	m.On("Create", mock.Anything, mock.MatchedBy(func(in appinv.CreateInvoiceInput) bool {
		return in.RecipientID == 7 &&
			in.InvoiceDate.IsZero() &&
			len(in.Items) == 1 &&
			in.Items[0].Quantity.Equal(decimal.NewFromInt(1)) &&
			in.Items[0].UnitPrice.Equal(decimal.RequireFromString("12.50"))
	})).Return(sampleInvoice(1), nil)

	body := map[string]any{
		"recipient_id": 7,
		"items":        []map[string]any{{"description": "Hosting", "unit_price": "12.50"}},
	}
	w := doRequest(setupInvoiceRouter(m), http.MethodPost, "/invoices", body)

	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	data := dataMap(t, decode(t, w))
	assert.Equal(t, "INV000001", data["invoice_id"])
	assert.Equal(t, "6.67", data["total"])
	assert.Equal(t, "6.67", data["total_amount"])
	assert.Equal(t, "Acme", data["recipient_name"])
	m.AssertExpectations(t)
}

func TestInvoiceHandler_Create_Validation(t *testing.T) {
	tests := []struct {
		name string
		body any
		code string
	}{
		{"missing recipient", map[string]any{"draft": true}, dto.ErrCodeValidation},
		{"cost code too long", map[string]any{"recipient_id": 1, "cost_code": "ABCDEFGHIJK"}, dto.ErrCodeValidation},
		{"item without description", map[string]any{"recipient_id": 1, "items": []map[string]any{{"unit_price": "1"}}}, dto.ErrCodeValidation},
		{"malformed json", `{"recipient_id":`, dto.ErrCodeInvalidJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := new(MockInvoiceManager)
			w := doRequest(setupInvoiceRouter(m), http.MethodPost, "/invoices", tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Equal(t, tt.code, decode(t, w).Error.Code)
			m.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestInvoiceHandler_Create_UnknownRecipient(t *testing.T) {
	m := new(MockInvoiceManager)
	m.On("Create", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

	w := doRequest(setupInvoiceRouter(m), http.MethodPost, "/invoices", map[string]any{"recipient_id": 99})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestInvoiceHandler_Get(t *testing.T) {
	m := new(MockInvoiceManager)
	m.On("Get", mock.Anything, int64(3)).Return(sampleInvoice(3), nil)
	m.On("Get", mock.Anything, int64(4)).Return(nil, shared.ErrNotFound)
	r := setupInvoiceRouter(m)

	w := doRequest(r, http.MethodGet, "/invoices/3", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, decode(t, w))
	assert.Equal(t, float64(3), data["id"])
	assert.Equal(t, "2026-03-01", data["invoice_date"])
	assert.Equal(t, "none", data["export_state"])

	w = doRequest(r, http.MethodGet, "/invoices/4", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, dto.ErrCodeNotFound, decode(t, w).Error.Code)

	w = doRequest(r, http.MethodGet, "/invoices/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInvoiceHandler_Update(t *testing.T) {
	m := new(MockInvoiceManager)
	m.On("Update", mock.Anything, int64(3), mock.MatchedBy(func(in appinv.UpdateInvoiceInput) bool {
		return in.RecipientID == 7 && in.CostCode == "K1" &&
			in.InvoiceDate.Equal(time.Date(2026, 4, 2, 0, 0, 0, 0, time.UTC))
	})).Return(sampleInvoice(3), nil)
	r := setupInvoiceRouter(m)

	w := doRequest(r, http.MethodPut, "/invoices/3", map[string]any{
		"recipient_id": 7, "invoice_date": "2026-04-02", "cost_code": "K1",
	})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(r, http.MethodPut, "/invoices/3", map[string]any{"recipient_id": 7})
	assert.Equal(t, http.StatusBadRequest, w.Code, "invoice_date is required on update")
	m.AssertNumberOfCalls(t, "Update", 1)
}

func TestInvoiceHandler_Delete_AlwaysForbidden(t *testing.T) {
	m := new(MockInvoiceManager)
	m.On("Delete", mock.Anything, int64(3)).Return(invoicing.ErrPermissionDenied)

	w := doRequest(setupInvoiceRouter(m), http.MethodDelete, "/invoices/3", nil)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, dto.ErrCodeForbidden, decode(t, w).Error.Code)
}

func TestInvoiceHandler_GetCreditNote(t *testing.T) {
	m := new(MockInvoiceManager)
	note := sampleInvoice(9)
	note.IsCreditNote = true
	related := int64(3)
	note.RelatedInvoiceID = &related

	m.On("Get", mock.Anything, int64(3)).Return(sampleInvoice(3), nil)
	m.On("Get", mock.Anything, int64(5)).Return(sampleInvoice(5), nil)
	m.On("FindCreditNote", mock.Anything, int64(3)).Return(note, nil)
	m.On("FindCreditNote", mock.Anything, int64(5)).Return(nil, nil)
	r := setupInvoiceRouter(m)

	w := doRequest(r, http.MethodGet, "/invoices/3/credit-note", nil)
	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, decode(t, w))
	assert.Equal(t, true, data["is_credit_note"])
	assert.Equal(t, float64(3), data["related_invoice_id"])

	w = doRequest(r, http.MethodGet, "/invoices/5/credit-note", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Nil(t, decode(t, w).Data)
}

func TestInvoiceHandler_Items(t *testing.T) {
	m := new(MockInvoiceManager)
	m.On("AddItem", mock.Anything, int64(3), mock.MatchedBy(func(in appinv.ItemInput) bool {
		return in.Description == "Support" && in.Quantity.Equal(decimal.NewFromInt(3))
	})).Return(sampleInvoice(3), nil)
	m.On("UpdateItem", mock.Anything, int64(3), int64(11), mock.Anything).Return(sampleInvoice(3), nil)
	m.On("RemoveItem", mock.Anything, int64(3), int64(12)).Return(nil, shared.NewDomainError("ITEM_NOT_FOUND", "Line item not found"))
	r := setupInvoiceRouter(m)

	w := doRequest(r, http.MethodPost, "/invoices/3/items", map[string]any{"description": "Support", "unit_price": "10", "quantity": "3"})
	assert.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = doRequest(r, http.MethodPut, "/invoices/3/items/11", map[string]any{"description": "Support", "unit_price": "10"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doRequest(r, http.MethodDelete, "/invoices/3/items/12", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "ITEM_NOT_FOUND", decode(t, w).Error.Code)

	m.AssertExpectations(t)
}

func TestInvoiceHandler_Payments(t *testing.T) {
	m := new(MockInvoiceManager)
	paid := sampleInvoice(3)
	paid.IsPaid = true
	m.On("AddPayment", mock.Anything, int64(3), mock.MatchedBy(func(in appinv.PaymentInput) bool {
		return in.Amount.Equal(decimal.RequireFromString("6.67")) &&
			in.Method == invoicing.PaymentMethod("bank_transfer") &&
			in.PaidDate != nil
	})).Return(paid, nil)
	m.On("RemovePayment", mock.Anything, int64(3), int64(21)).Return(sampleInvoice(3), nil)
	r := setupInvoiceRouter(m)

	w := doRequest(r, http.MethodPost, "/invoices/3/payments", map[string]any{
		"amount": "6.67", "paid_date": "2026-03-05", "method": "bank_transfer",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.Equal(t, true, dataMap(t, decode(t, w))["is_paid"])

	w = doRequest(r, http.MethodPost, "/invoices/3/payments", map[string]any{"amount": "1", "method": "cash"})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doRequest(r, http.MethodDelete, "/invoices/3/payments/21", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	m.AssertExpectations(t)
}
