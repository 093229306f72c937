package handler

import (
	"net/http"

	appinv "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// InvoiceHandler handles invoice, line item and payment endpoints
type InvoiceHandler struct {
	BaseHandler
	invoices  InvoiceManager
	formatter appinv.AmountFormatter
}

// NewInvoiceHandler creates a new InvoiceHandler. formatter renders the
// display total and may be nil.
func NewInvoiceHandler(invoices InvoiceManager, formatter appinv.AmountFormatter) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices, formatter: formatter}
}

func (h *InvoiceHandler) respond(c *gin.Context, inv *invoicing.Invoice) {
	h.Success(c, appinv.ToInvoiceResponse(inv, h.formatter))
}

// List godoc
// @ID           listInvoices
//
//	@Summary		List invoices
//	@Description	List invoices, newest first, with optional filters
//	@Tags			invoices
//	@Produce		json
//	@Param			search			query		string	false	"Invoice identifier contains"
//	@Param			invoice_date	query		string	false	"Exact invoice date (YYYY-MM-DD)"
//	@Param			invoiced		query		bool	false	"Invoiced flag"
//	@Param			is_credit_note	query		bool	false	"Credit note flag"
//	@Param			is_paid			query		bool	false	"Paid flag"
//	@Param			page			query		int		false	"Page number"
//	@Param			page_size		query		int		false	"Page size"
//	@Success		200				{object}	InvoiceListEnvelope
//	@Failure		400				{object}	ErrorResponse
//	@Router			/invoices [get]
func (h *InvoiceHandler) List(c *gin.Context) {
	var req dto.InvoiceListRequest
	if !h.bindQuery(c, &req) {
		return
	}

	page, err := h.invoices.List(c.Request.Context(), req.ToFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPageResponse(page, func(inv invoicing.Invoice) appinv.InvoiceResponse {
		return appinv.ToInvoiceResponse(&inv, h.formatter)
	}))
}

// Create godoc
// @ID           createInvoice
//
//	@Summary		Create an invoice
//	@Description	Create an invoice with optional line items; the identifier is allocated on save
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.CreateInvoiceRequest	true	"Invoice"
//	@Success		201		{object}	InvoiceEnvelope
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/invoices [post]
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	inv, err := h.invoices.Create(c.Request.Context(), req.ToInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, appinv.ToInvoiceResponse(inv, h.formatter))
}

// Get godoc
// @ID           getInvoice
//
//	@Summary		Get an invoice
//	@Tags			invoices
//	@Produce		json
//	@Param			id	path		int	true	"Invoice ID"
//	@Success		200	{object}	InvoiceEnvelope
//	@Failure		404	{object}	ErrorResponse
//	@Router			/invoices/{id} [get]
func (h *InvoiceHandler) Get(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	inv, err := h.invoices.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, inv)
}

// Update godoc
// @ID           updateInvoice
//
//	@Summary		Update an invoice
//	@Description	Update the editable attributes; the identifier never changes once assigned
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int							true	"Invoice ID"
//	@Param			request	body		dto.UpdateInvoiceRequest	true	"Invoice"
//	@Success		200		{object}	InvoiceEnvelope
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/invoices/{id} [put]
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateInvoiceRequest
	if !h.bindJSON(c, &req) {
		return
	}

	inv, err := h.invoices.Update(c.Request.Context(), id, req.ToInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, inv)
}

// Delete godoc
// @ID           deleteInvoice
//
//	@Summary		Delete an invoice
//	@Description	Invoices are never deleted; always answers 403
//	@Tags			invoices
//	@Produce		json
//	@Param			id	path		int	true	"Invoice ID"
//	@Failure		403	{object}	ErrorResponse
//	@Router			/invoices/{id} [delete]
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.invoices.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// GetCreditNote godoc
// @ID           getInvoiceCreditNote
//
//	@Summary		Get the credit note of an invoice
//	@Description	Data is null when the invoice has no credit note
//	@Tags			invoices
//	@Produce		json
//	@Param			id	path		int	true	"Invoice ID"
//	@Success		200	{object}	InvoiceEnvelope
//	@Failure		404	{object}	ErrorResponse
//	@Router			/invoices/{id}/credit-note [get]
func (h *InvoiceHandler) GetCreditNote(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	ctx := c.Request.Context()
	if _, err := h.invoices.Get(ctx, id); err != nil {
		h.HandleError(c, err)
		return
	}

	note, err := h.invoices.FindCreditNote(ctx, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if note == nil {
		h.Success(c, nil)
		return
	}
	h.respond(c, note)
}

// AddItem godoc
// @ID           addInvoiceItem
//
//	@Summary		Add a line item
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Invoice ID"
//	@Param			request	body		dto.ItemRequest		true	"Line item"
//	@Success		201		{object}	InvoiceEnvelope
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/invoices/{id}/items [post]
func (h *InvoiceHandler) AddItem(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.ItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	inv, err := h.invoices.AddItem(c.Request.Context(), id, req.ToInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, appinv.ToInvoiceResponse(inv, h.formatter))
}

// UpdateItem godoc
// @ID           updateInvoiceItem
//
//	@Summary		Update a line item
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int				true	"Invoice ID"
//	@Param			item_id	path		int				true	"Line item ID"
//	@Param			request	body		dto.ItemRequest	true	"Line item"
//	@Success		200		{object}	InvoiceEnvelope
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/invoices/{id}/items/{item_id} [put]
func (h *InvoiceHandler) UpdateItem(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "item_id")
	if !ok {
		return
	}
	var req dto.ItemRequest
	if !h.bindJSON(c, &req) {
		return
	}

	inv, err := h.invoices.UpdateItem(c.Request.Context(), id, itemID, req.ToInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, inv)
}

// RemoveItem godoc
// @ID           removeInvoiceItem
//
//	@Summary		Remove a line item
//	@Tags			invoices
//	@Produce		json
//	@Param			id		path		int	true	"Invoice ID"
//	@Param			item_id	path		int	true	"Line item ID"
//	@Success		200		{object}	InvoiceEnvelope
//	@Failure		404		{object}	ErrorResponse
//	@Router			/invoices/{id}/items/{item_id} [delete]
func (h *InvoiceHandler) RemoveItem(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "item_id")
	if !ok {
		return
	}

	inv, err := h.invoices.RemoveItem(c.Request.Context(), id, itemID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, inv)
}

// AddPayment godoc
// @ID           addInvoicePayment
//
//	@Summary		Record a payment
//	@Description	Records a payment; the paid flag is recomputed on save
//	@Tags			invoices
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Invoice ID"
//	@Param			request	body		dto.PaymentRequest	true	"Payment"
//	@Success		201		{object}	InvoiceEnvelope
//	@Failure		400		{object}	ErrorResponse
//	@Failure		404		{object}	ErrorResponse
//	@Router			/invoices/{id}/payments [post]
func (h *InvoiceHandler) AddPayment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.PaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}

	inv, err := h.invoices.AddPayment(c.Request.Context(), id, req.ToInput())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, appinv.ToInvoiceResponse(inv, h.formatter))
}

// RemovePayment godoc
// @ID           removeInvoicePayment
//
//	@Summary		Remove a payment
//	@Tags			invoices
//	@Produce		json
//	@Param			id			path		int	true	"Invoice ID"
//	@Param			payment_id	path		int	true	"Payment ID"
//	@Success		200			{object}	InvoiceEnvelope
//	@Failure		404			{object}	ErrorResponse
//	@Router			/invoices/{id}/payments/{payment_id} [delete]
func (h *InvoiceHandler) RemovePayment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	paymentID, ok := h.pathID(c, "payment_id")
	if !ok {
		return
	}

	inv, err := h.invoices.RemovePayment(c.Request.Context(), id, paymentID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.respond(c, inv)
}
