package handler

import (
	"errors"
	"io"

	appinv "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/erp/invoicing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// InvoiceActionHandler handles sending and credit note actions
type InvoiceActionHandler struct {
	BaseHandler
	sender      InvoiceSender
	creditNotes CreditNoteIssuer
	formatter   appinv.AmountFormatter
}

// NewInvoiceActionHandler creates a new InvoiceActionHandler
func NewInvoiceActionHandler(sender InvoiceSender, creditNotes CreditNoteIssuer, formatter appinv.AmountFormatter) *InvoiceActionHandler {
	return &InvoiceActionHandler{sender: sender, creditNotes: creditNotes, formatter: formatter}
}

// Send godoc
// @ID           sendInvoice
//
//	@Summary		Email an invoice
//	@Description	Renders the PDF, emails it and marks the invoice invoiced. The body is optional.
//	@Tags			invoice-actions
//	@Accept			json
//	@Produce		json
//	@Param			id		path		int					true	"Invoice ID"
//	@Param			request	body		dto.SendRequest		false	"Recipient and subject overrides"
//	@Success		200		{object}	APIResponse[dto.SendResponse]
//	@Failure		404		{object}	ErrorResponse
//	@Failure		422		{object}	ErrorResponse
//	@Failure		502		{object}	ErrorResponse
//	@Router			/invoices/{id}/send [post]
func (h *InvoiceActionHandler) Send(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req dto.SendRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.bindError(c, err)
		return
	}

	result, err := h.sender.Send(c.Request.Context(), appinv.SendCommand{
		InvoiceID: id,
		ToEmail:   req.To,
		Subject:   req.Subject,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if !result.Sent {
		h.HandleError(c, result.Reason)
		return
	}

	resp := dto.SendResponse{Sent: true, To: result.To, Reference: result.Reference}
	if result.Invoice != nil {
		inv := appinv.ToInvoiceResponse(result.Invoice, h.formatter)
		resp.Invoice = &inv
	}
	h.Success(c, resp)
}

// SendBatch godoc
// @ID           sendInvoices
//
//	@Summary		Email several invoices
//	@Description	Invoices that cannot be sent are reported and skipped
//	@Tags			invoice-actions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.BatchRequest	true	"Invoice IDs"
//	@Success		200		{object}	APIResponse[dto.BatchResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/invoices/actions/send [post]
func (h *InvoiceActionHandler) SendBatch(c *gin.Context) {
	var req dto.BatchRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result := h.sender.SendBatch(c.Request.Context(), req.IDs)
	h.Success(c, dto.NewBatchResponse(result, h.formatter, ErrorCode))
}

// SendDue godoc
// @ID           sendDueInvoices
//
//	@Summary		Email every due invoice
//	@Description	Sends invoices dated today or earlier that are neither drafts nor invoiced
//	@Tags			invoice-actions
//	@Produce		json
//	@Success		200	{object}	APIResponse[dto.BatchResponse]
//	@Failure		500	{object}	ErrorResponse
//	@Router			/invoices/actions/send-due [post]
func (h *InvoiceActionHandler) SendDue(c *gin.Context) {
	result, err := h.sender.SendDue(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dto.NewBatchResponse(result, h.formatter, ErrorCode))
}

// IssueCreditNote godoc
// @ID           issueCreditNote
//
//	@Summary		Issue a credit note
//	@Description	Creates the credit note of an invoice. An invoice has at most one credit note.
//	@Tags			invoice-actions
//	@Produce		json
//	@Param			id	path		int	true	"Original invoice ID"
//	@Success		201	{object}	InvoiceEnvelope
//	@Failure		404	{object}	ErrorResponse
//	@Failure		409	{object}	ErrorResponse
//	@Failure		422	{object}	ErrorResponse
//	@Router			/invoices/{id}/credit-note [post]
func (h *InvoiceActionHandler) IssueCreditNote(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	note, err := h.creditNotes.Issue(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, appinv.ToInvoiceResponse(note, h.formatter))
}

// IssueCreditNotes godoc
// @ID           issueCreditNotes
//
//	@Summary		Issue credit notes for several invoices
//	@Description	Invoices that are credit notes or already credited are reported and skipped
//	@Tags			invoice-actions
//	@Accept			json
//	@Produce		json
//	@Param			request	body		dto.BatchRequest	true	"Invoice IDs"
//	@Success		200		{object}	APIResponse[dto.BatchResponse]
//	@Failure		400		{object}	ErrorResponse
//	@Router			/invoices/actions/credit-notes [post]
func (h *InvoiceActionHandler) IssueCreditNotes(c *gin.Context) {
	var req dto.BatchRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result := h.creditNotes.IssueBatch(c.Request.Context(), req.IDs)
	h.Success(c, dto.NewBatchResponse(result, h.formatter, ErrorCode))
}
