package handler

import (
	"github.com/erp/invoicing/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
)

// PDFStatusResponse reports whether a stored PDF exists
type PDFStatusResponse struct {
	Generated bool `json:"generated"`
}

// PDFHandler serves rendered and stored invoice PDFs
type PDFHandler struct {
	BaseHandler
	pdfs PDFProvider
}

// NewPDFHandler creates a new PDFHandler
func NewPDFHandler(pdfs PDFProvider) *PDFHandler {
	return &PDFHandler{pdfs: pdfs}
}

// Generate godoc
// @ID           generateInvoicePDF
//
//	@Summary		Generate and store the PDF of an invoice
//	@Tags			invoice-pdf
//	@Produce		json
//	@Param			id	path		int	true	"Invoice ID"
//	@Success		201	{object}	APIResponse[dto.PDFGeneratedResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Failure		502	{object}	ErrorResponse
//	@Router			/invoices/{id}/pdf/generate [post]
func (h *PDFHandler) Generate(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	name, err := h.pdfs.Generate(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, dto.PDFGeneratedResponse{FileName: name})
}

// Status godoc
// @ID           getInvoicePDFStatus
//
//	@Summary		Check whether a PDF was generated
//	@Tags			invoice-pdf
//	@Produce		json
//	@Param			id	path		int	true	"Invoice ID"
//	@Success		200	{object}	APIResponse[PDFStatusResponse]
//	@Failure		404	{object}	ErrorResponse
//	@Router			/invoices/{id}/pdf [get]
func (h *PDFHandler) Status(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	generated, err := h.pdfs.IsGenerated(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, PDFStatusResponse{Generated: generated})
}

// Download godoc
// @ID           downloadInvoicePDF
//
//	@Summary		Download the stored PDF of an invoice
//	@Tags			invoice-pdf
//	@Produce		application/pdf
//	@Param			id	path		int	true	"Invoice ID"
//	@Success		200	{file}		binary
//	@Failure		404	{object}	ErrorResponse
//	@Router			/invoices/{id}/pdf/download [get]
func (h *PDFHandler) Download(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}

	data, name, err := h.pdfs.Download(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendPDF(c, name, data, false)
}

// ByInvoiceID godoc
// @ID           viewInvoicePDF
//
//	@Summary		View an invoice PDF by its identifier
//	@Description	Renders the PDF on demand for the recipient link in invoice emails
//	@Tags			invoice-pdf
//	@Produce		application/pdf
//	@Param			invoice_id	path		string	true	"Invoice identifier"
//	@Success		200			{file}		binary
//	@Failure		404			{object}	ErrorResponse
//	@Failure		429			{object}	ErrorResponse
//	@Router			/invoices/by-number/{invoice_id}/pdf [get]
func (h *PDFHandler) ByInvoiceID(c *gin.Context) {
	invoiceID := c.Param("invoice_id")
	if invoiceID == "" {
		h.BadRequest(c, "Invalid invoice_id")
		return
	}

	data, name, err := h.pdfs.RenderByInvoiceID(c.Request.Context(), invoiceID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.sendPDF(c, name, data, true)
}
