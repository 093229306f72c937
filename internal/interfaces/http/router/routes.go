package router

import (
	"github.com/erp/invoicing/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
)

// Handlers groups the admin API handlers
type Handlers struct {
	Invoices   *handler.InvoiceHandler
	Actions    *handler.InvoiceActionHandler
	PDFs       *handler.PDFHandler
	Exports    *handler.ExportHandler
	Currencies *handler.CurrencyHandler
	Recipients *handler.RecipientHandler
	System     *handler.SystemHandler
}

// InvoicingRoutes builds the route groups of the admin API. publicPDF runs
// in front of the recipient-facing PDF route, typically a rate limiter.
func InvoicingRoutes(h Handlers, publicPDF ...gin.HandlerFunc) []RouteRegistrar {
	invoices := NewDomainGroup("invoices", "/invoices")
	invoices.
		GET("", h.Invoices.List).
		POST("", h.Invoices.Create).
		GET("/:id", h.Invoices.Get).
		PUT("/:id", h.Invoices.Update).
		DELETE("/:id", h.Invoices.Delete).
		GET("/:id/credit-note", h.Invoices.GetCreditNote).
		POST("/:id/items", h.Invoices.AddItem).
		PUT("/:id/items/:item_id", h.Invoices.UpdateItem).
		DELETE("/:id/items/:item_id", h.Invoices.RemoveItem).
		POST("/:id/payments", h.Invoices.AddPayment).
		DELETE("/:id/payments/:payment_id", h.Invoices.RemovePayment)

	invoices.
		POST("/:id/send", h.Actions.Send).
		POST("/:id/credit-note", h.Actions.IssueCreditNote)
	invoices.Group("invoice-actions", "/actions").
		POST("/send", h.Actions.SendBatch).
		POST("/send-due", h.Actions.SendDue).
		POST("/credit-notes", h.Actions.IssueCreditNotes)

	invoices.
		GET("/:id/pdf", h.PDFs.Status).
		POST("/:id/pdf/generate", h.PDFs.Generate).
		GET("/:id/pdf/download", h.PDFs.Download).
		GET("/by-number/:invoice_id/pdf", append(append([]gin.HandlerFunc{}, publicPDF...), h.PDFs.ByInvoiceID)...)

	exports := NewDomainGroup("exports", "/exports").
		POST("", h.Exports.Run).
		GET("", h.Exports.List)

	currencies := NewDomainGroup("currencies", "/currencies").
		GET("", h.Currencies.List).
		POST("", h.Currencies.Create).
		GET("/:id", h.Currencies.Get).
		PUT("/:id", h.Currencies.Update).
		DELETE("/:id", h.Currencies.Delete)

	recipients := NewDomainGroup("recipients", "/recipients").
		GET("", h.Recipients.List).
		POST("", h.Recipients.Create).
		GET("/:id", h.Recipients.Get).
		PUT("/:id", h.Recipients.Update).
		DELETE("/:id", h.Recipients.Delete)

	registrars := []RouteRegistrar{invoices, exports, currencies, recipients}
	if h.System != nil {
		system := NewDomainGroup("system", "/system").
			GET("/info", h.System.GetSystemInfo).
			GET("/ping", h.System.Ping)
		registrars = append(registrars, system)
	}
	return registrars
}
