package printing

import (
	"bytes"
	"context"
	"fmt"

	appinv "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FPDFRendererConfig configures the built-in PDF layout
type FPDFRendererConfig struct {
	SiteName       string
	CurrencySymbol string
	Logger         *zap.Logger
}

// FPDFRenderer draws invoices directly with go-pdf/fpdf. It needs no browser
// and serves deployments without Chrome.
type FPDFRenderer struct {
	config FPDFRendererConfig
	logger *zap.Logger
}

// NewFPDFRenderer creates a new fpdf based renderer
func NewFPDFRenderer(config FPDFRendererConfig) *FPDFRenderer {
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FPDFRenderer{config: config, logger: logger}
}

// FormatAmount implements appinv.Renderer
func (r *FPDFRenderer) FormatAmount(amount decimal.Decimal, currency *invoicing.Currency) string {
	return invoicing.FormatAmount(amount, currency, r.config.CurrencySymbol)
}

// Render implements appinv.Renderer. Document dates come from the invoice so
// equal invoice states give equal bytes.
func (r *FPDFRenderer) Render(ctx context.Context, inv *invoicing.Invoice) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, NewRenderError(ErrCodeRenderTimeout, "PDF rendering was cancelled", err)
	}
	view := newInvoiceView(inv, r.config.SiteName, r.FormatAmount)

	pdf := fpdf.New("P", "mm", "A4", "")
	stamp := inv.UpdatedAt
	if stamp.IsZero() {
		stamp = inv.InvoiceDate
	}
	pdf.SetCatalogSort(true)
	pdf.SetCreationDate(stamp)
	pdf.SetModificationDate(stamp)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(view.Title, true)
	pdf.SetAuthor(view.SiteName, true)
	pdf.SetMargins(15, 15, 15)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-12)
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(0, 5, fmt.Sprintf("%d / {nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AliasNbPages("")
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 30

	// Header
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(contentW*0.6, 9, tr(view.Title), "", 0, "L", false, 0, "")
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(contentW*0.4, 9, tr(view.SiteName), "", 1, "R", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 5, "Date: "+formatDate(inv.InvoiceDate), "", 1, "L", false, 0, "")
	if inv.CostCode != "" {
		pdf.CellFormat(contentW, 5, tr("Cost code: "+inv.CostCode), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	if inv.Recipient != nil {
		pdf.CellFormat(contentW, 5, tr(inv.Recipient.Name), "", 1, "L", false, 0, "")
		for _, line := range lines(inv.Recipient.Address) {
			pdf.CellFormat(contentW, 5, tr(line), "", 1, "L", false, 0, "")
		}
		pdf.Ln(6)
	}

	// Items
	col1 := contentW * 0.52
	col2 := contentW * 0.16
	col3 := contentW * 0.12
	col4 := contentW * 0.20

	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(col1, 7, "Description", "B", 0, "L", false, 0, "")
	pdf.CellFormat(col2, 7, "Unit price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col3, 7, "Quantity", "B", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, "Total", "B", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range view.Items {
		pdf.CellFormat(col1, 6, tr(truncate(item.Description, 60)), "", 0, "L", false, 0, "")
		pdf.CellFormat(col2, 6, tr(item.UnitPrice), "", 0, "R", false, 0, "")
		pdf.CellFormat(col3, 6, item.Quantity, "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, tr(item.Total), "", 1, "R", false, 0, "")
	}

	pdf.Ln(2)
	pdf.Line(15, pdf.GetY(), pageW-15, pdf.GetY())
	pdf.Ln(2)

	// Totals
	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(col1+col2+col3, 7, "Total", "", 0, "R", false, 0, "")
	pdf.CellFormat(col4, 7, tr(view.Total), "", 1, "R", false, 0, "")
	if view.HasPayments {
		pdf.SetFont("Helvetica", "", 10)
		pdf.CellFormat(col1+col2+col3, 6, "Paid", "", 0, "R", false, 0, "")
		pdf.CellFormat(col4, 6, tr(view.PaymentsTotal), "", 1, "R", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 9)
	switch {
	case inv.IsCreditNote:
		pdf.CellFormat(contentW, 5, "This credit note cancels invoice "+view.RelatedInvoice+".", "", 1, "L", false, 0, "")
	case inv.IsPaid:
		pdf.CellFormat(contentW, 5, "Paid in full. Thank you.", "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		r.logger.Error("fpdf rendering failed", zap.Int64("invoice_pk", inv.ID), zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "fpdf output failed", err)
	}
	return buf.Bytes(), nil
}

var _ appinv.Renderer = (*FPDFRenderer)(nil)
