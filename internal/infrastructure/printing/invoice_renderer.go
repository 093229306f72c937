package printing

import (
	"bytes"
	"context"
	"fmt"
	htmltemplate "html/template"
	"strconv"
	"time"

	appinv "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// InvoiceRendererConfig configures invoice rendering
type InvoiceRendererConfig struct {
	SiteName string
	// CurrencySymbol is used for invoices without a currency
	CurrencySymbol string
	// Template overrides the embedded invoice template (optional)
	Template string
	Timeout  time.Duration
	Logger   *zap.Logger
}

// ItemView is a line item with display strings
type ItemView struct {
	Description string
	UnitPrice   string
	Quantity    string
	Total       string
}

// InvoiceView is the data bound to the invoice template
type InvoiceView struct {
	Invoice        *invoicing.Invoice
	Title          string
	SiteName       string
	Items          []ItemView
	Total          string
	PaymentsTotal  string
	HasPayments    bool
	RelatedInvoice string
}

// HTMLInvoiceRenderer fills the invoice template and prints it through a
// PDFEngine
type HTMLInvoiceRenderer struct {
	engine PDFEngine
	tmpl   *htmltemplate.Template
	config InvoiceRendererConfig
	logger *zap.Logger
}

// NewHTMLInvoiceRenderer parses the invoice template and returns a renderer
func NewHTMLInvoiceRenderer(engine PDFEngine, config InvoiceRendererConfig) (*HTMLInvoiceRenderer, error) {
	content := config.Template
	if content == "" {
		var err error
		if content, err = LoadTemplateContent(InvoiceTemplatePath); err != nil {
			return nil, err
		}
	}
	tmpl, err := NewTemplateEngine(WithCurrencySymbol(config.CurrencySymbol)).ParseHTML("invoice", content)
	if err != nil {
		return nil, err
	}
	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &HTMLInvoiceRenderer{
		engine: engine,
		tmpl:   tmpl,
		config: config,
		logger: logger,
	}, nil
}

// Render returns the PDF of inv. The output only depends on the invoice state.
func (r *HTMLInvoiceRenderer) Render(ctx context.Context, inv *invoicing.Invoice) ([]byte, error) {
	html, err := r.HTML(inv)
	if err != nil {
		return nil, err
	}
	result, err := r.engine.Render(ctx, &RenderRequest{
		HTML:       html,
		Title:      documentTitle(inv),
		Margins:    DefaultMargins(),
		FooterHTML: pageFooter,
		Timeout:    r.config.Timeout,
	})
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Invoice rendered",
		zap.Int64("invoice_pk", inv.ID),
		zap.String("invoice_id", inv.InvoiceID),
		zap.Int("pages", result.PageCount))
	return result.PDFData, nil
}

// HTML renders the invoice template
func (r *HTMLInvoiceRenderer) HTML(inv *invoicing.Invoice) (string, error) {
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, r.view(inv)); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to execute invoice template", err)
	}
	return buf.String(), nil
}

// FormatAmount implements the display rule shared with emails
func (r *HTMLInvoiceRenderer) FormatAmount(amount decimal.Decimal, currency *invoicing.Currency) string {
	return invoicing.FormatAmount(amount, currency, r.config.CurrencySymbol)
}

func (r *HTMLInvoiceRenderer) view(inv *invoicing.Invoice) InvoiceView {
	return newInvoiceView(inv, r.config.SiteName, r.FormatAmount)
}

func newInvoiceView(inv *invoicing.Invoice, siteName string, format func(decimal.Decimal, *invoicing.Currency) string) InvoiceView {
	view := InvoiceView{
		Invoice:       inv,
		Title:         documentTitle(inv),
		SiteName:      siteName,
		Total:         format(inv.Total(), inv.Currency),
		PaymentsTotal: format(inv.PaymentsTotal(), inv.Currency),
		HasPayments:   len(inv.Payments) > 0,
		Items: lo.Map(inv.Items, func(item invoicing.LineItem, _ int) ItemView {
			return ItemView{
				Description: item.Description,
				UnitPrice:   format(item.UnitPrice, inv.Currency),
				Quantity:    item.Quantity.String(),
				Total:       format(item.Total(), inv.Currency),
			}
		}),
	}
	if inv.RelatedInvoiceID != nil {
		view.RelatedInvoice = "#" + strconv.FormatInt(*inv.RelatedInvoiceID, 10)
	}
	return view
}

func documentTitle(inv *invoicing.Invoice) string {
	kind := "Invoice"
	if inv.IsCreditNote {
		kind = "Credit note"
	}
	if inv.InvoiceID == "" {
		return kind
	}
	return fmt.Sprintf("%s %s", kind, inv.InvoiceID)
}

const pageFooter = `<div style="font-size:8px;width:100%;text-align:center;">` +
	`<span class="pageNumber"></span> / <span class="totalPages"></span></div>`

var _ appinv.Renderer = (*HTMLInvoiceRenderer)(nil)
