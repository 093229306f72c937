// Package printing renders invoices to PDF and composes invoice emails.
//
// This package contains:
// - PDFEngine, the HTML to PDF contract, with a chromedp implementation
// - HTMLInvoiceRenderer, which fills the invoice template and hands it to an engine
// - FPDFRenderer, which draws the invoice directly and needs no browser
// - FileSystemPDFStore for generated invoice files
// - EmailComposer for the text and HTML bodies of invoice emails
//
// Example usage:
//
//	engine, err := NewChromedpRenderer(&ChromedpConfig{NoSandbox: true})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	renderer, err := NewHTMLInvoiceRenderer(engine, InvoiceRendererConfig{SiteName: "Acme"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	pdf, err := renderer.Render(ctx, invoice)
package printing
