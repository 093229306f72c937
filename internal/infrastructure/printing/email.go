package printing

import (
	"bytes"
	htmltemplate "html/template"
	texttemplate "text/template"

	appinv "github.com/erp/invoicing/internal/application/invoicing"
)

// EmailComposerConfig configures the invoice email bodies
type EmailComposerConfig struct {
	// TextTemplate and HTMLTemplate override the embedded bodies (optional)
	TextTemplate string
	HTMLTemplate string
	// LogoCID is the content ID of an inline logo attachment, if any
	LogoCID        string
	CurrencySymbol string
}

// EmailComposer renders invoice email bodies from templates
type EmailComposer struct {
	text    *texttemplate.Template
	html    *htmltemplate.Template
	logoCID string
}

type emailView struct {
	appinv.EmailContent
	LogoCID string
}

// NewEmailComposer parses the email templates
func NewEmailComposer(config EmailComposerConfig) (*EmailComposer, error) {
	engine := NewTemplateEngine(WithCurrencySymbol(config.CurrencySymbol))

	textContent := config.TextTemplate
	if textContent == "" {
		var err error
		if textContent, err = LoadTemplateContent(EmailTextTemplatePath); err != nil {
			return nil, err
		}
	}
	htmlContent := config.HTMLTemplate
	if htmlContent == "" {
		var err error
		if htmlContent, err = LoadTemplateContent(EmailHTMLTemplatePath); err != nil {
			return nil, err
		}
	}

	text, err := engine.ParseText("email_text", textContent)
	if err != nil {
		return nil, err
	}
	html, err := engine.ParseHTML("email_html", htmlContent)
	if err != nil {
		return nil, err
	}
	return &EmailComposer{text: text, html: html, logoCID: config.LogoCID}, nil
}

// Compose implements appinv.BodyComposer
func (c *EmailComposer) Compose(content appinv.EmailContent) (string, string, error) {
	view := emailView{EmailContent: content, LogoCID: c.logoCID}

	var text bytes.Buffer
	if err := c.text.Execute(&text, view); err != nil {
		return "", "", NewRenderError(ErrCodeTemplateFailed, "failed to execute email text template", err)
	}
	var html bytes.Buffer
	if err := c.html.Execute(&html, view); err != nil {
		return "", "", NewRenderError(ErrCodeTemplateFailed, "failed to execute email HTML template", err)
	}
	return text.String(), html.String(), nil
}

var _ appinv.BodyComposer = (*EmailComposer)(nil)
