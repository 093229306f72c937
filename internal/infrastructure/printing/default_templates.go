package printing

import (
	"embed"
	"fmt"
	"os"
)

//go:embed templates/*.html templates/*.txt
var templateFS embed.FS

// Embedded template paths
const (
	InvoiceTemplatePath   = "templates/invoice.html"
	EmailTextTemplatePath = "templates/email_body.txt"
	EmailHTMLTemplatePath = "templates/email_body.html"
)

// LoadTemplateContent loads an embedded template
func LoadTemplateContent(filePath string) (string, error) {
	content, err := templateFS.ReadFile(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", filePath, err)
	}
	return string(content), nil
}

// LoadTemplateOverride reads a template from disk when path is set and falls
// back to the embedded default otherwise
func LoadTemplateOverride(path, fallback string) (string, error) {
	if path == "" {
		return LoadTemplateContent(fallback)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read template file %s: %w", path, err)
	}
	return string(content), nil
}
