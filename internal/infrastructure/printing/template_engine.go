package printing

import (
	"bytes"
	htmltemplate "html/template"
	"maps"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine renders invoice and email templates with a shared set of
// formatting functions. HTML output goes through html/template escaping,
// plain text through text/template.
type TemplateEngine struct {
	funcs map[string]any
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithCurrencySymbol sets the symbol formatMoney falls back to when an
// invoice has no currency
func WithCurrencySymbol(symbol string) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.funcs["formatMoney"] = func(v any, currency *invoicing.Currency) string {
			return invoicing.FormatAmount(toDecimal(v), currency, symbol)
		}
	}
}

// WithFuncs adds or replaces template functions
func WithFuncs(funcs map[string]any) TemplateEngineOption {
	return func(e *TemplateEngine) {
		maps.Copy(e.funcs, funcs)
	}
}

// NewTemplateEngine creates a new template engine with default configuration
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{}
	e.funcs = map[string]any{
		// Money and numbers
		"formatMoney": func(v any, currency *invoicing.Currency) string {
			return invoicing.FormatAmount(toDecimal(v), currency, "")
		},
		"formatMoneyRaw": formatMoneyRaw,
		"formatDecimal":  formatDecimal,

		// Dates
		"formatDate": formatDate,

		// Strings
		"truncate": truncate,
		"upper":    strings.ToUpper,
		"lower":    strings.ToLower,
		"title":    titleCase,
		"trim":     strings.TrimSpace,
		"lines":    lines,

		// Conditional
		"default": defaultFunc,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ParseHTML parses an HTML template with the engine functions
func (e *TemplateEngine) ParseHTML(name, content string) (*htmltemplate.Template, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}
	tmpl, err := htmltemplate.New(name).Funcs(htmltemplate.FuncMap(e.funcs)).Parse(content)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "failed to parse template "+name, err)
	}
	return tmpl, nil
}

// ParseText parses a plain text template with the engine functions
func (e *TemplateEngine) ParseText(name, content string) (*texttemplate.Template, error) {
	if strings.TrimSpace(content) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "template content is empty", nil)
	}
	tmpl, err := texttemplate.New(name).Funcs(texttemplate.FuncMap(e.funcs)).Parse(content)
	if err != nil {
		return nil, NewRenderError(ErrCodeTemplateFailed, "failed to parse template "+name, err)
	}
	return tmpl, nil
}

// RenderString parses and executes an HTML template in one step
func (e *TemplateEngine) RenderString(name, content string, data any) (string, error) {
	tmpl, err := e.ParseHTML(name, content)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeTemplateFailed, "failed to execute template", err)
	}
	return buf.String(), nil
}

// formatMoneyRaw formats a decimal with thousand separators and two places
// Example: 1234.5 -> "1,234.50"
func formatMoneyRaw(v any) string {
	d := toDecimal(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	intPart, decPart, _ := strings.Cut(d.StringFixed(2), ".")

	var result strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}
	return sign + result.String() + "." + decPart
}

// formatDecimal formats a decimal with specified precision
func formatDecimal(v any, precision int) string {
	return toDecimal(v).StringFixed(int32(precision))
}

// formatDate formats a time value as date string
func formatDate(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

// truncate shortens s to max runes including the suffix
func truncate(s string, max int, suffix ...string) string {
	suf := "..."
	if len(suffix) > 0 {
		suf = suffix[0]
	}
	runes := []rune(s)
	sufRunes := []rune(suf)
	if len(runes) <= max {
		return s
	}
	if max <= len(sufRunes) {
		return string(sufRunes[:max])
	}
	return string(runes[:max-len(sufRunes)]) + suf
}

// titleCase converts string to title case using proper Unicode handling
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// lines splits a multi-line address into its non-empty lines
func lines(s string) []string {
	out := make([]string, 0)
	for _, l := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

func defaultFunc(val, def any) any {
	if s, ok := val.(string); ok && s == "" {
		return def
	}
	if val == nil {
		return def
	}
	return val
}

func toDecimal(v any) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero
		}
		return *val
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

func toTime(v any) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case *time.Time:
		if val == nil {
			return time.Time{}
		}
		return *val
	case string:
		for _, f := range []string{time.RFC3339, time.DateTime, time.DateOnly} {
			if t, err := time.Parse(f, val); err == nil {
				return t
			}
		}
		return time.Time{}
	default:
		return time.Time{}
	}
}
