package printing

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
)

const (
	defaultChromeTimeout = 30 * time.Second
	defaultScale         = 1.0
	// footerReserveMM keeps page footers clear of the line item table
	footerReserveMM = 10
)

// ChromedpConfig configures the headless Chrome engine
type ChromedpConfig struct {
	DefaultTimeout time.Duration
	// RemoteURL attaches to a running Chrome DevTools endpoint instead of
	// launching a local browser
	RemoteURL string
	// NoSandbox is needed when Chrome runs as root inside a container
	NoSandbox bool
	Scale     float64
	Logger    *zap.Logger
}

// ChromedpRenderer prints invoice HTML through Chrome's PrintToPDF. Each
// render opens a tab under one shared allocator.
type ChromedpRenderer struct {
	config      *ChromedpConfig
	logger      *zap.Logger
	allocCtx    context.Context
	allocCancel context.CancelFunc
}

func NewChromedpRenderer(config *ChromedpConfig) (*ChromedpRenderer, error) {
	cfg := ChromedpConfig{}
	if config != nil {
		cfg = *config
	}
	if cfg.DefaultTimeout == 0 {
		cfg.DefaultTimeout = defaultChromeTimeout
	}
	if cfg.Scale == 0 {
		cfg.Scale = defaultScale
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	r := &ChromedpRenderer{config: &cfg, logger: cfg.Logger}
	if cfg.RemoteURL != "" {
		r.allocCtx, r.allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
	} else {
		r.allocCtx, r.allocCancel = chromedp.NewExecAllocator(context.Background(), execOptions(cfg.NoSandbox)...)
	}
	return r, nil
}

func execOptions(noSandbox bool) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	opts = append(opts,
		chromedp.DisableGPU,
		chromedp.NoFirstRun,
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("font-render-hinting", "none"),
	)
	if noSandbox {
		opts = append(opts, chromedp.NoSandbox)
	}
	return opts
}

// Render prints req.HTML on A4 portrait pages
func (r *ChromedpRenderer) Render(ctx context.Context, req *RenderRequest) (*RenderResult, error) {
	if req == nil || strings.TrimSpace(req.HTML) == "" {
		return nil, NewRenderError(ErrCodeInvalidHTML, "nothing to render", nil)
	}

	timeout := req.Timeout
	if timeout == 0 {
		timeout = r.config.DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	tab, closeTab := chromedp.NewContext(r.allocCtx, chromedp.WithLogf(r.logger.Sugar().Debugf))
	defer closeTab()
	// a tab is not derived from ctx, so close it when ctx ends
	defer context.AfterFunc(ctx, closeTab)()

	started := time.Now()
	document := r.buildCompleteHTML(req)
	params := r.buildPrintParams(req)

	var pdf []byte
	err := chromedp.Run(tab,
		chromedp.Navigate("about:blank"),
		chromedp.ActionFunc(func(ctx context.Context) error {
			tree, err := page.GetFrameTree().Do(ctx)
			if err != nil {
				return err
			}
			return page.SetDocumentContent(tree.Frame.ID, document).Do(ctx)
		}),
		chromedp.ActionFunc(func(ctx context.Context) (err error) {
			pdf, _, err = params.Do(ctx)
			return err
		}),
	)
	switch {
	case err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded):
		return nil, NewRenderError(ErrCodeRenderTimeout, fmt.Sprintf("rendering exceeded %v", timeout), err)
	case err != nil && errors.Is(ctx.Err(), context.Canceled):
		return nil, NewRenderError(ErrCodeRenderTimeout, "rendering cancelled", err)
	case err != nil:
		r.logger.Error("Chrome rendering failed", zap.String("title", req.Title), zap.Error(err))
		return nil, NewRenderError(ErrCodeRenderFailed, "chrome could not print the document", err)
	case len(pdf) == 0:
		return nil, NewRenderError(ErrCodeRenderFailed, "chrome returned an empty document", nil)
	}

	result := &RenderResult{PDFData: pdf, PageCount: estimatePageCount(pdf), RenderDuration: time.Since(started)}
	r.logger.Debug("Invoice printed",
		zap.String("title", req.Title),
		zap.Int("bytes", len(pdf)),
		zap.Int("pages", result.PageCount),
		zap.Duration("duration", result.RenderDuration))
	return result, nil
}

// buildPrintParams converts the request to PrintToPDF parameters. Chrome
// measures paper and margins in inches.
func (r *ChromedpRenderer) buildPrintParams(req *RenderRequest) *page.PrintToPDFParams {
	bottom := float64(req.Margins.Bottom)
	if req.FooterHTML != "" && bottom < footerReserveMM {
		bottom = footerReserveMM
	}
	params := page.PrintToPDF().
		WithPrintBackground(true).
		WithPaperWidth(mmToInches(a4WidthMM)).
		WithPaperHeight(mmToInches(a4HeightMM)).
		WithMarginTop(mmToInches(float64(req.Margins.Top))).
		WithMarginRight(mmToInches(float64(req.Margins.Right))).
		WithMarginBottom(mmToInches(bottom)).
		WithMarginLeft(mmToInches(float64(req.Margins.Left))).
		WithScale(r.config.Scale)
	if req.FooterHTML != "" {
		params = params.
			WithDisplayHeaderFooter(true).
			WithHeaderTemplate("<span></span>").
			WithFooterTemplate(req.FooterHTML)
	}
	return params
}

const documentShell = `<!DOCTYPE html><html><head><meta charset="UTF-8"><title>%s</title></head><body>%s</body></html>`

// buildCompleteHTML wraps a fragment in a UTF-8 document; full documents
// pass through untouched
func (r *ChromedpRenderer) buildCompleteHTML(req *RenderRequest) string {
	head := strings.ToLower(req.HTML[:min(len(req.HTML), 256)])
	if strings.Contains(head, "<!doctype") || strings.Contains(head, "<html") {
		return req.HTML
	}
	return fmt.Sprintf(documentShell, html.EscapeString(req.Title), req.HTML)
}

// Close stops the browser, or detaches from the remote one
func (r *ChromedpRenderer) Close() error {
	r.allocCancel()
	return nil
}

func mmToInches(mm float64) float64 {
	return mm / 25.4
}

var _ PDFEngine = (*ChromedpRenderer)(nil)
