package invoicing

import (
	"context"
	"fmt"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PDFService renders invoice PDFs on demand and keeps generated copies
type PDFService struct {
	invoices *InvoiceService
	renderer Renderer
	store    PDFStore
	cache    PDFCache
	namer    invoicing.FileNamer
	logger   *zap.Logger
}

// NewPDFService creates a new PDFService. cache may be nil.
func NewPDFService(
	invoices *InvoiceService,
	renderer Renderer,
	store PDFStore,
	cache PDFCache,
	namer invoicing.FileNamer,
	logger *zap.Logger,
) *PDFService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PDFService{
		invoices: invoices,
		renderer: renderer,
		store:    store,
		cache:    cache,
		namer:    namer,
		logger:   logger,
	}
}

// Render returns the PDF of an invoice and its file name
func (s *PDFService) Render(ctx context.Context, id int64) ([]byte, string, error) {
	inv, err := s.invoices.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	return s.render(ctx, inv)
}

// RenderByInvoiceID renders the invoice with the given human-facing identifier
func (s *PDFService) RenderByInvoiceID(ctx context.Context, invoiceID string) ([]byte, string, error) {
	inv, err := s.invoices.GetByInvoiceID(ctx, invoiceID)
	if err != nil {
		return nil, "", err
	}
	return s.render(ctx, inv)
}

func (s *PDFService) render(ctx context.Context, inv *invoicing.Invoice) ([]byte, string, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "pdf", "render")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrInvoicePK, inv.ID)

	name := s.namer.FileName(inv)
	key := cacheKey(inv)
	if s.cache != nil {
		data, ok, err := s.cache.Get(ctx, key)
		if err != nil {
			s.logger.Warn("PDF cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			telemetry.AddEvent(span, "cache_hit")
			return data, name, nil
		}
	}

	data, err := s.renderer.Render(ctx, inv)
	if err != nil {
		err = fmt.Errorf("%w: %w", invoicing.ErrRender, err)
		telemetry.RecordError(span, err)
		return nil, "", err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, data); err != nil {
			s.logger.Warn("PDF cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return data, name, nil
}

// cacheKey changes whenever the invoice is written
func cacheKey(inv *invoicing.Invoice) string {
	return fmt.Sprintf("invoice:pdf:%d:%d", inv.ID, inv.UpdatedAt.UnixNano())
}

// Generate renders the invoice and stores the file, replacing an older one
func (s *PDFService) Generate(ctx context.Context, id int64) (string, error) {
	data, name, err := s.Render(ctx, id)
	if err != nil {
		return "", err
	}
	if err := s.store.Save(ctx, name, data); err != nil {
		return "", fmt.Errorf("failed to store PDF: %w", err)
	}
	s.logger.Info("Invoice PDF generated", zap.Int64("id", id), zap.String("file", name))
	return name, nil
}

// Download returns the stored PDF. It fails with ErrPDFNotGenerated when
// Generate has not run for the invoice yet.
func (s *PDFService) Download(ctx context.Context, id int64) ([]byte, string, error) {
	inv, err := s.invoices.Get(ctx, id)
	if err != nil {
		return nil, "", err
	}
	name := s.namer.FileName(inv)
	exists, err := s.store.Exists(ctx, name)
	if err != nil {
		return nil, "", err
	}
	if !exists {
		return nil, "", invoicing.ErrPDFNotGenerated
	}
	data, err := s.store.Load(ctx, name)
	if err != nil {
		return nil, "", err
	}
	return data, name, nil
}

// IsGenerated reports whether a stored PDF exists for the invoice
func (s *PDFService) IsGenerated(ctx context.Context, id int64) (bool, error) {
	inv, err := s.invoices.Get(ctx, id)
	if err != nil {
		return false, err
	}
	return s.store.Exists(ctx, s.namer.FileName(inv))
}
