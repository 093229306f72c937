package invoicing

import (
	"context"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// CreditNoteService issues credit notes against existing invoices
type CreditNoteService struct {
	invoices *InvoiceService
	logger   *zap.Logger
}

// NewCreditNoteService creates a new CreditNoteService
func NewCreditNoteService(invoices *InvoiceService, logger *zap.Logger) *CreditNoteService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CreditNoteService{invoices: invoices, logger: logger}
}

// Issue creates and saves the credit note of originalID. The credit note is
// numbered like any invoice and the original is recomputed against it.
// Nothing is written when the original is itself a credit note or already
// has one.
func (s *CreditNoteService) Issue(ctx context.Context, originalID int64) (*invoicing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit_note", "issue")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrInvoicePK, originalID)

	var creditNote *invoicing.Invoice
	err := s.invoices.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		original, err := repos.InvoiceRepo().FindByID(ctx, originalID)
		if err != nil {
			return err
		}
		if original.IsCreditNote {
			return invoicing.ErrAlreadyCreditNote
		}
		existing, err := repos.InvoiceRepo().FindCreditNote(ctx, original.ID)
		if err != nil {
			return err
		}
		if existing != nil {
			return invoicing.ErrDuplicateCreditNote
		}

		cn, err := invoicing.NewCreditNote(original)
		if err != nil {
			return err
		}
		cn.InvoiceDate = invoicing.NormalizeDate(s.invoices.clock())
		if err := s.invoices.save(ctx, repos, cn); err != nil {
			return err
		}
		creditNote = cn
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrInvoiceID, creditNote.InvoiceID)
	s.logger.Info("Credit note issued",
		zap.Int64("original_id", originalID),
		zap.Int64("credit_note_id", creditNote.ID),
		zap.String("credit_note_invoice_id", creditNote.InvoiceID),
	)
	s.invoices.publishEvents(creditNote)
	return creditNote, nil
}

// IssueBatch issues a credit note for each invoice. Failures are collected
// per invoice and do not stop the batch. Last is the last credit note created.
func (s *CreditNoteService) IssueBatch(ctx context.Context, ids []int64) *BatchResult {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit_note", "issue_batch")
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrBatchSize, len(ids))

	result := &BatchResult{}
	for _, id := range ids {
		cn, err := s.Issue(ctx, id)
		if err != nil {
			s.logger.Warn("Skipped credit note", zap.Int64("invoice_id", id), zap.Error(err))
			result.Errors = append(result.Errors, BatchError{InvoiceID: id, Err: err})
			continue
		}
		result.Processed = append(result.Processed, id)
		result.Last = cn
	}
	return result
}
