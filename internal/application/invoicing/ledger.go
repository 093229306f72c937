package invoicing

import (
	"context"
	"fmt"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/infrastructure/telemetry"
)

// PaymentLedger recomputes the paid status of invoices.
//
// Recompute never adds or removes items and payments and never allocates
// identifiers. The cascade only runs from a credit note to its original.
type PaymentLedger struct{}

// NewPaymentLedger creates a new PaymentLedger
func NewPaymentLedger() *PaymentLedger {
	return &PaymentLedger{}
}

// Recompute updates inv.IsPaid in memory. The caller persists inv.
// When inv is a credit note its original is recomputed against inv and saved
// through repos.
func (l *PaymentLedger) Recompute(ctx context.Context, repos TransactionalRepositories, inv *invoicing.Invoice) (bool, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "ledger", "recompute")
	defer span.End()

	if inv.IsCreditNote {
		paid := inv.Reconcile(nil)
		if err := l.recomputeOriginal(ctx, repos, inv); err != nil {
			telemetry.RecordError(span, err)
			return paid, err
		}
		telemetry.SetAttributes(span, telemetry.SpanAttrInvoicePK, inv.ID, telemetry.SpanAttrCreditNote, true)
		return paid, nil
	}

	var creditNote *invoicing.Invoice
	if inv.IsPersisted() {
		cn, err := repos.InvoiceRepo().FindCreditNote(ctx, inv.ID)
		if err != nil {
			telemetry.RecordError(span, err)
			return inv.IsPaid, fmt.Errorf("failed to look up credit note: %w", err)
		}
		creditNote = cn
	}

	paid := inv.Reconcile(creditNote)
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoicePK, inv.ID,
		telemetry.SpanAttrIsPaid, paid,
	)
	return paid, nil
}

func (l *PaymentLedger) recomputeOriginal(ctx context.Context, repos TransactionalRepositories, creditNote *invoicing.Invoice) error {
	if creditNote.RelatedInvoiceID == nil {
		return nil
	}
	original, err := repos.InvoiceRepo().FindByID(ctx, *creditNote.RelatedInvoiceID)
	if err != nil {
		return fmt.Errorf("failed to load original invoice: %w", err)
	}
	original.Reconcile(creditNote)
	if err := repos.InvoiceRepo().Save(ctx, original); err != nil {
		return fmt.Errorf("failed to save original invoice: %w", err)
	}
	return nil
}
