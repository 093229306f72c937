package invoicing

import (
	"context"
	"fmt"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/infrastructure/telemetry"
)

// IdentifierAllocator assigns the yearly number and the encoded identifier
// of an invoice on its first persist.
type IdentifierAllocator struct {
	encoder invoicing.IdentifierEncoder
}

// NewIdentifierAllocator creates a new IdentifierAllocator
func NewIdentifierAllocator(encoder invoicing.IdentifierEncoder) *IdentifierAllocator {
	return &IdentifierAllocator{encoder: encoder}
}

// Allocate reserves the next number in the invoice's year and assigns both
// identifier fields. The invoice must already be stored and sequences must
// belong to the surrounding transaction.
func (a *IdentifierAllocator) Allocate(ctx context.Context, sequences invoicing.SequenceRepository, inv *invoicing.Invoice) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "allocate_identifier")
	defer span.End()

	if !inv.IsPersisted() {
		telemetry.RecordError(span, invoicing.ErrAllocationOrdering)
		return invoicing.ErrAllocationOrdering
	}
	if inv.HasIdentifier() {
		return invoicing.ErrIdentifierImmutable
	}

	year := inv.InvoiceDate.Year()
	number, err := sequences.NextNumber(ctx, year)
	if err != nil {
		telemetry.RecordError(span, err)
		return fmt.Errorf("failed to allocate number for %d: %w", year, err)
	}

	if err := inv.AssignIdentifier(number, a.encoder.Encode(inv.ID, number)); err != nil {
		telemetry.RecordError(span, err)
		return err
	}

	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoicePK, inv.ID,
		telemetry.SpanAttrInvoiceYear, year,
		telemetry.SpanAttrNumber, number,
		telemetry.SpanAttrInvoiceID, inv.InvoiceID,
	)
	return nil
}
