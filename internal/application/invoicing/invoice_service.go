package invoicing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// InvoiceService owns every invoice mutation. Each mutation runs in one
// transaction and ends with a save that allocates the identifier when missing
// and recomputes the paid status.
type InvoiceService struct {
	txScope       TransactionScope
	invoiceRepo   invoicing.InvoiceRepository
	recipientRepo invoicing.RecipientRepository
	currencyRepo  invoicing.CurrencyRepository
	allocator     *IdentifierAllocator
	ledger        *PaymentLedger
	logger        *zap.Logger
	clock         Clock
}

// InvoiceServiceOption configures an InvoiceService
type InvoiceServiceOption func(*InvoiceService)

// WithLogger sets the service logger
func WithLogger(logger *zap.Logger) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.logger = logger
	}
}

// WithClock overrides the time source used for "today"
func WithClock(clock Clock) InvoiceServiceOption {
	return func(s *InvoiceService) {
		s.clock = clock
	}
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	txScope TransactionScope,
	invoiceRepo invoicing.InvoiceRepository,
	recipientRepo invoicing.RecipientRepository,
	currencyRepo invoicing.CurrencyRepository,
	allocator *IdentifierAllocator,
	ledger *PaymentLedger,
	opts ...InvoiceServiceOption,
) *InvoiceService {
	s := &InvoiceService{
		txScope:       txScope,
		invoiceRepo:   invoiceRepo,
		recipientRepo: recipientRepo,
		currencyRepo:  currencyRepo,
		allocator:     allocator,
		ledger:        ledger,
		logger:        zap.NewNop(),
		clock:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates references, builds a new invoice with its items and saves it
func (s *InvoiceService) Create(ctx context.Context, in CreateInvoiceInput) (*invoicing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "create")
	defer span.End()

	inv, err := invoicing.NewInvoice(in.RecipientID, in.InvoiceDate, in.Draft)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if in.InvoiceDate.IsZero() {
		inv.InvoiceDate = invoicing.NormalizeDate(s.clock())
	}
	if err := inv.SetCostCode(in.CostCode); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	if err := s.resolveReferences(ctx, inv, in.RecipientID, in.CurrencyID); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	for _, item := range in.Items {
		if _, err := inv.AddItem(item.Description, item.UnitPrice, item.Quantity); err != nil {
			telemetry.RecordError(span, err)
			return nil, err
		}
	}

	if err := s.Save(ctx, inv); err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Invoice created",
		zap.Int64("id", inv.ID),
		zap.String("invoice_id", inv.InvoiceID),
		zap.Int("number", inv.Number),
	)
	return inv, nil
}

// Update replaces the editable attributes of an invoice
func (s *InvoiceService) Update(ctx context.Context, id int64, in UpdateInvoiceInput) (*invoicing.Invoice, error) {
	return s.mutate(ctx, id, "update", func(ctx context.Context, inv *invoicing.Invoice) error {
		if err := inv.UpdateDetails(invoicing.Details{
			RecipientID: in.RecipientID,
			CurrencyID:  in.CurrencyID,
			InvoiceDate: in.InvoiceDate,
			CostCode:    in.CostCode,
			Draft:       in.Draft,
		}); err != nil {
			return err
		}
		return s.resolveReferences(ctx, inv, in.RecipientID, in.CurrencyID)
	})
}

// Save persists inv in its own transaction
func (s *InvoiceService) Save(ctx context.Context, inv *invoicing.Invoice) error {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", "save")
	defer span.End()

	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		return s.save(ctx, repos, inv)
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return err
	}
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoicePK, inv.ID,
		telemetry.SpanAttrInvoiceID, inv.InvoiceID,
		telemetry.SpanAttrIsPaid, inv.IsPaid,
	)
	s.publishEvents(inv)
	return nil
}

// save is the two-phase persist: a first insert obtains the storage ID, the
// identifier is then allocated, the paid status recomputed and the invoice
// written again.
func (s *InvoiceService) save(ctx context.Context, repos TransactionalRepositories, inv *invoicing.Invoice) error {
	if !inv.IsPersisted() {
		if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
			return fmt.Errorf("failed to insert invoice: %w", err)
		}
	}
	if !inv.HasIdentifier() {
		if err := s.allocator.Allocate(ctx, repos.SequenceRepo(), inv); err != nil {
			return err
		}
	}
	if _, err := s.ledger.Recompute(ctx, repos, inv); err != nil {
		return err
	}
	if err := repos.InvoiceRepo().Save(ctx, inv); err != nil {
		return fmt.Errorf("failed to save invoice: %w", err)
	}
	return nil
}

// Recompute reloads an invoice, recomputes its paid status and saves it
func (s *InvoiceService) Recompute(ctx context.Context, id int64) (*invoicing.Invoice, error) {
	return s.mutate(ctx, id, "recompute", func(context.Context, *invoicing.Invoice) error {
		return nil
	})
}

// AddItem appends a line item
func (s *InvoiceService) AddItem(ctx context.Context, id int64, in ItemInput) (*invoicing.Invoice, error) {
	return s.mutate(ctx, id, "add_item", func(_ context.Context, inv *invoicing.Invoice) error {
		_, err := inv.AddItem(in.Description, in.UnitPrice, in.Quantity)
		return err
	})
}

// UpdateItem changes a line item
func (s *InvoiceService) UpdateItem(ctx context.Context, id, itemID int64, in ItemInput) (*invoicing.Invoice, error) {
	return s.mutate(ctx, id, "update_item", func(_ context.Context, inv *invoicing.Invoice) error {
		_, err := inv.UpdateItem(itemID, in.Description, in.UnitPrice, in.Quantity)
		return err
	})
}

// RemoveItem deletes a line item
func (s *InvoiceService) RemoveItem(ctx context.Context, id, itemID int64) (*invoicing.Invoice, error) {
	return s.mutate(ctx, id, "remove_item", func(_ context.Context, inv *invoicing.Invoice) error {
		return inv.RemoveItem(itemID)
	})
}

// AddPayment records a payment
func (s *InvoiceService) AddPayment(ctx context.Context, id int64, in PaymentInput) (*invoicing.Invoice, error) {
	return s.mutate(ctx, id, "add_payment", func(_ context.Context, inv *invoicing.Invoice) error {
		_, err := inv.AddPayment(in.Amount, in.PaidDate, in.Method, in.Note)
		return err
	})
}

// RemovePayment deletes a payment
func (s *InvoiceService) RemovePayment(ctx context.Context, id, paymentID int64) (*invoicing.Invoice, error) {
	return s.mutate(ctx, id, "remove_payment", func(_ context.Context, inv *invoicing.Invoice) error {
		return inv.RemovePayment(paymentID)
	})
}

// Delete always refuses: invoices are kept for the numbering audit trail
func (s *InvoiceService) Delete(_ context.Context, id int64) error {
	s.logger.Warn("Refused invoice deletion", zap.Int64("id", id))
	return invoicing.ErrPermissionDenied
}

// markInvoiced flags a sent invoice in its own transaction
func (s *InvoiceService) markInvoiced(ctx context.Context, id int64) (*invoicing.Invoice, error) {
	return s.mutate(ctx, id, "mark_invoiced", func(_ context.Context, inv *invoicing.Invoice) error {
		inv.MarkInvoiced()
		return nil
	})
}

func (s *InvoiceService) mutate(
	ctx context.Context,
	id int64,
	method string,
	fn func(ctx context.Context, inv *invoicing.Invoice) error,
) (*invoicing.Invoice, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "invoice", method)
	defer span.End()
	telemetry.SetAttribute(span, telemetry.SpanAttrInvoicePK, id)

	var result *invoicing.Invoice
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		inv, err := repos.InvoiceRepo().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := fn(ctx, inv); err != nil {
			return err
		}
		if err := s.save(ctx, repos, inv); err != nil {
			return err
		}
		result = inv
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttribute(span, telemetry.SpanAttrIsPaid, result.IsPaid)
	s.publishEvents(result)
	return result, nil
}

// resolveReferences checks that the recipient and currency exist and attaches them
func (s *InvoiceService) resolveReferences(ctx context.Context, inv *invoicing.Invoice, recipientID int64, currencyID *int64) error {
	recipient, err := s.recipientRepo.FindByID(ctx, recipientID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_RECIPIENT", fmt.Sprintf("Recipient %d does not exist", recipientID))
		}
		return err
	}
	inv.Recipient = recipient

	if currencyID == nil {
		inv.SetCurrency(nil)
		return nil
	}
	currency, err := s.currencyRepo.FindByID(ctx, *currencyID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("INVALID_CURRENCY", fmt.Sprintf("Currency %d does not exist", *currencyID))
		}
		return err
	}
	inv.SetCurrency(currency)
	return nil
}

// publishEvents logs the events raised by a committed invoice
func (s *InvoiceService) publishEvents(inv *invoicing.Invoice) {
	for _, evt := range inv.PullEvents() {
		s.logger.Info("Invoice event",
			zap.String("event_type", evt.EventType()),
			zap.String("event_id", evt.EventID().String()),
			zap.Int64("aggregate_id", inv.ID),
			zap.String("invoice_id", inv.InvoiceID),
		)
	}
}

// Get returns an invoice by storage ID
func (s *InvoiceService) Get(ctx context.Context, id int64) (*invoicing.Invoice, error) {
	return s.invoiceRepo.FindByID(ctx, id)
}

// GetByInvoiceID returns an invoice by its human-facing identifier
func (s *InvoiceService) GetByInvoiceID(ctx context.Context, invoiceID string) (*invoicing.Invoice, error) {
	return s.invoiceRepo.FindByInvoiceID(ctx, invoiceID)
}

// FindCreditNote returns the credit note of an invoice, or nil
func (s *InvoiceService) FindCreditNote(ctx context.Context, id int64) (*invoicing.Invoice, error) {
	return s.invoiceRepo.FindCreditNote(ctx, id)
}

// List returns a page of invoices
func (s *InvoiceService) List(ctx context.Context, filter invoicing.InvoiceFilter) (shared.Paginated[invoicing.Invoice], error) {
	items, err := s.invoiceRepo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[invoicing.Invoice]{}, err
	}
	total, err := s.invoiceRepo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[invoicing.Invoice]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.Limit()), nil
}

// ListDue returns invoices that should be sent today
func (s *InvoiceService) ListDue(ctx context.Context) ([]invoicing.Invoice, error) {
	return s.invoiceRepo.FindDue(ctx, invoicing.NormalizeDate(s.clock()))
}

// ListInvoiced returns sent, non-draft invoices
func (s *InvoiceService) ListInvoiced(ctx context.Context, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	return s.invoiceRepo.FindInvoiced(ctx, filter)
}
