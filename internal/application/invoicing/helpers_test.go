package invoicing

import (
	"context"
	"testing"
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

type testEnv struct {
	repo       *memoryInvoiceRepository
	sequences  *memorySequenceRepository
	exports    *MockExportRepository
	recipients *MockRecipientRepository
	currencies *MockCurrencyRepository
	scope      *NoOpTransactionScope
	service    *InvoiceService
	recipient  *invoicing.Recipient
}

func newTestEnv(t *testing.T, now time.Time) *testEnv {
	t.Helper()
	repo := newMemoryInvoiceRepository()
	sequences := &memorySequenceRepository{invoices: repo}
	exports := new(MockExportRepository)
	recipients := new(MockRecipientRepository)
	currencies := new(MockCurrencyRepository)

	recipient, err := invoicing.NewRecipient("Acme GmbH", "billing@acme.example", "Main St 1")
	require.NoError(t, err)
	recipient.ID = 1
	recipients.On("FindByID", mock.Anything, int64(1)).Return(recipient, nil).Maybe()

	scope := NewNoOpTransactionScope(repo, sequences, exports)
	service := NewInvoiceService(
		scope, repo, recipients, currencies,
		NewIdentifierAllocator(invoicing.NewPrefixEncoder("INV", 7)),
		NewPaymentLedger(),
		WithClock(fixedClock(now)),
	)
	return &testEnv{
		repo:       repo,
		sequences:  sequences,
		exports:    exports,
		recipients: recipients,
		currencies: currencies,
		scope:      scope,
		service:    service,
		recipient:  recipient,
	}
}

func (e *testEnv) createInvoice(t *testing.T, date time.Time, items ...ItemInput) *invoicing.Invoice {
	t.Helper()
	inv, err := e.service.Create(context.Background(), CreateInvoiceInput{
		RecipientID: 1,
		InvoiceDate: date,
		Items:       items,
	})
	require.NoError(t, err)
	return inv
}

func hundredItem() ItemInput {
	return ItemInput{Description: "Consulting", UnitPrice: dec("50.00"), Quantity: dec("2")}
}
