package handler

import (
	"context"

	appinv "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

func invoiceOrNil(args mock.Arguments) (*invoicing.Invoice, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Invoice), args.Error(1)
}

// MockInvoiceManager implements InvoiceManager for testing
type MockInvoiceManager struct {
	mock.Mock
}

func (m *MockInvoiceManager) Create(ctx context.Context, in appinv.CreateInvoiceInput) (*invoicing.Invoice, error) {
	return invoiceOrNil(m.Called(ctx, in))
}

func (m *MockInvoiceManager) Update(ctx context.Context, id int64, in appinv.UpdateInvoiceInput) (*invoicing.Invoice, error) {
	return invoiceOrNil(m.Called(ctx, id, in))
}

func (m *MockInvoiceManager) Get(ctx context.Context, id int64) (*invoicing.Invoice, error) {
	return invoiceOrNil(m.Called(ctx, id))
}

func (m *MockInvoiceManager) List(ctx context.Context, filter invoicing.InvoiceFilter) (shared.Paginated[invoicing.Invoice], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[invoicing.Invoice]), args.Error(1)
}

func (m *MockInvoiceManager) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockInvoiceManager) FindCreditNote(ctx context.Context, id int64) (*invoicing.Invoice, error) {
	return invoiceOrNil(m.Called(ctx, id))
}

func (m *MockInvoiceManager) AddItem(ctx context.Context, id int64, in appinv.ItemInput) (*invoicing.Invoice, error) {
	return invoiceOrNil(m.Called(ctx, id, in))
}

func (m *MockInvoiceManager) UpdateItem(ctx context.Context, id, itemID int64, in appinv.ItemInput) (*invoicing.Invoice, error) {
	return invoiceOrNil(m.Called(ctx, id, itemID, in))
}

func (m *MockInvoiceManager) RemoveItem(ctx context.Context, id, itemID int64) (*invoicing.Invoice, error) {
	return invoiceOrNil(m.Called(ctx, id, itemID))
}

func (m *MockInvoiceManager) AddPayment(ctx context.Context, id int64, in appinv.PaymentInput) (*invoicing.Invoice, error) {
	return invoiceOrNil(m.Called(ctx, id, in))
}

func (m *MockInvoiceManager) RemovePayment(ctx context.Context, id, paymentID int64) (*invoicing.Invoice, error) {
	return invoiceOrNil(m.Called(ctx, id, paymentID))
}

// MockCreditNoteIssuer implements CreditNoteIssuer for testing
type MockCreditNoteIssuer struct {
	mock.Mock
}

func (m *MockCreditNoteIssuer) Issue(ctx context.Context, originalID int64) (*invoicing.Invoice, error) {
	return invoiceOrNil(m.Called(ctx, originalID))
}

func (m *MockCreditNoteIssuer) IssueBatch(ctx context.Context, ids []int64) *appinv.BatchResult {
	return m.Called(ctx, ids).Get(0).(*appinv.BatchResult)
}

// MockInvoiceSender implements InvoiceSender for testing
type MockInvoiceSender struct {
	mock.Mock
}

func (m *MockInvoiceSender) Send(ctx context.Context, cmd appinv.SendCommand) (*appinv.SendResult, error) {
	args := m.Called(ctx, cmd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.SendResult), args.Error(1)
}

func (m *MockInvoiceSender) SendBatch(ctx context.Context, ids []int64) *appinv.BatchResult {
	return m.Called(ctx, ids).Get(0).(*appinv.BatchResult)
}

func (m *MockInvoiceSender) SendDue(ctx context.Context) (*appinv.BatchResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*appinv.BatchResult), args.Error(1)
}

// MockPDFProvider implements PDFProvider for testing
type MockPDFProvider struct {
	mock.Mock
}

func (m *MockPDFProvider) RenderByInvoiceID(ctx context.Context, invoiceID string) ([]byte, string, error) {
	args := m.Called(ctx, invoiceID)
	data, _ := args.Get(0).([]byte)
	return data, args.String(1), args.Error(2)
}

func (m *MockPDFProvider) Generate(ctx context.Context, id int64) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockPDFProvider) Download(ctx context.Context, id int64) ([]byte, string, error) {
	args := m.Called(ctx, id)
	data, _ := args.Get(0).([]byte)
	return data, args.String(1), args.Error(2)
}

func (m *MockPDFProvider) IsGenerated(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

// MockExportRunner implements ExportRunner for testing
type MockExportRunner struct {
	mock.Mock
}

func (m *MockExportRunner) Run(ctx context.Context, testMode bool) (string, error) {
	args := m.Called(ctx, testMode)
	return args.String(0), args.Error(1)
}

func (m *MockExportRunner) List(ctx context.Context, filter shared.Filter) (shared.Paginated[invoicing.Export], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[invoicing.Export]), args.Error(1)
}

// MockCurrencyManager implements CurrencyManager for testing
type MockCurrencyManager struct {
	mock.Mock
}

func currencyOrNil(args mock.Arguments) (*invoicing.Currency, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Currency), args.Error(1)
}

func (m *MockCurrencyManager) Create(ctx context.Context, code, preSymbol, postSymbol string) (*invoicing.Currency, error) {
	return currencyOrNil(m.Called(ctx, code, preSymbol, postSymbol))
}

func (m *MockCurrencyManager) Update(ctx context.Context, id int64, code, preSymbol, postSymbol string) (*invoicing.Currency, error) {
	return currencyOrNil(m.Called(ctx, id, code, preSymbol, postSymbol))
}

func (m *MockCurrencyManager) Get(ctx context.Context, id int64) (*invoicing.Currency, error) {
	return currencyOrNil(m.Called(ctx, id))
}

func (m *MockCurrencyManager) List(ctx context.Context, filter shared.Filter) (shared.Paginated[invoicing.Currency], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[invoicing.Currency]), args.Error(1)
}

func (m *MockCurrencyManager) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

// MockRecipientManager implements RecipientManager for testing
type MockRecipientManager struct {
	mock.Mock
}

func recipientOrNil(args mock.Arguments) (*invoicing.Recipient, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Recipient), args.Error(1)
}

func (m *MockRecipientManager) Create(ctx context.Context, name, email, address string) (*invoicing.Recipient, error) {
	return recipientOrNil(m.Called(ctx, name, email, address))
}

func (m *MockRecipientManager) Update(ctx context.Context, id int64, name, email, address string) (*invoicing.Recipient, error) {
	return recipientOrNil(m.Called(ctx, id, name, email, address))
}

func (m *MockRecipientManager) Get(ctx context.Context, id int64) (*invoicing.Recipient, error) {
	return recipientOrNil(m.Called(ctx, id))
}

func (m *MockRecipientManager) List(ctx context.Context, filter shared.Filter) (shared.Paginated[invoicing.Recipient], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[invoicing.Recipient]), args.Error(1)
}

func (m *MockRecipientManager) Delete(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}
