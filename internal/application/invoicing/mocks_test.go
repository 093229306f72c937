package invoicing

import (
	"context"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// MockRecipientRepository is a mock implementation of invoicing.RecipientRepository
type MockRecipientRepository struct {
	mock.Mock
}

func (m *MockRecipientRepository) FindByID(ctx context.Context, id int64) (*invoicing.Recipient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Recipient), args.Error(1)
}

func (m *MockRecipientRepository) FindAll(ctx context.Context, filter shared.Filter) ([]invoicing.Recipient, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]invoicing.Recipient), args.Error(1)
}

func (m *MockRecipientRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRecipientRepository) Save(ctx context.Context, recipient *invoicing.Recipient) error {
	args := m.Called(ctx, recipient)
	return args.Error(0)
}

func (m *MockRecipientRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockCurrencyRepository is a mock implementation of invoicing.CurrencyRepository
type MockCurrencyRepository struct {
	mock.Mock
}

func (m *MockCurrencyRepository) FindByID(ctx context.Context, id int64) (*invoicing.Currency, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) FindByCode(ctx context.Context, code string) (*invoicing.Currency, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoicing.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]invoicing.Currency, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]invoicing.Currency), args.Error(1)
}

func (m *MockCurrencyRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCurrencyRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *MockCurrencyRepository) Save(ctx context.Context, currency *invoicing.Currency) error {
	args := m.Called(ctx, currency)
	return args.Error(0)
}

func (m *MockCurrencyRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockExportRepository is a mock implementation of invoicing.ExportRepository
type MockExportRepository struct {
	mock.Mock
}

func (m *MockExportRepository) Save(ctx context.Context, export *invoicing.Export) error {
	args := m.Called(ctx, export)
	return args.Error(0)
}

func (m *MockExportRepository) FindAll(ctx context.Context, filter shared.Filter) ([]invoicing.Export, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]invoicing.Export), args.Error(1)
}

func (m *MockExportRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockRenderer is a mock implementation of Renderer
type MockRenderer struct {
	mock.Mock
}

func (m *MockRenderer) Render(ctx context.Context, inv *invoicing.Invoice) ([]byte, error) {
	args := m.Called(ctx, inv)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockRenderer) FormatAmount(amount decimal.Decimal, currency *invoicing.Currency) string {
	return invoicing.FormatAmount(amount, currency, "€")
}

// MockNotifier is a mock implementation of Notifier
type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Deliver(ctx context.Context, msg *Message) (bool, error) {
	args := m.Called(ctx, msg)
	return args.Bool(0), args.Error(1)
}

// MockComposer is a mock implementation of BodyComposer
type MockComposer struct {
	mock.Mock
}

func (m *MockComposer) Compose(content EmailContent) (string, string, error) {
	args := m.Called(content)
	return args.String(0), args.String(1), args.Error(2)
}

// MockGatherer is a mock implementation of DataGatherer
type MockGatherer struct {
	mock.Mock
}

func (m *MockGatherer) Gather(ctx context.Context, testMode bool) ([][]string, error) {
	args := m.Called(ctx, testMode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]string), args.Error(1)
}

// MockFileStore is a mock implementation of FileStore
type MockFileStore struct {
	mock.Mock
}

func (m *MockFileStore) Store(ctx context.Context, name string, data []byte, contentType string) (*StoredFile, error) {
	args := m.Called(ctx, name, data, contentType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*StoredFile), args.Error(1)
}

// MockPDFStore is a mock implementation of PDFStore
type MockPDFStore struct {
	mock.Mock
}

func (m *MockPDFStore) Save(ctx context.Context, name string, data []byte) error {
	args := m.Called(ctx, name, data)
	return args.Error(0)
}

func (m *MockPDFStore) Load(ctx context.Context, name string) ([]byte, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockPDFStore) Exists(ctx context.Context, name string) (bool, error) {
	args := m.Called(ctx, name)
	return args.Bool(0), args.Error(1)
}

// MockPDFCache is a mock implementation of PDFCache
type MockPDFCache struct {
	mock.Mock
}

func (m *MockPDFCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).([]byte), args.Bool(1), args.Error(2)
}

func (m *MockPDFCache) Set(ctx context.Context, key string, data []byte) error {
	args := m.Called(ctx, key, data)
	return args.Error(0)
}

// csvLines is a trivial RowEncoder for job tests
type csvLines struct{}

func (csvLines) Encode(rows [][]string) ([]byte, error) {
	out := []byte{}
	for _, row := range rows {
		for i, field := range row {
			if i > 0 {
				out = append(out, ';')
			}
			out = append(out, field...)
		}
		out = append(out, '\n')
	}
	return out, nil
}
