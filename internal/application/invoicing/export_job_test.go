package invoicing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var exportDay = time.Date(2024, 5, 1, 17, 30, 0, 0, time.UTC)

func TestExportJob_Run(t *testing.T) {
	rows := [][]string{{"2024-04-30", "INV0000001", "100.00"}}

	t.Run("test mode", func(t *testing.T) {
		gatherer := new(MockGatherer)
		store := new(MockFileStore)
		exports := new(MockExportRepository)
		job := NewExportJob(gatherer, csvLines{}, store, exports, fixedClock(exportDay), nil)

		gatherer.On("Gather", mock.Anything, true).Return(rows, nil)
		store.On("Store", mock.Anything, "test_2024-05-01.csv", []byte("2024-04-30;INV0000001;100.00\n"), mock.Anything).
			Return(&StoredFile{Name: "test_2024-05-01.csv", URL: "/exports/test_2024-05-01.csv"}, nil)

		url, err := job.Run(context.Background(), true)
		require.NoError(t, err)
		assert.Equal(t, "/exports/test_2024-05-01.csv", url)
		exports.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("live mode records the export", func(t *testing.T) {
		gatherer := new(MockGatherer)
		store := new(MockFileStore)
		exports := new(MockExportRepository)
		job := NewExportJob(gatherer, csvLines{}, store, exports, fixedClock(exportDay), nil)

		gatherer.On("Gather", mock.Anything, false).Return(rows, nil)
		store.On("Store", mock.Anything, "2024-05-01.csv", mock.Anything, mock.Anything).
			Return(&StoredFile{Name: "2024-05-01_1.csv", URL: "/exports/2024-05-01_1.csv"}, nil)
		exports.On("Save", mock.Anything, mock.MatchedBy(func(e *invoicing.Export) bool {
			return e.FileReference == "2024-05-01_1.csv" && e.Date.Equal(time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC))
		})).Return(nil)

		url, err := job.Run(context.Background(), false)
		require.NoError(t, err)
		assert.Equal(t, "/exports/2024-05-01_1.csv", url)
		exports.AssertExpectations(t)
	})

	t.Run("no data", func(t *testing.T) {
		gatherer := new(MockGatherer)
		store := new(MockFileStore)
		job := NewExportJob(gatherer, csvLines{}, store, new(MockExportRepository), fixedClock(exportDay), nil)
		gatherer.On("Gather", mock.Anything, false).Return([][]string{}, nil)

		_, err := job.Run(context.Background(), false)
		assert.ErrorIs(t, err, invoicing.ErrNoData)
		store.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("gatherer error", func(t *testing.T) {
		gatherer := new(MockGatherer)
		store := new(MockFileStore)
		job := NewExportJob(gatherer, csvLines{}, store, new(MockExportRepository), fixedClock(exportDay), nil)
		gatherer.On("Gather", mock.Anything, false).Return(nil, errors.New("db down"))

		_, err := job.Run(context.Background(), false)
		assert.ErrorIs(t, err, invoicing.ErrGather)
		store.AssertNotCalled(t, "Store", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("gatherer returns nothing", func(t *testing.T) {
		gatherer := new(MockGatherer)
		job := NewExportJob(gatherer, csvLines{}, new(MockFileStore), new(MockExportRepository), fixedClock(exportDay), nil)
		gatherer.On("Gather", mock.Anything, true).Return(nil, nil)

		_, err := job.Run(context.Background(), true)
		assert.ErrorIs(t, err, invoicing.ErrGather)
	})

	t.Run("no gatherer", func(t *testing.T) {
		job := NewExportJob(nil, csvLines{}, new(MockFileStore), new(MockExportRepository), fixedClock(exportDay), nil)
		_, err := job.Run(context.Background(), true)
		assert.ErrorIs(t, err, invoicing.ErrGather)
	})
}

type panickingGatherer struct{}

func (panickingGatherer) Gather(context.Context, bool) ([][]string, error) {
	panic("boom")
}

func TestExportJob_Run_GathererPanics(t *testing.T) {
	job := NewExportJob(panickingGatherer{}, csvLines{}, new(MockFileStore), new(MockExportRepository), fixedClock(exportDay), nil)
	_, err := job.Run(context.Background(), false)
	assert.ErrorIs(t, err, invoicing.ErrGather)
}

func TestInvoiceGatherer(t *testing.T) {
	env := newTestEnv(t, march2024)
	paid := env.createInvoice(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), hundredItem())
	_, err := env.service.AddPayment(context.Background(), paid.ID, PaymentInput{Amount: dec("100.00")})
	require.NoError(t, err)
	open := env.createInvoice(t, time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC), hundredItem())
	gatherer := NewInvoiceGatherer(env.scope)

	t.Run("test mode changes nothing", func(t *testing.T) {
		rows, err := gatherer.Gather(context.Background(), true)
		require.NoError(t, err)
		assert.Equal(t, [][]string{
			{"2024-03-01", "INV0000001", "100.00"},
			{"2024-03-02", "INV0000002", "100.00"},
		}, rows)
		assert.Equal(t, invoicing.ExportStateNone, env.repo.get(paid.ID).ExportState)
	})

	t.Run("live mode flags invoices and payments", func(t *testing.T) {
		rows, err := gatherer.Gather(context.Background(), false)
		require.NoError(t, err)
		assert.Len(t, rows, 2)

		storedPaid := env.repo.get(paid.ID)
		assert.Equal(t, invoicing.ExportStateFull, storedPaid.ExportState)
		assert.True(t, storedPaid.Payments[0].Exported)
		assert.Equal(t, invoicing.ExportStatePartial, env.repo.get(open.ID).ExportState)

		rows, err = gatherer.Gather(context.Background(), false)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "INV0000002", rows[0][1])
	})
}
