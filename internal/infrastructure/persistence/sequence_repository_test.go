package persistence

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormSequenceRepository_NextNumber(t *testing.T) {
	ctx := context.Background()

	t.Run("counts per year and restarts at one", func(t *testing.T) {
		db := setupInvoicingTestDB(t)
		repo := NewGormSequenceRepository(db)

		for want := 1; want <= 3; want++ {
			got, err := repo.NextNumber(ctx, 2024)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		}

		got, err := repo.NextNumber(ctx, 2025)
		require.NoError(t, err)
		assert.Equal(t, 1, got)

		var seq models.InvoiceSequenceModel
		require.NoError(t, db.First(&seq, "year = ?", 2024).Error)
		assert.Equal(t, 3, seq.LastNumber)
	})

	t.Run("continues after numbers already stored on invoices", func(t *testing.T) {
		db := setupInvoicingTestDB(t)
		recipient := &models.RecipientModel{Name: "Acme"}
		require.NoError(t, db.Create(recipient).Error)

		id := "INV0000041"
		imported := &models.InvoiceModel{
			InvoiceID:   &id,
			Number:      41,
			RecipientID: recipient.ID,
			InvoiceDate: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
			ExportState: invoicing.ExportStateNone,
		}
		imported.Version = 1
		require.NoError(t, db.Omit("Recipient", "Currency", "Items", "Payments").Create(imported).Error)

		got, err := NewGormSequenceRepository(db).NextNumber(ctx, 2024)
		require.NoError(t, err)
		assert.Equal(t, 42, got)

		got, err = NewGormSequenceRepository(db).NextNumber(ctx, 2023)
		require.NoError(t, err)
		assert.Equal(t, 1, got, "other years are unaffected")
	})

	t.Run("locks the counter row on postgres", func(t *testing.T) {
		db, mock, mockDB := newMockDatabase(t)
		defer mockDB.Close()

		// Open enables prepared statements, so each statement is prepared first
		mock.ExpectPrepare(regexp.QuoteMeta(`INSERT INTO "invoice_sequences"`) + `.*` + regexp.QuoteMeta(`ON CONFLICT DO NOTHING`)).
			ExpectExec().
			WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectPrepare(regexp.QuoteMeta(`SELECT * FROM "invoice_sequences" WHERE year = $1`) + `.*` + regexp.QuoteMeta(`FOR UPDATE`)).
			ExpectQuery().
			WillReturnRows(sqlmock.NewRows([]string{"year", "last_number", "updated_at"}).AddRow(2024, 7, time.Now()))
		mock.ExpectPrepare(regexp.QuoteMeta(`SELECT COALESCE(MAX(number), 0) FROM "invoices"`)).
			ExpectQuery().
			WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(5))
		mock.ExpectPrepare(regexp.QuoteMeta(`UPDATE "invoice_sequences" SET "last_number"=$1`)).
			ExpectExec().
			WithArgs(8, sqlmock.AnyArg(), 2024).
			WillReturnResult(sqlmock.NewResult(0, 1))

		got, err := NewGormSequenceRepository(db.DB).NextNumber(ctx, 2024)
		require.NoError(t, err)
		assert.Equal(t, 8, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
