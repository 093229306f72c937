//go:build integration

package persistence

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	appinv "github.com/erp/invoicing/internal/application/invoicing"
	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/migration"
	"github.com/erp/invoicing/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	gormlogger "gorm.io/gorm/logger"
)

// newPostgresDB starts a throwaway PostgreSQL and applies the embedded migrations
func newPostgresDB(t *testing.T) *Database {
	t.Helper()
	ctx := context.Background()

	container, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("invoicing_test"),
		tcpostgres.WithUsername("postgres"),
		tcpostgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	require.NoError(t, err, "Failed to start PostgreSQL container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := Open(gormpostgres.Open(dsn), gormlogger.Discard)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	sqlDB, err := db.DB.DB()
	require.NoError(t, err)
	m, err := migration.New(sqlDB, migration.Source{FS: migrations.FS}, zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, m.Up())

	return db
}

func TestPostgres_ConcurrentNumberAllocation(t *testing.T) {
	db := newPostgresDB(t)
	scope := NewGormTransactionScope(db.DB)
	ctx := context.Background()

	const workers = 12
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers []int
	)
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := scope.Execute(ctx, func(repos appinv.TransactionalRepositories) error {
				n, err := repos.SequenceRepo().NextNumber(ctx, 2024)
				if err != nil {
					return err
				}
				mu.Lock()
				numbers = append(numbers, n)
				mu.Unlock()
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	sort.Ints(numbers)
	want := make([]int, workers)
	for i := range want {
		want[i] = i + 1
	}
	assert.Equal(t, want, numbers, "numbers must be gapless and unique under contention")
}

func TestPostgres_InvoiceVersionConflict(t *testing.T) {
	db := newPostgresDB(t)
	ctx := context.Background()

	recipient, err := invoicing.NewRecipient("ACME", "billing@acme.test", "")
	require.NoError(t, err)
	require.NoError(t, NewGormRecipientRepository(db.DB).Save(ctx, recipient))

	repo := NewGormInvoiceRepository(db.DB)
	inv, err := invoicing.NewInvoice(recipient.ID, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), false)
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, inv))

	first, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)
	second, err := repo.FindByID(ctx, inv.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, first))
	assert.ErrorIs(t, repo.Save(ctx, second), shared.ErrConcurrencyConflict)
}
