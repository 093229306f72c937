package invoicing

import (
	"context"

	"github.com/erp/invoicing/internal/domain/invoicing"
)

// TransactionScope provides transactional access to invoicing repositories.
// If fn returns an error the transaction is rolled back, otherwise committed.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// TransactionalRepositories exposes repositories sharing one transaction.
//
// SequenceRepo must only be used through a real transaction: it locks the
// per-year counter row until commit.
type TransactionalRepositories interface {
	InvoiceRepo() invoicing.InvoiceRepository
	SequenceRepo() invoicing.SequenceRepository
	ExportRepo() invoicing.ExportRepository
}

// NoOpTransactionScope runs fn against plain repositories without a
// transaction. Used by tests.
type NoOpTransactionScope struct {
	invoiceRepo  invoicing.InvoiceRepository
	sequenceRepo invoicing.SequenceRepository
	exportRepo   invoicing.ExportRepository
}

// NewNoOpTransactionScope creates a NoOpTransactionScope with the given repositories.
func NewNoOpTransactionScope(
	invoiceRepo invoicing.InvoiceRepository,
	sequenceRepo invoicing.SequenceRepository,
	exportRepo invoicing.ExportRepository,
) *NoOpTransactionScope {
	return &NoOpTransactionScope{
		invoiceRepo:  invoiceRepo,
		sequenceRepo: sequenceRepo,
		exportRepo:   exportRepo,
	}
}

// Execute runs fn without a real transaction.
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s)
}

// InvoiceRepo returns the invoice repository.
func (s *NoOpTransactionScope) InvoiceRepo() invoicing.InvoiceRepository {
	return s.invoiceRepo
}

// SequenceRepo returns the sequence repository.
func (s *NoOpTransactionScope) SequenceRepo() invoicing.SequenceRepository {
	return s.sequenceRepo
}

// ExportRepo returns the export repository.
func (s *NoOpTransactionScope) ExportRepo() invoicing.ExportRepository {
	return s.exportRepo
}

var (
	_ TransactionScope          = (*NoOpTransactionScope)(nil)
	_ TransactionalRepositories = (*NoOpTransactionScope)(nil)
)
