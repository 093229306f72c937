package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/persistence/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// references loaded with every invoice
var invoiceReferences = []string{"Recipient", "Currency", "Items", "Payments"}

func (r *GormInvoiceRepository) loaded(ctx context.Context) *gorm.DB {
	byID := func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }
	return r.db.WithContext(ctx).
		Preload("Items", byID).
		Preload("Payments", byID).
		Preload("Recipient").
		Preload("Currency")
}

// FindByID finds an invoice by its storage ID
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id int64) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.loaded(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByInvoiceID finds an invoice by its human-facing identifier
func (r *GormInvoiceRepository) FindByInvoiceID(ctx context.Context, invoiceID string) (*invoicing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.loaded(ctx).Where("invoice_id = ?", invoiceID).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindCreditNote returns the credit note issued for originalID, or nil
func (r *GormInvoiceRepository) FindCreditNote(ctx context.Context, originalID int64) (*invoicing.Invoice, error) {
	var found []models.InvoiceModel
	if err := r.loaded(ctx).
		Where("related_invoice_id = ? AND is_credit_note = ?", originalID, true).
		Order("id DESC").
		Limit(1).
		Find(&found).Error; err != nil {
		return nil, err
	}
	if len(found) == 0 {
		return nil, nil
	}
	return found[0].ToDomain(), nil
}

// FindAll finds invoices matching the filter
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	query := r.applyPagination(r.applyFilter(r.loaded(ctx).Model(&models.InvoiceModel{}), filter), filter.Filter)
	return r.find(query)
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter invoicing.InvoiceFilter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter).Count(&count).Error
	return count, err
}

// FindDue finds non-draft invoices not yet sent and dated on or before today
func (r *GormInvoiceRepository) FindDue(ctx context.Context, today time.Time) ([]invoicing.Invoice, error) {
	query := r.loaded(ctx).
		Where("draft = ? AND invoiced = ? AND invoice_date <= ?", false, false, invoicing.NormalizeDate(today)).
		Order("invoice_date ASC, id ASC")
	return r.find(query)
}

// FindInvoiced finds sent, non-draft invoices
func (r *GormInvoiceRepository) FindInvoiced(ctx context.Context, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	query := r.applyFilter(r.loaded(ctx).Model(&models.InvoiceModel{}), filter).
		Where("invoiced = ? AND draft = ?", true, false)
	return r.find(r.applyPagination(query, filter.Filter))
}

// FindExportable finds invoices not yet fully handed to accounting
func (r *GormInvoiceRepository) FindExportable(ctx context.Context) ([]invoicing.Invoice, error) {
	query := r.loaded(ctx).
		Where("export_state IN ?", []invoicing.ExportState{invoicing.ExportStateNone, invoicing.ExportStatePartial}).
		Order("invoice_date ASC, id ASC")
	return r.find(query)
}

func (r *GormInvoiceRepository) find(query *gorm.DB) ([]invoicing.Invoice, error) {
	var rows []models.InvoiceModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return lo.Map(rows, func(m models.InvoiceModel, _ int) invoicing.Invoice {
		return *m.ToDomain()
	}), nil
}

// Save inserts or updates the invoice row, then synchronises its items and
// payments. Updates are guarded by the aggregate version.
func (r *GormInvoiceRepository) Save(ctx context.Context, inv *invoicing.Invoice) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.InvoiceModelFromDomain(inv)
		now := time.Now()
		model.UpdatedAt = now

		if !inv.IsPersisted() {
			if model.CreatedAt.IsZero() {
				model.CreatedAt = now
			}
			if model.Version <= 0 {
				model.Version = 1
			}
			if err := tx.Omit(invoiceReferences...).Create(model).Error; err != nil {
				// the unique related_invoice_id index catches a concurrent second credit note
				if inv.IsCreditNote && errors.Is(err, gorm.ErrDuplicatedKey) {
					return invoicing.ErrDuplicateCreditNote
				}
				return err
			}
			inv.ID = model.ID
			inv.CreatedAt = model.CreatedAt
		} else {
			expected := inv.Version
			model.Version = expected + 1
			result := tx.Model(model).
				Select("*").
				Omit(append([]string{"id", "created_at"}, invoiceReferences...)...).
				Where("version = ?", expected).
				Updates(model)
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return shared.ErrConcurrencyConflict
			}
		}
		inv.Version = model.Version
		inv.UpdatedAt = now

		if err := r.syncItems(tx, inv); err != nil {
			return fmt.Errorf("failed to save items: %w", err)
		}
		if err := r.syncPayments(tx, inv); err != nil {
			return fmt.Errorf("failed to save payments: %w", err)
		}
		return nil
	})
}

// syncItems deletes rows no longer on the invoice and upserts the rest,
// copying generated IDs back into the aggregate
func (r *GormInvoiceRepository) syncItems(tx *gorm.DB, inv *invoicing.Invoice) error {
	keep := lo.FilterMap(inv.Items, func(item invoicing.LineItem, _ int) (int64, bool) {
		return item.ID, item.ID != 0
	})
	if err := deleteChildrenExcept(tx, &models.LineItemModel{}, inv.ID, keep); err != nil {
		return err
	}
	for i := range inv.Items {
		inv.Items[i].InvoiceID = inv.ID
		model := models.LineItemModelFromDomain(&inv.Items[i])
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		inv.Items[i].ID = model.ID
	}
	return nil
}

func (r *GormInvoiceRepository) syncPayments(tx *gorm.DB, inv *invoicing.Invoice) error {
	keep := lo.FilterMap(inv.Payments, func(p invoicing.Payment, _ int) (int64, bool) {
		return p.ID, p.ID != 0
	})
	if err := deleteChildrenExcept(tx, &models.PaymentModel{}, inv.ID, keep); err != nil {
		return err
	}
	for i := range inv.Payments {
		inv.Payments[i].InvoiceID = inv.ID
		model := models.PaymentModelFromDomain(&inv.Payments[i])
		if err := tx.Save(model).Error; err != nil {
			return err
		}
		inv.Payments[i].ID = model.ID
	}
	return nil
}

func deleteChildrenExcept(tx *gorm.DB, model any, invoiceID int64, keep []int64) error {
	query := tx.Where("invoice_id = ?", invoiceID)
	if len(keep) > 0 {
		query = query.Where("id NOT IN ?", keep)
	}
	return query.Delete(model).Error
}

// applyFilter applies the invoice filter without pagination
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter invoicing.InvoiceFilter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(invoice_id) LIKE ?", "%"+strings.ToLower(search)+"%")
	}
	if filter.InvoiceDate != nil {
		query = query.Where("invoice_date = ?", invoicing.NormalizeDate(*filter.InvoiceDate))
	}
	if filter.FromDate != nil {
		query = query.Where("invoice_date >= ?", invoicing.NormalizeDate(*filter.FromDate))
	}
	if filter.ToDate != nil {
		query = query.Where("invoice_date <= ?", invoicing.NormalizeDate(*filter.ToDate))
	}
	if filter.Invoiced != nil {
		query = query.Where("invoiced = ?", *filter.Invoiced)
	}
	if filter.IsCreditNote != nil {
		query = query.Where("is_credit_note = ?", *filter.IsCreditNote)
	}
	if filter.IsPaid != nil {
		query = query.Where("is_paid = ?", *filter.IsPaid)
	}
	if filter.Draft != nil {
		query = query.Where("draft = ?", *filter.Draft)
	}
	if filter.RecipientID != nil {
		query = query.Where("recipient_id = ?", *filter.RecipientID)
	}
	return query
}

func (r *GormInvoiceRepository) applyPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	return query.
		Order(invoiceSort.orderBy(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit())
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ invoicing.InvoiceRepository = (*GormInvoiceRepository)(nil)
