package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/erp/invoicing/internal/infrastructure/persistence/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// GormCurrencyRepository implements CurrencyRepository using GORM
type GormCurrencyRepository struct {
	db *gorm.DB
}

// NewGormCurrencyRepository creates a new GormCurrencyRepository
func NewGormCurrencyRepository(db *gorm.DB) *GormCurrencyRepository {
	return &GormCurrencyRepository{db: db}
}

// FindByID finds a currency by its ID
func (r *GormCurrencyRepository) FindByID(ctx context.Context, id int64) (*invoicing.Currency, error) {
	var model models.CurrencyModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByCode finds a currency by its ISO code
func (r *GormCurrencyRepository) FindByCode(ctx context.Context, code string) (*invoicing.Currency, error) {
	var model models.CurrencyModel
	if err := r.db.WithContext(ctx).Where("code = ?", strings.ToUpper(code)).First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists currencies
func (r *GormCurrencyRepository) FindAll(ctx context.Context, filter shared.Filter) ([]invoicing.Currency, error) {
	var rows []models.CurrencyModel
	query := r.search(r.db.WithContext(ctx).Model(&models.CurrencyModel{}), filter).
		Order(currencySort.orderBy(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit())
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return lo.Map(rows, func(m models.CurrencyModel, _ int) invoicing.Currency { return *m.ToDomain() }), nil
}

// Count counts currencies
func (r *GormCurrencyRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.search(r.db.WithContext(ctx).Model(&models.CurrencyModel{}), filter).Count(&count).Error
	return count, err
}

func (r *GormCurrencyRepository) search(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if s := strings.TrimSpace(filter.Search); s != "" {
		query = query.Where("code LIKE ?", "%"+strings.ToUpper(s)+"%")
	}
	return query
}

// ExistsByCode checks whether a currency code is taken
func (r *GormCurrencyRepository) ExistsByCode(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.CurrencyModel{}).
		Where("code = ?", strings.ToUpper(code)).
		Count(&count).Error
	return count > 0, err
}

// Save creates or updates a currency
func (r *GormCurrencyRepository) Save(ctx context.Context, currency *invoicing.Currency) error {
	model := models.CurrencyModelFromDomain(currency)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return shared.ErrAlreadyExists
		}
		return err
	}
	currency.ID = model.ID
	currency.CreatedAt = model.CreatedAt
	currency.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete removes a currency. Invoices displaying it fall back to the
// configured symbol.
func (r *GormCurrencyRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.InvoiceModel{}).
			Where("currency_id = ?", id).
			Update("currency_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.CurrencyModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// GormRecipientRepository implements RecipientRepository using GORM
type GormRecipientRepository struct {
	db *gorm.DB
}

// NewGormRecipientRepository creates a new GormRecipientRepository
func NewGormRecipientRepository(db *gorm.DB) *GormRecipientRepository {
	return &GormRecipientRepository{db: db}
}

// FindByID finds a recipient by its ID
func (r *GormRecipientRepository) FindByID(ctx context.Context, id int64) (*invoicing.Recipient, error) {
	var model models.RecipientModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll lists recipients, searching name and email
func (r *GormRecipientRepository) FindAll(ctx context.Context, filter shared.Filter) ([]invoicing.Recipient, error) {
	var rows []models.RecipientModel
	query := r.search(r.db.WithContext(ctx).Model(&models.RecipientModel{}), filter).
		Order(recipientSort.orderBy(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit())
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return lo.Map(rows, func(m models.RecipientModel, _ int) invoicing.Recipient { return *m.ToDomain() }), nil
}

// Count counts recipients
func (r *GormRecipientRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.search(r.db.WithContext(ctx).Model(&models.RecipientModel{}), filter).Count(&count).Error
	return count, err
}

func (r *GormRecipientRepository) search(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if s := strings.TrimSpace(filter.Search); s != "" {
		pattern := "%" + strings.ToLower(s) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ?", pattern, pattern)
	}
	return query
}

// Save creates or updates a recipient
func (r *GormRecipientRepository) Save(ctx context.Context, recipient *invoicing.Recipient) error {
	model := models.RecipientModelFromDomain(recipient)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Save(model).Error; err != nil {
		return err
	}
	recipient.ID = model.ID
	recipient.CreatedAt = model.CreatedAt
	recipient.UpdatedAt = model.UpdatedAt
	return nil
}

// Delete removes a recipient
func (r *GormRecipientRepository) Delete(ctx context.Context, id int64) error {
	result := r.db.WithContext(ctx).Delete(&models.RecipientModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// GormExportRepository implements ExportRepository using GORM
type GormExportRepository struct {
	db *gorm.DB
}

// NewGormExportRepository creates a new GormExportRepository
func NewGormExportRepository(db *gorm.DB) *GormExportRepository {
	return &GormExportRepository{db: db}
}

// Save appends an export audit row
func (r *GormExportRepository) Save(ctx context.Context, export *invoicing.Export) error {
	model := models.ExportModelFromDomain(export)
	if model.CreatedAt.IsZero() {
		model.CreatedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return err
	}
	export.ID = model.ID
	export.CreatedAt = model.CreatedAt
	return nil
}

// FindAll lists export audit rows, newest first by default
func (r *GormExportRepository) FindAll(ctx context.Context, filter shared.Filter) ([]invoicing.Export, error) {
	var rows []models.ExportModel
	if err := r.db.WithContext(ctx).
		Order(exportSort.orderBy(filter.OrderBy, filter.OrderDir)).
		Offset(filter.Offset()).
		Limit(filter.Limit()).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return lo.Map(rows, func(m models.ExportModel, _ int) invoicing.Export { return *m.ToDomain() }), nil
}

// Count counts export audit rows
func (r *GormExportRepository) Count(ctx context.Context, _ shared.Filter) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.ExportModel{}).Count(&count).Error
	return count, err
}

var (
	_ invoicing.CurrencyRepository  = (*GormCurrencyRepository)(nil)
	_ invoicing.RecipientRepository = (*GormRecipientRepository)(nil)
	_ invoicing.ExportRepository    = (*GormExportRepository)(nil)
)
