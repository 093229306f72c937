package persistence

import (
	"context"
	"fmt"
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSequenceRepository allocates yearly invoice numbers.
//
// The per-year counter row is created on demand and locked FOR UPDATE, so
// concurrent allocations for the same year queue on it until the surrounding
// transaction ends. The highest number already stored in invoices is also
// consulted, which keeps allocation correct for rows imported without a
// counter.
type GormSequenceRepository struct {
	db *gorm.DB
}

// NewGormSequenceRepository creates a new GormSequenceRepository
func NewGormSequenceRepository(db *gorm.DB) *GormSequenceRepository {
	return &GormSequenceRepository{db: db}
}

// NextNumber returns the next free number for year and records it
func (r *GormSequenceRepository) NextNumber(ctx context.Context, year int) (int, error) {
	db := r.db.WithContext(ctx)
	now := time.Now()

	if err := db.Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.InvoiceSequenceModel{Year: year, UpdatedAt: now}).Error; err != nil {
		return 0, fmt.Errorf("failed to create sequence row for %d: %w", year, err)
	}

	var seq models.InvoiceSequenceModel
	if err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("year = ?", year).
		First(&seq).Error; err != nil {
		return 0, fmt.Errorf("failed to lock sequence row for %d: %w", year, err)
	}

	start, end := invoicing.YearBounds(year)
	var maxNumber int
	if err := db.Model(&models.InvoiceModel{}).
		Select("COALESCE(MAX(number), 0)").
		Where("invoice_date >= ? AND invoice_date < ? AND invoice_id IS NOT NULL", start, end).
		Scan(&maxNumber).Error; err != nil {
		return 0, fmt.Errorf("failed to read highest number for %d: %w", year, err)
	}

	next := max(seq.LastNumber, maxNumber) + 1
	if err := db.Model(&models.InvoiceSequenceModel{}).
		Where("year = ?", year).
		Updates(map[string]any{"last_number": next, "updated_at": now}).Error; err != nil {
		return 0, fmt.Errorf("failed to advance sequence for %d: %w", year, err)
	}
	return next, nil
}

// Ensure GormSequenceRepository implements SequenceRepository
var _ invoicing.SequenceRepository = (*GormSequenceRepository)(nil)
