package invoicing

import (
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Amounts are kept to two decimal places
const amountPlaces = 2

// MaxDescriptionLength bounds a line item description
const MaxDescriptionLength = 100

// LineItem is a billable quantity at a unit price, owned by one invoice
type LineItem struct {
	ID          int64           `json:"id"`
	InvoiceID   int64           `json:"invoice_id"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    decimal.Decimal `json:"quantity"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// NewLineItem validates and creates a line item. A zero quantity defaults to 1.
func NewLineItem(description string, unitPrice, quantity decimal.Decimal) (*LineItem, error) {
	if quantity.IsZero() {
		quantity = decimal.NewFromInt(1)
	}
	if err := validateLineItem(description, quantity); err != nil {
		return nil, err
	}
	now := time.Now()
	return &LineItem{
		Description: description,
		UnitPrice:   unitPrice,
		Quantity:    quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

func validateLineItem(description string, quantity decimal.Decimal) error {
	if description == "" {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Item description cannot be empty")
	}
	if len([]rune(description)) > MaxDescriptionLength {
		return shared.NewDomainError("INVALID_DESCRIPTION", "Item description cannot exceed 100 characters")
	}
	if quantity.IsNegative() {
		return shared.NewDomainError("INVALID_QUANTITY", "Item quantity cannot be negative")
	}
	return nil
}

// Total returns unit price times quantity rounded half-even to two places
func (i LineItem) Total() decimal.Decimal {
	return i.UnitPrice.Mul(i.Quantity).RoundBank(amountPlaces)
}

// Copy returns an unsaved item with the same description, price and quantity
func (i LineItem) Copy() LineItem {
	now := time.Now()
	return LineItem{
		Description: i.Description,
		UnitPrice:   i.UnitPrice,
		Quantity:    i.Quantity,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
