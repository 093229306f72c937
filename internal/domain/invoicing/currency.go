package invoicing

import (
	"fmt"
	"strings"
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Currency is reference data used to display invoice amounts
type Currency struct {
	ID         int64     `json:"id"`
	Code       string    `json:"code"`
	PreSymbol  string    `json:"pre_symbol"`
	PostSymbol string    `json:"post_symbol"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewCurrency validates and creates a currency
func NewCurrency(code, preSymbol, postSymbol string) (*Currency, error) {
	c := &Currency{}
	if err := c.Update(code, preSymbol, postSymbol); err != nil {
		return nil, err
	}
	c.CreatedAt = c.UpdatedAt
	return c, nil
}

// Update replaces the currency attributes
func (c *Currency) Update(code, preSymbol, postSymbol string) error {
	code = strings.ToUpper(strings.TrimSpace(code))
	if len(code) != 3 {
		return shared.NewDomainError("INVALID_CURRENCY_CODE", "Currency code must be exactly 3 characters")
	}
	if len([]rune(preSymbol)) > 1 || len([]rune(postSymbol)) > 1 {
		return shared.NewDomainError("INVALID_CURRENCY_SYMBOL", "Currency symbols cannot exceed 1 character")
	}
	c.Code = code
	c.PreSymbol = preSymbol
	c.PostSymbol = postSymbol
	c.UpdatedAt = time.Now()
	return nil
}

// String returns the currency code
func (c *Currency) String() string {
	return c.Code
}

// FormatAmount renders an amount for display. With a currency the layout is
// "<pre> <amount> <post> <code>", otherwise "<amount> <fallbackSymbol>".
func FormatAmount(amount decimal.Decimal, currency *Currency, fallbackSymbol string) string {
	if currency != nil {
		return fmt.Sprintf("%s %s %s %s", currency.PreSymbol, amount.StringFixed(amountPlaces), currency.PostSymbol, currency.Code)
	}
	return fmt.Sprintf("%s %s", amount.StringFixed(amountPlaces), fallbackSymbol)
}
