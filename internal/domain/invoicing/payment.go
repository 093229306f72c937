package invoicing

import (
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how a payment was made
type PaymentMethod string

const (
	PaymentMethodCheck        PaymentMethod = "check"
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
)

// IsValid checks if the method is known. The empty method is allowed.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case "", PaymentMethodCheck, PaymentMethodBankTransfer:
		return true
	}
	return false
}

// String returns the string representation of PaymentMethod
func (m PaymentMethod) String() string {
	return string(m)
}

// MaxNoteLength bounds the free-text note on a payment
const MaxNoteLength = 100

// Payment is an amount received against an invoice
type Payment struct {
	ID        int64           `json:"id"`
	InvoiceID int64           `json:"invoice_id"`
	Amount    decimal.Decimal `json:"amount"`
	PaidDate  *time.Time      `json:"paid_date,omitempty"`
	Method    PaymentMethod   `json:"method,omitempty"`
	Note      string          `json:"note,omitempty"`
	Exported  bool            `json:"exported"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// NewPayment validates and creates a payment
func NewPayment(amount decimal.Decimal, paidDate *time.Time, method PaymentMethod, note string) (*Payment, error) {
	if !amount.IsPositive() {
		return nil, shared.NewDomainError("INVALID_AMOUNT", "Payment amount must be positive")
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_METHOD", "Payment method must be check or bank_transfer")
	}
	if len([]rune(note)) > MaxNoteLength {
		return nil, shared.NewDomainError("INVALID_NOTE", "Payment note cannot exceed 100 characters")
	}
	var paid *time.Time
	if paidDate != nil {
		d := NormalizeDate(*paidDate)
		paid = &d
	}
	now := time.Now()
	return &Payment{
		Amount:    amount.Round(amountPlaces),
		PaidDate:  paid,
		Method:    method,
		Note:      note,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
