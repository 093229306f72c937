package invoicing

import (
	"fmt"
	"sort"
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// ExportState tracks how much of an invoice has been handed to accounting
type ExportState string

const (
	ExportStateNone    ExportState = "none"
	ExportStatePartial ExportState = "partial"
	ExportStateFull    ExportState = "full"
)

// IsValid checks if the state is a valid ExportState
func (s ExportState) IsValid() bool {
	switch s {
	case ExportStateNone, ExportStatePartial, ExportStateFull:
		return true
	}
	return false
}

// String returns the string representation of ExportState
func (s ExportState) String() string {
	return string(s)
}

// Pending reports whether the invoice still has rows to export
func (s ExportState) Pending() bool {
	return s == ExportStateNone || s == ExportStatePartial
}

// Column limits
const (
	MaxCostCodeLength  = 10
	MaxInvoiceIDLength = 10
)

// Invoice is the aggregate root of the invoicing context.
//
// InvoiceID and Number are empty until the first persist and never change
// afterwards. IsPaid is derived and only written by Reconcile.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceID        string      `json:"invoice_id"`
	Number           int         `json:"number"`
	RecipientID      int64       `json:"recipient_id"`
	Recipient        *Recipient  `json:"recipient,omitempty"`
	CurrencyID       *int64      `json:"currency_id,omitempty"`
	Currency         *Currency   `json:"currency,omitempty"`
	InvoiceDate      time.Time   `json:"invoice_date"`
	CostCode         string      `json:"cost_code,omitempty"`
	Draft            bool        `json:"draft"`
	Invoiced         bool        `json:"invoiced"`
	IsPaid           bool        `json:"is_paid"`
	IsCreditNote     bool        `json:"is_credit_note"`
	RelatedInvoiceID *int64      `json:"related_invoice_id,omitempty"`
	ExportState      ExportState `json:"export_state"`
	Items            []LineItem  `json:"items"`
	Payments         []Payment   `json:"payments"`
}

// NewInvoice creates a new invoice for a recipient.
// A zero invoiceDate defaults to today.
func NewInvoice(recipientID int64, invoiceDate time.Time, draft bool) (*Invoice, error) {
	if recipientID <= 0 {
		return nil, shared.NewDomainError("INVALID_RECIPIENT", "Recipient ID cannot be empty")
	}
	if invoiceDate.IsZero() {
		invoiceDate = Today()
	}
	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		RecipientID:       recipientID,
		InvoiceDate:       NormalizeDate(invoiceDate),
		Draft:             draft,
		ExportState:       ExportStateNone,
		Items:             make([]LineItem, 0),
		Payments:          make([]Payment, 0),
	}, nil
}

// Details are the caller-editable invoice attributes
type Details struct {
	RecipientID int64
	CurrencyID  *int64
	InvoiceDate time.Time
	CostCode    string
	Draft       bool
}

// UpdateDetails replaces the editable attributes. Once an identifier has been
// allocated the invoice date may not move to another year, because Number is
// only unique within the year it was allocated in.
func (inv *Invoice) UpdateDetails(d Details) error {
	if d.RecipientID <= 0 {
		return shared.NewDomainError("INVALID_RECIPIENT", "Recipient ID cannot be empty")
	}
	if err := validateCostCode(d.CostCode); err != nil {
		return err
	}
	date := inv.InvoiceDate
	if !d.InvoiceDate.IsZero() {
		date = NormalizeDate(d.InvoiceDate)
	}
	if inv.HasIdentifier() && date.Year() != inv.InvoiceDate.Year() {
		return shared.NewDomainError("INVALID_INVOICE_DATE", "Invoice date cannot move to another year once numbered")
	}

	inv.RecipientID = d.RecipientID
	if inv.Recipient != nil && inv.Recipient.ID != d.RecipientID {
		inv.Recipient = nil
	}
	inv.CurrencyID = d.CurrencyID
	if inv.Currency != nil && (d.CurrencyID == nil || inv.Currency.ID != *d.CurrencyID) {
		inv.Currency = nil
	}
	inv.InvoiceDate = date
	inv.CostCode = d.CostCode
	inv.Draft = d.Draft
	inv.touch()
	return nil
}

// SetCostCode sets the cost accounting code
func (inv *Invoice) SetCostCode(code string) error {
	if err := validateCostCode(code); err != nil {
		return err
	}
	inv.CostCode = code
	inv.touch()
	return nil
}

// SetCurrency sets the display currency. Nil clears it.
func (inv *Invoice) SetCurrency(c *Currency) {
	inv.Currency = c
	if c == nil {
		inv.CurrencyID = nil
	} else {
		id := c.ID
		inv.CurrencyID = &id
	}
	inv.touch()
}

func validateCostCode(code string) error {
	if len([]rune(code)) > MaxCostCodeLength {
		return shared.NewDomainError("INVALID_COST_CODE", "Cost code cannot exceed 10 characters")
	}
	return nil
}

// HasIdentifier reports whether Number and InvoiceID have been allocated
func (inv *Invoice) HasIdentifier() bool {
	return inv.InvoiceID != ""
}

// AssignIdentifier sets Number and InvoiceID together, exactly once.
// The invoice must already carry its storage ID.
func (inv *Invoice) AssignIdentifier(number int, invoiceID string) error {
	if !inv.IsPersisted() {
		return ErrAllocationOrdering
	}
	if inv.HasIdentifier() {
		return ErrIdentifierImmutable
	}
	if number <= 0 || invoiceID == "" {
		return shared.NewDomainError("INVALID_IDENTIFIER", "Invoice number and identifier must be set")
	}
	if len(invoiceID) > MaxInvoiceIDLength {
		return shared.NewDomainError("INVALID_IDENTIFIER", "Invoice identifier cannot exceed 10 characters")
	}
	inv.Number = number
	inv.InvoiceID = invoiceID
	inv.touch()
	inv.Raise(NewInvoiceNumberedEvent(inv))
	return nil
}

// Total sums every item total without further rounding
func (inv *Invoice) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range inv.Items {
		total = total.Add(item.Total())
	}
	return total
}

// PaymentsTotal sums every payment amount
func (inv *Invoice) PaymentsTotal() decimal.Decimal {
	total := decimal.Zero
	for _, p := range inv.Payments {
		total = total.Add(p.Amount)
	}
	return total
}

// AddItem appends a new line item
func (inv *Invoice) AddItem(description string, unitPrice, quantity decimal.Decimal) (*LineItem, error) {
	item, err := NewLineItem(description, unitPrice, quantity)
	if err != nil {
		return nil, err
	}
	item.InvoiceID = inv.ID
	inv.Items = append(inv.Items, *item)
	inv.touch()
	return &inv.Items[len(inv.Items)-1], nil
}

// UpdateItem replaces the attributes of an existing line item
func (inv *Invoice) UpdateItem(itemID int64, description string, unitPrice, quantity decimal.Decimal) (*LineItem, error) {
	idx := inv.itemIndex(itemID)
	if idx < 0 {
		return nil, shared.NewDomainError("ITEM_NOT_FOUND", fmt.Sprintf("Item %d not found on invoice", itemID))
	}
	if quantity.IsZero() {
		quantity = decimal.NewFromInt(1)
	}
	if err := validateLineItem(description, quantity); err != nil {
		return nil, err
	}
	item := &inv.Items[idx]
	item.Description = description
	item.UnitPrice = unitPrice
	item.Quantity = quantity
	item.UpdatedAt = time.Now()
	inv.touch()
	return item, nil
}

// RemoveItem deletes a line item from the invoice
func (inv *Invoice) RemoveItem(itemID int64) error {
	idx := inv.itemIndex(itemID)
	if idx < 0 {
		return shared.NewDomainError("ITEM_NOT_FOUND", fmt.Sprintf("Item %d not found on invoice", itemID))
	}
	inv.Items = append(inv.Items[:idx], inv.Items[idx+1:]...)
	inv.touch()
	return nil
}

func (inv *Invoice) itemIndex(itemID int64) int {
	for i := range inv.Items {
		if inv.Items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// AddPayment records a payment against the invoice
func (inv *Invoice) AddPayment(amount decimal.Decimal, paidDate *time.Time, method PaymentMethod, note string) (*Payment, error) {
	p, err := NewPayment(amount, paidDate, method, note)
	if err != nil {
		return nil, err
	}
	p.InvoiceID = inv.ID
	inv.Payments = append(inv.Payments, *p)
	inv.touch()
	return &inv.Payments[len(inv.Payments)-1], nil
}

// RemovePayment deletes a payment from the invoice
func (inv *Invoice) RemovePayment(paymentID int64) error {
	for i := range inv.Payments {
		if inv.Payments[i].ID == paymentID {
			inv.Payments = append(inv.Payments[:i], inv.Payments[i+1:]...)
			inv.touch()
			return nil
		}
	}
	return shared.NewDomainError("PAYMENT_NOT_FOUND", fmt.Sprintf("Payment %d not found on invoice", paymentID))
}

// LastPayment returns the payment with the latest paid date, or nil.
// Payments without a date sort after dated ones.
func (inv *Invoice) LastPayment() *Payment {
	if len(inv.Payments) == 0 {
		return nil
	}
	sorted := make([]Payment, len(inv.Payments))
	copy(sorted, inv.Payments)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].PaidDate, sorted[j].PaidDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return &sorted[0]
}

// MarkInvoiced records a successful send. It never reverts.
func (inv *Invoice) MarkInvoiced() {
	inv.Invoiced = true
	inv.touch()
	inv.Raise(NewInvoiceSentEvent(inv))
}

// IsDue reports whether the invoice should be sent by the scheduled job
func (inv *Invoice) IsDue(today time.Time) bool {
	return !inv.Draft && !inv.Invoiced && !inv.InvoiceDate.After(NormalizeDate(today))
}

// MarkExported records that the invoice and its current payments were handed
// to accounting. Unpaid invoices stay partial so later payments are picked up.
func (inv *Invoice) MarkExported() {
	for i := range inv.Payments {
		inv.Payments[i].Exported = true
	}
	if inv.IsPaid {
		inv.ExportState = ExportStateFull
	} else {
		inv.ExportState = ExportStatePartial
	}
	inv.touch()
}

// UnexportedPayments returns payments not yet handed to accounting
func (inv *Invoice) UnexportedPayments() []Payment {
	out := make([]Payment, 0, len(inv.Payments))
	for _, p := range inv.Payments {
		if !p.Exported {
			out = append(out, p)
		}
	}
	return out
}

// Reconcile recomputes IsPaid from the credit note, if any, or the payments.
// It returns the new value. See PaidStatus for the rule.
func (inv *Invoice) Reconcile(creditNote *Invoice) bool {
	paid := PaidStatus(inv, creditNote)
	if paid != inv.IsPaid {
		inv.IsPaid = paid
		inv.Raise(NewInvoicePaidStatusChangedEvent(inv))
	}
	return paid
}

func (inv *Invoice) touch() {
	inv.UpdatedAt = time.Now()
}

// Today returns the current date at UTC midnight
func Today() time.Time {
	return NormalizeDate(time.Now())
}

// NormalizeDate drops the clock part of t, keeping its calendar date
func NormalizeDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// YearBounds returns [Jan 1 of year, Jan 1 of year+1)
func YearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(1, 0, 0)
}
