package models

import (
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for the Invoice aggregate root.
// InvoiceID stays NULL between the first insert and identifier allocation.
type InvoiceModel struct {
	AggregateModel
	InvoiceID        *string               `gorm:"type:varchar(10);uniqueIndex:idx_invoices_invoice_id"`
	Number           int                   `gorm:"not null;default:0;index:idx_invoices_date_number,priority:2"`
	RecipientID      int64                 `gorm:"not null;index"`
	Recipient        *RecipientModel       `gorm:"foreignKey:RecipientID;references:ID"`
	CurrencyID       *int64                `gorm:"index"`
	Currency         *CurrencyModel        `gorm:"foreignKey:CurrencyID;references:ID"`
	InvoiceDate      time.Time             `gorm:"type:date;not null;index:idx_invoices_date_number,priority:1"`
	CostCode         string                `gorm:"type:varchar(10);not null;default:''"`
	Draft            bool                  `gorm:"not null;default:false"`
	Invoiced         bool                  `gorm:"not null;default:false;index"`
	IsPaid           bool                  `gorm:"not null;default:false"`
	IsCreditNote     bool                  `gorm:"not null;default:false"`
	RelatedInvoiceID *int64                `gorm:"uniqueIndex:idx_invoices_related_invoice"`
	ExportState      invoicing.ExportState `gorm:"type:varchar(10);not null;default:'none';index"`
	Items            []LineItemModel       `gorm:"foreignKey:InvoiceID;references:ID"`
	Payments         []PaymentModel        `gorm:"foreignKey:InvoiceID;references:ID"`
}

// TableName returns the table name for GORM
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts the persistence model to a domain Invoice
func (m *InvoiceModel) ToDomain() *invoicing.Invoice {
	inv := &invoicing.Invoice{
		BaseAggregateRoot: m.toDomain(),
		Number:            m.Number,
		RecipientID:       m.RecipientID,
		CurrencyID:        m.CurrencyID,
		InvoiceDate:       invoicing.NormalizeDate(m.InvoiceDate),
		CostCode:          m.CostCode,
		Draft:             m.Draft,
		Invoiced:          m.Invoiced,
		IsPaid:            m.IsPaid,
		IsCreditNote:      m.IsCreditNote,
		RelatedInvoiceID:  m.RelatedInvoiceID,
		ExportState:       m.ExportState,
		Items:             make([]invoicing.LineItem, len(m.Items)),
		Payments:          make([]invoicing.Payment, len(m.Payments)),
	}
	if m.InvoiceID != nil {
		inv.InvoiceID = *m.InvoiceID
	}
	if m.Recipient != nil {
		inv.Recipient = m.Recipient.ToDomain()
	}
	if m.Currency != nil {
		inv.Currency = m.Currency.ToDomain()
	}
	for i := range m.Items {
		inv.Items[i] = *m.Items[i].ToDomain()
	}
	for i := range m.Payments {
		inv.Payments[i] = *m.Payments[i].ToDomain()
	}
	return inv
}

// FromDomain populates the persistence model from a domain Invoice.
// Recipient and Currency are references and are never written through it.
func (m *InvoiceModel) FromDomain(inv *invoicing.Invoice) {
	m.AggregateModel = aggregateFromDomain(inv.BaseAggregateRoot)
	m.InvoiceID = nil
	if inv.InvoiceID != "" {
		id := inv.InvoiceID
		m.InvoiceID = &id
	}
	m.Number = inv.Number
	m.RecipientID = inv.RecipientID
	m.CurrencyID = inv.CurrencyID
	m.InvoiceDate = invoicing.NormalizeDate(inv.InvoiceDate)
	m.CostCode = inv.CostCode
	m.Draft = inv.Draft
	m.Invoiced = inv.Invoiced
	m.IsPaid = inv.IsPaid
	m.IsCreditNote = inv.IsCreditNote
	m.RelatedInvoiceID = inv.RelatedInvoiceID
	m.ExportState = inv.ExportState
	if m.ExportState == "" {
		m.ExportState = invoicing.ExportStateNone
	}
	m.Items = make([]LineItemModel, len(inv.Items))
	for i := range inv.Items {
		m.Items[i] = *LineItemModelFromDomain(&inv.Items[i])
		m.Items[i].InvoiceID = inv.ID
	}
	m.Payments = make([]PaymentModel, len(inv.Payments))
	for i := range inv.Payments {
		m.Payments[i] = *PaymentModelFromDomain(&inv.Payments[i])
		m.Payments[i].InvoiceID = inv.ID
	}
}

// InvoiceModelFromDomain creates a new persistence model from a domain Invoice
func InvoiceModelFromDomain(inv *invoicing.Invoice) *InvoiceModel {
	m := &InvoiceModel{}
	m.FromDomain(inv)
	return m
}

// LineItemModel is the persistence model for an invoice line item
type LineItemModel struct {
	ID          int64           `gorm:"primaryKey;autoIncrement"`
	InvoiceID   int64           `gorm:"not null;index"`
	Description string          `gorm:"type:varchar(100);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null;default:1"`
	CreatedAt   time.Time       `gorm:"not null"`
	UpdatedAt   time.Time       `gorm:"not null"`
}

// TableName returns the table name for GORM
func (LineItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts the persistence model to a domain LineItem
func (m *LineItemModel) ToDomain() *invoicing.LineItem {
	return &invoicing.LineItem{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		Description: m.Description,
		UnitPrice:   m.UnitPrice,
		Quantity:    m.Quantity,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// LineItemModelFromDomain creates a new persistence model from a domain LineItem
func LineItemModelFromDomain(i *invoicing.LineItem) *LineItemModel {
	return &LineItemModel{
		ID:          i.ID,
		InvoiceID:   i.InvoiceID,
		Description: i.Description,
		UnitPrice:   i.UnitPrice,
		Quantity:    i.Quantity,
		CreatedAt:   i.CreatedAt,
		UpdatedAt:   i.UpdatedAt,
	}
}

// PaymentModel is the persistence model for a payment
type PaymentModel struct {
	ID        int64                   `gorm:"primaryKey;autoIncrement"`
	InvoiceID int64                   `gorm:"not null;index"`
	Amount    decimal.Decimal         `gorm:"type:decimal(18,4);not null"`
	PaidDate  *time.Time              `gorm:"type:date"`
	Method    invoicing.PaymentMethod `gorm:"type:varchar(20);not null;default:''"`
	Note      string                  `gorm:"type:varchar(100);not null;default:''"`
	Exported  bool                    `gorm:"not null;default:false"`
	CreatedAt time.Time               `gorm:"not null"`
	UpdatedAt time.Time               `gorm:"not null"`
}

// TableName returns the table name for GORM
func (PaymentModel) TableName() string {
	return "invoice_payments"
}

// ToDomain converts the persistence model to a domain Payment
func (m *PaymentModel) ToDomain() *invoicing.Payment {
	p := &invoicing.Payment{
		ID:        m.ID,
		InvoiceID: m.InvoiceID,
		Amount:    m.Amount,
		Method:    m.Method,
		Note:      m.Note,
		Exported:  m.Exported,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
	if m.PaidDate != nil {
		d := invoicing.NormalizeDate(*m.PaidDate)
		p.PaidDate = &d
	}
	return p
}

// PaymentModelFromDomain creates a new persistence model from a domain Payment
func PaymentModelFromDomain(p *invoicing.Payment) *PaymentModel {
	return &PaymentModel{
		ID:        p.ID,
		InvoiceID: p.InvoiceID,
		Amount:    p.Amount,
		PaidDate:  p.PaidDate,
		Method:    p.Method,
		Note:      p.Note,
		Exported:  p.Exported,
		CreatedAt: p.CreatedAt,
		UpdatedAt: p.UpdatedAt,
	}
}

// CurrencyModel is the persistence model for display currencies
type CurrencyModel struct {
	BaseModel
	Code       string `gorm:"type:varchar(3);not null;uniqueIndex"`
	PreSymbol  string `gorm:"type:varchar(3);not null;default:''"`
	PostSymbol string `gorm:"type:varchar(3);not null;default:''"`
}

// TableName returns the table name for GORM
func (CurrencyModel) TableName() string {
	return "currencies"
}

// ToDomain converts the persistence model to a domain Currency
func (m *CurrencyModel) ToDomain() *invoicing.Currency {
	return &invoicing.Currency{
		ID:         m.ID,
		Code:       m.Code,
		PreSymbol:  m.PreSymbol,
		PostSymbol: m.PostSymbol,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// CurrencyModelFromDomain creates a new persistence model from a domain Currency
func CurrencyModelFromDomain(c *invoicing.Currency) *CurrencyModel {
	m := &CurrencyModel{
		Code:       c.Code,
		PreSymbol:  c.PreSymbol,
		PostSymbol: c.PostSymbol,
	}
	m.ID = c.ID
	m.CreatedAt = c.CreatedAt
	m.UpdatedAt = c.UpdatedAt
	return m
}

// RecipientModel is the persistence model for invoice recipients
type RecipientModel struct {
	BaseModel
	Name    string `gorm:"type:varchar(200);not null"`
	Email   string `gorm:"type:varchar(254);not null;default:''"`
	Address string `gorm:"type:text;not null;default:''"`
}

// TableName returns the table name for GORM
func (RecipientModel) TableName() string {
	return "recipients"
}

// ToDomain converts the persistence model to a domain Recipient
func (m *RecipientModel) ToDomain() *invoicing.Recipient {
	return &invoicing.Recipient{
		ID:        m.ID,
		Name:      m.Name,
		Email:     m.Email,
		Address:   m.Address,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

// RecipientModelFromDomain creates a new persistence model from a domain Recipient
func RecipientModelFromDomain(r *invoicing.Recipient) *RecipientModel {
	m := &RecipientModel{
		Name:    r.Name,
		Email:   r.Email,
		Address: r.Address,
	}
	m.ID = r.ID
	m.CreatedAt = r.CreatedAt
	m.UpdatedAt = r.UpdatedAt
	return m
}

// ExportModel is the append-only audit row of a live export
type ExportModel struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	Date          time.Time `gorm:"type:date;not null;index"`
	FileReference string    `gorm:"type:varchar(500);not null"`
	CreatedAt     time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (ExportModel) TableName() string {
	return "exports"
}

// ToDomain converts the persistence model to a domain Export
func (m *ExportModel) ToDomain() *invoicing.Export {
	return &invoicing.Export{
		ID:            m.ID,
		Date:          invoicing.NormalizeDate(m.Date),
		FileReference: m.FileReference,
		CreatedAt:     m.CreatedAt,
	}
}

// ExportModelFromDomain creates a new persistence model from a domain Export
func ExportModelFromDomain(e *invoicing.Export) *ExportModel {
	return &ExportModel{
		ID:            e.ID,
		Date:          e.Date,
		FileReference: e.FileReference,
		CreatedAt:     e.CreatedAt,
	}
}

// InvoiceSequenceModel is the per-year counter row locked while a number is
// allocated
type InvoiceSequenceModel struct {
	Year       int       `gorm:"primaryKey;autoIncrement:false"`
	LastNumber int       `gorm:"not null"`
	UpdatedAt  time.Time `gorm:"not null"`
}

// TableName returns the table name for GORM
func (InvoiceSequenceModel) TableName() string {
	return "invoice_sequences"
}

// AllModels lists every model for AutoMigrate in tests
func AllModels() []any {
	return []any{
		&CurrencyModel{},
		&RecipientModel{},
		&InvoiceModel{},
		&LineItemModel{},
		&PaymentModel{},
		&ExportModel{},
		&InvoiceSequenceModel{},
	}
}
