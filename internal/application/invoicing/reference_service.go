package invoicing

import (
	"context"
	"fmt"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
)

// CurrencyService manages currency reference data
type CurrencyService struct {
	repo invoicing.CurrencyRepository
}

// NewCurrencyService creates a new CurrencyService
func NewCurrencyService(repo invoicing.CurrencyRepository) *CurrencyService {
	return &CurrencyService{repo: repo}
}

// Create adds a currency. Codes are unique.
func (s *CurrencyService) Create(ctx context.Context, code, preSymbol, postSymbol string) (*invoicing.Currency, error) {
	c, err := invoicing.NewCurrency(code, preSymbol, postSymbol)
	if err != nil {
		return nil, err
	}
	exists, err := s.repo.ExistsByCode(ctx, c.Code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Currency %s already exists", c.Code))
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Update changes a currency
func (s *CurrencyService) Update(ctx context.Context, id int64, code, preSymbol, postSymbol string) (*invoicing.Currency, error) {
	c, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	previous := c.Code
	if err := c.Update(code, preSymbol, postSymbol); err != nil {
		return nil, err
	}
	if c.Code != previous {
		exists, err := s.repo.ExistsByCode(ctx, c.Code)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError("ALREADY_EXISTS", fmt.Sprintf("Currency %s already exists", c.Code))
		}
	}
	if err := s.repo.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get returns a currency
func (s *CurrencyService) Get(ctx context.Context, id int64) (*invoicing.Currency, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns a page of currencies
func (s *CurrencyService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[invoicing.Currency], error) {
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[invoicing.Currency]{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[invoicing.Currency]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.Limit()), nil
}

// Delete removes a currency; invoices using it lose their currency
func (s *CurrencyService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// RecipientService manages the parties invoices are addressed to
type RecipientService struct {
	repo        invoicing.RecipientRepository
	invoiceRepo invoicing.InvoiceRepository
}

// NewRecipientService creates a new RecipientService
func NewRecipientService(repo invoicing.RecipientRepository, invoiceRepo invoicing.InvoiceRepository) *RecipientService {
	return &RecipientService{repo: repo, invoiceRepo: invoiceRepo}
}

// Create adds a recipient
func (s *RecipientService) Create(ctx context.Context, name, email, address string) (*invoicing.Recipient, error) {
	r, err := invoicing.NewRecipient(name, email, address)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Update changes a recipient
func (s *RecipientService) Update(ctx context.Context, id int64, name, email, address string) (*invoicing.Recipient, error) {
	r, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.Update(name, email, address); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Get returns a recipient
func (s *RecipientService) Get(ctx context.Context, id int64) (*invoicing.Recipient, error) {
	return s.repo.FindByID(ctx, id)
}

// List returns a page of recipients
func (s *RecipientService) List(ctx context.Context, filter shared.Filter) (shared.Paginated[invoicing.Recipient], error) {
	items, err := s.repo.FindAll(ctx, filter)
	if err != nil {
		return shared.Paginated[invoicing.Recipient]{}, err
	}
	total, err := s.repo.Count(ctx, filter)
	if err != nil {
		return shared.Paginated[invoicing.Recipient]{}, err
	}
	return shared.NewPaginated(items, total, filter.Page, filter.Limit()), nil
}

// Delete removes a recipient that has no invoices
func (s *RecipientService) Delete(ctx context.Context, id int64) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return err
	}
	filter := invoicing.DefaultInvoiceFilter()
	filter.RecipientID = &id
	count, err := s.invoiceRepo.Count(ctx, filter)
	if err != nil {
		return err
	}
	if count > 0 {
		return shared.NewDomainError("INVALID_STATE", "Recipient still has invoices")
	}
	return s.repo.Delete(ctx, id)
}
