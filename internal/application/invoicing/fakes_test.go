package invoicing

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/erp/invoicing/internal/domain/invoicing"
	"github.com/erp/invoicing/internal/domain/shared"
)

// memoryInvoiceRepository is an in-memory InvoiceRepository that assigns
// storage IDs the way the database does.
type memoryInvoiceRepository struct {
	mu        sync.Mutex
	invoices  map[int64]invoicing.Invoice
	nextID    int64
	nextChild int64
	saves     int
}

func newMemoryInvoiceRepository() *memoryInvoiceRepository {
	return &memoryInvoiceRepository{invoices: map[int64]invoicing.Invoice{}}
}

func cloneInvoice(inv invoicing.Invoice) invoicing.Invoice {
	out := inv
	out.Items = append([]invoicing.LineItem(nil), inv.Items...)
	out.Payments = append([]invoicing.Payment(nil), inv.Payments...)
	out.PullEvents()
	return out
}

func (r *memoryInvoiceRepository) FindByID(_ context.Context, id int64) (*invoicing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	out := cloneInvoice(inv)
	return &out, nil
}

func (r *memoryInvoiceRepository) FindByInvoiceID(_ context.Context, invoiceID string) (*invoicing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.InvoiceID == invoiceID {
			out := cloneInvoice(inv)
			return &out, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *memoryInvoiceRepository) FindCreditNote(_ context.Context, originalID int64) (*invoicing.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, inv := range r.invoices {
		if inv.RelatedInvoiceID != nil && *inv.RelatedInvoiceID == originalID {
			out := cloneInvoice(inv)
			return &out, nil
		}
	}
	return nil, nil
}

func (r *memoryInvoiceRepository) selectWhere(keep func(invoicing.Invoice) bool) []invoicing.Invoice {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]invoicing.Invoice, 0)
	for _, inv := range r.invoices {
		if keep(inv) {
			out = append(out, cloneInvoice(inv))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func matchesFilter(inv invoicing.Invoice, f invoicing.InvoiceFilter) bool {
	if f.RecipientID != nil && inv.RecipientID != *f.RecipientID {
		return false
	}
	if f.IsPaid != nil && inv.IsPaid != *f.IsPaid {
		return false
	}
	if f.IsCreditNote != nil && inv.IsCreditNote != *f.IsCreditNote {
		return false
	}
	if f.Invoiced != nil && inv.Invoiced != *f.Invoiced {
		return false
	}
	return true
}

func (r *memoryInvoiceRepository) FindAll(_ context.Context, filter invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	return r.selectWhere(func(inv invoicing.Invoice) bool { return matchesFilter(inv, filter) }), nil
}

func (r *memoryInvoiceRepository) Count(_ context.Context, filter invoicing.InvoiceFilter) (int64, error) {
	return int64(len(r.selectWhere(func(inv invoicing.Invoice) bool { return matchesFilter(inv, filter) }))), nil
}

func (r *memoryInvoiceRepository) FindDue(_ context.Context, today time.Time) ([]invoicing.Invoice, error) {
	return r.selectWhere(func(inv invoicing.Invoice) bool { return inv.IsDue(today) }), nil
}

func (r *memoryInvoiceRepository) FindInvoiced(_ context.Context, _ invoicing.InvoiceFilter) ([]invoicing.Invoice, error) {
	return r.selectWhere(func(inv invoicing.Invoice) bool { return inv.Invoiced && !inv.Draft }), nil
}

func (r *memoryInvoiceRepository) FindExportable(_ context.Context) ([]invoicing.Invoice, error) {
	return r.selectWhere(func(inv invoicing.Invoice) bool { return inv.ExportState.Pending() }), nil
}

func (r *memoryInvoiceRepository) Save(_ context.Context, inv *invoicing.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	if inv.ID == 0 {
		r.nextID++
		inv.ID = r.nextID
	}
	for i := range inv.Items {
		inv.Items[i].InvoiceID = inv.ID
		if inv.Items[i].ID == 0 {
			r.nextChild++
			inv.Items[i].ID = r.nextChild
		}
	}
	for i := range inv.Payments {
		inv.Payments[i].InvoiceID = inv.ID
		if inv.Payments[i].ID == 0 {
			r.nextChild++
			inv.Payments[i].ID = r.nextChild
		}
	}
	r.invoices[inv.ID] = cloneInvoice(*inv)
	return nil
}

func (r *memoryInvoiceRepository) get(id int64) invoicing.Invoice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneInvoice(r.invoices[id])
}

// memorySequenceRepository computes the next number from the stored invoices
type memorySequenceRepository struct {
	invoices *memoryInvoiceRepository
}

func (s *memorySequenceRepository) NextNumber(_ context.Context, year int) (int, error) {
	s.invoices.mu.Lock()
	defer s.invoices.mu.Unlock()
	highest := 0
	for _, inv := range s.invoices.invoices {
		if inv.InvoiceDate.Year() == year && inv.Number > highest {
			highest = inv.Number
		}
	}
	return highest + 1, nil
}

var (
	_ invoicing.InvoiceRepository  = (*memoryInvoiceRepository)(nil)
	_ invoicing.SequenceRepository = (*memorySequenceRepository)(nil)
)
