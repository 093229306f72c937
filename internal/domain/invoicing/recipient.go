package invoicing

import (
	"net/mail"
	"strings"
	"time"

	"github.com/erp/invoicing/internal/domain/shared"
)

// Recipient is the party an invoice is addressed to
type Recipient struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Address   string    `json:"address,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewRecipient validates and creates a recipient
func NewRecipient(name, email, address string) (*Recipient, error) {
	r := &Recipient{}
	if err := r.Update(name, email, address); err != nil {
		return nil, err
	}
	r.CreatedAt = r.UpdatedAt
	return r, nil
}

// Update replaces the recipient attributes
func (r *Recipient) Update(name, email, address string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_RECIPIENT_NAME", "Recipient name cannot be empty")
	}
	email = strings.TrimSpace(email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return shared.NewDomainError("INVALID_EMAIL", "Recipient email is not a valid address")
		}
	}
	r.Name = name
	r.Email = email
	r.Address = address
	r.UpdatedAt = time.Now()
	return nil
}

// HasEmail reports whether invoices can be mailed to this recipient
func (r *Recipient) HasEmail() bool {
	return r != nil && r.Email != ""
}
