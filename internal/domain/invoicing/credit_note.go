package invoicing

// NewCreditNote derives an unsaved credit note from original. Recipient, cost
// code and every line item are copied; the credit note is never a draft and is
// dated today. The caller must check that no credit note exists yet.
func NewCreditNote(original *Invoice) (*Invoice, error) {
	if original.IsCreditNote {
		return nil, ErrAlreadyCreditNote
	}
	if !original.IsPersisted() {
		return nil, ErrAllocationOrdering
	}

	cn, err := NewInvoice(original.RecipientID, Today(), false)
	if err != nil {
		return nil, err
	}
	cn.CostCode = original.CostCode
	cn.Recipient = original.Recipient
	cn.IsCreditNote = true
	relatedID := original.ID
	cn.RelatedInvoiceID = &relatedID
	for _, item := range original.Items {
		cn.Items = append(cn.Items, item.Copy())
	}
	cn.Raise(NewCreditNoteIssuedEvent(cn, original))
	return cn, nil
}
