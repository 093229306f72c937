package invoicing

// PaidStatus decides whether inv is settled.
//
//   - a credit note never needs payment
//   - an invoice with a credit note is paid when the credit note covers its total
//   - otherwise the payments must cover the total
//
// creditNote is the credit note issued for inv, or nil when none exists.
func PaidStatus(inv *Invoice, creditNote *Invoice) bool {
	if inv.IsCreditNote {
		return true
	}
	if creditNote != nil {
		return creditNote.Total().GreaterThanOrEqual(inv.Total())
	}
	return inv.PaymentsTotal().GreaterThanOrEqual(inv.Total())
}
