package constants

// InvoiceStatus is the canonical lifecycle status for rows in invoices.
type InvoiceStatus string

// Stable values (store these exact strings in DB).
const (
	StatusDraft     InvoiceStatus = "draft"     // created, not yet sent
	StatusSent      InvoiceStatus = "sent"      // delivered to the client
	StatusPaid      InvoiceStatus = "paid"      // payment received
	StatusCancelled InvoiceStatus = "cancelled" // terminal, no payment expected
)

var transitions = map[InvoiceStatus][]InvoiceStatus{
	StatusDraft:     {StatusSent, StatusCancelled},
	StatusSent:      {StatusPaid, StatusCancelled},
	StatusPaid:      {},
	StatusCancelled: {},
}

// CanTransition reports whether moving from one status to another is allowed.
func CanTransition(from, to InvoiceStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ParseStatus canonicalizes a status string; unknown values report ok=false.
func ParseStatus(s string) (InvoiceStatus, bool) {
	switch InvoiceStatus(s) {
	case StatusDraft, StatusSent, StatusPaid, StatusCancelled:
		return InvoiceStatus(s), true
	}
	return "", false
}
