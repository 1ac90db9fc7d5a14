package domain

import "strings"

// InvoiceStatus is the lifecycle state of an invoice.
type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "DRAFT"
	InvoiceStatusSent      InvoiceStatus = "SENT"
	InvoiceStatusPaid      InvoiceStatus = "PAID"
	InvoiceStatusVoid      InvoiceStatus = "VOID"
	InvoiceStatusCancelled InvoiceStatus = "CANCELLED"
)

// invoiceTransitions is the full transition table. PAID, VOID and CANCELLED
// are terminal. Cancellation is a dedicated operation because it carries a
// compensating side effect, but it obeys the same table.
var invoiceTransitions = map[InvoiceStatus]map[InvoiceStatus]struct{}{
	InvoiceStatusDraft: {
		InvoiceStatusSent:      {},
		InvoiceStatusPaid:      {},
		InvoiceStatusVoid:      {},
		InvoiceStatusCancelled: {},
	},
	InvoiceStatusSent: {
		InvoiceStatusPaid:      {},
		InvoiceStatusVoid:      {},
		InvoiceStatusCancelled: {},
	},
	InvoiceStatusPaid:      {},
	InvoiceStatusVoid:      {},
	InvoiceStatusCancelled: {},
}

// ParseInvoiceStatus normalizes caller input into a known status.
func ParseInvoiceStatus(s string) (InvoiceStatus, bool) {
	status := InvoiceStatus(strings.ToUpper(strings.TrimSpace(s)))
	_, ok := invoiceTransitions[status]
	return status, ok
}

// CanTransition reports whether current -> next is an allowed transition.
func (s InvoiceStatus) CanTransition(next InvoiceStatus) bool {
	nextStates, ok := invoiceTransitions[s]
	if !ok {
		return false
	}
	_, ok = nextStates[next]
	return ok
}

// Terminal reports whether no further transitions are allowed from s.
func (s InvoiceStatus) Terminal() bool {
	nextStates, ok := invoiceTransitions[s]
	return ok && len(nextStates) == 0
}
