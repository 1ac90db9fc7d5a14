package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceStatus_CanTransition(t *testing.T) {
	all := []InvoiceStatus{
		InvoiceStatusDraft,
		InvoiceStatusSent,
		InvoiceStatusPaid,
		InvoiceStatusVoid,
		InvoiceStatusCancelled,
	}

	allowed := map[InvoiceStatus][]InvoiceStatus{
		InvoiceStatusDraft: {InvoiceStatusSent, InvoiceStatusPaid, InvoiceStatusVoid, InvoiceStatusCancelled},
		InvoiceStatusSent:  {InvoiceStatusPaid, InvoiceStatusVoid, InvoiceStatusCancelled},
	}

	for _, from := range all {
		allowedNexts := make(map[InvoiceStatus]bool)
		for _, next := range allowed[from] {
			allowedNexts[next] = true
		}
		for _, to := range all {
			got := from.CanTransition(to)
			assert.Equal(t, allowedNexts[to], got, "%s -> %s", from, to)
		}
	}
}

func TestInvoiceStatus_SelfTransitionRejected(t *testing.T) {
	for _, s := range []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusPaid} {
		assert.False(t, s.CanTransition(s), "%s -> %s", s, s)
	}
}

func TestInvoiceStatus_Terminal(t *testing.T) {
	assert.False(t, InvoiceStatusDraft.Terminal())
	assert.False(t, InvoiceStatusSent.Terminal())
	assert.True(t, InvoiceStatusPaid.Terminal())
	assert.True(t, InvoiceStatusVoid.Terminal())
	assert.True(t, InvoiceStatusCancelled.Terminal())
}

func TestParseInvoiceStatus(t *testing.T) {
	status, ok := ParseInvoiceStatus("paid")
	assert.True(t, ok)
	assert.Equal(t, InvoiceStatusPaid, status)

	status, ok = ParseInvoiceStatus("  Sent ")
	assert.True(t, ok)
	assert.Equal(t, InvoiceStatusSent, status)

	_, ok = ParseInvoiceStatus("ARCHIVED")
	assert.False(t, ok)

	_, ok = ParseInvoiceStatus("")
	assert.False(t, ok)
}

func TestErrorKindOf(t *testing.T) {
	err := E(ErrNotFound, "invoice not found")
	assert.Equal(t, ErrNotFound, KindOf(err))
	assert.True(t, IsKind(err, ErrNotFound))

	wrapped := Wrap(ErrInternal, err, "load invoice")
	assert.Equal(t, ErrInternal, KindOf(wrapped))

	assert.Equal(t, ErrInternal, KindOf(assert.AnError))
}
