package service

import (
	"context"

	"github.com/ayo6706/booking-billing/internal/domain"
	"github.com/ayo6706/booking-billing/internal/models"
	"github.com/google/uuid"
)

// transitionInvoice validates and persists a status transition on an already
// row-locked invoice, writing the audit trail in the same transaction.
func transitionInvoice(ctx context.Context, tx Ledger, inv *models.Invoice, next domain.InvoiceStatus, actor models.ActorContext, action string) error {
	if !inv.Status.CanTransition(next) {
		return domain.E(domain.ErrInvalidTransition, "cannot transition invoice from %s to %s", inv.Status, next)
	}

	rows, err := tx.UpdateInvoiceStatus(ctx, inv.ID, inv.TenantID, string(next))
	if err != nil {
		return domain.Wrap(domain.ErrInternal, err, "persist status transition")
	}
	if err := requireExactlyOne(rows, "update invoice status"); err != nil {
		return domain.Wrap(domain.ErrInternal, err, "persist status transition")
	}

	if err := writeAudit(ctx, tx, "invoice", inv.ID, &actor.UserID, action, string(inv.Status), string(next), nil); err != nil {
		return err
	}

	inv.Status = next
	return nil
}

// uninvoiceItems resets the invoiced flag on every unit referenced by the
// invoice's items, freeing them for a future invoice. This is the only
// mutation the billing core performs on externally-owned rows, and it must
// share the cancellation transaction.
func uninvoiceItems(ctx context.Context, tx Ledger, inv *models.Invoice) error {
	ids := unitIDs(inv)
	if len(ids) == 0 {
		return nil
	}

	rows, err := tx.MarkInvoiced(ctx, inv.UnitKind, ids, false)
	if err != nil {
		return domain.Wrap(domain.ErrInternal, err, "reset invoiced flags")
	}
	if rows != int64(len(ids)) {
		return domain.E(domain.ErrInternal, "reset invoiced flags touched %d of %d units", rows, len(ids))
	}
	return nil
}

func unitIDs(inv *models.Invoice) []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(inv.Items))
	for _, item := range inv.Items {
		if id := item.UnitID(); id != uuid.Nil {
			ids = append(ids, id)
		}
	}
	return ids
}
