package service

import (
	"context"

	"github.com/ayo6706/booking-billing/internal/domain"
	"github.com/ayo6706/booking-billing/internal/models"
	"github.com/google/uuid"
)

// checkEligible validates a caller-supplied unit set before it is committed
// into an invoice. It must run inside the create transaction: the fetch locks
// the rows, which is what makes the eligibility check and the invoiced-flag
// write atomic with respect to concurrent creates.
//
// A count mismatch is reported as a plain not-found regardless of whether the
// unit is missing, owned by another tenant, or already billed, so callers
// cannot probe cross-tenant existence.
func checkEligible(ctx context.Context, tx Ledger, kind domain.UnitKind, tenantID uuid.UUID, ids []uuid.UUID, required domain.BillingType, actor models.ActorContext) ([]models.BillingUnit, error) {
	if len(ids) == 0 {
		return nil, domain.E(domain.ErrInvalidRequest, "unit_ids must not be empty")
	}
	if !kind.Valid() {
		return nil, domain.E(domain.ErrInvalidRequest, "unknown unit kind %q", kind)
	}
	if !required.Valid() {
		return nil, domain.E(domain.ErrInvalidRequest, "unknown billing type %q", required)
	}

	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			return nil, domain.E(domain.ErrInvalidRequest, "unit_ids must not contain a nil id")
		}
		if _, dup := seen[id]; dup {
			return nil, domain.E(domain.ErrInvalidRequest, "duplicate unit id %s", id)
		}
		seen[id] = struct{}{}
	}

	units, err := tx.FindBillingUnitsForUpdate(ctx, kind, tenantID, ids)
	if err != nil {
		return nil, domain.Wrap(domain.ErrInternal, err, "fetch billing units")
	}
	if len(units) != len(ids) {
		return nil, domain.E(domain.ErrNotFound, "one or more units were not found or are no longer billable")
	}

	for _, u := range units {
		if u.BillingType != required {
			return nil, domain.E(domain.ErrInvalidBillingType, "unit %s has billing type %s, expected %s", u.ID, u.BillingType, required)
		}
		if u.Kind == domain.UnitKindPayment && u.SettlementStatus != domain.SettlementPaid {
			return nil, domain.E(domain.ErrNotSettled, "payment %s is not settled", u.ID)
		}
		if actor.Role == domain.RolePartner && u.OwnerID != actor.UserID {
			return nil, domain.E(domain.ErrForbidden, "unit %s does not belong to the requesting partner", u.ID)
		}
	}

	return units, nil
}
