package service

import (
	"context"

	"github.com/ayo6706/booking-billing/internal/domain"
	"github.com/ayo6706/booking-billing/internal/models"
	"github.com/ayo6706/booking-billing/internal/observability"
	"github.com/ayo6706/booking-billing/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// createAttempts bounds invoice-number retries after a unique-constraint
// rejection before the conflict is surfaced to the caller.
const createAttempts = 3

// InvoiceService groups a tenant's bookings or payments into invoices and
// manages the invoice lifecycle. Every mutating operation runs in a single
// transaction so the eligibility check, the invoice insert and the
// invoiced-flag writes are atomic.
type InvoiceService struct {
	store   LedgerStore
	numbers *NumberGenerator
}

// NewInvoiceService creates the billing orchestrator.
func NewInvoiceService(store LedgerStore, numbers *NumberGenerator) *InvoiceService {
	if numbers == nil {
		numbers = NewNumberGenerator()
	}
	return &InvoiceService{store: store, numbers: numbers}
}

// CreateInvoiceCmd is the validated input for Create.
type CreateInvoiceCmd struct {
	UnitKind    domain.UnitKind
	UnitIDs     []uuid.UUID
	BillingType domain.BillingType
	Notes       string
}

// Create groups the given units into a new DRAFT invoice. Status is always
// server-assigned; callers cannot create an invoice in any other state.
// Any failure before commit leaves no invoice row and no invoiced flag set.
func (s *InvoiceService) Create(ctx context.Context, actor models.ActorContext, cmd CreateInvoiceCmd) (*models.Invoice, error) {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleManager, domain.RolePartner); err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < createAttempts; attempt++ {
		inv, err := s.createOnce(ctx, actor, cmd)
		if err == nil {
			observability.IncrementInvoiceCreated(string(cmd.BillingType))
			return inv, nil
		}
		if !repository.IsConflict(err) {
			return nil, err
		}
		lastErr = err
		zap.L().Warn("invoice number conflict, retrying with fresh suffix",
			zap.Int("attempt", attempt+1),
			zap.String("tenant_id", actor.TenantID.String()))
	}
	return nil, domain.Wrap(domain.ErrStorageConflict, lastErr, "could not allocate a unique invoice number")
}

func (s *InvoiceService) createOnce(ctx context.Context, actor models.ActorContext, cmd CreateInvoiceCmd) (*models.Invoice, error) {
	var created *models.Invoice

	err := s.store.RunInTx(ctx, func(tx Ledger) error {
		units, err := checkEligible(ctx, tx, cmd.UnitKind, actor.TenantID, cmd.UnitIDs, cmd.BillingType, actor)
		if err != nil {
			return err
		}

		tenant, err := tx.GetTenant(ctx, actor.TenantID)
		if err != nil {
			return domain.Wrap(domain.ErrInternal, err, "load tenant")
		}
		if tenant == nil {
			return domain.E(domain.ErrNotFound, "tenant not found")
		}

		total, items := aggregate(units)

		inv := &models.Invoice{
			ID:            uuid.New(),
			TenantID:      actor.TenantID,
			InvoiceNumber: s.numbers.Generate(tenant.Slug),
			BillingType:   cmd.BillingType,
			UnitKind:      cmd.UnitKind,
			TotalAmount:   total,
			Currency:      tenant.Currency,
			Status:        domain.InvoiceStatusDraft,
			Notes:         cmd.Notes,
			CreatedBy:     actor.UserID,
			Items:         items,
		}

		if err := tx.InsertInvoice(ctx, inv); err != nil {
			// Unique violations bubble raw so Create can retry the number.
			if repository.IsConflict(err) {
				return err
			}
			return domain.Wrap(domain.ErrInternal, err, "insert invoice")
		}

		rows, err := tx.MarkInvoiced(ctx, cmd.UnitKind, cmd.UnitIDs, true)
		if err != nil {
			return domain.Wrap(domain.ErrInternal, err, "mark units invoiced")
		}
		if rows != int64(len(cmd.UnitIDs)) {
			return domain.E(domain.ErrInternal, "marked %d of %d units invoiced", rows, len(cmd.UnitIDs))
		}

		if err := writeAudit(ctx, tx, "invoice", inv.ID, &actor.UserID, "invoice.create", "", string(inv.Status), auditMetadata(map[string]any{
			"invoice_number": inv.InvoiceNumber,
			"unit_count":     len(cmd.UnitIDs),
			"total_micros":   inv.TotalAmount,
		})); err != nil {
			return err
		}

		created = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// List returns the tenant's invoices, newest first.
func (s *InvoiceService) List(ctx context.Context, actor models.ActorContext, filter models.InvoiceFilter) ([]models.Invoice, error) {
	if _, ok := domain.InvoiceReadRoles[actor.Role]; !ok {
		return nil, domain.E(domain.ErrForbidden, "role %q may not list invoices", actor.Role)
	}

	invoices, err := s.store.Ledger().ListInvoices(ctx, actor.TenantID, filter)
	if err != nil {
		return nil, domain.Wrap(domain.ErrInternal, err, "list invoices")
	}
	return invoices, nil
}

// Get returns one invoice with items, or not-found if absent or owned by
// another tenant.
func (s *InvoiceService) Get(ctx context.Context, actor models.ActorContext, id uuid.UUID) (*models.Invoice, error) {
	if _, ok := domain.InvoiceReadRoles[actor.Role]; !ok {
		return nil, domain.E(domain.ErrForbidden, "role %q may not read invoices", actor.Role)
	}

	inv, err := s.store.Ledger().GetInvoice(ctx, id, actor.TenantID)
	if err != nil {
		return nil, domain.Wrap(domain.ErrInternal, err, "get invoice")
	}
	if inv == nil {
		return nil, domain.E(domain.ErrNotFound, "invoice not found")
	}
	return inv, nil
}

// UpdateStatus applies a lifecycle transition. Cancellation is not reachable
// through here because it carries a compensating side effect; callers use
// Cancel instead.
func (s *InvoiceService) UpdateStatus(ctx context.Context, actor models.ActorContext, id uuid.UUID, next domain.InvoiceStatus) (*models.Invoice, error) {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleManager); err != nil {
		return nil, err
	}
	if next == domain.InvoiceStatusCancelled {
		return nil, domain.E(domain.ErrInvalidRequest, "cancellation must use the cancel operation")
	}

	var updated *models.Invoice
	err := s.store.RunInTx(ctx, func(tx Ledger) error {
		inv, err := tx.GetInvoiceForUpdate(ctx, id, actor.TenantID)
		if err != nil {
			return domain.Wrap(domain.ErrInternal, err, "load invoice")
		}
		if inv == nil {
			return domain.E(domain.ErrNotFound, "invoice not found")
		}

		if err := transitionInvoice(ctx, tx, inv, next, actor, "invoice.status"); err != nil {
			return err
		}

		updated = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.IncrementInvoiceTransition(string(next))
	return updated, nil
}

// Cancel transitions the invoice to CANCELLED and, in the same transaction,
// resets the invoiced flag on every unit it billed. The invoice row is kept;
// reads after cancel still return it.
func (s *InvoiceService) Cancel(ctx context.Context, actor models.ActorContext, id uuid.UUID) (*models.Invoice, error) {
	if err := requireRole(actor, domain.RoleAdmin, domain.RoleManager); err != nil {
		return nil, err
	}

	var cancelled *models.Invoice
	err := s.store.RunInTx(ctx, func(tx Ledger) error {
		inv, err := tx.GetInvoiceForUpdate(ctx, id, actor.TenantID)
		if err != nil {
			return domain.Wrap(domain.ErrInternal, err, "load invoice")
		}
		if inv == nil {
			return domain.E(domain.ErrNotFound, "invoice not found")
		}

		if err := transitionInvoice(ctx, tx, inv, domain.InvoiceStatusCancelled, actor, "invoice.cancel"); err != nil {
			return err
		}
		if err := uninvoiceItems(ctx, tx, inv); err != nil {
			return err
		}

		cancelled = inv
		return nil
	})
	if err != nil {
		return nil, err
	}
	observability.IncrementInvoiceTransition(string(domain.InvoiceStatusCancelled))
	return cancelled, nil
}

func requireRole(actor models.ActorContext, roles ...string) error {
	for _, role := range roles {
		if actor.Role == role {
			return nil
		}
	}
	return domain.E(domain.ErrForbidden, "role %q may not perform this operation", actor.Role)
}
