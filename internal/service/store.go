package service

import (
	"context"

	"github.com/ayo6706/booking-billing/internal/domain"
	"github.com/ayo6706/booking-billing/internal/models"
	"github.com/ayo6706/booking-billing/internal/repository"
	"github.com/google/uuid"
)

// Ledger is the data access contract required by the billing services.
// *repository.Queries satisfies it; tests substitute an in-memory fake.
type Ledger interface {
	FindBillingUnitsForUpdate(ctx context.Context, kind domain.UnitKind, tenantID uuid.UUID, ids []uuid.UUID) ([]models.BillingUnit, error)
	MarkInvoiced(ctx context.Context, kind domain.UnitKind, ids []uuid.UUID, invoiced bool) (int64, error)
	InsertInvoice(ctx context.Context, inv *models.Invoice) error
	GetInvoice(ctx context.Context, id, tenantID uuid.UUID) (*models.Invoice, error)
	GetInvoiceForUpdate(ctx context.Context, id, tenantID uuid.UUID) (*models.Invoice, error)
	ListInvoices(ctx context.Context, tenantID uuid.UUID, filter models.InvoiceFilter) ([]models.Invoice, error)
	UpdateInvoiceStatus(ctx context.Context, id, tenantID uuid.UUID, status string) (int64, error)
	GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error)
	InsertAuditLog(ctx context.Context, entityType string, entityID uuid.UUID, actorID *uuid.UUID, action, prevState, nextState string, metadata []byte) error
	ListInvoiceTotalMismatches(ctx context.Context) ([]repository.TotalMismatch, error)
	CountDoubleBilledUnits(ctx context.Context) (int64, error)
	CountOrphanInvoicedUnits(ctx context.Context) (int64, error)
}

// LedgerStore provides the query set plus transaction scoping. Every mutating
// operation runs its whole body through RunInTx so reads and writes observe
// one snapshot and either all commit or all roll back.
type LedgerStore interface {
	Ledger() Ledger
	RunInTx(ctx context.Context, fn func(tx Ledger) error) error
}

type pgLedgerStore struct {
	store *repository.Store
}

// NewLedgerStore adapts the pgx-backed repository store to the service
// contract.
func NewLedgerStore(store *repository.Store) LedgerStore {
	return &pgLedgerStore{store: store}
}

func (p *pgLedgerStore) Ledger() Ledger {
	return p.store.Queries()
}

func (p *pgLedgerStore) RunInTx(ctx context.Context, fn func(tx Ledger) error) error {
	return p.store.RunInTx(ctx, func(q *repository.Queries) error {
		return fn(q)
	})
}
