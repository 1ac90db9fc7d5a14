// Package fakeledger provides an in-memory LedgerStore for tests. It mirrors
// the transactional semantics of the pgx-backed store: mutations made inside
// RunInTx are rolled back when the callback returns an error.
package fakeledger

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ayo6706/booking-billing/internal/domain"
	"github.com/ayo6706/booking-billing/internal/models"
	"github.com/ayo6706/booking-billing/internal/repository"
	"github.com/ayo6706/booking-billing/internal/service"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// AuditEntry is one recorded audit row.
type AuditEntry struct {
	EntityType string
	EntityID   uuid.UUID
	ActorID    *uuid.UUID
	Action     string
	PrevState  string
	NextState  string
	Metadata   []byte
}

// Store is an in-memory LedgerStore.
type Store struct {
	mu       sync.Mutex
	tenants  map[uuid.UUID]models.Tenant
	units    map[uuid.UUID]models.BillingUnit
	invoices map[uuid.UUID]models.Invoice
	audit    []AuditEntry
	clock    time.Time

	// ConflictNextInserts makes the next N invoice inserts fail with a
	// unique-constraint violation, simulating number collisions.
	ConflictNextInserts int
}

// New creates an empty fake store.
func New() *Store {
	return &Store{
		tenants:  make(map[uuid.UUID]models.Tenant),
		units:    make(map[uuid.UUID]models.BillingUnit),
		invoices: make(map[uuid.UUID]models.Invoice),
		clock:    time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC),
	}
}

// SeedTenant registers a tenant.
func (s *Store) SeedTenant(t models.Tenant) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenants[t.ID] = t
}

// SeedUnit registers a billing unit.
func (s *Store) SeedUnit(u models.BillingUnit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units[u.ID] = u
}

// Unit returns a seeded unit by id.
func (s *Store) Unit(id uuid.UUID) (models.BillingUnit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.units[id]
	return u, ok
}

// Invoice returns a stored invoice by id, unscoped.
func (s *Store) Invoice(id uuid.UUID) (models.Invoice, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv, ok := s.invoices[id]
	if ok {
		inv.Items = append([]models.InvoiceItem(nil), inv.Items...)
	}
	return inv, ok
}

// InvoiceCount returns the number of stored invoices.
func (s *Store) InvoiceCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.invoices)
}

// AuditEntries returns a copy of the recorded audit trail.
func (s *Store) AuditEntries() []AuditEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]AuditEntry(nil), s.audit...)
}

// CorruptInvoiceTotal overwrites a stored total, for drift tests.
func (s *Store) CorruptInvoiceTotal(id uuid.UUID, total int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	inv := s.invoices[id]
	inv.TotalAmount = total
	s.invoices[id] = inv
}

// SetUnitInvoiced overrides a unit's invoiced flag, for drift tests.
func (s *Store) SetUnitInvoiced(id uuid.UUID, invoiced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.units[id]
	u.Invoiced = invoiced
	s.units[id] = u
}

// Ledger returns the non-transactional query set.
func (s *Store) Ledger() service.Ledger {
	return (*queries)(s)
}

// RunInTx executes fn against the store, restoring the prior state when fn
// fails so partial writes never leak, matching the real transaction scope.
func (s *Store) RunInTx(ctx context.Context, fn func(tx service.Ledger) error) error {
	s.mu.Lock()
	unitsBefore := make(map[uuid.UUID]models.BillingUnit, len(s.units))
	for k, v := range s.units {
		unitsBefore[k] = v
	}
	invoicesBefore := make(map[uuid.UUID]models.Invoice, len(s.invoices))
	for k, v := range s.invoices {
		v.Items = append([]models.InvoiceItem(nil), v.Items...)
		invoicesBefore[k] = v
	}
	auditBefore := len(s.audit)
	s.mu.Unlock()

	if err := fn((*queries)(s)); err != nil {
		s.mu.Lock()
		s.units = unitsBefore
		s.invoices = invoicesBefore
		s.audit = s.audit[:auditBefore]
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *Store) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

// queries implements service.Ledger over the fake state.
type queries Store

func (q *queries) FindBillingUnitsForUpdate(ctx context.Context, kind domain.UnitKind, tenantID uuid.UUID, ids []uuid.UUID) ([]models.BillingUnit, error) {
	s := (*Store)(q)
	s.mu.Lock()
	defer s.mu.Unlock()

	var units []models.BillingUnit
	for _, id := range ids {
		u, ok := s.units[id]
		if !ok || u.Kind != kind || u.TenantID != tenantID || u.Invoiced {
			continue
		}
		units = append(units, u)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].ID.String() < units[j].ID.String() })
	return units, nil
}

func (q *queries) MarkInvoiced(ctx context.Context, kind domain.UnitKind, ids []uuid.UUID, invoiced bool) (int64, error) {
	s := (*Store)(q)
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, id := range ids {
		u, ok := s.units[id]
		if !ok || u.Kind != kind {
			continue
		}
		u.Invoiced = invoiced
		s.units[id] = u
		count++
	}
	return count, nil
}

func (q *queries) InsertInvoice(ctx context.Context, inv *models.Invoice) error {
	s := (*Store)(q)
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ConflictNextInserts > 0 {
		s.ConflictNextInserts--
		return uniqueViolation()
	}
	for _, existing := range s.invoices {
		if existing.TenantID == inv.TenantID && existing.InvoiceNumber == inv.InvoiceNumber {
			return uniqueViolation()
		}
	}

	now := s.tick()
	inv.CreatedAt = now
	inv.UpdatedAt = now
	for i := range inv.Items {
		inv.Items[i].InvoiceID = inv.ID
		inv.Items[i].CreatedAt = now
	}

	stored := *inv
	stored.Items = append([]models.InvoiceItem(nil), inv.Items...)
	s.invoices[inv.ID] = stored
	return nil
}

func (q *queries) GetInvoice(ctx context.Context, id, tenantID uuid.UUID) (*models.Invoice, error) {
	s := (*Store)(q)
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return nil, nil
	}
	out := inv
	out.Items = append([]models.InvoiceItem(nil), inv.Items...)
	return &out, nil
}

func (q *queries) GetInvoiceForUpdate(ctx context.Context, id, tenantID uuid.UUID) (*models.Invoice, error) {
	return q.GetInvoice(ctx, id, tenantID)
}

func (q *queries) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter models.InvoiceFilter) ([]models.Invoice, error) {
	s := (*Store)(q)
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Invoice
	for _, inv := range s.invoices {
		if inv.TenantID != tenantID {
			continue
		}
		if filter.Status != nil && inv.Status != *filter.Status {
			continue
		}
		if filter.BillingType != nil && inv.BillingType != *filter.BillingType {
			continue
		}
		if filter.From != nil && inv.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && inv.CreatedAt.After(*filter.To) {
			continue
		}
		inv.Items = nil
		out = append(out, inv)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if filter.Offset > 0 && filter.Offset < len(out) {
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (q *queries) UpdateInvoiceStatus(ctx context.Context, id, tenantID uuid.UUID, status string) (int64, error) {
	s := (*Store)(q)
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, ok := s.invoices[id]
	if !ok || inv.TenantID != tenantID {
		return 0, nil
	}
	inv.Status = domain.InvoiceStatus(status)
	inv.UpdatedAt = s.tick()
	s.invoices[id] = inv
	return 1, nil
}

func (q *queries) GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	s := (*Store)(q)
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tenants[id]
	if !ok {
		return nil, nil
	}
	return &t, nil
}

func (q *queries) InsertAuditLog(ctx context.Context, entityType string, entityID uuid.UUID, actorID *uuid.UUID, action, prevState, nextState string, metadata []byte) error {
	s := (*Store)(q)
	s.mu.Lock()
	defer s.mu.Unlock()

	s.audit = append(s.audit, AuditEntry{
		EntityType: entityType,
		EntityID:   entityID,
		ActorID:    actorID,
		Action:     action,
		PrevState:  prevState,
		NextState:  nextState,
		Metadata:   metadata,
	})
	return nil
}

func (q *queries) ListInvoiceTotalMismatches(ctx context.Context) ([]repository.TotalMismatch, error) {
	s := (*Store)(q)
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []repository.TotalMismatch
	for _, inv := range s.invoices {
		if inv.Status == domain.InvoiceStatusCancelled {
			continue
		}
		var computed int64
		for _, item := range inv.Items {
			computed += item.Amount
		}
		if computed != inv.TotalAmount {
			out = append(out, repository.TotalMismatch{
				InvoiceID: inv.ID,
				TenantID:  inv.TenantID,
				Stored:    inv.TotalAmount,
				Computed:  computed,
			})
		}
	}
	return out, nil
}

func (q *queries) CountDoubleBilledUnits(ctx context.Context) (int64, error) {
	s := (*Store)(q)
	s.mu.Lock()
	defer s.mu.Unlock()

	refs := make(map[uuid.UUID]map[uuid.UUID]struct{})
	for _, inv := range s.invoices {
		if inv.Status == domain.InvoiceStatusCancelled {
			continue
		}
		for _, item := range inv.Items {
			unitID := item.UnitID()
			if refs[unitID] == nil {
				refs[unitID] = make(map[uuid.UUID]struct{})
			}
			refs[unitID][inv.ID] = struct{}{}
		}
	}

	var count int64
	for _, invoiceIDs := range refs {
		if len(invoiceIDs) > 1 {
			count++
		}
	}
	return count, nil
}

func (q *queries) CountOrphanInvoicedUnits(ctx context.Context) (int64, error) {
	s := (*Store)(q)
	s.mu.Lock()
	defer s.mu.Unlock()

	active := make(map[uuid.UUID]struct{})
	for _, inv := range s.invoices {
		if inv.Status == domain.InvoiceStatusCancelled {
			continue
		}
		for _, item := range inv.Items {
			active[item.UnitID()] = struct{}{}
		}
	}

	var count int64
	for _, u := range s.units {
		if !u.Invoiced {
			continue
		}
		if _, ok := active[u.ID]; !ok {
			count++
		}
	}
	return count, nil
}

func uniqueViolation() error {
	return &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "invoices_tenant_id_invoice_number_key",
		Message:        "duplicate key value violates unique constraint",
	}
}
