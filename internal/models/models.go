package models

import (
	"time"

	"github.com/ayo6706/booking-billing/internal/domain"
	"github.com/google/uuid"
)

// Tenant is the isolation boundary. Slug feeds invoice number generation.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	Currency  string    `json:"currency"`
	CreatedAt time.Time `json:"created_at"`
}

// ActorContext identifies the authenticated caller on every operation.
// It is produced by the auth middleware; the billing core never mints it.
type ActorContext struct {
	UserID   uuid.UUID `json:"user_id"`
	TenantID uuid.UUID `json:"tenant_id"`
	Role     string    `json:"role"`
}

// BillingUnit is the read model over a booking or payment row that is
// eligible to be aggregated into an invoice. Monetary fields are micros.
type BillingUnit struct {
	ID               uuid.UUID          `json:"id"`
	TenantID         uuid.UUID          `json:"tenant_id"`
	Kind             domain.UnitKind    `json:"kind"`
	Amount           int64              `json:"amount"`
	Commission       int64              `json:"commission"`
	NetRevenue       int64              `json:"net_revenue"`
	BillingType      domain.BillingType `json:"billing_type"`
	SettlementStatus string             `json:"settlement_status,omitempty"`
	OwnerID          uuid.UUID          `json:"owner_id"`
	Invoiced         bool               `json:"invoiced"`
}

// Invoice groups billed units for one tenant. Number, billing type and total
// are immutable after creation; only Status changes afterwards.
type Invoice struct {
	ID            uuid.UUID            `json:"id"`
	TenantID      uuid.UUID            `json:"tenant_id"`
	InvoiceNumber string               `json:"invoice_number"`
	BillingType   domain.BillingType   `json:"billing_type"`
	UnitKind      domain.UnitKind      `json:"unit_kind"`
	TotalAmount   int64                `json:"total_amount"`
	Currency      string               `json:"currency"`
	Status        domain.InvoiceStatus `json:"status"`
	Notes         string               `json:"notes,omitempty"`
	CreatedBy     uuid.UUID            `json:"created_by"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
	Items         []InvoiceItem        `json:"items,omitempty"`
}

// InvoiceItem snapshots one billing unit's monetary fields at invoice
// creation time. Exactly one of BookingID/PaymentID is set.
type InvoiceItem struct {
	ID         uuid.UUID  `json:"id"`
	InvoiceID  uuid.UUID  `json:"invoice_id"`
	BookingID  *uuid.UUID `json:"booking_id,omitempty"`
	PaymentID  *uuid.UUID `json:"payment_id,omitempty"`
	Amount     int64      `json:"amount"`
	Commission int64      `json:"commission"`
	NetRevenue int64      `json:"net_revenue"`
	CreatedAt  time.Time  `json:"created_at"`
}

// UnitID returns the referenced booking or payment id.
func (i InvoiceItem) UnitID() uuid.UUID {
	if i.BookingID != nil {
		return *i.BookingID
	}
	if i.PaymentID != nil {
		return *i.PaymentID
	}
	return uuid.Nil
}

// InvoiceFilter narrows a tenant-scoped invoice listing.
type InvoiceFilter struct {
	Status      *domain.InvoiceStatus
	BillingType *domain.BillingType
	From        *time.Time
	To          *time.Time
	Limit       int
	Offset      int
}
