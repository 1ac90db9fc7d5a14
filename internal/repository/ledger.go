package repository

import (
	"context"
	"fmt"

	"github.com/ayo6706/booking-billing/internal/domain"
	"github.com/ayo6706/booking-billing/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const bookingUnitColumns = `id, tenant_id, gross_micros, commission_micros, net_revenue_micros, billing_type, property_owner_id, invoiced`

// Payments carry no commission split; net equals the settled amount.
const paymentUnitColumns = `id, tenant_id, amount_micros, 0::BIGINT, amount_micros, billing_type, property_owner_id, settlement_status, invoiced`

// FindBillingUnitsForUpdate fetches un-invoiced units scoped to a tenant and
// locks the matched rows for the remainder of the transaction. Rows are
// locked in id order so concurrent creates over overlapping sets serialize
// instead of deadlocking. Missing ids are not an error here; the caller
// compares counts.
func (q *Queries) FindBillingUnitsForUpdate(ctx context.Context, kind domain.UnitKind, tenantID uuid.UUID, ids []uuid.UUID) ([]models.BillingUnit, error) {
	var rows pgx.Rows
	var err error

	switch kind {
	case domain.UnitKindBooking:
		rows, err = q.db.Query(ctx, `
			SELECT `+bookingUnitColumns+`
			FROM bookings
			WHERE tenant_id = $1 AND id = ANY($2) AND invoiced = FALSE
			ORDER BY id
			FOR UPDATE`, tenantID, ids)
	case domain.UnitKindPayment:
		rows, err = q.db.Query(ctx, `
			SELECT `+paymentUnitColumns+`
			FROM payments
			WHERE tenant_id = $1 AND id = ANY($2) AND invoiced = FALSE
			ORDER BY id
			FOR UPDATE`, tenantID, ids)
	default:
		return nil, fmt.Errorf("unknown unit kind: %s", kind)
	}
	if err != nil {
		return nil, fmt.Errorf("query billing units: %w", err)
	}
	defer rows.Close()

	return scanBillingUnits(rows, kind)
}

func scanBillingUnits(rows pgx.Rows, kind domain.UnitKind) ([]models.BillingUnit, error) {
	var units []models.BillingUnit
	for rows.Next() {
		u := models.BillingUnit{Kind: kind}
		var err error
		if kind == domain.UnitKindPayment {
			err = rows.Scan(&u.ID, &u.TenantID, &u.Amount, &u.Commission, &u.NetRevenue, &u.BillingType, &u.OwnerID, &u.SettlementStatus, &u.Invoiced)
		} else {
			err = rows.Scan(&u.ID, &u.TenantID, &u.Amount, &u.Commission, &u.NetRevenue, &u.BillingType, &u.OwnerID, &u.Invoiced)
		}
		if err != nil {
			return nil, fmt.Errorf("scan billing unit: %w", err)
		}
		units = append(units, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate billing units: %w", err)
	}
	return units, nil
}

// MarkInvoiced bulk-sets the invoiced flag. It must run inside the same
// transaction that locked the rows; the returned count lets the caller
// verify no row slipped away between lock and update.
func (q *Queries) MarkInvoiced(ctx context.Context, kind domain.UnitKind, ids []uuid.UUID, invoiced bool) (int64, error) {
	var table string
	switch kind {
	case domain.UnitKindBooking:
		table = "bookings"
	case domain.UnitKindPayment:
		table = "payments"
	default:
		return 0, fmt.Errorf("unknown unit kind: %s", kind)
	}

	tag, err := q.db.Exec(ctx,
		fmt.Sprintf(`UPDATE %s SET invoiced = $1, updated_at = NOW() WHERE id = ANY($2)`, table),
		invoiced, ids)
	if err != nil {
		return 0, fmt.Errorf("mark invoiced: %w", err)
	}
	return tag.RowsAffected(), nil
}

// GetTenant loads the tenant record used for invoice number generation.
func (q *Queries) GetTenant(ctx context.Context, id uuid.UUID) (*models.Tenant, error) {
	t := &models.Tenant{}
	err := q.db.QueryRow(ctx,
		`SELECT id, slug, name, currency, created_at FROM tenants WHERE id = $1`, id).
		Scan(&t.ID, &t.Slug, &t.Name, &t.Currency, &t.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get tenant: %w", err)
	}
	return t, nil
}
