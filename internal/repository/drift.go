package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// TotalMismatch is an active invoice whose stored total diverged from the
// sum of its item amounts. Should never happen; items are immutable.
type TotalMismatch struct {
	InvoiceID uuid.UUID
	TenantID  uuid.UUID
	Stored    int64
	Computed  int64
}

// ListInvoiceTotalMismatches scans non-cancelled invoices for total drift.
func (q *Queries) ListInvoiceTotalMismatches(ctx context.Context) ([]TotalMismatch, error) {
	rows, err := q.db.Query(ctx, `
		SELECT i.id, i.tenant_id, i.total_amount_micros, COALESCE(SUM(it.amount_micros), 0)
		FROM invoices i
		LEFT JOIN invoice_items it ON it.invoice_id = i.id
		WHERE i.status <> 'CANCELLED'
		GROUP BY i.id, i.tenant_id, i.total_amount_micros
		HAVING i.total_amount_micros <> COALESCE(SUM(it.amount_micros), 0)`)
	if err != nil {
		return nil, fmt.Errorf("query total mismatches: %w", err)
	}
	defer rows.Close()

	var out []TotalMismatch
	for rows.Next() {
		var m TotalMismatch
		if err := rows.Scan(&m.InvoiceID, &m.TenantID, &m.Stored, &m.Computed); err != nil {
			return nil, fmt.Errorf("scan total mismatch: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate total mismatches: %w", err)
	}
	return out, nil
}

// CountDoubleBilledUnits counts bookings or payments referenced by more than
// one active invoice. The FOR UPDATE discipline in create should make this
// permanently zero.
func (q *Queries) CountDoubleBilledUnits(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM (
			SELECT COALESCE(it.booking_id, it.payment_id) AS unit_id
			FROM invoice_items it
			JOIN invoices i ON i.id = it.invoice_id
			WHERE i.status <> 'CANCELLED'
			GROUP BY COALESCE(it.booking_id, it.payment_id)
			HAVING COUNT(DISTINCT i.id) > 1
		) doubled`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count double billed units: %w", err)
	}
	return count, nil
}

// CountOrphanInvoicedUnits counts units flagged invoiced that no active
// invoice references. A non-zero count means a cancel compensation was lost.
func (q *Queries) CountOrphanInvoicedUnits(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `
		SELECT
			(SELECT COUNT(*) FROM bookings b
			 WHERE b.invoiced = TRUE AND NOT EXISTS (
				SELECT 1 FROM invoice_items it
				JOIN invoices i ON i.id = it.invoice_id
				WHERE it.booking_id = b.id AND i.status <> 'CANCELLED'))
			+
			(SELECT COUNT(*) FROM payments p
			 WHERE p.invoiced = TRUE AND NOT EXISTS (
				SELECT 1 FROM invoice_items it
				JOIN invoices i ON i.id = it.invoice_id
				WHERE it.payment_id = p.id AND i.status <> 'CANCELLED'))`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count orphan invoiced units: %w", err)
	}
	return count, nil
}
