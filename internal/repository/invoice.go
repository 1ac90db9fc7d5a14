package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/ayo6706/booking-billing/internal/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const invoiceColumns = `id, tenant_id, invoice_number, billing_type, unit_kind, total_amount_micros, currency, status, notes, created_by, created_at, updated_at`

// InsertInvoice writes the invoice row and all of its item rows. Callers run
// it inside a transaction so the invoice and items land atomically.
func (q *Queries) InsertInvoice(ctx context.Context, inv *models.Invoice) error {
	err := q.db.QueryRow(ctx, `
		INSERT INTO invoices (id, tenant_id, invoice_number, billing_type, unit_kind, total_amount_micros, currency, status, notes, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING created_at, updated_at`,
		inv.ID, inv.TenantID, inv.InvoiceNumber, inv.BillingType, inv.UnitKind,
		inv.TotalAmount, inv.Currency, inv.Status, inv.Notes, inv.CreatedBy).
		Scan(&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert invoice: %w", err)
	}

	for i := range inv.Items {
		item := &inv.Items[i]
		item.InvoiceID = inv.ID
		err := q.db.QueryRow(ctx, `
			INSERT INTO invoice_items (id, invoice_id, booking_id, payment_id, amount_micros, commission_micros, net_revenue_micros, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, NOW())
			RETURNING created_at`,
			item.ID, item.InvoiceID, item.BookingID, item.PaymentID,
			item.Amount, item.Commission, item.NetRevenue).
			Scan(&item.CreatedAt)
		if err != nil {
			return fmt.Errorf("insert invoice item: %w", err)
		}
	}
	return nil
}

// GetInvoice loads an invoice with its items, scoped to the tenant.
// Returns nil when absent or owned by another tenant.
func (q *Queries) GetInvoice(ctx context.Context, id, tenantID uuid.UUID) (*models.Invoice, error) {
	inv := &models.Invoice{}
	err := q.db.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 AND tenant_id = $2`, id, tenantID).
		Scan(&inv.ID, &inv.TenantID, &inv.InvoiceNumber, &inv.BillingType, &inv.UnitKind,
			&inv.TotalAmount, &inv.Currency, &inv.Status, &inv.Notes, &inv.CreatedBy,
			&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice: %w", err)
	}

	items, err := q.GetInvoiceItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

// GetInvoiceForUpdate loads the invoice row with a row lock so a status
// transition cannot race another transition on the same invoice.
func (q *Queries) GetInvoiceForUpdate(ctx context.Context, id, tenantID uuid.UUID) (*models.Invoice, error) {
	inv := &models.Invoice{}
	err := q.db.QueryRow(ctx,
		`SELECT `+invoiceColumns+` FROM invoices WHERE id = $1 AND tenant_id = $2 FOR UPDATE`, id, tenantID).
		Scan(&inv.ID, &inv.TenantID, &inv.InvoiceNumber, &inv.BillingType, &inv.UnitKind,
			&inv.TotalAmount, &inv.Currency, &inv.Status, &inv.Notes, &inv.CreatedBy,
			&inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("get invoice for update: %w", err)
	}

	items, err := q.GetInvoiceItems(ctx, inv.ID)
	if err != nil {
		return nil, err
	}
	inv.Items = items
	return inv, nil
}

// GetInvoiceItems loads the items of one invoice.
func (q *Queries) GetInvoiceItems(ctx context.Context, invoiceID uuid.UUID) ([]models.InvoiceItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, invoice_id, booking_id, payment_id, amount_micros, commission_micros, net_revenue_micros, created_at
		FROM invoice_items
		WHERE invoice_id = $1
		ORDER BY created_at, id`, invoiceID)
	if err != nil {
		return nil, fmt.Errorf("get invoice items: %w", err)
	}
	defer rows.Close()

	var items []models.InvoiceItem
	for rows.Next() {
		var it models.InvoiceItem
		if err := rows.Scan(&it.ID, &it.InvoiceID, &it.BookingID, &it.PaymentID,
			&it.Amount, &it.Commission, &it.NetRevenue, &it.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice item: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoice items: %w", err)
	}
	return items, nil
}

// ListInvoices returns tenant invoices, newest first, honoring the filter.
func (q *Queries) ListInvoices(ctx context.Context, tenantID uuid.UUID, filter models.InvoiceFilter) ([]models.Invoice, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + invoiceColumns + ` FROM invoices WHERE tenant_id = $1`)
	args := []any{tenantID}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		fmt.Fprintf(&sb, " AND status = $%d", len(args))
	}
	if filter.BillingType != nil {
		args = append(args, *filter.BillingType)
		fmt.Fprintf(&sb, " AND billing_type = $%d", len(args))
	}
	if filter.From != nil {
		args = append(args, *filter.From)
		fmt.Fprintf(&sb, " AND created_at >= $%d", len(args))
	}
	if filter.To != nil {
		args = append(args, *filter.To)
		fmt.Fprintf(&sb, " AND created_at <= $%d", len(args))
	}

	sb.WriteString(" ORDER BY created_at DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		fmt.Fprintf(&sb, " OFFSET $%d", len(args))
	}

	rows, err := q.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	defer rows.Close()

	var invoices []models.Invoice
	for rows.Next() {
		var inv models.Invoice
		if err := rows.Scan(&inv.ID, &inv.TenantID, &inv.InvoiceNumber, &inv.BillingType, &inv.UnitKind,
			&inv.TotalAmount, &inv.Currency, &inv.Status, &inv.Notes, &inv.CreatedBy,
			&inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}
	return invoices, nil
}

// UpdateInvoiceStatus persists a status transition and returns the number of
// rows touched so the caller can verify exactly one row changed.
func (q *Queries) UpdateInvoiceStatus(ctx context.Context, id, tenantID uuid.UUID, status string) (int64, error) {
	tag, err := q.db.Exec(ctx,
		`UPDATE invoices SET status = $1, updated_at = NOW() WHERE id = $2 AND tenant_id = $3`,
		status, id, tenantID)
	if err != nil {
		return 0, fmt.Errorf("update invoice status: %w", err)
	}
	return tag.RowsAffected(), nil
}
