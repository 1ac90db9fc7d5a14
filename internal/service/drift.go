package service

import (
	"context"
	"fmt"

	"github.com/ayo6706/booking-billing/internal/observability"
	"go.uber.org/zap"
)

// DriftService verifies billing integrity invariants across the ledger:
// stored invoice totals match their items, no unit is billed twice, and no
// unit is left flagged invoiced without an active invoice.
type DriftService struct {
	store LedgerStore
}

// NewDriftService creates a drift checker.
func NewDriftService(store LedgerStore) *DriftService {
	return &DriftService{store: store}
}

// Run executes all drift checks once. Findings are logged and counted; the
// run itself only fails when a check cannot execute.
func (s *DriftService) Run(ctx context.Context) error {
	ledger := s.store.Ledger()

	mismatches, err := ledger.ListInvoiceTotalMismatches(ctx)
	if err != nil {
		return fmt.Errorf("run total mismatch query: %w", err)
	}
	for _, m := range mismatches {
		observability.IncrementBillingDrift("total_mismatch")
		zap.L().Error("CRITICAL: invoice total drifted from item sum",
			zap.String("invoice_id", m.InvoiceID.String()),
			zap.String("tenant_id", m.TenantID.String()),
			zap.Int64("stored_micros", m.Stored),
			zap.Int64("computed_micros", m.Computed))
	}

	doubled, err := ledger.CountDoubleBilledUnits(ctx)
	if err != nil {
		return fmt.Errorf("run double billing query: %w", err)
	}
	if doubled > 0 {
		observability.IncrementBillingDrift("double_billed")
		zap.L().Error("CRITICAL: units referenced by more than one active invoice", zap.Int64("count", doubled))
	}

	orphans, err := ledger.CountOrphanInvoicedUnits(ctx)
	if err != nil {
		return fmt.Errorf("run orphan flag query: %w", err)
	}
	if orphans > 0 {
		observability.IncrementBillingDrift("orphan_flag")
		zap.L().Error("units flagged invoiced without an active invoice", zap.Int64("count", orphans))
	}

	if len(mismatches) == 0 && doubled == 0 && orphans == 0 {
		zap.L().Info("billing ledger consistent")
	}
	return nil
}
