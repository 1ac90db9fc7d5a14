package service

import (
	"context"
	"encoding/json"

	"github.com/ayo6706/booking-billing/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// writeAudit stores a single immutable audit record inside the caller's
// transaction so the trail can never diverge from the state change it
// records.
func writeAudit(ctx context.Context, tx Ledger, entityType string, entityID uuid.UUID, actorID *uuid.UUID, action, prevState, nextState string, metadata []byte) error {
	if err := tx.InsertAuditLog(ctx, entityType, entityID, actorID, action, prevState, nextState, metadata); err != nil {
		return domain.Wrap(domain.ErrInternal, err, "write audit log")
	}
	return nil
}

func auditMetadata(fields map[string]any) []byte {
	if len(fields) == 0 {
		return nil
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		zap.L().Warn("marshal audit metadata failed", zap.Error(err))
		return nil
	}
	return raw
}
