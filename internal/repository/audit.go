package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// InsertAuditLog stores one immutable audit trail row.
func (q *Queries) InsertAuditLog(ctx context.Context, entityType string, entityID uuid.UUID, actorID *uuid.UUID, action, prevState, nextState string, metadata []byte) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO audit_log (entity_type, entity_id, actor_id, action, prev_state, next_state, metadata, created_at)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, ''), $7, NOW())`,
		entityType, entityID, actorID, action, prevState, nextState, metadata)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
