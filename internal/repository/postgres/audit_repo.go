package postgres

import (
	"context"

	"github.com/gshelgaas/bankcards/internal/models"
)

type auditRepo struct{ db querier }

func (r *auditRepo) Create(ctx context.Context, e models.AuditEvent) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO audit_events(id, entity_type, entity_id, action, details, created_at)
		 VALUES($1,$2,$3,$4,$5,$6)`,
		e.ID, e.EntityType, e.EntityID, e.Action, e.Details, e.CreatedAt)
	return err
}
