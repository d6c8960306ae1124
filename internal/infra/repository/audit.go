package repository

import (
	"context"
	"encoding/json"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/infra"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/usecase/commands"

	"github.com/google/uuid"
)

// AuditRepository appends to the payment audit trail.
type AuditRepository struct {
	db DB
}

func NewAuditRepository(db DB) *AuditRepository {
	return &AuditRepository{db: db}
}

func (r *AuditRepository) Record(ctx context.Context, e commands.AuditEntry) error {
	details, err := json.Marshal(e.Details)
	if err != nil {
		return infra.WrapRepoErr("failed to encode audit details", err)
	}

	_, err = r.db.Exec(ctx, `
		INSERT INTO audit_logs (id, action, purchase_id, details, created_at)
		VALUES ($1, $2, $3, $4, now())`,
		uuid.New(),
		e.Action,
		e.PurchaseID,
		details,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to record audit entry", err)
	}
	return nil
}
