package repository

import (
	"context"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/infra"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/usecase/commands"

	"github.com/google/uuid"
)

// NotificationRepository persists admin notifications. Delivery to the admin
// UI is a read-side concern; the webhook core only enqueues rows.
type NotificationRepository struct {
	db DB
}

func NewNotificationRepository(db DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Notify(ctx context.Context, n commands.Notification) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO admin_notifications (id, priority, title, message, created_at)
		VALUES ($1, $2, $3, $4, now())`,
		uuid.New(),
		string(n.Priority),
		n.Title,
		n.Message,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to create admin notification", err)
	}
	return nil
}
