// Package notify fans admin notifications out to their delivery channels.
package notify

import (
	"context"
	"log/slog"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/usecase/commands"
)

// Store persists a notification row for the admin UI.
type Store interface {
	Notify(ctx context.Context, n commands.Notification) error
}

// Mailer delivers a notification to the admin mailbox.
type Mailer interface {
	SendAdminNotification(ctx context.Context, title, message string) error
}

// FanoutNotifier persists every notification and additionally emails the
// admin recipients for high and alert priorities. The persisted row is the
// source of truth; the email leg is best-effort.
type FanoutNotifier struct {
	store  Store
	mailer Mailer
	logger *slog.Logger
}

func NewFanoutNotifier(store Store, mailer Mailer, logger *slog.Logger) *FanoutNotifier {
	return &FanoutNotifier{store: store, mailer: mailer, logger: logger}
}

func (f *FanoutNotifier) Notify(ctx context.Context, n commands.Notification) error {
	if err := f.store.Notify(ctx, n); err != nil {
		return err
	}

	if n.Priority == commands.NotifyNormal {
		return nil
	}
	if err := f.mailer.SendAdminNotification(ctx, n.Title, n.Message); err != nil {
		f.logger.Warn("admin notification email failed", "title", n.Title, "error", err)
	}
	return nil
}
