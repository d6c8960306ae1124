// Package email sends transactional mail through Resend.
package email

import (
	"context"
	"fmt"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/config"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/pkg/errs"

	"github.com/resend/resend-go/v2"
)

type ResendSender struct {
	client *resend.Client
	from   string
	admins []string
}

func NewResendSender(cfg config.EmailConfig) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(cfg.ResendAPIKey),
		from:   cfg.FromAddress,
		admins: cfg.AdminList(),
	}
}

func (s *ResendSender) SendPurchaseConfirmation(ctx context.Context, to, orderNumber string, amountCents int64) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: fmt.Sprintf("Payment received for order %s", orderNumber),
		Html: fmt.Sprintf(
			"<p>Thank you for your purchase.</p><p>Order <strong>%s</strong> is confirmed. Amount charged: $%.2f.</p>",
			orderNumber, float64(amountCents)/100,
		),
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return errs.Wrap(err, "failed to send purchase confirmation email")
	}
	return nil
}

func (s *ResendSender) SendRefundConfirmation(ctx context.Context, to, orderNumber string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: fmt.Sprintf("Refund completed for order %s", orderNumber),
		Html: fmt.Sprintf(
			"<p>Your refund for order <strong>%s</strong> has been completed. Funds typically arrive within 5-10 business days.</p>",
			orderNumber,
		),
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return errs.Wrap(err, "failed to send refund confirmation email")
	}
	return nil
}

func (s *ResendSender) SendAdminNotification(ctx context.Context, title, message string) error {
	if len(s.admins) == 0 {
		return nil
	}
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      s.admins,
		Subject: title,
		Html:    fmt.Sprintf("<p>%s</p>", message),
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return errs.Wrap(err, "failed to send admin notification email")
	}
	return nil
}
