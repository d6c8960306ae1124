package api

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/handler/httperr"
	"github.com/TravisHFan/at-Cloud-sign-up-system-sub002/internal/usecase/commands"

	"github.com/gin-gonic/gin"
)

// Webhook payloads are bounded; anything larger is not a legitimate provider
// event.
const maxPayloadBytes = 1 << 20

type WebhookHandler struct {
	cmds   commands.WebhookCommands
	logger *slog.Logger
}

func NewWebhookHandler(cmds commands.WebhookCommands, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{cmds: cmds, logger: logger}
}

// HandleStripeEvent receives provider webhook deliveries. The raw body is
// passed through untouched: signature verification covers the exact bytes the
// provider signed, so any re-serialization would break it.
//
// Response contract:
//   - 200 for processed and deliberately ignored events
//   - 400 for signature or payload rejections (the provider must not retry)
//   - 500 when a transition fails (the provider retries the delivery)
func (h *WebhookHandler) HandleStripeEvent(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxPayloadBytes))
	if err != nil {
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Unable to read request body", nil)
		return
	}

	err = h.cmds.ProcessEvent(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	switch {
	case err == nil:
		c.JSON(http.StatusOK, gin.H{"success": true, "received": true})
	case errors.Is(err, commands.ErrInvalidSignature):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid webhook signature", nil)
	case errors.Is(err, commands.ErrInvalidPayload):
		httperr.AbortWithError(c, http.StatusBadRequest, err, "Invalid webhook payload", nil)
	default:
		h.logger.Error("webhook processing failed", "error", err, "path", c.Request.URL.Path)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Webhook processing failed"})
	}
}
