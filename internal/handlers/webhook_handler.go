package handlers

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/moizkiani/loveylink-backend/internal/config"
	"github.com/moizkiani/loveylink-backend/internal/dto"
	"github.com/moizkiani/loveylink-backend/internal/services"
	"github.com/stripe/stripe-go/v79/webhook"
)

type WebhookHandler struct {
	subs *services.SubscriptionService
	cfg  *config.Config
}

func NewWebhookHandler(subs *services.SubscriptionService, cfg *config.Config) *WebhookHandler {
	return &WebhookHandler{subs: subs, cfg: cfg}
}

// HandleStripe verifies and applies Stripe webhook deliveries. A bad
// signature is a hard 400 with no state change; events for unknown
// customers are acknowledged and dropped.
func (h *WebhookHandler) HandleStripe(c *fiber.Ctx) error {
	event, err := webhook.ConstructEventWithOptions(
		c.Body(),
		c.Get("Stripe-Signature"),
		h.cfg.StripeWebhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		slog.Error("webhook signature verification failed", "error", err)
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid webhook signature",
		})
	}

	if err := h.subs.HandleStripeEvent(event); err != nil {
		slog.Error("webhook processing failed", "event_type", event.Type, "event_id", event.ID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process webhook event",
		})
	}

	slog.Info("webhook processed", "event_type", event.Type, "event_id", event.ID)
	return c.JSON(fiber.Map{"received": true})
}
