package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/moizkiani/loveylink-backend/internal/dto"
	"github.com/moizkiani/loveylink-backend/internal/middleware"
	"github.com/moizkiani/loveylink-backend/internal/services"
)

type SubscriptionHandler struct {
	subs *services.SubscriptionService
}

func NewSubscriptionHandler(subs *services.SubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{subs: subs}
}

// Status drives the dashboard premium badge. This is the expiring variant:
// an overdue active subscription is demoted before the verdict is returned.
func (h *SubscriptionHandler) Status(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	status := h.subs.ResolveAndExpire(userID)

	return c.JSON(dto.SubscriptionStatusResponse{
		IsPremium:          status.Premium,
		Status:             status.Status,
		Source:             status.Source,
		PlanID:             status.PlanID,
		ExpiresAt:          status.ExpiresAt,
		ShowPremiumWelcome: h.subs.ConsumeWelcomeFlag(userID),
	})
}

// Refresh is the dashboard's "refresh subscription" button: re-derive
// premium from the most recent approved manual payment.
func (h *SubscriptionHandler) Refresh(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	if err := h.subs.Refresh(userID); err != nil {
		if errors.Is(err, services.ErrNoApprovedPayment) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		slog.Error("subscription refresh failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to refresh subscription",
		})
	}

	return c.JSON(fiber.Map{"success": true})
}
