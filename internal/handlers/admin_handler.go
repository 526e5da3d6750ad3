package handlers

import (
	"crypto/subtle"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/moizkiani/loveylink-backend/internal/config"
	"github.com/moizkiani/loveylink-backend/internal/dto"
	"github.com/moizkiani/loveylink-backend/internal/services"
)

type AdminHandler struct {
	admin    *services.AdminService
	payments *services.PaymentService
	subs     *services.SubscriptionService
	cfg      *config.Config
}

func NewAdminHandler(admin *services.AdminService, payments *services.PaymentService, subs *services.SubscriptionService, cfg *config.Config) *AdminHandler {
	return &AdminHandler{admin: admin, payments: payments, subs: subs, cfg: cfg}
}

func (h *AdminHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.admin.Stats()
	if err != nil {
		slog.Error("admin stats failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load stats",
		})
	}
	return c.JSON(stats)
}

func (h *AdminHandler) Users(c *fiber.Ctx) error {
	users, err := h.admin.ListUsers(c.QueryInt("limit", 50))
	if err != nil {
		slog.Error("admin user list failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list users",
		})
	}
	return c.JSON(fiber.Map{"users": users})
}

func (h *AdminHandler) Payments(c *fiber.Ctx) error {
	payments, err := h.payments.ListAll()
	if err != nil {
		slog.Error("admin payment list failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list payments",
		})
	}
	return c.JSON(fiber.Map{"payments": payments})
}

func (h *AdminHandler) ApprovePayment(c *fiber.Ctx) error {
	paymentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid payment id",
		})
	}

	if err := h.payments.Approve(paymentID); err != nil {
		return h.paymentActionError(c, paymentID, "approve", err)
	}

	slog.Info("payment approved", "payment_id", paymentID)
	return c.JSON(fiber.Map{"success": true})
}

func (h *AdminHandler) RejectPayment(c *fiber.Ctx) error {
	paymentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid payment id",
		})
	}

	if err := h.payments.Reject(paymentID); err != nil {
		return h.paymentActionError(c, paymentID, "reject", err)
	}

	slog.Info("payment rejected", "payment_id", paymentID)
	return c.JSON(fiber.Map{"success": true})
}

func (h *AdminHandler) RevokePremium(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user id",
		})
	}

	if err := h.subs.Revoke(userID); err != nil {
		slog.Error("premium revocation failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to revoke premium",
		})
	}

	slog.Info("premium revoked", "user_id", userID)
	return c.JSON(fiber.Map{"success": true})
}

// Seed bootstraps the owner account. Guarded by X-Seed-Token rather than
// the admin middleware so it can run before any admin exists.
func (h *AdminHandler) Seed(c *fiber.Ctx) error {
	if h.cfg.SeedToken == "" {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Seeding is not enabled",
		})
	}
	if subtle.ConstantTimeCompare([]byte(c.Get("X-Seed-Token")), []byte(h.cfg.SeedToken)) != 1 {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	if err := h.admin.Seed(h.cfg.SeedAdminEmail, h.cfg.SeedAdminPassword); err != nil {
		slog.Error("seed failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Admin " + h.cfg.SeedAdminEmail + " configured successfully."})
}

func (h *AdminHandler) paymentActionError(c *fiber.Ctx, paymentID uuid.UUID, action string, err error) error {
	switch {
	case errors.Is(err, services.ErrPaymentNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrPaymentFinalized):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	slog.Error("payment action failed", "payment_id", paymentID, "action", action, "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Failed to " + action + " payment",
	})
}
