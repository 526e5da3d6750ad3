package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/moizkiani/loveylink-backend/internal/dto"
	"github.com/moizkiani/loveylink-backend/internal/middleware"
	"github.com/moizkiani/loveylink-backend/internal/services"
)

type PaymentHandler struct {
	payments *services.PaymentService
	checkout *services.CheckoutService
}

func NewPaymentHandler(payments *services.PaymentService, checkout *services.CheckoutService) *PaymentHandler {
	return &PaymentHandler{payments: payments, checkout: checkout}
}

// SubmitEasypaisa records a manual payment claim for admin verification.
func (h *PaymentHandler) SubmitEasypaisa(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.SubmitPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	payment, err := h.payments.Submit(userID, req.TrxID, req.Amount)
	if err != nil {
		if errors.Is(err, services.ErrTrxIDRequired) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		slog.Error("payment submission failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to submit payment",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.PaymentResponse{
		ID:            payment.ID.String(),
		TrxID:         payment.TrxID,
		Amount:        payment.Amount,
		PaymentMethod: payment.PaymentMethod,
		Status:        payment.Status,
		CreatedAt:     payment.CreatedAt,
	})
}

// ListMine returns the caller's payment requests.
func (h *PaymentHandler) ListMine(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	payments, err := h.payments.ListForUser(userID)
	if err != nil {
		slog.Error("payment list failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list payments",
		})
	}

	out := make([]dto.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, dto.PaymentResponse{
			ID:            p.ID.String(),
			TrxID:         p.TrxID,
			Amount:        p.Amount,
			PaymentMethod: p.PaymentMethod,
			Status:        p.Status,
			CreatedAt:     p.CreatedAt,
		})
	}
	return c.JSON(fiber.Map{"payments": out})
}

// CreateCheckout starts a Stripe checkout session for the premium plan.
func (h *PaymentHandler) CreateCheckout(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	resp, err := h.checkout.CreateSession(userID)
	if err != nil {
		if errors.Is(err, services.ErrStripeNotConfigured) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(dto.ErrorResponse{
				Error: true, Message: "Card payments are not available",
			})
		}
		slog.Error("checkout session failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create checkout session",
		})
	}

	return c.JSON(resp)
}
