package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/moizkiani/loveylink-backend/internal/plans"
)

type PlansHandler struct {
	registry *plans.Registry
}

func NewPlansHandler(registry *plans.Registry) *PlansHandler {
	return &PlansHandler{registry: registry}
}

// List serves the pricing page.
func (h *PlansHandler) List(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"plans": h.registry.All()})
}
