package handlers

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/moizkiani/loveylink-backend/internal/dto"
	"github.com/moizkiani/loveylink-backend/internal/middleware"
	"github.com/moizkiani/loveylink-backend/internal/models"
	"github.com/moizkiani/loveylink-backend/internal/services"
)

type PageHandler struct {
	pages *services.PageService
}

func NewPageHandler(pages *services.PageService) *PageHandler {
	return &PageHandler{pages: pages}
}

func (h *PageHandler) Create(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	var req dto.CreatePageRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	page, err := h.pages.Create(userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPremiumRequired):
			return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{
				Error: true, Message: "Upgrade to Premium to publish & unlock QR code",
			})
		case errors.Is(err, services.ErrTitleRequired):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		slog.Error("page creation failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to create page",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(h.toResponse(page, true))
}

func (h *PageHandler) ListMine(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	pages, total, err := h.pages.List(userID)
	if err != nil {
		slog.Error("page list failed", "user_id", userID, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to list pages",
		})
	}

	resp := dto.PagesListResponse{Pages: make([]dto.PageResponse, 0, len(pages)), Total: total}
	for i := range pages {
		resp.Pages = append(resp.Pages, h.toResponse(&pages[i], true))
	}
	return c.JSON(resp)
}

func (h *PageHandler) Get(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	pageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid page id",
		})
	}

	page, err := h.pages.Get(userID, pageID)
	if err != nil {
		return h.pageError(c, err)
	}
	return c.JSON(h.toResponse(page, true))
}

func (h *PageHandler) Publish(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	pageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid page id",
		})
	}

	page, err := h.pages.Publish(userID, pageID)
	if err != nil {
		if errors.Is(err, services.ErrPremiumRequired) {
			return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{
				Error: true, Message: "Upgrade to Premium to publish & unlock QR code",
			})
		}
		return h.pageError(c, err)
	}
	return c.JSON(h.toResponse(page, true))
}

func (h *PageHandler) Delete(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	pageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid page id",
		})
	}

	if err := h.pages.Delete(userID, pageID); err != nil {
		return h.pageError(c, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// QRCode streams the page's QR as a PNG.
func (h *PageHandler) QRCode(c *fiber.Ctx) error {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	pageID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid page id",
		})
	}

	png, err := h.pages.QRCode(userID, pageID)
	if err != nil {
		if errors.Is(err, services.ErrPremiumRequired) {
			return c.Status(fiber.StatusPaymentRequired).JSON(dto.ErrorResponse{
				Error: true, Message: "Upgrade to Premium to unlock QR codes",
			})
		}
		return h.pageError(c, err)
	}

	c.Set(fiber.HeaderContentType, "image/png")
	return c.Send(png)
}

// Public serves GET /lp/:slug. Only published pages are visible; a visit
// arriving with ?src=qr is recorded as a scan.
func (h *PageHandler) Public(c *fiber.Ctx) error {
	slug := c.Params("slug")

	page, err := h.pages.GetBySlug(slug)
	if err != nil {
		if errors.Is(err, services.ErrPageNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Love page not found",
			})
		}
		slog.Error("public page fetch failed", "slug", slug, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load page",
		})
	}

	if src := c.Query("src"); src == "qr" {
		if err := h.pages.RecordScan(page.ID, src, c.IP(), c.Get(fiber.HeaderUserAgent)); err != nil {
			slog.Error("scan tracking failed", "page_id", page.ID, "error", err)
		}
	}

	return c.JSON(h.toResponse(page, false))
}

func (h *PageHandler) pageError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrPageNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	case errors.Is(err, services.ErrNotPageOwner):
		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	slog.Error("page operation failed", "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}

func (h *PageHandler) toResponse(page *models.LovePage, owner bool) dto.PageResponse {
	resp := dto.PageResponse{
		ID:            page.ID.String(),
		Slug:          page.Slug,
		Title:         page.Title,
		RecipientName: page.RecipientName,
		SenderName:    page.SenderName,
		Message:       page.Message,
		Images:        page.Images,
		MusicURL:      page.MusicURL,
		ThemeConfig:   page.ThemeConfig,
		Published:     page.Published,
		CreatedAt:     page.CreatedAt,
	}
	if owner {
		resp.PublicURL = h.pages.PublicURL(page)
	}
	return resp
}
