package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/moizkiani/loveylink-backend/internal/config"
	"github.com/moizkiani/loveylink-backend/internal/dto"
	"github.com/moizkiani/loveylink-backend/internal/models"
	"gorm.io/gorm"
)

// AdminRequired authorizes admin endpoints. Access is granted to:
// 1. Requests carrying the configured X-Admin-Token
// 2. The configured owner email
// 3. Users with an admin_roles row (admin or super_admin)
func AdminRequired(db *gorm.DB, cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			return c.Next()
		}

		userID, err := GetUserID(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if email := GetUserEmail(c); email != "" && email == cfg.OwnerEmail {
			return c.Next()
		}

		var role models.AdminRole
		if err := db.First(&role, "user_id = ?", userID).Error; err == nil {
			if role.Role == models.RoleAdmin || role.Role == models.RoleSuperAdmin {
				return c.Next()
			}
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}
