package routes

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/moizkiani/loveylink-backend/internal/config"
	"github.com/moizkiani/loveylink-backend/internal/handlers"
	"github.com/moizkiani/loveylink-backend/internal/middleware"
	"gorm.io/gorm"
)

func Setup(
	app *fiber.App,
	cfg *config.Config,
	db *gorm.DB,
	authHandler *handlers.AuthHandler,
	healthHandler *handlers.HealthHandler,
	plansHandler *handlers.PlansHandler,
	pageHandler *handlers.PageHandler,
	subscriptionHandler *handlers.SubscriptionHandler,
	paymentHandler *handlers.PaymentHandler,
	webhookHandler *handlers.WebhookHandler,
	adminHandler *handlers.AdminHandler,
) {
	api := app.Group("/api")

	// General API rate limiter: 60 req/min per IP
	api.Use(limiter.New(limiter.Config{
		Max:               60,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))

	// Public
	api.Get("/health", healthHandler.Check)
	api.Get("/plans", plansHandler.List)
	api.Get("/lp/:slug", pageHandler.Public)

	// Auth endpoints get a stricter rate limit: 10 req/min per IP
	auth := api.Group("/auth")
	auth.Use(limiter.New(limiter.Config{
		Max:               10,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator:      func(c *fiber.Ctx) string { return c.IP() },
	}))
	auth.Post("/register", authHandler.Register)
	auth.Post("/login", authHandler.Login)
	auth.Post("/refresh", authHandler.Refresh)

	// Protected auth operations
	api.Post("/auth/logout", middleware.JWTProtected(cfg), authHandler.Logout)
	api.Put("/auth/password", middleware.JWTProtected(cfg), authHandler.ChangePassword)
	api.Delete("/auth/account", middleware.JWTProtected(cfg), authHandler.DeleteAccount)

	// Love pages (owner-scoped)
	pages := api.Group("/pages", middleware.JWTProtected(cfg))
	pages.Post("/", pageHandler.Create)
	pages.Get("/", pageHandler.ListMine)
	pages.Get("/:id", pageHandler.Get)
	pages.Post("/:id/publish", pageHandler.Publish)
	pages.Get("/:id/qr.png", pageHandler.QRCode)
	pages.Delete("/:id", pageHandler.Delete)

	// Subscription status & self-service reconciliation
	api.Get("/subscription", middleware.JWTProtected(cfg), subscriptionHandler.Status)
	api.Post("/subscription/refresh", middleware.JWTProtected(cfg), subscriptionHandler.Refresh)

	// Payments
	api.Post("/payments/easypaisa", middleware.JWTProtected(cfg), paymentHandler.SubmitEasypaisa)
	api.Get("/payments", middleware.JWTProtected(cfg), paymentHandler.ListMine)
	api.Post("/checkout", middleware.JWTProtected(cfg), paymentHandler.CreateCheckout)

	// Stripe webhooks (signature-authenticated, no JWT)
	api.Post("/webhooks/stripe", webhookHandler.HandleStripe)

	// Seed (token-guarded, runs before any admin exists)
	api.Post("/seed", adminHandler.Seed)

	// Admin panel
	admin := api.Group("/admin", middleware.JWTProtected(cfg), middleware.AdminRequired(db, cfg))
	admin.Get("/stats", adminHandler.Stats)
	admin.Get("/users", adminHandler.Users)
	admin.Post("/users/:id/revoke", adminHandler.RevokePremium)
	admin.Get("/payments", adminHandler.Payments)
	admin.Post("/payments/:id/approve", adminHandler.ApprovePayment)
	admin.Post("/payments/:id/reject", adminHandler.RejectPayment)
}
