package routes

import (
	"os"

	"github.com/TumainiCare/tumaini-backend/internal/handlers"
	"github.com/TumainiCare/tumaini-backend/internal/middleware"
	"github.com/TumainiCare/tumaini-backend/internal/services"
	"github.com/TumainiCare/tumaini-backend/internal/storage"

	"github.com/gofiber/fiber/v2"
)

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, store storage.Store, sessionService *services.SessionService, menuService *services.MenuService) {

	// Root endpoint
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Welcome to Tumaini Backend!",
			"version": "1.0.0",
			"endpoints": fiber.Map{
				"health":   "/health",
				"callback": "/ussd/callback",
				"admin":    "/admin",
			},
		})
	})

	healthHandler := handlers.NewHealthHandler("1.0.0")
	app.Get("/health", healthHandler.Check)

	// ========== USSD CALLBACK ==========
	ussdHandler := handlers.NewUssdHandler(sessionService, menuService)

	ussd := app.Group("/ussd")
	if os.Getenv("ENVIRONMENT") == "development" || os.Getenv("DISABLE_WEBHOOK_VALIDATION") == "true" {
		// Development: skip validation for local gateway simulators
		ussd.Post("/callback", ussdHandler.HandleCallback)
		if os.Getenv("ENVIRONMENT") == "development" {
			println("⚠️  USSD callback validation DISABLED for development")
		}
	} else {
		ussd.Post("/callback", middleware.ValidateGatewaySignature(), ussdHandler.HandleCallback)
	}

	// ========== ADMIN ROUTES (read-only session reporting) ==========
	adminHandler := handlers.NewAdminHandler(store)

	admin := app.Group("/admin", middleware.RequireAdminToken())
	admin.Get("/sessions", adminHandler.ListSessions)
	admin.Get("/sessions/stats", adminHandler.GetSessionStats)
	admin.Get("/sessions/export", adminHandler.ExportSessions)
	admin.Get("/sessions/:sessionId", adminHandler.GetSession)
}
