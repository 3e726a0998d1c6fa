package handlers

import (
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler answers liveness probes with the service identity, its
// storage mode and how long it has been up.
type HealthHandler struct {
	version   string
	startedAt time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{
		version:   version,
		startedAt: time.Now(),
	}
}

// Check reports the service as healthy.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	storageMode := "postgres"
	if os.Getenv("USE_MEMORY_STORE") == "true" {
		storageMode = "memory"
	}

	return c.JSON(fiber.Map{
		"status":  "OK",
		"service": "tumaini-backend",
		"version": h.version,
		"storage": storageMode,
		"uptime":  time.Since(h.startedAt).Round(time.Second).String(),
	})
}
