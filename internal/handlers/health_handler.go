package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// PingFunc reports whether the database is reachable.
type PingFunc func(ctx context.Context) error

// HealthHandler serves liveness and readiness endpoints.
type HealthHandler struct {
	ping   PingFunc
	logger *slog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(ping PingFunc, logger *slog.Logger) *HealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthHandler{ping: ping, logger: logger}
}

// RegisterRoutes registers "/" and "/health".
func (h *HealthHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/", h.HandleRoot)
	router.Get("/health", h.HandleHealth)
}

// HandleRoot is a plain liveness probe.
func (h *HealthHandler) HandleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"message": "API is running",
	})
}

// HandleHealth reports database connectivity.
func (h *HealthHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	now := time.Now().UTC().Format(time.RFC3339)
	if h.ping != nil {
		if err := h.ping(ctx); err != nil {
			h.logger.WarnContext(ctx, "health check failed", slog.String("error", err.Error()))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":   "unhealthy",
				"time":     now,
				"database": "disconnected",
			})
		}
	}

	return c.JSON(fiber.Map{
		"status":   "healthy",
		"time":     now,
		"database": "connected",
	})
}
