package handler

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
)

// Version is the API version reported by /health.
const Version = "0.1.0"

// PingFunc reports storage health.
type PingFunc func(ctx context.Context) error

type HealthHandler struct {
	ping   PingFunc
	logger *slog.Logger
}

func NewHealthHandler(ping PingFunc, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{ping: ping, logger: logger}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Storage string `json:"storage,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Version: Version,
	})
}

// Ready reports 503 while storage is unreachable.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.ping != nil {
		ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
		defer cancel()

		if err := h.ping(ctx); err != nil {
			h.logger.Warn("readiness check failed", "error", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
				Status:  "unavailable",
				Storage: "down",
			})
		}
	}
	return c.JSON(HealthResponse{
		Status:  "ready",
		Storage: "up",
	})
}
