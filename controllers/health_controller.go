package controllers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthController reports whether the API can reach its database.
type HealthController struct {
	ping func(ctx context.Context) error
}

// NewHealthController creates a new HealthController instance.
func NewHealthController(ping func(ctx context.Context) error) *HealthController {
	return &HealthController{ping: ping}
}

func (c *HealthController) Check(ctx *fiber.Ctx) error {
	pingCtx, cancel := context.WithTimeout(ctx.UserContext(), 2*time.Second)
	defer cancel()
	if err := c.ping(pingCtx); err != nil {
		return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
	}
	return ctx.JSON(fiber.Map{"status": "ok"})
}
