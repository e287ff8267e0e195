package handlers

import (
	"astromart/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// Health reports liveness.
func Health(c *fiber.Ctx) error {
	return utils.Success(c, fiber.Map{"status": "ok"})
}
