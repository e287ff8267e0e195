package handlers

import (
	"astromart/internal/services/availability"
	"astromart/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AstrologerHandler struct {
	availabilityService availability.Service
}

func NewAstrologerHandler(availabilityService availability.Service) *AstrologerHandler {
	return &AstrologerHandler{availabilityService: availabilityService}
}

// SetStatus toggles the astrologer between online and offline. Going
// offline is refused while an active chat session exists.
func (h *AstrologerHandler) SetStatus(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		AvailableStatus string `json:"available_status"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	astro, err := h.availabilityService.SetStatus(c.Context(), claims.UserID, input.AvailableStatus)
	if err != nil {
		return respondError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"message":      "availability updated successfully",
		"availability": astro.Availability(),
	})
}

func (h *AstrologerHandler) SetCapability(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Capability string `json:"capability"`
		Enabled    bool   `json:"enabled"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	astro, err := h.availabilityService.SetCapability(c.Context(), claims.UserID, input.Capability, input.Enabled)
	if err != nil {
		return respondError(c, err)
	}

	return utils.Success(c, fiber.Map{"availability": astro.Availability()})
}

func (h *AstrologerHandler) GetAvailability(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid astrologer id")
	}

	astro, err := h.availabilityService.Get(c.Context(), uint(id))
	if err != nil {
		return respondError(c, err)
	}

	return utils.Success(c, fiber.Map{"availability": astro.Availability()})
}
