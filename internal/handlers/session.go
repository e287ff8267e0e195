package handlers

import (
	"astromart/internal/services/session"
	"astromart/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type SessionHandler struct {
	registry session.Registry
}

func NewSessionHandler(registry session.Registry) *SessionHandler {
	return &SessionHandler{registry: registry}
}

func (h *SessionHandler) Begin(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		AstrologerID uint   `json:"astrologer_id"`
		Kind         string `json:"kind"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	sess, err := h.registry.Begin(c.Context(), input.AstrologerID, claims.UserID, input.Kind)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Created(c, fiber.Map{"session": sess})
}

func (h *SessionHandler) Activate(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return utils.BadRequest(c, "invalid session id")
	}

	sess, err := h.registry.Activate(c.Context(), sessionID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"session": sess})
}

func (h *SessionHandler) End(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return utils.BadRequest(c, "invalid session id")
	}

	if err := h.registry.End(c.Context(), sessionID); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"status": "ended"})
}

func (h *SessionHandler) Reject(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return utils.BadRequest(c, "invalid session id")
	}

	if err := h.registry.Reject(c.Context(), sessionID); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"status": "rejected"})
}

func (h *SessionHandler) Get(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return utils.BadRequest(c, "invalid session id")
	}

	sess, err := h.registry.Get(c.Context(), sessionID)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"session": sess})
}
