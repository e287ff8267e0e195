// Package handlers contains the HTTP layer: thin fiber handlers that
// decode requests, call the services and map errors to statuses.
package handlers

import (
	"errors"

	"astromart/internal/models"
	"astromart/internal/services/availability"
	"astromart/internal/services/ledger"
	"astromart/internal/services/order"
	"astromart/internal/services/session"
	"astromart/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// extractUserClaims is a helper to read validated claims off the
// request context.
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

// respondError maps service errors onto the HTTP error taxonomy.
// Business-rule violations surface to the caller; only transient
// concurrency aborts come back as 5xx.
func respondError(c *fiber.Ctx, err error) error {
	var validationErr *order.ValidationError
	switch {
	case errors.As(err, &validationErr):
		return utils.BadRequest(c, validationErr.Error())
	case errors.Is(err, order.ErrInsufficientFunds),
		errors.Is(err, ledger.ErrInsufficientFunds):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, availability.ErrActiveSession):
		return utils.Conflict(c, err.Error())
	case errors.Is(err, session.ErrSessionExists),
		errors.Is(err, session.ErrSessionClosed):
		return utils.Conflict(c, err.Error())
	case errors.Is(err, session.ErrProviderOffline),
		errors.Is(err, availability.ErrProviderOffline),
		errors.Is(err, availability.ErrInvalidStatus),
		errors.Is(err, availability.ErrInvalidCapability),
		errors.Is(err, session.ErrInvalidKind),
		errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, order.ErrInvalidAmount),
		errors.Is(err, order.ErrPriceMismatch),
		errors.Is(err, order.ErrSessionNotActive),
		errors.Is(err, order.ErrOrderCompleted):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, order.ErrUserNotFound),
		errors.Is(err, order.ErrProductNotFound),
		errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrSessionNotFound),
		errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, session.ErrProviderUnknown),
		errors.Is(err, availability.ErrProviderUnknown),
		errors.Is(err, ledger.ErrWalletNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, ledger.ErrConcurrentModification):
		return utils.ServiceUnavailable(c, "please retry")
	default:
		return utils.InternalError(c, "internal error")
	}
}
