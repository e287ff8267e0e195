package handlers

import (
	"astromart/internal/models"
	"astromart/internal/services/ledger"
	"astromart/internal/services/recharge"
	"astromart/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type WalletHandler struct {
	ledgerService   ledger.Service
	rechargeService recharge.Service
}

func NewWalletHandler(ledgerService ledger.Service, rechargeService recharge.Service) *WalletHandler {
	return &WalletHandler{
		ledgerService:   ledgerService,
		rechargeService: rechargeService,
	}
}

func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	ownerType := models.OwnerTypeUser
	if claims.Role == models.RoleAstrologer {
		ownerType = models.OwnerTypeAstrologer
	}
	wallet, err := h.ledgerService.GetWalletByOwner(c.Context(), ownerType, claims.UserID)
	if err != nil {
		return respondError(c, err)
	}

	return utils.Success(c, fiber.Map{"wallet": wallet})
}

func (h *WalletHandler) GetEntries(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	ownerType := models.OwnerTypeUser
	if claims.Role == models.RoleAstrologer {
		ownerType = models.OwnerTypeAstrologer
	}
	wallet, err := h.ledgerService.GetWalletByOwner(c.Context(), ownerType, claims.UserID)
	if err != nil {
		return respondError(c, err)
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	entries, err := h.ledgerService.GetEntries(c.Context(), wallet.ID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}

	return utils.Success(c, fiber.Map{"entries": entries})
}

func (h *WalletHandler) Recharge(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		AmountPaise     int64  `json:"amount_paise"`
		PaymentMethodID string `json:"payment_method_id"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if input.AmountPaise <= 0 {
		return utils.BadRequest(c, "amount must be positive")
	}

	entry, err := h.rechargeService.Recharge(c.Context(), claims.UserID, input.AmountPaise, input.PaymentMethodID)
	if err != nil {
		if err == recharge.ErrPaymentFailed || err == recharge.ErrInvalidAmount {
			return utils.BadRequest(c, err.Error())
		}
		return respondError(c, err)
	}

	return utils.Created(c, fiber.Map{"entry": entry})
}
