package handlers

import (
	"time"

	"astromart/internal/services/order"
	"astromart/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type OrderHandler struct {
	orderService order.Service
}

func NewOrderHandler(orderService order.Service) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

func (h *OrderHandler) PlaceOrder(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Name         string     `json:"name"`
		City         string     `json:"city"`
		State        string     `json:"state"`
		Phone        string     `json:"phone"`
		ProductID    uint       `json:"product_id"`
		Quantity     int        `json:"quantity"`
		DeliveryDate *time.Time `json:"delivery_date"`
		TotalPrice   int64      `json:"total_price"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	placed, err := h.orderService.PlaceOrder(c.Context(), order.PlaceOrderInput{
		UserID:       claims.UserID,
		Name:         input.Name,
		City:         input.City,
		State:        input.State,
		Phone:        input.Phone,
		ProductID:    input.ProductID,
		Quantity:     input.Quantity,
		DeliveryDate: input.DeliveryDate,
		TotalPrice:   input.TotalPrice,
	})
	if err != nil {
		return respondError(c, err)
	}

	return utils.Created(c, fiber.Map{"order": placed})
}

func (h *OrderHandler) GetOrder(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid order id")
	}

	o, err := h.orderService.GetOrder(c.Context(), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"order": o})
}

func (h *OrderHandler) ListMyOrders(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	limit := c.QueryInt("limit", 20)
	offset := c.QueryInt("offset", 0)
	orders, err := h.orderService.ListUserOrders(c.Context(), claims.UserID, limit, offset)
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"orders": orders})
}

func (h *OrderHandler) CancelOrder(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil || id <= 0 {
		return utils.BadRequest(c, "invalid order id")
	}

	o, err := h.orderService.CancelOrder(c.Context(), uint(id))
	if err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"order": o})
}

// MeterSession is invoked by the session gateway on its billing
// cadence while a session is live.
func (h *OrderHandler) MeterSession(c *fiber.Ctx) error {
	var input struct {
		SessionID      string `json:"session_id"`
		ElapsedSeconds int64  `json:"elapsed_seconds"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if input.SessionID == "" || input.ElapsedSeconds < 0 {
		return utils.BadRequest(c, "session_id and elapsed_seconds are required")
	}

	result, err := h.orderService.MeterSession(c.Context(), input.SessionID, time.Duration(input.ElapsedSeconds)*time.Second)
	if err != nil {
		return respondError(c, err)
	}
	if result == nil {
		return utils.Success(c, fiber.Map{"billed": false})
	}
	return utils.Success(c, fiber.Map{"billed": true, "debit": result.Debit, "credit": result.Credit})
}

// Payout settles astrologer earnings; admin only.
func (h *OrderHandler) Payout(c *fiber.Ctx) error {
	var input struct {
		AstrologerID uint  `json:"astrologer_id"`
		GrossPaise   int64 `json:"gross_paise"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	if err := h.orderService.PayoutAstrologer(c.Context(), input.AstrologerID, input.GrossPaise); err != nil {
		return respondError(c, err)
	}
	return utils.Success(c, fiber.Map{"status": "settled"})
}
