package handlers

import (
	"astromart/internal/services/auth"
	"astromart/internal/utils"

	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService auth.Service
}

func NewAuthHandler(authService auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Name     string `json:"name"`
		Phone    string `json:"phone"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if input.Email == "" || input.Password == "" || input.Name == "" || input.Phone == "" {
		return utils.BadRequest(c, "email, password, name and phone are required")
	}

	user, err := h.authService.RegisterUser(auth.RegisterUserInput{
		Email:    input.Email,
		Password: input.Password,
		Name:     input.Name,
		Phone:    input.Phone,
	})
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	user.Password = ""
	return utils.Created(c, fiber.Map{"user": user})
}

func (h *AuthHandler) RegisterAstrologer(c *fiber.Ctx) error {
	var input struct {
		Email         string `json:"email"`
		Password      string `json:"password"`
		Name          string `json:"name"`
		Phone         string `json:"phone"`
		Specialities  string `json:"specialities"`
		ChatRatePaise int64  `json:"chat_rate_paise"`
		CallRatePaise int64  `json:"call_rate_paise"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}
	if input.Email == "" || input.Password == "" || input.Name == "" || input.Phone == "" {
		return utils.BadRequest(c, "email, password, name and phone are required")
	}

	astro, err := h.authService.RegisterAstrologer(auth.RegisterAstrologerInput{
		Email:         input.Email,
		Password:      input.Password,
		Name:          input.Name,
		Phone:         input.Phone,
		Specialities:  input.Specialities,
		ChatRatePaise: input.ChatRatePaise,
		CallRatePaise: input.CallRatePaise,
	})
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}

	astro.Password = ""
	return utils.Created(c, fiber.Map{"astrologer": astro})
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var input struct {
		Email    string `json:"email"`
		Phone    string `json:"phone"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	user, accessToken, refreshToken, err := h.authService.Login(input.Email, input.Phone, input.Password)
	if err != nil {
		return utils.Unauthorized(c, err.Error())
	}

	user.Password = ""
	return utils.Success(c, fiber.Map{
		"user":          user,
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *AuthHandler) Refresh(c *fiber.Ctx) error {
	var input struct {
		RefreshToken string `json:"refresh_token"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	accessToken, refreshToken, err := h.authService.RefreshTokens(input.RefreshToken)
	if err != nil {
		return utils.Unauthorized(c, err.Error())
	}

	return utils.Success(c, fiber.Map{
		"access_token":  accessToken,
		"refresh_token": refreshToken,
	})
}

func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	if err := h.authService.Logout(claims.UserID); err != nil {
		return utils.InternalError(c, "failed to logout")
	}
	return utils.Success(c, fiber.Map{"status": "logged out"})
}

func (h *AuthHandler) ChangePassword(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		OldPassword string `json:"old_password"`
		NewPassword string `json:"new_password"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "invalid request body")
	}

	if err := h.authService.ChangePassword(claims.UserID, input.OldPassword, input.NewPassword); err != nil {
		return utils.BadRequest(c, err.Error())
	}
	return utils.Success(c, fiber.Map{"status": "password changed"})
}
