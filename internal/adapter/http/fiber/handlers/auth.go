package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/chargehub/chargehub-api/internal/adapter/http/fiber/middleware"
	"github.com/chargehub/chargehub-api/internal/domain"
	"github.com/chargehub/chargehub-api/internal/ports"
	"github.com/chargehub/chargehub-api/pkg/validation"
)

type AuthHandler struct {
	service ports.AuthService
	log     *zap.Logger
}

func NewAuthHandler(service ports.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RegisterRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
	Phone    string `json:"phone"`
	Role     string `json:"role" validate:"omitempty,oneof=ev_owner station_owner"`
}

func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	tokens, user, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		h.log.Warn("login failed", zap.String("email", req.Email), zap.Error(err))
		return err
	}

	return c.JSON(fiber.Map{
		"tokens": tokens,
		"user":   user,
	})
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	user := domain.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Phone:    req.Phone,
		Role:     domain.UserRole(req.Role),
	}
	plainPassword := req.Password

	if err := h.service.Register(c.UserContext(), &user); err != nil {
		return err
	}

	// Auto-login after registration
	tokens, _, err := h.service.Login(c.UserContext(), user.Email, plainPassword)
	if err != nil {
		h.log.Warn("auto-login after registration failed", zap.String("user_id", user.ID), zap.Error(err))
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":   user,
		"tokens": tokens,
	})
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (h *AuthHandler) RefreshToken(c *fiber.Ctx) error {
	var req RefreshRequest
	if err := c.BodyParser(&req); err != nil {
		return domain.NewValidationError("invalid request body")
	}
	if err := validation.Struct(&req); err != nil {
		return err
	}

	token, err := h.service.RefreshToken(c.UserContext(), req.RefreshToken)
	if err != nil {
		return err
	}

	return c.JSON(ports.TokenPair{
		AccessToken:  token,
		RefreshToken: req.RefreshToken,
	})
}

// Logout revokes the access token of the request and, when given, the refresh token.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	var req struct {
		RefreshToken string `json:"refreshToken"`
	}
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return domain.NewValidationError("invalid request body")
		}
	}

	if err := h.service.Logout(c.UserContext(), middleware.Token(c)); err != nil {
		return err
	}
	if req.RefreshToken != "" {
		if err := h.service.Logout(c.UserContext(), req.RefreshToken); err != nil {
			return err
		}
	}

	return c.JSON(fiber.Map{"success": true, "message": "logged out"})
}

func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := c.Locals(middleware.LocalUser).(*domain.User)
	if !ok || user == nil {
		return domain.NewUnauthorizedError("not authenticated")
	}
	return c.JSON(user)
}
