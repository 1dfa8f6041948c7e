package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zylpheon/TheZylpheonAdmin/apperrors"
	"github.com/zylpheon/TheZylpheonAdmin/middleware"
	"github.com/zylpheon/TheZylpheonAdmin/services"
)

// AuthController handles registration, login and the current principal.
type AuthController struct {
	authService services.IAuthService
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(svc services.IAuthService) *AuthController {
	return &AuthController{authService: svc}
}

func (c *AuthController) Register(ctx *fiber.Ctx) error {
	var request services.RegisterInput
	if err := parseBody(ctx, &request); err != nil {
		return err
	}

	result, err := c.authService.Register(ctx.UserContext(), request)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "User created",
		"token":   result.Token,
		"user":    result.User,
	})
}

func (c *AuthController) Login(ctx *fiber.Ctx) error {
	var request struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := parseBody(ctx, &request); err != nil {
		return err
	}

	result, err := c.authService.Login(ctx.UserContext(), request.Email, request.Password)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{
		"message": "Login successful",
		"token":   result.Token,
		"user":    result.User,
	})
}

func (c *AuthController) Me(ctx *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(ctx)
	if !ok {
		return apperrors.Unauthenticated("Access token required")
	}
	return ctx.JSON(principal.User)
}
