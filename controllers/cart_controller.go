package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zylpheon/TheZylpheonAdmin/apperrors"
	"github.com/zylpheon/TheZylpheonAdmin/middleware"
	"github.com/zylpheon/TheZylpheonAdmin/services"
)

// CartController handles the authenticated customer's cart.
type CartController struct {
	cartService services.ICartService
}

// NewCartController creates a new CartController instance.
func NewCartController(svc services.ICartService) *CartController {
	return &CartController{cartService: svc}
}

func (c *CartController) GetCart(ctx *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(ctx)
	if !ok {
		return apperrors.Unauthenticated("Access token required")
	}
	view, err := c.cartService.View(ctx.UserContext(), principal.UserID)
	if err != nil {
		return err
	}
	return ctx.JSON(view)
}

func (c *CartController) AddItem(ctx *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(ctx)
	if !ok {
		return apperrors.Unauthenticated("Access token required")
	}

	request := struct {
		ProductID uint   `json:"product_id"`
		Quantity  *int   `json:"quantity"`
		Size      string `json:"size"`
	}{}
	if err := parseBody(ctx, &request); err != nil {
		return err
	}
	quantity := 1
	if request.Quantity != nil {
		quantity = *request.Quantity
	}

	if err := c.cartService.AddItem(ctx.UserContext(), principal.UserID, request.ProductID, quantity, request.Size); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"message": "Item added to cart"})
}

func (c *CartController) UpdateItem(ctx *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(ctx)
	if !ok {
		return apperrors.Unauthenticated("Access token required")
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	var request struct {
		Quantity int `json:"quantity"`
	}
	if err := parseBody(ctx, &request); err != nil {
		return err
	}

	if err := c.cartService.UpdateQuantity(ctx.UserContext(), principal.UserID, id, request.Quantity); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"message": "Cart updated"})
}

func (c *CartController) RemoveItem(ctx *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(ctx)
	if !ok {
		return apperrors.Unauthenticated("Access token required")
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	if err := c.cartService.RemoveItem(ctx.UserContext(), principal.UserID, id); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"message": "Item removed from cart"})
}
