package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zylpheon/TheZylpheonAdmin/apperrors"
	"github.com/zylpheon/TheZylpheonAdmin/middleware"
	"github.com/zylpheon/TheZylpheonAdmin/services"
)

// OrderController handles HTTP requests related to a customer's own orders.
type OrderController struct {
	orderService services.IOrderService
}

// NewOrderController creates a new OrderController instance.
func NewOrderController(svc services.IOrderService) *OrderController {
	return &OrderController{orderService: svc}
}

// CreateOrder handles the POST /orders endpoint: checkout of the whole cart.
func (c *OrderController) CreateOrder(ctx *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(ctx)
	if !ok {
		return apperrors.Unauthenticated("Access token required")
	}

	var request struct {
		ShippingAddress string `json:"shipping_address"`
	}
	if err := parseBody(ctx, &request); err != nil {
		return err
	}

	order, err := c.orderService.Checkout(ctx.UserContext(), principal.UserID, request.ShippingAddress)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":      "Order created successfully",
		"order_id":     order.ID,
		"total_amount": order.TotalAmount,
	})
}

// ListOrders handles GET /orders.
func (c *OrderController) ListOrders(ctx *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(ctx)
	if !ok {
		return apperrors.Unauthenticated("Access token required")
	}

	orders, err := c.orderService.ListMyOrders(ctx.UserContext(), principal.UserID)
	if err != nil {
		return err
	}
	return ctx.JSON(orders)
}

// GetOrder handles GET /orders/:id. Only the owner's orders are visible.
func (c *OrderController) GetOrder(ctx *fiber.Ctx) error {
	principal, ok := middleware.PrincipalFrom(ctx)
	if !ok {
		return apperrors.Unauthenticated("Access token required")
	}
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}

	order, err := c.orderService.GetMyOrder(ctx.UserContext(), principal.UserID, id)
	if err != nil {
		return err
	}
	return ctx.JSON(order)
}
