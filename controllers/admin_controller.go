package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/zylpheon/TheZylpheonAdmin/models"
	"github.com/zylpheon/TheZylpheonAdmin/repository"
	"github.com/zylpheon/TheZylpheonAdmin/services"
)

// AdminController serves the /admin routes. Every handler assumes the
// admin role check already ran.
type AdminController struct {
	catalogService services.ICatalogService
	orderService   services.IOrderService
	userService    services.IUserService
}

// NewAdminController creates a new AdminController instance.
func NewAdminController(catalogSvc services.ICatalogService, orderSvc services.IOrderService, userSvc services.IUserService) *AdminController {
	return &AdminController{catalogService: catalogSvc, orderService: orderSvc, userService: userSvc}
}

func (c *AdminController) Stats(ctx *fiber.Ctx) error {
	stats, err := c.userService.Stats(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(stats)
}

// ListProducts handles GET /admin/products?page=&limit=&search=&category=&lowStock=.
func (c *AdminController) ListProducts(ctx *fiber.Ctx) error {
	page, err := adminPage(ctx)
	if err != nil {
		return err
	}
	categoryID, err := queryUint(ctx, "category")
	if err != nil {
		return err
	}

	products, err := c.catalogService.AdminListProducts(ctx.UserContext(), repository.ProductFilter{
		CategoryID: categoryID,
		Search:     strings.TrimSpace(ctx.Query("search")),
		LowStock:   ctx.Query("lowStock") == "true",
		Page:       page,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"products": products})
}

func (c *AdminController) GetProduct(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	product, err := c.catalogService.GetProduct(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(product)
}

func (c *AdminController) CreateProduct(ctx *fiber.Ctx) error {
	var request services.ProductInput
	if err := parseBody(ctx, &request); err != nil {
		return err
	}
	product, err := c.catalogService.CreateProduct(ctx.UserContext(), request)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Product created", "product": product})
}

func (c *AdminController) UpdateProduct(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var request services.ProductInput
	if err := parseBody(ctx, &request); err != nil {
		return err
	}
	product, err := c.catalogService.UpdateProduct(ctx.UserContext(), id, request)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"message": "Product updated", "product": product})
}

func (c *AdminController) DeleteProduct(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.catalogService.DeleteProduct(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"message": "Product deleted"})
}

func (c *AdminController) ListCategories(ctx *fiber.Ctx) error {
	categories, err := c.catalogService.AdminListCategories(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"categories": categories})
}

func (c *AdminController) GetCategory(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	category, err := c.catalogService.GetCategory(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(category)
}

func (c *AdminController) CreateCategory(ctx *fiber.Ctx) error {
	var request services.CategoryInput
	if err := parseBody(ctx, &request); err != nil {
		return err
	}
	category, err := c.catalogService.CreateCategory(ctx.UserContext(), request)
	if err != nil {
		return err
	}
	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{"message": "Category created", "category": category})
}

func (c *AdminController) UpdateCategory(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var request services.CategoryInput
	if err := parseBody(ctx, &request); err != nil {
		return err
	}
	category, err := c.catalogService.UpdateCategory(ctx.UserContext(), id, request)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"message": "Category updated", "category": category})
}

func (c *AdminController) DeleteCategory(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.catalogService.DeleteCategory(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"message": "Category deleted"})
}

// ListOrders handles GET /admin/orders?page=&limit=&status=&search=.
func (c *AdminController) ListOrders(ctx *fiber.Ctx) error {
	page, err := adminPage(ctx)
	if err != nil {
		return err
	}
	orders, err := c.orderService.ListOrders(ctx.UserContext(), repository.OrderFilter{
		Status: models.OrderStatus(strings.TrimSpace(ctx.Query("status"))),
		Search: strings.TrimSpace(ctx.Query("search")),
		Page:   page,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"orders": orders})
}

func (c *AdminController) GetOrder(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	order, err := c.orderService.GetOrder(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(order)
}

func (c *AdminController) UpdateOrderStatus(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var request struct {
		Status string `json:"status"`
	}
	if err := parseBody(ctx, &request); err != nil {
		return err
	}
	order, err := c.orderService.UpdateStatus(ctx.UserContext(), id, request.Status)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"message": "Order status updated", "order": order})
}

// ListUsers handles GET /admin/users?page=&limit=&role=&search=.
func (c *AdminController) ListUsers(ctx *fiber.Ctx) error {
	page, err := adminPage(ctx)
	if err != nil {
		return err
	}
	users, err := c.userService.ListUsers(ctx.UserContext(), repository.UserFilter{
		Role:   models.Role(strings.TrimSpace(ctx.Query("role"))),
		Search: strings.TrimSpace(ctx.Query("search")),
		Page:   page,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"users": users})
}

func (c *AdminController) GetUser(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	user, err := c.userService.GetUser(ctx.UserContext(), id)
	if err != nil {
		return err
	}
	return ctx.JSON(user)
}

func (c *AdminController) UpdateUserRole(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	var request struct {
		Role string `json:"role"`
	}
	if err := parseBody(ctx, &request); err != nil {
		return err
	}
	user, err := c.userService.UpdateRole(ctx.UserContext(), id, request.Role)
	if err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"message": "User role updated", "user": user})
}

func (c *AdminController) DeleteUser(ctx *fiber.Ctx) error {
	id, err := paramID(ctx, "id")
	if err != nil {
		return err
	}
	if err := c.userService.DeleteUser(ctx.UserContext(), id); err != nil {
		return err
	}
	return ctx.JSON(fiber.Map{"message": "User deleted"})
}
