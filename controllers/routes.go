package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zylpheon/TheZylpheonAdmin/middleware"
	"github.com/zylpheon/TheZylpheonAdmin/models"
)

// Handlers groups the controllers mounted by RegisterRoutes.
type Handlers struct {
	Auth    *AuthController
	Catalog *CatalogController
	Cart    *CartController
	Order   *OrderController
	Admin   *AdminController
	Health  *HealthController
}

// RegisterRoutes mounts the storefront and admin APIs under /api.
func RegisterRoutes(app *fiber.App, guard *middleware.AccessGuard, h Handlers) {
	if h.Health != nil {
		app.Get("/healthz", h.Health.Check)
	}

	api := app.Group("/api")

	api.Post("/register", h.Auth.Register)
	api.Post("/login", h.Auth.Login)
	api.Get("/me", guard.Authenticate(), h.Auth.Me)

	api.Get("/products", h.Catalog.ListProducts)
	api.Get("/products/:id", h.Catalog.GetProduct)
	api.Get("/categories", h.Catalog.ListCategories)

	cart := api.Group("/cart", guard.Authenticate())
	cart.Get("/", h.Cart.GetCart)
	cart.Post("/", h.Cart.AddItem)
	cart.Put("/:id", h.Cart.UpdateItem)
	cart.Delete("/:id", h.Cart.RemoveItem)

	orders := api.Group("/orders", guard.Authenticate())
	orders.Post("/", h.Order.CreateOrder)
	orders.Get("/", h.Order.ListOrders)
	orders.Get("/:id", h.Order.GetOrder)

	admin := api.Group("/admin", guard.Authenticate(), middleware.RequireRole(models.RoleAdmin))
	admin.Get("/stats", h.Admin.Stats)

	admin.Get("/products", h.Admin.ListProducts)
	admin.Get("/products/:id", h.Admin.GetProduct)
	admin.Post("/products", h.Admin.CreateProduct)
	admin.Put("/products/:id", h.Admin.UpdateProduct)
	admin.Delete("/products/:id", h.Admin.DeleteProduct)

	admin.Get("/categories", h.Admin.ListCategories)
	admin.Get("/categories/:id", h.Admin.GetCategory)
	admin.Post("/categories", h.Admin.CreateCategory)
	admin.Put("/categories/:id", h.Admin.UpdateCategory)
	admin.Delete("/categories/:id", h.Admin.DeleteCategory)

	admin.Get("/orders", h.Admin.ListOrders)
	admin.Get("/orders/:id", h.Admin.GetOrder)
	admin.Put("/orders/:id", h.Admin.UpdateOrderStatus)

	admin.Get("/users", h.Admin.ListUsers)
	admin.Get("/users/:id", h.Admin.GetUser)
	admin.Put("/users/:id", h.Admin.UpdateUserRole)
	admin.Delete("/users/:id", h.Admin.DeleteUser)
}
