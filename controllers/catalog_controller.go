package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/zylpheon/TheZylpheonAdmin/repository"
	"github.com/zylpheon/TheZylpheonAdmin/services"
)

// CatalogController serves the public product and category listings.
type CatalogController struct {
	catalogService services.ICatalogService
}

// NewCatalogController creates a new CatalogController instance.
func NewCatalogController(svc services.ICatalogService) *CatalogController {
	return &CatalogController{catalogService: svc}
}

// ListProducts handles GET /products?category=&search=&limit=&offset=.
func (c *CatalogController) ListProducts(ctx *fiber.Ctx) error {
	categoryID, err := queryUint(ctx, "category")
	if err != nil {
		return err
	}
	page, err := limitOffset(ctx)
	if err != nil {
		return err
	}

	products, err := c.catalogService.ListProducts(ctx.UserContext(), repository.ProductFilter{
		CategoryID: categoryID,
		Search:     strings.TrimSpace(ctx.Query("search")),
		Page:       page,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(products)
}

func (c *CatalogController) GetProduct(ctx *fiber.Ctx) error {
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

func (c *CatalogController) ListCategories(ctx *fiber.Ctx) error {
	categories, err := c.catalogService.ListCategories(ctx.UserContext())
	if err != nil {
		return err
	}
	return ctx.JSON(categories)
}
