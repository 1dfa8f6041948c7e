package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zylpheon/TheZylpheonAdmin/apperrors"
	"github.com/zylpheon/TheZylpheonAdmin/cache"
	"github.com/zylpheon/TheZylpheonAdmin/models"
	"github.com/zylpheon/TheZylpheonAdmin/repository"
)

// ProductInput is the admin payload for creating or replacing a product.
type ProductInput struct {
	Name        string           `json:"name"`
	Description *string          `json:"description"`
	CategoryID  *uint            `json:"category_id"`
	Price       *decimal.Decimal `json:"price"`
	Stock       *int             `json:"stock"`
	Size        *string          `json:"size"`
	Color       *string          `json:"color"`
	ImageURL    *string          `json:"image_url"`
}

const productOrderedMessage = "Cannot delete a product that has been ordered"

// CategoryInput is the admin payload for creating or renaming a category.
type CategoryInput struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

// ICatalogService defines product and category operations. The List/Get
// methods without an Admin prefix serve the public storefront.
type ICatalogService interface {
	ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error)
	GetProduct(ctx context.Context, id uint) (*models.Product, error)
	ListCategories(ctx context.Context) ([]repository.CategoryWithCount, error)

	AdminListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error)
	CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uint) error

	AdminListCategories(ctx context.Context) ([]repository.CategoryWithCount, error)
	GetCategory(ctx context.Context, id uint) (*models.Category, error)
	CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error)
	UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*models.Category, error)
	DeleteCategory(ctx context.Context, id uint) error
}

// CatalogService implements ICatalogService.
type CatalogService struct {
	catalogRepo  repository.ICatalogRepository
	catalogCache cache.CatalogCache
	log          *zap.Logger
}

// NewCatalogService creates a new CatalogService instance.
func NewCatalogService(repo repository.ICatalogRepository, catalogCache cache.CatalogCache, log *zap.Logger) ICatalogService {
	return &CatalogService{catalogRepo: repo, catalogCache: catalogCache, log: log}
}

// ListProducts returns in-stock products, served from the cache when
// possible.
func (s *CatalogService) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	filter.InStockOnly = true
	filter.LowStock = false

	var categoryID interface{} = ""
	if filter.CategoryID != nil {
		categoryID = *filter.CategoryID
	}
	key := cache.Key("products", categoryID, filter.Search, filter.Page.Limit, filter.Page.Offset)

	version, cacheable := s.cacheVersion(ctx)
	var products []models.Product
	if cacheable && s.cacheGet(ctx, version, key, &products) {
		return products, nil
	}

	products, err := s.catalogRepo.ListProducts(ctx, filter)
	if err != nil {
		return nil, s.internal("list products", err)
	}
	if cacheable {
		s.cacheSet(ctx, version, key, products)
	}
	return products, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.catalogRepo.FindProduct(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Product not found")
	}
	if err != nil {
		return nil, s.internal("get product", err)
	}
	return product, nil
}

func (s *CatalogService) ListCategories(ctx context.Context) ([]repository.CategoryWithCount, error) {
	key := cache.Key("categories")

	version, cacheable := s.cacheVersion(ctx)
	var categories []repository.CategoryWithCount
	if cacheable && s.cacheGet(ctx, version, key, &categories) {
		return categories, nil
	}

	categories, err := s.catalogRepo.ListCategories(ctx, true)
	if err != nil {
		return nil, s.internal("list categories", err)
	}
	if cacheable {
		s.cacheSet(ctx, version, key, categories)
	}
	return categories, nil
}

func (s *CatalogService) AdminListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	products, err := s.catalogRepo.ListProducts(ctx, filter)
	if err != nil {
		return nil, s.internal("list products", err)
	}
	return products, nil
}

func (s *CatalogService) validateProduct(ctx context.Context, tx repository.ICatalogRepository, in ProductInput) error {
	if strings.TrimSpace(in.Name) == "" || in.Price == nil || in.Stock == nil || in.CategoryID == nil {
		return apperrors.InvalidArgument("Name, price, stock, and category are required")
	}
	if in.Price.IsNegative() {
		return apperrors.InvalidArgument("Price must not be negative")
	}
	if *in.Stock < 0 {
		return apperrors.InvalidArgument("Stock must not be negative")
	}
	if _, err := tx.FindCategory(ctx, *in.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.InvalidArgument("Category not found")
		}
		return err
	}
	return nil
}

func applyProductInput(p *models.Product, in ProductInput) {
	p.Name = strings.TrimSpace(in.Name)
	p.Description = in.Description
	p.CategoryID = in.CategoryID
	p.Price = *in.Price
	p.Stock = *in.Stock
	p.Size = in.Size
	p.Color = in.Color
	p.ImageURL = in.ImageURL
}

func (s *CatalogService) CreateProduct(ctx context.Context, in ProductInput) (*models.Product, error) {
	var created models.Product
	err := s.catalogRepo.Transaction(ctx, func(tx repository.ICatalogRepository) error {
		if err := s.validateProduct(ctx, tx, in); err != nil {
			return err
		}
		applyProductInput(&created, in)
		return tx.CreateProduct(ctx, &created)
	})
	if err != nil {
		return nil, s.classify("create product", err)
	}
	s.invalidate(ctx)
	return s.GetProduct(ctx, created.ID)
}

// UpdateProduct replaces every field of the product, including an absolute
// stock value.
func (s *CatalogService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*models.Product, error) {
	err := s.catalogRepo.Transaction(ctx, func(tx repository.ICatalogRepository) error {
		product, err := tx.FindProduct(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Product not found")
		}
		if err != nil {
			return err
		}
		if err := s.validateProduct(ctx, tx, in); err != nil {
			return err
		}
		applyProductInput(product, in)
		product.Category = nil
		return tx.SaveProduct(ctx, product)
	})
	if err != nil {
		return nil, s.classify("update product", err)
	}
	s.invalidate(ctx)
	return s.GetProduct(ctx, id)
}

// DeleteProduct removes a product unless an order line references it.
func (s *CatalogService) DeleteProduct(ctx context.Context, id uint) error {
	err := s.catalogRepo.Transaction(ctx, func(tx repository.ICatalogRepository) error {
		if _, err := tx.FindProduct(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Product not found")
			}
			return err
		}
		ordered, err := tx.ProductHasOrders(ctx, id)
		if err != nil {
			return err
		}
		if ordered {
			return apperrors.Conflict(productOrderedMessage)
		}
		// An order line committed after the check above trips the foreign key.
		if err := tx.DeleteProduct(ctx, id); errors.Is(err, gorm.ErrForeignKeyViolated) {
			return apperrors.Conflict(productOrderedMessage)
		} else if err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return s.classify("delete product", err)
	}
	s.invalidate(ctx)
	return nil
}

func (s *CatalogService) AdminListCategories(ctx context.Context) ([]repository.CategoryWithCount, error) {
	categories, err := s.catalogRepo.ListCategories(ctx, false)
	if err != nil {
		return nil, s.internal("list categories", err)
	}
	return categories, nil
}

func (s *CatalogService) GetCategory(ctx context.Context, id uint) (*models.Category, error) {
	category, err := s.catalogRepo.FindCategory(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Category not found")
	}
	if err != nil {
		return nil, s.internal("get category", err)
	}
	return category, nil
}

func (s *CatalogService) CreateCategory(ctx context.Context, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.InvalidArgument("Category name is required")
	}

	category := &models.Category{Name: name, Description: in.Description}
	err := s.catalogRepo.Transaction(ctx, func(tx repository.ICatalogRepository) error {
		taken, err := tx.CategoryNameTaken(ctx, name, 0)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.Conflict("Category name already in use")
		}
		return tx.CreateCategory(ctx, category)
	})
	if err != nil {
		return nil, s.classify("create category", err)
	}
	s.invalidate(ctx)
	return category, nil
}

func (s *CatalogService) UpdateCategory(ctx context.Context, id uint, in CategoryInput) (*models.Category, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, apperrors.InvalidArgument("Category name is required")
	}

	var category *models.Category
	err := s.catalogRepo.Transaction(ctx, func(tx repository.ICatalogRepository) error {
		var err error
		category, err = tx.FindCategory(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Category not found")
		}
		if err != nil {
			return err
		}
		taken, err := tx.CategoryNameTaken(ctx, name, id)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.Conflict("Category name already in use")
		}
		category.Name = name
		category.Description = in.Description
		return tx.SaveCategory(ctx, category)
	})
	if err != nil {
		return nil, s.classify("update category", err)
	}
	s.invalidate(ctx)
	return category, nil
}

// DeleteCategory removes a category; its products become uncategorized.
func (s *CatalogService) DeleteCategory(ctx context.Context, id uint) error {
	err := s.catalogRepo.Transaction(ctx, func(tx repository.ICatalogRepository) error {
		if _, err := tx.FindCategory(ctx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("Category not found")
			}
			return err
		}
		return tx.DeleteCategory(ctx, id)
	})
	if err != nil {
		return s.classify("delete category", err)
	}
	s.invalidate(ctx)
	return nil
}

// cacheVersion resolves the catalog cache version a listing is read and
// stored under. An unreachable cache disables caching for the request.
func (s *CatalogService) cacheVersion(ctx context.Context) (string, bool) {
	version, err := s.catalogCache.Version(ctx)
	if err != nil {
		s.log.Warn("catalog cache unavailable, falling back to database", zap.Error(err))
		return "", false
	}
	return version, true
}

func (s *CatalogService) cacheGet(ctx context.Context, version, key string, dest interface{}) bool {
	err := s.catalogCache.Get(ctx, version, key, dest)
	if err != nil && !errors.Is(err, cache.ErrMiss) {
		s.log.Warn("catalog cache read failed, falling back to database", zap.Error(err))
	}
	return err == nil
}

func (s *CatalogService) cacheSet(ctx context.Context, version, key string, value interface{}) {
	if err := s.catalogCache.Set(ctx, version, key, value); err != nil {
		s.log.Warn("catalog cache write failed", zap.Error(err))
	}
}

func (s *CatalogService) invalidate(ctx context.Context) {
	if err := s.catalogCache.Invalidate(ctx); err != nil {
		s.log.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
}

func (s *CatalogService) classify(op string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.Conflict("Duplicate value")
	}
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return apperrors.Conflict("Record is still referenced")
	}
	appErr := apperrors.Classify(err)
	if appErr.Code == apperrors.CodeInternal {
		s.log.Error(op+" failed", zap.Error(err))
	}
	return appErr
}

func (s *CatalogService) internal(op string, err error) error {
	s.log.Error(op+" failed", zap.Error(err))
	return apperrors.Internal(fmt.Errorf("%s: %w", op, err))
}
