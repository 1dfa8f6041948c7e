package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zylpheon/TheZylpheonAdmin/models"
)

// LowStockThreshold is the upper bound of the admin "low stock" filter.
const LowStockThreshold = 10

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID  *uint
	Search      string
	InStockOnly bool
	LowStock    bool
	Page        Page
}

// CategoryWithCount is a category with the number of products in it.
type CategoryWithCount struct {
	models.Category
	ProductCount int64 `json:"product_count"`
}

// ICatalogRepository defines the interface for product and category data
// operations.
type ICatalogRepository interface {
	Transaction(ctx context.Context, fn func(tx ICatalogRepository) error) error

	ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	FindProduct(ctx context.Context, id uint) (*models.Product, error)
	CreateProduct(ctx context.Context, product *models.Product) error
	SaveProduct(ctx context.Context, product *models.Product) error
	ProductHasOrders(ctx context.Context, id uint) (bool, error)
	DeleteProduct(ctx context.Context, id uint) error

	ListCategories(ctx context.Context, inStockOnly bool) ([]CategoryWithCount, error)
	FindCategory(ctx context.Context, id uint) (*models.Category, error)
	CategoryNameTaken(ctx context.Context, name string, exceptID uint) (bool, error)
	CreateCategory(ctx context.Context, category *models.Category) error
	SaveCategory(ctx context.Context, category *models.Category) error
	DeleteCategory(ctx context.Context, id uint) error
}

// CatalogRepository implements ICatalogRepository for GORM.
type CatalogRepository struct {
	DB *gorm.DB
}

// NewCatalogRepository creates a new CatalogRepository instance.
func NewCatalogRepository(db *gorm.DB) ICatalogRepository {
	return &CatalogRepository{DB: db}
}

func (r *CatalogRepository) Transaction(ctx context.Context, fn func(tx ICatalogRepository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CatalogRepository{DB: tx})
	})
}

func (r *CatalogRepository) ListProducts(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	q := r.DB.WithContext(ctx).Preload("Category").Model(&models.Product{})
	if filter.InStockOnly {
		q = q.Where("stock > 0")
	}
	if filter.LowStock {
		q = q.Where("stock > 0 AND stock <= ?", LowStockThreshold)
	}
	if filter.CategoryID != nil {
		q = q.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("(name LIKE ? OR description LIKE ?)", like, like)
	}

	var products []models.Product
	err := filter.Page.apply(q.Order("created_at DESC, id DESC")).Find(&products).Error
	return products, err
}

func (r *CatalogRepository) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Preload("Category").First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *CatalogRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(product).Error
}

// SaveProduct writes every column, including an absolute stock value.
func (r *CatalogRepository) SaveProduct(ctx context.Context, product *models.Product) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Save(product).Error
}

func (r *CatalogRepository) ProductHasOrders(ctx context.Context, id uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&models.OrderItem{}).Where("product_id = ?", id).Count(&count).Error
	return count > 0, err
}

// DeleteProduct removes the product and any cart lines pointing at it.
func (r *CatalogRepository) DeleteProduct(ctx context.Context, id uint) error {
	db := r.DB.WithContext(ctx)
	if err := db.Where("product_id = ?", id).Delete(&models.CartItem{}).Error; err != nil {
		return err
	}
	return db.Delete(&models.Product{}, id).Error
}

func (r *CatalogRepository) ListCategories(ctx context.Context, inStockOnly bool) ([]CategoryWithCount, error) {
	join := "LEFT JOIN products ON products.category_id = categories.id"
	order := "categories.created_at DESC"
	if inStockOnly {
		join += " AND products.stock > 0"
		order = "categories.name"
	}

	var categories []CategoryWithCount
	err := r.DB.WithContext(ctx).
		Table("categories").
		Select("categories.*, COUNT(products.id) AS product_count").
		Joins(join).
		Group("categories.id").
		Order(order).
		Scan(&categories).Error
	return categories, err
}

func (r *CatalogRepository) FindCategory(ctx context.Context, id uint) (*models.Category, error) {
	var category models.Category
	if err := r.DB.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *CatalogRepository) CategoryNameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&models.Category{}).
		Where("name = ? AND id <> ?", name, exceptID).
		Count(&count).Error
	return count > 0, err
}

func (r *CatalogRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	return r.DB.WithContext(ctx).Create(category).Error
}

func (r *CatalogRepository) SaveCategory(ctx context.Context, category *models.Category) error {
	return r.DB.WithContext(ctx).Save(category).Error
}

// DeleteCategory detaches the category's products, then removes it.
func (r *CatalogRepository) DeleteCategory(ctx context.Context, id uint) error {
	db := r.DB.WithContext(ctx)
	if err := db.Model(&models.Product{}).Where("category_id = ?", id).Update("category_id", nil).Error; err != nil {
		return err
	}
	return db.Delete(&models.Category{}, id).Error
}
