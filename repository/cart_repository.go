package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zylpheon/TheZylpheonAdmin/models"
)

// ICartRepository defines the interface for cart data operations.
type ICartRepository interface {
	Transaction(ctx context.Context, fn func(tx ICartRepository) error) error

	// LockProduct loads a product and locks its row for the rest of the
	// transaction, serializing cart mutations against that product.
	LockProduct(ctx context.Context, productID uint) (*models.Product, error)
	FindLine(ctx context.Context, userID, productID uint, size string) (*models.CartItem, error)
	FindLineByID(ctx context.Context, userID, lineID uint) (*models.CartItem, error)
	CreateLine(ctx context.Context, line *models.CartItem) error
	SetQuantity(ctx context.Context, lineID uint, quantity int) error
	DeleteLine(ctx context.Context, userID, lineID uint) (bool, error)
	ListLines(ctx context.Context, userID uint) ([]models.CartItem, error)
}

// CartRepository implements ICartRepository for GORM.
type CartRepository struct {
	DB *gorm.DB
}

// NewCartRepository creates a new CartRepository instance.
func NewCartRepository(db *gorm.DB) ICartRepository {
	return &CartRepository{DB: db}
}

func (r *CartRepository) Transaction(ctx context.Context, fn func(tx ICartRepository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&CartRepository{DB: tx})
	})
}

func (r *CartRepository) LockProduct(ctx context.Context, productID uint) (*models.Product, error) {
	var product models.Product
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&product, productID).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *CartRepository) FindLine(ctx context.Context, userID, productID uint, size string) (*models.CartItem, error) {
	var line models.CartItem
	err := r.DB.WithContext(ctx).
		Where("user_id = ? AND product_id = ? AND size = ?", userID, productID, size).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

// FindLineByID loads a line owned by userID together with its product.
func (r *CartRepository) FindLineByID(ctx context.Context, userID, lineID uint) (*models.CartItem, error) {
	var line models.CartItem
	err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("id = ? AND user_id = ?", lineID, userID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *CartRepository) CreateLine(ctx context.Context, line *models.CartItem) error {
	return r.DB.WithContext(ctx).Omit(clause.Associations).Create(line).Error
}

func (r *CartRepository) SetQuantity(ctx context.Context, lineID uint, quantity int) error {
	return r.DB.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("id = ?", lineID).
		Update("quantity", quantity).Error
}

// DeleteLine removes a line owned by userID and reports whether a row was
// deleted.
func (r *CartRepository) DeleteLine(ctx context.Context, userID, lineID uint) (bool, error) {
	res := r.DB.WithContext(ctx).
		Where("id = ? AND user_id = ?", lineID, userID).
		Delete(&models.CartItem{})
	return res.RowsAffected > 0, res.Error
}

// ListLines returns the user's cart, newest first, with products loaded.
func (r *CartRepository) ListLines(ctx context.Context, userID uint) ([]models.CartItem, error) {
	var lines []models.CartItem
	err := r.DB.WithContext(ctx).
		Preload("Product").
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Find(&lines).Error
	return lines, err
}
