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
	"github.com/zylpheon/TheZylpheonAdmin/models"
	"github.com/zylpheon/TheZylpheonAdmin/repository"
)

// CartLineView is a cart line with product data and its subtotal.
type CartLineView struct {
	ID        uint            `json:"id"`
	ProductID uint            `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	ImageURL  *string         `json:"image_url"`
	Stock     int             `json:"stock"`
	Size      string          `json:"size"`
	Quantity  int             `json:"quantity"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartView is a customer's whole cart.
type CartView struct {
	Items []CartLineView  `json:"items"`
	Total decimal.Decimal `json:"total"`
	Count int             `json:"count"`
}

// ICartService defines the interface for cart business logic.
type ICartService interface {
	AddItem(ctx context.Context, userID, productID uint, quantity int, size string) error
	UpdateQuantity(ctx context.Context, userID, lineID uint, quantity int) error
	RemoveItem(ctx context.Context, userID, lineID uint) error
	View(ctx context.Context, userID uint) (*CartView, error)
}

// CartService implements ICartService.
type CartService struct {
	cartRepo repository.ICartRepository
	log      *zap.Logger
}

// NewCartService creates a new CartService instance.
func NewCartService(repo repository.ICartRepository, log *zap.Logger) ICartService {
	return &CartService{cartRepo: repo, log: log}
}

// AddItem inserts a line or merges quantity into the existing line for the
// same product and size. The product row stays locked while the merged
// quantity is checked against stock and written.
func (s *CartService) AddItem(ctx context.Context, userID, productID uint, quantity int, size string) error {
	if productID == 0 {
		return apperrors.InvalidArgument("Product ID required")
	}
	if quantity < 1 {
		return apperrors.InvalidArgument("Quantity must be at least 1")
	}
	size = strings.TrimSpace(size)

	err := s.cartRepo.Transaction(ctx, func(tx repository.ICartRepository) error {
		product, err := tx.LockProduct(ctx, productID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Product not found")
		}
		if err != nil {
			return fmt.Errorf("failed to load product %d: %w", productID, err)
		}

		existing, err := tx.FindLine(ctx, userID, productID, size)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to load cart line: %w", err)
		}

		merged := quantity
		if existing != nil {
			merged += existing.Quantity
		}
		if merged > product.Stock {
			return apperrors.InsufficientStockf("Insufficient stock")
		}

		if existing != nil {
			return tx.SetQuantity(ctx, existing.ID, merged)
		}
		owner := userID
		return tx.CreateLine(ctx, &models.CartItem{
			UserID:    &owner,
			ProductID: productID,
			Size:      size,
			Quantity:  quantity,
		})
	})
	return s.classify("add to cart", err)
}

func (s *CartService) UpdateQuantity(ctx context.Context, userID, lineID uint, quantity int) error {
	if quantity <= 0 {
		return apperrors.InvalidArgument("Quantity must be greater than 0")
	}

	err := s.cartRepo.Transaction(ctx, func(tx repository.ICartRepository) error {
		line, err := tx.FindLineByID(ctx, userID, lineID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Cart item not found")
		}
		if err != nil {
			return fmt.Errorf("failed to load cart line %d: %w", lineID, err)
		}

		product, err := tx.LockProduct(ctx, line.ProductID)
		if err != nil {
			return fmt.Errorf("failed to load product %d: %w", line.ProductID, err)
		}
		if quantity > product.Stock {
			return apperrors.InsufficientStockf("Insufficient stock")
		}
		return tx.SetQuantity(ctx, line.ID, quantity)
	})
	return s.classify("update cart", err)
}

func (s *CartService) RemoveItem(ctx context.Context, userID, lineID uint) error {
	deleted, err := s.cartRepo.DeleteLine(ctx, userID, lineID)
	if err != nil {
		return s.classify("remove from cart", err)
	}
	if !deleted {
		return apperrors.NotFound("Cart item not found")
	}
	return nil
}

// View returns the cart with per-line subtotals and the cart total.
func (s *CartService) View(ctx context.Context, userID uint) (*CartView, error) {
	lines, err := s.cartRepo.ListLines(ctx, userID)
	if err != nil {
		return nil, s.classify("get cart", err)
	}

	view := &CartView{Items: make([]CartLineView, 0, len(lines)), Total: decimal.Zero}
	for _, line := range lines {
		if line.Product == nil {
			continue
		}
		subtotal := line.Product.Price.Mul(decimal.NewFromInt(int64(line.Quantity)))
		view.Items = append(view.Items, CartLineView{
			ID:        line.ID,
			ProductID: line.ProductID,
			Name:      line.Product.Name,
			Price:     line.Product.Price,
			ImageURL:  line.Product.ImageURL,
			Stock:     line.Product.Stock,
			Size:      line.Size,
			Quantity:  line.Quantity,
			Subtotal:  subtotal,
		})
		view.Total = view.Total.Add(subtotal)
	}
	view.Count = len(view.Items)
	return view, nil
}

func (s *CartService) classify(op string, err error) error {
	if err == nil {
		return nil
	}
	appErr := apperrors.Classify(err)
	if appErr.Code == apperrors.CodeInternal {
		s.log.Error(op+" failed", zap.Error(err))
	}
	return appErr
}
