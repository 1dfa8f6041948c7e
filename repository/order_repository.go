package repository

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zylpheon/TheZylpheonAdmin/models"
)

// ErrStockConflict is returned by DecrementStock when the product no longer
// has enough stock for the requested quantity.
var ErrStockConflict = errors.New("insufficient stock for conditional decrement")

// CheckoutLine is a cart line joined with the current price and stock of its
// product, read under row lock.
type CheckoutLine struct {
	CartItemID  uint
	ProductID   uint
	ProductName string
	Size        string
	Quantity    int
	Price       decimal.Decimal
	Stock       int
}

// OrderSummary is an order row as shown in listings.
type OrderSummary struct {
	ID              uint               `json:"id"`
	UserID          *uint              `json:"user_id"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	ShippingAddress string             `json:"shipping_address"`
	Status          models.OrderStatus `json:"status"`
	OrderDate       time.Time          `json:"order_date"`
	ItemCount       int64              `json:"item_count"`
	CustomerName    *string            `json:"customer_name,omitempty"`
	CustomerEmail   *string            `json:"customer_email,omitempty"`
}

// OrderFilter narrows admin order listings.
type OrderFilter struct {
	Status models.OrderStatus
	Search string
	Page   Page
}

// IOrderRepository defines the interface for order data operations.
type IOrderRepository interface {
	// Transaction runs fn with a repository bound to a single database
	// transaction. Any error returned by fn rolls everything back.
	Transaction(ctx context.Context, fn func(tx IOrderRepository) error) error

	LockCartLines(ctx context.Context, userID uint) ([]CheckoutLine, error)
	DecrementStock(ctx context.Context, productID uint, quantity int) error
	CreateOrder(ctx context.Context, order *models.Order) error
	ClearCart(ctx context.Context, userID uint) error

	FindOrderByID(ctx context.Context, id uint) (*models.Order, error)
	FindOrderForUser(ctx context.Context, id, userID uint) (*models.Order, error)
	LockOrder(ctx context.Context, id uint) (*models.Order, error)
	UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) error
	ListOrdersByUser(ctx context.Context, userID uint) ([]OrderSummary, error)
	ListOrders(ctx context.Context, filter OrderFilter) ([]OrderSummary, error)
}

// OrderRepository implements IOrderRepository for GORM.
type OrderRepository struct {
	DB *gorm.DB
}

// NewOrderRepository creates a new OrderRepository instance.
func NewOrderRepository(db *gorm.DB) IOrderRepository {
	return &OrderRepository{DB: db}
}

func (r *OrderRepository) Transaction(ctx context.Context, fn func(tx IOrderRepository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&OrderRepository{DB: tx})
	})
}

// LockCartLines reads the user's cart joined with product price and stock and
// locks the touched rows until the surrounding transaction ends. Rows are
// ordered by product id so concurrent checkouts acquire locks in the same
// order.
func (r *OrderRepository) LockCartLines(ctx context.Context, userID uint) ([]CheckoutLine, error) {
	var lines []CheckoutLine
	err := r.DB.WithContext(ctx).
		Table("cart").
		Select("cart.id AS cart_item_id, cart.product_id, products.name AS product_name, cart.size, cart.quantity, products.price, products.stock").
		Joins("JOIN products ON products.id = cart.product_id").
		Where("cart.user_id = ?", userID).
		Order("products.id, cart.id").
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Find(&lines).Error
	return lines, err
}

// DecrementStock subtracts quantity from the product's stock only if enough
// stock remains, so stock can never go negative.
func (r *OrderRepository) DecrementStock(ctx context.Context, productID uint, quantity int) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", productID, quantity).
		UpdateColumn("stock", gorm.Expr("stock - ?", quantity))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStockConflict
	}
	return nil
}

// CreateOrder inserts the order together with its items.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.DB.WithContext(ctx).Omit("User").Create(order).Error
}

func (r *OrderRepository) ClearCart(ctx context.Context, userID uint) error {
	return r.DB.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
}

// FindOrderByID loads an order with its items, their products and the
// owning user.
func (r *OrderRepository) FindOrderByID(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items.Product").
		Preload("User").
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) FindOrderForUser(ctx context.Context, id, userID uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Preload("Items.Product").
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) LockOrder(ctx context.Context, id uint) (*models.Order, error) {
	var order models.Order
	err := r.DB.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id uint, status models.OrderStatus) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *OrderRepository) summaryQuery(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Table("orders").
		Select("orders.id, orders.user_id, orders.total_amount, orders.shipping_address, orders.status, orders.order_date, " +
			"users.username AS customer_name, users.email AS customer_email, COUNT(order_items.id) AS item_count").
		Joins("LEFT JOIN users ON users.id = orders.user_id").
		Joins("LEFT JOIN order_items ON order_items.order_id = orders.id").
		Group("orders.id, users.username, users.email").
		Order("orders.order_date DESC, orders.id DESC")
}

func (r *OrderRepository) ListOrdersByUser(ctx context.Context, userID uint) ([]OrderSummary, error) {
	var orders []OrderSummary
	err := r.summaryQuery(ctx).Where("orders.user_id = ?", userID).Scan(&orders).Error
	return orders, err
}

func (r *OrderRepository) ListOrders(ctx context.Context, filter OrderFilter) ([]OrderSummary, error) {
	q := r.summaryQuery(ctx)
	if filter.Status != "" {
		q = q.Where("orders.status = ?", filter.Status)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		if id, err := strconv.ParseUint(filter.Search, 10, 64); err == nil {
			q = q.Where("(orders.id = ? OR users.username LIKE ? OR users.email LIKE ?)", id, like, like)
		} else {
			q = q.Where("(users.username LIKE ? OR users.email LIKE ?)", like, like)
		}
	}

	var orders []OrderSummary
	err := filter.Page.apply(q).Scan(&orders).Error
	return orders, err
}
