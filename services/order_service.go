package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/zylpheon/TheZylpheonAdmin/apperrors"
	"github.com/zylpheon/TheZylpheonAdmin/cache"
	"github.com/zylpheon/TheZylpheonAdmin/models"
	"github.com/zylpheon/TheZylpheonAdmin/repository"
)

// IOrderService defines the interface for order-related business logic.
type IOrderService interface {
	// Checkout converts the customer's whole cart into one order.
	Checkout(ctx context.Context, userID uint, shippingAddress string) (*models.Order, error)
	ListMyOrders(ctx context.Context, userID uint) ([]repository.OrderSummary, error)
	GetMyOrder(ctx context.Context, userID, orderID uint) (*models.Order, error)

	ListOrders(ctx context.Context, filter repository.OrderFilter) ([]repository.OrderSummary, error)
	GetOrder(ctx context.Context, orderID uint) (*OrderDetail, error)
	UpdateStatus(ctx context.Context, orderID uint, status string) (*OrderDetail, error)
}

// OrderServiceConfig tunes OrderService.
type OrderServiceConfig struct {
	Topic                   string
	StrictStatusTransitions bool
	CheckoutTimeout         time.Duration
}

// OrderDetail is an order with its owner's contact fields, as shown to
// administrators.
type OrderDetail struct {
	*models.Order
	CustomerName  *string `json:"customer_name"`
	CustomerEmail *string `json:"customer_email"`
	UserName      *string `json:"user_name"`
	Phone         *string `json:"phone"`
}

// OrderService implements IOrderService.
type OrderService struct {
	orderRepo    repository.IOrderRepository
	kafkaService IKafkaService
	catalogCache cache.CatalogCache
	cfg          OrderServiceConfig
	log          *zap.Logger
}

// NewOrderService creates a new OrderService instance.
func NewOrderService(repo repository.IOrderRepository, kafkaSvc IKafkaService, catalogCache cache.CatalogCache, cfg OrderServiceConfig, log *zap.Logger) IOrderService {
	if cfg.CheckoutTimeout <= 0 {
		cfg.CheckoutTimeout = 10 * time.Second
	}
	return &OrderService{
		orderRepo:    repo,
		kafkaService: kafkaSvc,
		catalogCache: catalogCache,
		cfg:          cfg,
		log:          log,
	}
}

// Checkout runs as one transaction: lock and read the cart with current
// price and stock, validate every line, insert the order and its lines,
// decrement stock, clear the cart. Nothing persists unless all of it does.
func (s *OrderService) Checkout(ctx context.Context, userID uint, shippingAddress string) (*models.Order, error) {
	address := strings.TrimSpace(shippingAddress)
	if address == "" {
		return nil, apperrors.InvalidArgument("Shipping address required")
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.CheckoutTimeout)
	defer cancel()

	var order *models.Order
	err := s.orderRepo.Transaction(ctx, func(tx repository.IOrderRepository) error {
		lines, err := tx.LockCartLines(ctx, userID)
		if err != nil {
			return fmt.Errorf("failed to load cart: %w", err)
		}
		if len(lines) == 0 {
			return apperrors.EmptyCart()
		}

		// Every line is validated before the first write.
		ledger := newInventoryLedger(tx, lines)
		for _, line := range lines {
			if !ledger.CheckAvailability(line.ProductID, line.Quantity) {
				return apperrors.InsufficientStockf("Insufficient stock for product ID %d (%s)", line.ProductID, line.ProductName)
			}
			ledger.hold(line.ProductID, line.Quantity)
		}

		total := decimal.Zero
		items := make([]models.OrderItem, 0, len(lines))
		for _, line := range lines {
			total = total.Add(line.Price.Mul(decimal.NewFromInt(int64(line.Quantity))))
			items = append(items, models.OrderItem{
				ProductID: line.ProductID,
				Quantity:  line.Quantity,
				Price:     line.Price,
				Size:      line.Size,
			})
		}

		owner := userID
		order = &models.Order{
			UserID:          &owner,
			TotalAmount:     total,
			ShippingAddress: address,
			Status:          models.OrderStatusPending,
			OrderDate:       time.Now(),
			Items:           items,
		}
		if err := tx.CreateOrder(ctx, order); err != nil {
			return fmt.Errorf("failed to save order to database: %w", err)
		}

		for _, line := range lines {
			if err := ledger.Decrement(ctx, line.ProductID, line.Quantity); err != nil {
				return err
			}
		}

		if err := tx.ClearCart(ctx, userID); err != nil {
			return fmt.Errorf("failed to clear cart: %w", err)
		}
		return nil
	})
	if err != nil {
		appErr := apperrors.Classify(err)
		if appErr.Code == apperrors.CodeInternal {
			s.log.Error("checkout failed", zap.Uint("user_id", userID), zap.Error(err))
		}
		return nil, appErr
	}

	s.log.Info("order placed",
		zap.Uint("order_id", order.ID),
		zap.Uint("user_id", userID),
		zap.String("total_amount", order.TotalAmount.String()),
		zap.Int("lines", len(order.Items)),
	)

	// Stock changed, so cached public listings are stale.
	afterCtx, afterCancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer afterCancel()
	if err := s.catalogCache.Invalidate(afterCtx); err != nil {
		s.log.Warn("failed to invalidate catalog cache", zap.Error(err))
	}
	s.publish(EventOrderCreated, order)

	return order, nil
}

// publish sends an order event. The order is already committed, so failures
// are logged and never surface to the caller.
func (s *OrderService) publish(eventType string, order *models.Order) {
	event := newOrderEvent(eventType, order, time.Now())
	payload, err := event.encode()
	if err != nil {
		s.log.Error("failed to marshal order event", zap.Uint("order_id", order.ID), zap.Error(err))
		return
	}
	if err := s.kafkaService.PushMessage(s.cfg.Topic, event.key(), payload); err != nil {
		s.log.Warn("failed to push order event to Kafka",
			zap.String("type", eventType),
			zap.Uint("order_id", order.ID),
			zap.Error(err),
		)
	}
}

func (s *OrderService) ListMyOrders(ctx context.Context, userID uint) ([]repository.OrderSummary, error) {
	orders, err := s.orderRepo.ListOrdersByUser(ctx, userID)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list orders: %w", err))
	}
	return orders, nil
}

func (s *OrderService) GetMyOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.FindOrderForUser(ctx, orderID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load order %d: %w", orderID, err))
	}
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]repository.OrderSummary, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, apperrors.InvalidArgument("Invalid status")
	}
	orders, err := s.orderRepo.ListOrders(ctx, filter)
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to list orders: %w", err))
	}
	return orders, nil
}

func (s *OrderService) GetOrder(ctx context.Context, orderID uint) (*OrderDetail, error) {
	order, err := s.orderRepo.FindOrderByID(ctx, orderID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("Order not found")
	}
	if err != nil {
		return nil, apperrors.Internal(fmt.Errorf("failed to load order %d: %w", orderID, err))
	}
	return newOrderDetail(order), nil
}

// UpdateStatus sets an order's status. With strict transitions enabled only
// forward lifecycle moves are accepted.
func (s *OrderService) UpdateStatus(ctx context.Context, orderID uint, status string) (*OrderDetail, error) {
	next := models.OrderStatus(strings.TrimSpace(status))
	if next == "" {
		return nil, apperrors.InvalidArgument("Status required")
	}
	if !next.Valid() {
		return nil, apperrors.InvalidArgument("Invalid status")
	}

	var previous models.OrderStatus
	err := s.orderRepo.Transaction(ctx, func(tx repository.IOrderRepository) error {
		current, err := tx.LockOrder(ctx, orderID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("Order not found")
		}
		if err != nil {
			return err
		}
		previous = current.Status
		if s.cfg.StrictStatusTransitions && !current.Status.CanTransitionTo(next) {
			return apperrors.InvalidArgument(fmt.Sprintf("Cannot change order status from %s to %s", current.Status, next))
		}
		return tx.UpdateOrderStatus(ctx, orderID, next)
	})
	if err != nil {
		appErr := apperrors.Classify(err)
		if appErr.Code == apperrors.CodeInternal {
			s.log.Error("order status update failed", zap.Uint("order_id", orderID), zap.Error(err))
		}
		return nil, appErr
	}

	detail, err := s.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if previous != next {
		s.log.Info("order status changed",
			zap.Uint("order_id", orderID),
			zap.String("from", string(previous)),
			zap.String("to", string(next)),
		)
		s.publish(EventOrderStatusChanged, detail.Order)
	}
	return detail, nil
}

func newOrderDetail(order *models.Order) *OrderDetail {
	detail := &OrderDetail{Order: order}
	if order.User != nil {
		detail.CustomerName = &order.User.Username
		detail.CustomerEmail = &order.User.Email
		detail.UserName = order.User.FullName
		detail.Phone = order.User.Phone
	}
	return detail
}
