//go:build integration

package repository_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	gormpostgres "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/zylpheon/TheZylpheonAdmin/apperrors"
	"github.com/zylpheon/TheZylpheonAdmin/cache"
	"github.com/zylpheon/TheZylpheonAdmin/models"
	"github.com/zylpheon/TheZylpheonAdmin/repository"
	"github.com/zylpheon/TheZylpheonAdmin/services"
)

// setupTestDB starts a PostgreSQL container and returns a migrated database.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:alpine",
		postgres.WithDatabase("storefront"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("Failed to terminate container: %v", err)
		}
	})

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(gormpostgres.Open(connStr), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)
	require.NoError(t, repository.Migrate(db))
	return db
}

type fixture struct {
	db       *gorm.DB
	customer []models.User
	product  models.Product
}

func seed(t *testing.T, db *gorm.DB, customers, stock int) fixture {
	t.Helper()
	f := fixture{db: db}

	category := models.Category{Name: "Kaos"}
	require.NoError(t, db.Create(&category).Error)

	f.product = models.Product{Name: "Kaos Polos", CategoryID: &category.ID, Price: decimal.NewFromInt(10000), Stock: stock}
	require.NoError(t, db.Create(&f.product).Error)

	for i := 0; i < customers; i++ {
		user := models.User{
			Username: fmt.Sprintf("customer%d", i),
			Email:    fmt.Sprintf("customer%d@example.com", i),
			Password: "x",
			Role:     models.RoleCustomer,
		}
		require.NoError(t, db.Create(&user).Error)
		f.customer = append(f.customer, user)
	}
	return f
}

func (f fixture) addToCart(t *testing.T, user models.User, quantity int, size string) {
	t.Helper()
	owner := user.ID
	require.NoError(t, f.db.Omit("User", "Product").Create(&models.CartItem{
		UserID: &owner, ProductID: f.product.ID, Size: size, Quantity: quantity,
	}).Error)
}

func (f fixture) stock(t *testing.T) int {
	t.Helper()
	var product models.Product
	require.NoError(t, f.db.First(&product, f.product.ID).Error)
	return product.Stock
}

func newOrderService(db *gorm.DB) services.IOrderService {
	return services.NewOrderService(repository.NewOrderRepository(db), services.NoopKafkaService{}, cache.NoopCache{},
		services.OrderServiceConfig{Topic: "order-events", CheckoutTimeout: 10 * time.Second}, zap.NewNop())
}

func TestIntegration_Checkout(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db, 1, 5)
	f.addToCart(t, f.customer[0], 3, "M")

	orderSvc := newOrderService(db)
	order, err := orderSvc.Checkout(context.Background(), f.customer[0].ID, "Jl. Merdeka 1")
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(30000).Equal(order.TotalAmount))
	assert.Equal(t, 2, f.stock(t))

	var cartLines int64
	require.NoError(t, db.Model(&models.CartItem{}).Where("user_id = ?", f.customer[0].ID).Count(&cartLines).Error)
	assert.Zero(t, cartLines)

	// A later price change leaves the placed order untouched.
	require.NoError(t, db.Model(&models.Product{}).Where("id = ?", f.product.ID).Update("price", decimal.NewFromInt(99999)).Error)
	stored, err := orderSvc.GetMyOrder(context.Background(), f.customer[0].ID, order.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.True(t, decimal.NewFromInt(10000).Equal(stored.Items[0].Price))
	assert.True(t, decimal.NewFromInt(30000).Equal(stored.TotalAmount))

	summaries, err := orderSvc.ListMyOrders(context.Background(), f.customer[0].ID)
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	assert.Equal(t, int64(1), summaries[0].ItemCount)
}

func TestIntegration_Checkout_InsufficientStockRollsBack(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db, 1, 2)
	f.addToCart(t, f.customer[0], 3, "")

	_, err := newOrderService(db).Checkout(context.Background(), f.customer[0].ID, "Jl. Merdeka 1")
	assert.True(t, apperrors.Is(err, apperrors.CodeInsufficientStock))

	assert.Equal(t, 2, f.stock(t))
	var orders int64
	require.NoError(t, db.Model(&models.Order{}).Count(&orders).Error)
	assert.Zero(t, orders)
}

func TestIntegration_ConcurrentCheckoutsNeverOversell(t *testing.T) {
	const customers, stock = 10, 5
	db := setupTestDB(t)
	f := seed(t, db, customers, stock)
	for _, user := range f.customer {
		f.addToCart(t, user, 1, "")
	}

	orderSvc := newOrderService(db)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for _, user := range f.customer {
		wg.Add(1)
		go func(userID uint) {
			defer wg.Done()
			_, err := orderSvc.Checkout(context.Background(), userID, "Jl. Merdeka 1")
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			if !apperrors.Is(err, apperrors.CodeInsufficientStock) {
				t.Errorf("unexpected error: %v", err)
			}
		}(user.ID)
	}
	wg.Wait()

	assert.Equal(t, stock, succeeded)
	assert.Equal(t, 0, f.stock(t))
}

func TestIntegration_DecrementStockIsConditional(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db, 0, 2)
	repo := repository.NewOrderRepository(db)

	err := repo.DecrementStock(context.Background(), f.product.ID, 3)
	assert.True(t, errors.Is(err, repository.ErrStockConflict))
	assert.Equal(t, 2, f.stock(t))

	require.NoError(t, repo.DecrementStock(context.Background(), f.product.ID, 2))
	assert.Equal(t, 0, f.stock(t))
}

func TestIntegration_DeleteUserKeepsOrders(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db, 1, 5)
	f.addToCart(t, f.customer[0], 1, "")

	order, err := newOrderService(db).Checkout(context.Background(), f.customer[0].ID, "Jl. Merdeka 1")
	require.NoError(t, err)

	userSvc := services.NewUserService(repository.NewUserRepository(db), zap.NewNop())
	require.NoError(t, userSvc.DeleteUser(context.Background(), f.customer[0].ID))

	var stored models.Order
	require.NoError(t, db.First(&stored, order.ID).Error)
	assert.Nil(t, stored.UserID)

	stats, err := userSvc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalOrders)
	assert.Equal(t, int64(0), stats.TotalUsers)
}

func TestIntegration_CatalogDeletes(t *testing.T) {
	db := setupTestDB(t)
	f := seed(t, db, 1, 5)
	catalogSvc := services.NewCatalogService(repository.NewCatalogRepository(db), cache.NoopCache{}, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, catalogSvc.DeleteCategory(ctx, *f.product.CategoryID))
	product, err := catalogSvc.GetProduct(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Nil(t, product.CategoryID)

	f.addToCart(t, f.customer[0], 1, "")
	_, err = newOrderService(db).Checkout(ctx, f.customer[0].ID, "Jl. Merdeka 1")
	require.NoError(t, err)

	err = catalogSvc.DeleteProduct(ctx, f.product.ID)
	assert.True(t, apperrors.Is(err, apperrors.CodeConflict))
}
