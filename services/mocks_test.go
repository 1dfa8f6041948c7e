package services

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/zylpheon/TheZylpheonAdmin/cache"
	"github.com/zylpheon/TheZylpheonAdmin/models"
	"github.com/zylpheon/TheZylpheonAdmin/repository"
)

// MockKafkaService is a mock implementation of IKafkaService.
type MockKafkaService struct {
	mock.Mock
}

func (m *MockKafkaService) PushMessage(topic string, key, message []byte) error {
	args := m.Called(topic, key, message)
	return args.Error(0)
}

func (m *MockKafkaService) Close() error {
	args := m.Called()
	return args.Error(0)
}

// countingCache records invalidations and never holds data.
type countingCache struct {
	mu          sync.Mutex
	invalidated int
}

func (c *countingCache) Version(context.Context) (string, error)                { return "0", nil }
func (c *countingCache) Get(context.Context, string, string, interface{}) error { return cache.ErrMiss }
func (c *countingCache) Set(context.Context, string, string, interface{}) error { return nil }

func (c *countingCache) Invalidate(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidated++
	return nil
}

func (c *countingCache) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.invalidated
}

// MockUserRepository is a mock implementation of repository.IUserRepository.
// Transaction runs fn against the mock itself.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Transaction(ctx context.Context, fn func(tx repository.IUserRepository) error) error {
	return fn(m)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	args := m.Called(ctx, email, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) LockAdmins(ctx context.Context) ([]uint, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uint), args.Error(1)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, id uint, role models.Role) error {
	args := m.Called(ctx, id, role)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, filter repository.UserFilter) ([]repository.UserSummary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.UserSummary), args.Error(1)
}

func (m *MockUserRepository) FindSummary(ctx context.Context, id uint) (*repository.UserSummary, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.UserSummary), args.Error(1)
}

func (m *MockUserRepository) Stats(ctx context.Context) (*repository.Stats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Stats), args.Error(1)
}

// MockCatalogRepository is a mock implementation of
// repository.ICatalogRepository. Transaction runs fn against the mock itself.
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) Transaction(ctx context.Context, fn func(tx repository.ICatalogRepository) error) error {
	return fn(m)
}

func (m *MockCatalogRepository) ListProducts(ctx context.Context, filter repository.ProductFilter) ([]models.Product, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Product), args.Error(1)
}

func (m *MockCatalogRepository) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockCatalogRepository) CreateProduct(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockCatalogRepository) SaveProduct(ctx context.Context, product *models.Product) error {
	args := m.Called(ctx, product)
	return args.Error(0)
}

func (m *MockCatalogRepository) ProductHasOrders(ctx context.Context, id uint) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalogRepository) DeleteProduct(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalogRepository) ListCategories(ctx context.Context, inStockOnly bool) ([]repository.CategoryWithCount, error) {
	args := m.Called(ctx, inStockOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.CategoryWithCount), args.Error(1)
}

func (m *MockCatalogRepository) FindCategory(ctx context.Context, id uint) (*models.Category, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Category), args.Error(1)
}

func (m *MockCatalogRepository) CategoryNameTaken(ctx context.Context, name string, exceptID uint) (bool, error) {
	args := m.Called(ctx, name, exceptID)
	return args.Bool(0), args.Error(1)
}

func (m *MockCatalogRepository) CreateCategory(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCatalogRepository) SaveCategory(ctx context.Context, category *models.Category) error {
	args := m.Called(ctx, category)
	return args.Error(0)
}

func (m *MockCatalogRepository) DeleteCategory(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// mapCache keeps JSON copies of cached values in memory, scoped by a version
// counter the way RedisCache scopes its keys.
type mapCache struct {
	entries     map[string][]byte
	version     int
	invalidated int
}

func newMapCache() *mapCache {
	return &mapCache{entries: map[string][]byte{}}
}

func (c *mapCache) Version(context.Context) (string, error) {
	return strconv.Itoa(c.version), nil
}

func (c *mapCache) Get(_ context.Context, version, key string, dest interface{}) error {
	raw, ok := c.entries[version+":"+key]
	if !ok {
		return cache.ErrMiss
	}
	return json.Unmarshal(raw, dest)
}

func (c *mapCache) Set(_ context.Context, version, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.entries[version+":"+key] = raw
	return nil
}

func (c *mapCache) Invalidate(context.Context) error {
	c.version++
	c.invalidated++
	return nil
}
