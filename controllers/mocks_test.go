package controllers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/zylpheon/TheZylpheonAdmin/models"
	"github.com/zylpheon/TheZylpheonAdmin/repository"
	"github.com/zylpheon/TheZylpheonAdmin/services"
)

// MockOrderService is a mock implementation of services.IOrderService, used
// to test the controllers without running any business logic.
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) Checkout(ctx context.Context, userID uint, shippingAddress string) (*models.Order, error) {
	args := m.Called(userID, shippingAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) ListMyOrders(ctx context.Context, userID uint) ([]repository.OrderSummary, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.OrderSummary), args.Error(1)
}

func (m *MockOrderService) GetMyOrder(ctx context.Context, userID, orderID uint) (*models.Order, error) {
	args := m.Called(userID, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderService) ListOrders(ctx context.Context, filter repository.OrderFilter) ([]repository.OrderSummary, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.OrderSummary), args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, orderID uint) (*services.OrderDetail, error) {
	args := m.Called(orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.OrderDetail), args.Error(1)
}

func (m *MockOrderService) UpdateStatus(ctx context.Context, orderID uint, status string) (*services.OrderDetail, error) {
	args := m.Called(orderID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.OrderDetail), args.Error(1)
}

// MockAuthService is a mock implementation of services.IAuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, in services.RegisterInput) (*services.AuthResult, error) {
	args := m.Called(in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*services.AuthResult, error) {
	args := m.Called(email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.AuthResult), args.Error(1)
}

func (m *MockAuthService) Authenticate(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) CreateAdmin(ctx context.Context, in services.RegisterInput) (*models.User, error) {
	args := m.Called(in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

// MockCartService is a mock implementation of services.ICartService.
type MockCartService struct {
	mock.Mock
}

func (m *MockCartService) AddItem(ctx context.Context, userID, productID uint, quantity int, size string) error {
	args := m.Called(userID, productID, quantity, size)
	return args.Error(0)
}

func (m *MockCartService) UpdateQuantity(ctx context.Context, userID, lineID uint, quantity int) error {
	args := m.Called(userID, lineID, quantity)
	return args.Error(0)
}

func (m *MockCartService) RemoveItem(ctx context.Context, userID, lineID uint) error {
	args := m.Called(userID, lineID)
	return args.Error(0)
}

func (m *MockCartService) View(ctx context.Context, userID uint) (*services.CartView, error) {
	args := m.Called(userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.CartView), args.Error(1)
}

// MockUserService is a mock implementation of services.IUserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) ListUsers(ctx context.Context, filter repository.UserFilter) ([]repository.UserSummary, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]repository.UserSummary), args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, id uint) (*repository.UserSummary, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.UserSummary), args.Error(1)
}

func (m *MockUserService) UpdateRole(ctx context.Context, id uint, role string) (*models.User, error) {
	args := m.Called(id, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) DeleteUser(ctx context.Context, id uint) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockUserService) Stats(ctx context.Context) (*repository.Stats, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.Stats), args.Error(1)
}
