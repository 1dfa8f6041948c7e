package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/zylpheon/TheZylpheonAdmin/models"
)

// UserFilter narrows admin user listings.
type UserFilter struct {
	Role   models.Role
	Search string
	Page   Page
}

// UserSummary is a user with order aggregates.
type UserSummary struct {
	models.User
	TotalOrders int64           `json:"total_orders"`
	TotalSpent  decimal.Decimal `json:"total_spent"`
}

// Stats holds dashboard counters.
type Stats struct {
	TotalProducts   int64 `json:"totalProducts"`
	TotalCategories int64 `json:"totalCategories"`
	TotalOrders     int64 `json:"totalOrders"`
	TotalUsers      int64 `json:"totalUsers"`
}

// IUserRepository defines the interface for user data operations.
type IUserRepository interface {
	Transaction(ctx context.Context, fn func(tx IUserRepository) error) error

	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error)
	Create(ctx context.Context, user *models.User) error

	// LockAdmins returns the ids of every admin account, locking those rows
	// for the rest of the transaction.
	LockAdmins(ctx context.Context) ([]uint, error)
	UpdateRole(ctx context.Context, id uint, role models.Role) error
	// Delete removes the user after detaching their orders and cart lines.
	Delete(ctx context.Context, id uint) error

	List(ctx context.Context, filter UserFilter) ([]UserSummary, error)
	FindSummary(ctx context.Context, id uint) (*UserSummary, error)
	Stats(ctx context.Context) (*Stats, error)
}

// UserRepository implements IUserRepository for GORM.
type UserRepository struct {
	DB *gorm.DB
}

// NewUserRepository creates a new UserRepository instance.
func NewUserRepository(db *gorm.DB) IUserRepository {
	return &UserRepository{DB: db}
}

func (r *UserRepository) Transaction(ctx context.Context, fn func(tx IUserRepository) error) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UserRepository{DB: tx})
	})
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.DB.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) ExistsByEmailOrUsername(ctx context.Context, email, username string) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Where("email = ? OR username = ?", email, username).
		Count(&count).Error
	return count > 0, err
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return r.DB.WithContext(ctx).Create(user).Error
}

func (r *UserRepository) LockAdmins(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.DB.WithContext(ctx).
		Model(&models.User{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("role = ?", models.RoleAdmin).
		Order("id").
		Pluck("id", &ids).Error
	return ids, err
}

func (r *UserRepository) UpdateRole(ctx context.Context, id uint, role models.Role) error {
	res := r.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("role", role)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) Delete(ctx context.Context, id uint) error {
	db := r.DB.WithContext(ctx)
	if err := db.Model(&models.Order{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
		return err
	}
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", id).Update("user_id", nil).Error; err != nil {
		return err
	}
	res := db.Delete(&models.User{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *UserRepository) summaryQuery(ctx context.Context) *gorm.DB {
	return r.DB.WithContext(ctx).
		Table("users").
		Select("users.*, COUNT(orders.id) AS total_orders, COALESCE(SUM(orders.total_amount), 0) AS total_spent").
		Joins("LEFT JOIN orders ON orders.user_id = users.id").
		Group("users.id")
}

func (r *UserRepository) List(ctx context.Context, filter UserFilter) ([]UserSummary, error) {
	q := r.summaryQuery(ctx)
	if filter.Role != "" {
		q = q.Where("users.role = ?", filter.Role)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("(users.username LIKE ? OR users.email LIKE ? OR users.full_name LIKE ?)", like, like, like)
	}

	var users []UserSummary
	err := filter.Page.apply(q.Order("users.created_at DESC, users.id DESC")).Scan(&users).Error
	return users, err
}

func (r *UserRepository) FindSummary(ctx context.Context, id uint) (*UserSummary, error) {
	var users []UserSummary
	if err := r.summaryQuery(ctx).Where("users.id = ?", id).Scan(&users).Error; err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &users[0], nil
}

func (r *UserRepository) Stats(ctx context.Context) (*Stats, error) {
	db := r.DB.WithContext(ctx)
	var stats Stats
	if err := db.Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Category{}).Count(&stats.TotalCategories).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.Order{}).Count(&stats.TotalOrders).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleCustomer).Count(&stats.TotalUsers).Error; err != nil {
		return nil, err
	}
	return &stats, nil
}
