package models

import "time"

// Role is the closed set of principal roles.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// Valid reports whether r is customer or admin.
func (r Role) Valid() bool {
	return r == RoleCustomer || r == RoleAdmin
}

// User is a storefront account. Password holds the bcrypt hash and is never
// serialized.
type User struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Username  string    `json:"username" gorm:"size:50;uniqueIndex;not null"`
	Email     string    `json:"email" gorm:"size:100;uniqueIndex;not null"`
	Password  string    `json:"-" gorm:"size:255;not null"`
	FullName  *string   `json:"full_name" gorm:"size:100"`
	Phone     *string   `json:"phone" gorm:"size:20"`
	Address   *string   `json:"address" gorm:"type:text"`
	Role      Role      `json:"role" gorm:"type:varchar(20);not null;index"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
