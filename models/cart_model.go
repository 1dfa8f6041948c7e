package models

import "time"

// CartItem is one line of a customer's cart. At most one line exists per
// (user, product, size); an empty Size means "no size".
type CartItem struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    *uint     `json:"user_id" gorm:"uniqueIndex:ux_cart_user_product_size"`
	User      *User     `json:"-" gorm:"constraint:OnDelete:SET NULL"`
	ProductID uint      `json:"product_id" gorm:"not null;uniqueIndex:ux_cart_user_product_size"`
	Product   *Product  `json:"product,omitempty" gorm:"constraint:OnDelete:CASCADE"`
	Size      string    `json:"size" gorm:"size:20;not null;default:'';uniqueIndex:ux_cart_user_product_size"`
	Quantity  int       `json:"quantity" gorm:"not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName keeps the historical table name.
func (CartItem) TableName() string {
	return "cart"
}

// All lists every model for auto-migration, parents first.
func All() []interface{} {
	return []interface{}{&User{}, &Category{}, &Product{}, &CartItem{}, &Order{}, &OrderItem{}}
}
