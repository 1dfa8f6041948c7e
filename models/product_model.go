package models

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Prices travel as JSON numbers, e.g. "price": 10000.
	decimal.MarshalJSONWithoutQuotes = true
}

// Category groups products. Name is unique.
type Category struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"size:100;uniqueIndex;not null"`
	Description *string   `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Product is a catalog entry. Stock is the available inventory count.
type Product struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Name        string          `json:"name" gorm:"size:200;not null"`
	Description *string         `json:"description" gorm:"type:text"`
	CategoryID  *uint           `json:"category_id" gorm:"index"`
	Category    *Category       `json:"category,omitempty" gorm:"constraint:OnDelete:SET NULL"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Stock       int             `json:"stock" gorm:"not null;default:0;check:stock >= 0"`
	Size        *string         `json:"size" gorm:"size:50"`
	Color       *string         `json:"color" gorm:"size:50"`
	ImageURL    *string         `json:"image_url" gorm:"size:500"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// CategoryName returns the joined category name, or "" when uncategorized.
func (p Product) CategoryName() string {
	if p.Category == nil {
		return ""
	}
	return p.Category.Name
}
