package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Cart is the single active cart for one identity: an authenticated user
// (UserID set) or an anonymous visitor (SessionCartID only). The four money
// fields are derived from the items and must be recomputed on every mutation.
type Cart struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID        *uuid.UUID      `gorm:"type:uuid;index" json:"user_id,omitempty"`
	SessionCartID string          `gorm:"not null;index" json:"session_cart_id"`
	Items         []CartItem      `gorm:"foreignKey:CartID" json:"items"`
	ItemsPrice    decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"items_price"`
	ShippingPrice decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"shipping_price"`
	TaxPrice      decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"tax_price"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);default:0" json:"total_price"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// CartItem is one line in a cart. Price is a snapshot taken when the product
// was first added and is not re-synced to the live product price.
type CartItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CartID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"cart_id"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Slug      string          `gorm:"not null" json:"slug"`
	Name      string          `gorm:"not null" json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Qty       int             `gorm:"not null" json:"qty"` // always >= 1; a line at 0 is deleted
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (c *Cart) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (ci *CartItem) BeforeCreate(tx *gorm.DB) error {
	if ci.ID == uuid.Nil {
		ci.ID = uuid.New()
	}
	return nil
}
