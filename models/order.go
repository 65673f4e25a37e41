package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is an immutable checkout snapshot. After creation only the payment
// capture and the deliver transition may touch it.
type Order struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User        User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	OrderNumber string    `gorm:"uniqueIndex;not null" json:"order_number"`

	// Shipping address snapshot taken from the user at checkout time.
	FullName      string `gorm:"not null" json:"full_name"`
	StreetAddress string `gorm:"not null" json:"street_address"`
	City          string `gorm:"not null" json:"city"`
	PostalCode    string `gorm:"not null" json:"postal_code"`
	Country       string `gorm:"not null" json:"country"`

	PaymentMethod string          `gorm:"not null" json:"payment_method"`
	ItemsPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"items_price"`
	ShippingPrice decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"shipping_price"`
	TaxPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"tax_price"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_price"`

	IsPaid      bool       `gorm:"default:false" json:"is_paid"`
	PaidAt      *time.Time `json:"paid_at,omitempty"`
	IsDelivered bool       `gorm:"default:false" json:"is_delivered"`
	DeliveredAt *time.Time `json:"delivered_at,omitempty"`

	// Payment result recorded by the provider flow: the provider order id is
	// written when the provider order is created and verified again at capture.
	PaymentID     string `json:"payment_id"`
	PaymentStatus string `json:"payment_status"`
	PayerEmail    string `json:"payer_email"`
	PaidAmount    string `json:"paid_amount"`

	Items     []OrderItem    `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// OrderItem carries full product snapshots so orders stay readable after
// catalog edits.
type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Order     Order           `gorm:"foreignKey:OrderID" json:"-"`
	ProductID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Slug      string          `gorm:"not null" json:"slug"`
	Name      string          `gorm:"not null" json:"name"`
	Image     string          `json:"image"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	Qty       int             `gorm:"not null" json:"qty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	if o.OrderNumber == "" {
		o.OrderNumber = "ORD" + time.Now().Format("20060102150405") + o.ID.String()[:8]
	}
	return nil
}

func (oi *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if oi.ID == uuid.Nil {
		oi.ID = uuid.New()
	}
	return nil
}
