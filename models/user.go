package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Email         string    `gorm:"uniqueIndex;not null" json:"email"`
	Password      string    `gorm:"not null" json:"-"`
	Name          string    `json:"name"`
	Role          string    `gorm:"default:customer" json:"role"` // customer, admin
	PaymentMethod string    `json:"payment_method"`               // preferred method chosen during checkout
	FullName      string    `json:"full_name"`
	StreetAddress string    `json:"street_address"`
	City          string    `json:"city"`
	PostalCode    string    `json:"postal_code"`
	Country       string    `json:"country"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}

// HasShippingAddress reports whether the user saved a complete shipping address.
func (u *User) HasShippingAddress() bool {
	return u.FullName != "" && u.StreetAddress != "" && u.City != "" && u.PostalCode != "" && u.Country != ""
}
