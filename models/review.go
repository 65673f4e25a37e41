package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Review is one user's review of one product. The (user, product) pair is
// unique; submitting again updates the existing row.
type Review struct {
	ID                  uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID              uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_product" json:"user_id"`
	User                User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	ProductID           uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_reviews_user_product" json:"product_id"`
	Rating              int       `gorm:"not null" json:"rating"` // 1..5
	Title               string    `json:"title"`
	Comment             string    `gorm:"type:text" json:"comment"`
	IsVerifiedPurchase  bool      `gorm:"default:false" json:"is_verified_purchase"`
	CreatedAt           time.Time `json:"created_at"`
	UpdatedAt           time.Time `json:"updated_at"`
}

func (r *Review) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
