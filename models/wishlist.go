package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WishlistEntry marks a product a user wants to come back to. Toggling an
// existing entry deletes it.
type WishlistEntry struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_wishlist_user_product" json:"user_id"`
	ProductSlug string    `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"product_slug"`
	CreatedAt   time.Time `json:"created_at"`
}

func (w *WishlistEntry) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
