package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Slug          string          `gorm:"uniqueIndex;not null" json:"slug"`
	Name          string          `gorm:"not null" json:"name"`
	Brand         string          `json:"brand"`
	Description   string          `gorm:"type:text" json:"description"`
	CategoryID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"category_id"`
	Category      Category        `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	SubcategoryID *uuid.UUID      `gorm:"type:uuid;index" json:"subcategory_id,omitempty"`
	CollectionID  *uuid.UUID      `gorm:"type:uuid;index" json:"collection_id,omitempty"`
	Price         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"price"`
	// Stock is the authoritative inventory counter. Cart operations only
	// validate against it; payment capture is the only writer.
	Stock      int             `gorm:"default:0" json:"stock"`
	Rating     decimal.Decimal `gorm:"type:decimal(3,2);default:0" json:"rating"`
	NumReviews int             `gorm:"default:0" json:"num_reviews"`
	IsFeatured bool            `gorm:"default:false" json:"is_featured"`
	Banner     string          `json:"banner"`
	Images     []ProductImage  `gorm:"foreignKey:ProductID" json:"images,omitempty"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
	DeletedAt  gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// PrimaryImage returns the URL of the product's primary image, or the first
// image when none is flagged primary.
func (p *Product) PrimaryImage() string {
	for _, img := range p.Images {
		if img.IsPrimary {
			return img.ImageURL
		}
	}
	if len(p.Images) > 0 {
		return p.Images[0].ImageURL
	}
	return ""
}
