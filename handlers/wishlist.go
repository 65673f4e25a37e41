package handlers

import (
	"errors"
	"net/http"

	"storefront-backend/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type WishlistHandler struct {
	DB *gorm.DB
}

// ToggleWishlist adds the product to the caller's wishlist, or removes it if
// already present.
func (h *WishlistHandler) ToggleWishlist(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	slug := c.Param("slug")
	var product models.Product
	if err := h.DB.Where("slug = ?", slug).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var entry models.WishlistEntry
	err := h.DB.Where("user_id = ? AND product_slug = ?", userID, slug).First(&entry).Error

	if err == nil {
		if err := h.DB.Delete(&entry).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wishlist"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"in_wishlist": false})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wishlist"})
		return
	}

	entry = models.WishlistEntry{
		ID:          uuid.New(),
		UserID:      userID.(uuid.UUID),
		ProductSlug: slug,
	}
	if err := h.DB.Create(&entry).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update wishlist"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"in_wishlist": true})
}

// GetWishlist lists the caller's wishlist with the referenced products.
func (h *WishlistHandler) GetWishlist(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var entries []models.WishlistEntry
	if err := h.DB.Where("user_id = ?", userID).Order("created_at DESC").Find(&entries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch wishlist"})
		return
	}

	slugs := make([]string, 0, len(entries))
	for _, e := range entries {
		slugs = append(slugs, e.ProductSlug)
	}

	var products []models.Product
	if len(slugs) > 0 {
		if err := h.DB.Preload("Images").Where("slug IN ?", slugs).Find(&products).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch wishlist products"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"entries":  entries,
		"products": products,
	})
}
