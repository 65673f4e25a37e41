package handlers

import (
	"errors"
	"net/http"

	"storefront-backend/models"
	"storefront-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReviewHandler struct {
	DB *gorm.DB
}

func (h *ReviewHandler) GetProductReviews(c *gin.Context) {
	var product models.Product
	if err := h.DB.Where("slug = ?", c.Param("slug")).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var reviews []models.Review
	if err := h.DB.Preload("User").
		Where("product_id = ?", product.ID).
		Order("created_at DESC").
		Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch reviews"})
		return
	}

	c.JSON(http.StatusOK, reviews)
}

// UpsertReview creates or replaces the caller's review of a product. One row
// per (user, product); the product's denormalized rating and review count are
// recomputed from the full review set in the same transaction, so they always
// match the live aggregate.
func (h *ReviewHandler) UpsertReview(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Title   string `json:"title"`
		Comment string `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var product models.Product
	if err := h.DB.Where("slug = ?", c.Param("slug")).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	uid := userID.(uuid.UUID)

	var review models.Review
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", product.ID).First(&product).Error; err != nil {
			return err
		}

		findErr := tx.Where("user_id = ? AND product_id = ?", uid, product.ID).First(&review).Error
		switch {
		case findErr == nil:
			review.Rating = req.Rating
			review.Title = req.Title
			review.Comment = req.Comment
			if err := tx.Save(&review).Error; err != nil {
				return err
			}
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			review = models.Review{
				ID:                 uuid.New(),
				UserID:             uid,
				ProductID:          product.ID,
				Rating:             req.Rating,
				Title:              req.Title,
				Comment:            req.Comment,
				IsVerifiedPurchase: hasPaidOrderWithProduct(tx, uid, product.ID),
			}
			if err := tx.Create(&review).Error; err != nil {
				return err
			}
		default:
			return findErr
		}

		var agg struct {
			Avg   float64
			Count int64
		}
		if err := tx.Model(&models.Review{}).
			Select("COALESCE(AVG(rating), 0) AS avg, COUNT(*) AS count").
			Where("product_id = ?", product.ID).
			Scan(&agg).Error; err != nil {
			return err
		}

		return tx.Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
			"rating":      decimal.NewFromFloat(agg.Avg).Round(2),
			"num_reviews": agg.Count,
		}).Error
	})

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save review"})
		return
	}

	c.JSON(http.StatusOK, review)
}

func hasPaidOrderWithProduct(tx *gorm.DB, userID, productID uuid.UUID) bool {
	var count int64
	tx.Model(&models.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.user_id = ? AND orders.is_paid = ? AND order_items.product_id = ?", userID, true, productID).
		Count(&count)
	return count > 0
}
