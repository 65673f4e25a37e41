package handlers

import (
	"net/http"

	"storefront-backend/models"
	"storefront-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CheckoutHandler covers the two wizard steps before order placement: saving
// the shipping address and picking a payment method. Both live on the user so
// the order creator can snapshot them.
type CheckoutHandler struct {
	DB *gorm.DB
}

func (h *CheckoutHandler) SaveShippingAddress(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		FullName      string `json:"full_name" binding:"required"`
		StreetAddress string `json:"street_address" binding:"required"`
		City          string `json:"city" binding:"required"`
		PostalCode    string `json:"postal_code" binding:"required"`
		Country       string `json:"country" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var user models.User
	if err := h.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.FullName = req.FullName
	user.StreetAddress = req.StreetAddress
	user.City = req.City
	user.PostalCode = req.PostalCode
	user.Country = req.Country

	if err := h.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save shipping address"})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *CheckoutHandler) SavePaymentMethod(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		PaymentMethod string `json:"payment_method" binding:"required,oneof=paypal cod"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var user models.User
	if err := h.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	user.PaymentMethod = req.PaymentMethod
	if err := h.DB.Save(&user).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save payment method"})
		return
	}

	c.JSON(http.StatusOK, user)
}
