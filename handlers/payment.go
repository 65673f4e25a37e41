package handlers

import (
	"errors"
	"net/http"
	"time"

	"storefront-backend/models"
	"storefront-backend/paypal"
	"storefront-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PaymentHandler struct {
	DB     *gorm.DB
	PayPal *paypal.Client
}

var (
	errOrderNotFound    = errors.New("order not found")
	errOrderAlreadyPaid = errors.New("order is already paid")
)

// nowFunc is stubbed in tests that pin timestamps.
var nowFunc = time.Now

// paymentRecord is what settleOrder stores on the order's payment result.
type paymentRecord struct {
	ProviderOrderID string
	Status          string
	PayerEmail      string
	Amount          string
}

func respondSettleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, errOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
	case errors.Is(err, errOrderAlreadyPaid):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order is already paid"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
	}
}

// CreatePayPalOrder creates a provider order for the order total and records
// the provider order id, which the capture step later verifies against.
func (h *PaymentHandler) CreatePayPalOrder(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var order models.Order
	if err := h.DB.Where("id = ?", c.Param("id")).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if order.UserID != userID.(uuid.UUID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your order"})
		return
	}
	if order.IsPaid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order is already paid"})
		return
	}

	result, err := h.PayPal.CreateOrder(order.TotalPrice.StringFixed(2))
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment provider is unavailable"})
		return
	}

	order.PaymentID = result.ID
	order.PaymentStatus = result.Status
	if err := h.DB.Omit("Items", "User").Save(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record payment"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"provider_order_id": result.ID, "status": result.Status})
}

// CapturePayPalOrder confirms an approved provider order. The capture is
// trusted only when the submitted provider order id matches the one this
// server created and the provider reports COMPLETED; anything else rejects
// without touching the order.
func (h *PaymentHandler) CapturePayPalOrder(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req struct {
		ProviderOrderID string `json:"provider_order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var order models.Order
	if err := h.DB.Where("id = ?", c.Param("id")).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if order.UserID != userID.(uuid.UUID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your order"})
		return
	}
	if order.IsPaid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order is already paid"})
		return
	}
	if order.PaymentID == "" || order.PaymentID != req.ProviderOrderID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment verification failed: unknown provider order"})
		return
	}

	capture, err := h.PayPal.CaptureOrder(order.PaymentID)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Payment capture failed"})
		return
	}
	if capture.Status != paypal.StatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Payment was not completed"})
		return
	}

	settled, err := settleOrder(h.DB, order.ID, paymentRecord{
		ProviderOrderID: order.PaymentID,
		Status:          capture.Status,
		PayerEmail:      capture.PayerEmail,
		Amount:          capture.Amount,
	})
	if err != nil {
		respondSettleError(c, err)
		return
	}

	// Receipt is a side channel: the payment has committed, a mail failure
	// only gets logged.
	var user models.User
	if err := h.DB.Where("id = ?", settled.UserID).First(&user).Error; err == nil {
		utils.SendOrderReceipt(user.Email, *settled)
	}

	c.JSON(http.StatusOK, settled)
}
