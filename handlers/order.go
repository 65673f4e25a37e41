package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"storefront-backend/middleware"
	"storefront-backend/models"
	"storefront-backend/pricing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type OrderHandler struct {
	DB *gorm.DB
}

// CreateOrder snapshots the caller's cart into an immutable order. Checkout
// preconditions each answer with their own redirect target so the client can
// resume the wizard at the right step. Order row, order items, and cart
// zeroing all happen in one transaction: the cart is never emptied without an
// order existing, and an order never exists without its items.
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	identity, err := middleware.CallerIdentity(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No session identity"})
		return
	}

	var user models.User
	if err := h.DB.Where("id = ?", userID).First(&user).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	tx := h.DB.Begin()

	cart, err := resolveCart(tx, identity, true)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty", "redirect": "/cart"})
		return
	}
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}

	var cartItems []models.CartItem
	if err := tx.Where("cart_id = ?", cart.ID).Order("created_at ASC").Find(&cartItems).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}

	// Re-invoking after a successful checkout lands here: the emptied cart
	// short-circuits, so double submission cannot create a duplicate order.
	if len(cartItems) == 0 {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "Your cart is empty", "redirect": "/cart"})
		return
	}

	if !user.HasShippingAddress() {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "No shipping address on file", "redirect": "/shipping-address"})
		return
	}

	if user.PaymentMethod == "" {
		tx.Rollback()
		c.JSON(http.StatusBadRequest, gin.H{"error": "No payment method selected", "redirect": "/payment-method"})
		return
	}

	// Stock is only read here; payment capture is what decrements it.
	for _, item := range cartItems {
		var product models.Product
		if err := tx.Where("id = ?", item.ProductID).First(&product).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusNotFound, gin.H{"error": "Product no longer exists: " + item.Name})
			return
		}
		if product.Stock < item.Qty {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Not enough stock for " + product.Name})
			return
		}
	}

	order := models.Order{
		ID:            uuid.New(),
		UserID:        user.ID,
		FullName:      user.FullName,
		StreetAddress: user.StreetAddress,
		City:          user.City,
		PostalCode:    user.PostalCode,
		Country:       user.Country,
		PaymentMethod: user.PaymentMethod,
		ItemsPrice:    cart.ItemsPrice,
		ShippingPrice: cart.ShippingPrice,
		TaxPrice:      cart.TaxPrice,
		TotalPrice:    cart.TotalPrice,
	}

	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	orderItems := make([]models.OrderItem, 0, len(cartItems))
	for _, item := range cartItems {
		orderItems = append(orderItems, models.OrderItem{
			ID:        uuid.New(),
			OrderID:   order.ID,
			ProductID: item.ProductID,
			Slug:      item.Slug,
			Name:      item.Name,
			Image:     item.Image,
			Price:     item.Price,
			Qty:       item.Qty,
		})
	}

	if err := tx.Omit("Order").CreateInBatches(&orderItems, 100).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order items"})
		return
	}

	// Empty the cart: delete its lines and zero the derived totals. The cart
	// row itself survives for the next shopping session.
	if err := tx.Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	zero := pricing.Zero()
	if err := tx.Model(&models.Cart{}).Where("id = ?", cart.ID).Updates(map[string]interface{}{
		"items_price":    zero.Items,
		"shipping_price": zero.Shipping,
		"tax_price":      zero.Tax,
		"total_price":    zero.Total,
	}).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to clear cart"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create order"})
		return
	}

	h.DB.Preload("Items").First(&order, "id = ?", order.ID)
	c.JSON(http.StatusCreated, order)
}

func (h *OrderHandler) GetOrders(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	page, limit := paginationParams(c)

	var total int64
	h.DB.Model(&models.Order{}).Where("user_id = ?", userID).Count(&total)

	var orders []models.Order
	if err := h.DB.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":      orders,
		"page":        page,
		"total":       total,
		"total_pages": totalPages(total, limit),
	})
}

// GetOrder returns one order to its owner or to an admin.
func (h *OrderHandler) GetOrder(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var order models.Order
	if err := h.DB.Preload("Items").Preload("User").Where("id = ?", c.Param("id")).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	role, _ := c.Get("user_role")
	if order.UserID != userID.(uuid.UUID) && role != "admin" {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not your order"})
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) GetAllOrders(c *gin.Context) {
	page, limit := paginationParams(c)

	var total int64
	h.DB.Model(&models.Order{}).Count(&total)

	var orders []models.Order
	if err := h.DB.Preload("Items").Preload("User").
		Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&orders).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch orders"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"orders":      orders,
		"page":        page,
		"total":       total,
		"total_pages": totalPages(total, limit),
	})
}

// DeliverOrder marks a paid order as delivered.
func (h *OrderHandler) DeliverOrder(c *gin.Context) {
	var order models.Order
	if err := h.DB.Where("id = ?", c.Param("id")).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if !order.IsPaid {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order is not paid"})
		return
	}
	if order.IsDelivered {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Order is already delivered"})
		return
	}

	now := nowFunc()
	order.IsDelivered = true
	order.DeliveredAt = &now
	if err := h.DB.Save(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update order"})
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *OrderHandler) DeleteOrder(c *gin.Context) {
	var order models.Order
	if err := h.DB.Where("id = ?", c.Param("id")).First(&order).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
		return
	}

	if err := h.DB.Delete(&order).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete order"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Order deleted"})
}

// MarkOrderPaid is the admin path for cash-on-delivery orders. It shares the
// idempotency guard and stock decrement with the PayPal capture.
func (h *OrderHandler) MarkOrderPaid(c *gin.Context) {
	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid order id"})
		return
	}

	order, err := settleOrder(h.DB, orderID, paymentRecord{Status: "PAID_MANUALLY"})
	if err != nil {
		respondSettleError(c, err)
		return
	}

	c.JSON(http.StatusOK, order)
}

func paginationParams(c *gin.Context) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "12"))
	if limit < 1 || limit > 100 {
		limit = 12
	}
	return page, limit
}

func totalPages(total int64, limit int) int64 {
	if limit == 0 {
		return 0
	}
	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}
	return pages
}

// settleOrder flips an order to paid: under one transaction it re-checks the
// paid flag with the order row locked, decrements each ordered product's
// stock by its ordered quantity, and records the payment result. An
// already-paid order aborts before any write, so a double capture can neither
// decrement stock twice nor overwrite the payment record.
func settleOrder(db *gorm.DB, orderID uuid.UUID, record paymentRecord) (*models.Order, error) {
	var order models.Order

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", orderID).First(&order).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errOrderNotFound
			}
			return err
		}

		if order.IsPaid {
			return errOrderAlreadyPaid
		}

		var items []models.OrderItem
		if err := tx.Where("order_id = ?", order.ID).Find(&items).Error; err != nil {
			return err
		}

		for _, item := range items {
			var product models.Product
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("id = ?", item.ProductID).First(&product).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					// Product was removed from the catalog after checkout;
					// nothing left to decrement.
					continue
				}
				return err
			}
			if err := tx.Model(&product).
				UpdateColumn("stock", gorm.Expr("stock - ?", item.Qty)).Error; err != nil {
				return err
			}
		}

		now := nowFunc()
		order.IsPaid = true
		order.PaidAt = &now
		if record.ProviderOrderID != "" {
			order.PaymentID = record.ProviderOrderID
		}
		order.PaymentStatus = record.Status
		order.PayerEmail = record.PayerEmail
		order.PaidAmount = record.Amount
		order.Items = items

		return tx.Omit("Items", "User").Save(&order).Error
	})

	if err != nil {
		return nil, err
	}
	return &order, nil
}
