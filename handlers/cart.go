package handlers

import (
	"errors"
	"net/http"

	"storefront-backend/middleware"
	"storefront-backend/models"
	"storefront-backend/pricing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CartHandler struct {
	DB *gorm.DB
}

// resolveCart finds the active cart for an identity, preferring the
// authenticated user id over the anonymous session id. Pass lock to take a
// row lock for the duration of the surrounding transaction.
func resolveCart(tx *gorm.DB, identity middleware.Identity, lock bool) (*models.Cart, error) {
	query := tx
	if lock {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var cart models.Cart
	if identity.UserID != nil {
		err := query.Where("user_id = ?", *identity.UserID).First(&cart).Error
		if err == nil {
			return &cart, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	if err := query.Where("user_id IS NULL AND session_cart_id = ?", identity.SessionCartID).First(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// recomputeTotals re-derives the cart's four money fields from its current
// line items and persists them. Must run inside the mutation's transaction.
func recomputeTotals(tx *gorm.DB, cart *models.Cart) error {
	var items []models.CartItem
	if err := tx.Where("cart_id = ?", cart.ID).Find(&items).Error; err != nil {
		return err
	}

	lines := make([]pricing.Line, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Line{Price: it.Price, Qty: it.Qty})
	}
	totals := pricing.Calculate(lines)

	cart.ItemsPrice = totals.Items
	cart.ShippingPrice = totals.Shipping
	cart.TaxPrice = totals.Tax
	cart.TotalPrice = totals.Total

	return tx.Model(&models.Cart{}).Where("id = ?", cart.ID).Updates(map[string]interface{}{
		"items_price":    totals.Items,
		"shipping_price": totals.Shipping,
		"tax_price":      totals.Tax,
		"total_price":    totals.Total,
	}).Error
}

func (h *CartHandler) GetCart(c *gin.Context) {
	identity, err := middleware.CallerIdentity(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No session identity"})
		return
	}

	cart, err := resolveCart(h.DB, identity, false)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// No cart yet: answer an empty one with zeroed totals rather than 404,
		// so the storefront can always render the cart page.
		totals := pricing.Zero()
		c.JSON(http.StatusOK, gin.H{
			"items":          []models.CartItem{},
			"items_price":    totals.Items,
			"shipping_price": totals.Shipping,
			"tax_price":      totals.Tax,
			"total_price":    totals.Total,
		})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}

	if err := h.DB.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).First(cart, "id = ?", cart.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}

	c.JSON(http.StatusOK, cart)
}

// AddToCart adds one unit of a product to the caller's cart, creating the
// cart lazily on first add. The whole read-modify-write runs in one
// transaction with the cart row locked, so concurrent adds from the same
// identity serialize instead of losing updates.
func (h *CartHandler) AddToCart(c *gin.Context) {
	identity, err := middleware.CallerIdentity(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No session identity"})
		return
	}

	var req struct {
		ProductID uuid.UUID `json:"product_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "product_id is required"})
		return
	}

	tx := h.DB.Begin()

	var product models.Product
	if err := tx.Where("id = ?", req.ProductID).First(&product).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Product no longer exists"})
		return
	}

	cart, err := resolveCart(tx, identity, true)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// Lazy creation: first add builds the cart from this single item.
		if product.Stock < 1 {
			tx.Rollback()
			c.JSON(http.StatusBadRequest, gin.H{"error": "Product is out of stock"})
			return
		}

		cart = &models.Cart{
			ID:            uuid.New(),
			UserID:        identity.UserID,
			SessionCartID: identity.SessionCartID,
		}
		if err := tx.Create(cart).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create cart"})
			return
		}

		item := models.CartItem{
			ID:        uuid.New(),
			CartID:    cart.ID,
			ProductID: product.ID,
			Slug:      product.Slug,
			Name:      product.Name,
			Image:     product.PrimaryImage(),
			Price:     product.Price,
			Qty:       1,
		}
		if err := tx.Create(&item).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
			return
		}
	} else if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	} else {
		var line models.CartItem
		lineErr := tx.Where("cart_id = ? AND product_id = ?", cart.ID, product.ID).First(&line).Error

		if lineErr == nil {
			if product.Stock < line.Qty+1 {
				tx.Rollback()
				c.JSON(http.StatusBadRequest, gin.H{"error": "Not enough stock for " + product.Name})
				return
			}
			line.Qty++
			if err := tx.Save(&line).Error; err != nil {
				tx.Rollback()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
				return
			}
		} else if errors.Is(lineErr, gorm.ErrRecordNotFound) {
			if product.Stock < 1 {
				tx.Rollback()
				c.JSON(http.StatusBadRequest, gin.H{"error": "Product is out of stock"})
				return
			}
			item := models.CartItem{
				ID:        uuid.New(),
				CartID:    cart.ID,
				ProductID: product.ID,
				Slug:      product.Slug,
				Name:      product.Name,
				Image:     product.PrimaryImage(),
				Price:     product.Price,
				Qty:       1,
			}
			if err := tx.Create(&item).Error; err != nil {
				tx.Rollback()
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add item to cart"})
				return
			}
		} else {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart item"})
			return
		}
	}

	if err := recomputeTotals(tx, cart); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart totals"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart"})
		return
	}

	h.DB.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).First(cart, "id = ?", cart.ID)
	c.JSON(http.StatusOK, cart)
}

// RemoveFromCart removes one unit of a product. A line that would reach zero
// is deleted outright; zero-quantity lines are never stored.
func (h *CartHandler) RemoveFromCart(c *gin.Context) {
	identity, err := middleware.CallerIdentity(c)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "No session identity"})
		return
	}

	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid product id"})
		return
	}

	tx := h.DB.Begin()

	cart, err := resolveCart(tx, identity, true)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Cart not found"})
		return
	}
	if err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}

	var line models.CartItem
	if err := tx.Where("cart_id = ? AND product_id = ?", cart.ID, productID).First(&line).Error; err != nil {
		tx.Rollback()
		c.JSON(http.StatusNotFound, gin.H{"error": "Item not in cart"})
		return
	}

	if line.Qty <= 1 {
		if err := tx.Delete(&line).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove item from cart"})
			return
		}
	} else {
		line.Qty--
		if err := tx.Save(&line).Error; err != nil {
			tx.Rollback()
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart item"})
			return
		}
	}

	if err := recomputeTotals(tx, cart); err != nil {
		tx.Rollback()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update cart totals"})
		return
	}

	if err := tx.Commit().Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save cart"})
		return
	}

	h.DB.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC")
	}).First(cart, "id = ?", cart.ID)
	c.JSON(http.StatusOK, cart)
}

// ClaimAnonymousCart assigns an anonymous cart to a user at sign-in, unless
// the user already has an active cart.
func ClaimAnonymousCart(db *gorm.DB, userID uuid.UUID, sessionCartID string) {
	if sessionCartID == "" {
		return
	}

	var existing models.Cart
	if err := db.Where("user_id = ?", userID).First(&existing).Error; err == nil {
		return
	}

	db.Model(&models.Cart{}).
		Where("user_id IS NULL AND session_cart_id = ?", sessionCartID).
		Update("user_id", userID)
}
