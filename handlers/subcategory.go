package handlers

import (
	"net/http"

	"storefront-backend/models"
	"storefront-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SubcategoryHandler struct {
	DB *gorm.DB
}

// GetSubcategories retrieves all subcategories
func (h *SubcategoryHandler) GetSubcategories(c *gin.Context) {
	query := h.DB.Preload("Category")
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}

	var subcategories []models.Subcategory
	if err := query.Find(&subcategories).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch subcategories"})
		return
	}

	c.JSON(http.StatusOK, subcategories)
}

type subcategoryRequest struct {
	Name        string    `json:"name" binding:"required"`
	Slug        string    `json:"slug"`
	CategoryID  uuid.UUID `json:"category_id" binding:"required"`
	Description string    `json:"description"`
}

// CreateSubcategory creates a new subcategory
func (h *SubcategoryHandler) CreateSubcategory(c *gin.Context) {
	var req subcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	// Validate that the parent category exists
	var category models.Category
	if err := h.DB.Where("id = ?", req.CategoryID).First(&category).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parent category not found"})
		return
	}

	subcategory := models.Subcategory{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        req.Slug,
		CategoryID:  req.CategoryID,
		Description: req.Description,
	}
	if subcategory.Slug == "" {
		subcategory.Slug = utils.Slugify(req.Name)
	}

	if err := h.DB.Create(&subcategory).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create subcategory"})
		return
	}

	// Return the subcategory with preloaded category
	if err := h.DB.Preload("Category").First(&subcategory, "id = ?", subcategory.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch created subcategory"})
		return
	}

	c.JSON(http.StatusCreated, subcategory)
}

// UpdateSubcategory updates an existing subcategory
func (h *SubcategoryHandler) UpdateSubcategory(c *gin.Context) {
	var subcategory models.Subcategory
	if err := h.DB.Where("id = ?", c.Param("id")).First(&subcategory).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Subcategory not found"})
		return
	}

	var req subcategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	// Validate that the parent category exists if it's being changed
	if err := h.DB.Where("id = ?", req.CategoryID).First(&models.Category{}).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Parent category not found"})
		return
	}

	subcategory.Name = req.Name
	if req.Slug != "" {
		subcategory.Slug = req.Slug
	}
	subcategory.CategoryID = req.CategoryID
	subcategory.Description = req.Description

	if err := h.DB.Omit("Category", "Products").Save(&subcategory).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update subcategory"})
		return
	}

	c.JSON(http.StatusOK, subcategory)
}

// DeleteSubcategory deletes a subcategory
func (h *SubcategoryHandler) DeleteSubcategory(c *gin.Context) {
	id := c.Param("id")

	// Check if subcategory has associated products
	var productCount int64
	if err := h.DB.Model(&models.Product{}).Where("subcategory_id = ?", id).Count(&productCount).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to check subcategory dependencies"})
		return
	}

	if productCount > 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":         "Cannot delete subcategory with associated products",
			"message":       "Please reassign or delete associated products first",
			"product_count": productCount,
		})
		return
	}

	// Safe to delete
	if err := h.DB.Delete(&models.Subcategory{}, "id = ?", id).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete subcategory"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Subcategory deleted successfully"})
}
