package handlers

import (
	"net/http"

	"storefront-backend/models"
	"storefront-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CollectionHandler struct {
	DB *gorm.DB
}

func (h *CollectionHandler) GetCollections(c *gin.Context) {
	query := h.DB.Order("name ASC")
	if c.Query("featured") == "true" {
		query = query.Where("is_featured = ?", true)
	}

	var collections []models.Collection
	if err := query.Find(&collections).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch collections"})
		return
	}

	c.JSON(http.StatusOK, collections)
}

func (h *CollectionHandler) GetCollectionBySlug(c *gin.Context) {
	var collection models.Collection
	if err := h.DB.Preload("Products").Preload("Products.Images").
		Where("slug = ?", c.Param("slug")).First(&collection).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Collection not found"})
		return
	}

	c.JSON(http.StatusOK, collection)
}

type collectionRequest struct {
	Name        string `json:"name" binding:"required"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Image       string `json:"image"`
	IsFeatured  bool   `json:"is_featured"`
}

func (h *CollectionHandler) CreateCollection(c *gin.Context) {
	var req collectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	collection := models.Collection{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Image:       req.Image,
		IsFeatured:  req.IsFeatured,
	}
	if collection.Slug == "" {
		collection.Slug = utils.Slugify(req.Name)
	}

	if err := h.DB.Create(&collection).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create collection"})
		return
	}

	c.JSON(http.StatusCreated, collection)
}

func (h *CollectionHandler) UpdateCollection(c *gin.Context) {
	var collection models.Collection
	if err := h.DB.Where("id = ?", c.Param("id")).First(&collection).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Collection not found"})
		return
	}

	var req collectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	collection.Name = req.Name
	if req.Slug != "" {
		collection.Slug = req.Slug
	}
	collection.Description = req.Description
	collection.Image = req.Image
	collection.IsFeatured = req.IsFeatured

	if err := h.DB.Omit("Products").Save(&collection).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update collection"})
		return
	}

	c.JSON(http.StatusOK, collection)
}

// DeleteCollection detaches its products rather than refusing.
func (h *CollectionHandler) DeleteCollection(c *gin.Context) {
	var collection models.Collection
	if err := h.DB.Where("id = ?", c.Param("id")).First(&collection).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Collection not found"})
		return
	}

	if err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Product{}).
			Where("collection_id = ?", collection.ID).
			Update("collection_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&collection).Error
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete collection"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Collection deleted successfully"})
}
