package handlers

import (
	"net/http"
	"strconv"

	"storefront-backend/models"
	"storefront-backend/storage"
	"storefront-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ProductHandler struct {
	DB      *gorm.DB
	Storage storage.Client
}

// GetProducts is the public catalog listing: name search, category /
// collection / price / rating filters, sorting, pagination.
func (h *ProductHandler) GetProducts(c *gin.Context) {
	page, limit := paginationParams(c)

	query := h.DB.Model(&models.Product{}).Preload("Category").Preload("Images")

	if search := c.Query("q"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}
	if categoryID := c.Query("category_id"); categoryID != "" {
		query = query.Where("category_id = ?", categoryID)
	}
	if subcategoryID := c.Query("subcategory_id"); subcategoryID != "" {
		query = query.Where("subcategory_id = ?", subcategoryID)
	}
	if collectionID := c.Query("collection_id"); collectionID != "" {
		query = query.Where("collection_id = ?", collectionID)
	}
	if priceMin := c.Query("price_min"); priceMin != "" {
		if min, err := decimal.NewFromString(priceMin); err == nil {
			query = query.Where("price >= ?", min)
		}
	}
	if priceMax := c.Query("price_max"); priceMax != "" {
		if max, err := decimal.NewFromString(priceMax); err == nil {
			query = query.Where("price <= ?", max)
		}
	}
	if minRating := c.Query("min_rating"); minRating != "" {
		if rating, err := strconv.Atoi(minRating); err == nil {
			query = query.Where("rating >= ?", rating)
		}
	}

	switch c.Query("sort") {
	case "price-asc":
		query = query.Order("price ASC")
	case "price-desc":
		query = query.Order("price DESC")
	case "rating":
		query = query.Order("rating DESC")
	default:
		query = query.Order("created_at DESC")
	}

	var total int64
	query.Count(&total)

	var products []models.Product
	if err := query.Offset((page - 1) * limit).Limit(limit).Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"products":    products,
		"page":        page,
		"total":       total,
		"total_pages": totalPages(total, limit),
	})
}

func (h *ProductHandler) GetFeaturedProducts(c *gin.Context) {
	var products []models.Product
	if err := h.DB.Preload("Images").
		Where("is_featured = ?", true).
		Order("created_at DESC").
		Limit(8).
		Find(&products).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch products"})
		return
	}

	c.JSON(http.StatusOK, products)
}

func (h *ProductHandler) GetProductBySlug(c *gin.Context) {
	var product models.Product
	if err := h.DB.Preload("Category").Preload("Images").
		Where("slug = ?", c.Param("slug")).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	c.JSON(http.StatusOK, product)
}

type productRequest struct {
	Name          string          `json:"name" binding:"required"`
	Slug          string          `json:"slug"`
	Brand         string          `json:"brand"`
	Description   string          `json:"description"`
	CategoryID    uuid.UUID       `json:"category_id" binding:"required"`
	SubcategoryID *uuid.UUID      `json:"subcategory_id"`
	CollectionID  *uuid.UUID      `json:"collection_id"`
	Price         decimal.Decimal `json:"price"`
	Stock         int             `json:"stock" binding:"min=0"`
	IsFeatured    bool            `json:"is_featured"`
	Banner        string          `json:"banner"`
}

func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if req.Price.LessThanOrEqual(decimal.Zero) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be greater than zero"})
		return
	}

	var category models.Category
	if err := h.DB.Where("id = ?", req.CategoryID).First(&category).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
		return
	}

	slug := req.Slug
	if slug == "" {
		slug = utils.Slugify(req.Name)
	}
	var existing models.Product
	if err := h.DB.Where("slug = ?", slug).First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A product with this slug already exists"})
		return
	}

	product := models.Product{
		ID:            uuid.New(),
		Slug:          slug,
		Name:          req.Name,
		Brand:         req.Brand,
		Description:   req.Description,
		CategoryID:    req.CategoryID,
		SubcategoryID: req.SubcategoryID,
		CollectionID:  req.CollectionID,
		Price:         req.Price.Round(2),
		Stock:         req.Stock,
		IsFeatured:    req.IsFeatured,
		Banner:        req.Banner,
	}

	if err := h.DB.Create(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create product"})
		return
	}

	c.JSON(http.StatusCreated, product)
}

func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var product models.Product
	if err := h.DB.Where("id = ?", c.Param("id")).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if req.Price.LessThanOrEqual(decimal.Zero) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "price must be greater than zero"})
		return
	}

	if err := h.DB.Where("id = ?", req.CategoryID).First(&models.Category{}).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Category not found"})
		return
	}

	product.Name = req.Name
	if req.Slug != "" {
		product.Slug = req.Slug
	}
	product.Brand = req.Brand
	product.Description = req.Description
	product.CategoryID = req.CategoryID
	product.SubcategoryID = req.SubcategoryID
	product.CollectionID = req.CollectionID
	product.Price = req.Price.Round(2)
	product.Stock = req.Stock
	product.IsFeatured = req.IsFeatured
	product.Banner = req.Banner

	if err := h.DB.Omit("Category", "Images").Save(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update product"})
		return
	}

	c.JSON(http.StatusOK, product)
}

// DeleteProduct soft-deletes so order items keep a resolvable product id.
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	var product models.Product
	if err := h.DB.Where("id = ?", c.Param("id")).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	if err := h.DB.Delete(&product).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete product"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

// UploadProductImage stores a product image and records it; the first image
// of a product becomes primary unless the form says otherwise.
func (h *ProductHandler) UploadProductImage(c *gin.Context) {
	var product models.Product
	if err := h.DB.Where("id = ?", c.Param("id")).First(&product).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}
	if err := utils.ValidateFileUpload(fileHeader); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read uploaded file"})
		return
	}
	defer file.Close()

	url, err := h.Storage.UploadProductImage(file, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload image"})
		return
	}

	var imageCount int64
	h.DB.Model(&models.ProductImage{}).Where("product_id = ?", product.ID).Count(&imageCount)

	image := models.ProductImage{
		ID:        uuid.New(),
		ProductID: product.ID,
		ImageURL:  url,
		IsPrimary: imageCount == 0 || c.PostForm("is_primary") == "true",
	}
	if err := h.DB.Create(&image).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record image"})
		return
	}

	c.JSON(http.StatusCreated, image)
}

func (h *ProductHandler) DeleteProductImage(c *gin.Context) {
	var image models.ProductImage
	if err := h.DB.Where("id = ? AND product_id = ?", c.Param("imageId"), c.Param("id")).First(&image).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Image not found"})
		return
	}

	if objectPath, err := utils.ExtractObjectPath(image.ImageURL); err == nil {
		if err := h.Storage.DeleteFile(objectPath); err != nil {
			// The row is removed even if the bucket delete fails.
			c.Error(err)
		}
	}

	if err := h.DB.Delete(&image).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete image"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Image deleted"})
}
