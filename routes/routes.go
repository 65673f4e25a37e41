package routes

import (
	"time"

	"storefront-backend/handlers"
	"storefront-backend/middleware"
	"storefront-backend/paypal"
	"storefront-backend/storage"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRoutes(r *gin.Engine, db *gorm.DB, storageClient storage.Client, payPal *paypal.Client) {
	// Initialize handlers
	authHandler := &handlers.AuthHandler{DB: db}
	productHandler := &handlers.ProductHandler{DB: db, Storage: storageClient}
	categoryHandler := &handlers.CategoryHandler{DB: db}
	subcategoryHandler := &handlers.SubcategoryHandler{DB: db}
	collectionHandler := &handlers.CollectionHandler{DB: db}
	cartHandler := &handlers.CartHandler{DB: db}
	checkoutHandler := &handlers.CheckoutHandler{DB: db}
	orderHandler := &handlers.OrderHandler{DB: db}
	paymentHandler := &handlers.PaymentHandler{DB: db, PayPal: payPal}
	reviewHandler := &handlers.ReviewHandler{DB: db}
	wishlistHandler := &handlers.WishlistHandler{DB: db}

	authLimiter := middleware.NewRateLimiter(10, time.Minute)

	// Every storefront request carries the anonymous cart cookie and may
	// carry a bearer token; the cart works for both identities.
	api := r.Group("/api")
	api.Use(middleware.CartSessionMiddleware())
	api.Use(middleware.OptionalAuthMiddleware())
	{
		// Auth routes
		api.POST("/auth/register", authLimiter.Middleware(), authHandler.Register)
		api.POST("/auth/login", authLimiter.Middleware(), authHandler.Login)

		// Public catalog routes
		api.GET("/products", productHandler.GetProducts)
		api.GET("/products/featured", productHandler.GetFeaturedProducts)
		api.GET("/products/:slug", productHandler.GetProductBySlug)
		api.GET("/products/:slug/reviews", reviewHandler.GetProductReviews)

		api.GET("/categories", categoryHandler.GetCategories)
		api.GET("/categories/:id", categoryHandler.GetCategory)
		api.GET("/subcategories", subcategoryHandler.GetSubcategories)
		api.GET("/collections", collectionHandler.GetCollections)
		api.GET("/collections/:slug", collectionHandler.GetCollectionBySlug)

		// Cart routes (anonymous or signed in)
		api.GET("/cart", cartHandler.GetCart)
		api.POST("/cart/items", cartHandler.AddToCart)
		api.DELETE("/cart/items/:productId", cartHandler.RemoveFromCart)
	}

	// Protected routes (require authentication)
	protected := api.Group("")
	protected.Use(middleware.AuthMiddleware())
	{
		protected.GET("/auth/profile", authHandler.GetProfile)
		protected.PUT("/auth/profile", authHandler.UpdateProfile)

		// Checkout wizard steps
		protected.PUT("/checkout/shipping-address", checkoutHandler.SaveShippingAddress)
		protected.PUT("/checkout/payment-method", checkoutHandler.SavePaymentMethod)

		// Order routes
		protected.POST("/orders", orderHandler.CreateOrder)
		protected.GET("/orders", orderHandler.GetOrders)
		protected.GET("/orders/:id", orderHandler.GetOrder)

		// PayPal flow
		protected.POST("/orders/:id/paypal", paymentHandler.CreatePayPalOrder)
		protected.POST("/orders/:id/paypal/capture", paymentHandler.CapturePayPalOrder)

		// Reviews and wishlist
		protected.POST("/products/:slug/reviews", reviewHandler.UpsertReview)
		protected.GET("/wishlist", wishlistHandler.GetWishlist)
		protected.POST("/wishlist/:slug", wishlistHandler.ToggleWishlist)
	}

	// Admin routes (require admin role)
	admin := api.Group("/admin")
	admin.Use(middleware.AuthMiddleware())
	admin.Use(middleware.AdminMiddleware())
	{
		// Product management
		admin.POST("/products", productHandler.CreateProduct)
		admin.PUT("/products/:id", productHandler.UpdateProduct)
		admin.DELETE("/products/:id", productHandler.DeleteProduct)
		admin.POST("/products/:id/images", productHandler.UploadProductImage)
		admin.DELETE("/products/:id/images/:imageId", productHandler.DeleteProductImage)

		// Catalog management
		admin.POST("/categories", categoryHandler.CreateCategory)
		admin.PUT("/categories/:id", categoryHandler.UpdateCategory)
		admin.DELETE("/categories/:id", categoryHandler.DeleteCategory)

		admin.POST("/subcategories", subcategoryHandler.CreateSubcategory)
		admin.PUT("/subcategories/:id", subcategoryHandler.UpdateSubcategory)
		admin.DELETE("/subcategories/:id", subcategoryHandler.DeleteSubcategory)

		admin.POST("/collections", collectionHandler.CreateCollection)
		admin.PUT("/collections/:id", collectionHandler.UpdateCollection)
		admin.DELETE("/collections/:id", collectionHandler.DeleteCollection)

		// Order management
		admin.GET("/orders", orderHandler.GetAllOrders)
		admin.PUT("/orders/:id/deliver", orderHandler.DeliverOrder)
		admin.PUT("/orders/:id/pay", orderHandler.MarkOrderPaid)
		admin.DELETE("/orders/:id", orderHandler.DeleteOrder)

		// User management
		admin.GET("/users", authHandler.GetUsers)
		admin.PUT("/users/:id", authHandler.UpdateUser)
		admin.DELETE("/users/:id", authHandler.DeleteUser)
	}

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
}
