// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/shopverse/storefront-backend/internal/config"
	"github.com/shopverse/storefront-backend/internal/handlers"
	"github.com/shopverse/storefront-backend/internal/middleware"
	"github.com/shopverse/storefront-backend/internal/services"
	"github.com/shopverse/storefront-backend/internal/utils"
)

func Initialize(db *gorm.DB, cfg *config.Config) *gin.Engine {
	// Initialize services
	storageService, _ := services.NewStorageService(cfg)
	gateway := services.NewStripeGateway(cfg)

	authService := services.NewAuthService(db, cfg)
	userService := services.NewUserService(db)
	productService := services.NewProductService(db)
	reviewService := services.NewReviewService(db)
	orderService := services.NewOrderService(db, cfg)
	paymentService := services.NewPaymentService(db, cfg, gateway, orderService)
	wishlistService := services.NewWishlistService(db)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService, storageService)
	userHandler := handlers.NewUserHandler(userService)
	productHandler := handlers.NewProductHandler(productService, storageService)
	reviewHandler := handlers.NewReviewHandler(reviewService)
	orderHandler := handlers.NewOrderHandler(orderService)
	paymentHandler := handlers.NewPaymentHandler(paymentService)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)

	// Set JWT secret
	utils.SetJWTSecret(cfg.JWT.SecretKey)

	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS(cfg))
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	api := r.Group("/api")
	{
		// Authentication routes
		auth := api.Group("/auth")
		auth.Use(middleware.AuthRateLimit())
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)
			auth.POST("/logout", middleware.AuthRequired(), authHandler.Logout)
			auth.GET("/me", middleware.AuthRequired(), authHandler.Me)
			auth.PUT("/updatedetails", middleware.AuthRequired(), authHandler.UpdateDetails)
			auth.POST("/avatar", middleware.AuthRequired(), middleware.UploadRateLimit(), authHandler.UploadAvatar)
			auth.PUT("/updatepassword", middleware.AuthRequired(), authHandler.UpdatePassword)
		}

		// User management routes (admin only)
		users := api.Group("/users")
		users.Use(middleware.AuthRequired(), middleware.AdminRequired())
		{
			users.GET("", userHandler.ListUsers)
			users.GET("/stats", userHandler.GetUserStats)
			users.GET("/:id", userHandler.GetUser)
			users.PUT("/:id", userHandler.UpdateUser)
			users.DELETE("/:id", userHandler.DeleteUser)
		}

		// Catalog routes
		products := api.Group("/products")
		{
			// Public reads carry the caller's identity when a token is
			// present so responses can be personalized.
			products.GET("", middleware.OptionalAuth(), productHandler.ListProducts)
			products.GET("/featured", productHandler.GetFeatured)
			products.GET("/categories", productHandler.GetCategories)
			products.GET("/:id", middleware.OptionalAuth(), productHandler.GetProduct)
			products.POST("/:id/reviews", middleware.AuthRequired(), reviewHandler.AddReviewForProduct)

			admin := products.Group("")
			admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
			{
				admin.POST("", productHandler.CreateProduct)
				admin.PUT("/:id", productHandler.UpdateProduct)
				admin.DELETE("/:id", productHandler.DeleteProduct)
				admin.POST("/upload-images", middleware.UploadRateLimit(), productHandler.UploadImages)
			}
		}

		// Review routes
		reviews := api.Group("/reviews")
		{
			reviews.GET("/product/:productId", reviewHandler.ListForProduct)

			protected := reviews.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("/product/:productId", reviewHandler.AddReview)
				protected.GET("/my-reviews", reviewHandler.ListMyReviews)
				protected.PUT("/:productId", reviewHandler.UpdateReview)
				protected.DELETE("/:productId", reviewHandler.DeleteReview)
			}

			admin := reviews.Group("")
			admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
			{
				admin.GET("", reviewHandler.ListAllReviews)
				admin.DELETE("/:productId/:reviewId", reviewHandler.AdminDeleteReview)
			}
		}

		// Order routes
		orders := api.Group("/orders")
		orders.Use(middleware.AuthRequired())
		{
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("/myorders", orderHandler.GetMyOrders)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PUT("/:id/pay", orderHandler.PayOrder)
			orders.POST("/:id/refund", orderHandler.RequestRefund)

			admin := orders.Group("")
			admin.Use(middleware.AdminRequired())
			{
				admin.GET("", orderHandler.ListOrders)
				admin.PUT("/:id/deliver", orderHandler.DeliverOrder)
				admin.PUT("/:id/status", orderHandler.UpdateOrderStatus)
			}
		}

		// Payment routes. The webhook stays outside AuthRequired: it is
		// authenticated by its signature, not a bearer token.
		payments := api.Group("/payments")
		{
			payments.POST("/webhook", paymentHandler.HandleWebhook)
			payments.GET("/methods", paymentHandler.GetPaymentMethods)

			protected := payments.Group("")
			protected.Use(middleware.AuthRequired())
			{
				protected.POST("/create-payment-intent", paymentHandler.CreatePaymentIntent)
				protected.POST("/confirm", paymentHandler.ConfirmPayment)
			}

			admin := payments.Group("")
			admin.Use(middleware.AuthRequired(), middleware.AdminRequired())
			{
				admin.POST("/refund", paymentHandler.RefundPayment)
			}
		}

		// Wishlist routes
		wishlist := api.Group("/wishlist")
		wishlist.Use(middleware.AuthRequired())
		{
			wishlist.GET("", wishlistHandler.GetWishlist)
			wishlist.DELETE("", wishlistHandler.ClearWishlist)
			wishlist.GET("/count", wishlistHandler.CountWishlist)
			wishlist.GET("/check/:productId", wishlistHandler.CheckWishlist)
			wishlist.POST("/:productId", wishlistHandler.AddToWishlist)
			wishlist.DELETE("/:productId", wishlistHandler.RemoveFromWishlist)
		}
	}

	return r
}
