// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/your-org/storefront-checkout/internal/config"
	"github.com/your-org/storefront-checkout/internal/interfaces/http/handlers"
	"github.com/your-org/storefront-checkout/internal/interfaces/http/middleware"
)

// SetupRoutes wires every route group under the API prefix
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	SetupBasketRoutes(rg, db, redisClient, cfg)
	SetupCheckoutRoutes(rg, db, redisClient, cfg)
	SetupDiscountRoutes(rg, db, redisClient, cfg)
	SetupOrderRoutes(rg, db, redisClient, cfg)
}

// SetupBasketRoutes sets up basket related routes. Basket routes work for
// guests and authenticated users alike; the service picks the authoritative
// basket source from the (optional) authentication.
func SetupBasketRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	basketHandler := handlers.NewBasketHandler(db, redisClient, cfg)

	basket := rg.Group("/basket")
	basket.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		basket.GET("", basketHandler.GetBasket)
		basket.DELETE("", basketHandler.ClearBasket)
		basket.POST("/items", basketHandler.AddItem)
		basket.PUT("/items/:id", basketHandler.UpdateItem)
		basket.DELETE("/items/:id", basketHandler.RemoveItem)
	}
}

// SetupCheckoutRoutes sets up checkout flow routes. Stage gating itself
// decides where authentication is required, so the routes use optional auth.
func SetupCheckoutRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	checkoutHandler := handlers.NewCheckoutHandler(db, redisClient, cfg)
	receiptHandler := handlers.NewReceiptHandler(db, redisClient, cfg)

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		checkout.POST("/stage", checkoutHandler.Navigate)
		checkout.GET("/session", checkoutHandler.GetSession)
		checkout.PUT("/session", checkoutHandler.SaveSession)
		checkout.DELETE("/session", checkoutHandler.ClearSession)
		checkout.GET("/summary", checkoutHandler.GetSummary)
		checkout.POST("/submit", checkoutHandler.Submit)
		checkout.GET("/receipt", receiptHandler.Preview)
	}
}

// SetupDiscountRoutes sets up promo code routes
func SetupDiscountRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	discountHandler := handlers.NewDiscountHandler(db, redisClient, cfg)

	discount := rg.Group("/discount")
	discount.Use(middleware.OptionalAuthMiddleware(cfg))
	{
		discount.GET("", discountHandler.GetApplied)
		discount.POST("/apply", discountHandler.Apply)
		discount.DELETE("", discountHandler.Clear)
	}
}

// SetupOrderRoutes sets up order routes. All order routes require
// authentication.
func SetupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(db, cfg)
	receiptHandler := handlers.NewReceiptHandler(db, redisClient, cfg)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("/:id", orderHandler.GetOrder)
		orders.GET("/:id/receipt", receiptHandler.OrderReceipt)
	}
}
