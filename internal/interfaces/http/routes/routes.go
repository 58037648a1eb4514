// internal/interfaces/http/routes/routes.go
package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/streetr/ordering-backend/internal/config"
	"github.com/streetr/ordering-backend/internal/interfaces/http/handlers"
	"github.com/streetr/ordering-backend/internal/interfaces/http/middleware"
	"gorm.io/gorm"
)

// SetupRoutes wires every API route group
func SetupRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) {
	SetupAuthRoutes(rg, db, cfg)
	SetupCatalogRoutes(rg, db)
	SetupCartRoutes(rg, db, redisClient, cfg)
	SetupCheckoutRoutes(rg, db, redisClient, cfg, log)
	SetupOrderRoutes(rg, db, cfg)
	SetupFavoriteRoutes(rg, db, cfg)
}

// SetupAuthRoutes sets up authentication related routes
func SetupAuthRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db, cfg)

	auth := rg.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/refresh", authHandler.RefreshToken)

		protected := auth.Group("")
		protected.Use(middleware.AuthMiddleware(cfg))
		{
			protected.GET("/profile", authHandler.GetProfile)
		}
	}
}

// SetupCatalogRoutes sets up public catalog browsing routes
func SetupCatalogRoutes(rg *gin.RouterGroup, db *gorm.DB) {
	catalogHandler := handlers.NewCatalogHandler(db)

	items := rg.Group("/items")
	{
		items.GET("", catalogHandler.GetItems)
		items.GET("/:id", catalogHandler.GetItem)
	}
}

// SetupCartRoutes sets up cart related routes
func SetupCartRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config) {
	cartHandler := handlers.NewCartHandler(db, redisClient, cfg)

	cart := rg.Group("/cart")
	cart.Use(middleware.AuthMiddleware(cfg))
	{
		cart.GET("", cartHandler.GetCart)
		cart.DELETE("", cartHandler.ClearCart)
		cart.POST("/items", cartHandler.AddItem)
		cart.PATCH("/items/:id", cartHandler.ChangeQuantity)
		cart.GET("/bill", cartHandler.GetBill)
		cart.PUT("/delivery", cartHandler.SetDeliveryPreference)
	}
}

// SetupCheckoutRoutes sets up payment checkout routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, db *gorm.DB, redisClient *redis.Client, cfg *config.Config, log *logrus.Logger) {
	checkoutHandler := handlers.NewCheckoutHandler(db, redisClient, cfg, log)

	checkout := rg.Group("/checkout")
	checkout.Use(middleware.AuthMiddleware(cfg))
	{
		checkout.POST("", checkoutHandler.Begin)
		checkout.POST("/complete", checkoutHandler.Complete)
		checkout.POST("/fail", checkoutHandler.Fail)
	}
}

// SetupFavoriteRoutes sets up liked-items routes
func SetupFavoriteRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	favoritesHandler := handlers.NewFavoritesHandler(db)

	favs := rg.Group("/favorites")
	favs.Use(middleware.AuthMiddleware(cfg))
	{
		favs.GET("", favoritesHandler.GetFavorites)
		favs.POST("", favoritesHandler.AddFavorite)
		favs.DELETE("/:id", favoritesHandler.RemoveFavorite)
	}
}

// SetupOrderRoutes sets up order history routes
func SetupOrderRoutes(rg *gin.RouterGroup, db *gorm.DB, cfg *config.Config) {
	orderHandler := handlers.NewOrderHandler(db)

	orders := rg.Group("/orders")
	orders.Use(middleware.AuthMiddleware(cfg))
	{
		orders.GET("", orderHandler.GetOrders)
		orders.GET("/:id", orderHandler.GetOrder)
	}
}
