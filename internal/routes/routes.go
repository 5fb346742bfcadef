package routes

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/maosdefada/cakeshop-backend/internal/handler"
	"github.com/maosdefada/cakeshop-backend/internal/middleware"
	"github.com/maosdefada/cakeshop-backend/pkg/i18n"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

// Handlers every HTTP handler the router mounts
type Handlers struct {
	Health        *handler.HealthHandler
	Catalog       *handler.CatalogHandler
	Customization *handler.CustomizationHandler
	Cart          *handler.CartHandler
	Favorite      *handler.FavoriteHandler
	Address       *handler.AddressHandler
	Order         *handler.OrderHandler
}

// Options router settings
type Options struct {
	Bundle       *i18n.Bundle
	AllowOrigins []string
	SecureCookie bool
	// RateLimiter nil disables the order limiter
	RateLimiter redis.Scripter
	RateLimit   middleware.RateLimitConfig
}

// NewEngine gin engine with the global middleware chain and every route
func NewEngine(h Handlers, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	origins := opts.AllowOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Accept-Language", "X-Shopper-ID", "X-Request-ID"},
		AllowCredentials: true,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		ExposeHeaders:    []string{"X-Request-ID", "X-Shopper-ID", "X-RateLimit-Remaining"},
		MaxAge:           86400,
	}))

	router.Use(middleware.RequestLogger())
	router.Use(middleware.Metrics())
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.I18n(opts.Bundle))

	Setup(router, h, opts)
	return router
}

// Setup configures all routes
func Setup(router *gin.Engine, h Handlers, opts Options) {
	router.GET("/health", h.Health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := router.Group("/api/v1", middleware.Shopper(opts.SecureCookie))

	// catalog
	catalog := api.Group("/catalog")
	catalog.GET("/categories", h.Catalog.ListCategories)
	catalog.GET("/products", h.Catalog.ListProducts)
	catalog.GET("/products/:id", h.Catalog.GetProduct)

	// customization sessions
	sessions := api.Group("/customizations")
	{
		sessions.POST("", h.Customization.Start)
		sessions.GET("/:id", h.Customization.Get)
		sessions.DELETE("/:id", h.Customization.Discard)
		sessions.PUT("/:id/options/:type", h.Customization.SetChoice)
		sessions.POST("/:id/options/:type/toggle", h.Customization.ToggleOption)
		sessions.POST("/:id/fillings", h.Customization.SelectFilling)
		sessions.PUT("/:id/message", h.Customization.SetMessage)
		sessions.POST("/:id/quantity", h.Customization.ChangeQuantity)
		sessions.POST("/:id/confirm", h.Customization.Confirm)
	}

	// bag
	cart := api.Group("/cart")
	{
		cart.GET("", h.Cart.GetCart)
		cart.DELETE("", h.Cart.ClearCart)
		cart.PUT("/lines/:line_id", h.Cart.UpdateLine)
		cart.DELETE("/lines/:line_id", h.Cart.RemoveLine)
		cart.PUT("/products/:product_id", h.Cart.UpdateProduct)
		cart.DELETE("/products/:product_id", h.Cart.RemoveProduct)
	}

	favorites := api.Group("/favorites")
	favorites.GET("", h.Favorite.ListFavorites)
	favorites.GET("/:product_id", h.Favorite.GetFavoriteStatus)
	favorites.POST("/:product_id/toggle", h.Favorite.ToggleFavorite)

	api.GET("/address", h.Address.GetAddress)
	api.PUT("/address", h.Address.SaveAddress)

	// orders
	api.GET("/checkout/options", h.Order.GetOptions)
	api.POST("/orders", middleware.RateLimit(opts.RateLimiter, opts.RateLimit, opts.Bundle), h.Order.SubmitOrder)
}
