// Package router wires the HTTP surface: route registration per
// resource group, JWT gating, the admin group and the Redis-backed
// cache and rate-limit middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/Neruaka/jana-distribution/internal/config"
	"github.com/Neruaka/jana-distribution/internal/handler"
	"github.com/Neruaka/jana-distribution/internal/middleware"
	"github.com/Neruaka/jana-distribution/internal/model"
)

// Deps bundles everything route registration needs.
type Deps struct {
	JWTSecret string
	Redis     *redis.Client // nil disables cache and rate limiting
	Cache     config.CacheConfig
	RateLimit config.RateLimitConfig

	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Cart       *handler.CartHandler
	Products   *handler.ProductHandler
	Categories *handler.CategoryHandler
	Orders     *handler.OrderHandler
	Settings   *handler.SettingsHandler
	Stats      *handler.StatsHandler
	Users      *handler.UserHandler
}

// Register mounts every route under /api.
func Register(e *echo.Echo, d Deps) {
	authRequired := middleware.JWTAuth(d.JWTSecret)
	adminOnly := middleware.RequireRole(model.RoleAdmin)
	cached := middleware.NewRedisCache(d.Cache, d.Redis)
	limited := middleware.NewTokenBucket(d.RateLimit, d.Redis)

	api := e.Group("/api")
	api.GET("/health", d.Health.Check)

	// Auth: public endpoints are rate limited against credential
	// stuffing and reset-token fishing.
	auth := api.Group("/auth")
	auth.POST("/register", d.Auth.Register, limited)
	auth.POST("/login", d.Auth.Login, limited)
	auth.POST("/forgot-password", d.Auth.ForgotPassword, limited)
	auth.POST("/reset-password", d.Auth.ResetPassword, limited)
	auth.GET("/me", d.Auth.Me, authRequired)
	auth.PUT("/me", d.Auth.UpdateProfile, authRequired)
	auth.GET("/profile", d.Auth.Me, authRequired)
	auth.PUT("/profile", d.Auth.UpdateProfile, authRequired)
	auth.PUT("/password", d.Auth.ChangePassword, authRequired)
	auth.DELETE("/account", d.Auth.DeleteAccount, authRequired)

	// Public catalog reads go through the response cache.
	api.GET("/products", d.Products.List, cached)
	api.GET("/products/low-stock", d.Products.LowStock, authRequired, adminOnly)
	api.GET("/products/slug/:slug", d.Products.GetBySlug, cached)
	api.GET("/products/:id", d.Products.Get, cached)
	api.GET("/categories", d.Categories.List, cached)
	api.GET("/categories/slug/:slug", d.Categories.GetBySlug, cached)
	api.GET("/categories/:id", d.Categories.Get, cached)

	// Cart: everything requires a logged-in user.
	cart := api.Group("/cart", authRequired)
	cart.GET("", d.Cart.Get)
	cart.DELETE("", d.Cart.Clear)
	cart.GET("/count", d.Cart.Count)
	cart.GET("/validate", d.Cart.Validate)
	cart.POST("/fix", d.Cart.Fix)
	cart.POST("/items", d.Cart.AddItem)
	cart.PUT("/items/:id", d.Cart.UpdateItem)
	cart.DELETE("/items/:id", d.Cart.RemoveItem)

	// Orders: clients manage their own, admins everything.
	orders := api.Group("/orders", authRequired)
	orders.POST("", d.Orders.Create)
	orders.GET("", d.Orders.List)
	orders.GET("/:id", d.Orders.Get)
	orders.POST("/:id/cancel", d.Orders.Cancel)
	orders.PUT("/:id/status", d.Orders.UpdateStatus, adminOnly)

	// Settings: public reads for the storefront, admin writes.
	api.GET("/settings", d.Settings.List)
	api.GET("/settings/:key", d.Settings.Get)

	// Admin group.
	admin := api.Group("/admin", authRequired, adminOnly)
	admin.POST("/products", d.Products.Create)
	admin.PUT("/products/:id", d.Products.Update)
	admin.PATCH("/products/:id/active", d.Products.SetActive)
	admin.DELETE("/products/:id", d.Products.Delete)
	admin.POST("/categories", d.Categories.Create)
	admin.PUT("/categories/:id", d.Categories.Update)
	admin.DELETE("/categories/:id", d.Categories.Delete)
	admin.GET("/clients", d.Users.List)
	admin.PATCH("/clients/:id/active", d.Users.SetActive)
	admin.GET("/stats", d.Stats.Dashboard)
	admin.PUT("/settings/:key", d.Settings.Put)
	admin.DELETE("/settings/:key", d.Settings.Delete)
}
