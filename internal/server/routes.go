package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"golang.org/x/time/rate"
)

// RegisterRoutes configures all API routes, middleware, and error handlers
func RegisterRoutes(e *echo.Echo, h *Handlers, cfg ServerConfig) {
	// Set custom error handler for consistent JSON responses
	e.HTTPErrorHandler = NotFoundJSON()

	// Apply global middleware
	e.Use(SetJSONContentType) // Ensure all responses are JSON
	e.Use(SetNoCacheHeaders)  // Prevent caching of API responses

	// Optional API key authentication
	if cfg.APIKey != "" {
		e.Use(middleware.KeyAuthWithConfig(middleware.KeyAuthConfig{
			KeyLookup: "header:X-API-Key", // Look for API key in X-API-Key header
			Validator: func(key string, c echo.Context) (bool, error) {
				return key == cfg.APIKey, nil // Simple string comparison
			},
		}))
	}

	// API v1 routes
	v1 := e.Group("/v1")
	v1.GET("/health", h.Health)       // Health check endpoint
	v1.GET("/ops/recent", h.RecentOps) // Recent committed operations

	// Pool state and trading
	pools := v1.Group("/pools")
	pools.POST("", h.PoolCreate)
	pools.GET("", h.PoolList)
	pools.GET("/:id", h.PoolGet)
	pools.DELETE("/:id", h.PoolDelete)
	pools.POST("/:id/quote", h.Quote)
	pools.POST("/:id/swap", h.Swap)
	pools.POST("/:id/liquidity/add", h.LiquidityAdd)
	pools.POST("/:id/liquidity/remove", h.LiquidityRemove)
	pools.GET("/:id/ops", h.PoolOps)

	// Governance endpoints with rate limiting
	admin := v1.Group("/pools/:id/admin")
	admin.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
		Rate:      rate.Limit(1), // 1 request per second
		Burst:     5,             // Allow burst of 5 requests
		ExpiresIn: 2 * time.Minute,
	})))
	admin.POST("/assets", h.AssetAdd)
	admin.DELETE("/assets/:index", h.AssetRemove)
	admin.PUT("/fee", h.FeeUpdate)
	admin.PUT("/assets/:index/weight", h.WeightUpdate)

	// Catch-all route for 404 responses
	e.RouteNotFound("/*", func(c echo.Context) error {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "not found", Code: http.StatusNotFound})
	})
}
