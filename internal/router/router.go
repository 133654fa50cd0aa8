package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/avelines/gift-registry/internal/config"     // middleware configuration types
	"github.com/avelines/gift-registry/internal/handler"    // import the handlers that implement business logic
	"github.com/avelines/gift-registry/internal/middleware" // import middleware for identity, admin verdict, limits and caching
)

// Handlers bundles everything RegisterRoutes needs.  All handlers must
// be non-nil; Redis may be nil, in which case rate limiting and
// response caching degrade to pass-through.
type Handlers struct {
	Public *handler.PublicHandler
	Toggle *handler.ToggleHandler
	Admin  *handler.AdminGiftHandler
	Auth   *handler.AuthHandler
}

// RegisterRoutes wires the whole API onto the provided Echo instance.
// Two middlewares run on every /v1 route: VisitorIdentity resolves the
// anonymous visitor for the request, and AdminVerdict resolves the
// ambient admin yes/no.  Handlers never inspect cookies or tokens
// themselves – they read both verdicts from the context.
func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client) {
	// Health check sits outside /v1 and skips all middleware so a broken
	// Redis or database never hides a live process from the load balancer.
	e.GET("/healthz", handler.Health)

	v1 := e.Group("/v1")
	v1.Use(middleware.VisitorIdentity(cfg.Env == "prod"))
	v1.Use(middleware.AdminVerdict(cfg.JWTSecret))
	v1.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// Public read side.  The listing is the hot path, so it additionally
	// gets the short-TTL response cache (keyed per visitor – see the
	// cache middleware for why).
	v1.GET("/gifts", h.Public.ListGifts, middleware.NewRedisCache(config.LoadCacheConfig(), rdb))

	// The claim protocol.  Anonymous on purpose: visitors authenticate
	// with nothing but their identity cookie.
	v1.POST("/toggle", h.Toggle.Toggle)

	// Admin login flow.  These endpoints are public – the whole point is
	// that the caller is not an admin yet.
	v1.POST("/auth/login", h.Auth.Login)
	v1.GET("/auth/verify", h.Auth.Verify)
	v1.POST("/auth/password", h.Auth.PasswordLogin)
	v1.GET("/auth/me", h.Auth.Me)
	v1.POST("/auth/logout", h.Auth.Logout)

	// Catalog writes and settings require a verified admin session.
	admin := v1.Group("/admin")
	admin.Use(middleware.RequireAdmin())
	admin.POST("/gifts", h.Admin.Create)
	admin.PUT("/gifts/:id", h.Admin.Update)
	admin.DELETE("/gifts/:id", h.Admin.Delete)
	admin.PUT("/settings/:key", h.Admin.UpdateSetting)
}
