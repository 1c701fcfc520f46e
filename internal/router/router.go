// Package router defines how HTTP routes are registered for the API.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/campusnav/campus-navigator/internal/config"
	"github.com/campusnav/campus-navigator/internal/handler"
	"github.com/campusnav/campus-navigator/internal/middleware"
	"github.com/campusnav/campus-navigator/internal/repository"
)

// Handlers bundles everything the route table needs. All fields must be
// non-nil; main builds them once at startup.
type Handlers struct {
	Auth      *handler.AuthHandler
	Place     *handler.PlaceHandler
	Approval  *handler.ApprovalHandler
	Parking   *handler.ParkingHandler
	Location  *handler.LocationHandler
	Reference *handler.ReferenceHandler
}

// Register wires every route of the API onto the provided Echo instance.
//
// The session middleware runs globally so that public endpoints can still
// distinguish admins (e.g. place detail visibility). Write endpoints then
// layer RequireAuth / RequireRole on top. Public GET endpoints sit behind
// the Redis response cache when it is enabled; rdb may be nil, in which
// case the cache middleware becomes a pass-through.
func Register(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client, users *repository.UserRepo) {
	e.Use(middleware.Session(cfg.JWTSecret, users))
	e.Use(middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb))

	// Health check for load balancers and monitoring.
	e.GET("/healthz", handler.Health)

	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	// Public browse endpoints. Place detail stays out of the cache because
	// its visibility depends on the caller's role.
	e.GET("/v1/places", h.Place.List, cache)
	e.GET("/v1/places/:id", h.Place.Get)
	e.GET("/v1/parking", h.Parking.List, cache)
	e.GET("/v1/categories", h.Reference.Categories, cache)
	e.GET("/v1/blocks", h.Reference.Blocks, cache)

	// Session lifecycle.
	a := e.Group("/v1/auth")
	a.POST("/register", h.Auth.Register)
	a.POST("/login", h.Auth.Login)
	a.POST("/logout", h.Auth.Logout)
	a.GET("/me", h.Auth.Me, middleware.RequireAuth())

	// Endpoints for any signed-in user.
	auth := e.Group("/v1")
	auth.Use(middleware.RequireAuth())
	auth.POST("/places", h.Place.Create)
	auth.POST("/location/share", h.Location.Share)
	auth.GET("/location/active", h.Location.Active)
	auth.DELETE("/location/share", h.Location.Stop)

	// Admin-only moderation and parking management.
	admin := e.Group("/v1/admin")
	admin.Use(middleware.RequireAuth())
	admin.Use(middleware.RequireRole(repository.RoleAdmin))
	admin.GET("/approvals", h.Approval.ListPending)
	admin.POST("/approvals/:placeId", h.Approval.Decide)
	admin.POST("/parking/slots/:id/status", h.Parking.SetSlotStatus)
	admin.POST("/parking/slots/:id/advance", h.Parking.AdvanceSlot)

	// Place updates are admin-only but live under the resource path.
	e.PUT("/v1/places/:id", h.Place.Update,
		middleware.RequireAuth(), middleware.RequireRole(repository.RoleAdmin))
}
