// Package router wires HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/travel-reservation/internal/config"
	"github.com/iliyamo/travel-reservation/internal/handler"
	"github.com/iliyamo/travel-reservation/internal/middleware"
	"github.com/iliyamo/travel-reservation/internal/model"
)

// RegisterRoutes registers routes that require no authentication.
// Currently that is only the health check used by load balancers.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication endpoints. Register, login,
// refresh and logout live under /v1/auth and require no session; /v1/me
// sits behind the JWT middleware.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// /refresh rotates the refresh token, /refresh-access only issues a
	// new access token.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.GET("/me", a.Me)
}

// RegisterPublic registers the unauthenticated catalog endpoints.
// Responses are cached in Redis when caching is enabled; country info
// is excluded because the country service keeps its own cache.
func RegisterPublic(e *echo.Echo, b *handler.BrowseHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	cached := e.Group("", middleware.ResponseCache(cacheCfg, rdb))
	cached.GET("/v1/destinations", b.ListDestinations)
	cached.GET("/v1/destinations/:id", b.GetDestination)
	cached.GET("/v1/packages", b.ListPackages)
	cached.GET("/v1/packages/:id", b.GetPackage)

	e.GET("/v1/destinations/:id/country", b.CountryInfo)
}

// RegisterCustomer registers booking endpoints for authenticated users.
// Any authenticated role may reserve and view its own history.
func RegisterCustomer(e *echo.Echo, r *handler.ReservationHandler, jwtSecret string) {
	g := e.Group("/v1")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleClient, model.RoleAdmin))
	g.POST("/packages/:id/reservations", r.ReservePackage)
	g.POST("/destinations/:id/reservations", r.ReserveDestination)
	g.GET("/my-reservations", r.MyReservations)
}

// RegisterAdmin registers reservation management endpoints restricted
// to the ADMIN role.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string) {
	g := e.Group("/v1/admin")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.RequireRole(model.RoleAdmin))
	g.GET("/reservations", a.ListReservations)
	g.PATCH("/reservations/:id", a.UpdateReservation)
	g.DELETE("/reservations/:id", a.DeleteReservation)
}
