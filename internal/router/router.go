package router // package router defines how HTTP routes are registered for the API

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/iliyamo/mentor-marketplace/internal/config"
	"github.com/iliyamo/mentor-marketplace/internal/handler"
	"github.com/iliyamo/mentor-marketplace/internal/middleware"
)

// Handlers groups everything the routes dispatch to.
type Handlers struct {
	Health       handler.Health
	Auth         *handler.AuthHandler
	Profile      *handler.ProfileHandler
	Mentors      *handler.MentorHandler
	Availability *handler.AvailabilityHandler
	Bookings     *handler.BookingHandler
}

// New builds the Echo instance with the shared middleware chain and every
// route registered.  rdb may be nil, which disables caching and rate
// limiting.
func New(cfg config.Config, h Handlers, rdb *redis.Client, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(log)

	e.Use(echomw.Recover())
	e.Use(echomw.RequestIDWithConfig(echomw.RequestIDConfig{Generator: uuid.NewString}))
	e.Use(middleware.RequestLogger(log))
	if cfg.RequestTimeout > 0 {
		e.Use(echomw.ContextTimeoutWithConfig(echomw.ContextTimeoutConfig{Timeout: cfg.RequestTimeout}))
	}

	limiter := middleware.RateLimit(cfg.RateLimit, rdb, log)
	cache := middleware.ResponseCache(cfg.Cache, rdb, log)

	RegisterRoutes(e, h.Health)
	RegisterAuth(e, h.Auth, h.Profile, cfg.JWTSecret, limiter)
	RegisterPublic(e, h.Mentors, cache)
	RegisterShared(e, h.Availability, h.Bookings, cfg.JWTSecret)
	RegisterMentor(e, h.Availability, cfg.JWTSecret)
	RegisterMentee(e, h.Bookings, cfg.JWTSecret, limiter)
	return e
}

// RegisterRoutes registers routes that do not require authentication and
// sit outside /v1.
func RegisterRoutes(e *echo.Echo, health handler.Health) {
	e.GET("/healthz", health.Check)
	e.HEAD("/healthz", health.Check)
}

// RegisterAuth registers the token endpoints under /v1/auth, all behind the
// rate limiter, plus the caller's own account endpoints.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, p *handler.ProfileHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	g := e.Group("/v1/auth", limiter)
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)               // rotates the refresh token
	g.POST("/refresh-access", a.RefreshAccess) // access token only
	// Logout takes either a refresh_token body or a bearer token, so it
	// carries no JWT middleware.
	g.POST("/logout", a.Logout)

	me := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	me.GET("/me", p.Me)
	me.PUT("/profile", p.Update)
}

// RegisterPublic registers the guest-visible mentor directory.  Responses
// are cached.
func RegisterPublic(e *echo.Echo, m *handler.MentorHandler, cache echo.MiddlewareFunc) {
	g := e.Group("/v1/mentors", cache)
	g.GET("", m.List)
	g.GET("/:id", m.Get)
}

// RegisterShared registers endpoints open to any authenticated role.
func RegisterShared(e *echo.Echo, a *handler.AvailabilityHandler, b *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	g.GET("/availability", a.Slots)
	g.GET("/booking", b.List)
	g.GET("/booking/:id", b.Get)
	g.PATCH("/booking", b.UpdateStatus)
}

// Server wraps e in an http.Server with conservative timeouts.
func Server(addr string, e *echo.Echo, requestTimeout time.Duration) *http.Server {
	write := requestTimeout + 5*time.Second
	if requestTimeout <= 0 {
		write = 30 * time.Second
	}
	return &http.Server{
		Addr:              addr,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      write,
		IdleTimeout:       60 * time.Second,
	}
}
