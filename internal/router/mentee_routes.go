package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mentor-marketplace/internal/handler"
	"github.com/iliyamo/mentor-marketplace/internal/middleware"
	"github.com/iliyamo/mentor-marketplace/internal/model"
)

// RegisterMentee registers MENTEE-scoped endpoints.  Only mentees request
// bookings; the limiter runs after authentication so per-user keys work.
func RegisterMentee(e *echo.Echo, b *handler.BookingHandler, jwtSecret string, limiter echo.MiddlewareFunc) {
	e.POST("/v1/booking", b.Create,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleMentee),
		limiter,
	)
}
