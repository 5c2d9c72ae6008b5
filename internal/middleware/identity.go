package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mentor-marketplace/internal/access"
)

// currentUserID returns the caller's id as set by JWTAuth, or "anon" on
// public routes.
func currentUserID(c echo.Context) string {
	if s, ok := c.Get(access.ContextUserID).(string); ok && s != "" {
		return s
	}
	return "anon"
}
