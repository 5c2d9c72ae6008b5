package middleware

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mentor-marketplace/internal/access"
)

// RequireRole rejects callers whose role is not among roles.  It must run
// after JWTAuth.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := access.FromContext(c)
			if err != nil {
				return err
			}
			if err := access.RequireRole(id, roles...); err != nil {
				return err
			}
			return next(c)
		}
	}
}
