package middleware // middleware provides shared request processing for handlers

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mentor-marketplace/internal/access"
)

// JWTAuth validates the Bearer access token and stores the caller's
// identity in the context.  Handlers read it with access.FromContext; the
// "user_id" and "role" keys keep their string form for the rate limiter.
// Failures are returned as errors and rendered by the HTTP error handler.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			id, err := access.RequireSession(c.Request(), secret)
			if err != nil {
				return err
			}
			c.Set(access.ContextIdentity, id)
			c.Set(access.ContextUserID, strconv.FormatUint(id.UserID, 10))
			c.Set(access.ContextRole, id.Role)
			return next(c)
		}
	}
}
