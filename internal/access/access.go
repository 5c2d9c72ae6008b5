// Package access decides who a request belongs to and what role it holds.
// Tokens are self-issued HS256 JWTs; see utils.NewAccessToken.
package access

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mentor-marketplace/internal/apperr"
	"github.com/iliyamo/mentor-marketplace/internal/utils"
)

// Identity is the authenticated caller.
type Identity struct {
	UserID uint64
	Role   string
	Email  string
}

// HasRole reports whether the identity holds any of roles.
func (id Identity) HasRole(roles ...string) bool {
	for _, r := range roles {
		if id.Role == r {
			return true
		}
	}
	return false
}

// Context keys set by the JWT middleware.  user_id and role keep the
// string form other middleware (rate limiting, caching) key on.
const (
	ContextIdentity = "identity"
	ContextUserID   = "user_id"
	ContextRole     = "role"
)

// RequireSession extracts and verifies the bearer token on r.
func RequireSession(r *http.Request, secret string) (Identity, error) {
	auth := r.Header.Get("Authorization")
	raw, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || strings.TrimSpace(raw) == "" {
		return Identity{}, apperr.Wrap(apperr.ErrUnauthenticated, "missing bearer token")
	}
	claims, err := utils.ParseAccessToken(secret, strings.TrimSpace(raw))
	if err != nil {
		return Identity{}, apperr.Wrap(apperr.ErrUnauthenticated, "invalid token")
	}
	uid, err := claims.UserID()
	if err != nil || uid == 0 || claims.Role == "" {
		return Identity{}, apperr.Wrap(apperr.ErrUnauthenticated, "invalid claims")
	}
	return Identity{UserID: uid, Role: claims.Role, Email: claims.Email}, nil
}

// RequireRole fails with ErrForbidden unless id holds one of roles.
func RequireRole(id Identity, roles ...string) error {
	if !id.HasRole(roles...) {
		return apperr.Wrap(apperr.ErrForbidden, "role "+id.Role+" may not perform this action")
	}
	return nil
}

// FromContext returns the identity stored by the JWT middleware.
func FromContext(c echo.Context) (Identity, error) {
	id, ok := c.Get(ContextIdentity).(Identity)
	if !ok || id.UserID == 0 {
		return Identity{}, apperr.Wrap(apperr.ErrUnauthenticated, "no session")
	}
	return id, nil
}
