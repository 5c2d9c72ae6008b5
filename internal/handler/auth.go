package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mentor-marketplace/internal/access"
	"github.com/iliyamo/mentor-marketplace/internal/apperr"
	"github.com/iliyamo/mentor-marketplace/internal/config"
	"github.com/iliyamo/mentor-marketplace/internal/model"
	"github.com/iliyamo/mentor-marketplace/internal/repository"
	"github.com/iliyamo/mentor-marketplace/internal/utils"
)

// AuthHandler bundles dependencies for auth endpoints.
type AuthHandler struct {
	Cfg    config.Config
	Users  *repository.UserRepo
	Tokens *repository.TokenRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, t *repository.TokenRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Tokens: t}
}

// ----- DTOs -----

type registerReq struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Role     string `json:"role" validate:"required,oneof=MENTOR MENTEE"`
	Name     string `json:"name" validate:"max=120"`
}
type loginReq struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}
type refreshReq struct {
	RefreshToken string `json:"refresh_token"`
}

type tokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}
type userPart struct {
	ID    uint64 `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
	Name  string `json:"name"`
}
type authResp struct {
	User    userPart  `json:"user"`
	Access  tokenPart `json:"access"`
	Refresh tokenPart `json:"refresh"`
}

func toUserPart(u model.Account) userPart {
	return userPart{ID: u.ID, Email: u.Email, Role: u.Role, Name: u.Name}
}

var errBadCredentials = apperr.Wrap(apperr.ErrUnauthenticated, "invalid credentials")

// Register creates an account and returns a token pair immediately.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return apperr.Validationf("invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Role = strings.ToUpper(strings.TrimSpace(req.Role))
	req.Name = strings.TrimSpace(req.Name)
	if err := c.Validate(&req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	uid, err := h.Users.Create(ctx, req.Email, req.Password, req.Role, req.Name, h.Cfg.BcryptCost)
	if err != nil {
		return err
	}
	resp, err := h.issue(c, model.Account{ID: uid, Email: req.Email, Role: req.Role, Name: req.Name})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, resp)
}

// Login verifies credentials and returns a new pair.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := bind(c, &req); err != nil {
		return err
	}
	u, err := h.Users.GetByEmail(c.Request().Context(), req.Email)
	if errors.Is(err, apperr.ErrNotFound) {
		return errBadCredentials
	}
	if err != nil {
		return err
	}
	if !u.IsActive || !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return errBadCredentials
	}
	resp, err := h.issue(c, u)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

// Refresh exchanges a live refresh token for a new pair.  The old token
// is revoked in the same transaction that stores its replacement.
func (h *AuthHandler) Refresh(c echo.Context) error {
	hash, err := refreshHash(c)
	if err != nil {
		return err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return err
	}
	userID, err := h.Tokens.Rotate(c.Request().Context(), hash, utils.HashRefreshRaw(refresh.Raw), refresh.Exp)
	if err != nil {
		return err
	}
	u, err := h.activeUser(c, userID)
	if err != nil {
		return err
	}
	at, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: at.Token, Expires: at.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	})
}

// RefreshAccess returns a new access token without rotating the refresh
// token.
func (h *AuthHandler) RefreshAccess(c echo.Context) error {
	hash, err := refreshHash(c)
	if err != nil {
		return err
	}
	userID, err := h.Tokens.ValidateRefresh(c.Request().Context(), hash)
	if err != nil {
		return err
	}
	u, err := h.activeUser(c, userID)
	if err != nil {
		return err
	}
	at, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, echo.Map{
		"access": tokenPart{Token: at.Token, Expires: at.Exp},
	})
}

// Logout revokes one session when a refresh_token is posted, or every
// session of the bearer when only an Authorization header is present.
func (h *AuthHandler) Logout(c echo.Context) error {
	var req refreshReq
	_ = c.Bind(&req)
	raw := strings.TrimSpace(req.RefreshToken)
	ctx := c.Request().Context()

	if raw != "" {
		if err := h.Tokens.RevokeByHash(ctx, utils.HashRefreshRaw(raw)); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	}
	if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
		return apperr.Validationf("provide Authorization header or refresh_token")
	}
	id, err := access.RequireSession(c.Request(), h.Cfg.JWTSecret)
	if err != nil {
		return err
	}
	if err := h.Tokens.RevokeAllForUser(ctx, id.UserID); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AuthHandler) issue(c echo.Context, u model.Account) (authResp, error) {
	at, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Role, u.Email, h.Cfg.AccessTTLMin)
	if err != nil {
		return authResp{}, err
	}
	refresh, err := utils.NewRefreshToken(h.Cfg.RefreshTTLDays)
	if err != nil {
		return authResp{}, err
	}
	if err := h.Tokens.StoreRefresh(c.Request().Context(), u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return authResp{}, err
	}
	return authResp{
		User:    toUserPart(u),
		Access:  tokenPart{Token: at.Token, Expires: at.Exp},
		Refresh: tokenPart{Token: refresh.Raw, Expires: refresh.Exp}, // raw back to client
	}, nil
}

// activeUser loads the refresh token's owner; a vanished or deactivated
// account invalidates the token.
func (h *AuthHandler) activeUser(c echo.Context, id uint64) (model.Account, error) {
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if errors.Is(err, apperr.ErrNotFound) || (err == nil && !u.IsActive) {
		return model.Account{}, apperr.Wrap(apperr.ErrUnauthenticated, "invalid refresh token")
	}
	return u, err
}

func refreshHash(c echo.Context) (string, error) {
	var req refreshReq
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.RefreshToken) == "" {
		return "", apperr.Validationf("refresh_token required")
	}
	return utils.HashRefreshRaw(strings.TrimSpace(req.RefreshToken)), nil
}
