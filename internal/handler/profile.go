package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mentor-marketplace/internal/access"
	"github.com/iliyamo/mentor-marketplace/internal/repository"
)

// ProfileHandler serves the caller's own account.
type ProfileHandler struct {
	Users *repository.UserRepo
}

func NewProfileHandler(u *repository.UserRepo) *ProfileHandler { return &ProfileHandler{Users: u} }

type profileReq struct {
	Name            *string   `json:"name" validate:"omitempty,max=120"`
	Bio             *string   `json:"bio" validate:"omitempty,max=2000"`
	Skills          *[]string `json:"skills" validate:"omitempty,max=20,dive,max=40"`
	HourlyRateCents *uint32   `json:"hourlyRateCents" validate:"omitempty,max=10000000"`
}

// Me returns the authenticated account.
func (h *ProfileHandler) Me(c echo.Context) error {
	id, err := access.FromContext(c)
	if err != nil {
		return err
	}
	a, err := h.Users.GetByID(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}

// Update handles PUT /v1/profile.  Omitted fields keep their value.  The
// hourly rate only applies to mentors.
func (h *ProfileHandler) Update(c echo.Context) error {
	id, err := access.FromContext(c)
	if err != nil {
		return err
	}
	var req profileReq
	if err := bind(c, &req); err != nil {
		return err
	}
	upd := repository.ProfileUpdate{Name: req.Name, Bio: req.Bio, HourlyRateCents: req.HourlyRateCents}
	if req.Skills != nil {
		upd.Skills, upd.SkillsSet = *req.Skills, true
	}
	a, err := h.Users.UpdateProfile(c.Request().Context(), id.UserID, upd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, a)
}
