package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mentor-marketplace/internal/apperr"
	"github.com/iliyamo/mentor-marketplace/internal/model"
	"github.com/iliyamo/mentor-marketplace/internal/repository"
)

// MentorHandler serves the public mentor directory.
type MentorHandler struct {
	Users *repository.UserRepo
}

func NewMentorHandler(u *repository.UserRepo) *MentorHandler { return &MentorHandler{Users: u} }

// mentorView is the public projection of a mentor account.
type mentorView struct {
	ID              uint64   `json:"id"`
	Name            string   `json:"name"`
	Bio             string   `json:"bio"`
	Skills          []string `json:"skills"`
	HourlyRateCents uint32   `json:"hourlyRateCents"`
}

func toMentorView(a model.Account) mentorView {
	return mentorView{ID: a.ID, Name: a.Name, Bio: a.Bio, Skills: a.Skills, HourlyRateCents: a.HourlyRateCents}
}

const maxPageSize = 100

// List handles GET /v1/mentors?skill&limit&offset.
func (h *MentorHandler) List(c echo.Context) error {
	limit, err := queryInt(c, "limit", 20)
	if err != nil {
		return err
	}
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		return err
	}
	mentors, err := h.Users.ListMentors(c.Request().Context(), c.QueryParam("skill"), limit, offset)
	if err != nil {
		return err
	}
	out := make([]mentorView, len(mentors))
	for i, m := range mentors {
		out[i] = toMentorView(m)
	}
	return c.JSON(http.StatusOK, list(out))
}

// Get handles GET /v1/mentors/:id.
func (h *MentorHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	m, err := h.Users.GetMentor(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toMentorView(m))
}

func queryInt(c echo.Context, name string, def int) (int, error) {
	s := c.QueryParam(name)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, apperr.Validationf("%s must be a non-negative integer", name)
	}
	return n, nil
}
