package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mentor-marketplace/internal/access"
	"github.com/iliyamo/mentor-marketplace/internal/apperr"
	"github.com/iliyamo/mentor-marketplace/internal/service"
)

// AvailabilityHandler serves slot queries and mentor window management.
type AvailabilityHandler struct {
	Svc *service.AvailabilityService
}

func NewAvailabilityHandler(s *service.AvailabilityService) *AvailabilityHandler {
	return &AvailabilityHandler{Svc: s}
}

type windowReq struct {
	DayOfWeek *int   `json:"dayOfWeek" validate:"required,min=0,max=6"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	TimeZone  string `json:"timeZone" validate:"required"`
}

func (r windowReq) input() service.WindowInput {
	return service.WindowInput{DayOfWeek: *r.DayOfWeek, StartTime: r.StartTime, EndTime: r.EndTime, TimeZone: r.TimeZone}
}

type batchReq struct {
	Availabilities []windowReq `json:"availabilities" validate:"required,min=1,max=50,dive"`
}

// Slots handles GET /v1/availability.
func (h *AvailabilityHandler) Slots(c echo.Context) error {
	q := service.SlotQuery{
		StartDate:  c.QueryParam("startDate"),
		EndDate:    c.QueryParam("endDate"),
		CallerZone: c.QueryParam("timeZone"),
	}
	if q.StartDate == "" || q.EndDate == "" {
		return apperr.Validationf("startDate and endDate are required")
	}
	if s := c.QueryParam("mentorId"); s != "" {
		id, err := strconv.ParseUint(s, 10, 64)
		if err != nil || id == 0 {
			return apperr.Validationf("invalid mentorId")
		}
		q.MentorID = id
	}
	if s := c.QueryParam("slotMinutes"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return apperr.Validationf("invalid slotMinutes")
		}
		q.SlotMinutes = n
	}
	slots, err := h.Svc.GetAvailableSlots(c.Request().Context(), q)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list(slots))
}

// Create handles POST /v1/availability for the calling mentor.
func (h *AvailabilityHandler) Create(c echo.Context) error {
	id, err := access.FromContext(c)
	if err != nil {
		return err
	}
	var req windowReq
	if err := bind(c, &req); err != nil {
		return err
	}
	w, err := h.Svc.CreateWindow(c.Request().Context(), id.UserID, req.input())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, w)
}

// CreateBatch handles POST /v1/availability/batch.  Either every window is
// stored or none is.
func (h *AvailabilityHandler) CreateBatch(c echo.Context) error {
	id, err := access.FromContext(c)
	if err != nil {
		return err
	}
	var req batchReq
	if err := bind(c, &req); err != nil {
		return err
	}
	in := make([]service.WindowInput, len(req.Availabilities))
	for i, r := range req.Availabilities {
		in[i] = r.input()
	}
	ws, err := h.Svc.CreateWindows(c.Request().Context(), id.UserID, in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, list(ws))
}

// ListWindows handles GET /v1/availability/windows.
func (h *AvailabilityHandler) ListWindows(c echo.Context) error {
	id, err := access.FromContext(c)
	if err != nil {
		return err
	}
	ws, err := h.Svc.ListWindows(c.Request().Context(), id.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, list(ws))
}

// DeleteWindow handles DELETE /v1/availability/windows/:id.
func (h *AvailabilityHandler) DeleteWindow(c echo.Context) error {
	id, err := access.FromContext(c)
	if err != nil {
		return err
	}
	wid, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.Svc.DeleteWindow(c.Request().Context(), id.UserID, wid); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
