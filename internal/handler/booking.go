package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/mentor-marketplace/internal/access"
	"github.com/iliyamo/mentor-marketplace/internal/model"
	"github.com/iliyamo/mentor-marketplace/internal/service"
)

// BookingHandler serves booking creation, listing and status changes.
type BookingHandler struct {
	Svc *service.BookingService
}

func NewBookingHandler(s *service.BookingService) *BookingHandler { return &BookingHandler{Svc: s} }

type createBookingReq struct {
	MentorID  uint64 `json:"mentorId" validate:"required"`
	StartTime string `json:"startTime" validate:"required"`
	EndTime   string `json:"endTime" validate:"required"`
	TimeZone  string `json:"timeZone" validate:"required"`
	Type      string `json:"type" validate:"max=32"`
}

type updateStatusReq struct {
	BookingID uint64 `json:"bookingId" validate:"required"`
	Status    string `json:"status" validate:"required"`
}

// localize renders the booking's instants in the zone it was requested in.
func localize(b model.Booking) model.Booking {
	if loc, err := time.LoadLocation(b.TimeZone); err == nil && b.TimeZone != "" {
		b.StartAt, b.EndAt = b.StartAt.In(loc), b.EndAt.In(loc)
	}
	return b
}

// Create handles POST /v1/booking.  The caller is the requester.
func (h *BookingHandler) Create(c echo.Context) error {
	id, err := access.FromContext(c)
	if err != nil {
		return err
	}
	var req createBookingReq
	if err := bind(c, &req); err != nil {
		return err
	}
	b, err := h.Svc.CreateBooking(c.Request().Context(), service.CreateBookingInput{
		RequesterID: id.UserID,
		MentorID:    req.MentorID,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
		TimeZone:    req.TimeZone,
		Type:        req.Type,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, localize(b))
}

// List handles GET /v1/booking?role=mentor|mentee.
func (h *BookingHandler) List(c echo.Context) error {
	id, err := access.FromContext(c)
	if err != nil {
		return err
	}
	items, err := h.Svc.ListBookings(c.Request().Context(), id.UserID, c.QueryParam("role"))
	if err != nil {
		return err
	}
	for i := range items {
		items[i].Booking = localize(items[i].Booking)
	}
	return c.JSON(http.StatusOK, list(items))
}

// Get handles GET /v1/booking/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := access.FromContext(c)
	if err != nil {
		return err
	}
	bid, err := pathID(c, "id")
	if err != nil {
		return err
	}
	b, err := h.Svc.GetBooking(c.Request().Context(), id.UserID, bid)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, localize(b))
}

// UpdateStatus handles PATCH /v1/booking.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	id, err := access.FromContext(c)
	if err != nil {
		return err
	}
	var req updateStatusReq
	if err := bind(c, &req); err != nil {
		return err
	}
	b, err := h.Svc.UpdateBookingStatus(c.Request().Context(), id.UserID, req.BookingID, req.Status)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, localize(b))
}
