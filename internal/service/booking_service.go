package service

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/mentor-marketplace/internal/apperr"
	"github.com/iliyamo/mentor-marketplace/internal/model"
	"github.com/iliyamo/mentor-marketplace/internal/queue"
	"github.com/iliyamo/mentor-marketplace/internal/repository"
	"github.com/iliyamo/mentor-marketplace/internal/timeconv"
)

// publishTimeout bounds how long a request waits on the broker.
const publishTimeout = 3 * time.Second

// BookingStore is the persistence the booking service needs.
type BookingStore interface {
	CreateExclusive(ctx context.Context, b *model.Booking, admit repository.AdmitFunc) error
	GetByID(ctx context.Context, id uint64) (model.Booking, error)
	ListForParticipant(ctx context.Context, userID uint64, asMentor bool) ([]model.BookingDetail, error)
	UpdateStatus(ctx context.Context, id uint64, from, to model.BookingStatus) (model.Booking, error)
}

// CreateBookingInput is a booking request.  StartTime and EndTime are wall
// clock in TimeZone unless they carry an explicit offset.
type CreateBookingInput struct {
	RequesterID uint64
	MentorID    uint64
	StartTime   string
	EndTime     string
	TimeZone    string
	Type        string
}

// BookingService creates bookings and drives their status.
type BookingService struct {
	store  BookingStore
	events queue.Publisher
	log    zerolog.Logger
}

// NewBookingService wires the service.  A nil publisher drops events.
func NewBookingService(store BookingStore, events queue.Publisher, log zerolog.Logger) *BookingService {
	if events == nil {
		events = queue.NopPublisher{}
	}
	return &BookingService{store: store, events: events, log: log.With().Str("component", "booking").Logger()}
}

// CreateBooking validates in and persists a pending booking.  The
// containment and overlap checks and the insert share one transaction.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (model.Booking, error) {
	if in.RequesterID == 0 {
		return model.Booking{}, apperr.Validationf("requester is required")
	}
	if in.MentorID == 0 {
		return model.Booking{}, apperr.Validationf("mentorId is required")
	}
	if in.MentorID == in.RequesterID {
		return model.Booking{}, apperr.Validationf("cannot book yourself")
	}
	if strings.TrimSpace(in.StartTime) == "" || strings.TrimSpace(in.EndTime) == "" {
		return model.Booking{}, apperr.Validationf("startTime and endTime are required")
	}
	loc, err := timeconv.LoadZone(in.TimeZone)
	if err != nil {
		return model.Booking{}, err
	}
	start, err := timeconv.ParseLocal(in.StartTime, loc)
	if err != nil {
		return model.Booking{}, err
	}
	end, err := timeconv.ParseLocal(in.EndTime, loc)
	if err != nil {
		return model.Booking{}, err
	}
	if !start.Before(end) {
		return model.Booking{}, apperr.Validationf("startTime must be before endTime")
	}
	typ := strings.TrimSpace(in.Type)
	if typ == "" {
		typ = model.DefaultBookingType
	}
	if len(typ) > model.MaxBookingTypeLen {
		return model.Booking{}, apperr.Validationf("type must be at most %d bytes", model.MaxBookingTypeLen)
	}

	b := model.Booking{
		MentorID:    in.MentorID,
		RequesterID: in.RequesterID,
		StartAt:     start.UTC(),
		EndAt:       end.UTC(),
		TimeZone:    loc.String(),
		Status:      model.StatusPending,
		Type:        typ,
	}
	err = s.store.CreateExclusive(ctx, &b, func(windows []model.AvailabilityWindow) error {
		if !withinAnyWindow(b.StartAt, b.EndAt, windows) {
			return apperr.Wrap(apperr.ErrSlotUnavailable, "the requested time is outside the mentor's availability")
		}
		return nil
	})
	if err != nil {
		return model.Booking{}, err
	}
	s.log.Info().Uint64("booking_id", b.ID).Uint64("mentor_id", b.MentorID).Uint64("requester_id", b.RequesterID).Msg("booking created")
	s.publish(ctx, queue.NewBookingEvent(queue.EventBookingCreated, b, ""))
	return b, nil
}

// withinAnyWindow reports whether [start, end) lies inside one window on
// the booking's date, evaluated in the window's own zone.
func withinAnyWindow(start, end time.Time, windows []model.AvailabilityWindow) bool {
	for _, w := range windows {
		loc, err := timeconv.LoadZone(w.TimeZone)
		if err != nil {
			continue
		}
		d := timeconv.DateOf(start.In(loc))
		if int(d.Weekday()) != w.DayOfWeek {
			continue
		}
		sc, err := timeconv.ParseClock(w.StartTime)
		if err != nil {
			continue
		}
		ec, err := timeconv.ParseClock(w.EndTime)
		if err != nil {
			continue
		}
		ws, we := timeconv.At(d, sc, loc), timeconv.At(d, ec, loc)
		if !start.Before(ws) && !end.After(we) {
			return true
		}
	}
	return false
}

// ListBookings returns the caller's bookings as mentor or as mentee,
// ordered by start time.
func (s *BookingService) ListBookings(ctx context.Context, callerID uint64, role string) ([]model.BookingDetail, error) {
	switch strings.ToLower(strings.TrimSpace(role)) {
	case "mentor":
		return s.store.ListForParticipant(ctx, callerID, true)
	case "mentee":
		return s.store.ListForParticipant(ctx, callerID, false)
	}
	return nil, apperr.Validationf("role must be mentor or mentee")
}

// GetBooking returns one booking the caller takes part in.  Bookings of
// other users are reported as not found.
func (s *BookingService) GetBooking(ctx context.Context, callerID, bookingID uint64) (model.Booking, error) {
	b, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	if b.MentorID != callerID && b.RequesterID != callerID {
		return model.Booking{}, apperr.Wrap(apperr.ErrNotFound, "booking not found")
	}
	return b, nil
}

// UpdateBookingStatus moves a booking to status.  The mentor may apply any
// allowed transition; the requester may only cancel.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, callerID, bookingID uint64, status string) (model.Booking, error) {
	to, ok := model.ParseStatus(status)
	if !ok {
		return model.Booking{}, apperr.Validationf("unknown status %q", status)
	}
	b, err := s.store.GetByID(ctx, bookingID)
	if err != nil {
		return model.Booking{}, err
	}
	isMentor := callerID == b.MentorID
	isRequester := callerID == b.RequesterID
	if !isMentor && !(isRequester && to == model.StatusCancelled) {
		return model.Booking{}, apperr.Wrap(apperr.ErrUnauthorized, "not allowed to change this booking")
	}
	if !model.CanTransition(b.Status, to) {
		return model.Booking{}, apperr.Wrap(apperr.ErrInvalidTransition, "cannot move booking from "+string(b.Status)+" to "+string(to))
	}
	updated, err := s.store.UpdateStatus(ctx, b.ID, b.Status, to)
	if err != nil {
		return model.Booking{}, err
	}
	s.log.Info().Uint64("booking_id", b.ID).Str("from", string(b.Status)).Str("to", string(to)).Uint64("caller_id", callerID).Msg("booking status changed")
	s.publish(ctx, queue.NewBookingEvent(queue.EventBookingStatusChanged, updated, b.Status))
	return updated, nil
}

// publish emits ev detached from the request's cancellation.  Failures are
// logged only; the booking change already committed.
func (s *BookingService) publish(ctx context.Context, ev queue.BookingEvent) {
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := s.events.Publish(pctx, ev); err != nil {
		s.log.Warn().Err(err).Str("event_type", ev.Type).Uint64("booking_id", ev.BookingID).Msg("booking event not published")
	}
}
