// Package service holds the business rules for availability and bookings.
// Services depend on small store interfaces satisfied by the repository
// types, and report failures with apperr sentinels.
package service

import (
	"context"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/iliyamo/mentor-marketplace/internal/apperr"
	"github.com/iliyamo/mentor-marketplace/internal/model"
	"github.com/iliyamo/mentor-marketplace/internal/timeconv"
)

// DefaultMaxRangeDays bounds slot queries when no limit is configured.
const DefaultMaxRangeDays = 31

// MaxSlotMinutes is the longest slot a window can be cut into: one day.
const MaxSlotMinutes = 24 * 60

// WindowStore is the persistence the availability service needs.
type WindowStore interface {
	Create(ctx context.Context, w *model.AvailabilityWindow) error
	CreateMany(ctx context.Context, ws []*model.AvailabilityWindow) error
	ListByMentor(ctx context.Context, mentorID uint64) ([]model.AvailabilityWindow, error)
	ListMentorWindows(ctx context.Context, mentorID uint64) ([]model.MentorWindow, error)
	Delete(ctx context.Context, mentorID, windowID uint64) error
}

// ActiveBookingLister returns non-cancelled bookings overlapping a range.
type ActiveBookingLister interface {
	ListActiveBetween(ctx context.Context, mentorID uint64, from, to time.Time) ([]model.Booking, error)
}

// SlotQuery selects the slots to generate.  Dates are YYYY-MM-DD and the
// range is inclusive on both ends.
type SlotQuery struct {
	MentorID    uint64 // 0 = all mentors
	StartDate   string
	EndDate     string
	CallerZone  string // defaults to UTC
	SlotMinutes int    // 0 = one slot per window
}

// WindowInput is a window as submitted by a mentor.
type WindowInput struct {
	DayOfWeek int
	StartTime string
	EndTime   string
	TimeZone  string
}

// AvailabilityService expands recurring windows into concrete slots and
// manages the windows themselves.
type AvailabilityService struct {
	windows      WindowStore
	bookings     ActiveBookingLister
	maxRangeDays int
	log          zerolog.Logger
}

// NewAvailabilityService wires the service.  maxRangeDays <= 0 selects
// DefaultMaxRangeDays.
func NewAvailabilityService(windows WindowStore, bookings ActiveBookingLister, maxRangeDays int, log zerolog.Logger) *AvailabilityService {
	if maxRangeDays <= 0 {
		maxRangeDays = DefaultMaxRangeDays
	}
	return &AvailabilityService{
		windows:      windows,
		bookings:     bookings,
		maxRangeDays: maxRangeDays,
		log:          log.With().Str("component", "availability").Logger(),
	}
}

type interval struct{ start, end time.Time }

func (i interval) overlaps(o interval) bool {
	return i.start.Before(o.end) && o.start.Before(i.end)
}

// GetAvailableSlots returns every free slot of the selected mentors between
// the two dates, rendered in the caller's zone and sorted by start instant
// then mentor id.
func (s *AvailabilityService) GetAvailableSlots(ctx context.Context, q SlotQuery) ([]model.Slot, error) {
	start, err := timeconv.ParseDate(q.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := timeconv.ParseDate(q.EndDate)
	if err != nil {
		return nil, err
	}
	if q.CallerZone == "" {
		q.CallerZone = "UTC"
	}
	callerLoc, err := timeconv.LoadZone(q.CallerZone)
	if err != nil {
		return nil, err
	}
	if q.SlotMinutes < 0 || q.SlotMinutes > MaxSlotMinutes {
		return nil, apperr.Validationf("slotMinutes must be between 0 and %d", MaxSlotMinutes)
	}
	if end.Before(start) {
		return nil, apperr.Wrap(apperr.ErrInvalidRange, "startDate is after endDate")
	}
	if days := timeconv.DaysBetween(start, end) + 1; days > s.maxRangeDays {
		return nil, apperr.Wrap(apperr.ErrInvalidRange, "range exceeds "+strconv.Itoa(s.maxRangeDays)+" days")
	}

	windows, err := s.windows.ListMentorWindows(ctx, q.MentorID)
	if err != nil {
		return nil, err
	}
	byDay := make(map[time.Weekday][]model.MentorWindow)
	for _, w := range windows {
		byDay[time.Weekday(w.DayOfWeek)] = append(byDay[time.Weekday(w.DayOfWeek)], w)
	}

	type candidate struct {
		slot     model.Slot
		mentorID uint64
		span     interval
	}
	var (
		candidates []candidate
		zones      = make(map[string]*time.Location)
		lo, hi     time.Time
	)
	for d := start; !end.Before(d); d = d.AddDays(1) {
		for _, w := range byDay[d.Weekday()] {
			loc, ok := zones[w.TimeZone]
			if !ok {
				loc, err = timeconv.LoadZone(w.TimeZone)
				if err != nil {
					s.log.Warn().Uint64("window_id", w.ID).Str("time_zone", w.TimeZone).Msg("skipping window with unknown zone")
					continue
				}
				zones[w.TimeZone] = loc
			}
			for _, span := range instantiate(w.AvailabilityWindow, d, loc, q.SlotMinutes) {
				local := span.start.In(loc)
				candidates = append(candidates, candidate{
					slot: model.Slot{
						ID:        strconv.FormatUint(w.ID, 10) + "-" + d.Compact() + "-" + local.Format("1504"),
						StartTime: span.start.In(callerLoc),
						EndTime:   span.end.In(callerLoc),
						TimeZone:  q.CallerZone,
						Mentor:    w.Mentor,
					},
					mentorID: w.MentorID,
					span:     span,
				})
				if lo.IsZero() || span.start.Before(lo) {
					lo = span.start
				}
				if span.end.After(hi) {
					hi = span.end
				}
			}
		}
	}
	if len(candidates) == 0 {
		return []model.Slot{}, nil
	}

	active, err := s.bookings.ListActiveBetween(ctx, q.MentorID, lo, hi)
	if err != nil {
		return nil, err
	}
	busy := make(map[uint64][]interval)
	for _, b := range active {
		busy[b.MentorID] = append(busy[b.MentorID], interval{b.StartAt, b.EndAt})
	}

	out := make([]model.Slot, 0, len(candidates))
	for _, c := range candidates {
		if overlapsAny(c.span, busy[c.mentorID]) {
			continue
		}
		out = append(out, c.slot)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].Mentor.ID < out[j].Mentor.ID
	})
	return out, nil
}

// instantiate turns window w into absolute intervals on date d.  With
// slotMinutes > 0 the window is cut into consecutive slots and a trailing
// remainder is dropped.
func instantiate(w model.AvailabilityWindow, d timeconv.Date, loc *time.Location, slotMinutes int) []interval {
	sc, err := timeconv.ParseClock(w.StartTime)
	if err != nil {
		return nil
	}
	ec, err := timeconv.ParseClock(w.EndTime)
	if err != nil {
		return nil
	}
	ws, we := timeconv.At(d, sc, loc), timeconv.At(d, ec, loc)
	if !ws.Before(we) {
		return nil
	}
	if slotMinutes <= 0 {
		return []interval{{ws, we}}
	}
	step := time.Duration(slotMinutes) * time.Minute
	if step <= 0 || step > we.Sub(ws) {
		return nil
	}
	var out []interval
	for t := ws; !t.Add(step).After(we); t = t.Add(step) {
		out = append(out, interval{t, t.Add(step)})
	}
	return out
}

func overlapsAny(i interval, busy []interval) bool {
	for _, b := range busy {
		if i.overlaps(b) {
			return true
		}
	}
	return false
}

// windowFromInput validates in and returns the normalized window.
func windowFromInput(mentorID uint64, in WindowInput) (*model.AvailabilityWindow, error) {
	if in.DayOfWeek < 0 || in.DayOfWeek > 6 {
		return nil, apperr.Validationf("dayOfWeek must be between 0 (Sunday) and 6 (Saturday)")
	}
	sc, err := timeconv.ParseClock(in.StartTime)
	if err != nil {
		return nil, err
	}
	ec, err := timeconv.ParseClock(in.EndTime)
	if err != nil {
		return nil, err
	}
	if sc.Minutes() >= ec.Minutes() {
		return nil, apperr.Validationf("startTime must be before endTime")
	}
	loc, err := timeconv.LoadZone(in.TimeZone)
	if err != nil {
		return nil, err
	}
	return &model.AvailabilityWindow{
		MentorID:  mentorID,
		DayOfWeek: in.DayOfWeek,
		StartTime: sc.String(),
		EndTime:   ec.String(),
		TimeZone:  loc.String(),
	}, nil
}

// CreateWindow validates and stores one window for mentorID.
func (s *AvailabilityService) CreateWindow(ctx context.Context, mentorID uint64, in WindowInput) (model.AvailabilityWindow, error) {
	w, err := windowFromInput(mentorID, in)
	if err != nil {
		return model.AvailabilityWindow{}, err
	}
	if err := s.windows.Create(ctx, w); err != nil {
		return model.AvailabilityWindow{}, err
	}
	s.log.Info().Uint64("mentor_id", mentorID).Uint64("window_id", w.ID).Msg("availability window created")
	return *w, nil
}

// CreateWindows validates every input first and then stores all of them in
// one transaction.  A single invalid entry rejects the batch.
func (s *AvailabilityService) CreateWindows(ctx context.Context, mentorID uint64, in []WindowInput) ([]model.AvailabilityWindow, error) {
	if len(in) == 0 {
		return nil, apperr.Validationf("availabilities must not be empty")
	}
	ws := make([]*model.AvailabilityWindow, 0, len(in))
	for i, item := range in {
		w, err := windowFromInput(mentorID, item)
		if err != nil {
			return nil, apperr.Validationf("availabilities[%d]: %s", i, apperr.Message(err))
		}
		ws = append(ws, w)
	}
	if err := s.windows.CreateMany(ctx, ws); err != nil {
		return nil, err
	}
	out := make([]model.AvailabilityWindow, len(ws))
	for i, w := range ws {
		out[i] = *w
	}
	s.log.Info().Uint64("mentor_id", mentorID).Int("count", len(out)).Msg("availability windows created")
	return out, nil
}

// ListWindows returns the mentor's own windows.
func (s *AvailabilityService) ListWindows(ctx context.Context, mentorID uint64) ([]model.AvailabilityWindow, error) {
	return s.windows.ListByMentor(ctx, mentorID)
}

// DeleteWindow removes one of the mentor's windows.  Existing bookings are
// left untouched.
func (s *AvailabilityService) DeleteWindow(ctx context.Context, mentorID, windowID uint64) error {
	return s.windows.Delete(ctx, mentorID, windowID)
}
