package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/mentor-marketplace/internal/apperr"
	"github.com/iliyamo/mentor-marketplace/internal/model"
	"github.com/iliyamo/mentor-marketplace/internal/timeconv"
)

func TestSlotsRenderedInCallerZone(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mentor := f.account(t, "m@example.com", model.RoleMentor, "Mentor")
	w := f.window(t, mentor, int(time.Saturday), "07:00", "09:00", "America/New_York")

	slots, err := f.availability.GetAvailableSlots(ctx, SlotQuery{
		MentorID: mentor, StartDate: "2024-06-01", EndDate: "2024-06-01", CallerZone: "Asia/Karachi",
	})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	s := slots[0]
	assert.Equal(t, fmt.Sprintf("%d-20240601-0700", w.ID), s.ID)
	assert.Equal(t, "2024-06-01T16:00:00+05:00", s.StartTime.Format(time.RFC3339))
	assert.Equal(t, "2024-06-01T18:00:00+05:00", s.EndTime.Format(time.RFC3339))
	assert.Equal(t, "Asia/Karachi", s.TimeZone)
	assert.Equal(t, model.Party{ID: mentor, Name: "Mentor", Email: "m@example.com"}, s.Mentor)

	// Winter offset differs by one hour.
	slots, err = f.availability.GetAvailableSlots(ctx, SlotQuery{
		MentorID: mentor, StartDate: "2024-01-06", EndDate: "2024-01-06", CallerZone: "Asia/Karachi",
	})
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "2024-01-06T17:00:00+05:00", slots[0].StartTime.Format(time.RFC3339))
}

func TestSlotsDefaultZoneAndRange(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mentor := f.account(t, "m@example.com", model.RoleMentor, "Mentor")
	f.window(t, mentor, int(time.Monday), "10:00", "11:00", "UTC")
	f.window(t, mentor, int(time.Wednesday), "10:00", "11:00", "UTC")

	// 2024-06-03 is a Monday; two weeks contain four matching days.
	slots, err := f.availability.GetAvailableSlots(ctx, SlotQuery{StartDate: "2024-06-03", EndDate: "2024-06-16"})
	require.NoError(t, err)
	require.Len(t, slots, 4)
	assert.Equal(t, "UTC", slots[0].TimeZone)
	for i := 1; i < len(slots); i++ {
		assert.True(t, slots[i-1].StartTime.Before(slots[i].StartTime))
	}

	empty, err := f.availability.GetAvailableSlots(ctx, SlotQuery{StartDate: "2024-06-04", EndDate: "2024-06-04"})
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestSlotsSplitAndExcludeBooked(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mentor := f.account(t, "m@example.com", model.RoleMentor, "Mentor")
	mentee := f.account(t, "e@example.com", model.RoleMentee, "Mentee")
	f.window(t, mentor, int(time.Saturday), "07:00", "09:30", "America/New_York")

	q := SlotQuery{MentorID: mentor, StartDate: "2024-06-01", EndDate: "2024-06-01", CallerZone: "America/New_York", SlotMinutes: 60}
	slots, err := f.availability.GetAvailableSlots(ctx, q)
	require.NoError(t, err)
	require.Len(t, slots, 2, "trailing 30 minutes are dropped")
	assert.Equal(t, "07:00", slots[0].StartTime.Format("15:04"))
	assert.Equal(t, "08:00", slots[1].StartTime.Format("15:04"))

	_, err = f.bookings.CreateBooking(ctx, CreateBookingInput{
		RequesterID: mentee, MentorID: mentor,
		StartTime: "2024-06-01T07:00:00", EndTime: "2024-06-01T08:00:00", TimeZone: "America/New_York",
	})
	require.NoError(t, err)

	slots, err = f.availability.GetAvailableSlots(ctx, q)
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "08:00", slots[0].StartTime.Format("15:04"))

	q.SlotMinutes = 0
	slots, err = f.availability.GetAvailableSlots(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, slots, "a booked window yields no whole-window slot")
}

func TestSlotsSortedByStartThenMentor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	m1 := f.account(t, "m1@example.com", model.RoleMentor, "One")
	m2 := f.account(t, "m2@example.com", model.RoleMentor, "Two")
	f.window(t, m2, int(time.Saturday), "09:00", "10:00", "UTC")
	f.window(t, m1, int(time.Saturday), "09:00", "10:00", "UTC")
	f.window(t, m2, int(time.Saturday), "08:00", "09:00", "UTC")

	slots, err := f.availability.GetAvailableSlots(ctx, SlotQuery{StartDate: "2024-06-01", EndDate: "2024-06-01"})
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, m2, slots[0].Mentor.ID)
	assert.Equal(t, m1, slots[1].Mentor.ID)
	assert.Equal(t, m2, slots[2].Mentor.ID)
}

func TestSlotQueryErrors(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		q    SlotQuery
		want error
	}{
		{"inverted range", SlotQuery{StartDate: "2024-06-02", EndDate: "2024-06-01"}, apperr.ErrInvalidRange},
		{"range too long", SlotQuery{StartDate: "2024-01-01", EndDate: "2024-03-01"}, apperr.ErrInvalidRange},
		{"bad start date", SlotQuery{StartDate: "06/01/2024", EndDate: "2024-06-01"}, apperr.ErrValidation},
		{"bad end date", SlotQuery{StartDate: "2024-06-01", EndDate: ""}, apperr.ErrValidation},
		{"bad zone", SlotQuery{StartDate: "2024-06-01", EndDate: "2024-06-01", CallerZone: "Nowhere/City"}, apperr.ErrValidation},
		{"negative slot length", SlotQuery{StartDate: "2024-06-01", EndDate: "2024-06-01", SlotMinutes: -5}, apperr.ErrValidation},
		{"slot longer than a day", SlotQuery{StartDate: "2024-06-01", EndDate: "2024-06-01", SlotMinutes: MaxSlotMinutes + 1}, apperr.ErrValidation},
		{"overflowing slot length", SlotQuery{StartDate: "2024-06-01", EndDate: "2024-06-01", SlotMinutes: 200000000}, apperr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.availability.GetAvailableSlots(context.Background(), tt.q)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestWindowManagement(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mentor := f.account(t, "m@example.com", model.RoleMentor, "Mentor")
	other := f.account(t, "o@example.com", model.RoleMentor, "Other")

	w := f.window(t, mentor, 1, "9:05", "10:00", " Europe/Berlin ")
	assert.Equal(t, "09:05", w.StartTime)
	assert.Equal(t, "Europe/Berlin", w.TimeZone)

	for name, in := range map[string]WindowInput{
		"day out of range": {DayOfWeek: 7, StartTime: "09:00", EndTime: "10:00", TimeZone: "UTC"},
		"inverted":         {DayOfWeek: 1, StartTime: "10:00", EndTime: "09:00", TimeZone: "UTC"},
		"empty":            {DayOfWeek: 1, StartTime: "10:00", EndTime: "10:00", TimeZone: "UTC"},
		"bad clock":        {DayOfWeek: 1, StartTime: "9am", EndTime: "10:00", TimeZone: "UTC"},
		"bad zone":         {DayOfWeek: 1, StartTime: "09:00", EndTime: "10:00", TimeZone: "Mars/Base"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.availability.CreateWindow(ctx, mentor, in)
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	_, err := f.availability.CreateWindows(ctx, mentor, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = f.availability.CreateWindows(ctx, mentor, []WindowInput{
		{DayOfWeek: 2, StartTime: "09:00", EndTime: "10:00", TimeZone: "UTC"},
		{DayOfWeek: 3, StartTime: "11:00", EndTime: "10:00", TimeZone: "UTC"},
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)

	list, err := f.availability.ListWindows(ctx, mentor)
	require.NoError(t, err)
	assert.Len(t, list, 1, "a rejected batch stores nothing")

	created, err := f.availability.CreateWindows(ctx, mentor, []WindowInput{
		{DayOfWeek: 2, StartTime: "09:00", EndTime: "10:00", TimeZone: "UTC"},
		{DayOfWeek: 3, StartTime: "09:00", EndTime: "10:00", TimeZone: "UTC"},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.NotZero(t, created[1].ID)

	list, err = f.availability.ListWindows(ctx, mentor)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	assert.ErrorIs(t, f.availability.DeleteWindow(ctx, other, w.ID), apperr.ErrNotFound)
	require.NoError(t, f.availability.DeleteWindow(ctx, mentor, w.ID))
	assert.ErrorIs(t, f.availability.DeleteWindow(ctx, mentor, w.ID), apperr.ErrNotFound)
}

func TestSlotLengthBeyondWindow(t *testing.T) {
	f := newFixture(t)
	mentor := f.account(t, "long@example.com", model.RoleMentor, "Sam")
	f.window(t, mentor, 6, "07:00", "09:00", "America/New_York")

	q := SlotQuery{MentorID: mentor, StartDate: "2024-06-01", EndDate: "2024-06-01", SlotMinutes: 200000000}
	_, err := f.availability.GetAvailableSlots(context.Background(), q)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	q.SlotMinutes = MaxSlotMinutes
	slots, err := f.availability.GetAvailableSlots(context.Background(), q)
	require.NoError(t, err)
	assert.Empty(t, slots, "a slot longer than the window yields nothing")

	q.SlotMinutes = 120
	slots, err = f.availability.GetAvailableSlots(context.Background(), q)
	require.NoError(t, err)
	assert.Len(t, slots, 1)
}

func TestInstantiateRejectsNonPositiveStep(t *testing.T) {
	w := model.AvailabilityWindow{StartTime: "07:00", EndTime: "09:00"}
	d := timeconv.Date{Year: 2024, Month: time.June, Day: 1}
	assert.Nil(t, instantiate(w, d, time.UTC, 200000000))
	assert.Len(t, instantiate(w, d, time.UTC, 30), 4)
}
