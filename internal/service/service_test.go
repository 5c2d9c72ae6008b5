package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/mentor-marketplace/internal/database/dbtest"
	"github.com/iliyamo/mentor-marketplace/internal/model"
	"github.com/iliyamo/mentor-marketplace/internal/queue"
	"github.com/iliyamo/mentor-marketplace/internal/repository"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type fixture struct {
	users        *repository.UserRepo
	availability *AvailabilityService
	bookings     *BookingService
	events       *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := dbtest.New(t)
	windows := repository.NewAvailabilityRepo(db)
	bookings := repository.NewBookingRepo(db, dbtest.Dialect)
	events := &recordingPublisher{}
	return &fixture{
		users:        repository.NewUserRepo(db),
		availability: NewAvailabilityService(windows, bookings, 0, zerolog.Nop()),
		bookings:     NewBookingService(bookings, events, zerolog.Nop()),
		events:       events,
	}
}

func (f *fixture) account(t *testing.T, email, role, name string) uint64 {
	t.Helper()
	id, err := f.users.Create(context.Background(), email, "pw-123456", role, name, bcrypt.MinCost)
	require.NoError(t, err)
	return id
}

func (f *fixture) window(t *testing.T, mentorID uint64, day int, start, end, zone string) model.AvailabilityWindow {
	t.Helper()
	w, err := f.availability.CreateWindow(context.Background(), mentorID, WindowInput{DayOfWeek: day, StartTime: start, EndTime: end, TimeZone: zone})
	require.NoError(t, err)
	return w
}

var errBroker = errors.New("broker down")
