package model

import (
	"strings"
	"time"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
)

// DefaultBookingType is used when the requester does not tag a booking.
const DefaultBookingType = "session"

// MaxBookingTypeLen matches the width of bookings.type.
const MaxBookingTypeLen = 32

// transitions lists the statuses reachable from each state.  Completed and
// cancelled are terminal.
var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// ParseStatus normalizes user input into a BookingStatus.  "accepted" is
// accepted as a synonym for confirmed.
func ParseStatus(s string) (BookingStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "pending":
		return StatusPending, true
	case "confirmed", "accepted":
		return StatusConfirmed, true
	case "completed":
		return StatusCompleted, true
	case "cancelled", "canceled":
		return StatusCancelled, true
	}
	return "", false
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to BookingStatus) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Terminal reports whether no transition leaves s.
func (s BookingStatus) Terminal() bool { return len(transitions[s]) == 0 }

// Booking represents a row in the `bookings` table.  StartAt and EndAt are
// UTC instants with second precision; TimeZone is the zone the requester
// booked in and is used when rendering the booking back to them.
type Booking struct {
	ID          uint64        `json:"id"`
	MentorID    uint64        `json:"mentorId"`
	RequesterID uint64        `json:"requesterId"`
	StartAt     time.Time     `json:"startTime"`
	EndAt       time.Time     `json:"endTime"`
	TimeZone    string        `json:"timeZone"`
	Status      BookingStatus `json:"status"`
	Type        string        `json:"type"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// BookingDetail is a booking enriched with the other participant's public
// identity, as returned by listings.
type BookingDetail struct {
	Booking
	Counterpart Party `json:"counterpart"`
}
