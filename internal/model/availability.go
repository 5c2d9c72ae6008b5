package model

import "time"

// AvailabilityWindow is a recurring weekly range during which a mentor can
// be booked.  Start and end are wall-clock HH:MM values interpreted in
// TimeZone; windows never cross midnight.
type AvailabilityWindow struct {
	ID        uint64    `json:"id"`
	MentorID  uint64    `json:"mentorId"`
	DayOfWeek int       `json:"dayOfWeek"` // 0 = Sunday … 6 = Saturday
	StartTime string    `json:"startTime"`
	EndTime   string    `json:"endTime"`
	TimeZone  string    `json:"timeZone"`
	CreatedAt time.Time `json:"createdAt"`
}

// MentorWindow pairs a window with its mentor's public identity.  It is
// what the slot query reads so each emitted slot can name its mentor.
type MentorWindow struct {
	AvailabilityWindow
	Mentor Party
}

// Slot is a concrete, date-bound instantiation of a window rendered in the
// viewer's zone.
type Slot struct {
	ID        string    `json:"id"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
	TimeZone  string    `json:"timeZone"`
	Mentor    Party     `json:"mentor"`
}
