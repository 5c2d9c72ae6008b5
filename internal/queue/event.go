// Package queue defines the booking domain events exchanged over RabbitMQ,
// the publisher the API uses to emit them, and the worker that consumes
// them into the booking audit log.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/mentor-marketplace/internal/model"
)

// QueueName is the durable queue booking events are routed to.
const QueueName = "booking.events"

// Event types carried in BookingEvent.Type and the AMQP type header.
const (
	EventBookingCreated       = "booking.created"
	EventBookingStatusChanged = "booking.status_changed"
)

// BookingEvent is published after a booking is created or changes status.
// It carries enough for downstream consumers to log or notify without
// querying the primary database.
type BookingEvent struct {
	EventID        string `json:"event_id"`
	Type           string `json:"type"`
	BookingID      uint64 `json:"booking_id"`
	MentorID       uint64 `json:"mentor_id"`
	RequesterID    uint64 `json:"requester_id"`
	Status         string `json:"status"`
	PreviousStatus string `json:"previous_status,omitempty"`
	StartAt        string `json:"start_at"`
	EndAt          string `json:"end_at"`
	TimeZone       string `json:"time_zone"`
	OccurredAt     string `json:"occurred_at"`
}

// NewBookingEvent builds an event of type typ for b.  previous is empty for
// creations.
func NewBookingEvent(typ string, b model.Booking, previous model.BookingStatus) BookingEvent {
	return BookingEvent{
		EventID:        uuid.NewString(),
		Type:           typ,
		BookingID:      b.ID,
		MentorID:       b.MentorID,
		RequesterID:    b.RequesterID,
		Status:         string(b.Status),
		PreviousStatus: string(previous),
		StartAt:        b.StartAt.UTC().Format(time.RFC3339),
		EndAt:          b.EndAt.UTC().Format(time.RFC3339),
		TimeZone:       b.TimeZone,
		OccurredAt:     time.Now().UTC().Format(time.RFC3339),
	}
}
