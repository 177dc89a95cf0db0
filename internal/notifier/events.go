// Package notifier moves booking decisions to staff: the bookings service
// publishes events to Kafka and the notifier worker turns them into Slack
// approval messages.
package notifier

import (
	"paws/pkg/model"
)

const (
	EventBookingPending  = "booking.pending"
	EventBookingReviewed = "booking.reviewed"

	SchemaVersion = "1"
	Source        = "bookings"
)

// BookingEvent is the payload of every booking event.
type BookingEvent struct {
	Booking *model.Booking `json:"booking"`
	// Availability is the rendered calendar verdict shown to staff.
	Availability string   `json:"availability,omitempty"`
	Conflicts    []string `json:"conflicts,omitempty"`
}
