package notifier

import (
	"context"
	"fmt"

	"paws/internal/availability"
	"paws/pkg/kafka"
	"paws/pkg/logger"
	"paws/pkg/middleware"
	"paws/pkg/model"
)

type Publisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

// EventNotifier publishes booking events keyed by booking id, so all events
// of one booking land on the same partition in order.
type EventNotifier struct {
	publisher Publisher
	log       *logger.Logger
}

func NewEventNotifier(publisher Publisher, log *logger.Logger) *EventNotifier {
	return &EventNotifier{publisher: publisher, log: log}
}

func (n *EventNotifier) BookingPending(ctx context.Context, booking *model.Booking, verdict availability.Verdict) error {
	event := BookingEvent{
		Booking:   booking,
		Conflicts: verdict.Conflicts,
	}
	if r, err := booking.Range(); err == nil {
		event.Availability = availability.FormatAvailabilityMessage(r, verdict)
	}
	return n.publish(ctx, EventBookingPending, booking.ID, event)
}

func (n *EventNotifier) BookingReviewed(ctx context.Context, booking *model.Booking) error {
	return n.publish(ctx, EventBookingReviewed, booking.ID, BookingEvent{Booking: booking})
}

func (n *EventNotifier) publish(ctx context.Context, eventType, bookingID string, event BookingEvent) error {
	msg, err := kafka.NewMessage().
		WithKey(bookingID).
		WithValue(event).
		WithEventType(eventType).
		WithSchemaVersion(SchemaVersion).
		WithSource(Source).
		WithCorrelationID(middleware.RequestID(ctx)).
		Build()
	if err != nil {
		return fmt.Errorf("build %s event: %w", eventType, err)
	}

	if err := n.publisher.Publish(ctx, msg); err != nil {
		return fmt.Errorf("publish %s event: %w", eventType, err)
	}

	n.log.Debug("Booking event published", "event_type", eventType, "booking_id", bookingID, "event_id", msg.GetEventID())
	return nil
}

// LogNotifier stands in when Kafka is disabled. Pending requests then have
// to be reviewed from the bookings API.
type LogNotifier struct {
	log *logger.Logger
}

func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) BookingPending(ctx context.Context, booking *model.Booking, verdict availability.Verdict) error {
	n.log.Warn("Event publishing disabled, pending booking needs manual review",
		"booking_id", booking.ID,
		"start_date", booking.StartDate,
		"end_date", booking.EndDate,
	)
	return nil
}

func (n *LogNotifier) BookingReviewed(ctx context.Context, booking *model.Booking) error {
	n.log.Info("Event publishing disabled, review not broadcast", "booking_id", booking.ID, "status", booking.Status)
	return nil
}
