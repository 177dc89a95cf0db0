package notifier

import (
	"context"
	"errors"
	"fmt"

	bookingserrors "paws/internal/bookings/errors"
	"paws/pkg/kafka"
	"paws/pkg/logger"
	"paws/pkg/model"
)

// BookingStore is the repository access the worker needs.
type BookingStore interface {
	FindByID(ctx context.Context, id string) (*model.Booking, error)
	SetSlackMessageTS(ctx context.Context, id string, ts string) error
}

type ApprovalMessenger interface {
	PostApprovalRequest(ctx context.Context, event BookingEvent) (string, error)
	UpdateReviewed(ctx context.Context, booking *model.Booking) error
}

// EventHandler consumes booking events. Redelivered events are harmless:
// a request that already has a Slack message is not posted twice.
type EventHandler struct {
	store     BookingStore
	messenger ApprovalMessenger
	log       *logger.Logger
}

func NewEventHandler(store BookingStore, messenger ApprovalMessenger, log *logger.Logger) *EventHandler {
	return &EventHandler{store: store, messenger: messenger, log: log}
}

func (h *EventHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var event BookingEvent
	if err := msg.DecodeValue(&event); err != nil {
		return err
	}
	if event.Booking == nil || event.Booking.ID == "" {
		return kafka.NewPermanentError("event without booking", kafka.ErrInvalidMessage)
	}

	switch msg.GetEventType() {
	case EventBookingPending:
		return h.handlePending(ctx, event)
	case EventBookingReviewed:
		return h.handleReviewed(ctx, event)
	default:
		h.log.Warn("Ignoring unknown booking event", "event_type", msg.GetEventType(), "event_id", msg.GetEventID())
		return nil
	}
}

func (h *EventHandler) handlePending(ctx context.Context, event BookingEvent) error {
	current, err := h.current(ctx, event.Booking.ID)
	if err != nil || current == nil {
		return err
	}
	if current.Status != model.StatusPending {
		h.log.Info("Booking no longer pending, skipping approval request", "booking_id", current.ID, "status", current.Status)
		return nil
	}
	if current.SlackMessageTS != "" {
		h.log.Info("Approval request already posted", "booking_id", current.ID, "slack_ts", current.SlackMessageTS)
		return nil
	}

	ts, err := h.messenger.PostApprovalRequest(ctx, event)
	if err != nil {
		return err
	}
	// The message is already in the channel; a retry would post it again.
	if err := h.store.SetSlackMessageTS(ctx, current.ID, ts); err != nil {
		h.log.Error("Approval request posted but its ts was not stored",
			"booking_id", current.ID,
			"slack_ts", ts,
			"error", err,
		)
		return kafka.NewPermanentError("store slack message ts", err)
	}

	h.log.Info("Approval request posted", "booking_id", current.ID, "slack_ts", ts)
	return nil
}

func (h *EventHandler) handleReviewed(ctx context.Context, event BookingEvent) error {
	booking := event.Booking
	if booking.SlackMessageTS == "" {
		current, err := h.current(ctx, booking.ID)
		if err != nil || current == nil {
			return err
		}
		booking.SlackMessageTS = current.SlackMessageTS
	}
	if booking.SlackMessageTS == "" {
		h.log.Info("Reviewed booking has no approval message to update", "booking_id", booking.ID)
		return nil
	}

	if err := h.messenger.UpdateReviewed(ctx, booking); err != nil {
		return err
	}
	h.log.Info("Approval message updated", "booking_id", booking.ID, "status", booking.Status)
	return nil
}

// current returns nil without error for deleted bookings.
func (h *EventHandler) current(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := h.store.FindByID(ctx, id)
	switch {
	case err == nil:
		return booking, nil
	case errors.Is(err, bookingserrors.ErrNotFound), errors.Is(err, bookingserrors.ErrInvalidID):
		h.log.Warn("Booking from event not found", "booking_id", id)
		return nil, nil
	default:
		return nil, kafka.NewTransientError(fmt.Sprintf("load booking %s", id), err)
	}
}
