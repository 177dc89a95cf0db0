package notifier

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"paws/pkg/kafka"
	"paws/pkg/model"

	"github.com/slack-go/slack"
)

const (
	ActionIDApprove = "approve_booking"
	ActionIDDeny    = "deny_booking"

	notSpecified = "Not specified"
)

// SlackAPI is the part of *slack.Client the messenger calls.
type SlackAPI interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
	UpdateMessageContext(ctx context.Context, channelID, timestamp string, options ...slack.MsgOption) (string, string, string, error)
}

// Messenger posts approval requests to the staff channel and rewrites them
// once a request is reviewed.
type Messenger struct {
	api       SlackAPI
	channelID string
}

func NewMessenger(api SlackAPI, channelID string) *Messenger {
	return &Messenger{api: api, channelID: channelID}
}

// PostApprovalRequest returns the message timestamp needed to update it later.
func (m *Messenger) PostApprovalRequest(ctx context.Context, event BookingEvent) (string, error) {
	b := event.Booking
	fallback := fmt.Sprintf("New boarding request from %s for %s", b.ParentName, b.DogName)

	_, ts, err := m.api.PostMessageContext(ctx, m.channelID,
		slack.MsgOptionText(fallback, false),
		slack.MsgOptionBlocks(approvalBlocks(event)...),
	)
	if err != nil {
		return "", classifySlackError("post approval request", err)
	}
	return ts, nil
}

func (m *Messenger) UpdateReviewed(ctx context.Context, booking *model.Booking) error {
	emoji, label := reviewLabel(booking.Status)
	by := ""
	if booking.ReviewedBy != "" {
		by = " by " + booking.ReviewedBy
	}

	_, _, _, err := m.api.UpdateMessageContext(ctx, m.channelID, booking.SlackMessageTS,
		slack.MsgOptionText(fmt.Sprintf("Booking request %s%s", label, by), false),
		slack.MsgOptionBlocks(
			slack.NewSectionBlock(
				slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("%s *%s*%s", emoji, label, by), false, false),
				nil, nil,
			),
		),
	)
	if err != nil {
		return classifySlackError("update approval message", err)
	}
	return nil
}

func approvalBlocks(event BookingEvent) []slack.Block {
	b := event.Booking

	dates := b.StartDate + " - " + b.EndDate
	if r, err := b.Range(); err == nil {
		dates = r.Format()
	}

	field := func(label, value string) *slack.TextBlockObject {
		if value == "" {
			value = notSpecified
		}
		return slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("*%s:* %s", label, value), false, false)
	}
	age := ""
	if b.DogAge != nil {
		age = strconv.Itoa(*b.DogAge)
	}

	availabilityText := event.Availability
	if availabilityText == "" {
		availabilityText = notSpecified
	}

	approve := slack.NewButtonBlockElement(ActionIDApprove, b.ID,
		slack.NewTextBlockObject(slack.PlainTextType, "✅ Approve", true, false)).
		WithStyle(slack.StylePrimary)
	deny := slack.NewButtonBlockElement(ActionIDDeny, b.ID,
		slack.NewTextBlockObject(slack.PlainTextType, "❌ Deny", true, false)).
		WithStyle(slack.StyleDanger)

	return []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, "🐕 New Boarding Request", true, false)),
		slack.NewSectionBlock(nil, []*slack.TextBlockObject{
			field("Parent", b.ParentName),
			field("Dog", b.DogName),
			field("Email", b.Email),
			field("Phone", b.Phone),
			field("Dates", dates),
			field("Breed", b.DogBreed),
			field("Age", age),
			field("Type", string(b.BookingType)),
		}, nil),
		slack.NewSectionBlock(
			slack.NewTextBlockObject(slack.MarkdownType, "*Calendar Availability:*\n"+availabilityText, false, false),
			nil, nil,
		),
		slack.NewDividerBlock(),
		slack.NewActionBlock("review_"+b.ID, approve, deny),
	}
}

func reviewLabel(status model.BookingStatus) (string, string) {
	if status == model.StatusApproved {
		return "✅", "APPROVED"
	}
	return "❌", "DENIED"
}

// classifySlackError marks rate limiting and timeouts as retryable; anything
// else (bad channel, revoked token) goes to the DLQ.
func classifySlackError(op string, err error) error {
	var rateLimited *slack.RateLimitedError
	if errors.As(err, &rateLimited) || errors.Is(err, context.DeadlineExceeded) {
		return kafka.NewTransientError(op, err)
	}
	return kafka.NewPermanentError(op, err)
}
