package notifier

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/slack-go/slack"
)

var ErrUnsupportedInteraction = errors.New("unsupported slack interaction")

// ReviewAction is a staff decision taken from an approval message.
type ReviewAction struct {
	BookingID string
	Approve   bool
	Reviewer  string
}

// ParseInteraction reads the "payload" form field Slack posts when a button
// on an approval message is clicked.
func ParseInteraction(payload string) (*ReviewAction, error) {
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrUnsupportedInteraction)
	}

	var callback slack.InteractionCallback
	if err := json.Unmarshal([]byte(payload), &callback); err != nil {
		return nil, fmt.Errorf("decode interaction payload: %w", err)
	}
	if callback.Type != slack.InteractionTypeBlockActions {
		return nil, fmt.Errorf("%w: type %q", ErrUnsupportedInteraction, callback.Type)
	}

	for _, action := range callback.ActionCallback.BlockActions {
		if action == nil || action.Value == "" {
			continue
		}
		switch action.ActionID {
		case ActionIDApprove, ActionIDDeny:
			reviewer := callback.User.Name
			if reviewer == "" {
				reviewer = callback.User.ID
			}
			return &ReviewAction{
				BookingID: action.Value,
				Approve:   action.ActionID == ActionIDApprove,
				Reviewer:  reviewer,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: no review action", ErrUnsupportedInteraction)
}
