package service

import (
	"paws/internal/availability"
	"paws/pkg/model"
)

const (
	msgAutoApproved = "Your booking has been automatically approved! You'll receive a confirmation email shortly."
	msgPending      = "Your booking request has been submitted and is awaiting approval. We'll notify you within 2-4 hours."
	msgDenied       = "Unfortunately, we don't have availability for your requested dates. Please try different dates."
	msgApproved     = "Your booking has been approved! You'll receive a confirmation email shortly."
	msgRejected     = "Unfortunately, we are unable to accommodate this booking request."
)

// Decide picks the status of a new request. VIP status never overrides
// unavailability.
func Decide(v availability.Verdict, isVIP bool) model.BookingStatus {
	switch {
	case !v.Available:
		return model.StatusDenied
	case isVIP:
		return model.StatusAutoApproved
	default:
		return model.StatusPending
	}
}

func StatusMessage(status model.BookingStatus) string {
	switch status {
	case model.StatusAutoApproved:
		return msgAutoApproved
	case model.StatusPending:
		return msgPending
	case model.StatusApproved:
		return msgApproved
	case model.StatusRejected:
		return msgRejected
	default:
		return msgDenied
	}
}
