package errors

import "errors"

var (
	ErrNotFound = errors.New("booking not found")

	ErrInvalidID = errors.New("invalid booking ID format")

	ErrAlreadyReviewed = errors.New("booking is no longer pending review")

	ErrInvalidReviewAction = errors.New("unknown review action")
)
