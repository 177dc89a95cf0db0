package calendar

import (
	"context"
	"errors"
	"net/http"

	"google.golang.org/api/googleapi"
)

var ErrUpstreamUnavailable = errors.New("calendar service unavailable")

const (
	reasonNotFound     = "Calendar not found - check calendar ID configuration"
	reasonAccessDenied = "Calendar access denied - check service account permissions"
	reasonTimeout      = "Calendar check timed out - please try again"
	reasonGeneric      = "Calendar check failed - please try again"
)

// UpstreamError is returned for every failed calendar query. Reason is safe to
// show to operators and customers; Err holds the transport or API error.
type UpstreamError struct {
	Reason string
	Err    error
}

func (e *UpstreamError) Error() string {
	return e.Reason
}

func (e *UpstreamError) Unwrap() []error {
	return []error{ErrUpstreamUnavailable, e.Err}
}

// WrapUpstream converts any gateway failure into an *UpstreamError, keeping
// an existing one as is.
func WrapUpstream(err error) *UpstreamError {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr
	}
	return &UpstreamError{Reason: reasonFor(err), Err: err}
}

func reasonFor(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return reasonTimeout
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Code {
		case http.StatusNotFound:
			return reasonNotFound
		case http.StatusForbidden:
			return reasonAccessDenied
		}
	}
	return reasonGeneric
}

// Reason extracts the display reason of a gateway failure.
func Reason(err error) string {
	var upstreamErr *UpstreamError
	if errors.As(err, &upstreamErr) {
		return upstreamErr.Reason
	}
	return reasonFor(err)
}
