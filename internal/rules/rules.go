// Package rules classifies stays into the patterns the facility accepts.
package rules

import (
	"errors"
	"fmt"
	"time"

	"paws/pkg/model"
)

const InvalidPatternReason = "Bookings are only allowed for weeknights (Monday–Thursday) or weekend packages (Friday arrival, Monday departure)."

var (
	ErrPastDateRequested    = errors.New("start date cannot be in the past")
	ErrRulePatternViolation = errors.New("stay does not match an allowed booking pattern")
)

type Classification struct {
	Type   model.BookingType
	Reason string
}

func (c Classification) Valid() bool {
	return c.Type != model.BookingTypeInvalid
}

// Classify looks only at the weekdays of arrival and departure.
func Classify(r model.DateRange) Classification {
	sd, ed := r.Start.Weekday(), r.End.Weekday()

	switch {
	case sd == time.Friday && ed == time.Monday:
		return Classification{Type: model.BookingTypeWeekendPackage}
	case isWeeknight(sd) && isWeeknight(ed):
		return Classification{Type: model.BookingTypeWeeknight}
	default:
		return Classification{Type: model.BookingTypeInvalid, Reason: InvalidPatternReason}
	}
}

func isWeeknight(d time.Weekday) bool {
	return d >= time.Monday && d <= time.Thursday
}

// ValidateStay runs the checks that need no network: range order, arrival not
// before today, then the stay pattern.
func ValidateStay(r model.DateRange, today model.Date) (Classification, error) {
	if err := r.Validate(); err != nil {
		return Classification{Type: model.BookingTypeInvalid, Reason: err.Error()}, err
	}
	if r.Start.Before(today) {
		return Classification{Type: model.BookingTypeInvalid, Reason: ErrPastDateRequested.Error()},
			fmt.Errorf("%w: %s is before %s", ErrPastDateRequested, r.Start, today)
	}
	c := Classify(r)
	if !c.Valid() {
		return c, fmt.Errorf("%w: %s", ErrRulePatternViolation, c.Reason)
	}
	return c, nil
}
