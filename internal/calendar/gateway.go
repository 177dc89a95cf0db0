// Package calendar reads busy intervals from the facility's external
// calendar.
package calendar

import (
	"context"
	"time"

	"paws/pkg/model"
)

// BusyInterval is one occupied span as reported by the calendar.
//
// All-day intervals carry date-only bounds at UTC midnight with an exclusive
// End, following calendar convention. Timed intervals carry exact instants.
type BusyInterval struct {
	Start  time.Time
	End    time.Time
	Label  string
	AllDay bool
}

// Gateway fetches busy intervals overlapping [windowStart, windowEnd) where
// both dates are interpreted in the facility timezone. Each call performs
// exactly one logical remote query and keeps no cache.
type Gateway interface {
	ListBusyIntervals(ctx context.Context, windowStart, windowEnd model.Date) ([]BusyInterval, error)
}
