// Package availability decides whether the facility can take a stay and
// which days are blacked out, using busy intervals from the calendar.
package availability

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"time"

	"paws/internal/calendar"
	"paws/pkg/logger"
	"paws/pkg/model"

	"golang.org/x/sync/errgroup"
)

var ErrInvalidHorizon = errors.New("invalid blackout horizon")

// Verdict is recomputed on every call and never cached.
type Verdict struct {
	Available bool     `json:"is_available"`
	Conflicts []string `json:"conflicts"`
}

// Window is an inclusive span of dates.
type Window struct {
	Start model.Date `json:"start"`
	End   model.Date `json:"end"`
}

// BlackoutSet lists unavailable days in ascending order without duplicates.
type BlackoutSet struct {
	Dates  []model.Date `json:"blackoutDates"`
	Window Window       `json:"dateRange"`
}

type Engine struct {
	gateway   calendar.Gateway
	loc       *time.Location
	timeout   time.Duration
	maxMonths int
	log       *logger.Logger
	now       func() time.Time
}

type Option func(*Engine)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(gateway calendar.Gateway, loc *time.Location, timeout time.Duration, maxMonths int, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		gateway:   gateway,
		loc:       loc,
		timeout:   timeout,
		maxMonths: maxMonths,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Today is the current calendar date at the facility.
func (e *Engine) Today() model.Date {
	return model.DateOf(e.now().In(e.loc))
}

func (e *Engine) Location() *time.Location {
	return e.loc
}

// CheckRangeAvailability fails closed: when the calendar cannot be read the
// stay is reported unavailable with the failure reason as its only conflict.
// The returned error is non-nil only for an invalid range, in which case the
// calendar is never queried.
func (e *Engine) CheckRangeAvailability(ctx context.Context, r model.DateRange) (Verdict, error) {
	if err := r.Validate(); err != nil {
		return Verdict{Available: false, Conflicts: []string{}}, err
	}

	intervals, err := e.fetch(ctx, r.Start, r.End)
	if err != nil {
		reason := calendar.Reason(err)
		e.log.Error("availability check failed, treating range as unavailable",
			"start_date", r.Start.String(),
			"end_date", r.End.String(),
			"reason", reason,
			"error", err,
		)
		return Verdict{Available: false, Conflicts: []string{reason}}, nil
	}

	conflicts := []string{}
	for _, span := range toDaySpans(intervals, e.loc) {
		if span.overlaps(r) {
			conflicts = append(conflicts, span.Label)
		}
	}

	verdict := Verdict{Available: len(conflicts) == 0, Conflicts: conflicts}
	e.log.Debug("availability checked",
		"start_date", r.Start.String(),
		"end_date", r.End.String(),
		"available", verdict.Available,
		"conflicts", len(conflicts),
	)
	return verdict, nil
}

// ComputeBlackoutDates covers the first day of the current month through the
// last day of the month horizonMonths ahead with a single calendar query.
// On calendar failure the set is empty, the window is still filled in and the
// error wraps calendar.ErrUpstreamUnavailable. An empty set returned together
// with an error means unknown, not open.
func (e *Engine) ComputeBlackoutDates(ctx context.Context, horizonMonths int) (*BlackoutSet, error) {
	if horizonMonths < 0 || horizonMonths > e.maxMonths {
		return nil, fmt.Errorf("%w: months must be between 0 and %d, got %d", ErrInvalidHorizon, e.maxMonths, horizonMonths)
	}

	first := e.Today().FirstOfMonth()
	window := Window{
		Start: first,
		End:   first.AddMonths(horizonMonths).LastOfMonth(),
	}
	set := &BlackoutSet{Dates: []model.Date{}, Window: window}

	intervals, err := e.fetch(ctx, window.Start, window.End.AddDays(1))
	if err != nil {
		upstream := calendar.WrapUpstream(err)
		e.log.Error("blackout computation failed, returning empty set",
			"window_start", window.Start.String(),
			"window_end", window.End.String(),
			"reason", upstream.Reason,
			"error", err,
		)
		return set, fmt.Errorf("compute blackout dates: %w", upstream)
	}

	blocked, err := evaluateDays(ctx, window, toDaySpans(intervals, e.loc))
	if err != nil {
		return set, fmt.Errorf("compute blackout dates: %w", err)
	}
	set.Dates = blocked

	e.log.Debug("blackout dates computed",
		"window_start", window.Start.String(),
		"window_end", window.End.String(),
		"intervals", len(intervals),
		"blackout_days", len(blocked),
	)
	return set, nil
}

func (e *Engine) fetch(ctx context.Context, start, end model.Date) ([]calendar.BusyInterval, error) {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	intervals, err := e.gateway.ListBusyIntervals(ctx, start, end)
	if err != nil {
		return nil, calendar.WrapUpstream(err)
	}
	return intervals, nil
}

// evaluateDays marks each day of the window against the fixed span set.
// Days are independent, so they are split into chunks evaluated concurrently;
// each goroutine writes only its own indexes.
func evaluateDays(ctx context.Context, window Window, spans []daySpan) ([]model.Date, error) {
	days := window.Start.DaysUntil(window.End) + 1
	if days <= 0 {
		return []model.Date{}, nil
	}
	flags := make([]bool, days)

	workers := runtime.GOMAXPROCS(0)
	chunk := (days + workers - 1) / workers

	g, gctx := errgroup.WithContext(ctx)
	for lo := 0; lo < days; lo += chunk {
		lo, hi := lo, min(lo+chunk, days)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				day := window.Start.AddDays(i)
				for _, span := range spans {
					if span.covers(day) {
						flags[i] = true
						break
					}
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	blocked := []model.Date{}
	for i, isBlocked := range flags {
		if isBlocked {
			blocked = append(blocked, window.Start.AddDays(i))
		}
	}
	return blocked, nil
}

// FormatAvailabilityMessage renders a verdict for people, e.g.
// "✅ Available: Jun 7 - Jun 10, 2024".
func FormatAvailabilityMessage(r model.DateRange, v Verdict) string {
	if v.Available {
		return "✅ Available: " + r.ShortFormat()
	}
	msg := "❌ Not Available: " + r.ShortFormat()
	if len(v.Conflicts) > 0 {
		msg += "\nConflicts: " + strings.Join(v.Conflicts, ", ")
	}
	return msg
}
