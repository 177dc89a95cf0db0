package availability

import (
	"time"

	"paws/internal/calendar"
	"paws/pkg/model"
)

// daySpan is a busy interval reduced to an inclusive span of facility-local
// calendar dates.
type daySpan struct {
	Start model.Date
	End   model.Date
	Label string
}

func toDaySpan(b calendar.BusyInterval, loc *time.Location) daySpan {
	if b.AllDay {
		start := model.DateOf(b.Start)
		end := model.DateOf(b.End).AddDays(-1)
		if end.Before(start) {
			end = start
		}
		return daySpan{Start: start, End: end, Label: b.Label}
	}

	localStart := b.Start.In(loc)
	localEnd := b.End.In(loc)
	start := model.DateOf(localStart)
	end := model.DateOf(localEnd)
	// An event ending exactly at midnight does not occupy the new day.
	if localEnd.After(localStart) && localEnd.Equal(end.In(loc)) {
		end = end.AddDays(-1)
	}
	if end.Before(start) {
		end = start
	}
	return daySpan{Start: start, End: end, Label: b.Label}
}

// overlaps reports whether the inclusive span touches the half-open stay
// [r.Start, r.End).
func (s daySpan) overlaps(r model.DateRange) bool {
	return s.Start.Before(r.End) && !s.End.Before(r.Start)
}

// covers reports whether the inclusive span contains day d.
func (s daySpan) covers(d model.Date) bool {
	return !d.Before(s.Start) && !d.After(s.End)
}

func toDaySpans(intervals []calendar.BusyInterval, loc *time.Location) []daySpan {
	spans := make([]daySpan, 0, len(intervals))
	for _, b := range intervals {
		spans = append(spans, toDaySpan(b, loc))
	}
	return spans
}
