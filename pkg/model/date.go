package model

import (
	"errors"
	"fmt"
	"time"
)

const DateLayout = "2006-01-02"

var (
	ErrInvalidDate      = errors.New("invalid date, expected YYYY-MM-DD")
	ErrInvalidDateRange = errors.New("end date must be after start date")
)

// Date is a calendar day with no time of day and no zone attached.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

func NewDate(year int, month time.Month, day int) Date {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t as seen in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateOf(t), nil
}

func (d Date) IsZero() bool {
	return d == Date{}
}

func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// In returns midnight at the start of d in loc.
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Date) Weekday() time.Weekday {
	return d.In(time.UTC).Weekday()
}

func (d Date) AddDays(n int) Date {
	return DateOf(d.In(time.UTC).AddDate(0, 0, n))
}

func (d Date) AddMonths(n int) Date {
	return DateOf(d.In(time.UTC).AddDate(0, n, 0))
}

func (d Date) FirstOfMonth() Date {
	return Date{Year: d.Year, Month: d.Month, Day: 1}
}

func (d Date) LastOfMonth() Date {
	return d.FirstOfMonth().AddMonths(1).AddDays(-1)
}

func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

// DaysUntil returns the number of days from d to o (negative when o is earlier).
func (d Date) DaysUntil(o Date) int {
	return int(o.In(time.UTC).Sub(d.In(time.UTC)).Hours() / 24)
}

func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Date) UnmarshalText(b []byte) error {
	parsed, err := ParseDate(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// DateRange is a stay from Start (arrival) to End (departure). End is always
// strictly after Start; use NewDateRange or ParseDateRange to build one.
type DateRange struct {
	Start Date `json:"start"`
	End   Date `json:"end"`
}

func NewDateRange(start, end Date) (DateRange, error) {
	if !end.After(start) {
		return DateRange{}, fmt.Errorf("%w: %s to %s", ErrInvalidDateRange, start, end)
	}
	return DateRange{Start: start, End: end}, nil
}

// Validate reports ErrInvalidDateRange for ranges built without NewDateRange.
func (r DateRange) Validate() error {
	if r.Start.IsZero() || r.End.IsZero() || !r.End.After(r.Start) {
		return fmt.Errorf("%w: %s to %s", ErrInvalidDateRange, r.Start, r.End)
	}
	return nil
}

func ParseDateRange(start, end string) (DateRange, error) {
	s, err := ParseDate(start)
	if err != nil {
		return DateRange{}, err
	}
	e, err := ParseDate(end)
	if err != nil {
		return DateRange{}, err
	}
	return NewDateRange(s, e)
}

// Nights is the number of nights covered by the stay.
func (r DateRange) Nights() int {
	return r.Start.DaysUntil(r.End)
}

// Format renders the range the way customers and staff read it, e.g.
// "Jun 7, 2024 - Jun 10, 2024".
func (r DateRange) Format() string {
	const layout = "Jan 2, 2006"
	return r.Start.In(time.UTC).Format(layout) + " - " + r.End.In(time.UTC).Format(layout)
}

// ShortFormat renders "Jun 7 - Jun 10, 2024".
func (r DateRange) ShortFormat() string {
	return r.Start.In(time.UTC).Format("Jan 2") + " - " + r.End.In(time.UTC).Format("Jan 2, 2006")
}
