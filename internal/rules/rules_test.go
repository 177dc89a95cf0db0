package rules

import (
	"errors"
	"testing"
	"time"

	"paws/pkg/model"
)

// 2024-06-02 is a Sunday, so 2024-06-02+n falls on time.Weekday(n).
func dayOf(w time.Weekday, week int) model.Date {
	return model.NewDate(2024, time.June, 2).AddDays(int(w) + 7*week)
}

func TestClassify_Grid(t *testing.T) {
	for sd := time.Sunday; sd <= time.Saturday; sd++ {
		for ed := time.Sunday; ed <= time.Saturday; ed++ {
			start := dayOf(sd, 0)
			end := dayOf(ed, 1)
			r, err := model.NewDateRange(start, end)
			if err != nil {
				t.Fatalf("bad fixture %v..%v: %v", start, end, err)
			}

			got := Classify(r)

			var want model.BookingType
			switch {
			case sd == time.Friday && ed == time.Monday:
				want = model.BookingTypeWeekendPackage
			case sd >= time.Monday && sd <= time.Thursday && ed >= time.Monday && ed <= time.Thursday:
				want = model.BookingTypeWeeknight
			default:
				want = model.BookingTypeInvalid
			}

			if got.Type != want {
				t.Errorf("Classify(%v→%v) = %s, want %s", sd, ed, got.Type, want)
			}
			if want == model.BookingTypeInvalid && got.Reason == "" {
				t.Errorf("Classify(%v→%v) invalid without a reason", sd, ed)
			}
			if want != model.BookingTypeInvalid && got.Reason != "" {
				t.Errorf("Classify(%v→%v) valid with reason %q", sd, ed, got.Reason)
			}
		}
	}
}

func TestClassify_Scenarios(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       model.BookingType
	}{
		{"weekend package", "2024-06-07", "2024-06-10", model.BookingTypeWeekendPackage},
		{"saturday to sunday", "2024-06-08", "2024-06-09", model.BookingTypeInvalid},
		{"monday to thursday", "2024-06-10", "2024-06-13", model.BookingTypeWeeknight},
		{"single weeknight", "2024-06-11", "2024-06-12", model.BookingTypeWeeknight},
		{"friday to sunday", "2024-06-07", "2024-06-09", model.BookingTypeInvalid},
		{"thursday to friday", "2024-06-13", "2024-06-14", model.BookingTypeInvalid},
		{"friday to monday two weeks later", "2024-06-07", "2024-06-17", model.BookingTypeWeekendPackage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := model.ParseDateRange(tt.start, tt.end)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := Classify(r); got.Type != tt.want {
				t.Errorf("Classify() = %s, want %s", got.Type, tt.want)
			}
		})
	}
}

func TestValidateStay(t *testing.T) {
	today := model.NewDate(2024, time.June, 5)

	tests := []struct {
		name     string
		r        model.DateRange
		wantErr  error
		wantType model.BookingType
	}{
		{
			name:     "weekend package in the future",
			r:        model.DateRange{Start: model.NewDate(2024, time.June, 7), End: model.NewDate(2024, time.June, 10)},
			wantType: model.BookingTypeWeekendPackage,
		},
		{
			name:     "arrival today is allowed",
			r:        model.DateRange{Start: today, End: today.AddDays(1)},
			wantType: model.BookingTypeWeeknight,
		},
		{
			name:    "arrival yesterday",
			r:       model.DateRange{Start: today.AddDays(-1), End: today.AddDays(1)},
			wantErr: ErrPastDateRequested,
		},
		{
			name:    "end equals start",
			r:       model.DateRange{Start: today.AddDays(1), End: today.AddDays(1)},
			wantErr: model.ErrInvalidDateRange,
		},
		{
			name:    "end before start in the past reports range first",
			r:       model.DateRange{Start: today.AddDays(-1), End: today.AddDays(-3)},
			wantErr: model.ErrInvalidDateRange,
		},
		{
			name:    "saturday to sunday",
			r:       model.DateRange{Start: model.NewDate(2024, time.June, 8), End: model.NewDate(2024, time.June, 9)},
			wantErr: ErrRulePatternViolation,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ValidateStay(tt.r, today)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				if c.Valid() {
					t.Errorf("classification should be invalid on error, got %s", c.Type)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if c.Type != tt.wantType {
				t.Errorf("Type = %s, want %s", c.Type, tt.wantType)
			}
		})
	}
}

func TestValidateStay_PatternReason(t *testing.T) {
	r := model.DateRange{Start: model.NewDate(2024, time.June, 8), End: model.NewDate(2024, time.June, 9)}
	c, _ := ValidateStay(r, model.NewDate(2024, time.June, 1))
	if c.Reason != InvalidPatternReason {
		t.Errorf("Reason = %q, want %q", c.Reason, InvalidPatternReason)
	}
}
