package calendar

import (
	"context"
	"fmt"
	"strings"
	"time"

	"paws/pkg/logger"
	"paws/pkg/model"

	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const (
	eventStatusCancelled = "cancelled"
	eventsPageSize       = 250
	unnamedEvent         = "Unnamed event"
	localDateTimeLayout  = "2006-01-02T15:04:05"
)

// Credentials identify the service account that reads the facility calendar.
type Credentials struct {
	CalendarID          string
	ServiceAccountEmail string
	// PrivateKey is the PEM key; literal "\n" sequences from env files are
	// accepted.
	PrivateKey string
}

// GoogleGateway is the Google Calendar v3 implementation of Gateway.
type GoogleGateway struct {
	events     *gcal.EventsService
	calendarID string
	loc        *time.Location
	log        *logger.Logger
}

func NewGoogleGateway(ctx context.Context, creds Credentials, loc *time.Location, log *logger.Logger) (*GoogleGateway, error) {
	conf := &jwt.Config{
		Email:      creds.ServiceAccountEmail,
		PrivateKey: []byte(strings.ReplaceAll(creds.PrivateKey, `\n`, "\n")),
		Scopes:     []string{gcal.CalendarReadonlyScope},
		TokenURL:   google.JWTTokenURL,
	}
	return newGoogleGateway(ctx, creds.CalendarID, loc, log, option.WithHTTPClient(conf.Client(ctx)))
}

func newGoogleGateway(ctx context.Context, calendarID string, loc *time.Location, log *logger.Logger, opts ...option.ClientOption) (*GoogleGateway, error) {
	if calendarID == "" {
		return nil, fmt.Errorf("calendar id is required")
	}
	if loc == nil {
		return nil, fmt.Errorf("facility location is required")
	}
	srv, err := gcal.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar service: %w", err)
	}
	return &GoogleGateway{
		events:     srv.Events,
		calendarID: calendarID,
		loc:        loc,
		log:        log,
	}, nil
}

func (g *GoogleGateway) ListBusyIntervals(ctx context.Context, windowStart, windowEnd model.Date) ([]BusyInterval, error) {
	timeMin := windowStart.In(g.loc).UTC().Format(time.RFC3339)
	timeMax := windowEnd.In(g.loc).UTC().Format(time.RFC3339)

	call := g.events.List(g.calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(timeMin).
		TimeMax(timeMax).
		MaxResults(eventsPageSize)

	var intervals []BusyInterval
	err := call.Pages(ctx, func(page *gcal.Events) error {
		for _, item := range page.Items {
			if item.Status == eventStatusCancelled {
				continue
			}
			interval, exact, err := g.toBusyInterval(item)
			if err != nil {
				return err
			}
			if !exact {
				g.log.Warn("calendar event has unusable bounds, blocking whole days",
					"event_id", item.Id,
					"start", interval.Start.Format(model.DateLayout),
					"end", interval.End.Format(model.DateLayout),
				)
			}
			intervals = append(intervals, interval)
		}
		return nil
	})
	if err != nil {
		return nil, WrapUpstream(err)
	}

	g.log.Debug("calendar events fetched",
		"time_min", timeMin,
		"time_max", timeMax,
		"count", len(intervals),
	)
	return intervals, nil
}

// eventBound is one side of an event after parsing. day is the facility
// date the bound falls on.
type eventBound struct {
	at     time.Time
	day    model.Date
	allDay bool
	ok     bool
}

func (g *GoogleGateway) parseBound(dt *gcal.EventDateTime) eventBound {
	if dt == nil {
		return eventBound{}
	}
	if dt.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, dt.DateTime); err == nil {
			return eventBound{at: t, day: model.DateOf(t.In(g.loc)), ok: true}
		}
		loc := g.loc
		if dt.TimeZone != "" {
			if tz, err := time.LoadLocation(dt.TimeZone); err == nil {
				loc = tz
			}
		}
		if t, err := time.ParseInLocation(localDateTimeLayout, dt.DateTime, loc); err == nil {
			return eventBound{at: t, day: model.DateOf(t.In(g.loc)), ok: true}
		}
		return eventBound{}
	}
	if d, err := model.ParseDate(dt.Date); err == nil {
		return eventBound{at: d.In(time.UTC), day: d, allDay: true, ok: true}
	}
	return eventBound{}
}

// toBusyInterval maps an event to the span it occupies. exact is false when
// the bounds could not be used as given and the event was widened to whole
// facility days. An event with no readable bound at all is an error.
func (g *GoogleGateway) toBusyInterval(item *gcal.Event) (BusyInterval, bool, error) {
	label := strings.TrimSpace(item.Summary)
	if label == "" {
		label = unnamedEvent
	}

	start, end := g.parseBound(item.Start), g.parseBound(item.End)
	if !start.ok && !end.ok {
		return BusyInterval{}, false, fmt.Errorf("calendar event %q has no readable start or end", item.Id)
	}

	if start.ok && end.ok && start.allDay == end.allDay {
		if start.allDay && end.day.After(start.day) {
			return BusyInterval{Start: start.at, End: end.at, Label: label, AllDay: true}, true, nil
		}
		if !start.allDay && !end.at.Before(start.at) {
			return BusyInterval{Start: start.at, End: end.at, Label: label}, true, nil
		}
	}

	var first, last model.Date
	switch {
	case start.ok && end.ok:
		first, last = start.day, end.day
		if !end.allDay {
			last = last.AddDays(1)
		}
	case start.ok:
		first, last = start.day, start.day.AddDays(1)
	case end.allDay:
		first, last = end.day.AddDays(-1), end.day
	default:
		first, last = end.day, end.day.AddDays(1)
	}
	if !last.After(first) {
		last = first.AddDays(1)
	}
	return BusyInterval{Start: first.In(time.UTC), End: last.In(time.UTC), Label: label, AllDay: true}, false, nil
}
