package gcal

import (
	"context"
	"fmt"
	"net/http"

	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Scope is the OAuth scope the calendar backend requires.
const Scope = calendar.CalendarScope

// Events live on the user's primary calendar, matching the reference
// assistant's single-user setup.
const calendarID = "primary"

// GoogleService implements Service over the Google Calendar API.
type GoogleService struct {
	svc *calendar.Service
}

// NewGoogle builds a GoogleService from an authorized HTTP client.
func NewGoogle(ctx context.Context, client *http.Client) (*GoogleService, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("gcal: creating calendar service: %w", err)
	}
	return &GoogleService{svc: svc}, nil
}

// Insert creates an event and returns the stored record.
func (g *GoogleService) Insert(ctx context.Context, ev *Event) (*Event, error) {
	created, err := g.svc.Events.Insert(calendarID, toAPI(ev)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gcal: insert: %w", err)
	}
	return fromAPI(created), nil
}

// List returns events ordered by start time, with recurring events expanded
// to single instances.
func (g *GoogleService) List(ctx context.Context, q Query) ([]*Event, error) {
	call := g.svc.Events.List(calendarID).
		TimeMin(q.TimeMin).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx)
	if q.TimeMax != "" {
		call = call.TimeMax(q.TimeMax)
	}
	if q.MaxResults > 0 {
		call = call.MaxResults(q.MaxResults)
	}

	res, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("gcal: list: %w", err)
	}

	events := make([]*Event, 0, len(res.Items))
	for _, item := range res.Items {
		events = append(events, fromAPI(item))
	}
	return events, nil
}

// Get fetches a single event by id.
func (g *GoogleService) Get(ctx context.Context, eventID string) (*Event, error) {
	ev, err := g.svc.Events.Get(calendarID, eventID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gcal: get %s: %w", eventID, err)
	}
	return fromAPI(ev), nil
}

// Update replaces the stored event. Callers fetch, patch and resend; partial
// update semantics live in the tool layer.
func (g *GoogleService) Update(ctx context.Context, eventID string, ev *Event) (*Event, error) {
	updated, err := g.svc.Events.Update(calendarID, eventID, toAPI(ev)).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("gcal: update %s: %w", eventID, err)
	}
	return fromAPI(updated), nil
}

func toAPI(ev *Event) *calendar.Event {
	out := &calendar.Event{
		Summary:     ev.Summary,
		Location:    ev.Location,
		Description: ev.Description,
		Start:       toAPIDateTime(ev.Start),
		End:         toAPIDateTime(ev.End),
		Recurrence:  ev.Recurrence,
	}
	if ev.Reminders != nil {
		out.Reminders = &calendar.EventReminders{
			UseDefault: ev.Reminders.UseDefault,
			// UseDefault=false must be sent explicitly or the API treats
			// the field as absent and ignores the overrides.
			ForceSendFields: []string{"UseDefault"},
		}
		for _, r := range ev.Reminders.Overrides {
			out.Reminders.Overrides = append(out.Reminders.Overrides, &calendar.EventReminder{
				Method:  r.Method,
				Minutes: r.Minutes,
			})
		}
	}
	return out
}

func toAPIDateTime(d DateTime) *calendar.EventDateTime {
	if d.DateTime == "" && d.Date == "" {
		return nil
	}
	return &calendar.EventDateTime{
		DateTime: d.DateTime,
		Date:     d.Date,
		TimeZone: d.TimeZone,
	}
}

func fromAPI(ev *calendar.Event) *Event {
	out := &Event{
		ID:          ev.Id,
		HTMLLink:    ev.HtmlLink,
		Summary:     ev.Summary,
		Location:    ev.Location,
		Description: ev.Description,
		Recurrence:  ev.Recurrence,
	}
	if ev.Start != nil {
		out.Start = DateTime{DateTime: ev.Start.DateTime, Date: ev.Start.Date, TimeZone: ev.Start.TimeZone}
	}
	if ev.End != nil {
		out.End = DateTime{DateTime: ev.End.DateTime, Date: ev.End.Date, TimeZone: ev.End.TimeZone}
	}
	if ev.Reminders != nil {
		rem := &Reminders{UseDefault: ev.Reminders.UseDefault}
		for _, o := range ev.Reminders.Overrides {
			rem.Overrides = append(rem.Overrides, Reminder{Method: o.Method, Minutes: o.Minutes})
		}
		out.Reminders = rem
	}
	return out
}
