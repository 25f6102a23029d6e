// Package calendartools exposes calendar management to the model: creating
// one-off and recurring events, listing, and partial updates.
//
// All date parameters go through the relative-date resolver with the
// model-supplied current_date as anchor. Expected domain failures (a bad
// recurrence rule, a missing update field) come back as descriptive strings
// without touching the backend; backend faults propagate as errors for the
// middleware.
package calendartools

import (
	"context"
	"fmt"
	"strings"

	"github.com/mfalcone/eva"
	"github.com/mfalcone/eva/backends/gcal"
	"github.com/mfalcone/eva/dates"
	"github.com/mfalcone/eva/rrule"
	"github.com/mfalcone/eva/schema"
)

// DefaultTimeZone is applied when the model omits time_zone.
const DefaultTimeZone = "Europe/Rome"

// currentDateHint is appended to every date-consuming tool description; the
// model has no clock and must fetch one first.
const currentDateHint = " IMPORTANT: if the user mentions relative dates like " +
	"'tomorrow', 'today', 'next week' or 'next month', you MUST first call " +
	"the get_current_time tool and pass its result to the current_date " +
	"parameter. current_date is in format 'YYYY-MM-DD HH:MM:SS'. Dates are " +
	"in ISO format (e.g. '2026-01-20T19:00:00')."

// Group is the calendar tool group. The backend client is constructed once
// and reused for the group's lifetime.
type Group struct {
	svc      gcal.Service
	tp       eva.TimeProvider
	timeZone string
}

// Option configures a Group.
type Option func(*Group)

// WithTimeProvider injects a clock, for tests.
func WithTimeProvider(tp eva.TimeProvider) Option {
	return func(g *Group) { g.tp = tp }
}

// WithDefaultTimeZone overrides the default event timezone.
func WithDefaultTimeZone(tz string) Option {
	return func(g *Group) { g.timeZone = tz }
}

// New creates the calendar tool group over the given backend.
func New(svc gcal.Service, opts ...Option) *Group {
	g := &Group{
		svc:      svc,
		tp:       eva.NewDefaultTimeProvider(),
		timeZone: DefaultTimeZone,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Tools returns the group's tools.
func (g *Group) Tools() []eva.Tool {
	return []eva.Tool{
		g.addEventTool(),
		g.addRecurrentEventTool(),
		g.upcomingEventsTool(),
		g.eventsOnDateTool(),
		g.modifyEventTool(),
	}
}

func (g *Group) addEventTool() eva.Tool {
	return eva.NewTool(
		"add_event_to_calendar",
		"Adds an event to the calendar."+currentDateHint,
		schema.Object(map[string]*schema.Property{
			"event_name":       schema.String("Name/title of the event"),
			"event_location":   schema.String("Location of the event"),
			"event_desc":       schema.String("Description of the event"),
			"event_start_date": schema.String("Start date/time, ISO format"),
			"event_end_date":   schema.String("End date/time, ISO format"),
			"time_zone":        schema.String("IANA timezone of the event").Default(DefaultTimeZone),
			"email_reminder":   schema.Integer("Minutes before the event for an email reminder, 0 for none").Default(0),
			"popup_reminder":   schema.Integer("Minutes before the event for a popup reminder, 0 for none").Default(0),
			"current_date":     schema.String("Current date/time from get_current_time, used to resolve relative dates"),
		}, "event_name", "event_start_date", "event_end_date"),
		func(ctx context.Context, args map[string]any) (string, error) {
			current := eva.StringArg(args, "current_date", "")
			start := dates.ResolveAt(eva.StringArg(args, "event_start_date", ""), current, g.tp)
			end := dates.ResolveAt(eva.StringArg(args, "event_end_date", ""), current, g.tp)
			tz := eva.StringArg(args, "time_zone", g.timeZone)

			ev := &gcal.Event{
				Summary:     eva.StringArg(args, "event_name", ""),
				Location:    eva.StringArg(args, "event_location", ""),
				Description: eva.StringArg(args, "event_desc", ""),
				Start:       gcal.DateTime{DateTime: start, TimeZone: tz},
				End:         gcal.DateTime{DateTime: end, TimeZone: tz},
				Reminders: buildReminders(
					eva.IntArg(args, "email_reminder", 0),
					eva.IntArg(args, "popup_reminder", 0),
				),
			}

			created, err := g.svc.Insert(ctx, ev)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Event created: %s", created.HTMLLink), nil
		},
	)
}

func (g *Group) addRecurrentEventTool() eva.Tool {
	return eva.NewTool(
		"add_recurrent_event_to_calendar",
		"Adds a recurring event to the calendar. recurrence_rule is an RRULE "+
			"like 'FREQ=WEEKLY;BYDAY=TU' (every Tuesday) or "+
			"'FREQ=WEEKLY;BYDAY=TU;COUNT=10' (10 Tuesdays). Do NOT include a "+
			"WKST parameter. Start and end dates must include a time "+
			"component."+currentDateHint,
		schema.Object(map[string]*schema.Property{
			"event_name":       schema.String("Name/title of the event"),
			"event_start_date": schema.String("Start date/time, ISO format with time"),
			"event_end_date":   schema.String("End date/time, ISO format with time"),
			"recurrence_rule":  schema.String("RRULE, e.g. 'FREQ=WEEKLY;BYDAY=TU'"),
			"event_location":   schema.String("Location of the event"),
			"event_desc":       schema.String("Description of the event"),
			"time_zone":        schema.String("IANA timezone of the event").Default(DefaultTimeZone),
			"email_reminder":   schema.Integer("Minutes before each occurrence for an email reminder").Default(0),
			"popup_reminder":   schema.Integer("Minutes before each occurrence for a popup reminder").Default(0),
			"current_date":     schema.String("Current date/time from get_current_time"),
		}, "event_name", "event_start_date", "event_end_date", "recurrence_rule"),
		func(ctx context.Context, args map[string]any) (string, error) {
			ok, result := rrule.ValidateAndNormalize(eva.StringArg(args, "recurrence_rule", ""))
			if !ok {
				return fmt.Sprintf(
					"Error in recurrence_rule: %s. Use format like 'FREQ=WEEKLY;BYDAY=TU'",
					result), nil
			}

			current := eva.StringArg(args, "current_date", "")
			start := dates.ResolveAt(eva.StringArg(args, "event_start_date", ""), current, g.tp)
			end := dates.ResolveAt(eva.StringArg(args, "event_end_date", ""), current, g.tp)

			if !strings.Contains(start, "T") {
				return "Error: event_start_date must be in ISO format with time (e.g., '2026-01-20T19:00:00')", nil
			}
			if !strings.Contains(end, "T") {
				return "Error: event_end_date must be in ISO format with time (e.g., '2026-01-20T20:00:00')", nil
			}

			tz := eva.StringArg(args, "time_zone", g.timeZone)
			ev := &gcal.Event{
				Summary:     eva.StringArg(args, "event_name", ""),
				Location:    eva.StringArg(args, "event_location", ""),
				Description: eva.StringArg(args, "event_desc", ""),
				Start:       gcal.DateTime{DateTime: start, TimeZone: tz},
				End:         gcal.DateTime{DateTime: end, TimeZone: tz},
				Recurrence:  []string{result},
				Reminders: buildReminders(
					eva.IntArg(args, "email_reminder", 0),
					eva.IntArg(args, "popup_reminder", 0),
				),
			}

			created, err := g.svc.Insert(ctx, ev)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Recurrent Event created: %s", created.HTMLLink), nil
		},
	)
}

func (g *Group) upcomingEventsTool() eva.Tool {
	return eva.NewTool(
		"get_upcoming_events",
		"Retrieves upcoming events from the calendar.",
		schema.Object(map[string]*schema.Property{
			"max_results": schema.Integer("Maximum number of events to return").Min(1),
		}, "max_results"),
		func(ctx context.Context, args map[string]any) (string, error) {
			now := g.tp.Now().UTC().Format("2006-01-02T15:04:05") + "Z"
			events, err := g.svc.List(ctx, gcal.Query{
				TimeMin:    now,
				MaxResults: int64(eva.IntArg(args, "max_results", 10)),
			})
			if err != nil {
				return "", err
			}
			if len(events) == 0 {
				return "No upcoming events found.", nil
			}

			lines := make([]string, 0, len(events))
			for _, ev := range events {
				lines = append(lines, fmt.Sprintf("%s - %s - %s",
					ev.Start.Value(), ev.End.Value(), ev.Summary))
			}
			return strings.Join(lines, "\n"), nil
		},
	)
}

func (g *Group) eventsOnDateTool() eva.Tool {
	return eva.NewTool(
		"get_events_on_date",
		"Retrieves events on a specific date from the calendar. The date is "+
			"in format YYYY-MM-DD. Event IDs in the output can be passed to "+
			"modify_event.",
		schema.Object(map[string]*schema.Property{
			"date": schema.String("The date to query, format YYYY-MM-DD"),
		}, "date"),
		func(ctx context.Context, args map[string]any) (string, error) {
			date := eva.StringArg(args, "date", "")
			events, err := g.svc.List(ctx, gcal.Query{
				TimeMin: date + "T00:00:00Z",
				TimeMax: date + "T23:59:59Z",
			})
			if err != nil {
				return "", err
			}
			if len(events) == 0 {
				return fmt.Sprintf("No events found on %s.", date), nil
			}

			lines := make([]string, 0, len(events))
			for _, ev := range events {
				lines = append(lines, fmt.Sprintf("%s - %s - ID: %s",
					ev.Start.Value(), ev.Summary, ev.ID))
			}
			return strings.Join(lines, "\n"), nil
		},
	)
}

func (g *Group) modifyEventTool() eva.Tool {
	return eva.NewTool(
		"modify_event",
		"Modifies an event in the calendar. Provide the event ID and only "+
			"the fields you want to update; unspecified fields keep their "+
			"stored values. email_reminder and popup_reminder are in "+
			"minutes."+currentDateHint,
		schema.Object(map[string]*schema.Property{
			"event_id":       schema.String("ID of the event to modify"),
			"summary":        schema.String("New title"),
			"description":    schema.String("New description"),
			"location":       schema.String("New location"),
			"start_date":     schema.String("New start date/time, ISO format"),
			"end_date":       schema.String("New end date/time, ISO format"),
			"time_zone":      schema.String("IANA timezone for new dates"),
			"email_reminder": schema.Integer("Minutes before the event for an email reminder"),
			"popup_reminder": schema.Integer("Minutes before the event for a popup reminder"),
			"current_date":   schema.String("Current date/time from get_current_time"),
		}, "event_id"),
		func(ctx context.Context, args map[string]any) (string, error) {
			summary, hasSummary := eva.OptString(args, "summary")
			description, hasDescription := eva.OptString(args, "description")
			location, hasLocation := eva.OptString(args, "location")
			startDate, hasStart := eva.OptString(args, "start_date")
			endDate, hasEnd := eva.OptString(args, "end_date")
			timeZone, hasTZ := eva.OptString(args, "time_zone")
			emailRem, hasEmailRem := eva.OptInt(args, "email_reminder")
			popupRem, hasPopupRem := eva.OptInt(args, "popup_reminder")

			if !hasSummary && !hasDescription && !hasLocation &&
				!hasStart && !hasEnd && !hasEmailRem && !hasPopupRem {
				return "Error: At least one field must be provided to update.", nil
			}

			current := eva.StringArg(args, "current_date", "")
			if hasStart {
				startDate = dates.ResolveAt(startDate, current, g.tp)
			}
			if hasEnd {
				endDate = dates.ResolveAt(endDate, current, g.tp)
			}

			ev, err := g.svc.Get(ctx, eva.StringArg(args, "event_id", ""))
			if err != nil {
				return "", err
			}

			if hasSummary {
				ev.Summary = summary
			}
			if hasDescription {
				ev.Description = description
			}
			if hasLocation {
				ev.Location = location
			}

			if hasStart || hasEnd || hasTZ {
				// Timezone defaults to the previously stored zone when only
				// dates change.
				tz := timeZone
				if tz == "" {
					tz = ev.Start.TimeZone
				}
				if tz == "" {
					tz = "UTC"
				}
				if hasStart {
					ev.Start = gcal.DateTime{DateTime: startDate, TimeZone: tz}
				}
				if hasEnd {
					ev.End = gcal.DateTime{DateTime: endDate, TimeZone: tz}
				}
			}

			if hasEmailRem || hasPopupRem {
				// Overrides are replaced, not merged.
				var overrides []gcal.Reminder
				if hasEmailRem {
					overrides = append(overrides, gcal.Reminder{Method: "email", Minutes: int64(emailRem)})
				}
				if hasPopupRem {
					overrides = append(overrides, gcal.Reminder{Method: "popup", Minutes: int64(popupRem)})
				}
				ev.Reminders = &gcal.Reminders{UseDefault: false, Overrides: overrides}
			}

			updated, err := g.svc.Update(ctx, ev.ID, ev)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("Event updated: %s", updated.HTMLLink), nil
		},
	)
}

// buildReminders maps reminder minutes to the backend shape: calendar
// defaults when both are zero, explicit overrides otherwise.
func buildReminders(emailMinutes, popupMinutes int) *gcal.Reminders {
	var overrides []gcal.Reminder
	if emailMinutes > 0 {
		overrides = append(overrides, gcal.Reminder{Method: "email", Minutes: int64(emailMinutes)})
	}
	if popupMinutes > 0 {
		overrides = append(overrides, gcal.Reminder{Method: "popup", Minutes: int64(popupMinutes)})
	}
	if len(overrides) == 0 {
		return &gcal.Reminders{UseDefault: true}
	}
	return &gcal.Reminders{UseDefault: false, Overrides: overrides}
}

var _ eva.Group = (*Group)(nil)
