package calendartools

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfalcone/eva"
	"github.com/mfalcone/eva/backends/gcal"
)

// fakeCalendar counts backend calls and records the last inserted/updated
// event.
type fakeCalendar struct {
	inserts   int
	lists     int
	gets      int
	updates   int
	lastEvent *gcal.Event
	lastQuery gcal.Query
	stored    *gcal.Event
	listed    []*gcal.Event
}

func (f *fakeCalendar) Insert(ctx context.Context, ev *gcal.Event) (*gcal.Event, error) {
	f.inserts++
	f.lastEvent = ev
	created := *ev
	created.ID = "ev-1"
	created.HTMLLink = "https://calendar.example.com/ev-1"
	return &created, nil
}

func (f *fakeCalendar) List(ctx context.Context, q gcal.Query) ([]*gcal.Event, error) {
	f.lists++
	f.lastQuery = q
	return f.listed, nil
}

func (f *fakeCalendar) Get(ctx context.Context, id string) (*gcal.Event, error) {
	f.gets++
	if f.stored == nil {
		return nil, fmt.Errorf("no event %s", id)
	}
	stored := *f.stored
	return &stored, nil
}

func (f *fakeCalendar) Update(ctx context.Context, id string, ev *gcal.Event) (*gcal.Event, error) {
	f.updates++
	f.lastEvent = ev
	updated := *ev
	updated.HTMLLink = "https://calendar.example.com/" + id
	return &updated, nil
}

var _ gcal.Service = (*fakeCalendar)(nil)

func newTestGroup(fake *fakeCalendar) *Group {
	tp := eva.NewMockTimeProvider(time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC))
	return New(fake, WithTimeProvider(tp))
}

func findTool(t *testing.T, g *Group, name string) eva.Tool {
	t.Helper()
	for _, tool := range g.Tools() {
		if tool.Name() == name {
			return tool
		}
	}
	t.Fatalf("tool %s not found", name)
	return nil
}

func TestAddEvent(t *testing.T) {
	fake := &fakeCalendar{}
	tool := findTool(t, newTestGroup(fake), "add_event_to_calendar")

	result, err := tool.Call(context.Background(), map[string]any{
		"event_name":       "Dinner",
		"event_location":   "Via Roma 1",
		"event_desc":       "Dinner with friends",
		"event_start_date": "2024-01-20T19:00:00",
		"event_end_date":   "2024-01-20T21:00:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "Event created: https://calendar.example.com/ev-1", result)
	require.Equal(t, 1, fake.inserts)

	ev := fake.lastEvent
	assert.Equal(t, "Dinner", ev.Summary)
	assert.Equal(t, "2024-01-20T19:00:00", ev.Start.DateTime)
	assert.Equal(t, "2024-01-20T21:00:00", ev.End.DateTime)
	assert.Equal(t, DefaultTimeZone, ev.Start.TimeZone)
	require.NotNil(t, ev.Reminders)
	assert.True(t, ev.Reminders.UseDefault)
	assert.Empty(t, ev.Reminders.Overrides)
}

func TestAddEvent_ResolvesRelativeDates(t *testing.T) {
	fake := &fakeCalendar{}
	tool := findTool(t, newTestGroup(fake), "add_event_to_calendar")

	_, err := tool.Call(context.Background(), map[string]any{
		"event_name":       "Standup",
		"event_start_date": "tomorrowT09:00:00",
		"event_end_date":   "tomorrowT09:15:00",
		"current_date":     "2024-03-01 08:00:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02T09:00:00", fake.lastEvent.Start.DateTime)
	assert.Equal(t, "2024-03-02T09:15:00", fake.lastEvent.End.DateTime)
}

func TestAddEvent_Reminders(t *testing.T) {
	tests := []struct {
		name       string
		email      int
		popup      int
		useDefault bool
		overrides  int
	}{
		{"both zero uses defaults", 0, 0, true, 0},
		{"email only", 30, 0, false, 1},
		{"popup only", 0, 15, false, 1},
		{"both", 30, 15, false, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeCalendar{}
			tool := findTool(t, newTestGroup(fake), "add_event_to_calendar")

			_, err := tool.Call(context.Background(), map[string]any{
				"event_name":       "Dinner",
				"event_start_date": "2024-01-20T19:00:00",
				"event_end_date":   "2024-01-20T21:00:00",
				"email_reminder":   float64(tt.email),
				"popup_reminder":   float64(tt.popup),
			})
			require.NoError(t, err)

			rem := fake.lastEvent.Reminders
			require.NotNil(t, rem)
			assert.Equal(t, tt.useDefault, rem.UseDefault)
			assert.Len(t, rem.Overrides, tt.overrides)
		})
	}
}

func TestAddRecurrentEvent(t *testing.T) {
	fake := &fakeCalendar{}
	tool := findTool(t, newTestGroup(fake), "add_recurrent_event_to_calendar")

	result, err := tool.Call(context.Background(), map[string]any{
		"event_name":       "Weekly sync",
		"event_start_date": "2024-01-16T10:00:00",
		"event_end_date":   "2024-01-16T10:30:00",
		"recurrence_rule":  "FREQ=WEEKLY;BYDAY=TU;WKST=MO",
	})
	require.NoError(t, err)
	assert.Equal(t, "Recurrent Event created: https://calendar.example.com/ev-1", result)
	// WKST is stripped before the rule reaches the backend.
	assert.Equal(t, []string{"FREQ=WEEKLY;BYDAY=TU"}, fake.lastEvent.Recurrence)
}

func TestAddRecurrentEvent_InvalidRuleSkipsBackend(t *testing.T) {
	fake := &fakeCalendar{}
	tool := findTool(t, newTestGroup(fake), "add_recurrent_event_to_calendar")

	result, err := tool.Call(context.Background(), map[string]any{
		"event_name":       "Weekly sync",
		"event_start_date": "2024-01-16T10:00:00",
		"event_end_date":   "2024-01-16T10:30:00",
		"recurrence_rule":  "COUNT=10;",
	})
	require.NoError(t, err)
	assert.Contains(t, result, "Error in recurrence_rule:")
	assert.Contains(t, result, "must contain FREQ")
	assert.Contains(t, result, "Use format like 'FREQ=WEEKLY;BYDAY=TU'")
	assert.Equal(t, 0, fake.inserts)
}

func TestAddRecurrentEvent_MissingTimeComponentSkipsBackend(t *testing.T) {
	fake := &fakeCalendar{}
	tool := findTool(t, newTestGroup(fake), "add_recurrent_event_to_calendar")

	result, err := tool.Call(context.Background(), map[string]any{
		"event_name":       "Weekly sync",
		"event_start_date": "2024-01-16",
		"event_end_date":   "2024-01-16T10:30:00",
		"recurrence_rule":  "FREQ=WEEKLY",
	})
	require.NoError(t, err)
	assert.Contains(t, result, "event_start_date must be in ISO format with time")
	assert.Equal(t, 0, fake.inserts)

	result, err = tool.Call(context.Background(), map[string]any{
		"event_name":       "Weekly sync",
		"event_start_date": "2024-01-16T10:00:00",
		"event_end_date":   "2024-01-16",
		"recurrence_rule":  "FREQ=WEEKLY",
	})
	require.NoError(t, err)
	assert.Contains(t, result, "event_end_date must be in ISO format with time")
	assert.Equal(t, 0, fake.inserts)
}

func TestUpcomingEvents(t *testing.T) {
	fake := &fakeCalendar{listed: []*gcal.Event{
		{
			ID:      "e1",
			Summary: "Dentist",
			Start:   gcal.DateTime{DateTime: "2024-01-16T09:00:00"},
			End:     gcal.DateTime{DateTime: "2024-01-16T10:00:00"},
		},
		{
			ID:      "e2",
			Summary: "Holiday",
			Start:   gcal.DateTime{Date: "2024-01-20"},
			End:     gcal.DateTime{Date: "2024-01-21"},
		},
	}}
	tool := findTool(t, newTestGroup(fake), "get_upcoming_events")

	result, err := tool.Call(context.Background(), map[string]any{"max_results": float64(5)})
	require.NoError(t, err)
	assert.Equal(t,
		"2024-01-16T09:00:00 - 2024-01-16T10:00:00 - Dentist\n"+
			"2024-01-20 - 2024-01-21 - Holiday",
		result)

	// TimeMin comes from the injected clock in UTC.
	assert.Equal(t, "2024-01-15T10:00:00Z", fake.lastQuery.TimeMin)
	assert.Equal(t, int64(5), fake.lastQuery.MaxResults)
}

func TestUpcomingEvents_Empty(t *testing.T) {
	fake := &fakeCalendar{}
	tool := findTool(t, newTestGroup(fake), "get_upcoming_events")

	result, err := tool.Call(context.Background(), map[string]any{"max_results": float64(5)})
	require.NoError(t, err)
	assert.Equal(t, "No upcoming events found.", result)
}

func TestEventsOnDate(t *testing.T) {
	fake := &fakeCalendar{listed: []*gcal.Event{
		{
			ID:      "e1",
			Summary: "Dentist",
			Start:   gcal.DateTime{DateTime: "2024-01-16T09:00:00"},
		},
	}}
	tool := findTool(t, newTestGroup(fake), "get_events_on_date")

	result, err := tool.Call(context.Background(), map[string]any{"date": "2024-01-16"})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-16T09:00:00 - Dentist - ID: e1", result)
	assert.Equal(t, "2024-01-16T00:00:00Z", fake.lastQuery.TimeMin)
	assert.Equal(t, "2024-01-16T23:59:59Z", fake.lastQuery.TimeMax)
}

func TestEventsOnDate_Empty(t *testing.T) {
	fake := &fakeCalendar{}
	tool := findTool(t, newTestGroup(fake), "get_events_on_date")

	result, err := tool.Call(context.Background(), map[string]any{"date": "2024-01-16"})
	require.NoError(t, err)
	assert.Equal(t, "No events found on 2024-01-16.", result)
}

func TestModifyEvent_NoFieldsSkipsBackend(t *testing.T) {
	fake := &fakeCalendar{}
	tool := findTool(t, newTestGroup(fake), "modify_event")

	result, err := tool.Call(context.Background(), map[string]any{"event_id": "ev-1"})
	require.NoError(t, err)
	assert.Equal(t, "Error: At least one field must be provided to update.", result)
	assert.Equal(t, 0, fake.gets)
	assert.Equal(t, 0, fake.updates)
}

func TestModifyEvent_PartialPatch(t *testing.T) {
	fake := &fakeCalendar{stored: &gcal.Event{
		ID:          "ev-1",
		Summary:     "Old title",
		Location:    "Old place",
		Description: "Old description",
		Start:       gcal.DateTime{DateTime: "2024-01-20T19:00:00", TimeZone: "Europe/Rome"},
		End:         gcal.DateTime{DateTime: "2024-01-20T21:00:00", TimeZone: "Europe/Rome"},
	}}
	tool := findTool(t, newTestGroup(fake), "modify_event")

	result, err := tool.Call(context.Background(), map[string]any{
		"event_id": "ev-1",
		"summary":  "New title",
	})
	require.NoError(t, err)
	assert.Equal(t, "Event updated: https://calendar.example.com/ev-1", result)
	require.Equal(t, 1, fake.updates)

	ev := fake.lastEvent
	assert.Equal(t, "New title", ev.Summary)
	// Untouched fields keep their stored values.
	assert.Equal(t, "Old place", ev.Location)
	assert.Equal(t, "Old description", ev.Description)
	assert.Equal(t, "2024-01-20T19:00:00", ev.Start.DateTime)
}

func TestModifyEvent_DateKeepsStoredTimeZone(t *testing.T) {
	fake := &fakeCalendar{stored: &gcal.Event{
		ID:    "ev-1",
		Start: gcal.DateTime{DateTime: "2024-01-20T19:00:00", TimeZone: "Europe/Rome"},
		End:   gcal.DateTime{DateTime: "2024-01-20T21:00:00", TimeZone: "Europe/Rome"},
	}}
	tool := findTool(t, newTestGroup(fake), "modify_event")

	_, err := tool.Call(context.Background(), map[string]any{
		"event_id":   "ev-1",
		"start_date": "2024-01-21T19:00:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-01-21T19:00:00", fake.lastEvent.Start.DateTime)
	assert.Equal(t, "Europe/Rome", fake.lastEvent.Start.TimeZone)
	// End keeps its stored value.
	assert.Equal(t, "2024-01-20T21:00:00", fake.lastEvent.End.DateTime)
}

func TestModifyEvent_ZeroReminderIsAnUpdate(t *testing.T) {
	fake := &fakeCalendar{stored: &gcal.Event{
		ID: "ev-1",
		Reminders: &gcal.Reminders{
			Overrides: []gcal.Reminder{{Method: "email", Minutes: 30}},
		},
	}}
	tool := findTool(t, newTestGroup(fake), "modify_event")

	_, err := tool.Call(context.Background(), map[string]any{
		"event_id":       "ev-1",
		"popup_reminder": float64(0),
	})
	require.NoError(t, err)

	rem := fake.lastEvent.Reminders
	require.NotNil(t, rem)
	assert.False(t, rem.UseDefault)
	// Overrides are replaced wholesale, not merged with stored ones.
	require.Len(t, rem.Overrides, 1)
	assert.Equal(t, "popup", rem.Overrides[0].Method)
	assert.Equal(t, int64(0), rem.Overrides[0].Minutes)
}

func TestModifyEvent_ResolvesRelativeDates(t *testing.T) {
	fake := &fakeCalendar{stored: &gcal.Event{
		ID:    "ev-1",
		Start: gcal.DateTime{DateTime: "2024-01-20T19:00:00", TimeZone: "Europe/Rome"},
	}}
	tool := findTool(t, newTestGroup(fake), "modify_event")

	_, err := tool.Call(context.Background(), map[string]any{
		"event_id":     "ev-1",
		"start_date":   "tomorrowT09:00:00",
		"current_date": "2024-03-01 08:00:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "2024-03-02T09:00:00", fake.lastEvent.Start.DateTime)
}
