// Package gcal defines the narrow calendar capability the tool layer needs:
// insert, list, get, update. The Google Calendar SDK is bound behind it so
// tests can substitute a double implementing the same four verbs.
package gcal

import "context"

// DateTime is an event boundary. DateTime is set for timed events, Date for
// all-day events; the backend populates exactly one.
type DateTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

// Value returns the timed value, falling back to the all-day date.
func (d DateTime) Value() string {
	if d.DateTime != "" {
		return d.DateTime
	}
	return d.Date
}

// Reminder is one reminder override.
type Reminder struct {
	Method  string `json:"method"` // "email" or "popup"
	Minutes int64  `json:"minutes"`
}

// Reminders configures event reminders: either the calendar defaults or an
// explicit override list.
type Reminders struct {
	UseDefault bool       `json:"useDefault"`
	Overrides  []Reminder `json:"overrides,omitempty"`
}

// Event is the request/record shape exchanged with the backend. Storage is
// backend-owned; ID and HTMLLink are populated on records coming back.
type Event struct {
	ID          string     `json:"id,omitempty"`
	HTMLLink    string     `json:"htmlLink,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Location    string     `json:"location,omitempty"`
	Description string     `json:"description,omitempty"`
	Start       DateTime   `json:"start"`
	End         DateTime   `json:"end"`
	Recurrence  []string   `json:"recurrence,omitempty"`
	Reminders   *Reminders `json:"reminders,omitempty"`
}

// Query selects events for List.
type Query struct {
	// TimeMin is the RFC3339 lower bound, required.
	TimeMin string

	// TimeMax is the optional RFC3339 upper bound.
	TimeMax string

	// MaxResults caps the result set when positive.
	MaxResults int64
}

// Service is the calendar backend capability.
type Service interface {
	Insert(ctx context.Context, ev *Event) (*Event, error)
	List(ctx context.Context, q Query) ([]*Event, error)
	Get(ctx context.Context, eventID string) (*Event, error)
	Update(ctx context.Context, eventID string, ev *Event) (*Event, error)
}
