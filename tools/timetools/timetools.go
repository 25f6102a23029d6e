// Package timetools exposes the clock to the model.
//
// get_current_time is the anchor for the two-step relative-date protocol:
// the model has no clock, so every date-consuming tool instructs it to call
// get_current_time first and pass the result along as current_date.
package timetools

import (
	"context"

	"github.com/mfalcone/eva"
)

// Group is the time tool group.
type Group struct {
	tp eva.TimeProvider
}

// New creates the group using the system clock.
func New() *Group {
	return NewWithTimeProvider(eva.NewDefaultTimeProvider())
}

// NewWithTimeProvider creates the group with an injected clock.
func NewWithTimeProvider(tp eva.TimeProvider) *Group {
	return &Group{tp: tp}
}

// Tools returns the group's tools.
func (g *Group) Tools() []eva.Tool {
	return []eva.Tool{
		eva.NewTool(
			"get_current_time",
			"Returns the current system time as a string in format "+
				"'YYYY-MM-DD HH:MM:SS' (local timezone). Call this tool "+
				"first whenever the user mentions relative dates like "+
				"'tomorrow', 'today', 'next week' or 'next month', and pass "+
				"the result to the current_date parameter of the calendar "+
				"tools.",
			nil,
			func(ctx context.Context, args map[string]any) (string, error) {
				return g.tp.Format(eva.ClockLayout), nil
			},
		),
	}
}

var _ eva.Group = (*Group)(nil)
