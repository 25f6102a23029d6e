// Package dates resolves relative date phrases against an anchor clock.
//
// The model has no innate clock, so date-consuming tools receive an
// agent-supplied "current time" string and resolve phrases like "tomorrow"
// against it.
package dates

import (
	"fmt"
	"strings"
	"time"

	"github.com/mfalcone/eva"
)

const dateLayout = "2006-01-02"

// anchorLayouts are tried in order when parsing the model-supplied anchor.
// The anchor may be malformed; resolution must never fail a scheduling
// request just because the clock string was imperfect, so the final tier is
// the process clock.
var anchorLayouts = []string{
	eva.ClockLayout,
	dateLayout,
}

// Resolve converts a possibly-relative date phrase into an absolute date
// string using the process clock as the fallback anchor.
func Resolve(dateStr, anchor string) string {
	return ResolveAt(dateStr, anchor, eva.NewDefaultTimeProvider())
}

// ResolveAt is Resolve with an injectable clock.
//
// Exact matches (case-insensitive) of "today", "tomorrow", "yesterday",
// "next week" and "next month" map to day offsets 0, +1, -1, +7 and +30 from
// the anchor date. Inputs merely containing "today"/"tomorrow"/"yesterday"
// (e.g. "tomorrow at 3pm") resolve the day offset from the keyword alone.
// In both cases an ISO time component after a 'T' separator is reattached
// verbatim. Free-text time phrases like "at 3pm" are never parsed into a
// time component.
//
// Anything else is assumed already absolute and returned unchanged.
func ResolveAt(dateStr, anchor string, tp eva.TimeProvider) string {
	lower := strings.ToLower(strings.TrimSpace(dateStr))

	// A 'T' is only a time separator when a clock value follows it; the
	// capital in "Tomorrow" must not be mistaken for one.
	timePart := ""
	for i := 0; i < len(dateStr); i++ {
		if dateStr[i] == 'T' && looksLikeTime(dateStr[i+1:]) {
			timePart = dateStr[i+1:]
			break
		}
	}

	today := anchorDate(anchor, tp)
	format := func(d time.Time) string {
		if timePart != "" {
			return fmt.Sprintf("%sT%s", d.Format(dateLayout), timePart)
		}
		return d.Format(dateLayout)
	}

	switch lower {
	case "today":
		return format(today)
	case "tomorrow":
		return format(today.AddDate(0, 0, 1))
	case "yesterday":
		return format(today.AddDate(0, 0, -1))
	case "next week":
		return format(today.AddDate(0, 0, 7))
	case "next month":
		return format(today.AddDate(0, 0, 30))
	}

	switch {
	case strings.Contains(lower, "tomorrow"):
		return format(today.AddDate(0, 0, 1))
	case strings.Contains(lower, "today"):
		return format(today)
	case strings.Contains(lower, "yesterday"):
		return format(today.AddDate(0, 0, -1))
	}

	return dateStr
}

// looksLikeTime reports whether s starts with an HH:MM clock value.
func looksLikeTime(s string) bool {
	return len(s) >= 5 &&
		isDigit(s[0]) && isDigit(s[1]) && s[2] == ':' &&
		isDigit(s[3]) && isDigit(s[4])
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }

// anchorDate parses the anchor through the fallback tiers and truncates to a
// date.
func anchorDate(anchor string, tp eva.TimeProvider) time.Time {
	if anchor != "" {
		for _, layout := range anchorLayouts {
			if t, err := time.Parse(layout, anchor); err == nil {
				return truncate(t)
			}
		}
	}
	return truncate(tp.Now())
}

func truncate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// utcLayouts are the formats UTCToLocal accepts, tried in order.
var utcLayouts = []string{
	"2006-01-02T15:04:05",
	eva.ClockLayout,
	dateLayout,
}

// UTCToLocal converts a UTC date-time string to the local timezone,
// formatted with the clock layout. Lowercase 't' separators and a trailing
// 'Z' are tolerated.
func UTCToLocal(utcStr string) (string, error) {
	normalized := strings.TrimSpace(utcStr)
	normalized = strings.ReplaceAll(normalized, "t", "T")
	normalized = strings.TrimSuffix(normalized, "Z")

	for _, layout := range utcLayouts {
		if t, err := time.ParseInLocation(layout, normalized, time.UTC); err == nil {
			return t.In(time.Local).Format(eva.ClockLayout), nil
		}
	}
	return "", fmt.Errorf("unable to parse date string: %s", utcStr)
}
