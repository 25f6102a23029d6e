// Package rrule validates, normalizes and builds the RFC 5545 RRULE subset
// the calendar backend accepts: FREQ, INTERVAL, BYDAY, COUNT, UNTIL.
//
// The backend rejects WKST in certain combinations and silently misbehaves
// on malformed FREQ, so rules are checked client-side: a backend 400 becomes
// an immediate, specific correction prompt the model can act on.
package rrule

import (
	"fmt"
	"strings"
)

// Frequencies the backend accepts.
var validFrequencies = []string{"DAILY", "WEEKLY", "MONTHLY", "YEARLY"}

// ValidateAndNormalize checks rule and returns (ok, value) where value is the
// normalized rule on success and a human-readable message on failure.
// Normalization strips WKST=MO (the backend rejects it) and any trailing
// separator.
func ValidateAndNormalize(rule string) (bool, string) {
	if rule == "" {
		return false, "RRULE cannot be empty"
	}

	rule = strings.TrimSpace(rule)

	if !strings.Contains(rule, "FREQ=") {
		return false, fmt.Sprintf("RRULE must contain FREQ parameter. Got: %s", rule)
	}

	found := false
	for _, freq := range validFrequencies {
		if strings.Contains(rule, "FREQ="+freq) {
			found = true
			break
		}
	}
	if !found {
		return false, fmt.Sprintf("RRULE FREQ must be one of: %s",
			strings.Join(validFrequencies, ", "))
	}

	normalized := strings.ReplaceAll(rule, ";WKST=MO", "")
	normalized = strings.ReplaceAll(normalized, "WKST=MO;", "")
	normalized = strings.TrimRight(normalized, ";")

	return true, normalized
}

// Build assembles an RRULE from parts.
//
// FREQ always leads. INTERVAL is included only when not 1, BYDAY only for
// WEEKLY rules, and COUNT takes precedence over UNTIL (until is the
// YYYYMMDD end date).
func Build(frequency, dayOfWeek string, interval, count int, until string) string {
	parts := []string{"FREQ=" + frequency}

	if interval != 1 && interval > 0 {
		parts = append(parts, fmt.Sprintf("INTERVAL=%d", interval))
	}
	if dayOfWeek != "" && frequency == "WEEKLY" {
		parts = append(parts, "BYDAY="+dayOfWeek)
	}
	if count > 0 {
		parts = append(parts, fmt.Sprintf("COUNT=%d", count))
	} else if until != "" {
		parts = append(parts, "UNTIL="+until)
	}

	return strings.Join(parts, ";")
}
