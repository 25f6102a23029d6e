package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mfalcone/eva"
)

func TestResolve_RelativeKeywords(t *testing.T) {
	anchor := "2024-01-15 10:00:00"

	tests := []struct {
		name     string
		dateStr  string
		expected string
	}{
		{"today", "today", "2024-01-15"},
		{"tomorrow", "tomorrow", "2024-01-16"},
		{"yesterday", "yesterday", "2024-01-14"},
		{"next week", "next week", "2024-01-22"},
		{"next month", "next month", "2024-02-14"},
		{"case insensitive", "Tomorrow", "2024-01-16"},
		{"all caps", "TOMORROW", "2024-01-16"},
		{"capitalized today", "Today", "2024-01-15"},
		{"surrounding whitespace", "  tomorrow  ", "2024-01-16"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Resolve(tt.dateStr, anchor))
		})
	}
}

func TestResolve_SubstringFallback(t *testing.T) {
	anchor := "2024-01-15 10:00:00"

	// Keyword phrases resolve the day; free-text time suffixes are dropped
	// because they carry no ISO time component.
	assert.Equal(t, "2024-01-16", Resolve("tomorrow at 3pm", anchor))
	assert.Equal(t, "2024-01-16", Resolve("Tomorrow at 3pm", anchor))
	assert.Equal(t, "2024-01-15", Resolve("today in the evening", anchor))
	assert.Equal(t, "2024-01-14", Resolve("yesterday morning", anchor))
}

func TestResolve_TimeComponentPreserved(t *testing.T) {
	anchor := "2024-01-15 10:00:00"

	assert.Equal(t, "2024-01-16T09:00:00", Resolve("tomorrowT09:00:00", anchor))
	assert.Equal(t, "2024-01-16T09:00:00", Resolve("TomorrowT09:00:00", anchor))
	assert.Equal(t, "2024-01-15T18:30:00", Resolve("todayT18:30:00", anchor))
}

func TestResolve_AbsolutePassthrough(t *testing.T) {
	anchor := "2024-01-15 10:00:00"

	assert.Equal(t, "2024-01-16T09:00:00", Resolve("2024-01-16T09:00:00", anchor))
	assert.Equal(t, "2024-03-01", Resolve("2024-03-01", anchor))
	assert.Equal(t, "whenever", Resolve("whenever", anchor))
}

func TestResolve_AnchorFallbackTiers(t *testing.T) {
	// Date-only anchor.
	assert.Equal(t, "2024-01-16", Resolve("tomorrow", "2024-01-15"))

	// Unparseable anchor falls back to the injected clock.
	tp := eva.NewMockTimeProvider(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC))
	assert.Equal(t, "2024-06-02", ResolveAt("tomorrow", "not a clock", tp))

	// Empty anchor behaves the same.
	assert.Equal(t, "2024-06-02", ResolveAt("tomorrow", "", tp))
}

func TestResolve_MonthBoundary(t *testing.T) {
	assert.Equal(t, "2024-02-01", Resolve("tomorrow", "2024-01-31 23:00:00"))
	assert.Equal(t, "2024-02-29", Resolve("tomorrow", "2024-02-28 08:00:00"))
}

func TestUTCToLocal(t *testing.T) {
	result, err := UTCToLocal("2024-01-15T10:00:00Z")
	require.NoError(t, err)

	utc := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, utc.In(time.Local).Format(eva.ClockLayout), result)
}

func TestUTCToLocal_SeparatorVariants(t *testing.T) {
	expected, err := UTCToLocal("2024-01-15T10:00:00")
	require.NoError(t, err)

	for _, input := range []string{
		"2024-01-15t10:00:00",
		"2024-01-15 10:00:00",
		"2024-01-15T10:00:00Z",
	} {
		result, err := UTCToLocal(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, expected, result, "input %q", input)
	}
}

func TestUTCToLocal_Invalid(t *testing.T) {
	_, err := UTCToLocal("not a date")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to parse date string")
}
