package eva

import "time"

// ClockLayout is the wire format for clock strings exchanged with the model
// ("YYYY-MM-DD HH:MM:SS"). get_current_time emits it and the date resolver
// accepts it as an anchor.
const ClockLayout = "2006-01-02 15:04:05"

// TimeProvider supplies the current time. Inject a mock in tests; the model
// itself has no clock and always asks a tool.
type TimeProvider interface {
	// Now returns the current time.
	Now() time.Time

	// Format returns the current time formatted with the given layout.
	Format(layout string) string
}

// DefaultTimeProvider uses the system clock in the local timezone.
type DefaultTimeProvider struct{}

// NewDefaultTimeProvider creates a DefaultTimeProvider.
func NewDefaultTimeProvider() *DefaultTimeProvider {
	return &DefaultTimeProvider{}
}

// Now returns the current local time.
func (p *DefaultTimeProvider) Now() time.Time { return time.Now() }

// Format returns the current time formatted with the given layout.
func (p *DefaultTimeProvider) Format(layout string) string {
	return p.Now().Format(layout)
}

// MockTimeProvider returns a fixed time, for tests.
type MockTimeProvider struct {
	fixed time.Time
}

// NewMockTimeProvider creates a MockTimeProvider pinned to t.
func NewMockTimeProvider(t time.Time) *MockTimeProvider {
	return &MockTimeProvider{fixed: t}
}

// SetTime updates the fixed time.
func (m *MockTimeProvider) SetTime(t time.Time) { m.fixed = t }

// Now returns the fixed time.
func (m *MockTimeProvider) Now() time.Time { return m.fixed }

// Format returns the fixed time formatted with the given layout.
func (m *MockTimeProvider) Format(layout string) string {
	return m.fixed.Format(layout)
}

var (
	_ TimeProvider = (*DefaultTimeProvider)(nil)
	_ TimeProvider = (*MockTimeProvider)(nil)
)
