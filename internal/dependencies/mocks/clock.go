package mocks

import (
	"time"

	"github.com/enigmahunt/enigmahunt/internal/dependencies/clock"
)

// MockClock is a controllable Clock for tests. Advancing it past a
// cooldown deadline or a session expiry exercises the time-dependent
// paths without sleeping.
type MockClock struct {
	CurrentTime time.Time
}

var _ clock.Clock = (*MockClock)(nil)

// NewMockClock creates a MockClock frozen at the given instant
func NewMockClock(t time.Time) *MockClock {
	return &MockClock{CurrentTime: t}
}

// Now returns the frozen current time
func (c *MockClock) Now() time.Time {
	return c.CurrentTime
}

// Advance moves the clock forward by the given duration
func (c *MockClock) Advance(d time.Duration) {
	c.CurrentTime = c.CurrentTime.Add(d)
}

// Set jumps the clock to the given instant
func (c *MockClock) Set(t time.Time) {
	c.CurrentTime = t
}
