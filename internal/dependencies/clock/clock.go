package clock

import "time"

// Clock abstracts the current time so cooldown expiry, session
// lifetimes, and finish timestamps are deterministic in tests
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock
type RealClock struct{}

// New creates a RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current system time
func (c *RealClock) Now() time.Time {
	return time.Now()
}
