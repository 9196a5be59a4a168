package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// Every "today" in the evaluator and the contact updater comes from a Clock.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
// A nil Location means time.Local.
type RealClock struct {
	Location *time.Location
}

// Now returns the current time in the clock's location.
func (c RealClock) Now() time.Time {
	if c.Location == nil {
		return time.Now()
	}
	return time.Now().In(c.Location)
}
