package clock

import "time"

// Clock abstracts wall time so date-window decisions can be tested.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func New() Clock { return SystemClock{} }

func (SystemClock) Now() time.Time { return time.Now().UTC() }

// Today returns midnight of the clock's current day in loc.
func Today(c Clock, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	now := c.Now().In(loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}
