package cache

import (
	"time"
)

// TimeUntilNext returns how long until the next hour:00 in loc.
func TimeUntilNext(hour int, loc *time.Location) time.Duration {
	return timeUntilNext(time.Now(), hour, loc)
}

func timeUntilNext(now time.Time, hour int, loc *time.Location) time.Duration {
	if loc == nil {
		loc = time.UTC
	}
	now = now.In(loc)
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, loc)

	// already past today's mark: use tomorrow's
	if !now.Before(next) {
		next = time.Date(now.Year(), now.Month(), now.Day()+1, hour, 0, 0, 0, loc)
	}
	return next.Sub(now)
}
