package util

import "time"

// Clock returns the current time. Components take one so tests can pin it.
type Clock func() time.Time

// NowUTC exposes time.Now for deterministic testing.
func NowUTC() time.Time {
	return time.Now().UTC()
}

// NowLocal returns the wall clock in the process time zone.
func NowLocal() time.Time {
	return time.Now()
}
