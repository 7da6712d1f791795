package features

import (
	"errors"
	"fmt"
	"time"
)

// isoLayouts covers extended and basic ISO-8601 forms, with colon or compact
// offsets, down to hour precision.
var isoLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04Z0700",
	"2006-01-02T15Z07:00",
	"2006-01-02T15Z0700",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02T15",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999Z0700",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
	"2006-01-02",
	"20060102T150405.999999999Z0700",
	"20060102T150405.999999999",
	"20060102T1504Z0700",
	"20060102T1504",
	"20060102",
}

// dayFirstLayout is the day-month-year form emitted by the legacy data exports.
const dayFirstLayout = "2-1-2006 15:04"

var errEmptyTimestamp = errors.New("timestamp is empty")

// ParseTimestamp accepts ISO-8601 first and the day-first layout second.
// Values without a zone are taken as UTC; zoned values are converted to UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errEmptyTimestamp
	}
	for _, layout := range isoLayouts {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), nil
		}
	}
	if ts, err := time.Parse(dayFirstLayout, raw); err == nil {
		return ts.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("unrecognized timestamp %q", raw)
}

// TimeFeatures are the calendar columns derived from the UTC timestamp.
type TimeFeatures struct {
	Hour       int
	DayOfWeek  int // 0 = Monday
	DayOfMonth int
	Month      int
	Year       int
	IsWeekend  bool
}

// DeriveTimeFeatures computes calendar columns for ts in UTC.
func DeriveTimeFeatures(ts time.Time) TimeFeatures {
	utc := ts.UTC()
	dow := (int(utc.Weekday()) + 6) % 7
	return TimeFeatures{
		Hour:       utc.Hour(),
		DayOfWeek:  dow,
		DayOfMonth: utc.Day(),
		Month:      int(utc.Month()),
		Year:       utc.Year(),
		IsWeekend:  dow >= 5,
	}
}
