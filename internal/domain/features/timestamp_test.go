package features

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		raw  string
		want time.Time
	}{
		{"2024-03-10T14:30:00Z", time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)},
		{"2024-03-10T14:30:00.250Z", time.Date(2024, 3, 10, 14, 30, 0, 250_000_000, time.UTC)},
		{"2024-03-10T20:00:00+05:30", time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)},
		{"2024-03-10T14:30", time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)},
		{"2024-03-10T14:30Z", time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)},
		{"2024-03-10 14:30:05", time.Date(2024, 3, 10, 14, 30, 5, 0, time.UTC)},
		{"2024-03-10", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
		{"10-03-2024 14:30", time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)},
		{"1-3-2024 09:05", time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC)},
		{"2024-03-10T20:00:00+0530", time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)},
		{"2024-03-10T09:30-0500", time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)},
		{"2024-03-10 20:00:00.5+0530", time.Date(2024, 3, 10, 14, 30, 0, 500_000_000, time.UTC)},
		{"2024-03-10T14", time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)},
		{"20240310T143000", time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)},
		{"20240310T200000+0530", time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)},
		{"20240310T143000Z", time.Date(2024, 3, 10, 14, 30, 0, 0, time.UTC)},
		{"20240310", time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)},
	}
	for _, tc := range tests {
		got, err := ParseTimestamp(tc.raw)
		require.NoError(t, err, tc.raw)
		require.True(t, tc.want.Equal(got), "%s: got %s", tc.raw, got)
		require.Equal(t, time.UTC, got.Location())
	}
}

func TestParseTimestampRejectsGarbage(t *testing.T) {
	for _, raw := range []string{"", "yesterday", "2024/03/10 14:30", "32-01-2024 10:00"} {
		_, err := ParseTimestamp(raw)
		require.Error(t, err, raw)
	}
}

func TestDeriveTimeFeaturesWeekend(t *testing.T) {
	start := time.Date(2024, 3, 4, 12, 0, 0, 0, time.UTC) // Monday
	for i := 0; i < 14; i++ {
		ts := start.AddDate(0, 0, i)
		tf := DeriveTimeFeatures(ts)
		weekend := ts.Weekday() == time.Saturday || ts.Weekday() == time.Sunday
		require.Equal(t, weekend, tf.IsWeekend, ts.String())
		require.Equal(t, i%7, tf.DayOfWeek, ts.String())
	}
}

func TestDeriveTimeFeaturesUsesUTC(t *testing.T) {
	zone := time.FixedZone("UTC+9", 9*60*60)
	// Sunday 02:00 in UTC+9 is Saturday 17:00 UTC.
	tf := DeriveTimeFeatures(time.Date(2024, 3, 10, 2, 0, 0, 0, zone))
	require.Equal(t, TimeFeatures{Hour: 17, DayOfWeek: 5, DayOfMonth: 9, Month: 3, Year: 2024, IsWeekend: true}, tf)
}
