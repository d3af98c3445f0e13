package ephemeris

import (
	"fmt"
	"math"
	"time"
)

// unixEpochJD is the Julian Day of the Unix epoch (1970-01-01T00:00:00Z).
const unixEpochJD = 2440587.5

// secondsPerDay converts between fractional days and seconds.
const secondsPerDay = 86400.0

// JulianDay converts a wall-clock instant to a Julian Day number.
func JulianDay(t time.Time) float64 {
	u := t.UTC()
	sec := float64(u.Unix()) + float64(u.Nanosecond())/1e9
	return unixEpochJD + sec/secondsPerDay
}

// JDToTime converts a Julian Day number back to a UTC instant.
func JDToTime(jd float64) time.Time {
	sec := (jd - unixEpochJD) * secondsPerDay
	whole, frac := math.Modf(sec)
	return time.Unix(int64(whole), int64(frac*1e9)).UTC()
}

// ParseDate parses a "YYYY-MM-DD" calendar date as midnight UTC and returns
// its Julian Day.
func ParseDate(s string) (float64, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return 0, fmt.Errorf("invalid date %q (want YYYY-MM-DD): %w", s, err)
	}
	return JulianDay(t), nil
}

// dateTimeLayouts are the accepted instant formats, most specific first.
var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseDateTime parses an ISO-style date or date-time string, assumed UTC
// when no zone is given.
func ParseDateTime(s string) (time.Time, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid instant %q (want ISO format, e.g. 2025-06-02T12:00)", s)
}

// FormatUTC renders a Julian Day as the fixed-width "YYYY-MM-DDTHH:MMZ"
// timestamp used in scan output. Seconds are truncated, not rounded, so
// lexicographic order of the strings matches chronological order.
func FormatUTC(jd float64) string {
	return JDToTime(jd).Truncate(time.Minute).Format("2006-01-02T15:04Z")
}
