package model

import (
	"strings"
	"time"
)

// TimestampLayout is RFC 3339 with a fixed nine digit fraction, so formatted
// UTC timestamps also sort correctly as strings.
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTimestamp renders t in UTC using TimestampLayout.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// NormalizeTimestamp rewrites an RFC 3339 timestamp in TimestampLayout.
// Unparseable input is returned unchanged.
func NormalizeTimestamp(s string) string {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return s
	}
	return FormatTimestamp(t)
}

// CompareTimestamps orders two RFC 3339 timestamps by the instant they name,
// whatever their fraction width. Unparseable values fall back to a string
// comparison.
func CompareTimestamps(a, b string) int {
	ta, errA := time.Parse(time.RFC3339Nano, a)
	tb, errB := time.Parse(time.RFC3339Nano, b)
	if errA != nil || errB != nil {
		return strings.Compare(a, b)
	}
	return ta.Compare(tb)
}
