package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCompareTimestampsIgnoresFractionWidth(t *testing.T) {
	assert.Equal(t, -1, CompareTimestamps("2026-01-01T00:00:05.1Z", "2026-01-01T00:00:05.12Z"))
	assert.Equal(t, 1, CompareTimestamps("2026-01-01T00:00:05.12Z", "2026-01-01T00:00:05.1Z"))
	assert.Equal(t, 0, CompareTimestamps("2026-01-01T00:00:05.1Z", "2026-01-01T00:00:05.100Z"))
	assert.Equal(t, 1, CompareTimestamps("2026-01-01T00:00:06Z", "2026-01-01T00:00:05.999Z"))
}

func TestCompareTimestampsFallsBackToStrings(t *testing.T) {
	assert.Equal(t, -1, CompareTimestamps("", "2026-01-01T00:00:00Z"))
	assert.Equal(t, 0, CompareTimestamps("b", "b"))
}

func TestFormatTimestampIsFixedWidth(t *testing.T) {
	short := FormatTimestamp(time.Date(2026, 1, 1, 0, 0, 5, 100_000_000, time.UTC))
	long := FormatTimestamp(time.Date(2026, 1, 1, 0, 0, 5, 120_000_000, time.UTC))
	assert.Equal(t, "2026-01-01T00:00:05.100000000Z", short)
	assert.Len(t, long, len(short))
	assert.Less(t, short, long)
}

func TestNormalizeTimestamp(t *testing.T) {
	assert.Equal(t, "2026-01-01T00:00:05.100000000Z", NormalizeTimestamp("2026-01-01T00:00:05.1Z"))
	assert.Equal(t, "not a time", NormalizeTimestamp("not a time"))
}
