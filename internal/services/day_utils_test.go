package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDateAtLocationUsesLocalCalendarDay(t *testing.T) {
	location, err := time.LoadLocation("Europe/Moscow")
	require.NoError(t, err)

	value := time.Date(2026, time.February, 10, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-02-11", FormatDay(DateAtLocation(value, location)))
	assert.Equal(t, "2026-02-10", FormatDay(DateAtLocation(value, nil)))
}

func TestDaysBetweenIgnoresDaylightSavingShift(t *testing.T) {
	location, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	before := time.Date(2024, time.March, 30, 0, 0, 0, 0, location)
	after := time.Date(2024, time.April, 1, 0, 0, 0, 0, location)
	assert.Equal(t, 2, DaysBetween(before, after))
	assert.Equal(t, -2, DaysBetween(after, before))
}

func TestRoundDaysRoundsHalfAwayFromZero(t *testing.T) {
	cases := map[float64]int{
		0.5:  1,
		-0.5: -1,
		2.49: 2,
		2.5:  3,
		-2.5: -3,
		-0.4: 0,
	}
	for input, want := range cases {
		assert.Equal(t, want, roundDays(input), "roundDays(%v)", input)
	}
}

func TestBetweenCalendarDaysInclusive(t *testing.T) {
	start := mustParseDay(t, "2024-01-10")
	end := mustParseDay(t, "2024-01-16")

	assert.True(t, betweenCalendarDaysInclusive(start, start, end))
	assert.True(t, betweenCalendarDaysInclusive(end, start, end))
	assert.False(t, betweenCalendarDaysInclusive(mustParseDay(t, "2024-01-17"), start, end))
	assert.False(t, betweenCalendarDaysInclusive(start, time.Time{}, end))
}

func mustParseDay(t *testing.T, raw string) time.Time {
	t.Helper()
	parsed, err := ParseDay(raw)
	require.NoError(t, err)
	return parsed
}
