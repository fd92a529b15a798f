package services

import (
	"math"
	"time"
)

const dayLayout = "2006-01-02"

// CalendarDate drops the time-of-day and zone, keeping the calendar date the
// value carries in its own location.
func CalendarDate(value time.Time) time.Time {
	year, month, day := value.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func DateAtLocation(value time.Time, location *time.Location) time.Time {
	if location == nil {
		location = time.UTC
	}
	return CalendarDate(value.In(location))
}

func ParseDay(raw string) (time.Time, error) {
	return time.ParseInLocation(dayLayout, raw, time.UTC)
}

func FormatDay(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return CalendarDate(value).Format(dayLayout)
}

func AddDays(value time.Time, days int) time.Time {
	return CalendarDate(value).AddDate(0, 0, days)
}

// DaysBetween returns to - from in whole calendar days.
func DaysBetween(from time.Time, to time.Time) int {
	return int(CalendarDate(to).Sub(CalendarDate(from)).Hours() / 24)
}

// roundDays rounds half away from zero.
func roundDays(value float64) int {
	return int(math.Round(value))
}

func sameCalendarDay(a time.Time, b time.Time) bool {
	return CalendarDate(a).Equal(CalendarDate(b))
}

func betweenCalendarDaysInclusive(day time.Time, start time.Time, end time.Time) bool {
	if start.IsZero() || end.IsZero() {
		return false
	}
	day = CalendarDate(day)
	return !day.Before(CalendarDate(start)) && !day.After(CalendarDate(end))
}
