package services

import (
	"time"

	"github.com/terraincognita07/cyclecast/internal/models"
)

type CalendarDayState struct {
	Date       time.Time  `json:"-"`
	DateString string     `json:"date"`
	Day        int        `json:"day"`
	InMonth    bool       `json:"in_month"`
	IsToday    bool       `json:"is_today"`
	Status     DayStatus  `json:"status"`
	Phase      CyclePhase `json:"phase"`
}

// BuildCalendarDayStates lays out the month containing monthStart as whole
// Sunday-first weeks. Days outside the month are classified too so the grid
// has no gaps.
func BuildCalendarDayStates(monthStart time.Time, profile models.CycleProfile, today time.Time) []CalendarDayState {
	first, last := CalendarMonthRange(monthStart)
	gridStart := AddDays(first, -int(first.Weekday()))
	gridEnd := AddDays(last, 6-int(last.Weekday()))
	todayKey := FormatDay(today)

	classified := ClassifyRange(gridStart, gridEnd, profile)
	days := make([]CalendarDayState, 0, len(classified))
	for _, day := range classified {
		key := FormatDay(day.Date)
		days = append(days, CalendarDayState{
			Date:       day.Date,
			DateString: key,
			Day:        day.Date.Day(),
			InMonth:    day.Date.Month() == first.Month(),
			IsToday:    key == todayKey,
			Status:     day.Status,
			Phase:      day.Phase,
		})
	}
	return days
}
