package services

import (
	"time"

	"github.com/terraincognita07/cyclecast/internal/models"
)

const longCycleToleranceDays = 7

type DashboardSummary struct {
	Today               string     `json:"today"`
	CycleDay            int        `json:"cycle_day"`
	DaysUntilNextPeriod int        `json:"days_until_next_period"`
	Status              DayStatus  `json:"status"`
	Phase               CyclePhase `json:"phase"`
	ConfidenceScore     int        `json:"confidence_score"`
	CycleDataStale      bool       `json:"cycle_data_stale"`
	CycleLooksLong      bool       `json:"cycle_looks_long"`
}

// BuildDashboardSummary describes today relative to the last known period
// start. A summary exists only for profiles with a baseline.
func BuildDashboardSummary(profile models.CycleProfile, today time.Time) (DashboardSummary, bool) {
	prediction, ok := Predict(profile)
	if !ok {
		return DashboardSummary{}, false
	}

	today = CalendarDate(today)
	status := classifyWithPrediction(today, profile.History, prediction, true)
	cycleDay := DaysBetween(prediction.LastPeriod, today) + 1

	return DashboardSummary{
		Today:               FormatDay(today),
		CycleDay:            cycleDay,
		DaysUntilNextPeriod: DaysBetween(today, prediction.NextPeriodDate),
		Status:              status,
		Phase:               DerivePhase(today, status, profile, prediction, true),
		ConfidenceScore:     profile.ConfidenceScore,
		CycleDataStale:      DashboardCycleDataLooksStale(prediction.LastPeriod, today, profile.CycleLength),
		CycleLooksLong:      DashboardCycleDayLooksLong(cycleDay, profile.CycleLength),
	}, true
}

func DashboardCycleDayLooksLong(currentDay int, referenceLength int) bool {
	if currentDay <= 0 || referenceLength <= 0 {
		return false
	}
	return currentDay > referenceLength+longCycleToleranceDays
}

// DashboardCycleDataLooksStale reports a baseline older than one full cycle,
// meaning a period start was probably not recorded.
func DashboardCycleDataLooksStale(lastPeriodStart time.Time, today time.Time, referenceLength int) bool {
	if lastPeriodStart.IsZero() || referenceLength <= 0 || today.Before(lastPeriodStart) {
		return false
	}
	return DaysBetween(lastPeriodStart, today)+1 > referenceLength
}
