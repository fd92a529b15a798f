package services

import (
	"time"

	"github.com/terraincognita07/cyclecast/internal/models"
)

type DayStatus string

const (
	DayStatusPeriodPast DayStatus = "period_past"
	DayStatusPeriod     DayStatus = "period"
	DayStatusOvulation  DayStatus = "ovulation"
	DayStatusFertile    DayStatus = "fertile"
	DayStatusNone       DayStatus = "none"
)

type CyclePhase string

const (
	PhaseMenstruation  CyclePhase = "menstruation"
	PhaseFertileWindow CyclePhase = "fertile_window"
	PhaseFollicular    CyclePhase = "follicular"
	PhaseLuteal        CyclePhase = "luteal"
	PhaseUnknown       CyclePhase = "unknown"
)

// ClassifyDay labels a calendar day. Logged history wins over any prediction.
func ClassifyDay(day time.Time, profile models.CycleProfile) DayStatus {
	prediction, ok := Predict(profile)
	return classifyWithPrediction(CalendarDate(day), profile.History, prediction, ok)
}

func classifyWithPrediction(day time.Time, history []models.CycleHistoryRecord, prediction PredictionResult, hasPrediction bool) DayStatus {
	for _, record := range history {
		if betweenCalendarDaysInclusive(day, record.StartDate, record.EndDate) {
			return DayStatusPeriodPast
		}
	}
	if !hasPrediction {
		return DayStatusNone
	}

	switch {
	case betweenCalendarDaysInclusive(day, prediction.NextPeriodDate, prediction.NextPeriodEnd):
		return DayStatusPeriod
	case sameCalendarDay(day, prediction.OvulationDate):
		return DayStatusOvulation
	case prediction.FertileWindow.Contains(day):
		return DayStatusFertile
	default:
		return DayStatusNone
	}
}

type DayClassification struct {
	Date   time.Time
	Status DayStatus
	Phase  CyclePhase
}

// ClassifyRange classifies every day in [from, to] with one prediction pass.
func ClassifyRange(from time.Time, to time.Time, profile models.CycleProfile) []DayClassification {
	from = CalendarDate(from)
	to = CalendarDate(to)
	if to.Before(from) {
		return []DayClassification{}
	}

	prediction, ok := Predict(profile)
	days := make([]DayClassification, 0, DaysBetween(from, to)+1)
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		status := classifyWithPrediction(day, profile.History, prediction, ok)
		days = append(days, DayClassification{
			Date:   day,
			Status: status,
			Phase:  DerivePhase(day, status, profile, prediction, ok),
		})
	}
	return days
}

// DerivePhase turns a day status into the coarse phase shown on dashboards.
// Days without a status are placed by their position in the projected cycle
// relative to the ovulation day.
func DerivePhase(day time.Time, status DayStatus, profile models.CycleProfile, prediction PredictionResult, hasPrediction bool) CyclePhase {
	switch status {
	case DayStatusPeriodPast, DayStatusPeriod:
		return PhaseMenstruation
	case DayStatusOvulation, DayStatusFertile:
		return PhaseFertileWindow
	}
	if !hasPrediction || profile.CycleLength <= 0 {
		return PhaseUnknown
	}

	day = CalendarDate(day)
	if !day.Before(prediction.LastPeriod) && day.Before(prediction.NextPeriodDate) {
		if day.Before(prediction.OvulationDate) {
			return PhaseFollicular
		}
		return PhaseLuteal
	}

	cycleDay := DaysBetween(prediction.NextPeriodDate, day) % profile.CycleLength
	if cycleDay < 0 {
		cycleDay += profile.CycleLength
	}
	if cycleDay < profile.CycleLength-lutealPhaseDays {
		return PhaseFollicular
	}
	return PhaseLuteal
}
