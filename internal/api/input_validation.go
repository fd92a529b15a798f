package api

import (
	"errors"
	"strings"
	"time"

	"github.com/terraincognita07/cyclecast/internal/models"
	"github.com/terraincognita07/cyclecast/internal/services"
)

var errDateFormat = errors.New("dates must use YYYY-MM-DD")

type credentialsPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type onboardingPayload struct {
	LastPeriodDate string        `json:"last_period_date"`
	CycleLength    int           `json:"cycle_length"`
	PeriodDuration int           `json:"period_duration"`
	Habits         models.Habits `json:"habits"`
	IsProfessional bool          `json:"is_professional"`
}

type calibrationEntryPayload struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Confirmed bool   `json:"confirmed"`
}

type calibrationPayload struct {
	Entries []calibrationEntryPayload `json:"entries"`
}

type periodStartPayload struct {
	Date string `json:"date"`
}

type changePasswordPayload struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

func (payload onboardingPayload) input() (services.OnboardingInput, error) {
	input := services.OnboardingInput{
		CycleLength:    payload.CycleLength,
		PeriodDuration: payload.PeriodDuration,
		Habits:         payload.Habits,
		IsProfessional: payload.IsProfessional,
	}
	if strings.TrimSpace(payload.LastPeriodDate) == "" {
		return input, nil
	}
	day, err := parseDayParam(payload.LastPeriodDate)
	if err != nil {
		return input, err
	}
	input.LastPeriodDate = day
	return input, nil
}

func (payload calibrationPayload) entries() ([]services.CalibrationEntry, error) {
	entries := make([]services.CalibrationEntry, 0, len(payload.Entries))
	for _, raw := range payload.Entries {
		start, err := parseDayParam(raw.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := parseDayParam(raw.EndDate)
		if err != nil {
			return nil, err
		}
		entries = append(entries, services.CalibrationEntry{StartDate: start, EndDate: end, Confirmed: raw.Confirmed})
	}
	return entries, nil
}

func parseDayParam(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, errors.New("date is required")
	}
	day, err := services.ParseDay(value)
	if err != nil {
		return time.Time{}, errDateFormat
	}
	return day, nil
}

// parseMonthQuery accepts YYYY-MM and falls back to the month containing today.
func parseMonthQuery(raw string, today time.Time) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC), nil
	}
	parsed, err := time.Parse("2006-01", value)
	if err != nil {
		return time.Time{}, errors.New("month must use YYYY-MM")
	}
	return parsed, nil
}
