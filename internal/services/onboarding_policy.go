package services

import (
	"errors"
	"time"

	"github.com/terraincognita07/cyclecast/internal/models"
)

var (
	ErrOnboardingStartDateRequired      = errors.New("onboarding start date is required")
	ErrOnboardingStartDateOutOfRange    = errors.New("onboarding start date out of range")
	ErrOnboardingCycleLengthOutOfRange  = errors.New("cycle length out of range")
	ErrOnboardingPeriodLengthOutOfRange = errors.New("period duration out of range")
	ErrOnboardingPeriodIncompatible     = errors.New("period duration incompatible with cycle length")

	ErrCalibrationEntryInvalid      = errors.New("calibration entry invalid")
	ErrCalibrationEntryAfterHistory = errors.New("calibration entry must start before the last period")
)

const (
	minCycleLength         = 15
	maxCycleLength         = 90
	minPeriodDuration      = 1
	maxPeriodDuration      = 14
	minFollicularGap       = 8
	onboardingLookbackDays = 60
)

type OnboardingInput struct {
	LastPeriodDate time.Time
	CycleLength    int
	PeriodDuration int
	Habits         models.Habits
	IsProfessional bool
}

type CalibrationEntry struct {
	StartDate time.Time
	EndDate   time.Time
	Confirmed bool
}

// ValidateOnboardingInput guards the core from out-of-range values; the
// prediction code itself accepts anything arithmetically well-defined.
func ValidateOnboardingInput(input OnboardingInput, now time.Time, location *time.Location) (ProfileSeed, error) {
	if input.LastPeriodDate.IsZero() {
		return ProfileSeed{}, ErrOnboardingStartDateRequired
	}

	minDate, maxDate := OnboardingDateBounds(now, location)
	day := CalendarDate(input.LastPeriodDate)
	if day.Before(minDate) || day.After(maxDate) {
		return ProfileSeed{}, ErrOnboardingStartDateOutOfRange
	}
	if !IsValidOnboardingCycleLength(input.CycleLength) {
		return ProfileSeed{}, ErrOnboardingCycleLengthOutOfRange
	}
	if !IsValidOnboardingPeriodLength(input.PeriodDuration) {
		return ProfileSeed{}, ErrOnboardingPeriodLengthOutOfRange
	}
	if !IsCompatiblePeriodLength(input.CycleLength, input.PeriodDuration) {
		return ProfileSeed{}, ErrOnboardingPeriodIncompatible
	}

	return ProfileSeed{
		LastPeriodDate: day,
		CycleLength:    input.CycleLength,
		PeriodDuration: input.PeriodDuration,
		Habits:         input.Habits,
		IsProfessional: input.IsProfessional,
	}, nil
}

func IsValidOnboardingCycleLength(value int) bool {
	return value >= minCycleLength && value <= maxCycleLength
}

func IsValidOnboardingPeriodLength(value int) bool {
	return value >= minPeriodDuration && value <= maxPeriodDuration
}

// IsCompatiblePeriodLength reports whether a period leaves room for a
// follicular phase inside the cycle.
func IsCompatiblePeriodLength(cycleLength int, periodDuration int) bool {
	return cycleLength-periodDuration >= minFollicularGap
}

func OnboardingDateBounds(now time.Time, location *time.Location) (time.Time, time.Time) {
	today := DateAtLocation(now, location)
	return AddDays(today, -onboardingLookbackDays), today
}

// BuildCalibrationRecords turns edited calibration entries into history
// records. Entries must describe bleeding intervals that precede the baseline.
func BuildCalibrationRecords(profile models.CycleProfile, entries []CalibrationEntry) ([]models.CycleHistoryRecord, error) {
	records := make([]models.CycleHistoryRecord, 0, len(entries))
	for _, entry := range entries {
		if entry.StartDate.IsZero() || entry.EndDate.IsZero() {
			return nil, ErrCalibrationEntryInvalid
		}
		start := CalendarDate(entry.StartDate)
		end := CalendarDate(entry.EndDate)
		if end.Before(start) || DaysBetween(start, end) > maxPeriodDuration {
			return nil, ErrCalibrationEntryInvalid
		}
		if profile.LastPeriodDate != nil && !start.Before(CalendarDate(*profile.LastPeriodDate)) {
			return nil, ErrCalibrationEntryAfterHistory
		}

		records = append(records, models.CycleHistoryRecord{
			ProfileID:       profile.ID,
			StartDate:       start,
			EndDate:         end,
			IsConfirmed:     entry.Confirmed,
			LifestyleImpact: profile.LifestyleOffset,
		})
	}
	return records, nil
}
