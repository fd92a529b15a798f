package services

import (
	"time"

	"github.com/terraincognita07/cyclecast/internal/models"
)

const seededHistoryCycles = 3

type ProfileSeed struct {
	LastPeriodDate time.Time
	CycleLength    int
	PeriodDuration int
	Habits         models.Habits
	IsProfessional bool
}

// SeedHistory projects unconfirmed records backward from the first known start
// so the variance estimator has material before any real observation.
func SeedHistory(lastPeriodDate time.Time, cycleLength int, periodDuration int, lifestyleOffset float64) []models.CycleHistoryRecord {
	store := NewHistoryStore(nil)
	for cycle := 1; cycle <= seededHistoryCycles; cycle++ {
		start := AddDays(lastPeriodDate, -cycleLength*cycle)
		store.Append(models.CycleHistoryRecord{
			StartDate:       start,
			EndDate:         AddDays(start, periodDuration),
			IsConfirmed:     false,
			LifestyleImpact: lifestyleOffset,
		})
	}
	return store.Records()
}

func NewCycleProfile(userID uint, seed ProfileSeed) models.CycleProfile {
	lastPeriod := CalendarDate(seed.LastPeriodDate)
	offset := LifestyleImpact(seed.Habits, seed.IsProfessional)

	return models.CycleProfile{
		UserID:          userID,
		LastPeriodDate:  &lastPeriod,
		CycleLength:     seed.CycleLength,
		PeriodDuration:  seed.PeriodDuration,
		LifestyleOffset: offset,
		AdaptiveWeight:  0,
		ConfidenceScore: maxConfidenceScore,
		VarianceOffset:  0,
		Habits:          seed.Habits,
		IsProfessional:  seed.IsProfessional,
		SchemaVersion:   models.CurrentProfileSchemaVersion,
		History:         SeedHistory(lastPeriod, seed.CycleLength, seed.PeriodDuration, offset),
	}
}
