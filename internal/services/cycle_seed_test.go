package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/cyclecast/internal/models"
)

func TestSeedHistoryProjectsThreeUnconfirmedCycles(t *testing.T) {
	lastPeriod := mustParseDay(t, "2024-01-01")

	history := SeedHistory(lastPeriod, 30, 4, 1.5)
	require.Len(t, history, 3)

	expectedStarts := []string{"2023-10-03", "2023-11-02", "2023-12-02"}
	for index, record := range history {
		assert.Equal(t, expectedStarts[index], FormatDay(record.StartDate))
		assert.Equal(t, FormatDay(AddDays(record.StartDate, 4)), FormatDay(record.EndDate))
		assert.False(t, record.IsConfirmed)
		assert.Equal(t, 1.5, record.LifestyleImpact)
	}
}

func TestNewCycleProfileStartsFromNeutralAdaptiveState(t *testing.T) {
	profile := NewCycleProfile(7, ProfileSeed{
		LastPeriodDate: mustParseDay(t, "2024-01-01"),
		CycleLength:    28,
		PeriodDuration: 5,
		Habits:         models.Habits{Smoking: true, RegularExercise: true},
	})

	require.NotNil(t, profile.LastPeriodDate)
	assert.Equal(t, uint(7), profile.UserID)
	assert.Equal(t, "2024-01-01", FormatDay(*profile.LastPeriodDate))
	assert.Equal(t, 1.5, profile.LifestyleOffset)
	assert.Equal(t, 0.0, profile.AdaptiveWeight)
	assert.Equal(t, 100, profile.ConfidenceScore)
	assert.Equal(t, 0.0, profile.VarianceOffset)
	assert.Equal(t, models.CurrentProfileSchemaVersion, profile.SchemaVersion)
	require.Len(t, profile.History, 3)
	for _, record := range profile.History {
		assert.Equal(t, 1.5, record.LifestyleImpact)
	}
}
