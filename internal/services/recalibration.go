package services

import (
	"math"
	"time"

	"github.com/terraincognita07/cyclecast/internal/models"
)

const (
	maxConfidenceScore      = 100
	confidencePenaltyPerDay = 10
	varianceTrendFactor     = 1.5
)

type RecalibrationOutcome struct {
	Applied            bool             `json:"applied"`
	ErrorDays          int              `json:"error_days"`
	PreviousPrediction PredictionResult `json:"previous_prediction"`
}

// Recalibrate folds an observed period start into the profile: it scores the
// previous prediction, adapts the bias weight and appends a confirmed record.
// The input profile is left untouched; without a baseline it is returned as is.
func Recalibrate(profile models.CycleProfile, actualStartDate time.Time) (models.CycleProfile, RecalibrationOutcome) {
	prediction, ok := Predict(profile)
	if !ok {
		return profile, RecalibrationOutcome{}
	}

	actual := CalendarDate(actualStartDate)
	errorDays := DaysBetween(prediction.NextPeriodDate, actual)

	updated := profile.Clone()
	updated.ConfidenceScore = confidenceFromError(errorDays)
	updated.AdaptiveWeight = AdjustAdaptiveWeight(profile.AdaptiveWeight, errorDays)
	updated.VarianceOffset = varianceTrendFactor * cycleTrend(profile.History)

	store := NewHistoryStore(updated.History)
	store.Append(models.CycleHistoryRecord{
		ProfileID:       profile.ID,
		StartDate:       actual,
		EndDate:         AddDays(actual, profile.PeriodDuration),
		IsConfirmed:     true,
		LifestyleImpact: profile.LifestyleOffset,
	})
	updated.History = store.Records()
	updated.LastPeriodDate = &actual

	return updated, RecalibrationOutcome{
		Applied:            true,
		ErrorDays:          errorDays,
		PreviousPrediction: prediction,
	}
}

func confidenceFromError(errorDays int) int {
	score := maxConfidenceScore - int(math.Abs(float64(errorDays)))*confidencePenaltyPerDay
	if score < 0 {
		return 0
	}
	return score
}

// cycleTrend is the slope term scaled into VarianceOffset. It is held at zero,
// which keeps the adaptive adjustment inert.
func cycleTrend([]models.CycleHistoryRecord) float64 {
	return 0
}
