package services

import (
	"time"

	"github.com/terraincognita07/cyclecast/internal/models"
)

const (
	lutealPhaseDays      = 14
	fertileDaysBefore    = 5
	fertileDaysAfter     = 1
	narrowBandRangeLimit = 1.2
	mediumBandRangeLimit = 2.5
	narrowBandAccuracy   = 1
	mediumBandAccuracy   = 2
	wideBandAccuracy     = 3
	narrowBandConfidence = 0.95
	mediumBandConfidence = 0.93
	wideBandConfidence   = 0.89
)

type DateWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

func (window DateWindow) Contains(day time.Time) bool {
	return betweenCalendarDaysInclusive(day, window.Start, window.End)
}

type PredictionWindow struct {
	DateWindow
	AccuracyDays int     `json:"accuracy_days"`
	Confidence   float64 `json:"confidence"`
}

type PredictionResult struct {
	LastPeriod       time.Time        `json:"last_period"`
	NextPeriodDate   time.Time        `json:"next_period_date"`
	NextPeriodEnd    time.Time        `json:"next_period_end"`
	OvulationDate    time.Time        `json:"ovulation_date"`
	FertileWindow    DateWindow       `json:"fertile_window"`
	PredictionWindow PredictionWindow `json:"prediction_window"`
	Variance         float64          `json:"variance"`
	Volatility       float64          `json:"volatility"`
}

// Predict derives the next cycle window from the profile. It reports false when
// the profile has no baseline period date. The profile is not modified.
func Predict(profile models.CycleProfile) (PredictionResult, bool) {
	if profile.LastPeriodDate == nil || profile.LastPeriodDate.IsZero() {
		return PredictionResult{}, false
	}

	cycleVariance := RollingVariance(profile.History, profile.CycleLength)
	volatility := LifestyleVolatility(profile.History, profile.LifestyleOffset)
	accuracyDays, confidence := confidenceBand(cycleVariance + volatility)

	lastPeriod := CalendarDate(*profile.LastPeriodDate)
	basePrediction := AddDays(lastPeriod, profile.CycleLength)
	adaptiveAdjustment := profile.VarianceOffset * profile.AdaptiveWeight
	nextPeriod := AddDays(basePrediction, roundDays(profile.LifestyleOffset+adaptiveAdjustment))
	ovulation := AddDays(nextPeriod, -lutealPhaseDays)

	return PredictionResult{
		LastPeriod:     lastPeriod,
		NextPeriodDate: nextPeriod,
		NextPeriodEnd:  AddDays(nextPeriod, profile.PeriodDuration),
		OvulationDate:  ovulation,
		FertileWindow: DateWindow{
			Start: AddDays(ovulation, -fertileDaysBefore),
			End:   AddDays(ovulation, fertileDaysAfter),
		},
		PredictionWindow: PredictionWindow{
			DateWindow: DateWindow{
				Start: AddDays(nextPeriod, -accuracyDays),
				End:   AddDays(nextPeriod, accuracyDays),
			},
			AccuracyDays: accuracyDays,
			Confidence:   confidence,
		},
		Variance:   cycleVariance,
		Volatility: volatility,
	}, true
}

// confidenceBand maps the combined uncertainty to fixed calibration bands;
// upper bounds are inclusive.
func confidenceBand(predictionRange float64) (int, float64) {
	switch {
	case predictionRange <= narrowBandRangeLimit:
		return narrowBandAccuracy, narrowBandConfidence
	case predictionRange <= mediumBandRangeLimit:
		return mediumBandAccuracy, mediumBandConfidence
	default:
		return wideBandAccuracy, wideBandConfidence
	}
}
