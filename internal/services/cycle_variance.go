package services

import (
	"math"

	"github.com/terraincognita07/cyclecast/internal/models"
)

const (
	defaultCycleVariance    = 1.5
	varianceHistoryWindow   = 6
	volatilityHistoryWindow = 3
)

// RollingVariance is the population standard deviation of recent cycle lengths
// with the in-progress cycle counted as one more sample. Sparse history yields
// a moderate default instead of false precision.
func RollingVariance(history []models.CycleHistoryRecord, currentCycleLength int) float64 {
	if len(history) < 2 {
		return defaultCycleVariance
	}

	window := NewHistoryStore(history).LastN(varianceHistoryWindow)
	samples := make([]float64, 0, len(window))
	for index := 1; index < len(window); index++ {
		samples = append(samples, float64(DaysBetween(window[index-1].StartDate, window[index].StartDate)))
	}
	samples = append(samples, float64(currentCycleLength))
	if len(samples) < 2 {
		return defaultCycleVariance
	}

	return populationStdDev(samples)
}

// LifestyleVolatility averages the absolute lifestyle impact of the last few
// records together with the current offset.
func LifestyleVolatility(history []models.CycleHistoryRecord, currentImpact float64) float64 {
	window := NewHistoryStore(history).LastN(volatilityHistoryWindow)
	values := make([]float64, 0, len(window)+1)
	for _, record := range window {
		values = append(values, math.Abs(record.LifestyleImpact))
	}
	values = append(values, math.Abs(currentImpact))
	return mean(values)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var total float64
	for _, value := range values {
		total += value
	}
	return total / float64(len(values))
}

func populationStdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	average := mean(values)
	var squared float64
	for _, value := range values {
		delta := value - average
		squared += delta * delta
	}
	return math.Sqrt(squared / float64(len(values)))
}
