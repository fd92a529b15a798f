package services

import (
	"math"

	"github.com/terraincognita07/cyclecast/internal/models"
)

const (
	smokingImpactDays    = 2.0
	alcoholImpactDays    = 2.0
	stressImpactDays     = 2.5
	poorSleepImpactDays  = 2.0
	exerciseImpactDays   = -0.5
	adaptiveErrorTrigger = 2
	adaptiveWeightRaise  = 0.1
	adaptiveWeightDecay  = 0.05
)

// LifestyleImpact is the expected number of days the next period moves later
// (positive) or earlier (negative) because of reported habits. Professionals
// are treated as high-stress.
func LifestyleImpact(habits models.Habits, isProfessional bool) float64 {
	impact := 0.0
	if habits.Smoking {
		impact += smokingImpactDays
	}
	if habits.Alcohol {
		impact += alcoholImpactDays
	}
	if habits.HighStress || isProfessional {
		impact += stressImpactDays
	}
	if habits.PoorSleep {
		impact += poorSleepImpactDays
	}
	if habits.RegularExercise {
		impact += exerciseImpactDays
	}
	return impact
}

// AdjustAdaptiveWeight raises the weight after a miss of more than two days and
// lets it decay otherwise. The weight never drops below zero and has no cap.
func AdjustAdaptiveWeight(weight float64, errorDays int) float64 {
	if math.Abs(float64(errorDays)) > adaptiveErrorTrigger {
		return weight + adaptiveWeightRaise
	}
	return math.Max(0, weight-adaptiveWeightDecay)
}
