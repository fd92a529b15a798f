package api

import (
	"github.com/terraincognita07/cyclecast/internal/i18n"
	"github.com/terraincognita07/cyclecast/internal/models"
	"github.com/terraincognita07/cyclecast/internal/services"
)

type userView struct {
	ID                 uint               `json:"id"`
	Email              string             `json:"email"`
	MustChangePassword bool               `json:"must_change_password"`
	Preferences        models.Preferences `json:"preferences"`
}

type historyView struct {
	StartDate       string  `json:"start_date"`
	EndDate         string  `json:"end_date"`
	IsConfirmed     bool    `json:"is_confirmed"`
	LifestyleImpact float64 `json:"lifestyle_impact"`
}

type profileView struct {
	LastPeriodDate  string        `json:"last_period_date,omitempty"`
	CycleLength     int           `json:"cycle_length"`
	PeriodDuration  int           `json:"period_duration"`
	LifestyleOffset float64       `json:"lifestyle_offset"`
	AdaptiveWeight  float64       `json:"adaptive_weight"`
	ConfidenceScore int           `json:"confidence_score"`
	Habits          models.Habits `json:"habits"`
	IsProfessional  bool          `json:"is_professional"`
	History         []historyView `json:"history"`
}

type windowView struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

type predictionView struct {
	LastPeriod      string     `json:"last_period"`
	NextPeriodDate  string     `json:"next_period_date"`
	NextPeriodEnd   string     `json:"next_period_end"`
	OvulationDate   string     `json:"ovulation_date"`
	FertileWindow   windowView `json:"fertile_window"`
	WindowStart     string     `json:"window_start"`
	WindowEnd       string     `json:"window_end"`
	AccuracyDays    int        `json:"accuracy_days"`
	Confidence      float64    `json:"confidence"`
	ConfidenceLabel string     `json:"confidence_label"`
	Variance        float64    `json:"variance"`
	Volatility      float64    `json:"volatility"`
}

type dayView struct {
	Date        string `json:"date"`
	Status      string `json:"status"`
	StatusLabel string `json:"status_label"`
	Phase       string `json:"phase"`
	PhaseLabel  string `json:"phase_label"`
}

type calendarDayView struct {
	services.CalendarDayState
	StatusLabel string `json:"status_label"`
	PhaseLabel  string `json:"phase_label"`
}

type calendarView struct {
	Month string            `json:"month"`
	Days  []calendarDayView `json:"days"`
}

type recalibrationView struct {
	Applied         bool            `json:"applied"`
	ErrorDays       int             `json:"error_days"`
	ConfidenceScore int             `json:"confidence_score"`
	AdaptiveWeight  float64         `json:"adaptive_weight"`
	Prediction      *predictionView `json:"prediction,omitempty"`
}

func newUserView(user models.User) userView {
	return userView{
		ID:                 user.ID,
		Email:              user.Email,
		MustChangePassword: user.MustChangePassword,
		Preferences:        user.Preferences,
	}
}

func newProfileView(profile models.CycleProfile) profileView {
	view := profileView{
		CycleLength:     profile.CycleLength,
		PeriodDuration:  profile.PeriodDuration,
		LifestyleOffset: profile.LifestyleOffset,
		AdaptiveWeight:  profile.AdaptiveWeight,
		ConfidenceScore: profile.ConfidenceScore,
		Habits:          profile.Habits,
		IsProfessional:  profile.IsProfessional,
		History:         make([]historyView, 0, len(profile.History)),
	}
	if profile.LastPeriodDate != nil {
		view.LastPeriodDate = services.FormatDay(*profile.LastPeriodDate)
	}
	for _, record := range profile.History {
		view.History = append(view.History, historyView{
			StartDate:       services.FormatDay(record.StartDate),
			EndDate:         services.FormatDay(record.EndDate),
			IsConfirmed:     record.IsConfirmed,
			LifestyleImpact: record.LifestyleImpact,
		})
	}
	return view
}

func newPredictionView(prediction services.PredictionResult, messages *i18n.Manager, language string) predictionView {
	return predictionView{
		LastPeriod:     services.FormatDay(prediction.LastPeriod),
		NextPeriodDate: services.FormatDay(prediction.NextPeriodDate),
		NextPeriodEnd:  services.FormatDay(prediction.NextPeriodEnd),
		OvulationDate:  services.FormatDay(prediction.OvulationDate),
		FertileWindow: windowView{
			Start: services.FormatDay(prediction.FertileWindow.Start),
			End:   services.FormatDay(prediction.FertileWindow.End),
		},
		WindowStart:     services.FormatDay(prediction.PredictionWindow.Start),
		WindowEnd:       services.FormatDay(prediction.PredictionWindow.End),
		AccuracyDays:    prediction.PredictionWindow.AccuracyDays,
		Confidence:      prediction.PredictionWindow.Confidence,
		ConfidenceLabel: confidenceLabel(messages, language, prediction.PredictionWindow.AccuracyDays),
		Variance:        prediction.Variance,
		Volatility:      prediction.Volatility,
	}
}

func confidenceLabel(messages *i18n.Manager, language string, accuracyDays int) string {
	key := "confidence.low"
	switch {
	case accuracyDays <= 1:
		key = "confidence.high"
	case accuracyDays == 2:
		key = "confidence.medium"
	}
	return messages.Translatef(language, key, accuracyDays)
}

func statusLabel(messages *i18n.Manager, language string, status services.DayStatus) string {
	return messages.Translate(language, "status."+string(status))
}

func phaseLabel(messages *i18n.Manager, language string, phase services.CyclePhase) string {
	return messages.Translate(language, "phase."+string(phase))
}
