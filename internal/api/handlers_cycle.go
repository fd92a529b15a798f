package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclecast/internal/services"
)

type dashboardView struct {
	services.DashboardSummary
	StatusLabel string `json:"status_label"`
	PhaseLabel  string `json:"phase_label"`
}

func (handler *Handler) GetPrediction(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	prediction, err := handler.profiles.Prediction(c.UserContext(), user.ID)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(newPredictionView(prediction, handler.i18n, handler.currentLanguage(c)))
}

func (handler *Handler) GetDashboard(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	summary, err := handler.profiles.Dashboard(c.UserContext(), user.ID)
	if err != nil {
		return handler.serviceError(c, err)
	}
	language := handler.currentLanguage(c)
	return c.JSON(dashboardView{
		DashboardSummary: summary,
		StatusLabel:      statusLabel(handler.i18n, language, summary.Status),
		PhaseLabel:       phaseLabel(handler.i18n, language, summary.Phase),
	})
}

func (handler *Handler) GetDay(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	day, err := parseDayParam(c.Params("date"))
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	classified, err := handler.profiles.ClassifyDay(c.UserContext(), user.ID, day)
	if err != nil {
		return handler.serviceError(c, err)
	}
	language := handler.currentLanguage(c)
	return c.JSON(dayView{
		Date:        services.FormatDay(classified.Date),
		Status:      string(classified.Status),
		StatusLabel: statusLabel(handler.i18n, language, classified.Status),
		Phase:       string(classified.Phase),
		PhaseLabel:  phaseLabel(handler.i18n, language, classified.Phase),
	})
}

func (handler *Handler) GetCalendar(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	monthStart, err := parseMonthQuery(c.Query("month"), handler.profiles.Today())
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	states, err := handler.profiles.Calendar(c.UserContext(), user.ID, monthStart)
	if err != nil {
		return handler.serviceError(c, err)
	}

	language := handler.currentLanguage(c)
	days := make([]calendarDayView, 0, len(states))
	for _, state := range states {
		days = append(days, calendarDayView{
			CalendarDayState: state,
			StatusLabel:      statusLabel(handler.i18n, language, state.Status),
			PhaseLabel:       phaseLabel(handler.i18n, language, state.Phase),
		})
	}
	return c.JSON(calendarView{Month: monthStart.Format("2006-01"), Days: days})
}

// RecordPeriodStart confirms a period start. An empty body or date means today.
func (handler *Handler) RecordPeriodStart(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var payload periodStartPayload
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&payload); err != nil {
			return apiError(c, fiber.StatusBadRequest, "invalid input")
		}
	}
	day := handler.profiles.Today()
	if payload.Date != "" {
		parsed, err := parseDayParam(payload.Date)
		if err != nil {
			return apiError(c, fiber.StatusBadRequest, err.Error())
		}
		day = parsed
	}

	profile, outcome, err := handler.profiles.RecordPeriodStart(c.UserContext(), user.ID, day)
	if err != nil {
		return handler.serviceError(c, err)
	}

	view := recalibrationView{
		Applied:         outcome.Applied,
		ErrorDays:       outcome.ErrorDays,
		ConfidenceScore: profile.ConfidenceScore,
		AdaptiveWeight:  profile.AdaptiveWeight,
	}
	if prediction, ok := services.Predict(profile); ok {
		next := newPredictionView(prediction, handler.i18n, handler.currentLanguage(c))
		view.Prediction = &next
	}
	return c.JSON(view)
}
