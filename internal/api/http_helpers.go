package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclecast/internal/services"
)

type errorMapping struct {
	target  error
	status  int
	message string
}

var serviceErrorMappings = []errorMapping{
	{services.ErrAuthCredentialsInvalid, fiber.StatusUnauthorized, "invalid credentials"},
	{services.ErrAuthEmailExists, fiber.StatusConflict, "email already registered"},
	{services.ErrAuthUserNotFound, fiber.StatusNotFound, "user not found"},
	{services.ErrWeakPassword, fiber.StatusBadRequest, "weak password"},

	{services.ErrProfileExists, fiber.StatusConflict, "profile already exists"},
	{services.ErrProfileNotFound, fiber.StatusNotFound, "profile not found"},
	{services.ErrInsightsUnavailable, fiber.StatusNotFound, "insights unavailable"},
	{services.ErrPeriodStartInFuture, fiber.StatusBadRequest, "period start date is in the future"},
	{services.ErrCalendarRangeInvalid, fiber.StatusBadRequest, "invalid calendar range"},
	{services.ErrHistoryDuplicateStart, fiber.StatusConflict, "duplicate period start"},
	{services.ErrHistoryEmpty, fiber.StatusBadRequest, "history must keep at least one record"},

	{services.ErrOnboardingStartDateRequired, fiber.StatusBadRequest, "last period date is required"},
	{services.ErrOnboardingStartDateOutOfRange, fiber.StatusBadRequest, "last period date out of range"},
	{services.ErrOnboardingCycleLengthOutOfRange, fiber.StatusBadRequest, "cycle length out of range"},
	{services.ErrOnboardingPeriodLengthOutOfRange, fiber.StatusBadRequest, "period duration out of range"},
	{services.ErrOnboardingPeriodIncompatible, fiber.StatusBadRequest, "period duration incompatible with cycle length"},
	{services.ErrCalibrationEntryInvalid, fiber.StatusBadRequest, "invalid calibration entry"},
	{services.ErrCalibrationEntryAfterHistory, fiber.StatusBadRequest, "calibration entry must start before the last period"},

	{services.ErrSettingsLanguageUnsupported, fiber.StatusBadRequest, "unsupported language"},
	{services.ErrSettingsPasswordMissing, fiber.StatusBadRequest, "password is required"},
	{services.ErrSettingsPasswordInvalid, fiber.StatusUnauthorized, "current password is incorrect"},
	{services.ErrSettingsPasswordUnchanged, fiber.StatusBadRequest, "new password must differ"},

	{services.ErrImportFormatUnsupported, fiber.StatusUnprocessableEntity, "unsupported export format"},
	{services.ErrImportPayloadInvalid, fiber.StatusBadRequest, "invalid import payload"},
}

func apiError(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{"error": message})
}

// serviceError maps a service failure to its HTTP answer. Unknown errors are
// logged and reported as 500 without details.
func (handler *Handler) serviceError(c *fiber.Ctx, err error) error {
	for _, mapping := range serviceErrorMappings {
		if errors.Is(err, mapping.target) {
			return apiError(c, mapping.status, mapping.message)
		}
	}

	handler.log.WithError(err).
		WithField("path", c.Path()).
		WithField("request_id", requestID(c)).
		Error("request failed")
	return apiError(c, fiber.StatusInternalServerError, "internal error")
}
