package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclecast/internal/services"
)

func (handler *Handler) GetPreferences(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	preferences, err := handler.settings.Preferences(c.UserContext(), user.ID)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(preferences)
}

func (handler *Handler) UpdatePreferences(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var update services.PreferencesUpdate
	if err := c.BodyParser(&update); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	preferences, err := handler.settings.UpdatePreferences(c.UserContext(), user.ID, update)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(preferences)
}

func (handler *Handler) ChangePassword(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var payload changePasswordPayload
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	if err := handler.settings.ChangePassword(c.UserContext(), user.ID, payload.CurrentPassword, payload.NewPassword); err != nil {
		return handler.serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
