package api

import (
	"github.com/gofiber/fiber/v2"
)

func (handler *Handler) GetProfile(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	profile, err := handler.profiles.Profile(c.UserContext(), user.ID)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(newProfileView(profile))
}

func (handler *Handler) Onboard(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var payload onboardingPayload
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	input, err := payload.input()
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	profile, err := handler.profiles.Onboard(c.UserContext(), user.ID, input)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(newProfileView(profile))
}

func (handler *Handler) DeleteProfile(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	if err := handler.profiles.DeleteProfile(c.UserContext(), user.ID); err != nil {
		return handler.serviceError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// CalibrateHistory replaces the unconfirmed history entries with the edited
// list. Confirmed entries survive.
func (handler *Handler) CalibrateHistory(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	var payload calibrationPayload
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}
	entries, err := payload.entries()
	if err != nil {
		return apiError(c, fiber.StatusBadRequest, err.Error())
	}

	profile, err := handler.profiles.CalibrateHistory(c.UserContext(), user.ID, entries)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(newProfileView(profile))
}

func (handler *Handler) ConfirmCalibration(c *fiber.Ctx) error {
	user, ok := currentUser(c)
	if !ok {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	profile, err := handler.profiles.ConfirmCalibration(c.UserContext(), user.ID)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.JSON(newProfileView(profile))
}
