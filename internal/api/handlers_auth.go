package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/terraincognita07/cyclecast/internal/models"
)

func (handler *Handler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (handler *Handler) Register(c *fiber.Ctx) error {
	var payload credentialsPayload
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.auth.Register(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return handler.respondWithToken(c, fiber.StatusCreated, &user)
}

func (handler *Handler) Login(c *fiber.Ctx) error {
	var payload credentialsPayload
	if err := c.BodyParser(&payload); err != nil {
		return apiError(c, fiber.StatusBadRequest, "invalid input")
	}

	user, err := handler.auth.Authenticate(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return handler.serviceError(c, err)
	}
	return handler.respondWithToken(c, fiber.StatusOK, &user)
}

func (handler *Handler) respondWithToken(c *fiber.Ctx, status int, user *models.User) error {
	token, expiresAt, err := handler.buildToken(user, time.Now())
	if err != nil {
		return handler.serviceError(c, err)
	}
	return c.Status(status).JSON(fiber.Map{
		"token":      token,
		"token_type": "Bearer",
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
		"user":       newUserView(*user),
	})
}
