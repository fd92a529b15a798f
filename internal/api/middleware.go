package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/cyclecast/internal/models"
)

const (
	contextUserKey      = "current_user"
	contextLanguageKey  = "language"
	contextRequestIDKey = "request_id"

	requestIDHeader    = "X-Request-ID"
	changePasswordPath = "/api/settings/password"
)

// AuthRequired resolves the bearer token to a user. Users flagged by an admin
// password reset may only reach the password change endpoint.
func (handler *Handler) AuthRequired(c *fiber.Ctx) error {
	user, err := handler.authenticateRequest(c)
	if err != nil {
		return apiError(c, fiber.StatusUnauthorized, "unauthorized")
	}

	c.Locals(contextUserKey, user)
	if language := user.Preferences.Language; language != "" {
		c.Locals(contextLanguageKey, handler.i18n.NormalizeLanguage(language))
	}

	if user.MustChangePassword && c.Path() != changePasswordPath {
		return apiError(c, fiber.StatusForbidden, "password change required")
	}
	return c.Next()
}

func (handler *Handler) LanguageMiddleware(c *fiber.Ctx) error {
	language := handler.i18n.DetectFromAcceptLanguage(c.Get(fiber.HeaderAcceptLanguage))
	c.Locals(contextLanguageKey, language)
	return c.Next()
}

// RequestLogger tags every request with an id and writes one entry when the
// handler chain returns.
func (handler *Handler) RequestLogger(c *fiber.Ctx) error {
	id := c.Get(requestIDHeader)
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}
	c.Locals(contextRequestIDKey, id)
	c.Set(requestIDHeader, id)

	started := time.Now()
	chainErr := c.Next()
	if chainErr != nil {
		if handlerErr := c.App().ErrorHandler(c, chainErr); handlerErr != nil {
			_ = c.SendStatus(fiber.StatusInternalServerError)
		}
	}

	status := c.Response().StatusCode()
	entry := handler.log.WithFields(logrus.Fields{
		"request_id": id,
		"method":     c.Method(),
		"path":       c.Path(),
		"status":     status,
		"latency":    time.Since(started).String(),
	})
	switch {
	case status >= fiber.StatusInternalServerError:
		entry.Error("request")
	case status >= fiber.StatusBadRequest:
		entry.Warn("request")
	default:
		entry.Info("request")
	}
	return nil
}

func currentUser(c *fiber.Ctx) (*models.User, bool) {
	user, ok := c.Locals(contextUserKey).(*models.User)
	return user, ok && user != nil
}

func (handler *Handler) currentLanguage(c *fiber.Ctx) string {
	if language, ok := c.Locals(contextLanguageKey).(string); ok && language != "" {
		return language
	}
	return handler.i18n.DefaultLanguage()
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals(contextRequestIDKey).(string)
	return id
}
