package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const maxRequestBodyBytes = 1 << 20

// NewApp builds the fiber application with the full middleware chain.
func NewApp(handler *Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "cyclecast",
		DisableStartupMessage: true,
		BodyLimit:             maxRequestBodyBytes,
		ErrorHandler:          handler.errorHandler,
	})

	app.Use(handler.RequestLogger)
	app.Use(recover.New())
	app.Use(compress.New())
	app.Use(handler.LanguageMiddleware)
	RegisterRoutes(app, handler)
	return app
}

func (handler *Handler) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return apiError(c, fiberErr.Code, fiberErr.Message)
	}

	handler.log.WithError(err).WithField("request_id", requestID(c)).Error("unhandled error")
	return apiError(c, fiber.StatusInternalServerError, "internal error")
}
