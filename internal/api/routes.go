package api

import "github.com/gofiber/fiber/v2"

func RegisterRoutes(app *fiber.App, handler *Handler) {
	app.Get("/healthz", handler.Health)
	registerAPIRoutes(app, handler)
}

func registerAPIRoutes(app *fiber.App, handler *Handler) {
	api := app.Group("/api")

	auth := api.Group("/auth")
	auth.Post("/register", handler.Register)
	auth.Post("/login", handler.LoginRateLimit, handler.Login)

	profile := api.Group("/profile", handler.AuthRequired)
	profile.Get("", handler.GetProfile)
	profile.Post("", handler.Onboard)
	profile.Delete("", handler.DeleteProfile)
	profile.Put("/calibration", handler.CalibrateHistory)
	profile.Post("/calibration/confirm", handler.ConfirmCalibration)

	api.Get("/prediction", handler.AuthRequired, handler.GetPrediction)
	api.Get("/dashboard", handler.AuthRequired, handler.GetDashboard)
	api.Get("/days/:date", handler.AuthRequired, handler.GetDay)
	api.Get("/calendar", handler.AuthRequired, handler.GetCalendar)
	api.Post("/cycles/start", handler.AuthRequired, handler.RecordPeriodStart)

	settings := api.Group("/settings", handler.AuthRequired)
	settings.Get("/preferences", handler.GetPreferences)
	settings.Put("/preferences", handler.UpdatePreferences)
	settings.Put("/password", handler.ChangePassword)

	api.Get("/export", handler.AuthRequired, handler.Export)
	api.Post("/import", handler.AuthRequired, handler.Import)
}
