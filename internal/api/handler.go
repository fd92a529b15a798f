package api

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/cyclecast/internal/i18n"
	"github.com/terraincognita07/cyclecast/internal/services"
)

const defaultAuthTokenTTL = 7 * 24 * time.Hour

type Handler struct {
	auth         *services.AuthService
	profiles     *services.ProfileService
	settings     *services.SettingsService
	exports      *services.ExportService
	i18n         *i18n.Manager
	secretKey    []byte
	tokenTTL     time.Duration
	location     *time.Location
	log          *logrus.Entry
	loginLimiter *loginLimiter
}

// Dependencies lists everything the HTTP layer needs. Services are built by
// the caller so that the scheduler and CLI share the same instances.
type Dependencies struct {
	Auth        *services.AuthService
	Profiles    *services.ProfileService
	Settings    *services.SettingsService
	Exports     *services.ExportService
	I18n        *i18n.Manager
	SecretKey   string
	TokenTTL    time.Duration
	LoginPerMin int
	Location    *time.Location
	Log         *logrus.Entry
}

func NewHandler(deps Dependencies) (*Handler, error) {
	if deps.Auth == nil || deps.Profiles == nil || deps.Settings == nil || deps.Exports == nil {
		return nil, errors.New("handler services are required")
	}
	if deps.I18n == nil {
		return nil, errors.New("i18n manager is required")
	}
	if deps.SecretKey == "" {
		return nil, errors.New("secret key is required")
	}

	location := deps.Location
	if location == nil {
		location = time.UTC
	}
	tokenTTL := deps.TokenTTL
	if tokenTTL <= 0 {
		tokenTTL = defaultAuthTokenTTL
	}
	log := deps.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	return &Handler{
		auth:         deps.Auth,
		profiles:     deps.Profiles,
		settings:     deps.Settings,
		exports:      deps.Exports,
		i18n:         deps.I18n,
		secretKey:    []byte(deps.SecretKey),
		tokenTTL:     tokenTTL,
		location:     location,
		log:          log.WithField("component", "api"),
		loginLimiter: newLoginLimiter(deps.LoginPerMin),
	}, nil
}
