package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/cyclecast/internal/db"
	"github.com/terraincognita07/cyclecast/internal/i18n"
	"github.com/terraincognita07/cyclecast/internal/services"
	gormlogger "gorm.io/gorm/logger"
)

const (
	testSecretKey = "test-secret-key-with-at-least-32-chars"
	testPassword  = "StrongPass1"
)

type testEnv struct {
	app  *fiber.App
	auth *services.AuthService
}

func newTestEnv(t *testing.T, loginPerMin int) *testEnv {
	t.Helper()

	database, err := db.OpenSQLite(filepath.Join(t.TempDir(), "cyclecast-api-test.db"), gormlogger.Discard)
	require.NoError(t, err)
	sqlDB, err := database.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	log := logrus.NewEntry(logger)

	messages, err := i18n.NewBundledManager("en")
	require.NoError(t, err)

	repos := db.NewRepositories(database)
	auth := services.NewAuthService(repos.Users, log)
	profiles := services.NewProfileService(repos.Profiles, log, time.UTC)

	handler, err := NewHandler(Dependencies{
		Auth:        auth,
		Profiles:    profiles,
		Settings:    services.NewSettingsService(repos.Users, messages.SupportedLanguages()),
		Exports:     services.NewExportService(profiles),
		I18n:        messages,
		SecretKey:   testSecretKey,
		LoginPerMin: loginPerMin,
		Location:    time.UTC,
		Log:         log,
	})
	require.NoError(t, err)

	return &testEnv{app: NewApp(handler), auth: auth}
}

func (env *testEnv) do(t *testing.T, method string, path string, token string, body any) (int, []byte) {
	t.Helper()

	var reader io.Reader
	switch value := body.(type) {
	case nil:
	case []byte:
		reader = bytes.NewReader(value)
	default:
		encoded, err := json.Marshal(value)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	request := httptest.NewRequest(method, path, reader)
	if reader != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := env.app.Test(request, -1)
	require.NoError(t, err)
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	require.NoError(t, err)
	return response.StatusCode, payload
}

func (env *testEnv) register(t *testing.T, email string) string {
	t.Helper()

	status, body := env.do(t, http.MethodPost, "/api/auth/register", "", credentialsPayload{Email: email, Password: testPassword})
	require.Equal(t, http.StatusCreated, status, string(body))

	var response struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(body, &response))
	require.NotEmpty(t, response.Token)
	return response.Token
}

func (env *testEnv) login(t *testing.T, email string, password string) (int, string) {
	t.Helper()

	status, body := env.do(t, http.MethodPost, "/api/auth/login", "", credentialsPayload{Email: email, Password: password})
	var response struct {
		Token string `json:"token"`
	}
	_ = json.Unmarshal(body, &response)
	return status, response.Token
}

func (env *testEnv) onboard(t *testing.T, token string, lastPeriod time.Time) {
	t.Helper()

	status, body := env.do(t, http.MethodPost, "/api/profile", token, onboardingPayload{
		LastPeriodDate: services.FormatDay(lastPeriod),
		CycleLength:    28,
		PeriodDuration: 5,
	})
	require.Equal(t, http.StatusCreated, status, string(body))
}

func decodeJSON[T any](t *testing.T, raw []byte) T {
	t.Helper()

	var value T
	require.NoError(t, json.Unmarshal(raw, &value), string(raw))
	return value
}

func errorMessage(t *testing.T, raw []byte) string {
	t.Helper()
	return decodeJSON[map[string]string](t, raw)["error"]
}

func todayUTC() time.Time {
	return services.DateAtLocation(time.Now(), time.UTC)
}

func resetPassword(t *testing.T, env *testEnv, email string, password string) {
	t.Helper()
	_, err := env.auth.ResetPassword(context.Background(), email, password)
	require.NoError(t, err)
}
