package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/cyclecast/internal/models"
)

func TestHealthz(t *testing.T) {
	env := newTestEnv(t, 0)

	status, body := env.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestUnknownRouteAnswersJSON(t *testing.T) {
	env := newTestEnv(t, 0)

	status, body := env.do(t, http.MethodGet, "/api/missing", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.NotEmpty(t, errorMessage(t, body))
}

func TestRegisterAndLogin(t *testing.T) {
	env := newTestEnv(t, 0)

	env.register(t, "Person@Example.com")

	status, body := env.do(t, http.MethodPost, "/api/auth/register", "", credentialsPayload{Email: "person@example.com", Password: testPassword})
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "email already registered", errorMessage(t, body))

	status, token := env.login(t, " PERSON@example.com ", testPassword)
	assert.Equal(t, http.StatusOK, status)
	assert.NotEmpty(t, token)

	status, _ = env.login(t, "person@example.com", "WrongPass1")
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.login(t, "nobody@example.com", testPassword)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	env := newTestEnv(t, 0)

	status, body := env.do(t, http.MethodPost, "/api/auth/register", "", credentialsPayload{Email: "weak@example.com", Password: "short"})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "weak password", errorMessage(t, body))
}

func TestAuthRequiredRejectsMissingAndForgedTokens(t *testing.T) {
	env := newTestEnv(t, 0)

	status, _ := env.do(t, http.MethodGet, "/api/profile", "", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = env.do(t, http.MethodGet, "/api/profile", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	forger := &Handler{secretKey: []byte("another-secret-key-with-32-characters"), tokenTTL: defaultAuthTokenTTL}
	forged, _, err := forger.buildToken(&models.User{ID: 1}, todayUTC())
	require.NoError(t, err)
	status, _ = env.do(t, http.MethodGet, "/api/profile", forged, nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestLoginIsRateLimitedPerClient(t *testing.T) {
	env := newTestEnv(t, 2)
	env.register(t, "limited@example.com")

	for attempt := 0; attempt < 2; attempt++ {
		status, _ := env.login(t, "limited@example.com", "WrongPass1")
		require.Equal(t, http.StatusUnauthorized, status)
	}

	status, _ := env.login(t, "limited@example.com", testPassword)
	assert.Equal(t, http.StatusTooManyRequests, status)
}

func TestForcedPasswordChangeGatesOtherRoutes(t *testing.T) {
	env := newTestEnv(t, 0)
	env.register(t, "reset@example.com")
	resetPassword(t, env, "reset@example.com", "TempPass123")

	status, token := env.login(t, "reset@example.com", "TempPass123")
	require.Equal(t, http.StatusOK, status)

	status, body := env.do(t, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "password change required", errorMessage(t, body))

	status, _ = env.do(t, http.MethodPut, "/api/settings/password", token, changePasswordPayload{
		CurrentPassword: "TempPass123",
		NewPassword:     "FreshPass456",
	})
	require.Equal(t, http.StatusNoContent, status)

	status, body = env.do(t, http.MethodGet, "/api/profile", token, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "profile not found", errorMessage(t, body))
}
