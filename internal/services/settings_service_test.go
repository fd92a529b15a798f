package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/cyclecast/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type stubSettingsRepo struct {
	user models.User
}

func (stub *stubSettingsRepo) FindByID(_ context.Context, userID uint) (models.User, bool, error) {
	if stub.user.ID != userID {
		return models.User{}, false, nil
	}
	return stub.user, true, nil
}

func (stub *stubSettingsRepo) UpdatePreferences(_ context.Context, _ uint, preferences models.Preferences) error {
	stub.user.Preferences = preferences
	return nil
}

func (stub *stubSettingsRepo) UpdatePassword(_ context.Context, _ uint, passwordHash string, mustChange bool) error {
	stub.user.PasswordHash = passwordHash
	stub.user.MustChangePassword = mustChange
	return nil
}

func TestSettingsServiceUpdatePreferencesPartially(t *testing.T) {
	repo := &stubSettingsRepo{user: models.User{ID: 1, Preferences: models.DefaultPreferences()}}
	service := NewSettingsService(repo, []string{"en", "ru"})

	dark := true
	language := " RU "
	preferences, err := service.UpdatePreferences(context.Background(), 1, PreferencesUpdate{DarkMode: &dark, Language: &language})
	require.NoError(t, err)
	assert.True(t, preferences.DarkMode)
	assert.True(t, preferences.Haptics)
	assert.Equal(t, "ru", preferences.Language)
	assert.Equal(t, preferences, repo.user.Preferences)

	unsupported := "de"
	_, err = service.UpdatePreferences(context.Background(), 1, PreferencesUpdate{Language: &unsupported})
	assert.ErrorIs(t, err, ErrSettingsLanguageUnsupported)

	_, err = service.Preferences(context.Background(), 2)
	assert.ErrorIs(t, err, ErrAuthUserNotFound)
}

func TestSettingsServiceChangePassword(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("TempPass99"), bcrypt.MinCost)
	require.NoError(t, err)
	repo := &stubSettingsRepo{user: models.User{ID: 1, PasswordHash: string(hash), MustChangePassword: true}}
	service := NewSettingsService(repo, nil)
	ctx := context.Background()

	assert.ErrorIs(t, service.ChangePassword(ctx, 1, "", "NewPass123"), ErrSettingsPasswordMissing)
	assert.ErrorIs(t, service.ChangePassword(ctx, 1, "WrongPass1", "NewPass123"), ErrSettingsPasswordInvalid)
	assert.ErrorIs(t, service.ChangePassword(ctx, 1, "TempPass99", "TempPass99"), ErrSettingsPasswordUnchanged)
	assert.ErrorIs(t, service.ChangePassword(ctx, 1, "TempPass99", "weak"), ErrWeakPassword)

	require.NoError(t, service.ChangePassword(ctx, 1, "TempPass99", "NewPass123"))
	assert.False(t, repo.user.MustChangePassword)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.user.PasswordHash), []byte("NewPass123")))
}
