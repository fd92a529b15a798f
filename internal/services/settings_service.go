package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/terraincognita07/cyclecast/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrSettingsLanguageUnsupported = errors.New("settings language unsupported")
	ErrSettingsPasswordMissing     = errors.New("settings password missing")
	ErrSettingsPasswordInvalid     = errors.New("settings password invalid")
	ErrSettingsPasswordUnchanged   = errors.New("settings password unchanged")
)

type SettingsUserRepository interface {
	FindByID(ctx context.Context, userID uint) (models.User, bool, error)
	UpdatePreferences(ctx context.Context, userID uint, preferences models.Preferences) error
	UpdatePassword(ctx context.Context, userID uint, passwordHash string, mustChangePassword bool) error
}

// PreferencesUpdate carries optional fields; nil leaves the stored value.
type PreferencesUpdate struct {
	DarkMode *bool   `json:"dark_mode"`
	Haptics  *bool   `json:"haptics"`
	Language *string `json:"language"`
}

type SettingsService struct {
	users     SettingsUserRepository
	languages map[string]struct{}
}

func NewSettingsService(users SettingsUserRepository, supportedLanguages []string) *SettingsService {
	languages := make(map[string]struct{}, len(supportedLanguages))
	for _, language := range supportedLanguages {
		languages[strings.ToLower(strings.TrimSpace(language))] = struct{}{}
	}
	if len(languages) == 0 {
		languages[models.LanguageEN] = struct{}{}
	}
	return &SettingsService{users: users, languages: languages}
}

func (service *SettingsService) Preferences(ctx context.Context, userID uint) (models.Preferences, error) {
	user, found, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return models.Preferences{}, fmt.Errorf("load user: %w", err)
	}
	if !found {
		return models.Preferences{}, ErrAuthUserNotFound
	}
	return user.Preferences, nil
}

func (service *SettingsService) UpdatePreferences(ctx context.Context, userID uint, update PreferencesUpdate) (models.Preferences, error) {
	preferences, err := service.Preferences(ctx, userID)
	if err != nil {
		return models.Preferences{}, err
	}

	if update.DarkMode != nil {
		preferences.DarkMode = *update.DarkMode
	}
	if update.Haptics != nil {
		preferences.Haptics = *update.Haptics
	}
	if update.Language != nil {
		language := strings.ToLower(strings.TrimSpace(*update.Language))
		if _, ok := service.languages[language]; !ok {
			return models.Preferences{}, ErrSettingsLanguageUnsupported
		}
		preferences.Language = language
	}

	if err := service.users.UpdatePreferences(ctx, userID, preferences); err != nil {
		return models.Preferences{}, fmt.Errorf("save preferences: %w", err)
	}
	return preferences, nil
}

// ChangePassword verifies the current password and clears the forced-change flag.
func (service *SettingsService) ChangePassword(ctx context.Context, userID uint, currentRaw string, nextRaw string) error {
	current := strings.TrimSpace(currentRaw)
	next := strings.TrimSpace(nextRaw)
	if current == "" || next == "" {
		return ErrSettingsPasswordMissing
	}

	user, found, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("load user: %w", err)
	}
	if !found {
		return ErrAuthUserNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return ErrSettingsPasswordInvalid
	}
	if current == next {
		return ErrSettingsPasswordUnchanged
	}
	if err := ValidatePasswordStrength(next); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := service.users.UpdatePassword(ctx, userID, string(hash), false); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}
