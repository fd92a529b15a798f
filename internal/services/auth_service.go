package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/cyclecast/internal/models"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrAuthCredentialsInvalid = errors.New("auth credentials invalid")
	ErrAuthEmailExists        = errors.New("email already registered")
	ErrAuthUserNotFound       = errors.New("user not found")
	ErrWeakPassword           = errors.New("weak password")
)

const minPasswordRunes = 8

type AuthUserRepository interface {
	ExistsByNormalizedEmail(ctx context.Context, email string) (bool, error)
	FindByNormalizedEmail(ctx context.Context, email string) (models.User, bool, error)
	FindByID(ctx context.Context, userID uint) (models.User, bool, error)
	Create(ctx context.Context, user *models.User) error
	UpdatePassword(ctx context.Context, userID uint, passwordHash string, mustChangePassword bool) error
}

type AuthService struct {
	users AuthUserRepository
	log   *logrus.Entry
	cost  int
}

func NewAuthService(users AuthUserRepository, log *logrus.Entry) *AuthService {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &AuthService{
		users: users,
		log:   log.WithField("component", "auth_service"),
		cost:  bcrypt.DefaultCost,
	}
}

func (service *AuthService) Register(ctx context.Context, emailRaw string, password string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, password)
	if err != nil {
		return models.User{}, err
	}
	if err := ValidatePasswordStrength(password); err != nil {
		return models.User{}, err
	}

	exists, err := service.users.ExistsByNormalizedEmail(ctx, email)
	if err != nil {
		return models.User{}, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return models.User{}, ErrAuthEmailExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), service.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{
		Email:        email,
		PasswordHash: string(hash),
		Preferences:  models.DefaultPreferences(),
		CreatedAt:    time.Now().UTC(),
	}
	if err := service.users.Create(ctx, &user); err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}

	service.log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Authenticate answers ErrAuthCredentialsInvalid for both unknown emails and
// wrong passwords.
func (service *AuthService) Authenticate(ctx context.Context, emailRaw string, password string) (models.User, error) {
	email, password, err := NormalizeCredentialsInput(emailRaw, password)
	if err != nil {
		return models.User{}, err
	}

	user, found, err := service.users.FindByNormalizedEmail(ctx, email)
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if !found {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	return user, nil
}

func (service *AuthService) FindByID(ctx context.Context, userID uint) (models.User, error) {
	user, found, err := service.users.FindByID(ctx, userID)
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if !found {
		return models.User{}, ErrAuthUserNotFound
	}
	return user, nil
}

func (service *AuthService) FindByEmail(ctx context.Context, emailRaw string) (models.User, error) {
	email := NormalizeAuthEmail(emailRaw)
	if email == "" {
		return models.User{}, ErrAuthCredentialsInvalid
	}
	user, found, err := service.users.FindByNormalizedEmail(ctx, email)
	if err != nil {
		return models.User{}, fmt.Errorf("load user: %w", err)
	}
	if !found {
		return models.User{}, ErrAuthUserNotFound
	}
	return user, nil
}

// ResetPassword stores a new password hash and forces a change on next login.
func (service *AuthService) ResetPassword(ctx context.Context, emailRaw string, password string) (models.User, error) {
	user, err := service.FindByEmail(ctx, emailRaw)
	if err != nil {
		return models.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), service.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}
	if err := service.users.UpdatePassword(ctx, user.ID, string(hash), true); err != nil {
		return models.User{}, fmt.Errorf("update password: %w", err)
	}

	user.PasswordHash = string(hash)
	user.MustChangePassword = true
	service.log.WithField("user_id", user.ID).Warn("password reset")
	return user, nil
}

func NormalizeAuthEmail(raw string) string {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return ""
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return ""
	}
	return email
}

func NormalizeCredentialsInput(emailRaw string, passwordRaw string) (string, string, error) {
	email := NormalizeAuthEmail(emailRaw)
	password := strings.TrimSpace(passwordRaw)
	if email == "" || password == "" {
		return "", "", ErrAuthCredentialsInvalid
	}
	return email, password, nil
}

func ValidatePasswordStrength(password string) error {
	if len([]rune(password)) < minPasswordRunes {
		return ErrWeakPassword
	}

	hasUpper := false
	hasLower := false
	hasDigit := false
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsDigit(char):
			hasDigit = true
		}
	}

	if hasUpper && hasLower && hasDigit {
		return nil
	}
	return ErrWeakPassword
}
