package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/terraincognita07/cyclecast/internal/models"
	"golang.org/x/crypto/bcrypt"
)

type stubAuthUserRepo struct {
	users map[string]models.User
}

func newStubAuthUserRepo() *stubAuthUserRepo {
	return &stubAuthUserRepo{users: make(map[string]models.User)}
}

func (stub *stubAuthUserRepo) ExistsByNormalizedEmail(_ context.Context, email string) (bool, error) {
	_, ok := stub.users[email]
	return ok, nil
}

func (stub *stubAuthUserRepo) FindByNormalizedEmail(_ context.Context, email string) (models.User, bool, error) {
	user, ok := stub.users[email]
	return user, ok, nil
}

func (stub *stubAuthUserRepo) FindByID(_ context.Context, userID uint) (models.User, bool, error) {
	for _, user := range stub.users {
		if user.ID == userID {
			return user, true, nil
		}
	}
	return models.User{}, false, nil
}

func (stub *stubAuthUserRepo) Create(_ context.Context, user *models.User) error {
	user.ID = uint(len(stub.users) + 1)
	stub.users[user.Email] = *user
	return nil
}

func (stub *stubAuthUserRepo) UpdatePassword(_ context.Context, userID uint, passwordHash string, mustChange bool) error {
	for email, user := range stub.users {
		if user.ID == userID {
			user.PasswordHash = passwordHash
			user.MustChangePassword = mustChange
			stub.users[email] = user
		}
	}
	return nil
}

func newTestAuthService(repo AuthUserRepository) *AuthService {
	service := NewAuthService(repo, nil)
	service.cost = bcrypt.MinCost
	return service
}

func TestAuthServiceRegisterAndAuthenticate(t *testing.T) {
	ctx := context.Background()
	service := newTestAuthService(newStubAuthUserRepo())

	user, err := service.Register(ctx, "  Owner@Example.com ", "StrongPass1")
	require.NoError(t, err)
	assert.Equal(t, "owner@example.com", user.Email)
	assert.Equal(t, models.DefaultPreferences(), user.Preferences)

	_, err = service.Register(ctx, "owner@example.com", "StrongPass1")
	assert.ErrorIs(t, err, ErrAuthEmailExists)

	authenticated, err := service.Authenticate(ctx, "OWNER@example.com", "StrongPass1")
	require.NoError(t, err)
	assert.Equal(t, user.ID, authenticated.ID)

	_, err = service.Authenticate(ctx, "owner@example.com", "WrongPass1")
	assert.ErrorIs(t, err, ErrAuthCredentialsInvalid)

	_, err = service.Authenticate(ctx, "nobody@example.com", "StrongPass1")
	assert.ErrorIs(t, err, ErrAuthCredentialsInvalid)
}

func TestAuthServiceRegisterRejectsWeakInput(t *testing.T) {
	service := newTestAuthService(newStubAuthUserRepo())

	_, err := service.Register(context.Background(), "not-an-email", "StrongPass1")
	assert.ErrorIs(t, err, ErrAuthCredentialsInvalid)

	_, err = service.Register(context.Background(), "owner@example.com", "weakpass")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestAuthServiceResetPassword(t *testing.T) {
	ctx := context.Background()
	repo := newStubAuthUserRepo()
	service := newTestAuthService(repo)

	_, err := service.Register(ctx, "owner@example.com", "StrongPass1")
	require.NoError(t, err)

	updated, err := service.ResetPassword(ctx, "owner@example.com", "TempPass99")
	require.NoError(t, err)
	assert.True(t, updated.MustChangePassword)

	_, err = service.Authenticate(ctx, "owner@example.com", "TempPass99")
	require.NoError(t, err)

	_, err = service.ResetPassword(ctx, "ghost@example.com", "TempPass99")
	assert.ErrorIs(t, err, ErrAuthUserNotFound)
}

func TestValidatePasswordStrength(t *testing.T) {
	tests := []struct {
		password string
		valid    bool
	}{
		{"StrongPass1", true},
		{"short1A", false},
		{"alllowercase1", false},
		{"ALLUPPERCASE1", false},
		{"NoDigitsHere", false},
	}
	for _, tt := range tests {
		t.Run(tt.password, func(t *testing.T) {
			err := ValidatePasswordStrength(tt.password)
			if tt.valid {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrWeakPassword)
		})
	}
}
