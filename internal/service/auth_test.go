package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmoreau/nutritrack/internal/models"
)

func TestRegisterAndLogin(t *testing.T) {
	db := setupDB(t)
	svc := NewAuthService(db, "test-secret")

	token, err := svc.Register("new@example.com", "password123", "newuser")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Registration creates the profile row alongside the user.
	var profile models.Profile
	require.NoError(t, db.Where("login = ?", "newuser").First(&profile).Error)

	token, err = svc.Login("new@example.com", "password123")
	require.NoError(t, err)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, profile.UserID, claims.UserID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db := setupDB(t)
	svc := NewAuthService(db, "test-secret")

	_, err := svc.Register("dup@example.com", "password123", "")
	require.NoError(t, err)

	_, err = svc.Register("dup@example.com", "otherpassword", "")
	assert.ErrorIs(t, err, ErrConflict)
}

func TestLoginWrongPassword(t *testing.T) {
	db := setupDB(t)
	svc := NewAuthService(db, "test-secret")

	_, err := svc.Register("a@example.com", "password123", "")
	require.NoError(t, err)

	_, err = svc.Login("a@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login("nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	db := setupDB(t)
	svc := NewAuthService(db, "secret-a")

	token, err := svc.Register("a@example.com", "password123", "")
	require.NoError(t, err)

	other := NewAuthService(db, "secret-b")
	_, err = other.ValidateToken(token)
	assert.Error(t, err)
}

func TestFallbackLogin(t *testing.T) {
	id := uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000")

	assert.Equal(t, "jeandupont_a1b2c3d4", FallbackLogin("Jean.Dupont@example.com", id))
	assert.Equal(t, "user_a1b2c3d4", FallbackLogin("@example.com", id))
}
