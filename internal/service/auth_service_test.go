package service

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stemsi/typequiz-backend/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newAuthService(t *testing.T, password string) *AuthService {
	t.Helper()
	cfg := &config.Config{
		JWTSecret:  "test-secret",
		JWTExpiry:  time.Hour,
		BcryptCost: bcrypt.MinCost,
	}
	if password != "" {
		hash, err := HashPassword(password, bcrypt.MinCost)
		require.NoError(t, err)
		cfg.AdminPasswordHash = hash
	}
	return NewAuthService(cfg)
}

func TestAdminLoginIssuesValidToken(t *testing.T) {
	s := newAuthService(t, "correct horse")

	token, expires, err := s.AdminLogin("correct horse")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := s.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, TokenTypeAdmin, claims.TokenType)
	assert.Equal(t, "admin", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestAdminLoginRejectsWrongPassword(t *testing.T) {
	s := newAuthService(t, "correct horse")
	_, _, err := s.AdminLogin("battery staple")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAdminLoginDisabledWithoutHash(t *testing.T) {
	s := newAuthService(t, "")
	_, _, err := s.AdminLogin("anything")
	assert.ErrorIs(t, err, ErrAdminDisabled)
}

func TestValidateTokenRejectsExpiredAndForeign(t *testing.T) {
	s := newAuthService(t, "")
	token, _, err := s.GenerateAdminToken()
	require.NoError(t, err)

	s.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = s.ValidateToken(token)
	require.Error(t, err)
	assert.True(t, errors.Is(err, jwt.ErrTokenExpired))

	other := newAuthService(t, "")
	other.cfg.JWTSecret = "another-secret"
	foreign, _, err := other.GenerateAdminToken()
	require.NoError(t, err)
	s.now = time.Now
	_, err = s.ValidateToken(foreign)
	assert.Error(t, err)
}

func TestHashPasswordClampsCost(t *testing.T) {
	hash, err := HashPassword("secret1", 99)
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, bcrypt.DefaultCost, cost)
}
