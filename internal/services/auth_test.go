package services

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJWTRoundTrip(t *testing.T) {
	svc := NewAuthService(nil, "test-secret")

	token, err := svc.GenerateJWT("member-123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	memberID, err := svc.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, "member-123", memberID)
}

func TestValidateJWTWrongSecret(t *testing.T) {
	svc := NewAuthService(nil, "test-secret")
	other := NewAuthService(nil, "other-secret")

	token, err := svc.GenerateJWT("member-123")
	require.NoError(t, err)

	_, err = other.ValidateJWT(token)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestValidateJWTGarbage(t *testing.T) {
	svc := NewAuthService(nil, "test-secret")

	_, err := svc.ValidateJWT("not-a-token")
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestValidateJWTExpired(t *testing.T) {
	secret := "test-secret"
	claims := jwt.MapClaims{
		"user_id": "member-123",
		"exp":     time.Now().Add(-time.Hour).Unix(),
		"iat":     time.Now().Add(-2 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	svc := NewAuthService(nil, secret)
	_, err = svc.ValidateJWT(token)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestValidateJWTRejectsUnsignedToken(t *testing.T) {
	claims := jwt.MapClaims{
		"user_id": "member-123",
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	svc := NewAuthService(nil, "test-secret")
	_, err = svc.ValidateJWT(token)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestValidateJWTMissingUserID(t *testing.T) {
	secret := "test-secret"
	claims := jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)

	svc := NewAuthService(nil, secret)
	_, err = svc.ValidateJWT(token)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestRegisterValidation(t *testing.T) {
	svc := NewAuthService(nil, "test-secret")

	_, err := svc.Register(context.Background(), "not-an-email", "longenough")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(context.Background(), "@example.com", "longenough")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(context.Background(), "user@", "longenough")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.Register(context.Background(), "user@example.com", "short")
	assert.ErrorIs(t, err, ErrValidation)
}
