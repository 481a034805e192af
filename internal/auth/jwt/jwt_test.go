package jwt

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestNewService_Validation(t *testing.T) {
	_, err := NewService(Config{Duration: time.Hour})
	assert.ErrorIs(t, err, ErrEmptySecretKey)

	_, err = NewService(Config{SecretKey: "short", Duration: time.Hour})
	assert.ErrorIs(t, err, ErrWeakSecretKey)

	_, err = NewService(Config{SecretKey: secret})
	assert.ErrorIs(t, err, ErrInvalidDuration)
}

func TestGenerateAndValidate(t *testing.T) {
	s, err := NewService(Config{SecretKey: secret, Duration: time.Hour})
	require.NoError(t, err)

	tok, exp, err := s.GenerateToken("sess-1", 42, "sokha", "user")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), exp, 5*time.Second)

	claims, err := s.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "sokha", claims.Username)
	assert.Equal(t, "user", claims.Role)
}

func TestGenerateToken_RequiresSession(t *testing.T) {
	s, err := NewService(Config{SecretKey: secret, Duration: time.Hour})
	require.NoError(t, err)
	_, _, err = s.GenerateToken("", 1, "a", "user")
	assert.ErrorIs(t, err, ErrMissingSession)
}

func TestValidateToken_Expired(t *testing.T) {
	s, err := NewService(Config{SecretKey: secret, Duration: time.Minute})
	require.NoError(t, err)

	base := time.Now()
	s.now = func() time.Time { return base }
	tok, _, err := s.GenerateToken("sess", 1, "a", "user")
	require.NoError(t, err)

	s.now = func() time.Time { return base.Add(2 * time.Minute) }
	_, err = s.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_Invalid(t *testing.T) {
	s, err := NewService(Config{SecretKey: secret, Duration: time.Hour})
	require.NoError(t, err)

	_, err = s.ValidateToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)

	other, err := NewService(Config{SecretKey: "fedcba9876543210fedcba9876543210", Duration: time.Hour})
	require.NoError(t, err)
	tok, _, err := other.GenerateToken("sess", 1, "a", "user")
	require.NoError(t, err)
	_, err = s.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)

	// a signed token without a session id is rejected
	raw := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		UserID: 1,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, err := raw.SignedString([]byte(secret))
	require.NoError(t, err)
	_, err = s.ValidateToken(signed)
	assert.ErrorIs(t, err, ErrMissingSession)
}
