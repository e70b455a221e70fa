package jwt

import (
	"context"
	"testing"

	"github.com/cmlabs-hris/academy-shift-go/internal/domain/auth"
	"github.com/cmlabs-hris/academy-shift-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-jwt"

func TestSessionFromContext_AccessToken(t *testing.T) {
	svc := NewJWTService(testSecret, "1h")

	tokenString, expiresAt, err := svc.GenerateAccessToken("trainer-1", "Dana", user.RoleTrainer)
	require.NoError(t, err)
	assert.Greater(t, expiresAt, int64(0))

	token, err := jwtauth.VerifyToken(svc.JWTAuth(), tokenString)
	require.NoError(t, err)

	session, err := SessionFromContext(jwtauth.NewContext(context.Background(), token, nil))
	require.NoError(t, err)
	assert.Equal(t, user.Session{UserID: "trainer-1", Name: "Dana", Role: user.RoleTrainer}, session)
}

func TestSessionFromContext_NoToken(t *testing.T) {
	_, err := SessionFromContext(context.Background())
	assert.ErrorIs(t, err, auth.ErrMissingSession)
}

func TestGenerateAccessToken_InvalidExpiration(t *testing.T) {
	_, _, err := NewJWTService(testSecret, "forever").GenerateAccessToken("trainer-1", "Dana", user.RoleTrainer)
	assert.Error(t, err)
}

func TestSSEToken(t *testing.T) {
	svc := NewJWTService(testSecret, "1h")

	token, expiresIn, err := svc.GenerateSSEToken("trainer-1")
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	userID, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, "trainer-1", userID)

	access, _, err := svc.GenerateAccessToken("trainer-1", "Dana", user.RoleTrainer)
	require.NoError(t, err)
	_, err = svc.ValidateSSEToken(access)
	assert.Error(t, err)

	_, err = NewJWTService("another-secret", "1h").ValidateSSEToken(token)
	assert.Error(t, err)
}
