package authenticating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dashboardai/insights-api/internal/config"
)

func newTestAuthenticator(t *testing.T, apiKey string) Authenticator {
	hash, err := bcrypt.GenerateFromPassword([]byte(apiKey), bcrypt.MinCost)
	require.NoError(t, err)

	return NewService(&config.Config{
		Auth: config.Auth{
			SecretKey:  "test-secret",
			APIKeyHash: string(hash),
		},
	})
}

func TestLoginAndValidateToken(t *testing.T) {
	service := newTestAuthenticator(t, "valid-api-key")

	token, err := service.Login("valid-api-key")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "ingestion-service", claims.Subject)
	assert.Equal(t, "service", claims.Role)
}

func TestLoginRejectsWrongKey(t *testing.T) {
	service := newTestAuthenticator(t, "valid-api-key")

	_, err := service.Login("wrong-key")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLoginRejectsEmptyKey(t *testing.T) {
	service := newTestAuthenticator(t, "valid-api-key")

	_, err := service.Login("")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrMissingRequiredData)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	service := newTestAuthenticator(t, "valid-api-key")

	_, err := service.ValidateToken("not-a-jwt")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenRejectsForeignSignature(t *testing.T) {
	issuer := newTestAuthenticator(t, "valid-api-key")
	verifier := NewService(&config.Config{
		Auth: config.Auth{SecretKey: "different-secret"},
	})

	token, err := issuer.Login("valid-api-key")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	require.Error(t, err)
}
