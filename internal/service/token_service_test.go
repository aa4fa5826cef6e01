package service

import (
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/availability-api/pkg/errors"
)

func TestTokenServiceRoundTrip(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "availability-api", Expiry: time.Hour})

	token, expiresAt, err := svc.Issue("user-1", "ada@example.com", "Ada")
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
	assert.Equal(t, "user-1", claims.Subject)
}

func TestTokenServiceRejectsForeignAndExpiredTokens(t *testing.T) {
	issuer := NewTokenService(TokenConfig{Secret: "other", Issuer: "availability-api"})
	foreign, _, err := issuer.Issue("user-1", "", "")
	require.NoError(t, err)

	svc := NewTokenService(TokenConfig{Secret: "secret", Issuer: "availability-api"})
	_, err = svc.ValidateToken(foreign)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, appErrors.FromError(err).Status)

	past := NewTokenService(TokenConfig{Secret: "secret", Issuer: "availability-api", Expiry: time.Minute})
	past.now = func() time.Time { return time.Now().Add(-time.Hour) }
	stale, _, err := past.Issue("user-1", "", "")
	require.NoError(t, err)
	_, err = svc.ValidateToken(stale)
	assert.Error(t, err)

	wrongIssuer := NewTokenService(TokenConfig{Secret: "secret", Issuer: "someone-else"})
	token, _, err := wrongIssuer.Issue("user-1", "", "")
	require.NoError(t, err)
	_, err = svc.ValidateToken(token)
	assert.Error(t, err)
}

func TestTokenServiceRequiresUser(t *testing.T) {
	svc := NewTokenService(TokenConfig{Secret: "secret"})
	_, _, err := svc.Issue("", "", "")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
