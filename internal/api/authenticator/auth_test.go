package authenticator

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/podium-events/podium/internal/config"
)

func newTestAuthenticator(t *testing.T) *Authenticator {
	t.Helper()
	a, err := New(&config.Config{
		SESSION_SECRET: "test-session-secret",
		STATE_SECRET:   "test-state-secret",
	})
	require.NoError(t, err)
	return a
}

func TestSessionTokenRoundTrip(t *testing.T) {
	a := newTestAuthenticator(t)
	userID := uuid.New()

	token, err := a.GenerateToken(userID, "jane@example.org", "Jane", true)
	require.NoError(t, err)

	claims, err := a.VerifyAccessToken(context.Background(), token)
	require.NoError(t, err)
	require.Equal(t, userID, claims.UserID)
	require.Equal(t, "jane@example.org", claims.Email)
	require.Equal(t, "Jane", claims.Name)
	require.True(t, claims.IsAdmin)
	require.Equal(t, userID.String(), claims.Subject)
}

func TestVerifyAccessTokenRejectsForeignSecret(t *testing.T) {
	a := newTestAuthenticator(t)
	other, err := New(&config.Config{SESSION_SECRET: "different-secret"})
	require.NoError(t, err)

	token, err := other.GenerateToken(uuid.New(), "jane@example.org", "Jane", false)
	require.NoError(t, err)

	_, err = a.VerifyAccessToken(context.Background(), token)
	require.Error(t, err)
}

func TestVerifyAccessTokenRejectsGarbage(t *testing.T) {
	a := newTestAuthenticator(t)
	_, err := a.VerifyAccessToken(context.Background(), "not.a.token")
	require.Error(t, err)
}

func TestGenerateTokenRequiresSecret(t *testing.T) {
	a, err := New(&config.Config{})
	require.NoError(t, err)

	_, err = a.GenerateToken(uuid.New(), "jane@example.org", "Jane", false)
	require.Error(t, err)
}

func TestOIDCDisabledWithoutIssuer(t *testing.T) {
	a := newTestAuthenticator(t)
	require.False(t, a.OIDCEnabled())

	_, err := a.VerifyProviderToken(context.Background(), "whatever")
	require.Error(t, err)
}

func TestSignedStateRoundTrip(t *testing.T) {
	a := newTestAuthenticator(t)

	now := time.Now()
	signed, err := a.GetSignedState(OAuthState{
		CSRF:      "random-csrf",
		Redirect:  "/orga/",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(10 * time.Minute).Unix(),
	})
	require.NoError(t, err)

	state, err := a.VerifySignedState(signed)
	require.NoError(t, err)
	require.Equal(t, "random-csrf", state.CSRF)
	require.Equal(t, "/orga/", state.Redirect)
}

func TestSignedStateRejectsTampering(t *testing.T) {
	a := newTestAuthenticator(t)

	signed, err := a.GetSignedState(OAuthState{
		CSRF:      "random-csrf",
		ExpiresAt: time.Now().Add(10 * time.Minute).Unix(),
	})
	require.NoError(t, err)

	tampered := "A" + signed[1:]
	_, err = a.VerifySignedState(tampered)
	require.Error(t, err)
}

func TestSignedStateRejectsExpired(t *testing.T) {
	a := newTestAuthenticator(t)

	signed, err := a.GetSignedState(OAuthState{
		CSRF:      "random-csrf",
		ExpiresAt: time.Now().Add(-time.Minute).Unix(),
	})
	require.NoError(t, err)

	_, err = a.VerifySignedState(signed)
	require.Error(t, err)
}
