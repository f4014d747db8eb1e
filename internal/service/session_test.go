package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/premiumcars/listingsheet/internal/auth"
	"github.com/premiumcars/listingsheet/internal/metrics"
)

const testProviderSecret = "provider-secret"

func newSessionFixture(t *testing.T) (*SessionService, *memStore, *memSessions, *metrics.InMemoryRecorder) {
	t.Helper()
	store := newMemStore()
	sessions := newMemSessions()
	rec := metrics.NewInMemory()
	svc := NewSessionService(store, sessions, auth.NewProviderVerifier(testProviderSecret, "issuer.test"), time.Hour, rec)
	return svc, store, sessions, rec
}

func signToken(t *testing.T, secret, email string, ttl time.Duration) string {
	t.Helper()
	token, err := auth.SignProviderToken(secret, "issuer.test", email, ttl)
	require.NoError(t, err)
	return token
}

func TestSessionService_SignInProvisionsUser(t *testing.T) {
	svc, store, sessions, rec := newSessionFixture(t)
	ctx := context.Background()

	first, err := svc.SignIn(ctx, signToken(t, testProviderSecret, "Alice@Example.com", time.Minute))
	require.NoError(t, err)

	assert.True(t, auth.ValidateTokenFormat(first.Token))
	assert.Equal(t, "alice@example.com", first.User.Email)
	assert.Equal(t, first.User.ID, first.Session.UserID)
	assert.Equal(t, time.Hour, first.Session.ExpiresAt.Sub(first.Session.CreatedAt))
	assert.Contains(t, sessions.sessions, auth.HashToken(first.Token))
	assert.NotContains(t, sessions.sessions, first.Token)

	second, err := svc.SignIn(ctx, signToken(t, testProviderSecret, "alice@example.com", time.Minute))
	require.NoError(t, err)
	assert.Equal(t, first.User.ID, second.User.ID, "same email maps to the same user")
	assert.NotEqual(t, first.Token, second.Token)
	assert.Len(t, store.users, 1)
	assert.Equal(t, uint64(2), rec.Snapshot().SessionsCreated)
}

func TestSessionService_SignInRejectsBadTokens(t *testing.T) {
	svc, store, _, _ := newSessionFixture(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not-a-jwt"},
		{"wrong secret", signToken(t, "other-secret", "alice@example.com", time.Minute)},
		{"expired", signToken(t, testProviderSecret, "alice@example.com", -time.Hour)},
		{"no email", signToken(t, testProviderSecret, "", time.Minute)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignIn(ctx, tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
	assert.Empty(t, store.users)
}

func TestSessionService_Authenticate(t *testing.T) {
	svc, _, _, _ := newSessionFixture(t)
	ctx := context.Background()

	in, err := svc.SignIn(ctx, signToken(t, testProviderSecret, "alice@example.com", time.Minute))
	require.NoError(t, err)

	id, err := svc.Authenticate(ctx, in.Token)
	require.NoError(t, err)
	assert.Equal(t, in.User.ID, id.UserID)
	assert.Equal(t, "alice@example.com", id.Email)

	_, err = svc.Authenticate(ctx, "sess_nope")
	assert.ErrorIs(t, err, ErrUnauthenticated)

	unknown, err := auth.GenerateSessionToken()
	require.NoError(t, err)
	_, err = svc.Authenticate(ctx, unknown)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = svc.Authenticate(ctx, in.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated, "expired sessions are rejected")
}

func TestSessionService_StoreUnavailable(t *testing.T) {
	svc, _, sessions, _ := newSessionFixture(t)
	ctx := context.Background()
	token, err := auth.GenerateSessionToken()
	require.NoError(t, err)

	sessions.err = errors.New("redis down")

	_, err = svc.Authenticate(ctx, token)
	assert.ErrorIs(t, err, ErrSessionUnavailable)

	_, err = svc.SignIn(ctx, signToken(t, testProviderSecret, "alice@example.com", time.Minute))
	assert.ErrorIs(t, err, ErrSessionUnavailable)
}

func TestSessionService_SignOut(t *testing.T) {
	svc, _, sessions, rec := newSessionFixture(t)
	ctx := context.Background()

	in, err := svc.SignIn(ctx, signToken(t, testProviderSecret, "alice@example.com", time.Minute))
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, in.Token))
	assert.Empty(t, sessions.sessions)

	_, err = svc.Authenticate(ctx, in.Token)
	assert.ErrorIs(t, err, ErrUnauthenticated)

	require.NoError(t, svc.SignOut(ctx, "garbage"))
	assert.Equal(t, uint64(1), rec.Snapshot().SessionsRevoked)
}
