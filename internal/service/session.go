package service

import (
	"context"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/premiumcars/listingsheet/internal/auth"
	"github.com/premiumcars/listingsheet/internal/metrics"
	"github.com/premiumcars/listingsheet/internal/model"
)

// SessionStore persists sessions keyed by token hash.
type SessionStore interface {
	GetSession(ctx context.Context, tokenHash string) (*model.Session, error)
	SetSession(ctx context.Context, tokenHash string, sess *model.Session) error
	DeleteSession(ctx context.Context, tokenHash string) error
}

// TokenVerifier validates identity tokens issued by the external provider.
type TokenVerifier interface {
	Verify(token string) (*auth.ProviderClaims, error)
}

// SignIn is the result of a successful session exchange.
type SignIn struct {
	Token   string
	User    *model.User
	Session *model.Session
}

// SessionService exchanges provider tokens for server-side sessions.
type SessionService struct {
	users    UserStore
	sessions SessionStore
	verifier TokenVerifier
	ttl      time.Duration
	metrics  metrics.Recorder
	now      func() time.Time
}

// NewSessionService creates a new SessionService.
func NewSessionService(users UserStore, sessions SessionStore, verifier TokenVerifier, ttl time.Duration, recorder metrics.Recorder) *SessionService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &SessionService{
		users:    users,
		sessions: sessions,
		verifier: verifier,
		ttl:      ttl,
		metrics:  recorder,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// SignIn verifies a provider token, provisions the user on first sign-in
// and opens a session.
func (s *SessionService) SignIn(ctx context.Context, providerToken string) (*SignIn, error) {
	claims, err := s.VerifyIdentity(providerToken)
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetOrCreateUser(ctx, &model.User{
		ID:        ulid.Make().String(),
		Email:     claims.Email,
		CreatedAt: s.now(),
	})
	if err != nil {
		return nil, fmt.Errorf("provision user: %w", err)
	}

	token, err := auth.GenerateSessionToken()
	if err != nil {
		return nil, err
	}

	now := s.now()
	sess := &model.Session{
		UserID:    user.ID,
		Email:     user.Email,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.SetSession(ctx, auth.HashToken(token), sess); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}

	s.metrics.IncSessionCreated()
	return &SignIn{Token: token, User: user, Session: sess}, nil
}

// VerifyIdentity validates a provider token without touching any store.
func (s *SessionService) VerifyIdentity(providerToken string) (*auth.ProviderClaims, error) {
	if providerToken == "" {
		return nil, ErrInvalidToken
	}
	claims, err := s.verifier.Verify(providerToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	return claims, nil
}

// Authenticate returns the identity behind a session token.
// Unknown, malformed and expired tokens are ErrUnauthenticated.
func (s *SessionService) Authenticate(ctx context.Context, token string) (*model.Identity, error) {
	if !auth.ValidateTokenFormat(token) {
		return nil, ErrUnauthenticated
	}

	sess, err := s.sessions.GetSession(ctx, auth.HashToken(token))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	if sess == nil || sess.IsExpired(s.now()) {
		return nil, ErrUnauthenticated
	}

	return &model.Identity{UserID: sess.UserID, Email: sess.Email}, nil
}

// SignOut ends the session behind token. Unknown tokens are not an error.
func (s *SessionService) SignOut(ctx context.Context, token string) error {
	if !auth.ValidateTokenFormat(token) {
		return nil
	}
	if err := s.sessions.DeleteSession(ctx, auth.HashToken(token)); err != nil {
		return fmt.Errorf("%w: %v", ErrSessionUnavailable, err)
	}
	s.metrics.IncSessionRevoked()
	return nil
}
