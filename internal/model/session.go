package model

import "time"

// Session is a server-side sign-in held in Redis.
// The token itself is never stored; the cache key is derived from its hash.
type Session struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// IsExpired reports whether the session has passed its expiry.
func (s *Session) IsExpired(now time.Time) bool {
	return !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt)
}

// Identity is the authenticated principal attached to a request context.
// It carries the email from the identity provider; the user row is
// resolved separately so a deleted user can be told apart from a missing session.
type Identity struct {
	UserID string
	Email  string
}

// RateLimit defines token bucket parameters for a caller.
type RateLimit struct {
	RequestsPerMinute int
	Burst             int
}

// Unlimited reports whether the limit is disabled.
func (l RateLimit) Unlimited() bool {
	return l.RequestsPerMinute <= 0
}
