package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/premiumcars/listingsheet/internal/auth"
	"github.com/premiumcars/listingsheet/internal/model"
	"github.com/premiumcars/listingsheet/internal/service"
)

// Authenticator resolves callers from session tokens and provider tokens.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*model.Identity, error)
	VerifyIdentity(providerToken string) (*auth.ProviderClaims, error)
}

// SessionConfig holds configuration for the session middleware.
type SessionConfig struct {
	Logger   *slog.Logger
	Sessions Authenticator
	Cookies  auth.CookieConfig
}

// RequireSession rejects requests without a valid session cookie or provider
// bearer token. The caller identity is stored in the request context.
func RequireSession(cfg SessionConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			id, reason, err := identify(cfg, r)
			if err != nil {
				if errors.Is(err, service.ErrSessionUnavailable) {
					cfg.Logger.Error("session lookup failed",
						slog.String("error", err.Error()),
						slog.String("request_id", GetRequestID(ctx)),
					)
					writeError(w, http.StatusServiceUnavailable, "SESSION_UNAVAILABLE", "Service unavailable")
					return
				}

				cfg.Logger.Warn("authentication failed",
					slog.String("reason", reason),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.String("request_id", GetRequestID(ctx)),
				)
				writeError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "Unauthorized")
				return
			}

			ctx = auth.ContextWithIdentity(ctx, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// identify tries the bearer header first, then the cookie. The returned
// reason is only meaningful when err is not nil.
func identify(cfg SessionConfig, r *http.Request) (*model.Identity, string, error) {
	if bearer, ok := bearerToken(r); ok {
		claims, err := cfg.Sessions.VerifyIdentity(bearer)
		if err != nil {
			return nil, "invalid_bearer", err
		}
		return &model.Identity{Email: claims.Email}, "", nil
	}

	token := cfg.Cookies.SessionTokenFromRequest(r)
	if token == "" {
		return nil, "missing_credentials", service.ErrUnauthenticated
	}

	id, err := cfg.Sessions.Authenticate(r.Context(), token)
	if err != nil {
		return nil, "invalid_session", err
	}
	return id, "", nil
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", true
	}
	return strings.TrimSpace(token), true
}
