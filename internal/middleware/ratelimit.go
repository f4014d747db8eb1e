package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/premiumcars/listingsheet/internal/auth"
	"github.com/premiumcars/listingsheet/internal/cache"
	"github.com/premiumcars/listingsheet/internal/model"
)

// Limiter checks token buckets.
type Limiter interface {
	CheckUserRateLimit(ctx context.Context, userID string, limit model.RateLimit) (*cache.RateLimitResult, error)
	CheckIPRateLimit(ctx context.Context, ip string, limit model.RateLimit) (*cache.RateLimitResult, error)
}

// RateLimitConfig holds configuration for rate limiting middleware.
type RateLimitConfig struct {
	Logger  *slog.Logger
	Limiter Limiter
	Enabled bool
	Limit   model.RateLimit
}

// RateLimitUser limits requests per signed-in user. It must run after
// RequireSession.
func RateLimitUser(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return rateLimit(cfg, "user", func(r *http.Request) string {
		id := auth.IdentityFromContext(r.Context())
		switch {
		case id == nil:
			return ""
		case id.UserID != "":
			return id.UserID
		default:
			return "email:" + strings.ToLower(id.Email)
		}
	}, func(ctx context.Context, subject string, limit model.RateLimit) (*cache.RateLimitResult, error) {
		return cfg.Limiter.CheckUserRateLimit(ctx, subject, limit)
	})
}

// RateLimitIP limits requests per client address. Used for sign-in.
func RateLimitIP(cfg RateLimitConfig) func(http.Handler) http.Handler {
	return rateLimit(cfg, "ip", clientIP, func(ctx context.Context, subject string, limit model.RateLimit) (*cache.RateLimitResult, error) {
		return cfg.Limiter.CheckIPRateLimit(ctx, subject, limit)
	})
}

type checkFunc func(ctx context.Context, subject string, limit model.RateLimit) (*cache.RateLimitResult, error)

func rateLimit(cfg RateLimitConfig, kind string, subjectOf func(*http.Request) string, check checkFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !cfg.Enabled || cfg.Limiter == nil || cfg.Limit.Unlimited() {
				next.ServeHTTP(w, r)
				return
			}
			subject := subjectOf(r)
			if subject == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := check(r.Context(), subject, cfg.Limit)
			if err != nil {
				// Fail open.
				cfg.Logger.Error("rate limit check failed",
					slog.String("type", kind),
					slog.String("error", err.Error()),
				)
				next.ServeHTTP(w, r)
				return
			}

			setRateLimitHeaders(w, cfg.Limit.RequestsPerMinute, result.Remaining, result.ResetAt)

			if !result.Allowed {
				retryAfter := retrySeconds(result.RetryAfter)
				cfg.Logger.Warn("rate limit exceeded",
					slog.String("type", kind),
					slog.String("endpoint", r.Method+" "+r.URL.Path),
					slog.Int("retry_after_seconds", retryAfter),
					slog.String("request_id", GetRequestID(r.Context())),
				)

				w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
				writeError(w, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func setRateLimitHeaders(w http.ResponseWriter, limit int, remaining int64, resetAt time.Time) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))
}

func retrySeconds(d time.Duration) int {
	s := int((d + time.Second - 1) / time.Second)
	if s < 1 {
		return 1
	}
	return s
}

// clientIP prefers the first X-Forwarded-For hop, then X-Real-IP, then the
// peer address without its port.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
