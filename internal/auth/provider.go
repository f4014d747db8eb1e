package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Provider token errors.
var (
	ErrInvalidProviderToken = errors.New("invalid identity token")
	ErrMissingEmail         = errors.New("identity token has no email")
)

// ProviderClaims are the claims issued by the external identity provider.
type ProviderClaims struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// ProviderVerifier validates HS256 identity tokens from the external provider.
type ProviderVerifier struct {
	secret []byte
	issuer string
	leeway time.Duration
}

// NewProviderVerifier creates a verifier. An empty issuer disables the issuer check.
func NewProviderVerifier(secret, issuer string) *ProviderVerifier {
	return &ProviderVerifier{
		secret: []byte(secret),
		issuer: issuer,
		leeway: 30 * time.Second,
	}
}

// Verify parses and validates token and returns its claims.
func (v *ProviderVerifier) Verify(token string) (*ProviderClaims, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithLeeway(v.leeway),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.ParseWithClaims(token, &ProviderClaims{}, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidProviderToken, err)
	}

	claims, ok := parsed.Claims.(*ProviderClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidProviderToken
	}

	claims.Email = strings.ToLower(strings.TrimSpace(claims.Email))
	if claims.Email == "" {
		return nil, ErrMissingEmail
	}

	return claims, nil
}

// SignProviderToken issues a provider-style token. Used by tests and local tooling.
func SignProviderToken(secret, issuer, email string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &ProviderClaims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
