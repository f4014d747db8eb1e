package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/premiumcars/listingsheet/internal/model"
)

// sessionPrefix is the Redis key prefix for sessions. Keys are suffixed with
// the token hash, never the raw token.
const sessionPrefix = "session:"

// ErrSessionTTL is returned when a session would be stored without a positive lifetime.
var ErrSessionTTL = errors.New("session ttl must be positive")

func sessionKey(tokenHash string) string {
	return sessionPrefix + tokenHash
}

// GetSession returns the session stored under tokenHash.
// Returns nil, nil on a miss or a corrupted entry.
func (c *Cache) GetSession(ctx context.Context, tokenHash string) (*model.Session, error) {
	data, err := c.client.Get(ctx, sessionKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, nil //nolint:nilerr
	}

	return &sess, nil
}

// SetSession stores a session until its ExpiresAt.
func (c *Cache) SetSession(ctx context.Context, tokenHash string, sess *model.Session) error {
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		return ErrSessionTTL
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := c.client.Set(ctx, sessionKey(tokenHash), data, ttl).Err(); err != nil {
		return fmt.Errorf("set session: %w", err)
	}
	return nil
}

// DeleteSession removes a session. Deleting a missing session is not an error.
func (c *Cache) DeleteSession(ctx context.Context, tokenHash string) error {
	if err := c.client.Del(ctx, sessionKey(tokenHash)).Err(); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
