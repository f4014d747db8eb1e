// Package testutil holds helpers shared by integration tests.
package testutil

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/premiumcars/listingsheet/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 731731

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema applies every down migration in reverse order, then every up
// migration in order, leaving empty tables behind.
func ResetSchema(ctx context.Context, pool *pgxpool.Pool) error {
	ups, downs, err := migrationFiles()
	if err != nil {
		return err
	}

	for i := len(downs) - 1; i >= 0; i-- {
		if err := execFile(ctx, pool, downs[i]); err != nil {
			return err
		}
	}
	for _, path := range ups {
		if err := execFile(ctx, pool, path); err != nil {
			return err
		}
	}

	return nil
}

func migrationFiles() (ups, downs []string, err error) {
	root, err := ProjectRoot()
	if err != nil {
		return nil, nil, err
	}

	entries, err := os.ReadDir(filepath.Join(root, "migrations"))
	if err != nil {
		return nil, nil, fmt.Errorf("read migrations dir: %w", err)
	}

	for _, e := range entries {
		path := filepath.Join(root, "migrations", e.Name())
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups = append(ups, path)
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs = append(downs, path)
		}
	}
	sort.Strings(ups)
	sort.Strings(downs)

	return ups, downs, nil
}

func execFile(ctx context.Context, pool *pgxpool.Pool, path string) error {
	sql, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", filepath.Base(path), err)
	}
	if _, err := pool.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("apply migration %s: %w", filepath.Base(path), err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ProjectRoot returns the project root directory.
func ProjectRoot() (string, error) {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "", fmt.Errorf("failed to resolve testutil path")
	}
	root := filepath.Clean(filepath.Join(filepath.Dir(filename), "..", ".."))
	return root, nil
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a user with a unique fake email.
func NewTestUser(t testing.TB) *model.User {
	t.Helper()
	return &model.User{
		ID:        ulid.Make().String(),
		Email:     strings.ToLower(fmt.Sprintf("%d.%s", time.Now().UnixNano(), gofakeit.Email())),
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestRecord creates a record owned by ownerID with fake vehicle content.
func NewTestRecord(t testing.TB, ownerID string) *model.Record {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	desc := gofakeit.Phrase()
	title := gofakeit.CarMaker() + " " + gofakeit.CarModel()

	return &model.Record{
		ID:          ulid.Make().String(),
		Title:       title,
		Description: &desc,
		OwnerID:     ownerID,
		Content: model.Content{
			Title:        title,
			Description:  desc,
			Price:        fmt.Sprintf("%d", gofakeit.IntRange(5000, 90000)),
			Color:        gofakeit.Color(),
			FuelType:     gofakeit.CarFuelType(),
			Transmission: gofakeit.CarTransmissionType(),
			Images:       []string{TestImage()},
			CreatedAt:    &now,
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// TestImage returns a base64 encoded 1x1 PNG.
func TestImage() string {
	return base64.StdEncoding.EncodeToString(tinyPNG)
}

var tinyPNG = []byte{
	0x89, 0x50, 0x4e, 0x47, 0x0d, 0x0a, 0x1a, 0x0a, 0x00, 0x00, 0x00, 0x0d,
	0x49, 0x48, 0x44, 0x52, 0x00, 0x00, 0x00, 0x01, 0x00, 0x00, 0x00, 0x01,
	0x08, 0x06, 0x00, 0x00, 0x00, 0x1f, 0x15, 0xc4, 0x89, 0x00, 0x00, 0x00,
	0x0d, 0x49, 0x44, 0x41, 0x54, 0x78, 0x9c, 0x63, 0xf8, 0xcf, 0xc0, 0xf0,
	0x1f, 0x00, 0x05, 0x00, 0x01, 0xff, 0x89, 0x99, 0x3d, 0x1d, 0x00, 0x00,
	0x00, 0x00, 0x49, 0x45, 0x4e, 0x44, 0xae, 0x42, 0x60, 0x82,
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
