//go:build integration

package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/premiumcars/listingsheet/internal/model"
	"github.com/premiumcars/listingsheet/internal/testutil"
)

func TestIntegrationRecord_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)
	owner := createTestUser(t, ctx, repo)

	rec := testutil.NewTestRecord(t, owner.ID)
	if err := repo.CreateRecord(ctx, rec); err != nil {
		t.Fatalf("create record: %v", err)
	}

	got, err := repo.GetRecordByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}

	if got.Title != rec.Title || got.OwnerID != owner.ID {
		t.Errorf("unexpected record: %+v", got)
	}
	if got.Description == nil || *got.Description != *rec.Description {
		t.Errorf("description mismatch: %v", got.Description)
	}
	if got.Content.Price != rec.Content.Price || got.Content.FuelType != rec.Content.FuelType {
		t.Errorf("content mismatch: %+v", got.Content)
	}
	if len(got.Content.Images) != 1 || got.Content.Images[0] != rec.Content.Images[0] {
		t.Errorf("images mismatch: %v", got.Content.Images)
	}
}

func TestIntegrationRecord_CreateWithoutOwner(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	rec := testutil.NewTestRecord(t, "missing-owner")
	if err := repo.CreateRecord(ctx, rec); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestIntegrationRecord_GetMissing(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	if _, err := repo.GetRecordByID(ctx, "does-not-exist"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestIntegrationRecord_ListByOwnerNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)
	owner := createTestUser(t, ctx, repo)
	other := createTestUser(t, ctx, repo)

	base := time.Now().UTC().Truncate(time.Microsecond)
	var ids []string
	for i := 0; i < 3; i++ {
		rec := testutil.NewTestRecord(t, owner.ID)
		rec.CreatedAt = base.Add(time.Duration(i) * time.Minute)
		rec.UpdatedAt = rec.CreatedAt
		if err := repo.CreateRecord(ctx, rec); err != nil {
			t.Fatalf("create record %d: %v", i, err)
		}
		ids = append(ids, rec.ID)
	}
	if err := repo.CreateRecord(ctx, testutil.NewTestRecord(t, other.ID)); err != nil {
		t.Fatalf("create other record: %v", err)
	}

	list, err := repo.ListRecordsByOwner(ctx, owner.ID)
	if err != nil {
		t.Fatalf("list records: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 records, got %d", len(list))
	}
	for i, rec := range list {
		if want := ids[len(ids)-1-i]; rec.ID != want {
			t.Errorf("position %d: got %s, want %s", i, rec.ID, want)
		}
	}

	empty, err := repo.ListRecordsByOwner(ctx, "nobody")
	if err != nil {
		t.Fatalf("list for unknown owner: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("expected empty non-nil slice, got %v", empty)
	}
}

func TestIntegrationRecord_UpdateOverwrites(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)
	owner := createTestUser(t, ctx, repo)

	rec := testutil.NewTestRecord(t, owner.ID)
	if err := repo.CreateRecord(ctx, rec); err != nil {
		t.Fatalf("create record: %v", err)
	}
	created := rec.CreatedAt

	rec.Title = "Volkswagen Golf"
	rec.Description = nil
	rec.Content = model.Content{Price: "12500", Color: "Blauw"}
	rec.UpdatedAt = created.Add(time.Hour)
	if err := repo.UpdateRecord(ctx, rec); err != nil {
		t.Fatalf("update record: %v", err)
	}

	got, err := repo.GetRecordByID(ctx, rec.ID)
	if err != nil {
		t.Fatalf("get record: %v", err)
	}
	if got.Title != "Volkswagen Golf" || got.Description != nil {
		t.Errorf("fields not overwritten: %+v", got)
	}
	if got.Content.Color != "Blauw" || len(got.Content.Images) != 0 {
		t.Errorf("content not overwritten: %+v", got.Content)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("created_at changed: %v -> %v", created, got.CreatedAt)
	}
	if !got.UpdatedAt.After(created) {
		t.Errorf("updated_at not bumped: %v", got.UpdatedAt)
	}
}

func TestIntegrationRecord_UpdateAndDeleteRequireOwner(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)
	owner := createTestUser(t, ctx, repo)

	rec := testutil.NewTestRecord(t, owner.ID)
	if err := repo.CreateRecord(ctx, rec); err != nil {
		t.Fatalf("create record: %v", err)
	}

	foreign := *rec
	foreign.OwnerID = "someone-else"
	if err := repo.UpdateRecord(ctx, &foreign); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("update by non-owner: expected ErrRecordNotFound, got %v", err)
	}
	if err := repo.DeleteRecord(ctx, rec.ID, "someone-else"); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("delete by non-owner: expected ErrRecordNotFound, got %v", err)
	}

	if err := repo.DeleteRecord(ctx, rec.ID, owner.ID); err != nil {
		t.Fatalf("delete record: %v", err)
	}
	if _, err := repo.GetRecordByID(ctx, rec.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("expected record to be gone, got %v", err)
	}
	if err := repo.DeleteRecord(ctx, rec.ID, owner.ID); !errors.Is(err, ErrRecordNotFound) {
		t.Errorf("second delete: expected ErrRecordNotFound, got %v", err)
	}
}

func TestIntegrationUser_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t, ctx)

	user := testutil.NewTestUser(t)
	first, err := repo.GetOrCreateUser(ctx, user)
	if err != nil {
		t.Fatalf("get or create: %v", err)
	}

	again := testutil.NewTestUser(t)
	again.Email = "  " + user.Email + " "
	second, err := repo.GetOrCreateUser(ctx, again)
	if err != nil {
		t.Fatalf("second get or create: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected existing user %s, got %s", first.ID, second.ID)
	}

	if err := repo.CreateUser(ctx, testutil.NewTestUser(t)); err != nil {
		t.Fatalf("create distinct user: %v", err)
	}
	dup := testutil.NewTestUser(t)
	dup.Email = user.Email
	if err := repo.CreateUser(ctx, dup); !errors.Is(err, ErrEmailExists) {
		t.Errorf("expected ErrEmailExists, got %v", err)
	}

	if _, err := repo.GetUserByID(ctx, "missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func newTestRepository(t *testing.T, ctx context.Context) *Repository {
	t.Helper()

	dbURL := testutil.RequireEnv(t, "DATABASE_URL")
	repo, err := New(ctx, dbURL)
	if err != nil {
		t.Fatalf("create repository: %v", err)
	}
	t.Cleanup(repo.Close)

	unlock, err := testutil.AcquireDBLock(ctx, repo.Pool())
	if err != nil {
		t.Fatalf("acquire db lock: %v", err)
	}
	t.Cleanup(func() {
		_ = unlock()
	})

	if err := testutil.ResetSchema(ctx, repo.Pool()); err != nil {
		t.Fatalf("reset schema: %v", err)
	}

	return repo
}

func createTestUser(t *testing.T, ctx context.Context, repo *Repository) *model.User {
	t.Helper()
	user := testutil.NewTestUser(t)
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}
