package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/premiumcars/listingsheet/internal/metrics"
	"github.com/premiumcars/listingsheet/internal/model"
	"github.com/premiumcars/listingsheet/internal/repository"
)

// UserStore reads users.
type UserStore interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetOrCreateUser(ctx context.Context, user *model.User) (*model.User, error)
}

// RecordStore persists records.
type RecordStore interface {
	CreateRecord(ctx context.Context, rec *model.Record) error
	GetRecordByID(ctx context.Context, id string) (*model.Record, error)
	ListRecordsByOwner(ctx context.Context, ownerID string) ([]*model.Record, error)
	UpdateRecord(ctx context.Context, rec *model.Record) error
	DeleteRecord(ctx context.Context, id, ownerID string) error
}

// Gate resolves the caller to a user and checks record ownership.
// It only reads.
type Gate struct {
	users   UserStore
	records RecordStore
	metrics metrics.Recorder
}

// NewGate creates a Gate.
func NewGate(users UserStore, records RecordStore, recorder metrics.Recorder) *Gate {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Gate{users: users, records: records, metrics: recorder}
}

// ResolveUser loads the user behind an identity.
// A nil identity is ErrUnauthenticated; an identity whose user row is gone
// is ErrUserNotFound.
func (g *Gate) ResolveUser(ctx context.Context, id *model.Identity) (*model.User, error) {
	if id == nil || (id.UserID == "" && id.Email == "") {
		g.metrics.IncAccessDenied("unauthenticated")
		return nil, ErrUnauthenticated
	}

	var (
		user *model.User
		err  error
	)
	if id.UserID != "" {
		user, err = g.users.GetUserByID(ctx, id.UserID)
	} else {
		user, err = g.users.GetUserByEmail(ctx, id.Email)
	}
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			g.metrics.IncAccessDenied("user_not_found")
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("resolve user: %w", err)
	}

	return user, nil
}

// AuthorizeRecord fetches record id and verifies that user owns it.
func (g *Gate) AuthorizeRecord(ctx context.Context, user *model.User, id string) (*model.Record, error) {
	rec, err := g.records.GetRecordByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			g.metrics.IncAccessDenied("not_found")
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("load record: %w", err)
	}

	if !rec.IsOwnedBy(user.ID) {
		g.metrics.IncAccessDenied("forbidden")
		return nil, ErrForbidden
	}

	return rec, nil
}

// Authorize runs ResolveUser then AuthorizeRecord.
func (g *Gate) Authorize(ctx context.Context, id *model.Identity, recordID string) (*model.User, *model.Record, error) {
	user, err := g.ResolveUser(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rec, err := g.AuthorizeRecord(ctx, user, recordID)
	if err != nil {
		return nil, nil, err
	}
	return user, rec, nil
}
