package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/premiumcars/listingsheet/internal/metrics"
	"github.com/premiumcars/listingsheet/internal/model"
	"github.com/premiumcars/listingsheet/internal/repository"
)

// RecordService implements record CRUD on behalf of an authenticated caller.
type RecordService struct {
	gate    *Gate
	records RecordStore
	metrics metrics.Recorder
	now     func() time.Time
}

// NewRecordService creates a new RecordService.
func NewRecordService(gate *Gate, records RecordStore, recorder metrics.Recorder) *RecordService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &RecordService{
		gate:    gate,
		records: records,
		metrics: recorder,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// List returns the caller's records, newest first.
func (s *RecordService) List(ctx context.Context, id *model.Identity) ([]*model.Record, error) {
	user, err := s.gate.ResolveUser(ctx, id)
	if err != nil {
		return nil, err
	}

	records, err := s.records.ListRecordsByOwner(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return records, nil
}

// Create validates input and stores a new record owned by the caller.
func (s *RecordService) Create(ctx context.Context, id *model.Identity, input RecordInput) (*model.Record, error) {
	if id == nil {
		return nil, ErrUnauthenticated
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	user, err := s.gate.ResolveUser(ctx, id)
	if err != nil {
		return nil, err
	}

	input = input.normalize()
	now := s.timestamp()
	rec := &model.Record{
		ID:          ulid.Make().String(),
		Title:       input.Title,
		Description: input.Description,
		Content:     input.Content,
		OwnerID:     user.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.records.CreateRecord(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("create record: %w", err)
	}

	s.metrics.IncRecordCreated()
	return rec, nil
}

// Get returns record recordID if the caller owns it.
func (s *RecordService) Get(ctx context.Context, id *model.Identity, recordID string) (*model.Record, error) {
	_, rec, err := s.gate.Authorize(ctx, id, recordID)
	return rec, err
}

// Update overwrites title, description and content of a record the caller owns.
func (s *RecordService) Update(ctx context.Context, id *model.Identity, recordID string, input RecordInput) (*model.Record, error) {
	if id == nil {
		return nil, ErrUnauthenticated
	}
	if err := input.Validate(); err != nil {
		return nil, err
	}

	_, rec, err := s.gate.Authorize(ctx, id, recordID)
	if err != nil {
		return nil, err
	}

	input = input.normalize()
	rec.Title = input.Title
	rec.Description = input.Description
	rec.Content = input.Content
	rec.UpdatedAt = s.timestamp()

	if err := s.records.UpdateRecord(ctx, rec); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("update record: %w", err)
	}

	s.metrics.IncRecordUpdated()
	return rec, nil
}

// Delete permanently removes a record the caller owns.
func (s *RecordService) Delete(ctx context.Context, id *model.Identity, recordID string) error {
	user, rec, err := s.gate.Authorize(ctx, id, recordID)
	if err != nil {
		return err
	}

	if err := s.records.DeleteRecord(ctx, rec.ID, user.ID); err != nil {
		if errors.Is(err, repository.ErrRecordNotFound) {
			return ErrRecordNotFound
		}
		return fmt.Errorf("delete record: %w", err)
	}

	s.metrics.IncRecordDeleted()
	return nil
}

// timestamp is the current time at the precision Postgres stores.
func (s *RecordService) timestamp() time.Time {
	return s.now().Truncate(time.Microsecond)
}
