// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/premiumcars/listingsheet/internal/model"
)

// ErrorResponse is the body of every error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse acknowledges an operation without a body.
type SuccessResponse struct {
	Success bool `json:"success"`
}

// RecordResponse is a record in API responses.
type RecordResponse struct {
	ID          string        `json:"id"`
	Title       string        `json:"title"`
	Description *string       `json:"description"`
	Content     model.Content `json:"content"`
	OwnerID     string        `json:"ownerId"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// ToRecordResponse converts a record. Images are never null.
func ToRecordResponse(rec *model.Record) RecordResponse {
	return RecordResponse{
		ID:          rec.ID,
		Title:       rec.Title,
		Description: rec.Description,
		Content:     rec.Content.Normalize(),
		OwnerID:     rec.OwnerID,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
}

// ToRecordList converts records. An empty result is [], not null.
func ToRecordList(records []*model.Record) []RecordResponse {
	out := make([]RecordResponse, 0, len(records))
	for _, rec := range records {
		out = append(out, ToRecordResponse(rec))
	}
	return out
}

// SessionRequest exchanges a provider token for a session.
type SessionRequest struct {
	Token string `json:"token"`
}

// UserResponse is a user in API responses.
type UserResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// ToUserResponse converts a user.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{ID: u.ID, Email: u.Email, CreatedAt: u.CreatedAt}
}

// SessionResponse describes the current session.
type SessionResponse struct {
	User      UserResponse `json:"user"`
	ExpiresAt *time.Time   `json:"expiresAt,omitempty"`
}

// ArchiveResponse points at an archived export.
type ArchiveResponse struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}
