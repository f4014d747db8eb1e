package model

import "time"

// Record is a stored listing sheet owned by exactly one user.
type Record struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Content     Content   `json:"content"`
	OwnerID     string    `json:"ownerId"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// IsOwnedBy reports whether userID owns the record.
func (r *Record) IsOwnedBy(userID string) bool {
	return r.OwnerID != "" && r.OwnerID == userID
}

// DisplayDescription returns the record description, falling back to the
// description captured in the content.
func (r *Record) DisplayDescription() string {
	if r.Description != nil && *r.Description != "" {
		return *r.Description
	}
	return r.Content.Description
}

// Content is the structured payload of a listing sheet.
type Content struct {
	Title        string     `json:"title,omitempty"`
	Description  string     `json:"description,omitempty"`
	Price        string     `json:"price"`
	Color        string     `json:"color"`
	FuelType     string     `json:"fuelType"`
	Transmission string     `json:"transmission"`
	Images       []string   `json:"images"`
	CreatedAt    *time.Time `json:"createdAt,omitempty"`
}

// Normalize returns a copy of c whose image list is never nil.
func (c Content) Normalize() Content {
	images := make([]string, len(c.Images))
	copy(images, c.Images)
	c.Images = images
	return c
}

// Draft is the body of a create or update request.
type Draft struct {
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Content     Content `json:"content"`
}
