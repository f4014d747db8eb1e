// Package model defines domain entities for the application.
package model

import "time"

// User is the owner of records. Users are created on first sign-in through
// the external identity provider and are never mutated by record operations.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}
