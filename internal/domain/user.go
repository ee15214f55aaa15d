package domain

import "time"

// User represents a registered account. PasswordHash is only ever read
// internally during login and must never appear in a response body.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
