package domain

import "errors"

var (
	// ErrNotFound is returned when a record does not exist for the caller.
	// A task owned by another user is reported the same way as a missing one.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a unique field (username, email) is already taken.
	ErrConflict = errors.New("already exists")
	// ErrInvalidCredentials covers both unknown usernames and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidToken covers malformed, forged and expired tokens alike.
	ErrInvalidToken = errors.New("invalid token")
)
