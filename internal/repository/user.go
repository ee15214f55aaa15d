package repository

import (
	"context"

	"task-tracker/internal/domain"
)

// UserRepository defines persistence operations for accounts. Insert must
// return domain.ErrConflict when username or email is already taken; the
// store's unique constraints are the authority, not a pre-check read.
type UserRepository interface {
	Init(ctx context.Context) error
	Insert(ctx context.Context, user *domain.User) error
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
}
