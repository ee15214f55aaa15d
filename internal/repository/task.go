package repository

import (
	"context"

	"task-tracker/internal/domain"
	"task-tracker/internal/query"
)

// TaskRepository exposes owner-scoped persistence operations for tasks.
// FindOne, Update and Delete take the owner id alongside the task id and
// return domain.ErrNotFound when no row matches both; delete-by-id alone is
// deliberately not part of the interface.
type TaskRepository interface {
	Init(ctx context.Context) error
	Insert(ctx context.Context, task *domain.Task) error
	FindOne(ctx context.Context, id, ownerID string) (*domain.Task, error)
	Find(ctx context.Context, spec query.Spec) ([]domain.Task, error)
	Count(ctx context.Context, spec query.Spec) (int64, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, id, ownerID string) error
}
