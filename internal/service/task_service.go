package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"task-tracker/internal/domain"
	"task-tracker/internal/query"
	"task-tracker/internal/repository"
)

// TaskInput carries the mutable task fields. The owner is never part of the
// input; it always comes from the authenticated identity.
type TaskInput struct {
	Title       string
	Description string
	Status      domain.TaskStatus
	DueDate     *time.Time
}

// TaskPage is one page of list results plus its pagination metadata.
type TaskPage struct {
	Tasks       []domain.Task
	CurrentPage int
	TotalPages  int64
	TotalTasks  int64
}

// TaskService coordinates owner-scoped task operations.
type TaskService interface {
	Create(ctx context.Context, ownerID string, input TaskInput) (*domain.Task, error)
	Get(ctx context.Context, ownerID, id string) (*domain.Task, error)
	List(ctx context.Context, ownerID string, params query.Params) (*TaskPage, error)
	Update(ctx context.Context, ownerID, id string, input TaskInput) (*domain.Task, error)
	Delete(ctx context.Context, ownerID, id string) error
	Snapshot(ctx context.Context, ownerID string) ([]domain.Task, error)
}

type taskService struct {
	tasks repository.TaskRepository
}

func NewTaskService(tasks repository.TaskRepository) TaskService {
	return &taskService{tasks: tasks}
}

func (s *taskService) Create(ctx context.Context, ownerID string, input TaskInput) (*domain.Task, error) {
	if ownerID == "" {
		return nil, errors.New("owner id is required")
	}
	if !domain.ValidTaskStatus(input.Status) {
		return nil, errors.New("invalid task status")
	}

	task := &domain.Task{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		DueDate:     input.DueDate,
		OwnerID:     ownerID,
	}

	if err := s.tasks.Insert(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Get(ctx context.Context, ownerID, id string) (*domain.Task, error) {
	return s.tasks.FindOne(ctx, id, ownerID)
}

func (s *taskService) List(ctx context.Context, ownerID string, params query.Params) (*TaskPage, error) {
	spec, err := query.Build(ownerID, params)
	if err != nil {
		return nil, err
	}

	tasks, err := s.tasks.Find(ctx, spec)
	if err != nil {
		return nil, err
	}
	total, err := s.tasks.Count(ctx, spec)
	if err != nil {
		return nil, err
	}

	return &TaskPage{
		Tasks:       tasks,
		CurrentPage: spec.Page,
		TotalPages:  spec.TotalPages(total),
		TotalTasks:  total,
	}, nil
}

// Update rewrites the mutable fields of an owned task. The owner reference
// is used only to scope the write; it cannot be changed.
func (s *taskService) Update(ctx context.Context, ownerID, id string, input TaskInput) (*domain.Task, error) {
	if !domain.ValidTaskStatus(input.Status) {
		return nil, errors.New("invalid task status")
	}

	task, err := s.tasks.FindOne(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	task.Title = input.Title
	task.Description = input.Description
	task.Status = input.Status
	task.DueDate = input.DueDate

	if err := s.tasks.Update(ctx, task); err != nil {
		return nil, err
	}
	return task, nil
}

func (s *taskService) Delete(ctx context.Context, ownerID, id string) error {
	return s.tasks.Delete(ctx, id, ownerID)
}

// Snapshot returns every task the owner has, due date ascending, for export.
func (s *taskService) Snapshot(ctx context.Context, ownerID string) ([]domain.Task, error) {
	return s.tasks.Find(ctx, query.Spec{
		OwnerID: ownerID,
		Sort:    query.SortDueDate,
	})
}
