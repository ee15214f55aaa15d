package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/query"
)

type fakeTaskRepo struct {
	tasks map[string]*domain.Task

	lastSpec query.Spec
	found    []domain.Task
	total    int64
}

func newFakeTaskRepo() *fakeTaskRepo {
	return &fakeTaskRepo{tasks: map[string]*domain.Task{}}
}

func (r *fakeTaskRepo) Init(ctx context.Context) error { return nil }

func (r *fakeTaskRepo) Insert(ctx context.Context, task *domain.Task) error {
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) FindOne(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	task, ok := r.tasks[id]
	if !ok || task.OwnerID != ownerID {
		return nil, fmt.Errorf("task: %w", domain.ErrNotFound)
	}
	copied := *task
	return &copied, nil
}

func (r *fakeTaskRepo) Find(ctx context.Context, spec query.Spec) ([]domain.Task, error) {
	r.lastSpec = spec
	return r.found, nil
}

func (r *fakeTaskRepo) Count(ctx context.Context, spec query.Spec) (int64, error) {
	return r.total, nil
}

func (r *fakeTaskRepo) Update(ctx context.Context, task *domain.Task) error {
	existing, ok := r.tasks[task.ID]
	if !ok || existing.OwnerID != task.OwnerID {
		return fmt.Errorf("task: %w", domain.ErrNotFound)
	}
	copied := *task
	r.tasks[task.ID] = &copied
	return nil
}

func (r *fakeTaskRepo) Delete(ctx context.Context, id, ownerID string) error {
	existing, ok := r.tasks[id]
	if !ok || existing.OwnerID != ownerID {
		return fmt.Errorf("task: %w", domain.ErrNotFound)
	}
	delete(r.tasks, id)
	return nil
}

func TestCreateBindsOwnerFromIdentity(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := NewTaskService(repo)

	due := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	task, err := svc.Create(context.Background(), "owner-a", TaskInput{
		Title:   "Test Task",
		Status:  domain.TaskStatusPending,
		DueDate: &due,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID == "" {
		t.Fatal("expected an assigned id")
	}
	if task.OwnerID != "owner-a" {
		t.Fatalf("owner must come from the authenticated identity, got %q", task.OwnerID)
	}
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc := NewTaskService(newFakeTaskRepo())
	ctx := context.Background()

	if _, err := svc.Create(ctx, "", TaskInput{Title: "x", Status: domain.TaskStatusPending}); err == nil {
		t.Fatal("expected error for missing owner")
	}
	if _, err := svc.Create(ctx, "owner-a", TaskInput{Title: "x", Status: "Pending"}); err == nil {
		t.Fatal("expected error for case-variant status")
	}
	if _, err := svc.Create(ctx, "owner-a", TaskInput{Title: "x", Status: "done"}); err == nil {
		t.Fatal("expected error for unknown status")
	}
}

func TestGetIsOwnerScoped(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := NewTaskService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-b", TaskInput{Title: "B's", Status: domain.TaskStatusPending})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Get(ctx, "owner-a", created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign task, got %v", err)
	}
	if _, err := svc.Get(ctx, "owner-b", created.ID); err != nil {
		t.Fatalf("owner get: %v", err)
	}
}

func TestUpdateCannotChangeOwner(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := NewTaskService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-a", TaskInput{Title: "before", Status: domain.TaskStatusPending})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	updated, err := svc.Update(ctx, "owner-a", created.ID, TaskInput{
		Title:  "after",
		Status: domain.TaskStatusCompleted,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.OwnerID != "owner-a" {
		t.Fatalf("owner changed to %q", updated.OwnerID)
	}
	if updated.Title != "after" || updated.Status != domain.TaskStatusCompleted {
		t.Fatalf("update not applied: %+v", updated)
	}

	if _, err := svc.Update(ctx, "owner-b", created.ID, TaskInput{Title: "hijack", Status: domain.TaskStatusPending}); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign update, got %v", err)
	}
}

func TestDeleteIsOwnerScoped(t *testing.T) {
	repo := newFakeTaskRepo()
	svc := NewTaskService(repo)
	ctx := context.Background()

	created, err := svc.Create(ctx, "owner-a", TaskInput{Title: "doomed", Status: domain.TaskStatusPending})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(ctx, "owner-b", created.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign delete, got %v", err)
	}
	if err := svc.Delete(ctx, "owner-a", created.ID); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
}

func TestListComposesPageMetadata(t *testing.T) {
	repo := newFakeTaskRepo()
	repo.found = []domain.Task{{ID: "t1"}, {ID: "t2"}}
	repo.total = 15
	svc := NewTaskService(repo)

	page, err := svc.List(context.Background(), "owner-a", query.Params{Limit: "10", Page: "2"})
	if err != nil {
		t.Fatalf("list: %v", err)
	}

	if page.CurrentPage != 2 || page.TotalTasks != 15 || page.TotalPages != 2 {
		t.Fatalf("unexpected metadata: %+v", page)
	}
	if repo.lastSpec.OwnerID != "owner-a" {
		t.Fatalf("list must scope to the owner, got %q", repo.lastSpec.OwnerID)
	}
	if repo.lastSpec.Offset != 10 {
		t.Fatalf("expected offset 10, got %d", repo.lastSpec.Offset)
	}
}

func TestListRejectsBadDateParams(t *testing.T) {
	svc := NewTaskService(newFakeTaskRepo())

	_, err := svc.List(context.Background(), "owner-a", query.Params{StartDate: "soon"})
	var perr *query.ParamError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParamError, got %v", err)
	}
}

func TestSnapshotIsUnpaginated(t *testing.T) {
	repo := newFakeTaskRepo()
	repo.found = []domain.Task{{ID: "t1"}, {ID: "t2"}, {ID: "t3"}}
	svc := NewTaskService(repo)

	tasks, err := svc.Snapshot(context.Background(), "owner-a")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if len(tasks) != 3 {
		t.Fatalf("expected all tasks, got %d", len(tasks))
	}
	if repo.lastSpec.Limit != 0 || repo.lastSpec.OwnerID != "owner-a" {
		t.Fatalf("expected owner-scoped unpaginated spec, got %+v", repo.lastSpec)
	}
}
