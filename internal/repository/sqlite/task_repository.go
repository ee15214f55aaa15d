package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"task-tracker/internal/domain"
	"task-tracker/internal/query"
	"task-tracker/internal/repository"
)

const (
	createTasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
	id TEXT PRIMARY KEY,
	owner_id TEXT NOT NULL,
	title TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	due_date DATETIME NULL,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`
	createTasksOwnerIndex = `CREATE INDEX IF NOT EXISTS idx_tasks_owner ON tasks(owner_id);`
)

type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) repository.TaskRepository {
	return &TaskRepository{db: db}
}

func (r *TaskRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createTasksTable); err != nil {
		return fmt.Errorf("create tasks table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createTasksOwnerIndex); err != nil {
		return fmt.Errorf("create tasks owner index: %w", err)
	}
	return nil
}

func (r *TaskRepository) Insert(ctx context.Context, task *domain.Task) error {
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, `
INSERT INTO tasks (id, owner_id, title, description, status, due_date, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		task.ID,
		task.OwnerID,
		task.Title,
		task.Description,
		string(task.Status),
		nullTime(task.DueDate),
		task.CreatedAt,
		task.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) FindOne(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, owner_id, title, description, status, due_date, created_at, updated_at
FROM tasks
WHERE id = ? AND owner_id = ?`,
		id,
		ownerID,
	)
	return scanTask(row)
}

// Find executes the normalized list spec: filter, sort, offset/limit. A
// non-positive limit disables pagination (used by export snapshots).
func (r *TaskRepository) Find(ctx context.Context, spec query.Spec) ([]domain.Task, error) {
	where, args := buildWhere(spec)

	sortColumn := "due_date"
	if spec.Sort == query.SortStatus {
		sortColumn = "status"
	}
	direction := "ASC"
	if spec.Descending {
		direction = "DESC"
	}

	q := fmt.Sprintf(`
SELECT id, owner_id, title, description, status, due_date, created_at, updated_at
FROM tasks
WHERE %s
ORDER BY %s %s, created_at ASC`, where, sortColumn, direction)

	if spec.Limit > 0 {
		q += "\nLIMIT ? OFFSET ?"
		args = append(args, spec.Limit, spec.Offset)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

// Count returns the number of tasks matching the spec's filters, ignoring
// pagination.
func (r *TaskRepository) Count(ctx context.Context, spec query.Spec) (int64, error) {
	where, args := buildWhere(spec)
	row := r.db.QueryRowContext(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM tasks WHERE %s`, where), args...)

	var total int64
	if err := row.Scan(&total); err != nil {
		return 0, fmt.Errorf("count tasks: %w", err)
	}
	return total, nil
}

func (r *TaskRepository) Update(ctx context.Context, task *domain.Task) error {
	task.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
UPDATE tasks
SET title=?, description=?, status=?, due_date=?, updated_at=?
WHERE id=? AND owner_id=?`,
		task.Title,
		task.Description,
		string(task.Status),
		nullTime(task.DueDate),
		task.UpdatedAt,
		task.ID,
		task.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("task update rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("task: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *TaskRepository) Delete(ctx context.Context, id, ownerID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM tasks WHERE id=? AND owner_id=?`, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	aff, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("task delete rows affected: %w", err)
	}
	if aff == 0 {
		return fmt.Errorf("task: %w", domain.ErrNotFound)
	}
	return nil
}

// buildWhere composes the filter predicate. Owner scoping is always the
// first condition; everything else is added only when present in the spec.
func buildWhere(spec query.Spec) (string, []any) {
	conditions := []string{"owner_id = ?"}
	args := []any{spec.OwnerID}

	if spec.Status != "" {
		conditions = append(conditions, "status = ?")
		args = append(args, string(spec.Status))
	}
	if spec.DueFrom != nil {
		conditions = append(conditions, "due_date >= ?")
		args = append(args, spec.DueFrom.UTC())
	}
	if spec.DueTo != nil {
		conditions = append(conditions, "due_date <= ?")
		args = append(args, spec.DueTo.UTC())
	}
	if spec.Search != "" {
		conditions = append(conditions, "(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)")
		term := "%" + strings.ToLower(spec.Search) + "%"
		args = append(args, term, term)
	}

	return strings.Join(conditions, " AND "), args
}

func scanTask(scanner interface {
	Scan(dest ...any) error
}) (*domain.Task, error) {
	var (
		task    domain.Task
		status  string
		dueDate sql.NullTime
	)

	if err := scanner.Scan(
		&task.ID,
		&task.OwnerID,
		&task.Title,
		&task.Description,
		&status,
		&dueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scan task: %w", err)
	}

	task.Status = domain.TaskStatus(status)
	if dueDate.Valid {
		t := dueDate.Time.UTC()
		task.DueDate = &t
	}
	return &task, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC()
}
