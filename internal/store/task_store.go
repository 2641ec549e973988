package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/averline/taskwire/internal/models"
)

// TaskStore handles all task-related database operations. Read paths
// join the owning project so tasks carry their project's name.
type TaskStore struct {
	db *sql.DB
}

const taskColumns = `t.id, t.title, t.description, t.status, t.priority, t.due_date,
	t.project_id, t.user_id, t.created_at, t.updated_at, p.name`

// CreateTask inserts a new task.
func (s *TaskStore) CreateTask(ctx context.Context, t *models.Task) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tasks (id, title, description, status, priority, due_date, project_id, user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.DueDate,
		t.ProjectID, t.UserID, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	return nil
}

// GetTaskByID retrieves a task with its project summary attached.
func (s *TaskStore) GetTaskByID(ctx context.Context, id string) (*models.Task, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks t JOIN projects p ON p.id = t.project_id WHERE t.id = ?`,
		id,
	)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get task %s: %w", id, err)
	}
	return t, nil
}

// ListTasks retrieves tasks matching the filter, newest first.
func (s *TaskStore) ListTasks(ctx context.Context, f TaskFilter) ([]*models.Task, error) {
	where, args := buildTaskWhere(f)
	query := `SELECT ` + taskColumns + ` FROM tasks t JOIN projects p ON p.id = t.project_id` +
		where + ` ORDER BY t.created_at DESC, t.id DESC`
	if f.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var tasks []*models.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// CountTasks counts tasks matching the filter.
func (s *TaskStore) CountTasks(ctx context.Context, f TaskFilter) (int, error) {
	where, args := buildTaskWhere(f)
	var count int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM tasks t`+where, args...,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count tasks: %w", err)
	}
	return count, nil
}

// UpdateTask replaces the mutable fields of a task.
func (s *TaskStore) UpdateTask(ctx context.Context, t *models.Task) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE tasks SET title = ?, description = ?, status = ?, priority = ?, due_date = ?, updated_at = ?
		 WHERE id = ?`,
		t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.UpdatedAt, t.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task %s: %w", t.ID, err)
	}
	return requireRow(res)
}

// DeleteTask removes a task. Its comments are left in place.
func (s *TaskStore) DeleteTask(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task %s: %w", id, err)
	}
	return requireRow(res)
}

// buildTaskWhere assembles the WHERE clause for a filter. Columns are
// qualified with the "t" alias so the clause works in joined queries.
func buildTaskWhere(f TaskFilter) (string, []any) {
	var conds []string
	var args []any

	if f.UserID != "" {
		conds = append(conds, "t.user_id = ?")
		args = append(args, f.UserID)
	}
	if f.ProjectID != "" {
		conds = append(conds, "t.project_id = ?")
		args = append(args, f.ProjectID)
	}
	if f.Status != "" {
		conds = append(conds, "t.status = ?")
		args = append(args, f.Status)
	}
	if f.NotStatus != "" {
		conds = append(conds, "t.status != ?")
		args = append(args, f.NotStatus)
	}
	if f.Priority != "" {
		conds = append(conds, "t.priority = ?")
		args = append(args, f.Priority)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	t := &models.Task{}
	var projectName string
	var due sql.NullTime
	err := row.Scan(&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &due,
		&t.ProjectID, &t.UserID, &t.CreatedAt, &t.UpdatedAt, &projectName)
	if err != nil {
		return nil, err
	}
	if due.Valid {
		t.DueDate = &due.Time
	}
	t.Project = &models.ProjectRef{ID: t.ProjectID, Name: projectName}
	return t, nil
}
