package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/averline/taskwire/internal/models"
)

// CommentStore handles all comment-related database operations. Read
// paths join the author so comments carry user summaries for display.
type CommentStore struct {
	db *sql.DB
}

const commentColumns = `c.id, c.task_id, c.user_id, c.content, c.created_at, u.name, u.email`

// CreateComment inserts a new comment.
func (s *CommentStore) CreateComment(ctx context.Context, c *models.Comment) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO comments (id, task_id, user_id, content, created_at) VALUES (?, ?, ?, ?, ?)`,
		c.ID, c.TaskID, c.UserID, c.Content, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// GetCommentByID retrieves a comment with its author summary attached.
func (s *CommentStore) GetCommentByID(ctx context.Context, id string) (*models.Comment, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+commentColumns+` FROM comments c JOIN users u ON u.id = c.user_id WHERE c.id = ?`,
		id,
	)
	c, err := scanComment(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get comment %s: %w", id, err)
	}
	return c, nil
}

// ListCommentsByTask retrieves a task's comments, newest first.
func (s *CommentStore) ListCommentsByTask(ctx context.Context, taskID string) ([]*models.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+commentColumns+` FROM comments c JOIN users u ON u.id = c.user_id
		 WHERE c.task_id = ? ORDER BY c.created_at DESC, c.id DESC`,
		taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query comments: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			slog.Error("failed to close rows", "error", err)
		}
	}()

	var comments []*models.Comment
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// DeleteComment removes a comment.
func (s *CommentStore) DeleteComment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete comment %s: %w", id, err)
	}
	return requireRow(res)
}

func scanComment(row rowScanner) (*models.Comment, error) {
	c := &models.Comment{}
	var name, email string
	if err := row.Scan(&c.ID, &c.TaskID, &c.UserID, &c.Content, &c.CreatedAt, &name, &email); err != nil {
		return nil, err
	}
	c.User = &models.UserRef{ID: c.UserID, Name: name, Email: email}
	return c, nil
}
