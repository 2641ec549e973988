// Package comment implements comment creation, listing, and deletion.
// Comments are immutable; only the author may delete one. Comment
// events are the only project-scoped broadcasts in the system.
package comment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/averline/taskwire/internal/events"
	"github.com/averline/taskwire/internal/models"
	"github.com/averline/taskwire/internal/store"
)

// Service defines all comment-related business operations.
type Service interface {
	ListByTask(ctx context.Context, taskID string) ([]*models.Comment, error)
	Create(ctx context.Context, userID, taskID, content string) (*models.Comment, error)
	Delete(ctx context.Context, userID, id string) error
}

type service struct {
	store       store.EntityStore
	broadcaster events.Broadcaster
}

// NewService creates a comment service.
func NewService(st store.EntityStore, b events.Broadcaster) Service {
	return &service{store: st, broadcaster: b}
}

func (s *service) ListByTask(ctx context.Context, taskID string) ([]*models.Comment, error) {
	return s.store.ListCommentsByTask(ctx, taskID)
}

func (s *service) Create(ctx context.Context, userID, taskID, content string) (*models.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}
	if len(content) > models.MaxCommentLength {
		return nil, ErrContentTooLong
	}

	// The task must exist; its project id scopes the broadcast topic.
	t, err := s.store.GetTaskByID(ctx, taskID)
	if err != nil {
		return nil, err
	}

	c := &models.Comment{
		ID:        store.NewID(),
		TaskID:    taskID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateComment(ctx, c); err != nil {
		return nil, fmt.Errorf("failed to create comment: %w", err)
	}

	// Re-read to attach the author summary the way clients display it.
	c, err = s.store.GetCommentByID(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load created comment: %w", err)
	}

	events.Publish(s.broadcaster, events.NewCommentCreated(c, t.ProjectID))
	return c, nil
}

func (s *service) Delete(ctx context.Context, userID, id string) error {
	c, err := s.store.GetCommentByID(ctx, id)
	if err != nil {
		return err
	}
	if c.UserID != userID {
		return models.ErrForbidden
	}

	// Resolve the broadcast topic before the comment disappears. The
	// task may already be gone (comments survive task deletion); in
	// that case there is no topic to notify and the broadcast is
	// skipped.
	t, taskErr := s.store.GetTaskByID(ctx, c.TaskID)

	if err := s.store.DeleteComment(ctx, id); err != nil {
		return fmt.Errorf("failed to delete comment: %w", err)
	}

	if taskErr != nil {
		if !errors.Is(taskErr, models.ErrNotFound) {
			slog.Warn("failed to resolve task for comment broadcast", "comment", id, "error", taskErr)
		}
		return nil
	}

	events.Publish(s.broadcaster, events.NewCommentDeleted(id, t.ProjectID))
	return nil
}
