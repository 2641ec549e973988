// Package task implements task mutations and reads. A task is always
// created inside a project the caller owns; that precondition is
// checked before any write.
package task

import (
	"context"
	"fmt"
	"time"

	"github.com/averline/taskwire/internal/events"
	"github.com/averline/taskwire/internal/models"
	"github.com/averline/taskwire/internal/store"
)

// MaxTitleLength bounds task titles.
const MaxTitleLength = 200

// Service defines all task-related business operations.
type Service interface {
	List(ctx context.Context, userID string, f Filter) ([]*models.Task, error)
	Get(ctx context.Context, userID, id string) (*models.Task, error)
	Create(ctx context.Context, userID string, req CreateRequest) (*models.Task, error)
	Update(ctx context.Context, userID, id string, req UpdateRequest) (*models.Task, error)
	Delete(ctx context.Context, userID, id string) error
}

// Filter narrows List results. Empty fields match everything.
type Filter struct {
	ProjectID string
	Status    models.Status
	Priority  models.Priority
}

// CreateRequest encapsulates the data needed to create a task.
// Status and Priority default to "To Do" and "Medium" when empty.
type CreateRequest struct {
	Title       string
	Description string
	Status      models.Status
	Priority    models.Priority
	DueDate     *time.Time
	ProjectID   string
}

// UpdateRequest holds optional updates; nil means leave unchanged.
type UpdateRequest struct {
	Title       *string
	Description *string
	Status      *models.Status
	Priority    *models.Priority
	DueDate     *time.Time
	ClearDue    bool
}

type service struct {
	store       store.EntityStore
	broadcaster events.Broadcaster
}

// NewService creates a task service.
func NewService(st store.EntityStore, b events.Broadcaster) Service {
	return &service{store: st, broadcaster: b}
}

func (s *service) List(ctx context.Context, userID string, f Filter) ([]*models.Task, error) {
	return s.store.ListTasks(ctx, store.TaskFilter{
		UserID:    userID,
		ProjectID: f.ProjectID,
		Status:    f.Status,
		Priority:  f.Priority,
	})
}

func (s *service) Get(ctx context.Context, userID, id string) (*models.Task, error) {
	t, err := s.store.GetTaskByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.UserID != userID {
		return nil, models.ErrForbidden
	}
	return t, nil
}

func (s *service) Create(ctx context.Context, userID string, req CreateRequest) (*models.Task, error) {
	if req.Status == "" {
		req.Status = models.StatusToDo
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}
	if err := validateCreate(req); err != nil {
		return nil, err
	}

	// The referenced project must exist and belong to the caller
	// before anything is written.
	p, err := s.store.GetProjectByID(ctx, req.ProjectID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, models.ErrForbidden
	}

	now := time.Now().UTC()
	t := &models.Task{
		ID:          store.NewID(),
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		ProjectID:   req.ProjectID,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
		Project:     &models.ProjectRef{ID: p.ID, Name: p.Name},
	}
	if err := s.store.CreateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	events.Publish(s.broadcaster, events.NewTaskCreated(t))
	return t, nil
}

func (s *service) Update(ctx context.Context, userID, id string, req UpdateRequest) (*models.Task, error) {
	t, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		if err := validateTitle(*req.Title); err != nil {
			return nil, err
		}
		t.Title = *req.Title
	}
	if req.Description != nil {
		t.Description = *req.Description
	}
	if req.Status != nil {
		if !models.ValidStatus(*req.Status) {
			return nil, ErrInvalidStatus
		}
		t.Status = *req.Status
	}
	if req.Priority != nil {
		if !models.ValidPriority(*req.Priority) {
			return nil, ErrInvalidPriority
		}
		t.Priority = *req.Priority
	}
	if req.DueDate != nil {
		t.DueDate = req.DueDate
	} else if req.ClearDue {
		t.DueDate = nil
	}
	t.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateTask(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	events.Publish(s.broadcaster, events.NewTaskUpdated(t))
	return t, nil
}

// Delete removes the task. Its comments are left in place; they are
// unreachable once the task is gone.
func (s *service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	if err := s.store.DeleteTask(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	events.Publish(s.broadcaster, events.NewTaskDeleted(id))
	return nil
}

func validateCreate(req CreateRequest) error {
	if err := validateTitle(req.Title); err != nil {
		return err
	}
	if req.ProjectID == "" {
		return ErrMissingProject
	}
	if !models.ValidStatus(req.Status) {
		return ErrInvalidStatus
	}
	if !models.ValidPriority(req.Priority) {
		return ErrInvalidPriority
	}
	return nil
}

func validateTitle(title string) error {
	if title == "" {
		return ErrEmptyTitle
	}
	if len(title) > MaxTitleLength {
		return ErrTitleTooLong
	}
	return nil
}
