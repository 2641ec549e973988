// Package project implements project mutations and reads. Ownership is
// enforced here, before any store write; the broadcast path never
// re-checks it.
package project

import (
	"context"
	"fmt"
	"time"

	"github.com/averline/taskwire/internal/events"
	"github.com/averline/taskwire/internal/models"
	"github.com/averline/taskwire/internal/store"
)

// MaxNameLength bounds project names.
const MaxNameLength = 100

// Service defines all project-related business operations.
type Service interface {
	List(ctx context.Context, userID string) ([]*models.Project, error)
	Get(ctx context.Context, userID, id string) (*models.Project, error)
	Create(ctx context.Context, userID string, req CreateRequest) (*models.Project, error)
	Update(ctx context.Context, userID, id string, req UpdateRequest) (*models.Project, error)
	Delete(ctx context.Context, userID, id string) error
}

// CreateRequest encapsulates the data needed to create a project.
type CreateRequest struct {
	Name        string
	Description string
}

// UpdateRequest holds optional updates; nil means leave unchanged.
type UpdateRequest struct {
	Name        *string
	Description *string
}

type service struct {
	store       store.EntityStore
	broadcaster events.Broadcaster
}

// NewService creates a project service.
func NewService(st store.EntityStore, b events.Broadcaster) Service {
	return &service{store: st, broadcaster: b}
}

func (s *service) List(ctx context.Context, userID string) ([]*models.Project, error) {
	return s.store.ListProjectsByUser(ctx, userID)
}

func (s *service) Get(ctx context.Context, userID, id string) (*models.Project, error) {
	p, err := s.store.GetProjectByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, models.ErrForbidden
	}
	return p, nil
}

func (s *service) Create(ctx context.Context, userID string, req CreateRequest) (*models.Project, error) {
	if err := validateName(req.Name); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	p := &models.Project{
		ID:          store.NewID(),
		Name:        req.Name,
		Description: req.Description,
		UserID:      userID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.store.CreateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}

	events.Publish(s.broadcaster, events.NewProjectCreated(p))
	return p, nil
}

func (s *service) Update(ctx context.Context, userID, id string, req UpdateRequest) (*models.Project, error) {
	p, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := validateName(*req.Name); err != nil {
			return nil, err
		}
		p.Name = *req.Name
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	p.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateProject(ctx, p); err != nil {
		return nil, fmt.Errorf("failed to update project: %w", err)
	}

	events.Publish(s.broadcaster, events.NewProjectUpdated(p))
	return p, nil
}

// Delete removes the project and all of its tasks. Only the project
// deletion is broadcast; clients refresh task lists on their next
// fetch.
func (s *service) Delete(ctx context.Context, userID, id string) error {
	if _, err := s.Get(ctx, userID, id); err != nil {
		return err
	}

	if err := s.store.DeleteProject(ctx, id); err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	events.Publish(s.broadcaster, events.NewProjectDeleted(id))
	return nil
}

func validateName(name string) error {
	if name == "" {
		return ErrEmptyName
	}
	if len(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}
