package store

import (
	"context"

	"github.com/averline/taskwire/internal/models"
)

// TaskFilter narrows task queries. Zero-value fields are ignored.
type TaskFilter struct {
	UserID    string
	ProjectID string
	Status    models.Status
	NotStatus models.Status
	Priority  models.Priority
	Limit     int
}

// EntityStore is the persistence interface consumed by the service
// layer. It provides per-document atomicity; cross-document invariants
// are the service layer's responsibility.
type EntityStore interface {
	// Users
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	// Projects
	CreateProject(ctx context.Context, p *models.Project) error
	GetProjectByID(ctx context.Context, id string) (*models.Project, error)
	ListProjectsByUser(ctx context.Context, userID string) ([]*models.Project, error)
	UpdateProject(ctx context.Context, p *models.Project) error
	// DeleteProject removes the project and, by cascade, all its tasks.
	DeleteProject(ctx context.Context, id string) error

	// Tasks
	CreateTask(ctx context.Context, t *models.Task) error
	GetTaskByID(ctx context.Context, id string) (*models.Task, error)
	ListTasks(ctx context.Context, f TaskFilter) ([]*models.Task, error)
	CountTasks(ctx context.Context, f TaskFilter) (int, error)
	UpdateTask(ctx context.Context, t *models.Task) error
	DeleteTask(ctx context.Context, id string) error

	// Comments
	CreateComment(ctx context.Context, c *models.Comment) error
	GetCommentByID(ctx context.Context, id string) (*models.Comment, error)
	ListCommentsByTask(ctx context.Context, taskID string) ([]*models.Comment, error)
	DeleteComment(ctx context.Context, id string) error
}

// Compile-time verification that *Store implements EntityStore.
var _ EntityStore = (*Store)(nil)
