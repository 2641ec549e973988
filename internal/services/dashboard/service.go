// Package dashboard aggregates task counts for the overview screen.
// Reads only; nothing here mutates or broadcasts.
package dashboard

import (
	"context"
	"fmt"

	"github.com/averline/taskwire/internal/models"
	"github.com/averline/taskwire/internal/store"
)

// RecentLimit is how many tasks the recent list returns.
const RecentLimit = 10

// StatusCounts breaks tasks down by workflow state.
type StatusCounts struct {
	ToDo       int `json:"todo"`
	InProgress int `json:"inProgress"`
	Done       int `json:"done"`
	Total      int `json:"total"`
}

// PriorityCounts breaks open (not Done) tasks down by priority.
type PriorityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// Stats is the dashboard aggregate.
type Stats struct {
	ByStatus   StatusCounts   `json:"byStatus"`
	ByPriority PriorityCounts `json:"byPriority"`
}

// Service defines dashboard reads.
type Service interface {
	Stats(ctx context.Context, userID string) (*Stats, error)
	Recent(ctx context.Context, userID string) ([]*models.Task, error)
}

type service struct {
	store store.EntityStore
}

// NewService creates a dashboard service.
func NewService(st store.EntityStore) Service {
	return &service{store: st}
}

func (s *service) Stats(ctx context.Context, userID string) (*Stats, error) {
	stats := &Stats{}

	statusCounts := []struct {
		status models.Status
		dest   *int
	}{
		{models.StatusToDo, &stats.ByStatus.ToDo},
		{models.StatusInProgress, &stats.ByStatus.InProgress},
		{models.StatusDone, &stats.ByStatus.Done},
	}
	for _, sc := range statusCounts {
		n, err := s.store.CountTasks(ctx, store.TaskFilter{UserID: userID, Status: sc.status})
		if err != nil {
			return nil, fmt.Errorf("failed to count %s tasks: %w", sc.status, err)
		}
		*sc.dest = n
	}
	stats.ByStatus.Total = stats.ByStatus.ToDo + stats.ByStatus.InProgress + stats.ByStatus.Done

	priorityCounts := []struct {
		priority models.Priority
		dest     *int
	}{
		{models.PriorityHigh, &stats.ByPriority.High},
		{models.PriorityMedium, &stats.ByPriority.Medium},
		{models.PriorityLow, &stats.ByPriority.Low},
	}
	for _, pc := range priorityCounts {
		n, err := s.store.CountTasks(ctx, store.TaskFilter{
			UserID:    userID,
			Priority:  pc.priority,
			NotStatus: models.StatusDone,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to count %s tasks: %w", pc.priority, err)
		}
		*pc.dest = n
	}

	return stats, nil
}

func (s *service) Recent(ctx context.Context, userID string) ([]*models.Task, error) {
	return s.store.ListTasks(ctx, store.TaskFilter{UserID: userID, Limit: RecentLimit})
}
