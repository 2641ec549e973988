package localstate

import "github.com/averline/taskwire/internal/models"

// Filter narrows a task list. Zero-value fields match everything.
type Filter struct {
	Project  string
	Status   models.Status
	Priority models.Priority
}

func (f Filter) matches(t *models.Task) bool {
	if f.Project != "" && t.ProjectID != f.Project {
		return false
	}
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	return true
}

// FilterTasks returns the order-preserving subsequence of tasks that
// match every set field. The input is never modified.
func FilterTasks(tasks []*models.Task, f Filter) []*models.Task {
	out := make([]*models.Task, 0, len(tasks))
	for _, t := range tasks {
		if f.matches(t) {
			out = append(out, t)
		}
	}
	return out
}
