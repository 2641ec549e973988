// Package localstate keeps a client-side replica of projects, tasks,
// and comments. The replica changes in exactly two ways: a wholesale
// replace after a fetch, or an incremental Apply* when a broadcast
// event arrives. Mutations issued through the API never touch it;
// their effects land via the event like everyone else's.
package localstate

import (
	"sync"

	"github.com/averline/taskwire/internal/models"
)

// ProjectList is the local project collection, newest first.
type ProjectList struct {
	mu    sync.Mutex
	items []*models.Project
}

// List returns a copy of the collection.
func (l *ProjectList) List() []*models.Project {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*models.Project(nil), l.items...)
}

// Replace swaps in a freshly fetched collection.
func (l *ProjectList) Replace(items []*models.Project) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append([]*models.Project(nil), items...)
}

// ApplyCreated prepends the project unless an entry with the same id
// already exists. A second delivery of the same event is a no-op, as
// is the broadcast for a create this client already fetched.
func (l *ProjectList) ApplyCreated(p *models.Project) {
	if p == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.items {
		if existing.ID == p.ID {
			return
		}
	}
	l.items = append([]*models.Project{p}, l.items...)
}

// ApplyUpdated replaces the matching entry in place. Updates for
// projects not held locally are ignored.
func (l *ProjectList) ApplyUpdated(p *models.Project) {
	if p == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.items {
		if existing.ID == p.ID {
			l.items[i] = p
			return
		}
	}
}

// ApplyDeleted removes the entry with the given id if present.
func (l *ProjectList) ApplyDeleted(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.items {
		if existing.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return
		}
	}
}

// TaskList is the local task collection, newest first.
//
// A project deletion cascades server-side without per-task events, so
// tasks of a deleted project linger here until the next fetch.
type TaskList struct {
	mu    sync.Mutex
	items []*models.Task
}

func (l *TaskList) List() []*models.Task {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*models.Task(nil), l.items...)
}

func (l *TaskList) Replace(items []*models.Task) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append([]*models.Task(nil), items...)
}

func (l *TaskList) ApplyCreated(t *models.Task) {
	if t == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, existing := range l.items {
		if existing.ID == t.ID {
			return
		}
	}
	l.items = append([]*models.Task{t}, l.items...)
}

func (l *TaskList) ApplyUpdated(t *models.Task) {
	if t == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.items {
		if existing.ID == t.ID {
			l.items[i] = t
			return
		}
	}
}

func (l *TaskList) ApplyDeleted(id string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for i, existing := range l.items {
		if existing.ID == id {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return
		}
	}
}

// CommentMap holds comments per task, newest first.
type CommentMap struct {
	mu    sync.Mutex
	byTask map[string][]*models.Comment
}

// NewCommentMap creates an empty comment replica.
func NewCommentMap() *CommentMap {
	return &CommentMap{byTask: make(map[string][]*models.Comment)}
}

// ListByTask returns a copy of one task's comments.
func (m *CommentMap) ListByTask(taskID string) []*models.Comment {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.Comment(nil), m.byTask[taskID]...)
}

// Replace swaps in a freshly fetched comment list for one task.
func (m *CommentMap) Replace(taskID string, comments []*models.Comment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.byTask[taskID] = append([]*models.Comment(nil), comments...)
}

// Forget drops a task's comment list entirely.
func (m *CommentMap) Forget(taskID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byTask, taskID)
}

// ApplyCreated prepends the comment to its task's list unless already
// present.
func (m *CommentMap) ApplyCreated(c *models.Comment) {
	if c == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byTask[c.TaskID] {
		if existing.ID == c.ID {
			return
		}
	}
	m.byTask[c.TaskID] = append([]*models.Comment{c}, m.byTask[c.TaskID]...)
}

// ApplyDeleted removes the comment wherever it lives. Deletion events
// carry only the comment id, so every task's list is scanned.
func (m *CommentMap) ApplyDeleted(commentID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for taskID, comments := range m.byTask {
		for i, existing := range comments {
			if existing.ID == commentID {
				m.byTask[taskID] = append(comments[:i], comments[i+1:]...)
				return
			}
		}
	}
}
