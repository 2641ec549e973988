// Package events defines the typed events carried over the broadcast
// channel, their topic scoping, and the wire protocol shared by the hub
// and the client.
package events

import (
	"fmt"

	"github.com/averline/taskwire/internal/models"
)

// Type names a kind of state change.
type Type string

const (
	ProjectCreated Type = "project:created"
	ProjectUpdated Type = "project:updated"
	ProjectDeleted Type = "project:deleted"
	TaskCreated    Type = "task:created"
	TaskUpdated    Type = "task:updated"
	TaskDeleted    Type = "task:deleted"
	CommentCreated Type = "comment:created"
	CommentDeleted Type = "comment:deleted"
)

// Scope selects how an event is routed to subscribers.
type Scope int

const (
	// ScopeGlobal events reach every connected client.
	ScopeGlobal Scope = iota
	// ScopeProject events reach only subscribers of the owning
	// project's topic.
	ScopeProject
)

// ScopeFor returns the routing scope for an event type. Project and
// task events are global while comment events are project-scoped; the
// broad fan-out of task events to clients outside the project is
// intentional, inherited behavior.
func ScopeFor(t Type) Scope {
	switch t {
	case CommentCreated, CommentDeleted:
		return ScopeProject
	default:
		return ScopeGlobal
	}
}

// ProjectTopic names the broadcast topic for one project's scoped
// events.
func ProjectTopic(projectID string) string {
	return "project:" + projectID
}

// Event is a tagged union: exactly one payload field is set, selected
// by Type. Created/updated events carry the full entity; deleted events
// carry only the identifier.
type Event struct {
	Type Type  `json:"type"`
	Seq  int64 `json:"seq,omitempty"`

	Project *models.Project `json:"project,omitempty"`
	Task    *models.Task    `json:"task,omitempty"`
	Comment *models.Comment `json:"comment,omitempty"`

	// ID is the deleted entity's identifier. Comment deletions carry
	// no task scope; receivers search their collections.
	ID string `json:"id,omitempty"`

	// Topic routes project-scoped events inside the hub. It is not
	// part of the wire payload.
	Topic string `json:"-"`
}

// Constructors pair each event type with its payload and topic.

func NewProjectCreated(p *models.Project) Event { return Event{Type: ProjectCreated, Project: p} }
func NewProjectUpdated(p *models.Project) Event { return Event{Type: ProjectUpdated, Project: p} }
func NewProjectDeleted(id string) Event         { return Event{Type: ProjectDeleted, ID: id} }
func NewTaskCreated(t *models.Task) Event       { return Event{Type: TaskCreated, Task: t} }
func NewTaskUpdated(t *models.Task) Event       { return Event{Type: TaskUpdated, Task: t} }
func NewTaskDeleted(id string) Event            { return Event{Type: TaskDeleted, ID: id} }

func NewCommentCreated(c *models.Comment, projectID string) Event {
	return Event{Type: CommentCreated, Comment: c, Topic: ProjectTopic(projectID)}
}

func NewCommentDeleted(commentID, projectID string) Event {
	return Event{Type: CommentDeleted, ID: commentID, Topic: ProjectTopic(projectID)}
}

// Validate checks the tagged-union shape: the payload matching Type
// must be present. Called at every decode boundary before an event is
// handed to a reconciler.
func (e Event) Validate() error {
	switch e.Type {
	case ProjectCreated, ProjectUpdated:
		if e.Project == nil || e.Project.ID == "" {
			return fmt.Errorf("%s event missing project payload", e.Type)
		}
	case TaskCreated, TaskUpdated:
		if e.Task == nil || e.Task.ID == "" {
			return fmt.Errorf("%s event missing task payload", e.Type)
		}
	case CommentCreated:
		if e.Comment == nil || e.Comment.ID == "" {
			return fmt.Errorf("%s event missing comment payload", e.Type)
		}
	case ProjectDeleted, TaskDeleted, CommentDeleted:
		if e.ID == "" {
			return fmt.Errorf("%s event missing id", e.Type)
		}
	default:
		return fmt.Errorf("unknown event type %q", e.Type)
	}
	return nil
}
