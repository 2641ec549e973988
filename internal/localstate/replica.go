package localstate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/averline/taskwire/internal/apiclient"
	"github.com/averline/taskwire/internal/events"
)

// Replica ties the collections to the API client and the event
// stream. All reads go to the local collections; all writes go to the
// server and come back as events.
type Replica struct {
	api *apiclient.Client

	Projects ProjectList
	Tasks    TaskList
	Comments *CommentMap
}

// NewReplica creates a replica backed by the given API client.
func NewReplica(api *apiclient.Client) *Replica {
	return &Replica{api: api, Comments: NewCommentMap()}
}

// Run consumes the event stream until ctx ends or the stream closes,
// applying each event to the right collection.
func (r *Replica) Run(ctx context.Context, stream <-chan events.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case e, ok := <-stream:
			if !ok {
				return
			}
			r.Apply(e)
		}
	}
}

// Apply routes one event to its collection. Unknown types are logged
// and skipped so a newer server cannot wedge an older client.
func (r *Replica) Apply(e events.Event) {
	switch e.Type {
	case events.ProjectCreated:
		r.Projects.ApplyCreated(e.Project)
	case events.ProjectUpdated:
		r.Projects.ApplyUpdated(e.Project)
	case events.ProjectDeleted:
		r.Projects.ApplyDeleted(e.ID)
	case events.TaskCreated:
		r.Tasks.ApplyCreated(e.Task)
	case events.TaskUpdated:
		r.Tasks.ApplyUpdated(e.Task)
	case events.TaskDeleted:
		r.Tasks.ApplyDeleted(e.ID)
	case events.CommentCreated:
		r.Comments.ApplyCreated(e.Comment)
	case events.CommentDeleted:
		r.Comments.ApplyDeleted(e.ID)
	default:
		slog.Debug("skipping unknown event type", "type", e.Type)
	}
}

// FetchProjects replaces the project collection with the server's
// current list.
func (r *Replica) FetchProjects(ctx context.Context) error {
	projects, err := r.api.ListProjects(ctx)
	if err != nil {
		return fmt.Errorf("failed to fetch projects: %w", err)
	}
	r.Projects.Replace(projects)
	return nil
}

// FetchTasks replaces the task collection with the server's current
// list.
func (r *Replica) FetchTasks(ctx context.Context) error {
	tasks, err := r.api.ListTasks(ctx, apiclient.TaskQuery{})
	if err != nil {
		return fmt.Errorf("failed to fetch tasks: %w", err)
	}
	r.Tasks.Replace(tasks)
	return nil
}

// FetchComments replaces one task's comment list with the server's
// current state.
func (r *Replica) FetchComments(ctx context.Context, taskID string) error {
	comments, err := r.api.ListComments(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to fetch comments: %w", err)
	}
	r.Comments.Replace(taskID, comments)
	return nil
}

// Resync refreshes every collection wholesale. Call it after a
// reconnect: events missed while offline are not replayed, so the
// replica must be rebuilt from the API.
func (r *Replica) Resync(ctx context.Context) error {
	if err := r.FetchProjects(ctx); err != nil {
		return err
	}
	return r.FetchTasks(ctx)
}

// CreateProject asks the server to create a project. The local
// collection is not touched; the project appears when its broadcast
// arrives.
func (r *Replica) CreateProject(ctx context.Context, name, description string) error {
	_, err := r.api.CreateProject(ctx, name, description)
	return err
}

// UpdateProject asks the server to update a project.
func (r *Replica) UpdateProject(ctx context.Context, id string, req apiclient.ProjectRequest) error {
	_, err := r.api.UpdateProject(ctx, id, req)
	return err
}

// DeleteProject asks the server to delete a project.
func (r *Replica) DeleteProject(ctx context.Context, id string) error {
	return r.api.DeleteProject(ctx, id)
}

// CreateTask asks the server to create a task.
func (r *Replica) CreateTask(ctx context.Context, req apiclient.CreateTaskRequest) error {
	_, err := r.api.CreateTask(ctx, req)
	return err
}

// UpdateTask asks the server to update a task.
func (r *Replica) UpdateTask(ctx context.Context, id string, req apiclient.UpdateTaskRequest) error {
	_, err := r.api.UpdateTask(ctx, id, req)
	return err
}

// DeleteTask asks the server to delete a task.
func (r *Replica) DeleteTask(ctx context.Context, id string) error {
	return r.api.DeleteTask(ctx, id)
}

// CreateComment asks the server to add a comment to a task.
func (r *Replica) CreateComment(ctx context.Context, taskID, content string) error {
	_, err := r.api.CreateComment(ctx, taskID, content)
	return err
}

// DeleteComment asks the server to delete a comment.
func (r *Replica) DeleteComment(ctx context.Context, id string) error {
	return r.api.DeleteComment(ctx, id)
}
