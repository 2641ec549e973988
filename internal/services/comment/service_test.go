package comment

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/averline/taskwire/internal/events"
	"github.com/averline/taskwire/internal/models"
	"github.com/averline/taskwire/internal/store"

	_ "modernc.org/sqlite"
)

type recordingBroadcaster struct {
	mu     sync.Mutex
	events []events.Event
}

func (r *recordingBroadcaster) Publish(e events.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recordingBroadcaster) all() []events.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]events.Event(nil), r.events...)
}

func setupTest(t *testing.T) (Service, *store.Store, *recordingBroadcaster) {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	ctx := context.Background()
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("failed to enable foreign keys: %v", err)
	}
	if err := store.Migrate(ctx, db); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	st := store.New(db)
	b := &recordingBroadcaster{}
	return NewService(st, b), st, b
}

func seedUser(t *testing.T, st *store.Store, name string) *models.User {
	t.Helper()
	u := &models.User{
		ID: store.NewID(), Name: name, Email: name + "@example.com",
		PasswordHash: "x", CreatedAt: time.Now().UTC(),
	}
	if err := st.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("failed to seed user: %v", err)
	}
	return u
}

func seedTask(t *testing.T, st *store.Store, userID string) *models.Task {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC()

	p := &models.Project{
		ID: store.NewID(), Name: "Website", UserID: userID,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := st.CreateProject(ctx, p); err != nil {
		t.Fatalf("failed to seed project: %v", err)
	}
	task := &models.Task{
		ID: store.NewID(), Title: "ship it",
		Status: models.StatusToDo, Priority: models.PriorityMedium,
		ProjectID: p.ID, UserID: userID,
		CreatedAt: now, UpdatedAt: now,
	}
	if err := st.CreateTask(ctx, task); err != nil {
		t.Fatalf("failed to seed task: %v", err)
	}
	return task
}

func TestCreateCommentScopedToProjectTopic(t *testing.T) {
	svc, st, b := setupTest(t)
	ctx := context.Background()
	u := seedUser(t, st, "alice")
	task := seedTask(t, st, u.ID)

	c, err := svc.Create(ctx, u.ID, task.ID, "  looks good  ")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c.Content != "looks good" {
		t.Errorf("content = %q, want trimmed", c.Content)
	}
	if c.User == nil || c.User.Name != "alice" {
		t.Errorf("author summary missing: %+v", c.User)
	}

	got := b.all()
	if len(got) != 1 {
		t.Fatalf("published %d events, want 1", len(got))
	}
	if got[0].Type != events.CommentCreated {
		t.Errorf("type = %v", got[0].Type)
	}
	if want := events.ProjectTopic(task.ProjectID); got[0].Topic != want {
		t.Errorf("topic = %q, want %q", got[0].Topic, want)
	}
}

func TestCreateCommentValidation(t *testing.T) {
	svc, st, b := setupTest(t)
	ctx := context.Background()
	u := seedUser(t, st, "alice")
	task := seedTask(t, st, u.ID)

	if _, err := svc.Create(ctx, u.ID, task.ID, "   "); !errors.Is(err, ErrEmptyContent) {
		t.Errorf("err = %v, want ErrEmptyContent", err)
	}
	long := strings.Repeat("x", models.MaxCommentLength+1)
	if _, err := svc.Create(ctx, u.ID, task.ID, long); !errors.Is(err, ErrContentTooLong) {
		t.Errorf("err = %v, want ErrContentTooLong", err)
	}
	if _, err := svc.Create(ctx, u.ID, "missing", "hi"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if len(b.all()) != 0 {
		t.Error("broadcast emitted for rejected create")
	}
}

func TestOnlyAuthorCanDelete(t *testing.T) {
	svc, st, b := setupTest(t)
	ctx := context.Background()
	alice := seedUser(t, st, "alice")
	bob := seedUser(t, st, "bob")
	task := seedTask(t, st, alice.ID)

	c, err := svc.Create(ctx, alice.ID, task.ID, "mine")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	before := len(b.all())

	if err := svc.Delete(ctx, bob.ID, c.ID); !errors.Is(err, models.ErrForbidden) {
		t.Errorf("err = %v, want ErrForbidden", err)
	}
	if len(b.all()) != before {
		t.Error("broadcast emitted for forbidden delete")
	}

	list, err := svc.ListByTask(ctx, task.ID)
	if err != nil {
		t.Fatalf("ListByTask failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("comment was deleted by non-author")
	}
}

func TestDeletePublishesIdentifierOnly(t *testing.T) {
	svc, st, b := setupTest(t)
	ctx := context.Background()
	u := seedUser(t, st, "alice")
	task := seedTask(t, st, u.ID)

	c, err := svc.Create(ctx, u.ID, task.ID, "bye")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := svc.Delete(ctx, u.ID, c.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got := b.all()
	last := got[len(got)-1]
	if last.Type != events.CommentDeleted || last.ID != c.ID || last.Comment != nil {
		t.Errorf("published %+v", last)
	}
	if want := events.ProjectTopic(task.ProjectID); last.Topic != want {
		t.Errorf("topic = %q, want %q", last.Topic, want)
	}
}

func TestDeleteAfterTaskGoneSkipsBroadcast(t *testing.T) {
	svc, st, b := setupTest(t)
	ctx := context.Background()
	u := seedUser(t, st, "alice")
	task := seedTask(t, st, u.ID)

	c, err := svc.Create(ctx, u.ID, task.ID, "orphaned")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if err := st.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("failed to delete task: %v", err)
	}
	before := len(b.all())

	if err := svc.Delete(ctx, u.ID, c.ID); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if len(b.all()) != before {
		t.Error("broadcast emitted without a topic to route it to")
	}
	if _, err := st.GetCommentByID(ctx, c.ID); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("comment still present after delete: %v", err)
	}
}
