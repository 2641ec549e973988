package localstate

import (
	"testing"

	"github.com/averline/taskwire/internal/models"
)

func project(id, name string) *models.Project {
	return &models.Project{ID: id, Name: name, UserID: "u1"}
}

func task(id, title string) *models.Task {
	return &models.Task{
		ID: id, Title: title,
		Status: models.StatusToDo, Priority: models.PriorityMedium,
		ProjectID: "p1", UserID: "u1",
	}
}

func comment(id, taskID string) *models.Comment {
	return &models.Comment{ID: id, TaskID: taskID, UserID: "u1", Content: "c"}
}

func projectIDs(list []*models.Project) []string {
	out := make([]string, len(list))
	for i, p := range list {
		out[i] = p.ID
	}
	return out
}

func taskIDs(list []*models.Task) []string {
	out := make([]string, len(list))
	for i, task := range list {
		out[i] = task.ID
	}
	return out
}

func equalIDs(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestApplyCreatedPrependsOnce(t *testing.T) {
	var l ProjectList
	l.Replace([]*models.Project{project("p1", "first")})

	l.ApplyCreated(project("p2", "second"))
	if got := projectIDs(l.List()); !equalIDs(got, []string{"p2", "p1"}) {
		t.Errorf("after create: %v", got)
	}

	// Redelivery of the same event changes nothing.
	l.ApplyCreated(project("p2", "second"))
	if got := projectIDs(l.List()); !equalIDs(got, []string{"p2", "p1"}) {
		t.Errorf("after duplicate create: %v", got)
	}
}

func TestOwnMutationThenBroadcast(t *testing.T) {
	// A client that created p2 and already fetched it sees its own
	// broadcast afterwards; the apply must not duplicate the entry.
	var l ProjectList
	l.Replace([]*models.Project{project("p2", "mine"), project("p1", "old")})

	l.ApplyCreated(project("p2", "mine"))
	if got := projectIDs(l.List()); !equalIDs(got, []string{"p2", "p1"}) {
		t.Errorf("own broadcast duplicated entry: %v", got)
	}
}

func TestApplyUpdatedReplacesInPlace(t *testing.T) {
	var l TaskList
	l.Replace([]*models.Task{task("t1", "a"), task("t2", "b"), task("t3", "c")})

	updated := task("t2", "renamed")
	l.ApplyUpdated(updated)

	list := l.List()
	if !equalIDs(taskIDs(list), []string{"t1", "t2", "t3"}) {
		t.Errorf("order changed: %v", taskIDs(list))
	}
	if list[1].Title != "renamed" {
		t.Errorf("entry not replaced: %+v", list[1])
	}

	// Idempotent: applying again yields the same state.
	l.ApplyUpdated(updated)
	if got := l.List(); got[1].Title != "renamed" || len(got) != 3 {
		t.Errorf("duplicate update changed state: %v", taskIDs(got))
	}
}

func TestApplyUpdatedForUnknownEntityIgnored(t *testing.T) {
	var l TaskList
	l.Replace([]*models.Task{task("t1", "a")})

	l.ApplyUpdated(task("t9", "ghost"))
	if got := taskIDs(l.List()); !equalIDs(got, []string{"t1"}) {
		t.Errorf("unknown update mutated list: %v", got)
	}
}

func TestApplyDeletedIdempotent(t *testing.T) {
	var l TaskList
	l.Replace([]*models.Task{task("t1", "a"), task("t2", "b")})

	l.ApplyDeleted("t1")
	l.ApplyDeleted("t1")
	if got := taskIDs(l.List()); !equalIDs(got, []string{"t2"}) {
		t.Errorf("after deletes: %v", got)
	}
}

func TestListReturnsCopy(t *testing.T) {
	var l ProjectList
	l.Replace([]*models.Project{project("p1", "a"), project("p2", "b")})

	got := l.List()
	got[0] = project("px", "mutated")

	if l.List()[0].ID != "p1" {
		t.Error("caller mutation leaked into the collection")
	}
}

func TestCommentDeletedScansAllTasks(t *testing.T) {
	m := NewCommentMap()
	m.Replace("t1", []*models.Comment{comment("c1", "t1"), comment("c2", "t1")})
	m.Replace("t2", []*models.Comment{comment("c9", "t2")})

	// The deletion event carries only the comment id.
	m.ApplyDeleted("c9")

	if got := m.ListByTask("t2"); len(got) != 0 {
		t.Errorf("c9 still present: %v", got)
	}
	if got := m.ListByTask("t1"); len(got) != 2 {
		t.Errorf("unrelated list touched: %v", got)
	}

	m.ApplyDeleted("c9")
	if got := m.ListByTask("t1"); len(got) != 2 {
		t.Errorf("duplicate delete touched unrelated list: %v", got)
	}
}

func TestCommentCreatedDeduplicates(t *testing.T) {
	m := NewCommentMap()
	m.Replace("t1", []*models.Comment{comment("c1", "t1")})

	m.ApplyCreated(comment("c2", "t1"))
	m.ApplyCreated(comment("c2", "t1"))

	got := m.ListByTask("t1")
	if len(got) != 2 || got[0].ID != "c2" {
		t.Errorf("comments = %v", got)
	}
}

func TestProjectDeleteLeavesTasksUntilRefetch(t *testing.T) {
	var projects ProjectList
	var tasks TaskList
	projects.Replace([]*models.Project{project("p1", "doomed")})
	tasks.Replace([]*models.Task{task("t1", "a"), task("t2", "b")})

	// The cascade happens server-side with no per-task events.
	projects.ApplyDeleted("p1")

	if got := projects.List(); len(got) != 0 {
		t.Errorf("project still present: %v", projectIDs(got))
	}
	if got := tasks.List(); len(got) != 2 {
		t.Errorf("tasks were removed without events: %v", taskIDs(got))
	}

	// The next fetch clears them.
	tasks.Replace(nil)
	if got := tasks.List(); len(got) != 0 {
		t.Errorf("tasks after refetch: %v", taskIDs(got))
	}
}
