package httpapi

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/averline/taskwire/internal/events"
	"github.com/averline/taskwire/internal/services/auth"
	"github.com/averline/taskwire/internal/services/comment"
	"github.com/averline/taskwire/internal/services/dashboard"
	"github.com/averline/taskwire/internal/services/project"
	"github.com/averline/taskwire/internal/services/task"
	"github.com/averline/taskwire/internal/store"

	_ "modernc.org/sqlite"
)

type nullBroadcaster struct{}

func (nullBroadcaster) Publish(events.Event) error { return nil }

func setupTestServer(t *testing.T) *httptest.Server {
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
	b := nullBroadcaster{}
	tokens := auth.NewTokenIssuer("test-secret", time.Hour)

	srv := NewServer(
		auth.NewService(st, auth.NewBcryptHasher(), tokens),
		project.NewService(st, b),
		task.NewService(st, b),
		comment.NewService(st, b),
		dashboard.NewService(st),
		nil,
	)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return ts
}

// doJSON issues a request and decodes the envelope's data field into out.
func doJSON(t *testing.T, ts *httptest.Server, method, path, token string, body, out any) (int, string) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, ts.URL+path, &buf)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()

	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Message string          `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode envelope: %v", err)
	}
	if out != nil && env.Data != nil {
		if err := json.Unmarshal(env.Data, out); err != nil {
			t.Fatalf("failed to decode data: %v", err)
		}
	}
	return resp.StatusCode, env.Message
}

func register(t *testing.T, ts *httptest.Server, name string) string {
	t.Helper()
	var out struct {
		Token string `json:"token"`
	}
	status, msg := doJSON(t, ts, http.MethodPost, "/api/auth/register", "", map[string]string{
		"name": name, "email": name + "@example.com", "password": "secret1",
	}, &out)
	if status != http.StatusCreated {
		t.Fatalf("register returned %d: %s", status, msg)
	}
	return out.Token
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t)

	var out struct {
		Status string `json:"status"`
	}
	status, _ := doJSON(t, ts, http.MethodGet, "/api/health", "", nil, &out)
	if status != http.StatusOK || out.Status != "ok" {
		t.Errorf("health returned %d %+v", status, out)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := setupTestServer(t)

	status, _ := doJSON(t, ts, http.MethodGet, "/api/projects", "", nil, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("no token: status = %d, want 401", status)
	}
	status, _ = doJSON(t, ts, http.MethodGet, "/api/projects", "garbage", nil, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("bad token: status = %d, want 401", status)
	}
}

func TestProjectLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	token := register(t, ts, "alice")

	var created struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	status, msg := doJSON(t, ts, http.MethodPost, "/api/projects", token,
		map[string]string{"name": "Website"}, &created)
	if status != http.StatusCreated || created.Name != "Website" {
		t.Fatalf("create returned %d %s", status, msg)
	}

	var fetched struct {
		ID string `json:"id"`
	}
	status, _ = doJSON(t, ts, http.MethodGet, "/api/projects/"+created.ID, token, nil, &fetched)
	if status != http.StatusOK || fetched.ID != created.ID {
		t.Errorf("get returned %d %+v", status, fetched)
	}

	status, _ = doJSON(t, ts, http.MethodDelete, "/api/projects/"+created.ID, token, nil, nil)
	if status != http.StatusOK {
		t.Errorf("delete returned %d", status)
	}
	status, _ = doJSON(t, ts, http.MethodGet, "/api/projects/"+created.ID, token, nil, nil)
	if status != http.StatusNotFound {
		t.Errorf("get after delete returned %d, want 404", status)
	}
}

func TestTaskLifecycleAndFilters(t *testing.T) {
	ts := setupTestServer(t)
	token := register(t, ts, "alice")

	var proj struct {
		ID string `json:"id"`
	}
	if status, msg := doJSON(t, ts, http.MethodPost, "/api/projects", token,
		map[string]string{"name": "Website"}, &proj); status != http.StatusCreated {
		t.Fatalf("create project returned %d: %s", status, msg)
	}

	var created struct {
		ID       string `json:"id"`
		Status   string `json:"status"`
		Priority string `json:"priority"`
	}
	status, msg := doJSON(t, ts, http.MethodPost, "/api/tasks", token, map[string]string{
		"title": "ship it", "project": proj.ID, "dueDate": "2026-09-15",
	}, &created)
	if status != http.StatusCreated {
		t.Fatalf("create task returned %d: %s", status, msg)
	}
	if created.Status != "To Do" || created.Priority != "Medium" {
		t.Errorf("defaults not applied: %+v", created)
	}

	status, msg = doJSON(t, ts, http.MethodPut, "/api/tasks/"+created.ID, token,
		map[string]string{"status": "Done"}, nil)
	if status != http.StatusOK {
		t.Errorf("update returned %d: %s", status, msg)
	}

	var done []struct {
		ID string `json:"id"`
	}
	status, _ = doJSON(t, ts, http.MethodGet, "/api/tasks?status=Done", token, nil, &done)
	if status != http.StatusOK || len(done) != 1 || done[0].ID != created.ID {
		t.Errorf("filter returned %d %+v", status, done)
	}

	var todo []struct {
		ID string `json:"id"`
	}
	status, _ = doJSON(t, ts, http.MethodGet, "/api/tasks?status=To+Do", token, nil, &todo)
	if status != http.StatusOK || len(todo) != 0 {
		t.Errorf("stale filter result: %d %+v", status, todo)
	}
}

func TestValidationErrorsAre400(t *testing.T) {
	ts := setupTestServer(t)
	token := register(t, ts, "alice")

	status, _ := doJSON(t, ts, http.MethodPost, "/api/projects", token,
		map[string]string{"name": ""}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("empty name returned %d, want 400", status)
	}

	status, _ = doJSON(t, ts, http.MethodPost, "/api/projects", token,
		map[string]string{"bogus": "field"}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("unknown field returned %d, want 400", status)
	}
}

func TestForeignResourcesAre403(t *testing.T) {
	ts := setupTestServer(t)
	alice := register(t, ts, "alice")
	bob := register(t, ts, "bob")

	var proj struct {
		ID string `json:"id"`
	}
	if status, msg := doJSON(t, ts, http.MethodPost, "/api/projects", alice,
		map[string]string{"name": "Private"}, &proj); status != http.StatusCreated {
		t.Fatalf("create returned %d: %s", status, msg)
	}

	status, _ := doJSON(t, ts, http.MethodGet, "/api/projects/"+proj.ID, bob, nil, nil)
	if status != http.StatusForbidden {
		t.Errorf("foreign get returned %d, want 403", status)
	}
	status, _ = doJSON(t, ts, http.MethodDelete, "/api/projects/"+proj.ID, bob, nil, nil)
	if status != http.StatusForbidden {
		t.Errorf("foreign delete returned %d, want 403", status)
	}
}

func TestLoginFailuresAre401(t *testing.T) {
	ts := setupTestServer(t)
	register(t, ts, "alice")

	status, _ := doJSON(t, ts, http.MethodPost, "/api/auth/login", "",
		map[string]string{"email": "alice@example.com", "password": "wrong"}, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("bad password returned %d, want 401", status)
	}
}

func TestDashboardEndpoints(t *testing.T) {
	ts := setupTestServer(t)
	token := register(t, ts, "alice")

	var stats struct {
		ByStatus struct {
			Total int `json:"total"`
		} `json:"byStatus"`
	}
	status, _ := doJSON(t, ts, http.MethodGet, "/api/dashboard/stats", token, nil, &stats)
	if status != http.StatusOK || stats.ByStatus.Total != 0 {
		t.Errorf("stats returned %d %+v", status, stats)
	}

	var recent []json.RawMessage
	status, _ = doJSON(t, ts, http.MethodGet, "/api/dashboard/recent", token, nil, &recent)
	if status != http.StatusOK || len(recent) != 0 {
		t.Errorf("recent returned %d with %d entries", status, len(recent))
	}
}
