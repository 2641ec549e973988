// Package httpapi exposes the REST surface and mounts the websocket
// hub. Handlers translate HTTP into service calls; all domain rules
// live in the services.
package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/averline/taskwire/internal/services/auth"
	"github.com/averline/taskwire/internal/services/comment"
	"github.com/averline/taskwire/internal/services/dashboard"
	"github.com/averline/taskwire/internal/services/project"
	"github.com/averline/taskwire/internal/services/task"
)

// Server wires services to routes.
type Server struct {
	auth      auth.Service
	projects  project.Service
	tasks     task.Service
	comments  comment.Service
	dashboard dashboard.Service
	hub       http.Handler
}

// NewServer creates the API server. hub handles websocket upgrades at
// /ws; pass nil to disable the socket endpoint.
func NewServer(
	authSvc auth.Service,
	projects project.Service,
	tasks task.Service,
	comments comment.Service,
	dash dashboard.Service,
	hub http.Handler,
) *Server {
	return &Server{
		auth:      authSvc,
		projects:  projects,
		tasks:     tasks,
		comments:  comments,
		dashboard: dash,
		hub:       hub,
	}
}

// Handler builds the full route table.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()

	api.HandleFunc("POST /api/auth/register", s.handleRegister)
	api.HandleFunc("POST /api/auth/login", s.handleLogin)
	api.Handle("GET /api/auth/me", s.requireAuth(http.HandlerFunc(s.handleMe)))

	protected := http.NewServeMux()
	protected.HandleFunc("GET /api/projects", s.handleListProjects)
	protected.HandleFunc("POST /api/projects", s.handleCreateProject)
	protected.HandleFunc("GET /api/projects/{id}", s.handleGetProject)
	protected.HandleFunc("PUT /api/projects/{id}", s.handleUpdateProject)
	protected.HandleFunc("DELETE /api/projects/{id}", s.handleDeleteProject)

	protected.HandleFunc("GET /api/tasks", s.handleListTasks)
	protected.HandleFunc("POST /api/tasks", s.handleCreateTask)
	protected.HandleFunc("GET /api/tasks/{id}", s.handleGetTask)
	protected.HandleFunc("PUT /api/tasks/{id}", s.handleUpdateTask)
	protected.HandleFunc("DELETE /api/tasks/{id}", s.handleDeleteTask)

	protected.HandleFunc("GET /api/tasks/{taskID}/comments", s.handleListComments)
	protected.HandleFunc("POST /api/tasks/{taskID}/comments", s.handleCreateComment)
	protected.HandleFunc("DELETE /api/comments/{id}", s.handleDeleteComment)

	protected.HandleFunc("GET /api/dashboard/stats", s.handleDashboardStats)
	protected.HandleFunc("GET /api/dashboard/recent", s.handleDashboardRecent)

	api.Handle("/api/", s.requireAuth(protected))

	root := http.NewServeMux()
	root.Handle("/api/", logRequests(api))
	root.HandleFunc("GET /api/health", s.handleHealth)
	root.Handle("GET /metrics", promhttp.Handler())
	if s.hub != nil {
		root.Handle("GET /ws", s.hub)
	}
	return root
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
