package httpapi

import (
	"net/http"
	"time"

	"github.com/averline/taskwire/internal/models"
	"github.com/averline/taskwire/internal/services/task"
)

func (s *Server) handleListTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := task.Filter{
		ProjectID: q.Get("project"),
		Status:    models.Status(q.Get("status")),
		Priority:  models.Priority(q.Get("priority")),
	}

	list, err := s.tasks.List(r.Context(), userID(r), f)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleGetTask(w http.ResponseWriter, r *http.Request) {
	t, err := s.tasks.Get(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Status      string `json:"status"`
		Priority    string `json:"priority"`
		DueDate     string `json:"dueDate"`
		ProjectID   string `json:"project"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}

	req := task.CreateRequest{
		Title:       body.Title,
		Description: body.Description,
		Status:      models.Status(body.Status),
		Priority:    models.Priority(body.Priority),
		ProjectID:   body.ProjectID,
	}
	if body.DueDate != "" {
		due, err := parseDueDate(body.DueDate)
		if err != nil {
			respondError(w, err)
			return
		}
		req.DueDate = due
	}

	t, err := s.tasks.Create(r.Context(), userID(r), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, t)
}

func (s *Server) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
		Status      *string `json:"status"`
		Priority    *string `json:"priority"`
		// An empty string clears the due date; absent leaves it alone.
		DueDate *string `json:"dueDate"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}

	req := task.UpdateRequest{
		Title:       body.Title,
		Description: body.Description,
	}
	if body.Status != nil {
		st := models.Status(*body.Status)
		req.Status = &st
	}
	if body.Priority != nil {
		p := models.Priority(*body.Priority)
		req.Priority = &p
	}
	if body.DueDate != nil {
		if *body.DueDate == "" {
			req.ClearDue = true
		} else {
			due, err := parseDueDate(*body.DueDate)
			if err != nil {
				respondError(w, err)
				return
			}
			req.DueDate = due
		}
	}

	t, err := s.tasks.Update(r.Context(), userID(r), r.PathValue("id"), req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	if err := s.tasks.Delete(r.Context(), userID(r), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}

func parseDueDate(raw string) (*time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if due, err := time.Parse(layout, raw); err == nil {
			return &due, nil
		}
	}
	return nil, models.ValidationError("dueDate must be RFC 3339 or YYYY-MM-DD, got %q", raw)
}
