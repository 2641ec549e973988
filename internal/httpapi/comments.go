package httpapi

import (
	"net/http"
)

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	list, err := s.comments.ListByTask(r.Context(), r.PathValue("taskID"))
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, list)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Content string `json:"content"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, err)
		return
	}

	c, err := s.comments.Create(r.Context(), userID(r), r.PathValue("taskID"), body.Content)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, c)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
	if err := s.comments.Delete(r.Context(), userID(r), r.PathValue("id")); err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"id": r.PathValue("id")})
}
