package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) ListTasks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Controller.Tasks().List())
}

func (s *Server) GetTask(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	task := s.Controller.Tasks().Get(id)
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	writeJSON(w, http.StatusOK, task.Snapshot())
}
