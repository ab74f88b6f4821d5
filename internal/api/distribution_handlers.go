package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/rflorenc/distribution-workbench/internal/controller"
	"github.com/rflorenc/distribution-workbench/internal/models"
	"github.com/rflorenc/distribution-workbench/internal/view"
)

type distributionRequest struct {
	OriginBucket string   `json:"origin_bucket"`
	Aliases      []string `json:"aliases"`
	Enabled      bool     `json:"enabled"`
}

type selectionRequest struct {
	Row *int `json:"row"`
}

type selectionResponse struct {
	State models.ActionState `json:"state"`
	View  view.Table         `json:"view"`
}

func (s *Server) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	var table view.Table
	if err := s.onLoop(r.Context(), func(c *controller.Controller) { table = c.Snapshot() }); err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

func (s *Server) RefreshDistributions(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(c *controller.Controller) error {
		return c.OnRefreshRequested()
	})
}

func (s *Server) CreateDistribution(w http.ResponseWriter, r *http.Request) {
	var req distributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	s.mutate(w, r, func(c *controller.Controller) error {
		return c.OnCreateRequested(req.OriginBucket, req.Aliases, req.Enabled)
	})
}

func (s *Server) UpdateDistribution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req distributionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	s.mutate(w, r, func(c *controller.Controller) error {
		return c.OnUpdateRequested(id, req.Aliases, req.Enabled)
	})
}

func (s *Server) DeleteDistribution(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mutate(w, r, func(c *controller.Controller) error {
		return c.OnDeleteRequested(id)
	})
}

func (s *Server) SelectRow(w http.ResponseWriter, r *http.Request) {
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	var resp selectionResponse
	err := s.onLoop(r.Context(), func(c *controller.Controller) {
		resp.State = c.OnSelectionChanged(req.Row)
		resp.View = c.Snapshot()
	})
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) DismissError(w http.ResponseWriter, r *http.Request) {
	var (
		dismissed bool
		table     view.Table
	)
	err := s.onLoop(r.Context(), func(c *controller.Controller) {
		dismissed = c.DismissError()
		table = c.Snapshot()
	})
	if err != nil {
		writeFault(w, err)
		return
	}
	if !dismissed {
		writeError(w, http.StatusConflict, "no error is pending")
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// mutate runs action on the UI loop and answers 202 with the resulting
// snapshot, or the refusal.
func (s *Server) mutate(w http.ResponseWriter, r *http.Request, action func(c *controller.Controller) error) {
	var (
		actionErr error
		table     view.Table
	)
	err := s.onLoop(r.Context(), func(c *controller.Controller) {
		actionErr = action(c)
		table = c.Snapshot()
	})
	if err != nil {
		writeFault(w, err)
		return
	}
	if actionErr != nil {
		writeFault(w, actionErr)
		return
	}
	writeJSON(w, http.StatusAccepted, table)
}
