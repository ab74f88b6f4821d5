package api

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/rflorenc/distribution-workbench/internal/controller"
	"github.com/rflorenc/distribution-workbench/internal/reconcile"
	"github.com/rflorenc/distribution-workbench/internal/view"
)

type commitRequest struct {
	Rows []reconcile.Row `json:"rows"`
}

type commitResponse struct {
	Result reconcile.Result `json:"result"`
	View   view.Table       `json:"view"`
}

// BeginMetadataEdit opens the attribute editor on an object. Keys containing
// slashes must be path-escaped.
func (s *Server) BeginMetadataEdit(w http.ResponseWriter, r *http.Request) {
	key, err := url.PathUnescape(chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid key: "+err.Error())
		return
	}
	s.mutate(w, r, func(c *controller.Controller) error {
		return c.Editor().Begin(key)
	})
}

func (s *Server) CommitMetadata(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	var (
		resp      commitResponse
		commitErr error
	)
	err := s.onLoop(r.Context(), func(c *controller.Controller) {
		resp.Result, commitErr = c.OnAttributesCommitted(req.Rows)
		resp.View = c.Snapshot()
	})
	if err != nil {
		writeFault(w, err)
		return
	}
	if commitErr != nil {
		writeFault(w, commitErr)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

func (s *Server) CancelMetadataEdit(w http.ResponseWriter, r *http.Request) {
	s.mutate(w, r, func(c *controller.Controller) error {
		c.Editor().Cancel()
		return nil
	})
}
