// Package api exposes the distribution workbench over HTTP and a websocket
// event stream. Handlers never touch controller state directly; they hop
// onto the UI loop with Server.onLoop.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/rflorenc/distribution-workbench/internal/controller"
	"github.com/rflorenc/distribution-workbench/internal/faults"
	"github.com/rflorenc/distribution-workbench/internal/uiloop"
)

// Server holds shared state for all API handlers.
type Server struct {
	Loop       *uiloop.Loop
	Controller *controller.Controller
	Hub        *Hub
	Gatherer   prometheus.Gatherer
}

// NewRouter builds the chi router with all API routes.
func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(corsMiddleware)

	r.Route("/api", func(r chi.Router) {
		// Distributions
		r.Get("/distributions", s.GetSnapshot)
		r.Post("/distributions", s.CreateDistribution)
		r.Post("/distributions/refresh", s.RefreshDistributions)
		r.Put("/distributions/{id}", s.UpdateDistribution)
		r.Delete("/distributions/{id}", s.DeleteDistribution)

		// Dialog state
		r.Post("/selection", s.SelectRow)
		r.Post("/errors/dismiss", s.DismissError)

		// Attribute editor
		r.Post("/metadata/{key}/edit", s.BeginMetadataEdit)
		r.Post("/metadata/commit", s.CommitMetadata)
		r.Post("/metadata/cancel", s.CancelMetadataEdit)

		// Tasks
		r.Get("/tasks", s.ListTasks)
		r.Get("/tasks/{id}", s.GetTask)
	})

	// WebSocket (outside /api to avoid JSON content-type assumptions)
	r.Get("/ws/events", s.StreamEvents)

	gatherer := s.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// onLoop runs fn on the UI loop and waits for it.
func (s *Server) onLoop(ctx context.Context, fn func(c *controller.Controller)) error {
	return s.Loop.Do(ctx, func() { fn(s.Controller) })
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeFault maps err to a status code by category.
func writeFault(w http.ResponseWriter, err error) {
	if errors.Is(err, uiloop.ErrLoopStopped) || errors.Is(err, context.Canceled) {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	status := http.StatusBadGateway
	switch faults.CategoryOf(err) {
	case faults.PreconditionError:
		status = http.StatusConflict
	case faults.ValidationError:
		status = http.StatusBadRequest
	case faults.NotFoundError:
		status = http.StatusNotFound
	case faults.InternalError:
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, map[string]any{
		"error":    err.Error(),
		"category": faults.CategoryOf(err),
	})
}
