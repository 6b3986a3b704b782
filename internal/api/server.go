// Package api exposes the control surface over HTTP: health, live run
// status, the final report, and cancellation. It is optional; the engine
// is fully usable without it.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/vk/gridci/internal/ctxlog"
	"github.com/vk/gridci/internal/report"
	"github.com/vk/gridci/internal/scheduler"
)

// Server registers runs and serves their status over HTTP.
type Server struct {
	mu   sync.RWMutex
	runs map[string]*scheduler.Run

	httpServer *http.Server
}

// NewServer creates an empty server.
func NewServer() *Server {
	return &Server{runs: make(map[string]*scheduler.Run)}
}

// Register adds a run to the server and returns its run identifier.
func (s *Server) Register(run *scheduler.Run) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.runs[id] = run
	s.mu.Unlock()
	return id
}

// lookup finds a registered run by its identifier.
func (s *Server) lookup(id string) (*scheduler.Run, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	run, ok := s.runs[id]
	return run, ok
}

// Router builds the chi router for the control surface.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", s.handleHealth)
	r.Get("/runs/{id}", s.handleRunStatus)
	r.Post("/runs/{id}/cancel", s.handleRunCancel)
	return r
}

// Start runs the HTTP server on the given port in the background.
func (s *Server) Start(ctx context.Context, port int) {
	logger := ctxlog.FromContext(ctx)
	addr := fmt.Sprintf(":%d", port)
	s.httpServer = &http.Server{Addr: addr, Handler: s.Router()}

	go func() {
		logger.Info("🩺 Control server starting", "address", fmt.Sprintf("http://localhost%s", addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Control server failed unexpectedly", "error", err)
		}
	}()
}

// Shutdown stops the HTTP server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}

// runStatusResponse is the payload for GET /runs/{id}.
type runStatusResponse struct {
	ID       string                      `json:"id"`
	Finished bool                        `json:"finished"`
	Report   *report.Report              `json:"report,omitempty"`
	Jobs     map[string]report.JobResult `json:"jobs,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintln(w, "OK")
}

func (s *Server) handleRunStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, ok := s.lookup(id)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	resp := runStatusResponse{ID: id}
	select {
	case <-run.Done():
		resp.Finished = true
		resp.Report = run.Wait()
	default:
		resp.Jobs = report.Snapshot(run.Graph())
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		ctxlog.FromContext(r.Context()).Error("Failed to encode run status.", "error", err)
	}
}

func (s *Server) handleRunCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, ok := s.lookup(id)
	if !ok {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}
	run.Cancel()
	w.WriteHeader(http.StatusAccepted)
	fmt.Fprintln(w, "cancellation requested")
}
