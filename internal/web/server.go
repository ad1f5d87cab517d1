// Package web serves the session selector UI and the JSON API over a
// loopback HTTP listener. Handlers are read-only toward the filesystem;
// all mutation flows through the coordinator.
package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/iksnae/claude-log-viewer/internal"
)

// Server hosts the selector UI, the JSON API, and static serving of
// generated artifacts.
type Server struct {
	baseCtx    context.Context
	projectDir string
	coord      *internal.Coordinator
	history    *internal.History // optional
	httpServer *http.Server
}

// New creates a server bound to addr. ctx is the application lifetime
// context: regenerations triggered over HTTP outlive their request but
// stop with the process. history may be nil, in which case the history
// endpoint returns an empty list.
func New(ctx context.Context, addr, projectDir string, coord *internal.Coordinator, history *internal.History) *Server {
	s := &Server{
		baseCtx:    ctx,
		projectDir: projectDir,
		coord:      coord,
		history:    history,
	}
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Start blocks serving requests until Shutdown is called. A listen
// failure (e.g. port already in use) is returned and is fatal at
// startup.
func (s *Server) Start() error {
	internal.LogInfo("Server running at http://%s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting new connections and drains in-flight
// requests, bounded by the given context.
func (s *Server) Shutdown(ctx context.Context) error {
	internal.LogInfo("Shutting down server...")
	return s.httpServer.Shutdown(ctx)
}
