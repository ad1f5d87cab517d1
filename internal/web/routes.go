package web

import (
	"encoding/json"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/iksnae/claude-log-viewer/internal"
)

// Router builds the HTTP routes.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/api/sessions", s.handleSessions)
	r.Get("/api/sessions/{id}", s.handleSession)
	r.Get("/api/status", s.handleStatus)
	r.Get("/api/history", s.handleHistory)
	r.Post("/api/refresh", s.handleRefresh)

	// Generated artifacts (combined transcripts, assets) straight from
	// the project tree.
	fileServer := http.StripPrefix("/files/", http.FileServer(http.Dir(s.projectDir)))
	r.Handle("/files/*", fileServer)

	return r
}

// handleIndex renders the session selector page.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := selectorData{
		Sessions:    s.coord.Index(),
		Status:      s.coord.Status(),
		GeneratedAt: time.Now(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := selectorTemplate.Execute(w, data); err != nil {
		internal.LogError("Failed to render selector page: %v", err)
	}
}

// handleSessions returns the current session index.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.coord.Index()
	if sessions == nil {
		sessions = []internal.Session{}
	}
	writeJSON(w, http.StatusOK, sessions)
}

// handleSession serves one session's generated HTML.
func (s *Server) handleSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var found *internal.Session
	for _, session := range s.coord.Index() {
		if session.ID == id {
			found = &session
			break
		}
	}
	if found == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown session id"})
		return
	}
	if found.HTMLPath == "" {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no generated content for session"})
		return
	}

	path := filepath.Join(s.projectDir, filepath.FromSlash(found.HTMLPath))
	if !strings.HasPrefix(filepath.Clean(path), filepath.Clean(s.projectDir)) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown session id"})
		return
	}
	http.ServeFile(w, r, path)
}

// handleStatus returns the current regeneration job state for UI
// polling.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.coord.Status())
}

// handleHistory returns recent regeneration runs.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	runs := []internal.JobState{}
	if s.history != nil {
		recent, err := s.history.Recent(limit)
		if err != nil {
			internal.LogWarn("Failed to load run history: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "history unavailable"})
			return
		}
		if recent != nil {
			runs = recent
		}
	}
	writeJSON(w, http.StatusOK, runs)
}

// handleRefresh triggers a manual regeneration. The work happens on the
// coordinator's goroutine; the request returns immediately.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.coord.Trigger(s.baseCtx, internal.TriggerManual)
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "accepted"})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}
