// Package server provides the HTTP operator surface: status, the event
// stream, and the safety controls.
package server

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/store"
)

// Config holds the server configuration. Store may be nil; the journal
// endpoints then report 404.
type Config struct {
	App   *app.App
	Store *store.Store
}

// Server is the HTTP surface over a running pipeline.
type Server struct {
	config Config
	mux    *http.ServeMux
	start  time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/api/estop", s.handleEstop)
	s.mux.HandleFunc("/api/resume", s.handleResume)
	s.mux.HandleFunc("/api/reset", s.handleReset)
	s.mux.Handle("/api/events", NewEventsHandler(s.config.App.Bus()))

	if s.config.Store != nil {
		s.mux.HandleFunc("/api/sessions", s.handleSessions)
		s.mux.HandleFunc("/api/journal", s.handleJournal)
	}
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, map[string]any{
		"status": "ok",
		"uptime": time.Since(s.start).String(),
	})
}

// handleStatus handles GET requests to /api/status with a full pipeline
// snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	writeJSON(w, s.config.App.Status())
}

// handleEstop handles POST requests to /api/estop. The stop is latched
// before the response is written; a failed wire send still latches and is
// reported alongside.
func (s *Server) handleEstop(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{"stopped": true}
	if err := s.config.App.EmergencyStop(); err != nil {
		log.Printf("emergency stop: %v", err)
		response["error"] = err.Error()
	}
	writeJSON(w, response)
}

// handleResume handles POST requests to /api/resume. Idempotent.
func (s *Server) handleResume(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.config.App.Resume()
	writeJSON(w, map[string]any{"stopped": false})
}

// handleReset handles POST requests to /api/reset: clears detection state
// and starts a fresh session.
func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	s.config.App.Reset()
	writeJSON(w, s.config.App.Status())
}

// handleSessions handles GET requests to /api/sessions.
func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessions, err := s.config.Store.Sessions().List()
	if err != nil {
		log.Printf("list sessions: %v", err)
		http.Error(w, "Failed to list sessions", http.StatusInternalServerError)
		return
	}

	type sessionJSON struct {
		ID        string     `json:"id"`
		Source    string     `json:"source"`
		StartedAt time.Time  `json:"started_at"`
		EndedAt   *time.Time `json:"ended_at,omitempty"`
	}
	out := make([]sessionJSON, 0, len(sessions))
	for _, sess := range sessions {
		out = append(out, sessionJSON{
			ID:        sess.ID,
			Source:    sess.Source,
			StartedAt: sess.StartedAt,
			EndedAt:   sess.EndedAt,
		})
	}
	writeJSON(w, out)
}

// journalLimit caps one journal response.
const journalLimit = 500

// handleJournal handles GET requests to /api/journal?session=ID.
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = s.config.App.Status().SessionID
	}

	events, err := s.config.Store.Events().ListBySession(sessionID, journalLimit)
	if err != nil {
		log.Printf("list journal for %s: %v", sessionID, err)
		http.Error(w, "Failed to list journal", http.StatusInternalServerError)
		return
	}

	type eventJSON struct {
		ID        int64     `json:"id"`
		Kind      string    `json:"kind"`
		Detail    string    `json:"detail,omitempty"`
		CreatedAt time.Time `json:"created_at"`
	}
	out := make([]eventJSON, 0, len(events))
	for _, ev := range events {
		out = append(out, eventJSON{
			ID:        ev.ID,
			Kind:      ev.Kind,
			Detail:    ev.Detail,
			CreatedAt: ev.CreatedAt,
		})
	}
	writeJSON(w, out)
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
