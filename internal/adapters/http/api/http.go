// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/tally"
	"github.com/okian/ringside/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Enqueue submits an event. It reports true for an already seen event id.
	Enqueue(ctx context.Context, e model.Event) (bool, error)
	Flush(ctx context.Context) error
	EndMatch(ctx context.Context, winner model.Participant) (types.Feedback, error)
	Snapshot(ctx context.Context, kind model.Kind, p model.Participant) (tally.Snapshot, error)
	Restart(ctx context.Context) error
	SessionID() string
}

// Server wires HTTP routes for the telemetry API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	eventsHandler  *EventsHandler
	sessionHandler *SessionHandler
	tallyHandler   *TallyHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		eventsHandler:  NewEventsHandler(deps),
		sessionHandler: NewSessionHandler(deps),
		tallyHandler:   NewTallyHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("POST /events", MetricsMiddleware(s.eventsHandler.HandlePostEvent, "events"))
	mux.HandleFunc("POST /flush", MetricsMiddleware(s.sessionHandler.HandleFlush, "flush"))
	mux.HandleFunc("POST /match/end", MetricsMiddleware(s.sessionHandler.HandleEndMatch, "match_end"))
	mux.HandleFunc("POST /session/restart", MetricsMiddleware(s.sessionHandler.HandleRestart, "session_restart"))
	mux.HandleFunc("GET /tally/{kind}/{participant}", MetricsMiddleware(s.tallyHandler.HandleGetTally, "tally"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}
