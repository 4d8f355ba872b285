package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/types"
)

// SessionDependencies defines what the session handlers need.
type SessionDependencies interface {
	Flush(ctx context.Context) error
	EndMatch(ctx context.Context, winner model.Participant) (types.Feedback, error)
	Restart(ctx context.Context) error
	SessionID() string
}

// SessionHandler handles flush, match end and restart requests.
type SessionHandler struct {
	deps SessionDependencies
}

// NewSessionHandler creates a new session handler.
func NewSessionHandler(deps SessionDependencies) *SessionHandler {
	return &SessionHandler{deps: deps}
}

// HandleFlush handles POST /flush requests.
func (h *SessionHandler) HandleFlush(w http.ResponseWriter, r *http.Request) {
	const op = "api.flush"
	if err := h.deps.Flush(r.Context()); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type endMatchRequest struct {
	Winner *int `json:"winner"`
}

// HandleEndMatch handles POST /match/end requests.
func (h *SessionHandler) HandleEndMatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.end_match"
	var req endMatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	if req.Winner == nil {
		writeError(w, WrapKind(op, ErrBadRequest, errors.New("missing winner")))
		return
	}
	winner := model.Participant(*req.Winner)
	if winner != model.NoWinner && !winner.Valid() {
		writeError(w, WrapKind(op, ErrBadRequest, errors.New("winner must be 0, 1 or -1")))
		return
	}

	fb, err := h.deps.EndMatch(r.Context(), winner)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.NewFeedbackResponse(fb))
}

type restartResponse struct {
	SessionID string `json:"session_id"`
}

// HandleRestart handles POST /session/restart requests.
func (h *SessionHandler) HandleRestart(w http.ResponseWriter, r *http.Request) {
	const op = "api.restart"
	if err := h.deps.Restart(r.Context()); err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, restartResponse{SessionID: h.deps.SessionID()})
}
