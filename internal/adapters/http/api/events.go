package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/okian/ringside/internal/domain/model"
)

// EventDependencies defines the interface for event processing dependencies
type EventDependencies interface {
	Enqueue(ctx context.Context, e model.Event) (bool, error)
}

// EventsHandler handles event requests
type EventsHandler struct {
	deps EventDependencies
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(deps EventDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// eventRequest mirrors the OpenAPI schema for POST /events.
type eventRequest struct {
	EventID     string `json:"event_id"`
	Kind        string `json:"kind"`
	Category    string `json:"category"`
	Participant *int   `json:"participant"`
	TS          string `json:"ts"`
}

func (e eventRequest) toEvent() (model.Event, error) {
	switch {
	case strings.TrimSpace(e.EventID) == "":
		return model.Event{}, errors.New("missing event_id")
	case strings.TrimSpace(e.Category) == "":
		return model.Event{}, errors.New("missing category")
	case e.Participant == nil:
		return model.Event{}, errors.New("missing participant")
	case strings.TrimSpace(e.TS) == "":
		return model.Event{}, errors.New("missing ts")
	}
	kind, err := model.ParseKind(e.Kind)
	if err != nil {
		return model.Event{}, err
	}
	ts, err := time.Parse(time.RFC3339, e.TS)
	if err != nil {
		return model.Event{}, errors.New("invalid ts; must be RFC3339")
	}
	return model.Event{
		EventID:     e.EventID,
		Kind:        kind,
		Category:    strings.TrimSpace(e.Category),
		Participant: model.Participant(*e.Participant),
		TS:          ts,
	}, nil
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// HandlePostEvent handles POST /events requests
func (h *EventsHandler) HandlePostEvent(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_event"
	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	e, err := req.toEvent()
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}

	duplicate, err := h.deps.Enqueue(r.Context(), e)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted"})
}
