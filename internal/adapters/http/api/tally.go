package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/ringside/internal/domain/model"
	"github.com/okian/ringside/internal/domain/tally"
	"github.com/okian/ringside/internal/domain/types"
)

// TallyDependencies defines what the tally handler needs.
type TallyDependencies interface {
	Snapshot(ctx context.Context, kind model.Kind, p model.Participant) (tally.Snapshot, error)
}

// TallyHandler serves current counts.
type TallyHandler struct {
	deps TallyDependencies
}

// NewTallyHandler creates a new tally handler.
func NewTallyHandler(deps TallyDependencies) *TallyHandler {
	return &TallyHandler{deps: deps}
}

// HandleGetTally handles GET /tally/{kind}/{participant} requests.
func (h *TallyHandler) HandleGetTally(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_tally"
	kind, err := model.ParseKind(r.PathValue("kind"))
	if err != nil {
		writeError(w, WrapKind(op, ErrBadRequest, err))
		return
	}
	n, err := strconv.Atoi(r.PathValue("participant"))
	if err != nil || !model.Participant(n).Valid() {
		writeError(w, WrapKind(op, ErrBadRequest, fmt.Errorf("invalid participant %q", r.PathValue("participant"))))
		return
	}
	p := model.Participant(n)

	snap, err := h.deps.Snapshot(r.Context(), kind, p)
	if err != nil {
		writeError(w, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, types.NewTallyResponse(kind, p, snap))
}
