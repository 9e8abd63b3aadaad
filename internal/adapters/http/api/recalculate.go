// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"net/http"

	"github.com/valyrian-games/leaderboard/internal/domain/board"
	"github.com/valyrian-games/leaderboard/internal/domain/model"
)

// RecalculateDependencies defines the interface for full recomputation.
type RecalculateDependencies interface {
	Recompute(ctx context.Context) (model.Snapshot, board.Report, error)
}

// RecalculateHandler handles full leaderboard recomputation requests.
type RecalculateHandler struct {
	deps RecalculateDependencies
}

// NewRecalculateHandler creates a new recalculate handler.
func NewRecalculateHandler(deps RecalculateDependencies) *RecalculateHandler {
	return &RecalculateHandler{deps: deps}
}

// recalculateResponse reports a completed recomputation.
type recalculateResponse struct {
	Status  string `json:"status"`
	Folded  int    `json:"games_folded"`
	Skipped int    `json:"games_skipped"`
	Models  int    `json:"models"`
}

// HandleRecalculate handles POST /recalculate requests: a full replay of
// the game history from an empty state.
func (h *RecalculateHandler) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	snapshot, report, err := h.deps.Recompute(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, recalculateResponse{
		Status:  "ok",
		Folded:  report.Folded,
		Skipped: report.Skipped,
		Models:  len(snapshot.Models),
	})
}
