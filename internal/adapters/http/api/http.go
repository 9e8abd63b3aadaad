// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/valyrian-games/leaderboard/internal/domain/board"
	"github.com/valyrian-games/leaderboard/internal/domain/model"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// Leaderboard returns the current snapshot truncated to limit models.
	Leaderboard(ctx context.Context, limit int) (model.Snapshot, error)

	// Game returns one game record by id.
	Game(ctx context.Context, gameID string) (model.GameRecord, error)

	// Games returns a page of the game history, newest first.
	Games(ctx context.Context, limit, offset int) ([]model.GameRecord, error)

	// SubmitGame validates, persists, and folds in one game record.
	SubmitGame(ctx context.Context, rec model.GameRecord) (model.GameRecord, error)

	// Recompute rebuilds the leaderboard from the full game history.
	Recompute(ctx context.Context) (model.Snapshot, board.Report, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	leaderboardHandler *LeaderboardHandler
	gamesHandler       *GamesHandler
	recalculateHandler *RecalculateHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, maxLeaderboardLimit, maxHistoryLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		gamesHandler:       NewGamesHandler(deps, maxHistoryLimit),
		recalculateHandler: NewRecalculateHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleHealth)
	mux.HandleFunc("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("/games", MetricsMiddleware(s.gamesHandler.HandleGames, "games"))
	mux.HandleFunc("/games/", MetricsMiddleware(s.gamesHandler.HandleGetGame, "game"))
	mux.HandleFunc("/recalculate", MetricsMiddleware(s.recalculateHandler.HandleRecalculate, "recalculate"))
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

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
