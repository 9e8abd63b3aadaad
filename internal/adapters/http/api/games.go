// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/valyrian-games/leaderboard/internal/adapters/repository"
	"github.com/valyrian-games/leaderboard/internal/app"
	"github.com/valyrian-games/leaderboard/internal/domain/model"
)

// GamesDependencies defines the interface for game history operations.
type GamesDependencies interface {
	Game(ctx context.Context, gameID string) (model.GameRecord, error)
	Games(ctx context.Context, limit, offset int) ([]model.GameRecord, error)
	SubmitGame(ctx context.Context, rec model.GameRecord) (model.GameRecord, error)
}

// GamesHandler handles game history requests.
type GamesHandler struct {
	deps     GamesDependencies
	maxLimit int
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps GamesDependencies, maxLimit int) *GamesHandler {
	return &GamesHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// gamesPage is the paginated read shape for GET /games.
type gamesPage struct {
	Games  []model.GameRecord `json:"games"`
	Limit  int                `json:"limit"`
	Offset int                `json:"offset"`
	Count  int                `json:"count"`
}

// HandleGames dispatches GET /games?limit=N&offset=M and POST /games.
func (h *GamesHandler) HandleGames(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.handleList(w, r)
	case http.MethodPost:
		h.handleSubmit(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *GamesHandler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		if n > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", ErrLimitExceeded)
			return
		}
		limit = n
	}

	offset := 0
	if offsetStr := r.URL.Query().Get("offset"); offsetStr != "" {
		n, err := strconv.Atoi(offsetStr)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
			return
		}
		offset = n
	}

	games, err := h.deps.Games(r.Context(), limit, offset)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, gamesPage{
		Games:  games,
		Limit:  limit,
		Offset: offset,
		Count:  len(games),
	})
}

func (h *GamesHandler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	var rec model.GameRecord
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	submitted, err := h.deps.SubmitGame(r.Context(), rec)
	if err != nil {
		if errors.Is(err, model.ErrMalformedGameRecord) {
			writeError(w, http.StatusBadRequest, "malformed_game", err)
			return
		}
		if errors.Is(err, repository.ErrDuplicateGame) {
			// A duplicate is a reported no-op, not a server fault.
			writeError(w, http.StatusConflict, "duplicate_game", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusCreated, submitted)
}

// HandleGetGame handles GET /games/{id} requests.
func (h *GamesHandler) HandleGetGame(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	gameID := strings.TrimPrefix(r.URL.Path, "/games/")
	if gameID == "" || strings.Contains(gameID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}

	rec, err := h.deps.Game(r.Context(), gameID)
	if err != nil {
		if errors.Is(err, app.ErrGameNotFound) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}
