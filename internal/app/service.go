// Package app wires the rating engine, the tournament importer, and the
// persistence layer into the operations the transports expose. All writes
// funnel through a single mutex so the append-then-snapshot sequence stays
// atomic with respect to concurrent submissions.
package app

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/valyrian-games/leaderboard/internal/adapters/repository"
	"github.com/valyrian-games/leaderboard/internal/domain/board"
	"github.com/valyrian-games/leaderboard/internal/domain/model"
	"github.com/valyrian-games/leaderboard/internal/ingest"
	"github.com/valyrian-games/leaderboard/pkg/logger"
	"github.com/valyrian-games/leaderboard/pkg/metrics"
)

// Service exposes the leaderboard operations: full recomputation, game
// submission, tournament import, and the read paths.
type Service struct {
	store    repository.Store
	engine   *board.Engine
	importer *ingest.Importer
	log      logger.Logger

	leaderboardLimit int
	historyLimit     int

	mu sync.Mutex // guards the write path: append + snapshot replace
}

// ServiceOption applies a configuration option to the Service.
type ServiceOption func(*Service)

// WithEngine overrides the replay engine.
func WithEngine(engine *board.Engine) ServiceOption {
	return func(s *Service) {
		if engine != nil {
			s.engine = engine
		}
	}
}

// WithImporter overrides the tournament importer.
func WithImporter(importer *ingest.Importer) ServiceOption {
	return func(s *Service) {
		if importer != nil {
			s.importer = importer
		}
	}
}

// WithServiceLogger sets a logger for operational diagnostics.
func WithServiceLogger(log logger.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// WithLeaderboardLimit caps how many models one leaderboard read returns.
func WithLeaderboardLimit(limit int) ServiceOption {
	return func(s *Service) {
		if limit > 0 {
			s.leaderboardLimit = limit
		}
	}
}

// WithHistoryLimit caps how many games one history read returns.
func WithHistoryLimit(limit int) ServiceOption {
	return func(s *Service) {
		if limit > 0 {
			s.historyLimit = limit
		}
	}
}

const (
	defaultLeaderboardLimit = 100
	defaultHistoryLimit     = 50
)

// NewService creates the application service around a store.
func NewService(store repository.Store, opts ...ServiceOption) *Service {
	s := &Service{
		store:            store,
		engine:           board.NewEngine(),
		leaderboardLimit: defaultLeaderboardLimit,
		historyLimit:     defaultHistoryLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.importer == nil {
		s.importer = ingest.NewImporter(store)
	}
	return s
}

// Recompute rebuilds the leaderboard from the full game history and
// persists the resulting snapshot atomically.
func (s *Service) Recompute(ctx context.Context) (model.Snapshot, board.Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recomputeLocked(ctx)
}

func (s *Service) recomputeLocked(ctx context.Context) (model.Snapshot, board.Report, error) {
	started := time.Now()

	history, err := s.store.LoadHistory(ctx)
	if err != nil {
		return model.Snapshot{}, board.Report{}, fmt.Errorf("load history: %w", err)
	}

	snapshot, report := s.engine.Recompute(ctx, history)
	if err := s.store.SaveSnapshot(ctx, snapshot); err != nil {
		return model.Snapshot{}, report, fmt.Errorf("save snapshot: %w", err)
	}

	metrics.RecordRecompute(time.Since(started))
	if s.log != nil {
		s.log.Info(ctx, "leaderboard recomputed",
			logger.Int("games_folded", report.Folded),
			logger.Int("games_skipped", report.Skipped),
			logger.Int("models", len(snapshot.Models)))
	}
	return snapshot, report, nil
}

// SubmitGame validates and appends one game record, then folds it into the
// current snapshot. The incremental fold is only valid for records sorting
// strictly after everything already folded; a backdated or same-dated
// record lands mid-history and forces a full recompute instead. A missing
// id is filled with a fresh uuid, a missing date with the current time.
func (s *Service) SubmitGame(ctx context.Context, rec model.GameRecord) (model.GameRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.GameID == "" {
		rec.GameID = uuid.NewString()
	}
	if rec.Date == "" {
		rec.Date = time.Now().UTC().Format(time.RFC3339)
	}
	if err := rec.Validate(); err != nil {
		return model.GameRecord{}, err
	}

	history, err := s.store.LoadHistory(ctx)
	if err != nil {
		return model.GameRecord{}, fmt.Errorf("load history: %w", err)
	}
	latest := ""
	for i := range history {
		if history[i].Date > latest {
			latest = history[i].Date
		}
	}

	if err := s.store.AppendGameRecord(ctx, rec); err != nil {
		return model.GameRecord{}, fmt.Errorf("append game record: %w", err)
	}

	current, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return model.GameRecord{}, fmt.Errorf("load snapshot: %w", err)
	}
	if current == nil || rec.Date <= latest {
		// Replay keeps the snapshot a pure function of the history; equal
		// dates are included because the stable secondary order (sorted
		// filenames) may place the new record before ones already folded.
		if _, _, err := s.recomputeLocked(ctx); err != nil {
			return model.GameRecord{}, err
		}
		return rec, nil
	}

	updated, err := s.engine.ApplyGame(ctx, *current, rec)
	if err != nil {
		return model.GameRecord{}, fmt.Errorf("apply game: %w", err)
	}
	if err := s.store.SaveSnapshot(ctx, updated); err != nil {
		return model.GameRecord{}, fmt.Errorf("save snapshot: %w", err)
	}

	if s.log != nil {
		s.log.Info(ctx, "game submitted",
			logger.String("game_id", rec.GameID),
			logger.Int("participants", len(rec.Participants)))
	}
	return rec, nil
}

// ImportTournament ingests one tournament result file. A successful write
// triggers a full recomputation: tournament dates are not guaranteed to
// sort after the already-folded history, and a forced overwrite can change
// a record mid-history.
func (s *Service) ImportTournament(ctx context.Context, path string, opts ingest.Options) (ingest.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.importer.ImportFile(ctx, path, opts)
	if err != nil {
		return ingest.Result{}, err
	}

	if result.Status == ingest.StatusImported || result.Status == ingest.StatusOverwritten {
		if _, _, err := s.recomputeLocked(ctx); err != nil {
			return result, err
		}
	}
	return result, nil
}

// Leaderboard returns the current snapshot truncated to limit models.
// A non-positive limit returns the full configured maximum.
func (s *Service) Leaderboard(ctx context.Context, limit int) (model.Snapshot, error) {
	snapshot, err := s.store.LoadSnapshot(ctx)
	if err != nil {
		return model.Snapshot{}, fmt.Errorf("load snapshot: %w", err)
	}
	if snapshot == nil {
		return model.Snapshot{}, ErrNoSnapshot
	}

	if limit <= 0 || limit > s.leaderboardLimit {
		limit = s.leaderboardLimit
	}
	if len(snapshot.Models) > limit {
		snapshot.Models = snapshot.Models[:limit]
	}
	return *snapshot, nil
}

// Game returns one game record by id.
func (s *Service) Game(ctx context.Context, gameID string) (model.GameRecord, error) {
	rec, err := s.store.LoadGame(ctx, gameID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.GameRecord{}, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
		}
		return model.GameRecord{}, fmt.Errorf("load game: %w", err)
	}
	return *rec, nil
}

// Games returns a page of the game history, newest first.
func (s *Service) Games(ctx context.Context, limit, offset int) ([]model.GameRecord, error) {
	history, err := s.store.LoadHistory(ctx)
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}

	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date > history[j].Date
	})

	if offset < 0 {
		offset = 0
	}
	if offset >= len(history) {
		return []model.GameRecord{}, nil
	}
	if limit <= 0 || limit > s.historyLimit {
		limit = s.historyLimit
	}
	end := offset + limit
	if end > len(history) {
		end = len(history)
	}
	return history[offset:end], nil
}
