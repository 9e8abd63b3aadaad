// Package board maintains the materialized leaderboard as a pure fold over
// the append-only game history.
//
// The engine holds no I/O: callers load history and persist snapshots
// through their own adapters. Replaying the same ordered history from an
// empty state always yields the same models array; only the last_updated
// timestamp varies with the clock.
package board

import (
	"context"
	"sort"
	"time"

	"github.com/valyrian-games/leaderboard/internal/domain/model"
	"github.com/valyrian-games/leaderboard/internal/domain/stats"
	"github.com/valyrian-games/leaderboard/internal/domain/trueskill"
	"github.com/valyrian-games/leaderboard/pkg/logger"
	"github.com/valyrian-games/leaderboard/pkg/metrics"
)

// Engine folds game records through the rating update and the statistics
// aggregator. It is safe for concurrent reads but assumes a single writer;
// serialization belongs to the caller.
type Engine struct {
	params  trueskill.Params
	rankKey string
	clock   func() time.Time
	log     logger.Logger
}

// Option applies a configuration option to the Engine.
type Option func(*Engine)

// WithParams sets the rating environment.
func WithParams(params trueskill.Params) Option {
	return func(e *Engine) {
		e.params = params
	}
}

// WithRankKey selects the snapshot sort key: "conservative_rating" or "mu".
func WithRankKey(key string) Option {
	return func(e *Engine) {
		if key != "" {
			e.rankKey = key
		}
	}
}

// WithClock overrides the clock used for last_updated stamps.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.clock = clock
		}
	}
}

// WithLogger sets a logger for skip diagnostics.
func WithLogger(log logger.Logger) Option {
	return func(e *Engine) {
		e.log = log
	}
}

// NewEngine creates a replay engine with default configuration.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		params:  trueskill.DefaultParams(),
		rankKey: "conservative_rating",
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Params returns the engine's rating environment.
func (e *Engine) Params() trueskill.Params { return e.params }

// Report summarizes one recomputation.
type Report struct {
	Folded  int
	Skipped int
}

// Recompute rebuilds the leaderboard from the full ordered history starting
// at an empty state. Records failing validation are skipped with a
// diagnostic and counted in the report; the fold continues.
func (e *Engine) Recompute(ctx context.Context, history []model.GameRecord) (model.Snapshot, Report) {
	ordered := make([]model.GameRecord, len(history))
	copy(ordered, history)
	// ISO-8601 date strings order chronologically when compared as strings;
	// the stable sort preserves discovery order for equal or missing dates.
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date < ordered[j].Date
	})

	entries := make(map[string]model.ModelRating)
	var report Report
	for i := range ordered {
		if err := e.applyRecord(entries, &ordered[i]); err != nil {
			report.Skipped++
			metrics.RecordRecordSkipped()
			if e.log != nil {
				e.log.Warn(ctx, "skipping game record",
					logger.String("game_id", ordered[i].GameID), logger.Error(err))
			}
			continue
		}
		report.Folded++
		metrics.RecordGameFolded()
	}

	return e.buildSnapshot(entries), report
}

// ApplyGame folds a single new record into an existing snapshot. It is only
// valid when the record sorts strictly after every record already folded
// into the snapshot; out-of-order insertion requires a full Recompute.
func (e *Engine) ApplyGame(ctx context.Context, current model.Snapshot, rec model.GameRecord) (model.Snapshot, error) {
	entries := make(map[string]model.ModelRating, len(current.Models))
	for _, m := range current.Models {
		entries[m.Name] = m
	}
	if err := e.applyRecord(entries, &rec); err != nil {
		return model.Snapshot{}, err
	}
	metrics.RecordGameFolded()
	return e.buildSnapshot(entries), nil
}

// applyRecord runs one record through validation, the rating update, and
// the statistics aggregator, writing updated entries back into the map.
func (e *Engine) applyRecord(entries map[string]model.ModelRating, rec *model.GameRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}

	priors := make([]trueskill.Belief, len(rec.Participants))
	for i, name := range rec.Participants {
		entry, ok := entries[name]
		if !ok {
			// Lazy default prior on first appearance.
			b := e.params.NewBelief()
			entry = model.ModelRating{Name: name, Mu: b.Mu, Sigma: b.Sigma}
		}
		priors[i] = trueskill.Belief{Mu: entry.Mu, Sigma: entry.Sigma}
		entries[name] = entry
	}

	posteriors, err := trueskill.Rate(priors, rec.Ranks, e.params)
	if err != nil {
		return err
	}

	for i, name := range rec.Participants {
		entry := entries[name]
		entry.Mu = posteriors[i].Mu
		entry.Sigma = posteriors[i].Sigma
		entry.ConservativeRating = posteriors[i].ConservativeRating()
		entry = stats.ApplyOutcome(entry, i, rec.Ranks, metricsFor(rec, name))
		entries[name] = entry
	}
	metrics.RecordRatingUpdates(len(rec.Participants))
	return nil
}

// metricsFor extracts the aggregator's view of a participant's performance
// payload. Absent metrics are a no-op for the running averages.
func metricsFor(rec *model.GameRecord, name string) *stats.Metrics {
	if rec.AdditionalInfo == nil || rec.AdditionalInfo.PerformanceMetrics == nil {
		return nil
	}
	pm, ok := rec.AdditionalInfo.PerformanceMetrics[name]
	if !ok {
		return nil
	}
	return &stats.Metrics{TotalCost: pm.TotalCost, TokensPerSecond: pm.TokensPerSecond}
}

// buildSnapshot sorts the entries by the configured key, descending, with
// the name as a deterministic tie-break.
func (e *Engine) buildSnapshot(entries map[string]model.ModelRating) model.Snapshot {
	models := make([]model.ModelRating, 0, len(entries))
	for _, entry := range entries {
		models = append(models, entry)
	}
	sort.Slice(models, func(i, j int) bool {
		ki, kj := e.sortKey(models[i]), e.sortKey(models[j])
		if ki != kj {
			return ki > kj
		}
		return models[i].Name < models[j].Name
	})
	metrics.UpdateLeaderboardModels(len(models))
	return model.Snapshot{LastUpdated: e.clock(), Models: models}
}

func (e *Engine) sortKey(m model.ModelRating) float64 {
	if e.rankKey == "mu" {
		return m.Mu
	}
	return m.ConservativeRating
}
