package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/valyrian-games/leaderboard/internal/adapters/repository"
	"github.com/valyrian-games/leaderboard/internal/domain/model"
	"github.com/valyrian-games/leaderboard/pkg/logger"
	"github.com/valyrian-games/leaderboard/pkg/metrics"
)

// Status classifies the outcome of one tournament import.
type Status string

// Import outcomes. A duplicate is a reported no-op, not an error.
const (
	StatusImported    Status = "imported"
	StatusDuplicate   Status = "duplicate"
	StatusOverwritten Status = "overwritten"
	StatusDryRun      Status = "dry-run"
)

// Options control one import run.
type Options struct {
	// Force overwrites an existing record with the same id. The caller must
	// follow up with a full recompute: history order may have changed.
	Force bool
	// DryRun converts and validates without touching the store.
	DryRun bool
}

// Result reports one import outcome together with the converted record.
type Result struct {
	Status Status
	Record *model.GameRecord
}

// Importer converts tournament files and writes the resulting records,
// checking the store for duplicates before writing.
type Importer struct {
	store repository.Store
	log   logger.Logger
}

// ImporterOption applies a configuration option to the Importer.
type ImporterOption func(*Importer)

// WithLogger sets a logger for import diagnostics.
func WithLogger(log logger.Logger) ImporterOption {
	return func(im *Importer) {
		im.log = log
	}
}

// NewImporter creates an importer writing through the given store.
func NewImporter(store repository.Store, opts ...ImporterOption) *Importer {
	im := &Importer{store: store}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// ImportFile loads, validates, converts, and persists one tournament file.
// Validation failures return ErrMalformedTournament before any record is
// produced; duplicates are reported, not failed.
func (im *Importer) ImportFile(ctx context.Context, path string, opts Options) (Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, fmt.Errorf("read tournament file %s: %w", path, err)
	}

	var tournament TournamentResult
	if err := json.Unmarshal(data, &tournament); err != nil {
		metrics.RecordTournamentInvalid()
		return Result{}, fmt.Errorf("%w: %s: %w", ErrMalformedTournament, path, err)
	}

	rec, err := Convert(&tournament, path)
	if err != nil {
		metrics.RecordTournamentInvalid()
		return Result{}, err
	}

	exists, err := im.store.GameExists(ctx, rec.GameID)
	if err != nil {
		return Result{}, err
	}

	if exists && !opts.Force {
		metrics.RecordTournamentDuplicate()
		if im.log != nil {
			im.log.Info(ctx, "tournament already imported, skipping",
				logger.String("game_id", rec.GameID))
		}
		return Result{Status: StatusDuplicate, Record: rec}, nil
	}

	if opts.DryRun {
		return Result{Status: StatusDryRun, Record: rec}, nil
	}

	if exists {
		if err := im.store.OverwriteGameRecord(ctx, *rec); err != nil {
			return Result{}, err
		}
		metrics.RecordTournamentImported()
		return Result{Status: StatusOverwritten, Record: rec}, nil
	}

	if err := im.store.AppendGameRecord(ctx, *rec); err != nil {
		return Result{}, err
	}
	metrics.RecordTournamentImported()
	return Result{Status: StatusImported, Record: rec}, nil
}
