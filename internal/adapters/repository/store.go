// Package repository defines the history/snapshot store contract and its
// file-backed implementation.
package repository

import (
	"context"

	"github.com/valyrian-games/leaderboard/internal/domain/model"
)

// Store provides read/write access to the append-only game history and the
// materialized leaderboard snapshot. Implementations must make writes
// atomic: a reader never observes a half-written record or snapshot.
type Store interface {
	// LoadHistory returns all known game records in discovery order. The
	// replay engine re-sorts by date; discovery order is the stable
	// secondary key for equal or missing dates.
	LoadHistory(ctx context.Context) ([]model.GameRecord, error)

	// LoadSnapshot returns the last persisted snapshot, or nil when none
	// has been written yet.
	LoadSnapshot(ctx context.Context) (*model.Snapshot, error)

	// SaveSnapshot atomically replaces the persisted snapshot.
	SaveSnapshot(ctx context.Context, snapshot model.Snapshot) error

	// AppendGameRecord persists a new record. It fails with
	// ErrDuplicateGame when a record with the same id already exists.
	AppendGameRecord(ctx context.Context, rec model.GameRecord) error

	// OverwriteGameRecord replaces a record regardless of prior existence.
	// Callers must trigger a full recompute afterwards: history order may
	// have changed.
	OverwriteGameRecord(ctx context.Context, rec model.GameRecord) error

	// GameExists reports whether a record with the given id is persisted.
	GameExists(ctx context.Context, gameID string) (bool, error)

	// LoadGame returns one record by id, or ErrNotFound.
	LoadGame(ctx context.Context, gameID string) (*model.GameRecord, error)
}
