package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/valyrian-games/leaderboard/internal/domain/model"
	"github.com/valyrian-games/leaderboard/pkg/logger"
	"github.com/valyrian-games/leaderboard/pkg/metrics"
)

// File permission constants.
const (
	dirPermission  = 0o755
	filePermission = 0o644
)

// FileStore implements Store over a directory of per-game JSON files plus a
// single snapshot file. Writes go through a temp file and rename in the
// same directory, so readers always see complete documents.
type FileStore struct {
	gamesDir     string
	snapshotFile string
	log          logger.Logger
}

// FileOption applies a configuration option to the FileStore.
type FileOption func(*FileStore)

// WithStoreLogger sets a logger for read diagnostics.
func WithStoreLogger(log logger.Logger) FileOption {
	return func(s *FileStore) {
		s.log = log
	}
}

// NewFileStore creates a file-backed store rooted at the given paths,
// creating the games directory when missing.
func NewFileStore(gamesDir, snapshotFile string, opts ...FileOption) (*FileStore, error) {
	s := &FileStore{gamesDir: gamesDir, snapshotFile: snapshotFile}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(gamesDir, dirPermission); err != nil {
		return nil, fmt.Errorf("%w: create games dir: %w", ErrStorageUnavailable, err)
	}
	if dir := filepath.Dir(snapshotFile); dir != "." {
		if err := os.MkdirAll(dir, dirPermission); err != nil {
			return nil, fmt.Errorf("%w: create data dir: %w", ErrStorageUnavailable, err)
		}
	}
	return s, nil
}

// LoadHistory reads every game file in sorted filename order. Unreadable
// files are skipped with a diagnostic; the history itself is not rejected.
func (s *FileStore) LoadHistory(ctx context.Context) ([]model.GameRecord, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreReadLatency(float64(time.Since(start).Milliseconds()))
	}()

	entries, err := os.ReadDir(s.gamesDir)
	if err != nil {
		metrics.RecordStoreError()
		return nil, fmt.Errorf("%w: read games dir: %w", ErrStorageUnavailable, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		names = append(names, entry.Name())
	}
	// Sorted filenames give a stable discovery order across replays.
	sort.Strings(names)

	history := make([]model.GameRecord, 0, len(names))
	for _, name := range names {
		var rec model.GameRecord
		if err := readJSON(filepath.Join(s.gamesDir, name), &rec); err != nil {
			if s.log != nil {
				s.log.Warn(ctx, "could not load game file",
					logger.String("file", name), logger.Error(err))
			}
			continue
		}
		history = append(history, rec)
	}
	metrics.UpdateHistorySize(len(history))
	return history, nil
}

// LoadSnapshot returns the persisted snapshot, or nil when absent.
func (s *FileStore) LoadSnapshot(_ context.Context) (*model.Snapshot, error) {
	start := time.Now()
	defer func() {
		metrics.RecordStoreReadLatency(float64(time.Since(start).Milliseconds()))
	}()

	var snapshot model.Snapshot
	if err := readJSON(s.snapshotFile, &snapshot); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		metrics.RecordStoreError()
		return nil, fmt.Errorf("%w: read snapshot: %w", ErrStorageUnavailable, err)
	}
	return &snapshot, nil
}

// SaveSnapshot atomically replaces the snapshot file.
func (s *FileStore) SaveSnapshot(_ context.Context, snapshot model.Snapshot) error {
	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := writeJSONAtomic(s.snapshotFile, snapshot); err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("%w: write snapshot: %w", ErrStorageUnavailable, err)
	}
	return nil
}

// AppendGameRecord persists a new record, refusing duplicates.
func (s *FileStore) AppendGameRecord(ctx context.Context, rec model.GameRecord) error {
	exists, err := s.GameExists(ctx, rec.GameID)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", ErrDuplicateGame, rec.GameID)
	}
	return s.OverwriteGameRecord(ctx, rec)
}

// OverwriteGameRecord writes a record unconditionally.
func (s *FileStore) OverwriteGameRecord(_ context.Context, rec model.GameRecord) error {
	if !safeGameID(rec.GameID) {
		return fmt.Errorf("%w: %q", ErrInvalidGameID, rec.GameID)
	}
	start := time.Now()
	defer func() {
		metrics.RecordStoreWriteLatency(float64(time.Since(start).Milliseconds()))
	}()

	if err := writeJSONAtomic(s.gamePath(rec.GameID), rec); err != nil {
		metrics.RecordStoreError()
		return fmt.Errorf("%w: write game %s: %w", ErrStorageUnavailable, rec.GameID, err)
	}
	return nil
}

// GameExists reports whether a record file for the id is present.
func (s *FileStore) GameExists(_ context.Context, gameID string) (bool, error) {
	if !safeGameID(gameID) {
		return false, fmt.Errorf("%w: %q", ErrInvalidGameID, gameID)
	}
	_, err := os.Stat(s.gamePath(gameID))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, fmt.Errorf("%w: stat game %s: %w", ErrStorageUnavailable, gameID, err)
}

// LoadGame returns one record by id.
func (s *FileStore) LoadGame(_ context.Context, gameID string) (*model.GameRecord, error) {
	if !safeGameID(gameID) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidGameID, gameID)
	}
	var rec model.GameRecord
	if err := readJSON(s.gamePath(gameID), &rec); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, gameID)
		}
		metrics.RecordStoreError()
		return nil, fmt.Errorf("%w: read game %s: %w", ErrStorageUnavailable, gameID, err)
	}
	return &rec, nil
}

func (s *FileStore) gamePath(gameID string) string {
	return filepath.Join(s.gamesDir, gameID+".json")
}

// safeGameID rejects ids that would resolve outside the games directory
// once joined into a file path.
func safeGameID(id string) bool {
	return id != "" && !strings.Contains(id, "..") && !strings.ContainsAny(id, `/\`)
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// writeJSONAtomic writes v to path via a temp file and rename so concurrent
// readers never observe a partial document.
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, filePermission); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, path)
}
