package repository

import "errors"

// Sentinel kinds for store errors.
var (
	ErrNotFound           = errors.New("game not found")
	ErrDuplicateGame      = errors.New("game already exists")
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrInvalidGameID marks an id that cannot be used as a file name.
	ErrInvalidGameID = errors.New("invalid game id")
)
