package app

import "errors"

var (
	// ErrGameNotFound is returned when no game record has the requested id.
	ErrGameNotFound = errors.New("game not found")
	// ErrNoSnapshot is returned when no leaderboard has been computed yet.
	ErrNoSnapshot = errors.New("no leaderboard snapshot available")
)
