package trueskill

import "errors"

// Sentinel kinds for rating update errors.
var (
	ErrInvalidInput = errors.New("invalid rating input")
)
