package model

import "errors"

// Sentinel kinds for game record errors.
var (
	ErrMalformedGameRecord = errors.New("malformed game record")
)
