package ingest

import "errors"

// Sentinel kinds for ingestion errors.
var (
	ErrMalformedTournament = errors.New("malformed tournament result")
)
