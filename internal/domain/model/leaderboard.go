package model

import "time"

// ModelRating is one competitor's current belief and accumulated statistics.
// Fields mirror the leaderboard.json shape.
type ModelRating struct {
	Name               string  `json:"name"`
	Mu                 float64 `json:"mu"`
	Sigma              float64 `json:"sigma"`
	ConservativeRating float64 `json:"conservative_rating"`
	GamesPlayed        int     `json:"games_played"`
	Wins               int     `json:"wins"`
	Losses             int     `json:"losses"`
	Draws              int     `json:"draws"`
	AvgTotalCost       float64 `json:"avg_total_cost"`
	AvgTokensPerSecond float64 `json:"avg_tokens_per_second"`
}

// Snapshot is the materialized leaderboard: a pure function of the ordered
// game history, replaced atomically on every recompute or apply.
type Snapshot struct {
	LastUpdated time.Time     `json:"last_updated"`
	Models      []ModelRating `json:"models"`
}

// Find returns the entry for name, or nil when the competitor is unknown.
func (s *Snapshot) Find(name string) *ModelRating {
	for i := range s.Models {
		if s.Models[i].Name == name {
			return &s.Models[i]
		}
	}
	return nil
}
