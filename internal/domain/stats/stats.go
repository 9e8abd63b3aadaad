// Package stats derives win/loss/draw deltas and running performance
// averages from a single game outcome.
//
// Counting is pairwise against the rest of the field: in an N-way game one
// participant can accumulate up to N-1 win/loss/draw increments. A running
// average folds one new sample into the previous mean without keeping the
// sample history.
package stats

import "github.com/valyrian-games/leaderboard/internal/domain/model"

// Metrics is the slice of a game's performance payload consumed here.
type Metrics struct {
	TotalCost       float64
	TokensPerSecond float64
}

// ApplyOutcome folds one game outcome into a competitor's accumulated
// statistics and returns the updated entry. The participant sits at
// participantIndex within ranks. A nil metrics leaves the running averages
// untouched; it is a no-op, not a zero sample.
func ApplyOutcome(entry model.ModelRating, participantIndex int, ranks []int, metrics *Metrics) model.ModelRating {
	rank := ranks[participantIndex]
	for j, other := range ranks {
		if j == participantIndex {
			continue
		}
		switch {
		case other > rank:
			entry.Wins++
		case other < rank:
			entry.Losses++
		default:
			entry.Draws++
		}
	}

	if metrics != nil {
		entry.AvgTotalCost = runningAverage(entry.AvgTotalCost, entry.GamesPlayed, metrics.TotalCost)
		entry.AvgTokensPerSecond = runningAverage(entry.AvgTokensPerSecond, entry.GamesPlayed, metrics.TokensPerSecond)
	}

	entry.GamesPlayed++
	return entry
}

// runningAverage folds sample x into average a over n previous samples.
func runningAverage(a float64, n int, x float64) float64 {
	if n == 0 {
		return x
	}
	return (a*float64(n) + x) / float64(n+1)
}
