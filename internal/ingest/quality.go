package ingest

import (
	"fmt"
	"sort"

	"github.com/valyrian-games/leaderboard/internal/domain/model"
)

// Challenges with a success rate below this threshold and at least this
// many attempts are flagged as potentially broken.
const (
	qualityFlagThreshold   = 0.2
	qualityFlagMinAttempts = 3
)

// ExtractChallengeQuality analyzes per-challenge success rates and flags
// challenges whose results look unreliable.
func ExtractChallengeQuality(t *TournamentResult) *model.ChallengeQuality {
	quality := &model.ChallengeQuality{
		TotalChallenges: len(t.Challenges),
		SuccessRates:    make(map[string]model.ChallengeSuccess),
	}

	byChallenge := make(map[int][]DetailedResult)
	for _, r := range t.DetailedResults {
		byChallenge[r.ChallengeNumber] = append(byChallenge[r.ChallengeNumber], r)
	}

	numbers := make([]int, 0, len(byChallenge))
	for n := range byChallenge {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	for _, n := range numbers {
		results := byChallenge[n]
		successful := 0
		for _, r := range results {
			if r.Result.IsCorrect {
				successful++
			}
		}
		rate := float64(successful) / float64(len(results))

		creator := results[0].ChallengeCreator
		if creator == "" {
			creator = "Unknown"
		}
		quality.SuccessRates[fmt.Sprintf("challenge_%d_%s", n, creator)] = model.ChallengeSuccess{
			SuccessRate:        rate,
			SuccessfulAttempts: successful,
			TotalAttempts:      len(results),
			Creator:            creator,
		}

		if rate < qualityFlagThreshold && len(results) >= qualityFlagMinAttempts {
			quality.WarningsDetected++
			quality.FlaggedChallenges = append(quality.FlaggedChallenges, model.FlaggedChallenge{
				ChallengeNumber: n,
				Creator:         creator,
				SuccessRate:     rate,
				Reason:          "Very low success rate - possible quality issue",
			})
		}
	}

	return quality
}
