package ingest

import "github.com/valyrian-games/leaderboard/internal/domain/model"

// AggregateMetrics sums usage across each participant's attempts. Errored
// attempts are excluded from the token/cost/time sums but still count as
// attempts. Derived ratios fall back to 0 when their denominator is 0.
func AggregateMetrics(results []DetailedResult) map[string]model.PerformanceMetrics {
	if len(results) == 0 {
		return nil
	}

	aggregated := make(map[string]model.PerformanceMetrics)
	for _, r := range results {
		if r.Solver == "" {
			continue
		}
		pm := aggregated[r.Solver]

		if !r.Metrics.Errored() {
			pm.TotalTokens += r.Metrics.TotalTokens
			pm.TotalCost += r.Metrics.TotalCost
			pm.TotalTime += r.Metrics.TotalTime
		}
		pm.TotalAttempts++

		if r.Result.IsCorrect {
			pm.SuccessfulAttempts++
			if r.Solver == r.ChallengeCreator {
				pm.OwnChallengesSolved++
			} else {
				pm.OthersChallengesSolved++
			}
		}

		aggregated[r.Solver] = pm
	}

	// A contender that created at least one challenge gets credit for it.
	creators := make(map[string]struct{})
	for _, r := range results {
		if r.ChallengeCreator != "" {
			creators[r.ChallengeCreator] = struct{}{}
		}
	}
	for creator := range creators {
		pm := aggregated[creator]
		pm.ChallengesCreated++
		aggregated[creator] = pm
	}

	for name, pm := range aggregated {
		if pm.TotalTime > 0 {
			pm.TokensPerSecond = float64(pm.TotalTokens) / pm.TotalTime
		}
		if pm.TotalCost > 0 {
			pm.TokensPerDollar = float64(pm.TotalTokens) / pm.TotalCost
		}
		if pm.TotalAttempts > 0 {
			pm.SuccessRate = float64(pm.SuccessfulAttempts) / float64(pm.TotalAttempts)
		}
		aggregated[name] = pm
	}

	return aggregated
}
