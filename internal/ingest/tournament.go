// Package ingest converts foreign tournament-result files into canonical
// game records: rank derivation from raw scores, per-participant metric
// aggregation, deterministic id generation, and duplicate detection.
package ingest

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// TournamentResult mirrors the tournament result file layout produced by
// the contest runner.
type TournamentResult struct {
	TournamentInfo  TournamentInfo     `json:"tournament_info" validate:"required"`
	Contenders      []string           `json:"contenders" validate:"required,min=1,dive,required"`
	FinalScores     map[string]float64 `json:"final_scores" validate:"required,min=1"`
	Challenges      []Challenge        `json:"challenges,omitempty"`
	DetailedResults []DetailedResult   `json:"detailed_results,omitempty"`
}

// TournamentInfo carries contest metadata.
type TournamentInfo struct {
	Timestamp     string  `json:"timestamp" validate:"required"`
	NumChallenges int     `json:"num_challenges,omitempty"`
	Temperature   float64 `json:"temperature,omitempty"`
	Seed          int64   `json:"seed,omitempty"`
}

// Challenge is one peer-created challenge within a tournament.
type Challenge struct {
	Creator         string `json:"creator"`
	ExpectedAnswer  any    `json:"expected_answer,omitempty"`
	ChallengePrompt string `json:"challenge_prompt,omitempty"`
}

// DetailedResult is one solve attempt by one contender.
type DetailedResult struct {
	Solver           string         `json:"solver"`
	ChallengeCreator string         `json:"challenge_creator"`
	ChallengeNumber  int            `json:"challenge_number"`
	Metrics          AttemptMetrics `json:"metrics"`
	Result           AttemptResult  `json:"result"`
}

// AttemptMetrics holds raw usage numbers for one attempt. Error is kept
// loosely typed: source files carry either a boolean flag or a message.
type AttemptMetrics struct {
	TotalTokens int     `json:"total_tokens"`
	TotalCost   float64 `json:"total_cost"`
	TotalTime   float64 `json:"total_time"`
	Error       any     `json:"error,omitempty"`
}

// Errored reports whether the attempt failed; errored attempts are excluded
// from usage sums but still count as attempts.
func (m AttemptMetrics) Errored() bool {
	switch v := m.Error.(type) {
	case nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	default:
		return true
	}
}

// AttemptResult holds the adjudication of one attempt.
type AttemptResult struct {
	IsCorrect bool `json:"is_correct"`
}

var tournamentValidator = validator.New() //nolint:gochecknoglobals // validator instances are designed to be shared

// Validate checks a tournament result for structural problems and returns
// every discrepancy found, not just the first.
func Validate(t *TournamentResult) (bool, []string) {
	var problems []string

	if err := tournamentValidator.Struct(t); err != nil {
		verrs, ok := err.(validator.ValidationErrors) //nolint:errorlint // validator returns the slice directly
		if !ok {
			return false, []string{err.Error()}
		}
		for _, fe := range verrs {
			problems = append(problems, fmt.Sprintf("field %s fails %q", fe.Namespace(), fe.Tag()))
		}
	}

	// Score coverage must match the contender list exactly.
	var missing, extra []string
	for _, c := range t.Contenders {
		if _, ok := t.FinalScores[c]; !ok {
			missing = append(missing, c)
		}
	}
	contenders := make(map[string]struct{}, len(t.Contenders))
	for _, c := range t.Contenders {
		contenders[c] = struct{}{}
	}
	for name := range t.FinalScores {
		if _, ok := contenders[name]; !ok {
			extra = append(extra, name)
		}
	}
	if len(missing) > 0 {
		problems = append(problems, fmt.Sprintf("missing scores for contenders: %s", strings.Join(sorted(missing), ", ")))
	}
	if len(extra) > 0 {
		problems = append(problems, fmt.Sprintf("scores found for non-contenders: %s", strings.Join(sorted(extra), ", ")))
	}

	return len(problems) == 0, problems
}
