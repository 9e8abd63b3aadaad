// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// GameRecord is an immutable description of one contest: who played, how
// they ranked, and optional auxiliary metrics. Fields mirror the on-disk
// JSON shape, one file per game.
type GameRecord struct {
	GameID       string   `json:"game_id" validate:"required"`
	Date         string   `json:"date,omitempty"`
	GameType     string   `json:"game_type,omitempty"`
	Participants []string `json:"participants" validate:"required,min=1,dive,required"`
	// Ranks parallel Participants; rank 0 is best, equal values are ties.
	Ranks []int `json:"ranks" validate:"dive,gte=0"`
	// Scores are informational only and never consumed by the rating update.
	Scores         []float64       `json:"scores,omitempty"`
	Description    string          `json:"description,omitempty"`
	AdditionalInfo *AdditionalInfo `json:"additional_info,omitempty"`
}

// AdditionalInfo carries the free-form payload attached by ingestion.
// Only PerformanceMetrics is consumed by the statistics aggregator.
type AdditionalInfo struct {
	TournamentDetails  *TournamentDetails            `json:"tournament_details,omitempty"`
	PerformanceMetrics map[string]PerformanceMetrics `json:"performance_metrics,omitempty"`
	ChallengeQuality   *ChallengeQuality             `json:"challenge_quality,omitempty"`
	ScoringSystem      map[string]string             `json:"scoring_system,omitempty"`
	ChallengesSummary  []ChallengeSummary            `json:"challenges_summary,omitempty"`
}

// PerformanceMetrics aggregates one participant's attempts within a game.
type PerformanceMetrics struct {
	TotalTokens            int     `json:"total_tokens"`
	TotalCost              float64 `json:"total_cost"`
	TotalTime              float64 `json:"total_time"`
	TotalAttempts          int     `json:"total_attempts"`
	SuccessfulAttempts     int     `json:"successful_attempts"`
	ChallengesCreated      int     `json:"challenges_created"`
	OwnChallengesSolved    int     `json:"own_challenges_solved"`
	OthersChallengesSolved int     `json:"others_challenges_solved"`
	TokensPerSecond        float64 `json:"tokens_per_second"`
	TokensPerDollar        float64 `json:"tokens_per_dollar"`
	SuccessRate            float64 `json:"success_rate"`
}

// TournamentDetails preserves provenance of an imported tournament.
type TournamentDetails struct {
	SourceFile         string  `json:"source_file"`
	NumContenders      int     `json:"num_contenders"`
	NumChallenges      int     `json:"num_challenges"`
	Temperature        float64 `json:"temperature,omitempty"`
	Seed               int64   `json:"seed,omitempty"`
	TotalAttempts      int     `json:"total_attempts"`
	OverallSuccessRate float64 `json:"overall_success_rate"`
}

// ChallengeQuality summarizes per-challenge success analysis.
type ChallengeQuality struct {
	WarningsDetected  int                         `json:"warnings_detected"`
	FlaggedChallenges []FlaggedChallenge          `json:"flagged_challenges"`
	TotalChallenges   int                         `json:"total_challenges"`
	SuccessRates      map[string]ChallengeSuccess `json:"success_rates"`
}

// ChallengeSuccess holds per-challenge attempt statistics.
type ChallengeSuccess struct {
	SuccessRate        float64 `json:"success_rate"`
	SuccessfulAttempts int     `json:"successful_attempts"`
	TotalAttempts      int     `json:"total_attempts"`
	Creator            string  `json:"creator"`
}

// FlaggedChallenge marks a challenge whose results look unreliable.
type FlaggedChallenge struct {
	ChallengeNumber int     `json:"challenge_number"`
	Creator         string  `json:"creator"`
	SuccessRate     float64 `json:"success_rate"`
	Reason          string  `json:"reason"`
}

// ChallengeSummary is a short description of one challenge in a tournament.
type ChallengeSummary struct {
	Creator        string `json:"creator"`
	ExpectedAnswer any    `json:"expected_answer,omitempty"`
	PromptPreview  string `json:"prompt_preview,omitempty"`
}

var gameValidator = validator.New() //nolint:gochecknoglobals // validator instances are designed to be shared

// Validate checks the structural invariants a record must satisfy before it
// may touch the store. All discrepancies are reported, not just the first.
func (g *GameRecord) Validate() error {
	var problems []string

	if err := gameValidator.Struct(g); err != nil {
		var verrs validator.ValidationErrors
		if ok := asValidationErrors(err, &verrs); ok {
			for _, fe := range verrs {
				problems = append(problems, fmt.Sprintf("field %s fails %q", fe.Field(), fe.Tag()))
			}
		} else {
			problems = append(problems, err.Error())
		}
	}

	// Ids become file names at the storage boundary; path segments would
	// let a record escape the games directory.
	if g.GameID != "" && (strings.ContainsAny(g.GameID, `/\`) || strings.Contains(g.GameID, "..")) {
		problems = append(problems, fmt.Sprintf("game_id %q must not contain path separators", g.GameID))
	}
	if len(g.Ranks) != len(g.Participants) {
		problems = append(problems, fmt.Sprintf("participants (%d) and ranks (%d) must be the same length",
			len(g.Participants), len(g.Ranks)))
	}
	if g.Scores != nil && len(g.Scores) != len(g.Participants) {
		problems = append(problems, fmt.Sprintf("participants (%d) and scores (%d) must be the same length",
			len(g.Participants), len(g.Scores)))
	}
	if g.Date != "" {
		if _, ok := g.When(); !ok {
			problems = append(problems, fmt.Sprintf("date %q is not a recognized timestamp", g.Date))
		}
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrMalformedGameRecord, strings.Join(problems, "; "))
	}
	return nil
}

// When parses the record date. The second return is false when the date is
// missing or unparsable; such records keep their discovery order in replay.
func (g *GameRecord) When() (time.Time, bool) {
	if g.Date == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if ts, err := time.Parse(layout, g.Date); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// asValidationErrors is a tiny errors.As wrapper kept separate so the
// Validate flow reads linearly.
func asValidationErrors(err error, target *validator.ValidationErrors) bool {
	verrs, ok := err.(validator.ValidationErrors) //nolint:errorlint // validator returns the slice directly
	if ok {
		*target = verrs
	}
	return ok
}
