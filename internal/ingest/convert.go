package ingest

import (
	"crypto/md5" //nolint:gosec // id suffix only, not a security boundary
	"encoding/hex"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/valyrian-games/leaderboard/internal/domain/model"
)

const gameIDHashLength = 8

// DeriveRanks converts final scores to ranks (0 = best) using standard
// competition ranking: tied contenders share the rank of the first member
// of the tie group, and the next distinct score continues from the current
// position index, leaving a gap after the group.
func DeriveRanks(finalScores map[string]float64) map[string]int {
	type scored struct {
		name  string
		score float64
	}
	ordered := make([]scored, 0, len(finalScores))
	for name, score := range finalScores {
		ordered = append(ordered, scored{name: name, score: score})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].score != ordered[j].score {
			return ordered[i].score > ordered[j].score
		}
		return ordered[i].name < ordered[j].name
	})

	ranks := make(map[string]int, len(ordered))
	currentRank := 0
	for i, s := range ordered {
		if i > 0 && s.score < ordered[i-1].score {
			currentRank = i
		}
		ranks[s.name] = currentRank
	}
	return ranks
}

// GenerateGameID derives a stable id from the contest timestamp plus a
// short hash of the source file name. Re-ingesting the same file yields the
// same id; two contests at the same timestamp from different files do not
// collide.
func GenerateGameID(timestamp, sourceFile string) string {
	base := "valyrian_tournament_" + filenameStem(sourceFile)
	if ts, ok := parseTimestamp(timestamp); ok {
		base = "valyrian_tournament_" + ts.Format("20060102_150405")
	}
	sum := md5.Sum([]byte(filepath.Base(sourceFile))) //nolint:gosec // id suffix only
	return base + "_" + hex.EncodeToString(sum[:])[:gameIDHashLength]
}

// Convert turns a validated tournament result into a canonical game record.
// It fails with ErrMalformedTournament when validation does not pass.
func Convert(t *TournamentResult, sourceFile string) (*model.GameRecord, error) {
	if ok, problems := Validate(t); !ok {
		return nil, fmt.Errorf("%w: %s", ErrMalformedTournament, strings.Join(problems, "; "))
	}

	ranksByName := DeriveRanks(t.FinalScores)
	participants := t.Contenders
	ranks := make([]int, len(participants))
	scores := make([]float64, len(participants))
	for i, name := range participants {
		ranks[i] = ranksByName[name]
		scores[i] = t.FinalScores[name]
	}

	performance := AggregateMetrics(t.DetailedResults)
	quality := ExtractChallengeQuality(t)

	numChallenges := t.TournamentInfo.NumChallenges
	if numChallenges == 0 {
		numChallenges = len(t.Challenges)
	}

	successful := 0
	for _, r := range t.DetailedResults {
		if r.Result.IsCorrect {
			successful++
		}
	}
	overallSuccess := 0.0
	if len(t.DetailedResults) > 0 {
		overallSuccess = float64(successful) / float64(len(t.DetailedResults))
	}

	rec := &model.GameRecord{
		GameID:       GenerateGameID(t.TournamentInfo.Timestamp, sourceFile),
		Date:         normalizeTimestamp(t.TournamentInfo.Timestamp),
		GameType:     "ValyrianGamesTournament",
		Participants: participants,
		Ranks:        ranks,
		Scores:       scores,
		Description: fmt.Sprintf(
			"Valyrian Games coding challenge tournament with %d contenders solving %d peer-created challenges (temperature: %s)",
			len(participants), numChallenges, formatTemperature(t.TournamentInfo.Temperature)),
		AdditionalInfo: &model.AdditionalInfo{
			TournamentDetails: &model.TournamentDetails{
				SourceFile:         filepath.Base(sourceFile),
				NumContenders:      len(participants),
				NumChallenges:      numChallenges,
				Temperature:        t.TournamentInfo.Temperature,
				Seed:               t.TournamentInfo.Seed,
				TotalAttempts:      len(t.DetailedResults),
				OverallSuccessRate: overallSuccess,
			},
			PerformanceMetrics: performance,
			ChallengeQuality:   quality,
			ScoringSystem: map[string]string{
				"correct_solution":        "+1 point",
				"incorrect_solution":      "-1 point",
				"failed_own_challenge":    "-2 points (additional penalty)",
				"solved_others_challenge": "+2 points (bonus)",
			},
			ChallengesSummary: summarizeChallenges(t.Challenges),
		},
	}

	if err := rec.Validate(); err != nil {
		return nil, fmt.Errorf("%w: converted record invalid: %w", ErrMalformedTournament, err)
	}
	return rec, nil
}

// formatTemperature renders the sampling temperature for the description,
// falling back to "unknown" when the source file omitted it.
func formatTemperature(temperature float64) string {
	if temperature == 0 {
		return "unknown"
	}
	return strconv.FormatFloat(temperature, 'g', -1, 64)
}

const promptPreviewLength = 100

func summarizeChallenges(challenges []Challenge) []model.ChallengeSummary {
	if len(challenges) == 0 {
		return nil
	}
	summaries := make([]model.ChallengeSummary, len(challenges))
	for i, ch := range challenges {
		creator := ch.Creator
		if creator == "" {
			creator = "Unknown"
		}
		preview := ch.ChallengePrompt
		if len(preview) > promptPreviewLength {
			preview = preview[:promptPreviewLength] + "..."
		}
		summaries[i] = model.ChallengeSummary{
			Creator:        creator,
			ExpectedAnswer: ch.ExpectedAnswer,
			PromptPreview:  preview,
		}
	}
	return summaries
}

// parseTimestamp accepts the timestamp variants seen in tournament files.
func parseTimestamp(ts string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if parsed, err := time.Parse(layout, ts); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// normalizeTimestamp appends a UTC marker to zone-less timestamps so the
// stored dates sort consistently. Timestamps that already carry a zone are
// left untouched.
func normalizeTimestamp(ts string) string {
	if _, err := time.Parse("2006-01-02T15:04:05", ts); err == nil {
		return ts + "Z"
	}
	return ts
}

func filenameStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func sorted(values []string) []string {
	out := make([]string, len(values))
	copy(out, values)
	sort.Strings(out)
	return out
}
