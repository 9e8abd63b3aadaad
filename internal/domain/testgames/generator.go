// Package testgames generates random game records for seeding and load
// testing a leaderboard instance.
package testgames

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"

	"github.com/valyrian-games/leaderboard/internal/domain/model"
)

// Constants for random number generation.
const (
	randomFloatDivisor = 1000000

	minParticipants = 2
	maxParticipants = 6

	existingModelBias = 0.7

	baseScoreMin   = 70
	baseScoreRange = 25
	scoreStepMin   = 3
	scoreStepRange = 5

	maxGameAgeDays = 30
)

// GameTypes a generated record can carry.
var gameTypes = []string{
	"CodeGolf",
	"LogicalReasoning",
	"MathematicalProblemSolving",
	"CreativeWriting",
	"CodeDebug",
	"TextSummarization",
	"QuestionAnswering",
	"FactChecking",
	"DataAnalysis",
	"ImageCaptioning",
}

var modelPrefixes = []string{"TestModel-", "ExperimentalModel-", "Prototype-"}

var greekLetters = []string{
	"Alpha", "Beta", "Gamma", "Delta", "Epsilon", "Zeta", "Eta", "Theta",
	"Iota", "Kappa", "Lambda", "Mu", "Nu", "Xi", "Omicron", "Pi",
	"Rho", "Sigma", "Tau", "Upsilon", "Phi", "Chi", "Psi", "Omega",
}

// Config controls one generation run.
type Config struct {
	// NumParticipants fixes the field size; 0 picks a random size.
	NumParticipants int
	// GameType fixes the game type; empty picks a random one.
	GameType string
	// ExistingModels biases participant selection toward names already on
	// the leaderboard. New names are generated when the pool is empty.
	ExistingModels []string
	// NewModelsOnly disables the existing-model bias entirely.
	NewModelsOnly bool
	// Clock overrides the time source; nil uses time.Now.
	Clock func() time.Time
}

// getRandomFloat returns a random float64 between 0.0 and 1.0 using crypto/rand.
func getRandomFloat() float64 {
	n, _ := rand.Int(rand.Reader, big.NewInt(randomFloatDivisor))
	return float64(n.Int64()) / float64(randomFloatDivisor)
}

// getRandomInt returns a random int in [0, limit) using crypto/rand.
func getRandomInt(limit int) int {
	if limit <= 0 {
		return 0
	}
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(limit)))
	return int(n.Int64())
}

// Generate creates one random game record. Ranks are a shuffled permutation
// without ties; scores decrease with rank so derived statistics stay
// plausible.
func Generate(cfg Config) model.GameRecord {
	numParticipants := cfg.NumParticipants
	if numParticipants < minParticipants {
		numParticipants = minParticipants + getRandomInt(maxParticipants-minParticipants+1)
	}

	participants := pickParticipants(cfg, numParticipants)
	ranks := shuffledRanks(numParticipants)

	baseScore := baseScoreMin + getRandomInt(baseScoreRange)
	scoreStep := scoreStepMin + getRandomInt(scoreStepRange)
	scores := make([]float64, numParticipants)
	for i, rank := range ranks {
		score := baseScore - rank*scoreStep
		if score < 0 {
			score = 0
		}
		scores[i] = float64(score)
	}

	gameType := cfg.GameType
	if gameType == "" {
		gameType = gameTypes[getRandomInt(len(gameTypes))]
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}
	daysAgo := getRandomInt(maxGameAgeDays + 1)
	date := clock().UTC().AddDate(0, 0, -daysAgo).Format(time.RFC3339)

	return model.GameRecord{
		GameID:       "game-" + uuid.NewString()[:8],
		Date:         date,
		GameType:     gameType,
		Participants: participants,
		Ranks:        ranks,
		Scores:       scores,
		Description:  fmt.Sprintf("A randomly generated %s challenge for testing purposes.", gameType),
	}
}

// pickParticipants draws from the existing pool with a fixed bias and fills
// the rest with fresh names, never repeating a name within one game.
func pickParticipants(cfg Config, n int) []string {
	taken := make(map[string]struct{}, n)
	participants := make([]string, 0, n)

	for len(participants) < n {
		var name string
		if !cfg.NewModelsOnly && len(cfg.ExistingModels) > 0 && getRandomFloat() < existingModelBias {
			name = cfg.ExistingModels[getRandomInt(len(cfg.ExistingModels))]
		} else {
			name = newModelName(taken)
		}
		if _, dup := taken[name]; dup {
			name = newModelName(taken)
		}
		taken[name] = struct{}{}
		participants = append(participants, name)
	}
	return participants
}

// newModelName builds a name not present in taken.
func newModelName(taken map[string]struct{}) string {
	base := modelPrefixes[getRandomInt(len(modelPrefixes))] + greekLetters[getRandomInt(len(greekLetters))]
	name := base
	for i := 2; ; i++ {
		if _, dup := taken[name]; !dup {
			return name
		}
		name = fmt.Sprintf("%s-%d", base, i)
	}
}

// shuffledRanks returns a random permutation of 0..n-1 (Fisher-Yates).
func shuffledRanks(n int) []int {
	ranks := make([]int, n)
	for i := range ranks {
		ranks[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := getRandomInt(i + 1)
		ranks[i], ranks[j] = ranks[j], ranks[i]
	}
	return ranks
}
