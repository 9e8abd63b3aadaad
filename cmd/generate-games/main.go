// Command generate-games creates random game records for exercising a
// leaderboard instance. Records print to stdout by default; -submit folds
// them straight into the configured data directory.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/valyrian-games/leaderboard/internal/adapters/repository"
	"github.com/valyrian-games/leaderboard/internal/app"
	"github.com/valyrian-games/leaderboard/internal/config"
	"github.com/valyrian-games/leaderboard/internal/domain/board"
	"github.com/valyrian-games/leaderboard/internal/domain/testgames"
	"github.com/valyrian-games/leaderboard/internal/domain/trueskill"
	"github.com/valyrian-games/leaderboard/pkg/logger"
)

func main() {
	var (
		count         = flag.Int("count", 1, "Number of games to generate")
		participants  = flag.Int("participants", 0, "Number of participants per game (0 = random 2-6)")
		gameType      = flag.String("game-type", "", "Game type (default: random)")
		newModelsOnly = flag.Bool("new-models-only", false, "Never reuse names already on the leaderboard")
		submit        = flag.Bool("submit", false, "Submit generated games to the configured data directory")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	genCfg := testgames.Config{
		NumParticipants: *participants,
		GameType:        *gameType,
		NewModelsOnly:   *newModelsOnly,
	}

	if !*submit {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		for i := 0; i < *count; i++ {
			if err := enc.Encode(testgames.Generate(genCfg)); err != nil {
				os.Stderr.WriteString("failed to encode game: " + err.Error() + "\n")
				os.Exit(1)
			}
		}
		return
	}

	store, err := repository.NewFileStore(cfg.GamesDir, cfg.LeaderboardFile)
	if err != nil {
		os.Stderr.WriteString("failed to open data directory: " + err.Error() + "\n")
		os.Exit(1)
	}

	engine := board.NewEngine(
		board.WithParams(trueskill.Params{
			InitialMu:       cfg.TrueSkill.InitialMu,
			InitialSigma:    cfg.TrueSkill.InitialSigma,
			Beta:            cfg.TrueSkill.Beta,
			Tau:             cfg.TrueSkill.Tau,
			DrawProbability: cfg.TrueSkill.DrawProbability,
		}),
		board.WithRankKey(cfg.RankKey),
	)
	svc := app.NewService(store,
		app.WithEngine(engine),
		app.WithServiceLogger(logger.Named("service")))

	// Seed the existing-model pool from the persisted snapshot so generated
	// games mostly involve known competitors.
	if snapshot, err := svc.Leaderboard(ctx, cfg.MaxLeaderboardLimit); err == nil {
		for _, m := range snapshot.Models {
			genCfg.ExistingModels = append(genCfg.ExistingModels, m.Name)
		}
	}

	for i := 0; i < *count; i++ {
		rec, err := svc.SubmitGame(ctx, testgames.Generate(genCfg))
		if err != nil {
			os.Stderr.WriteString("failed to submit game: " + err.Error() + "\n")
			os.Exit(1)
		}
		fmt.Printf("submitted %s (%s, %d participants)\n",
			rec.GameID, rec.GameType, len(rec.Participants))
	}
}
