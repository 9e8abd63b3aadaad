// Command import-tournaments ingests tournament result files into the game
// history and recomputes the leaderboard from the updated history.
//
// Usage:
//
//	import-tournaments [flags] <file-or-directory> [...]
//
// Directories are scanned for *.json files; each file is converted into a
// canonical game record. Already-imported tournaments are skipped unless
// -force is given.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/valyrian-games/leaderboard/internal/adapters/repository"
	"github.com/valyrian-games/leaderboard/internal/app"
	"github.com/valyrian-games/leaderboard/internal/config"
	"github.com/valyrian-games/leaderboard/internal/domain/board"
	"github.com/valyrian-games/leaderboard/internal/domain/trueskill"
	"github.com/valyrian-games/leaderboard/internal/ingest"
	"github.com/valyrian-games/leaderboard/pkg/logger"
)

func main() {
	var (
		force   = flag.Bool("force", false, "Overwrite already-imported tournaments")
		dryRun  = flag.Bool("dry-run", false, "Validate and convert without writing anything")
		verbose = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Usage: %s [flags] <file-or-directory> [...]\n\nFlags:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}
	log := logger.Get()

	ctx := context.Background()

	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	paths, err := collectFiles(flag.Args())
	if err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(1)
	}
	if len(paths) == 0 {
		os.Stderr.WriteString("no tournament files found\n")
		os.Exit(1)
	}

	store, err := repository.NewFileStore(cfg.GamesDir, cfg.LeaderboardFile,
		repository.WithStoreLogger(logger.Named("store")))
	if err != nil {
		log.Error(ctx, "failed to open data directory", logger.Error(err))
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

	importer := ingest.NewImporter(store, ingest.WithLogger(logger.Named("ingest")))
	opts := ingest.Options{Force: *force, DryRun: *dryRun}

	var imported, overwritten, duplicates, failed int
	for _, path := range paths {
		result, err := importer.ImportFile(ctx, path, opts)
		if err != nil {
			failed++
			log.Error(ctx, "import failed", logger.String("file", path), logger.Error(err))
			continue
		}
		log.Debug(ctx, "tournament processed",
			logger.String("file", path),
			logger.String("status", string(result.Status)),
			logger.String("game_id", result.Record.GameID))
		switch result.Status {
		case ingest.StatusImported:
			imported++
		case ingest.StatusOverwritten:
			overwritten++
		case ingest.StatusDuplicate:
			duplicates++
		case ingest.StatusDryRun:
			imported++ // counts as would-import
		}
	}

	if !*dryRun && imported+overwritten > 0 {
		svc := app.NewService(store, app.WithEngine(engine),
			app.WithServiceLogger(logger.Named("service")))
		snapshot, report, err := svc.Recompute(ctx)
		if err != nil {
			log.Error(ctx, "leaderboard recompute failed", logger.Error(err))
			os.Exit(1)
		}
		log.Info(ctx, "leaderboard recomputed",
			logger.Int("games_folded", report.Folded),
			logger.Int("games_skipped", report.Skipped),
			logger.Int("models", len(snapshot.Models)))
	}

	fmt.Printf("processed %d file(s): %d imported, %d overwritten, %d duplicate(s), %d failed\n",
		len(paths), imported, overwritten, duplicates, failed)
	if failed > 0 {
		os.Exit(1)
	}
}

// collectFiles expands arguments into a sorted list of JSON files.
// Directories contribute their *.json entries, non-recursively.
func collectFiles(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot list %s: %w", arg, err)
		}
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
				continue
			}
			paths = append(paths, filepath.Join(arg, entry.Name()))
		}
	}
	sort.Strings(paths)
	return paths, nil
}
