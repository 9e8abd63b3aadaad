package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/valyrian-games/leaderboard/internal/adapters/http/api"
	"github.com/valyrian-games/leaderboard/internal/adapters/repository"
	"github.com/valyrian-games/leaderboard/internal/app"
	"github.com/valyrian-games/leaderboard/internal/config"
	"github.com/valyrian-games/leaderboard/internal/domain/board"
	"github.com/valyrian-games/leaderboard/internal/domain/trueskill"
	"github.com/valyrian-games/leaderboard/pkg/logger"
)

const (
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// against the custom registry.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := repository.NewFileStore(cfg.GamesDir, cfg.LeaderboardFile,
		repository.WithStoreLogger(logger.Named("store")))
	if err != nil {
		log.Error(ctx, "failed to open data directory", logger.Error(err))
		return
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
		board.WithLogger(logger.Named("board")),
	)

	svc := app.NewService(store,
		app.WithEngine(engine),
		app.WithServiceLogger(logger.Named("service")),
		app.WithLeaderboardLimit(cfg.MaxLeaderboardLimit),
		app.WithHistoryLimit(cfg.MaxHistoryLimit),
	)

	// Fold whatever history is already on disk before serving reads.
	if _, report, err := svc.Recompute(ctx); err != nil {
		log.Error(ctx, "initial recompute failed", logger.Error(err))
		return
	} else if report.Skipped > 0 {
		log.Warn(ctx, "some game records were skipped during startup replay",
			logger.Int("skipped", report.Skipped))
	}

	mux := http.NewServeMux()
	api.NewServer(svc, cfg.MaxLeaderboardLimit, cfg.MaxHistoryLimit).Register(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       config.DefaultReadTimeout,
		WriteTimeout:      config.DefaultWriteTimeout,
		IdleTimeout:       config.DefaultIdleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}
