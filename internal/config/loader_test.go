package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/valyrian-games/leaderboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"VALYRIAN_CONFIG",
		"VALYRIAN_ADDR",
		"VALYRIAN_LOG_LEVEL",
		"VALYRIAN_DATA_DIR",
		"VALYRIAN_GAMES_DIR",
		"VALYRIAN_LEADERBOARD_FILE",
		"VALYRIAN_RANK_KEY",
		"VALYRIAN_MAX_LEADERBOARD_LIMIT",
		"VALYRIAN_MAX_HISTORY_LIMIT",
		"VALYRIAN_TRUESKILL__BETA",
		"VALYRIAN_TRUESKILL__TAU",
		"VALYRIAN_TRUESKILL__DRAW_PROBABILITY",
	} {
		_ = os.Unsetenv(key)
	}
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.DataDir, convey.ShouldEqual, "data")
				convey.So(cfg.GamesDir, convey.ShouldEqual, filepath.Join("data", "games"))
				convey.So(cfg.LeaderboardFile, convey.ShouldEqual, filepath.Join("data", "leaderboard.json"))
				convey.So(cfg.RankKey, convey.ShouldEqual, config.RankKeyConservative)
				convey.So(cfg.TrueSkill.InitialMu, convey.ShouldAlmostEqual, 25.0)
				convey.So(cfg.TrueSkill.InitialSigma, convey.ShouldAlmostEqual, 25.0/3.0)
				convey.So(cfg.TrueSkill.Beta, convey.ShouldAlmostEqual, 25.0/6.0)
				convey.So(cfg.TrueSkill.Tau, convey.ShouldAlmostEqual, 25.0/300.0)
				convey.So(cfg.TrueSkill.DrawProbability, convey.ShouldAlmostEqual, 0.0)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			clearConfigEnvVars()
			_ = os.Setenv("VALYRIAN_ADDR", ":8080")
			_ = os.Setenv("VALYRIAN_DATA_DIR", "/var/lib/leaderboard")
			_ = os.Setenv("VALYRIAN_RANK_KEY", "mu")
			_ = os.Setenv("VALYRIAN_TRUESKILL__DRAW_PROBABILITY", "0.1")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.DataDir, convey.ShouldEqual, "/var/lib/leaderboard")
				convey.So(cfg.GamesDir, convey.ShouldEqual, filepath.Join("/var/lib/leaderboard", "games"))
				convey.So(cfg.RankKey, convey.ShouldEqual, config.RankKeyMu)
				convey.So(cfg.TrueSkill.DrawProbability, convey.ShouldAlmostEqual, 0.1)
			})
		})

		convey.Convey("When loading config with a YAML file", func() {
			clearConfigEnvVars()
			dir := t.TempDir()
			path := filepath.Join(dir, "config.yaml")
			yaml := "addr: \":7070\"\nmax_leaderboard_limit: 10\ntrueskill:\n  beta: 5.0\n"
			convey.So(os.WriteFile(path, []byte(yaml), 0o644), convey.ShouldBeNil)
			_ = os.Setenv("VALYRIAN_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 10)
				convey.So(cfg.TrueSkill.Beta, convey.ShouldAlmostEqual, 5.0)
			})

			convey.Convey("And env vars still win over the file", func() {
				_ = os.Setenv("VALYRIAN_ADDR", ":6060")

				cfg, err := config.Load(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":6060")
			})
		})

		convey.Convey("When the rank key is not a supported value", func() {
			clearConfigEnvVars()
			_ = os.Setenv("VALYRIAN_RANK_KEY", "elo")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails with an invalid-config error", func() {
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})

		convey.Convey("When the draw probability is out of range", func() {
			clearConfigEnvVars()
			_ = os.Setenv("VALYRIAN_TRUESKILL__DRAW_PROBABILITY", "1.5")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
		})

		convey.Convey("When the config file does not exist", func() {
			clearConfigEnvVars()
			_ = os.Setenv("VALYRIAN_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)
			convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
		})
	})
}
