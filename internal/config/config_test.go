package config_test

import (
	"testing"

	"github.com/valyrian-games/leaderboard/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			convey.So(cfg.DataDir, convey.ShouldEqual, "data")
			convey.So(cfg.RankKey, convey.ShouldEqual, config.RankKeyConservative)
			convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
			convey.So(cfg.MaxHistoryLimit, convey.ShouldEqual, 50)
		})

		convey.Convey("Then the rating environment matches the historical one", func() {
			convey.So(cfg.TrueSkill.InitialMu, convey.ShouldAlmostEqual, 25.0)
			convey.So(cfg.TrueSkill.InitialSigma, convey.ShouldAlmostEqual, 25.0/3.0)
			convey.So(cfg.TrueSkill.Beta, convey.ShouldAlmostEqual, 25.0/6.0)
			convey.So(cfg.TrueSkill.Tau, convey.ShouldAlmostEqual, 25.0/300.0)
			convey.So(cfg.TrueSkill.DrawProbability, convey.ShouldAlmostEqual, 0.0)
		})
	})
}
