// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New(...) initializer to build a Config with defaults.
// - External errors must be wrapped via this package's error helpers.
package config

import "time"

// Leaderboard sort keys supported by the replay engine.
const (
	RankKeyConservative = "conservative_rating"
	RankKeyMu           = "mu"
)

// Config contains process configuration. Extend as needed.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// DataDir is the root of the on-disk state.
	DataDir string `koanf:"data_dir"`

	// GamesDir holds one JSON file per game record. Defaults to DataDir/games.
	GamesDir string `koanf:"games_dir"`

	// LeaderboardFile is the materialized snapshot. Defaults to DataDir/leaderboard.json.
	LeaderboardFile string `koanf:"leaderboard_file"`

	// RankKey selects the leaderboard sort key: conservative_rating or mu.
	RankKey string `koanf:"rank_key"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	// MaxHistoryLimit caps GET /games?limit.
	MaxHistoryLimit int `koanf:"max_history_limit"`

	// TrueSkill holds the rating environment parameters.
	TrueSkill TrueSkillConfig `koanf:"trueskill"`
}

// TrueSkillConfig mirrors the rating environment of the reference system.
type TrueSkillConfig struct {
	// InitialMu and InitialSigma form the default prior for unseen competitors.
	InitialMu    float64 `koanf:"initial_mu"`
	InitialSigma float64 `koanf:"initial_sigma"`

	// Beta is the class width: performance variance attributed to chance.
	Beta float64 `koanf:"beta"`

	// Tau is the dynamics factor applied to sigma before every update.
	Tau float64 `koanf:"tau"`

	// DrawProbability sets the margin inside which outcomes count as draws.
	DrawProbability float64 `koanf:"draw_probability"`
}

// Default durations for the HTTP server wiring.
const (
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 30 * time.Second
	DefaultIdleTimeout  = 60 * time.Second
)

// New creates a Config populated with defaults. The TrueSkill values match
// the environment the historical leaderboard was computed with; changing
// them invalidates any persisted snapshot until the next full recompute.
func New() *Config {
	return &Config{
		LogLevel:            "info",
		Addr:                ":9090",
		DataDir:             "data",
		GamesDir:            "",
		LeaderboardFile:     "",
		RankKey:             RankKeyConservative,
		MaxLeaderboardLimit: 100,
		MaxHistoryLimit:     50,
		TrueSkill: TrueSkillConfig{
			InitialMu:       25.0,
			InitialSigma:    25.0 / 3.0,
			Beta:            25.0 / 6.0,
			Tau:             25.0 / 300.0,
			DrawProbability: 0.0,
		},
	}
}
