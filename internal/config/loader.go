package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New())
//  2. file (YAML) if VALYRIAN_CONFIG is set
//  3. env (prefix VALYRIAN_)
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("VALYRIAN_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: VALYRIAN_ADDR, VALYRIAN_DATA_DIR, ...
	// Nested keys use double underscores: VALYRIAN_TRUESKILL__BETA -> trueskill.beta.
	envProvider := env.Provider("VALYRIAN_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "valyrian_")
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Derive dependent paths before validation.
	if cfg.GamesDir == "" {
		cfg.GamesDir = filepath.Join(cfg.DataDir, "games")
	}
	if cfg.LeaderboardFile == "" {
		cfg.LeaderboardFile = filepath.Join(cfg.DataDir, "leaderboard.json")
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate enforces basic invariants on the loaded configuration.
func (c *Config) validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DataDir == "":
		return fmt.Errorf("%w: data_dir must not be empty", ErrInvalidConfig)
	case c.RankKey != RankKeyConservative && c.RankKey != RankKeyMu:
		return fmt.Errorf("%w: rank_key must be %q or %q", ErrInvalidConfig, RankKeyConservative, RankKeyMu)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.MaxHistoryLimit < 1:
		return fmt.Errorf("%w: max_history_limit must be positive", ErrInvalidConfig)
	}
	ts := c.TrueSkill
	switch {
	case ts.InitialSigma <= 0:
		return fmt.Errorf("%w: trueskill.initial_sigma must be positive", ErrInvalidConfig)
	case ts.Beta <= 0:
		return fmt.Errorf("%w: trueskill.beta must be positive", ErrInvalidConfig)
	case ts.Tau < 0:
		return fmt.Errorf("%w: trueskill.tau must not be negative", ErrInvalidConfig)
	case ts.DrawProbability < 0 || ts.DrawProbability >= 1:
		return fmt.Errorf("%w: trueskill.draw_probability must be in [0, 1)", ErrInvalidConfig)
	}
	return nil
}
