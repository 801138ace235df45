// Package config loads settings from an optional YAML file with environment
// overrides. Every field has a usable default so the app runs with no config
// at all.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "TASKCYCLE_"

type Config struct {
	DBPath     string
	LogLevel   string
	LogFormat  string
	LogFile    string
	HistoryCap int

	OverdueSweepEvery time.Duration
	GoalSweepEvery    time.Duration
}

// fileConfig is the YAML shape. Durations come in as strings so the file can
// say "30s" or "1h".
type fileConfig struct {
	DBPath            *string `yaml:"db_path"`
	LogLevel          *string `yaml:"log_level"`
	LogFormat         *string `yaml:"log_format"`
	LogFile           *string `yaml:"log_file"`
	HistoryCap        *int    `yaml:"history_cap"`
	OverdueSweepEvery *string `yaml:"overdue_sweep_every"`
	GoalSweepEvery    *string `yaml:"goal_sweep_every"`
}

func Default() Config {
	dataDir := defaultDataDir()
	return Config{
		DBPath:            filepath.Join(dataDir, "taskcycle.db"),
		LogLevel:          "info",
		LogFormat:         "json",
		LogFile:           filepath.Join(dataDir, "taskcycle.log"),
		HistoryCap:        100,
		OverdueSweepEvery: time.Minute,
		GoalSweepEvery:    time.Hour,
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(home, ".taskcycle")
}

// Load reads path (when non-empty and present), then applies environment
// overrides on top. A missing file is not an error; a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// fall through to env overrides
		case err != nil:
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		default:
			var fc fileConfig
			if err := yaml.Unmarshal(raw, &fc); err != nil {
				return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
			}
			if err := fc.applyTo(&cfg); err != nil {
				return Config{}, fmt.Errorf("config: %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (fc fileConfig) applyTo(cfg *Config) error {
	if fc.DBPath != nil {
		cfg.DBPath = *fc.DBPath
	}
	if fc.LogLevel != nil {
		cfg.LogLevel = *fc.LogLevel
	}
	if fc.LogFormat != nil {
		cfg.LogFormat = *fc.LogFormat
	}
	if fc.LogFile != nil {
		cfg.LogFile = *fc.LogFile
	}
	if fc.HistoryCap != nil {
		cfg.HistoryCap = *fc.HistoryCap
	}
	if fc.OverdueSweepEvery != nil {
		d, err := time.ParseDuration(*fc.OverdueSweepEvery)
		if err != nil {
			return fmt.Errorf("overdue_sweep_every: %w", err)
		}
		cfg.OverdueSweepEvery = d
	}
	if fc.GoalSweepEvery != nil {
		d, err := time.ParseDuration(*fc.GoalSweepEvery)
		if err != nil {
			return fmt.Errorf("goal_sweep_every: %w", err)
		}
		cfg.GoalSweepEvery = d
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(envPrefix + "DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(envPrefix + "LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(envPrefix + "LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}
	if v := os.Getenv(envPrefix + "LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv(envPrefix + "HISTORY_CAP"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HistoryCap = n
		}
	}
	if v := os.Getenv(envPrefix + "OVERDUE_SWEEP_EVERY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.OverdueSweepEvery = d
		}
	}
	if v := os.Getenv(envPrefix + "GOAL_SWEEP_EVERY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.GoalSweepEvery = d
		}
	}
}

func (c Config) validate() error {
	if c.DBPath == "" {
		return errors.New("config: db_path is required")
	}
	if c.HistoryCap <= 0 {
		return fmt.Errorf("config: history_cap must be positive, got %d", c.HistoryCap)
	}
	if c.OverdueSweepEvery <= 0 {
		return fmt.Errorf("config: overdue_sweep_every must be positive, got %s", c.OverdueSweepEvery)
	}
	if c.GoalSweepEvery <= 0 {
		return fmt.Errorf("config: goal_sweep_every must be positive, got %s", c.GoalSweepEvery)
	}
	return nil
}

// EnsureDirs creates the parent directories the config points at.
func (c Config) EnsureDirs() error {
	for _, p := range []string{c.DBPath, c.LogFile} {
		if p == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("config: create dir for %s: %w", p, err)
		}
	}
	return nil
}
