// Package config loads teamfit settings from defaults, a JSON file and
// TEAMFIT_* environment variables, in that order of precedence.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Log      LogConfig
	Analysis AnalysisConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Port       int
	MCPEnabled bool
}

type StorageConfig struct {
	DataDir string
}

type LogConfig struct {
	Level string
}

type AnalysisConfig struct {
	// CacheSize is the number of memoized analyses; 0 disables the cache.
	CacheSize int
}

type WorkerConfig struct {
	PollInterval string
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port: 4100,
		},
		Storage: StorageConfig{
			DataDir: defaultDataDir(),
		},
		Log: LogConfig{
			Level: "info",
		},
		Analysis: AnalysisConfig{
			CacheSize: 256,
		},
		Worker: WorkerConfig{
			PollInterval: "500ms",
		},
	}
}

// Load reads configuration from the JSON file at
// $XDG_CONFIG_HOME/teamfit/config.json, then applies TEAMFIT_* environment
// overrides. A missing file is not an error.
func Load() (Config, error) {
	return loadWith(newFileBackend(configFilePath()))
}

func loadWith(b ConfigBackend) (Config, error) {
	cfg := defaults()
	if err := applyBackend(&cfg, b); err != nil {
		return Config{}, err
	}
	applyEnvOverrides(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the server cannot start with.
func (c Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Analysis.CacheSize < 0 {
		return fmt.Errorf("analysis.cache_size must not be negative, got %d", c.Analysis.CacheSize)
	}
	if _, err := c.PollInterval(); err != nil {
		return err
	}
	if _, err := c.SlogLevel(); err != nil {
		return err
	}
	return nil
}

// PollInterval parses worker.poll_interval.
func (c Config) PollInterval() (time.Duration, error) {
	d, err := time.ParseDuration(c.Worker.PollInterval)
	if err != nil {
		return 0, fmt.Errorf("worker.poll_interval: %w", err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("worker.poll_interval must be positive, got %s", d)
	}
	return d, nil
}

// SlogLevel maps log.level to a slog level.
func (c Config) SlogLevel() (slog.Level, error) {
	switch strings.ToLower(c.Log.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, fmt.Errorf("log.level: unknown level %q", c.Log.Level)
}

func xdgDir(env string, fallback ...string) string {
	if dir := os.Getenv(env); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(append([]string{home}, fallback...)...)
}

func defaultDataDir() string {
	return filepath.Join(xdgDir("XDG_DATA_HOME", ".local", "share"), "teamfit")
}

func configFilePath() string {
	return filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "teamfit", "config.json")
}
