// Package config loads the bot configuration from an optional YAML file and
// the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	EnvLogLevel = "SLEEP_BOT_LOG_LEVEL"
	EnvJournal  = "SLEEP_BOT_JOURNAL"
)

var ErrInvalid = errors.New("invalid config")

type Config struct {
	Bot      Bot      `yaml:"bot"`
	Log      Log      `yaml:"log"`
	Dispatch Dispatch `yaml:"dispatch"`
	Journal  Journal  `yaml:"journal"`
}

type Bot struct {
	// Name is matched against the "@name" suffix of commands.
	Name string `yaml:"name"`
}

type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	// File receives log output while the terminal UI owns the screen.
	File string `yaml:"file"`
}

type Dispatch struct {
	Workers int `yaml:"workers"`
}

type Journal struct {
	// Path of the sqlite journal. Empty disables journaling.
	Path string `yaml:"path"`
}

func Default() *Config {
	return &Config{
		Log: Log{
			Level:  "info",
			Format: "text",
			File:   "sleep_bot.log",
		},
		Dispatch: Dispatch{Workers: 16},
	}
}

// Load reads path on top of the defaults, then applies environment
// overrides. An empty path skips the file. The result is not validated so
// callers can apply their own overrides first; call Validate afterwards.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvJournal); v != "" {
		cfg.Journal.Path = v
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if _, err := parseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: log format %q", ErrInvalid, c.Log.Format)
	}
	if strings.TrimSpace(c.Log.File) == "" {
		return fmt.Errorf("%w: log file must not be empty", ErrInvalid)
	}
	if c.Dispatch.Workers <= 0 {
		return fmt.Errorf("%w: dispatch workers must be positive, got %d", ErrInvalid, c.Dispatch.Workers)
	}
	return nil
}

// NewLogger builds the structured logger described by the log section.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Log.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if strings.EqualFold(c.Log.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, s)
	}
	return level, nil
}
