package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config carries every runtime knob of the advisor service.
type Config struct {
	Port         int    `koanf:"port"`
	CatalogPath  string `koanf:"catalog_path"`
	RulesPath    string `koanf:"rules_path"`
	ProgramsPath string `koanf:"programs_path"`

	SimilarityURL        string `koanf:"similarity_url"`
	SimilarityTimeoutSec int    `koanf:"similarity_timeout_sec"`

	OverflowSlack float64 `koanf:"overflow_slack"`
	MinScore      float64 `koanf:"min_score"`
	MaxResults    int     `koanf:"max_results"`
	PlanCredits   float64 `koanf:"plan_credits"`

	LogLevel string `koanf:"log_level"`
}

// DefaultConfig returns the built-in defaults. File and environment
// settings are layered on top of these.
func DefaultConfig() Config {
	return Config{
		Port:                 8080,
		CatalogPath:          "catalog.db",
		SimilarityTimeoutSec: 10,
		OverflowSlack:        2.0,
		MinScore:             15.0,
		MaxResults:           20,
		PlanCredits:          18.0,
		LogLevel:             "info",
	}
}

// LoadConfig layers an optional YAML file and ADVISOR_* environment
// variables over the defaults. A missing config file is tolerated so the
// service can run on defaults and environment alone.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	k := koanf.New(".")

	if path != "" {
		switch _, err := os.Stat(path); {
		case err == nil:
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return cfg, fmt.Errorf("load config file %s: %w", path, err)
			}
		case !errors.Is(err, os.ErrNotExist):
			return cfg, fmt.Errorf("stat config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("ADVISOR_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "ADVISOR_"))
	}), nil); err != nil {
		return cfg, fmt.Errorf("load environment: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.OverflowSlack < 0 {
		return fmt.Errorf("overflow_slack must not be negative, got %v", c.OverflowSlack)
	}
	if c.MaxResults <= 0 {
		return fmt.Errorf("max_results must be positive, got %d", c.MaxResults)
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
