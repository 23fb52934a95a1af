package main

import (
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

func main() {
	configPath := flag.String("config", "advisor.yaml", "path to the YAML config file")
	flag.Parse()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	service, err := buildService(cfg, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      NewServer(service, logger).Router(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("starting course advisor API",
		"port", cfg.Port,
		"majors", len(service.Majors()))
	if err := server.ListenAndServe(); err != nil {
		logger.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// buildService loads catalog, rules and programs and assembles the service.
func buildService(cfg Config, logger *slog.Logger) (*AdvisorService, error) {
	catalog, err := LoadCatalogSQLite(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	logger.Info("catalog loaded", "courses", len(catalog), "path", cfg.CatalogPath)

	var rules []*MajorRule
	if cfg.RulesPath != "" {
		rules, err = LoadRules(cfg.RulesPath)
		if err != nil {
			return nil, fmt.Errorf("load rules: %w", err)
		}
		logger.Info("rules loaded", "path", cfg.RulesPath, "majors", len(rules))
	} else {
		rules = DefaultRules()
		logger.Info("using embedded rules", "majors", len(rules))
	}
	registry, err := NewRuleRegistry(rules)
	if err != nil {
		return nil, fmt.Errorf("build rule registry: %w", err)
	}

	programs := NewProgramIndex(nil, nil)
	if cfg.ProgramsPath != "" {
		programs, err = LoadPrograms(cfg.ProgramsPath)
		if err != nil {
			return nil, fmt.Errorf("load programs: %w", err)
		}
	}

	similarity := NewSimilarityClient(cfg.SimilarityURL,
		time.Duration(cfg.SimilarityTimeoutSec)*time.Second)

	return NewAdvisorService(catalog, registry, similarity, programs, cfg, logger)
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
