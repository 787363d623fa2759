package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"

	"ecocare/internal/config"
	"ecocare/internal/logger"
	"ecocare/internal/repository/sqlite"
)

func loadConfig(g *GlobalFlags) (*config.Config, error) {
	cfg, err := config.LoadFrom(g.Config)
	if err != nil {
		return nil, err
	}
	if g.DB != "" {
		cfg.Database.Path = g.DB
	}
	return cfg, nil
}

// openStore opens the configured database; opening applies pending migrations.
func openStore(cfg *config.Config) (*sqlite.DB, error) {
	if err := os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}

// commandLogger logs to stderr with --verbose and discards otherwise.
func commandLogger(g *GlobalFlags) *logger.Logger {
	if !g.Verbose {
		return logger.Nop()
	}
	log, err := logger.New(logger.Options{Level: "debug", Format: "console", Output: os.Stderr})
	if err != nil {
		return logger.Nop()
	}
	return log
}

func printJSON(v interface{}) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(raw))
	return nil
}
