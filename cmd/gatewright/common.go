package main

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/gatewright/gatewright/internal/config"
	"github.com/gatewright/gatewright/internal/db"
	"github.com/gatewright/gatewright/internal/project"
)

func projectRoot(ctx context.Context) (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return project.FindRoot(ctx, cwd)
}

func stateDir(repoRoot string) string {
	return filepath.Join(repoRoot, ".gatewright")
}

func openDB(repoRoot string) (*sql.DB, func(), error) {
	dir := stateDir(repoRoot)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, func() {}, err
	}
	storeDB, err := db.Open(filepath.Join(dir, "gatewright.db"))
	if err != nil {
		return nil, func() {}, err
	}
	return storeDB, func() { _ = storeDB.Close() }, nil
}

// loadConfig reads the configured file, falling back to the built-in
// defaults when no config has been written yet.
func loadConfig(repoRoot string) (config.Config, error) {
	path := cfgFile
	if path == "" {
		path = config.DefaultPath
	}
	if !filepath.IsAbs(path) {
		path = filepath.Join(repoRoot, path)
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return config.Default(), nil
	}
	return config.Load(path)
}
