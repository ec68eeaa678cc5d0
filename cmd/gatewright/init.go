package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gatewright/gatewright/internal/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize gatewright in the current project",
		Long:  "Initialize gatewright by creating the .gatewright state directory, installing a default config, and preparing the session database.",
		RunE: func(cmd *cobra.Command, args []string) error {
			repoRoot, err := os.Getwd()
			if err != nil {
				return err
			}

			dir := stateDir(repoRoot)
			log.Info().Str("dir", dir).Msg("creating state directory")
			if err := os.MkdirAll(filepath.Join(dir, "locks"), 0o755); err != nil {
				return fmt.Errorf("create locks dir: %w", err)
			}

			configPath := filepath.Join(dir, filepath.Base(config.DefaultPath))
			if _, err := os.Stat(configPath); err == nil {
				log.Info().Str("path", configPath).Msg("config already exists, skipping")
			} else {
				log.Info().Str("path", configPath).Msg("installing default config")
				rendered, err := config.DefaultYAML()
				if err != nil {
					return err
				}
				if err := os.WriteFile(configPath, rendered, 0o644); err != nil {
					return fmt.Errorf("write default config: %w", err)
				}
			}

			storeDB, closeFn, err := openDB(repoRoot)
			if err != nil {
				return fmt.Errorf("prepare session database: %w", err)
			}
			defer closeFn()
			if err := storeDB.Ping(); err != nil {
				return fmt.Errorf("verify session database: %w", err)
			}

			log.Info().Msg("gatewright initialized")
			return nil
		},
	}
}
