// Command admin runs maintenance tasks against the game database: content backups,
// AI exercise generation, topic seeding and ranking cleanup.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"

	"germanclash/internal/config"
	"germanclash/internal/database"
	"germanclash/migrations"
)

var rootCmd = &cobra.Command{
	Use:          "admin",
	Short:        "Maintenance commands for the German learning game",
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(seedTopicsCmd)
	rootCmd.AddCommand(pruneRankingsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// openDatabase loads the environment config, connects and brings the schema up to date
func openDatabase(ctx context.Context) (*database.DB, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("initializing database: %w", err)
	}
	if err := db.RunMigrations(ctx, migrations.Source(cfg.MigrationsPath)); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	log.Printf("Connected to %s database", cfg.DatabaseType)
	return db, cfg, nil
}
