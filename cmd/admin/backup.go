package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"germanclash/internal/service"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export topics, exercises and app config to a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		if output == "" {
			output = fmt.Sprintf("backup_%s.json", time.Now().Format("20060102_150405"))
		}
		if dir := filepath.Dir(output); dir != "." && dir != "" {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("creating output directory: %w", err)
			}
		}

		db, _, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		if err := service.NewBackupService(db, nil).ExportFile(cmd.Context(), output); err != nil {
			return err
		}
		fmt.Printf("Backup written to %s\n", output)
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a JSON backup, overwriting matching topics, exercises and config",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		db, _, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := service.NewBackupService(db, nil).ImportFile(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Topics: %d created, %d updated\n", stats.TopicsCreated, stats.TopicsUpdated)
		fmt.Printf("Exercises: %d created, %d updated\n", stats.ExercisesCreated, stats.ExercisesUpdated)
		fmt.Printf("Config entries: %d\n", stats.ConfigEntries)
		return nil
	},
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "Output file path (default: backup_YYYYMMDD_HHMMSS.json)")
}
