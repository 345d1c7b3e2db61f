package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"germanclash/internal/generation"
	"germanclash/internal/models"
	"germanclash/internal/service"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate exercises with the configured language model",
	RunE: func(cmd *cobra.Command, args []string) error {
		level, _ := cmd.Flags().GetInt("level")
		topic, _ := cmd.Flags().GetString("topic")
		count, _ := cmd.Flags().GetInt("count")
		exType, _ := cmd.Flags().GetString("type")
		save, _ := cmd.Flags().GetBool("save")

		db, cfg, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		generator, err := generation.FromConfig(cmd.Context(), cfg.LLM, service.NewContentSource(db), slog.Default())
		if err != nil {
			return fmt.Errorf("configuring generator: %w", err)
		}

		result, err := service.NewExerciseService(db, generator).Generate(cmd.Context(), generation.Request{
			Level: level,
			Topic: topic,
			Count: count,
			Type:  models.ExerciseType(exType),
		}, save)
		if err != nil {
			return err
		}

		for i, ex := range result.Exercises {
			fmt.Printf("%2d. [%s] %s -> %s\n", i+1, ex.Type, summary(ex), ex.CorrectValue())
		}
		if len(result.ValidationErrors) > 0 {
			fmt.Printf("\nSkipped %d invalid items:\n  %s\n", len(result.ValidationErrors), strings.Join(result.ValidationErrors, "\n  "))
		}
		if save {
			fmt.Printf("\nSaved %d exercises\n", len(result.Exercises))
		} else {
			fmt.Println("\nDry run, nothing saved (use --save to store)")
		}
		return nil
	},
}

func summary(ex *models.Exercise) string {
	switch {
	case ex.Statement != "":
		return ex.Statement
	case ex.GermanWord != "":
		return ex.GermanWord
	}
	return ex.Emoji
}

func init() {
	generateCmd.Flags().Int("level", 1, "Level 1-6 (A1-C2)")
	generateCmd.Flags().String("topic", "", "Topic title")
	generateCmd.Flags().Int("count", 10, "Number of exercises to request")
	generateCmd.Flags().String("type", "", "Exercise type (default: mixed)")
	generateCmd.Flags().Bool("save", false, "Store the generated exercises")
	_ = generateCmd.MarkFlagRequired("topic")
}
