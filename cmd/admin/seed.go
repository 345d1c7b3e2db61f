package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"germanclash/internal/models"
	"germanclash/internal/service"
)

// topicsFile is the layout of a topics seed file
type topicsFile struct {
	Topics []models.Topic `yaml:"topics"`
}

// loadTopics reads a YAML seed file. Topics without an explicit order keep file order.
func loadTopics(path string) ([]models.Topic, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var file topicsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	for i := range file.Topics {
		if strings.TrimSpace(file.Topics[i].Title) == "" {
			return nil, fmt.Errorf("%s: topic %d has no title", path, i+1)
		}
		if file.Topics[i].OrderPosition == 0 {
			file.Topics[i].OrderPosition = i + 1
		}
	}
	return file.Topics, nil
}

var seedTopicsCmd = &cobra.Command{
	Use:   "seed-topics",
	Short: "Create or update topics from a YAML file",
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("file")
		topics, err := loadTopics(path)
		if err != nil {
			return err
		}

		db, _, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		created, err := service.NewTopicService(db).Seed(cmd.Context(), topics)
		if err != nil {
			return err
		}
		fmt.Printf("Seeded %d topics (%d new)\n", len(topics), created)
		return nil
	},
}

var pruneRankingsCmd = &cobra.Command{
	Use:   "prune-rankings",
	Short: "Delete ranking rows older than the retention period",
	RunE: func(cmd *cobra.Command, args []string) error {
		retention, _ := cmd.Flags().GetDuration("older-than")
		if retention < service.RankingWindow {
			return fmt.Errorf("--older-than must be at least %s, rankings still read that far back", service.RankingWindow)
		}

		db, _, err := openDatabase(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		n, err := service.NewRankingService(db).Prune(cmd.Context(), retention)
		if err != nil {
			return err
		}
		fmt.Printf("Deleted %d ranking rows\n", n)
		return nil
	},
}

func init() {
	seedTopicsCmd.Flags().StringP("file", "f", "seed/topics.yaml", "YAML file with a top-level topics list")
	pruneRankingsCmd.Flags().Duration("older-than", 30*24*time.Hour, "Delete rows older than this")
}
