package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"germanclash/internal/database"
	"germanclash/internal/models"
	"germanclash/internal/repository"
)

// BackupVersion is written into every export and required on import
const BackupVersion = "1"

// BackupData is the content backup: everything an admin authors, no player data
type BackupData struct {
	Version    string               `json:"version"`
	ExportedAt time.Time            `json:"exported_at"`
	Driver     string               `json:"driver"`
	Topics     []models.Topic       `json:"topics"`
	Exercises  []*models.Exercise   `json:"exercises"`
	AppConfig  []models.ConfigEntry `json:"app_config"`
}

// ImportStats counts what an import wrote
type ImportStats struct {
	TopicsCreated    int `json:"topics_created"`
	TopicsUpdated    int `json:"topics_updated"`
	ExercisesCreated int `json:"exercises_created"`
	ExercisesUpdated int `json:"exercises_updated"`
	ConfigEntries    int `json:"config_entries"`
}

// BackupService exports and restores authored content
type BackupService struct {
	db     *database.DB
	config *ConfigService
}

// NewBackupService creates a new backup service. config may be nil; when set its cache
// is refreshed after an import.
func NewBackupService(db *database.DB, config *ConfigService) *BackupService {
	return &BackupService{db: db, config: config}
}

func (s *BackupService) collect(ctx context.Context) (*BackupData, error) {
	backup := &BackupData{
		Version:    BackupVersion,
		ExportedAt: time.Now().UTC(),
		Driver:     s.db.Dialect.DriverName(),
	}

	var err error
	if backup.Topics, err = repository.NewTopicRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export topics: %w", err)
	}
	if backup.Exercises, err = repository.NewExerciseRepository(s.db).ListAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export exercises: %w", err)
	}
	if backup.AppConfig, err = repository.NewAppConfigRepository(s.db).GetAll(ctx); err != nil {
		return nil, fmt.Errorf("failed to export app config: %w", err)
	}
	return backup, nil
}

// Export writes the backup as indented JSON
func (s *BackupService) Export(ctx context.Context, w io.Writer) (*BackupData, error) {
	backup, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(backup); err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return backup, nil
}

// ExportFile writes the backup to a file
func (s *BackupService) ExportFile(ctx context.Context, outputPath string) error {
	log.Println("Starting content export...")

	file, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer file.Close()

	backup, err := s.Export(ctx, file)
	if err != nil {
		return err
	}
	log.Printf("Exported %d topics, %d exercises, %d config entries to %s",
		len(backup.Topics), len(backup.Exercises), len(backup.AppConfig), outputPath)
	return nil
}

// Import restores a backup in one transaction. Topics match by title, exercises by id
// and config entries by key; existing rows are overwritten.
func (s *BackupService) Import(ctx context.Context, r io.Reader) (ImportStats, error) {
	var stats ImportStats

	var backup BackupData
	if err := json.NewDecoder(r).Decode(&backup); err != nil {
		return stats, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if backup.Version != BackupVersion {
		return stats, fmt.Errorf("%w: %q", ErrUnsupportedBackup, backup.Version)
	}
	log.Printf("Backup version: %s, exported at: %s", backup.Version, backup.ExportedAt)

	for _, ex := range backup.Exercises {
		if err := prepare(ex); err != nil {
			return stats, fmt.Errorf("exercise %s: %w", ex.ID, err)
		}
	}

	err := s.db.WithTx(ctx, func(tx *database.Tx) error {
		stats = ImportStats{}

		topics := repository.NewTopicRepository(tx)
		for i := range backup.Topics {
			t := backup.Topics[i]
			if err := normalizeTopic(&t); err != nil {
				return err
			}
			created, err := topics.Upsert(ctx, &t)
			if err != nil {
				return fmt.Errorf("failed to import topic %q: %w", t.Title, err)
			}
			if created {
				stats.TopicsCreated++
			} else {
				stats.TopicsUpdated++
			}
		}

		exercises := repository.NewExerciseRepository(tx)
		for _, ex := range backup.Exercises {
			existing, err := exercises.GetByID(ctx, ex.ID)
			if err != nil {
				return err
			}
			if existing != nil {
				if err := exercises.Update(ctx, ex); err != nil {
					return fmt.Errorf("failed to import exercise %s: %w", ex.ID, err)
				}
				stats.ExercisesUpdated++
				continue
			}
			if err := exercises.Create(ctx, ex); err != nil {
				return fmt.Errorf("failed to import exercise %s: %w", ex.ID, err)
			}
			stats.ExercisesCreated++
		}

		config := repository.NewAppConfigRepository(tx)
		for _, entry := range backup.AppConfig {
			if entry.Key == "" {
				return ErrInvalidConfigKey
			}
			if err := config.Upsert(ctx, entry); err != nil {
				return fmt.Errorf("failed to import config %q: %w", entry.Key, err)
			}
			stats.ConfigEntries++
		}
		return nil
	})
	if err != nil {
		return ImportStats{}, err
	}

	if s.config != nil {
		s.config.Refresh(ctx)
	}
	log.Printf("Import completed: %+v", stats)
	return stats, nil
}

// ImportFile restores a backup from a file
func (s *BackupService) ImportFile(ctx context.Context, inputPath string) (ImportStats, error) {
	log.Printf("Starting content import from %s...", inputPath)
	file, err := os.Open(inputPath)
	if err != nil {
		return ImportStats{}, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()
	return s.Import(ctx, file)
}
