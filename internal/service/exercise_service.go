package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"germanclash/internal/database"
	"germanclash/internal/generation"
	"germanclash/internal/models"
	"germanclash/internal/repository"
)

// ExerciseService is the admin surface over exercise content
type ExerciseService struct {
	db        *database.DB
	exercises *repository.ExerciseRepository
	generator *generation.Generator
}

// NewExerciseService creates a new exercise service. generator may be nil when no
// language model is configured.
func NewExerciseService(db *database.DB, generator *generation.Generator) *ExerciseService {
	return &ExerciseService{
		db:        db,
		exercises: repository.NewExerciseRepository(db),
		generator: generator,
	}
}

// contentSource feeds the generator from the topic and exercise tables
type contentSource struct {
	topics    *repository.TopicRepository
	exercises *repository.ExerciseRepository
}

// NewContentSource returns the generation.Source backed by the database
func NewContentSource(db *database.DB) generation.Source {
	return contentSource{
		topics:    repository.NewTopicRepository(db),
		exercises: repository.NewExerciseRepository(db),
	}
}

func (c contentSource) TopicDescription(ctx context.Context, title string) (string, error) {
	return c.topics.TopicDescription(ctx, title)
}

func (c contentSource) ExerciseSummaries(ctx context.Context, topic string, level, limit int) ([]models.ExerciseSummary, error) {
	return c.exercises.ListSummaries(ctx, topic, level, limit)
}

// List returns exercises for a level, optionally filtered by topic. Level 0 lists everything.
func (s *ExerciseService) List(ctx context.Context, level int, topic string) ([]*models.Exercise, error) {
	if level == 0 {
		return s.exercises.ListAll(ctx)
	}
	if !validLevel(level) {
		return nil, ErrInvalidLevel
	}
	return s.exercises.ListByLevel(ctx, level, topic)
}

// Get returns one exercise
func (s *ExerciseService) Get(ctx context.Context, id string) (*models.Exercise, error) {
	ex, err := s.exercises.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ex == nil {
		return nil, ErrExerciseNotFound
	}
	return ex, nil
}

// prepare normalizes the type and checks the exercise is playable
func prepare(ex *models.Exercise) error {
	ex.Type = models.NormalizeExerciseType(string(ex.Type))
	if !validLevel(ex.Level) {
		return ErrInvalidLevel
	}
	return ex.Validate()
}

// Create stores a new exercise
func (s *ExerciseService) Create(ctx context.Context, ex *models.Exercise) error {
	if err := prepare(ex); err != nil {
		return err
	}
	ex.ID = ""
	return s.exercises.Create(ctx, ex)
}

// Update replaces an exercise
func (s *ExerciseService) Update(ctx context.Context, ex *models.Exercise) error {
	if err := prepare(ex); err != nil {
		return err
	}
	if err := s.exercises.Update(ctx, ex); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}

// Delete removes an exercise
func (s *ExerciseService) Delete(ctx context.Context, id string) error {
	if err := s.exercises.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrExerciseNotFound
		}
		return err
	}
	return nil
}

// Generate asks the model for a batch of exercises. With save set the surviving
// exercises are stored in one transaction.
func (s *ExerciseService) Generate(ctx context.Context, req generation.Request, save bool) (*generation.Result, error) {
	if s.generator == nil {
		return nil, ErrGenerationDisabled
	}
	req.Type = generation.NormalizeType(string(req.Type))

	result, err := s.generator.Generate(ctx, req)
	if err != nil {
		return nil, err
	}
	if !save {
		return result, nil
	}

	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		repo := repository.NewExerciseRepository(tx)
		for _, ex := range result.Exercises {
			if err := repo.Create(ctx, ex); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to save generated exercises: %w", err)
	}
	log.Printf("Saved %d generated exercises for level %d topic %q", len(result.Exercises), req.Level, req.Topic)
	return result, nil
}

// FetchExercises implements game.Pool
func (s *ExerciseService) FetchExercises(ctx context.Context, level int, topic string) ([]*models.Exercise, error) {
	return s.exercises.FetchExercises(ctx, level, topic)
}
