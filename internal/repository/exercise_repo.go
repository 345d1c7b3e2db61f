package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"germanclash/internal/database"
	"germanclash/internal/models"
)

const exerciseColumns = `id, level, type, topic, statement, correct_answer,
	COALESCE(incorrect_answer_1, ''), COALESCE(incorrect_answer_2, ''), COALESCE(incorrect_answer_3, ''),
	COALESCE(incorrect_answer_1_explanation, ''), COALESCE(incorrect_answer_2_explanation, ''),
	COALESCE(incorrect_answer_3_explanation, ''),
	COALESCE(german_word, ''), COALESCE(spanish_translation, ''), COALESCE(emoji, ''), COALESCE(hint, ''),
	word_translations, created_at, updated_at`

// ExerciseRepository handles database operations for exercise content
type ExerciseRepository struct {
	db database.DBTX
}

// NewExerciseRepository creates a new exercise repository
func NewExerciseRepository(db database.DBTX) *ExerciseRepository {
	return &ExerciseRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExercise(row rowScanner) (*models.Exercise, error) {
	ex := &models.Exercise{}
	var exType string
	err := row.Scan(
		&ex.ID, &ex.Level, &exType, &ex.Topic, &ex.Statement, &ex.CorrectAnswer,
		&ex.IncorrectAnswer1, &ex.IncorrectAnswer2, &ex.IncorrectAnswer3,
		&ex.IncorrectAnswer1Explanation, &ex.IncorrectAnswer2Explanation, &ex.IncorrectAnswer3Explanation,
		&ex.GermanWord, &ex.SpanishTranslation, &ex.Emoji, &ex.Hint,
		&ex.WordTranslations, &ex.CreatedAt, &ex.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	ex.Type = models.ExerciseType(exType)
	return ex, nil
}

func (r *ExerciseRepository) list(ctx context.Context, query string, args ...any) ([]*models.Exercise, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query exercises: %w", err)
	}
	defer rows.Close()

	var exercises []*models.Exercise
	for rows.Next() {
		ex, err := scanExercise(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exercise: %w", err)
		}
		exercises = append(exercises, ex)
	}
	return exercises, rows.Err()
}

// ListByLevel returns every exercise of a level, limited to one topic when topic is not empty
func (r *ExerciseRepository) ListByLevel(ctx context.Context, level int, topic string) ([]*models.Exercise, error) {
	if topic == "" {
		return r.list(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE level = ? ORDER BY created_at`, level)
	}
	return r.list(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE level = ? AND topic = ? ORDER BY created_at`, level, topic)
}

// FetchExercises loads the pool a game session is assembled from
func (r *ExerciseRepository) FetchExercises(ctx context.Context, level int, topic string) ([]*models.Exercise, error) {
	return r.ListByLevel(ctx, level, topic)
}

// ListAll returns every exercise ordered by level then creation time
func (r *ExerciseRepository) ListAll(ctx context.Context) ([]*models.Exercise, error) {
	return r.list(ctx, `SELECT `+exerciseColumns+` FROM exercises ORDER BY level, created_at`)
}

// GetByID retrieves an exercise, or nil when it does not exist
func (r *ExerciseRepository) GetByID(ctx context.Context, id string) (*models.Exercise, error) {
	ex, err := scanExercise(r.db.QueryRowContext(ctx, `SELECT `+exerciseColumns+` FROM exercises WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get exercise: %w", err)
	}
	return ex, nil
}

// Create inserts an exercise, assigning an id when it has none
func (r *ExerciseRepository) Create(ctx context.Context, ex *models.Exercise) error {
	if ex.ID == "" {
		ex.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	ex.CreatedAt, ex.UpdatedAt = now, now

	query := `
		INSERT INTO exercises (id, level, type, topic, statement, correct_answer,
			incorrect_answer_1, incorrect_answer_2, incorrect_answer_3,
			incorrect_answer_1_explanation, incorrect_answer_2_explanation, incorrect_answer_3_explanation,
			german_word, spanish_translation, emoji, hint, word_translations, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		ex.ID, ex.Level, string(ex.Type), ex.Topic, ex.Statement, ex.CorrectAnswer,
		nullable(ex.IncorrectAnswer1), nullable(ex.IncorrectAnswer2), nullable(ex.IncorrectAnswer3),
		nullable(ex.IncorrectAnswer1Explanation), nullable(ex.IncorrectAnswer2Explanation), nullable(ex.IncorrectAnswer3Explanation),
		nullable(ex.GermanWord), nullable(ex.SpanishTranslation), nullable(ex.Emoji), nullable(ex.Hint),
		ex.WordTranslations, ex.CreatedAt, ex.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create exercise: %w", err)
	}
	return nil
}

// Update overwrites every editable column of an exercise
func (r *ExerciseRepository) Update(ctx context.Context, ex *models.Exercise) error {
	ex.UpdatedAt = time.Now().UTC()
	query := `
		UPDATE exercises
		SET level = ?, type = ?, topic = ?, statement = ?, correct_answer = ?,
			incorrect_answer_1 = ?, incorrect_answer_2 = ?, incorrect_answer_3 = ?,
			incorrect_answer_1_explanation = ?, incorrect_answer_2_explanation = ?, incorrect_answer_3_explanation = ?,
			german_word = ?, spanish_translation = ?, emoji = ?, hint = ?, word_translations = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := r.db.ExecContext(ctx, query,
		ex.Level, string(ex.Type), ex.Topic, ex.Statement, ex.CorrectAnswer,
		nullable(ex.IncorrectAnswer1), nullable(ex.IncorrectAnswer2), nullable(ex.IncorrectAnswer3),
		nullable(ex.IncorrectAnswer1Explanation), nullable(ex.IncorrectAnswer2Explanation), nullable(ex.IncorrectAnswer3Explanation),
		nullable(ex.GermanWord), nullable(ex.SpanishTranslation), nullable(ex.Emoji), nullable(ex.Hint),
		ex.WordTranslations, ex.UpdatedAt, ex.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update exercise: %w", err)
	}
	return requireAffected(result, ErrNotFound)
}

// Delete removes an exercise
func (r *ExerciseRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, "DELETE FROM exercises WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete exercise: %w", err)
	}
	return requireAffected(result, ErrNotFound)
}

// ListSummaries returns compact rows for a topic and level, newest first
func (r *ExerciseRepository) ListSummaries(ctx context.Context, topic string, level, limit int) ([]models.ExerciseSummary, error) {
	query := `
		SELECT type, statement, correct_answer, COALESCE(german_word, ''), COALESCE(spanish_translation, '')
		FROM exercises
		WHERE topic = ? AND level = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := r.db.QueryContext(ctx, query, topic, level, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query exercise summaries: %w", err)
	}
	defer rows.Close()

	var out []models.ExerciseSummary
	for rows.Next() {
		var s models.ExerciseSummary
		var exType string
		if err := rows.Scan(&exType, &s.Statement, &s.CorrectAnswer, &s.GermanWord, &s.SpanishTranslation); err != nil {
			return nil, fmt.Errorf("failed to scan exercise summary: %w", err)
		}
		s.Type = models.ExerciseType(exType)
		out = append(out, s)
	}
	return out, rows.Err()
}

// CountByLevel returns how many exercises each level holds
func (r *ExerciseRepository) CountByLevel(ctx context.Context) (map[int]int, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT level, COUNT(*) FROM exercises GROUP BY level")
	if err != nil {
		return nil, fmt.Errorf("failed to count exercises: %w", err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var level, n int
		if err := rows.Scan(&level, &n); err != nil {
			return nil, fmt.Errorf("failed to scan exercise count: %w", err)
		}
		counts[level] = n
	}
	return counts, rows.Err()
}

// nullable stores empty optional text as NULL
func nullable(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
